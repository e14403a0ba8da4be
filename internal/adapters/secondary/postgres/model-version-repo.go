package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"experiment-model-registry/internal/core/domain"
	"experiment-model-registry/internal/core/ports/output"
)

const selectVersion = `
	SELECT mv.registered_model_id, mv.version, mv.checkpoint_ref, mv.name, mv.notes,
		   mv.owner, mv.created_at, mv.updated_at, rm.name AS model_name
	FROM model_version mv
	JOIN registered_model rm ON rm.id = mv.registered_model_id
`

type modelVersionRepo struct {
	pool *pgxpool.Pool
}

func NewModelVersionRepository(pool *pgxpool.Pool) ports.ModelVersionRepository {
	return &modelVersionRepo{pool: pool}
}

// Register locks the parent row, so concurrent registrations for one model
// queue behind each other. The primary key on (registered_model_id, version)
// still guards the number if the lock is ever bypassed.
func (r *modelVersionRepo) Register(ctx context.Context, version *domain.ModelVersion) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var highWater int
		var modelName string
		err := tx.QueryRow(ctx,
			`SELECT last_version, name FROM registered_model WHERE id = $1 FOR UPDATE`,
			version.RegisteredModelID,
		).Scan(&highWater, &modelName)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrModelNotFound
			}
			return fmt.Errorf("lock registered model: %w", err)
		}

		var existingMax int
		if err := tx.QueryRow(ctx,
			`SELECT COALESCE(MAX(version), 0) FROM model_version WHERE registered_model_id = $1`,
			version.RegisteredModelID,
		).Scan(&existingMax); err != nil {
			return fmt.Errorf("read max version: %w", err)
		}

		number := domain.NextVersion(highWater, []int{existingMax})

		query := `
			INSERT INTO model_version
				(registered_model_id, version, checkpoint_ref, name, notes, owner, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		`
		if _, err := tx.Exec(ctx, query,
			version.RegisteredModelID, number, version.CheckpointRef,
			version.Name, version.Notes, version.Owner,
			version.CreatedAt, version.UpdatedAt,
		); err != nil {
			if isUniqueViolation(err, "model_version_pkey") {
				return domain.ErrVersionNumberTaken
			}
			return fmt.Errorf("create model version: %w", err)
		}

		if _, err := tx.Exec(ctx,
			`UPDATE registered_model SET last_version = $1, updated_at = NOW() WHERE id = $2`,
			number, version.RegisteredModelID,
		); err != nil {
			return fmt.Errorf("advance version high-water mark: %w", err)
		}

		version.Version = number
		version.ModelName = modelName
		return nil
	})
}

func (r *modelVersionRepo) Get(ctx context.Context, modelID uuid.UUID, version int) (*domain.ModelVersion, error) {
	query := selectVersion + ` WHERE mv.registered_model_id = $1 AND mv.version = $2`
	v, err := scanVersion(r.pool.QueryRow(ctx, query, modelID, version))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrVersionNotFound
		}
		return nil, fmt.Errorf("get model version: %w", err)
	}
	return v, nil
}

func (r *modelVersionRepo) Latest(ctx context.Context, modelID uuid.UUID) (*domain.ModelVersion, error) {
	query := selectVersion + ` WHERE mv.registered_model_id = $1 ORDER BY mv.version DESC LIMIT 1`
	v, err := scanVersion(r.pool.QueryRow(ctx, query, modelID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrVersionNotFound
		}
		return nil, fmt.Errorf("get latest model version: %w", err)
	}
	return v, nil
}

func (r *modelVersionRepo) ListByModel(ctx context.Context, modelID uuid.UUID) ([]*domain.ModelVersion, error) {
	query := selectVersion + ` WHERE mv.registered_model_id = $1 ORDER BY mv.version DESC`
	rows, err := r.pool.Query(ctx, query, modelID)
	if err != nil {
		return nil, fmt.Errorf("list model versions: %w", err)
	}
	defer rows.Close()

	versions := []*domain.ModelVersion{}
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan model version row: %w", err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate model version rows: %w", err)
	}
	return versions, nil
}

func (r *modelVersionRepo) Update(ctx context.Context, modelID uuid.UUID, version int, patch domain.VersionPatch) (*domain.ModelVersion, error) {
	// COALESCE keeps the stored value for fields the patch leaves nil.
	query := `
		UPDATE model_version
		SET name = COALESCE($1, name), notes = COALESCE($2, notes), updated_at = NOW()
		WHERE registered_model_id = $3 AND version = $4
	`
	result, err := r.pool.Exec(ctx, query, patch.Name, patch.Notes, modelID, version)
	if err != nil {
		return nil, fmt.Errorf("update model version: %w", err)
	}
	if result.RowsAffected() == 0 {
		return nil, domain.ErrVersionNotFound
	}
	return r.Get(ctx, modelID, version)
}

func (r *modelVersionRepo) Delete(ctx context.Context, modelID uuid.UUID, version int) error {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM model_version WHERE registered_model_id = $1 AND version = $2`,
		modelID, version,
	)
	if err != nil {
		return fmt.Errorf("delete model version: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrVersionNotFound
	}
	return nil
}

func scanVersion(row pgx.Row) (*domain.ModelVersion, error) {
	v := &domain.ModelVersion{}
	err := row.Scan(
		&v.RegisteredModelID, &v.Version, &v.CheckpointRef, &v.Name, &v.Notes,
		&v.Owner, &v.CreatedAt, &v.UpdatedAt, &v.ModelName,
	)
	if err != nil {
		return nil, err
	}
	return v, nil
}
