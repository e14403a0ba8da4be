package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"experiment-model-registry/internal/core/domain"
	"experiment-model-registry/internal/core/ports/output"
)

const uniqueViolation = "23505"

const selectModel = `
	SELECT
		rm.id, rm.seq, rm.created_at, rm.updated_at, rm.name, rm.description,
		rm.metadata, rm.labels, rm.archived, rm.owner,
		(SELECT COUNT(*) FROM model_version mv WHERE mv.registered_model_id = rm.id) AS num_versions
	FROM registered_model rm
`

type registeredModelRepo struct {
	pool *pgxpool.Pool
}

func NewRegisteredModelRepository(pool *pgxpool.Pool) ports.RegisteredModelRepository {
	return &registeredModelRepo{pool: pool}
}

func (r *registeredModelRepo) Create(ctx context.Context, model *domain.RegisteredModel) error {
	metadataJSON, labelsJSON, err := marshalModel(model)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO registered_model
			(id, created_at, updated_at, name, description, metadata, labels, archived, owner)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING seq
	`
	err = r.pool.QueryRow(ctx, query,
		model.ID, model.CreatedAt, model.UpdatedAt,
		model.Name, model.Description, metadataJSON, labelsJSON,
		model.Archived, model.Owner,
	).Scan(&model.Seq)
	if err != nil {
		if isUniqueViolation(err, "registered_model_name_key") {
			return domain.ErrModelNameConflict
		}
		return fmt.Errorf("create registered model: %w", err)
	}
	return nil
}

func (r *registeredModelRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.RegisteredModel, error) {
	model, err := scanModel(r.pool.QueryRow(ctx, selectModel+` WHERE rm.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrModelNotFound
		}
		return nil, fmt.Errorf("get registered model by id: %w", err)
	}
	return model, nil
}

func (r *registeredModelRepo) GetByName(ctx context.Context, name string) (*domain.RegisteredModel, error) {
	model, err := scanModel(r.pool.QueryRow(ctx, selectModel+` WHERE rm.name = $1`, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrModelNotFound
		}
		return nil, fmt.Errorf("get registered model by name: %w", err)
	}
	return model, nil
}

func (r *registeredModelRepo) Mutate(ctx context.Context, id uuid.UUID, fn ports.ModelMutation) (*domain.RegisteredModel, error) {
	var result *domain.RegisteredModel

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		model, err := scanModel(tx.QueryRow(ctx, selectModel+` WHERE rm.id = $1 FOR UPDATE`, id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrModelNotFound
			}
			return fmt.Errorf("lock registered model: %w", err)
		}

		if err := fn(model); err != nil {
			if errors.Is(err, ports.ErrNoChange) {
				result = model
				return nil
			}
			return err
		}

		metadataJSON, labelsJSON, err := marshalModel(model)
		if err != nil {
			return err
		}

		query := `
			UPDATE registered_model
			SET description=$1, metadata=$2, labels=$3, archived=$4, updated_at=NOW()
			WHERE id=$5
			RETURNING updated_at
		`
		if err := tx.QueryRow(ctx, query,
			model.Description, metadataJSON, labelsJSON, model.Archived, id,
		).Scan(&model.UpdatedAt); err != nil {
			return fmt.Errorf("update registered model: %w", err)
		}

		result = model
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *registeredModelRepo) Delete(ctx context.Context, id uuid.UUID) error {
	// model_version rows go with it via ON DELETE CASCADE.
	result, err := r.pool.Exec(ctx, `DELETE FROM registered_model WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete registered model: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrModelNotFound
	}
	return nil
}

var sortColumns = map[domain.ModelSortBy]string{
	domain.ModelSortByName:            `rm.name COLLATE "C"`,
	domain.ModelSortByDescription:     `rm.description COLLATE "C"`,
	domain.ModelSortByCreationTime:    `rm.created_at`,
	domain.ModelSortByLastUpdatedTime: `rm.updated_at`,
	domain.ModelSortByNumVersions:     `num_versions`,
}

func (r *registeredModelRepo) List(ctx context.Context, filter ports.ListFilter) ([]*domain.RegisteredModel, int, error) {
	conditions := []string{}
	args := []interface{}{}
	argPos := 1

	if filter.Archived != nil {
		conditions = append(conditions, fmt.Sprintf("rm.archived = $%d", argPos))
		args = append(args, *filter.Archived)
		argPos++
	}
	if filter.Name != "" {
		conditions = append(conditions, fmt.Sprintf("strpos(rm.name, $%d) > 0", argPos))
		args = append(args, filter.Name)
		argPos++
	}
	if filter.Owner != "" {
		conditions = append(conditions, fmt.Sprintf("rm.owner = $%d", argPos))
		args = append(args, filter.Owner)
		argPos++
	}
	if len(filter.Labels) > 0 {
		labelsJSON, err := json.Marshal(filter.Labels)
		if err != nil {
			return nil, 0, fmt.Errorf("marshal label filter: %w", err)
		}
		conditions = append(conditions, fmt.Sprintf("rm.labels @> $%d::jsonb", argPos))
		args = append(args, labelsJSON)
		argPos++
	}

	whereClause := "1=1"
	if len(conditions) > 0 {
		whereClause = strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM registered_model rm WHERE %s", whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count registered models: %w", err)
	}

	column, ok := sortColumns[filter.SortBy]
	if !ok {
		column = sortColumns[domain.ModelSortByName]
	}
	dir := "ASC"
	if filter.Order == domain.SortOrderDesc {
		dir = "DESC"
	}

	// LIMIT NULL means no limit.
	var limit interface{}
	if filter.Limit > 0 {
		limit = filter.Limit
	}

	query := fmt.Sprintf(`%s
		WHERE %s
		ORDER BY %s %s, rm.seq ASC
		LIMIT $%d OFFSET $%d
	`, selectModel, whereClause, column, dir, argPos, argPos+1)
	args = append(args, limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list registered models: %w", err)
	}
	defer rows.Close()

	models := []*domain.RegisteredModel{}
	for rows.Next() {
		m, err := scanModel(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan registered model row: %w", err)
		}
		models = append(models, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate registered model rows: %w", err)
	}

	return models, total, nil
}

func (r *registeredModelRepo) LabelCounts(ctx context.Context) (map[string]int, error) {
	query := `
		SELECT l.label, COUNT(*)
		FROM registered_model rm, jsonb_array_elements_text(rm.labels) AS l(label)
		GROUP BY l.label
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count model labels: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var label string
		var n int
		if err := rows.Scan(&label, &n); err != nil {
			return nil, fmt.Errorf("scan label count: %w", err)
		}
		counts[label] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate label counts: %w", err)
	}
	return counts, nil
}

// scanModel scans the columns of selectModel. pgx.Rows satisfies pgx.Row.
func scanModel(row pgx.Row) (*domain.RegisteredModel, error) {
	m := &domain.RegisteredModel{}
	var metadataJSON, labelsJSON []byte

	err := row.Scan(
		&m.ID, &m.Seq, &m.CreatedAt, &m.UpdatedAt, &m.Name, &m.Description,
		&metadataJSON, &labelsJSON, &m.Archived, &m.Owner, &m.NumVersions,
	)
	if err != nil {
		return nil, err
	}

	if m.Metadata, err = domain.DecodeMetadata(metadataJSON); err != nil {
		return nil, fmt.Errorf("unmarshal metadata: %w", err)
	}
	m.Labels = domain.Labels{}
	if len(labelsJSON) > 0 {
		if err := json.Unmarshal(labelsJSON, &m.Labels); err != nil {
			return nil, fmt.Errorf("unmarshal labels: %w", err)
		}
	}
	return m, nil
}

func marshalModel(model *domain.RegisteredModel) ([]byte, []byte, error) {
	metadata := model.Metadata
	if metadata == nil {
		metadata = domain.Metadata{}
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal metadata: %w", err)
	}
	labels := model.Labels
	if labels == nil {
		labels = domain.Labels{}
	}
	labelsJSON, err := json.Marshal(labels)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal labels: %w", err)
	}
	return metadataJSON, labelsJSON, nil
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == constraint
}
