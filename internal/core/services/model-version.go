package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"experiment-model-registry/internal/core/domain"
	"experiment-model-registry/internal/core/ports/output"
)

const DefaultAllocationAttempts = 3

type RegisterVersionInput struct {
	ModelID       uuid.UUID
	CheckpointRef string
	Name          string
	Notes         string
	Owner         string
}

type ModelVersionService struct {
	repo        ports.ModelVersionRepository
	modelRepo   ports.RegisteredModelRepository
	checkpoints ports.CheckpointResolver
	recorder    ports.MetricsRecorder
	maxAttempts int
}

func NewModelVersionService(
	repo ports.ModelVersionRepository,
	modelRepo ports.RegisteredModelRepository,
	checkpoints ports.CheckpointResolver,
	recorder ports.MetricsRecorder,
	maxAttempts int,
) *ModelVersionService {
	if maxAttempts <= 0 {
		maxAttempts = DefaultAllocationAttempts
	}
	return &ModelVersionService{
		repo:        repo,
		modelRepo:   modelRepo,
		checkpoints: checkpoints,
		recorder:    recorderOrNop(recorder),
		maxAttempts: maxAttempts,
	}
}

// Register validates the checkpoint reference and stores a new version with
// the next free number. Allocation races are retried up to maxAttempts times
// and then surface as domain.ErrVersionConflict.
func (s *ModelVersionService) Register(ctx context.Context, in RegisterVersionInput) (*domain.ModelVersion, error) {
	version, err := s.register(ctx, in)
	s.recorder.ObserveOperation("register_version", err)
	return version, err
}

func (s *ModelVersionService) register(ctx context.Context, in RegisterVersionInput) (*domain.ModelVersion, error) {
	if in.CheckpointRef == "" {
		return nil, domain.ErrInvalidCheckpointRef
	}

	model, err := s.modelRepo.GetByID(ctx, in.ModelID)
	if err != nil {
		return nil, err
	}

	ok, err := s.checkpoints.Resolve(ctx, in.CheckpointRef)
	if err != nil {
		return nil, fmt.Errorf("resolve checkpoint %s: %w", in.CheckpointRef, err)
	}
	if !ok {
		return nil, domain.ErrCheckpointNotFound
	}

	for attempt := 1; ; attempt++ {
		now := time.Now().UTC()
		version := &domain.ModelVersion{
			RegisteredModelID: in.ModelID,
			CheckpointRef:     in.CheckpointRef,
			Name:              in.Name,
			Notes:             in.Notes,
			Owner:             in.Owner,
			CreatedAt:         now,
			UpdatedAt:         now,
			ModelName:         model.Name,
		}

		err := s.repo.Register(ctx, version)
		if err == nil {
			log.WithFields(log.Fields{
				"model_id":   in.ModelID,
				"version":    version.Version,
				"checkpoint": in.CheckpointRef,
			}).Info("model version registered")
			return version, nil
		}
		if !errors.Is(err, domain.ErrVersionNumberTaken) {
			return nil, err
		}
		if attempt >= s.maxAttempts {
			return nil, domain.ErrVersionConflict
		}

		log.WithFields(log.Fields{
			"model_id": in.ModelID,
			"attempt":  attempt,
		}).Warn("version number taken, retrying allocation")
		s.recorder.IncVersionAllocationRetry()
	}
}

func (s *ModelVersionService) Get(ctx context.Context, modelID uuid.UUID, version int) (*domain.ModelVersion, error) {
	if version <= 0 {
		return nil, domain.ErrInvalidVersionNumber
	}
	if _, err := s.modelRepo.GetByID(ctx, modelID); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, modelID, version)
}

// Latest returns the highest-numbered version. It returns (nil, nil) when the
// model exists but has no versions.
func (s *ModelVersionService) Latest(ctx context.Context, modelID uuid.UUID) (*domain.ModelVersion, error) {
	if _, err := s.modelRepo.GetByID(ctx, modelID); err != nil {
		return nil, err
	}

	version, err := s.repo.Latest(ctx, modelID)
	if errors.Is(err, domain.ErrVersionNotFound) {
		return nil, nil
	}
	return version, err
}

// ListByModel returns every version of the model, latest first.
func (s *ModelVersionService) ListByModel(ctx context.Context, modelID uuid.UUID) ([]*domain.ModelVersion, error) {
	if _, err := s.modelRepo.GetByID(ctx, modelID); err != nil {
		return nil, err
	}
	return s.repo.ListByModel(ctx, modelID)
}

func (s *ModelVersionService) Update(ctx context.Context, modelID uuid.UUID, version int, patch domain.VersionPatch) (*domain.ModelVersion, error) {
	if version <= 0 {
		return nil, domain.ErrInvalidVersionNumber
	}
	updated, err := s.repo.Update(ctx, modelID, version, patch)
	s.recorder.ObserveOperation("update_version", err)
	return updated, err
}

// Delete removes one version. Remaining versions keep their numbers.
func (s *ModelVersionService) Delete(ctx context.Context, modelID uuid.UUID, version int) error {
	if version <= 0 {
		return domain.ErrInvalidVersionNumber
	}
	err := s.repo.Delete(ctx, modelID, version)
	s.recorder.ObserveOperation("delete_version", err)
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"model_id": modelID,
		"version":  version,
	}).Info("model version deleted")
	return nil
}
