package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"experiment-model-registry/internal/core/domain"
	"experiment-model-registry/internal/core/ports/output"
)

type CreateModelInput struct {
	Name        string
	Description string
	Owner       string
	Labels      []string
	Metadata    map[string]any
}

type UpdateModelInput struct {
	Description *string
}

type PatchMetadataInput struct {
	Add    map[string]any
	Remove []string
}

type RegisteredModelService struct {
	repo     ports.RegisteredModelRepository
	recorder ports.MetricsRecorder
}

func NewRegisteredModelService(repo ports.RegisteredModelRepository, recorder ports.MetricsRecorder) *RegisteredModelService {
	return &RegisteredModelService{repo: repo, recorder: recorderOrNop(recorder)}
}

func (s *RegisteredModelService) Create(ctx context.Context, in CreateModelInput) (*domain.RegisteredModel, error) {
	model, err := s.create(ctx, in)
	s.recorder.ObserveOperation("create_model", err)
	return model, err
}

func (s *RegisteredModelService) create(ctx context.Context, in CreateModelInput) (*domain.RegisteredModel, error) {
	if strings.TrimSpace(in.Name) == "" || strings.Contains(in.Name, "/") {
		return nil, domain.ErrInvalidModelName
	}

	labels, err := domain.NewLabels(in.Labels)
	if err != nil {
		return nil, err
	}
	initial, err := domain.NormalizeMetadata(in.Metadata)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	model := &domain.RegisteredModel{
		ID:          uuid.New(),
		CreatedAt:   now,
		UpdatedAt:   now,
		Name:        in.Name,
		Description: in.Description,
		Metadata:    domain.Metadata{}.Merge(initial),
		Labels:      labels,
		Archived:    false,
		Owner:       in.Owner,
	}

	if err := s.repo.Create(ctx, model); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"model_id": model.ID,
		"name":     model.Name,
		"owner":    model.Owner,
	}).Info("registered model created")

	return model, nil
}

// Get resolves a model by ID or, failing that, by name.
func (s *RegisteredModelService) Get(ctx context.Context, idOrName string) (*domain.RegisteredModel, error) {
	if id, err := uuid.Parse(idOrName); err == nil {
		model, err := s.repo.GetByID(ctx, id)
		if err == nil || !errors.Is(err, domain.ErrModelNotFound) {
			return model, err
		}
	}
	return s.repo.GetByName(ctx, idOrName)
}

func (s *RegisteredModelService) Update(ctx context.Context, id uuid.UUID, in UpdateModelInput) (*domain.RegisteredModel, error) {
	model, err := s.repo.Mutate(ctx, id, func(m *domain.RegisteredModel) error {
		if in.Description != nil {
			m.Description = *in.Description
		}
		return nil
	})
	s.recorder.ObserveOperation("update_model", err)
	return model, err
}

// PatchMetadata removes in.Remove and then merges in.Add, in one transaction.
func (s *RegisteredModelService) PatchMetadata(ctx context.Context, id uuid.UUID, in PatchMetadataInput) (*domain.RegisteredModel, error) {
	add, err := domain.NormalizeMetadata(in.Add)
	if err != nil {
		s.recorder.ObserveOperation("patch_metadata", err)
		return nil, err
	}
	for _, k := range in.Remove {
		if k == "" {
			s.recorder.ObserveOperation("patch_metadata", domain.ErrInvalidMetadata)
			return nil, domain.ErrInvalidMetadata
		}
	}

	model, err := s.repo.Mutate(ctx, id, func(m *domain.RegisteredModel) error {
		m.Metadata = m.Metadata.Patch(add, in.Remove)
		return nil
	})
	s.recorder.ObserveOperation("patch_metadata", err)
	return model, err
}

// SetLabels replaces the model's labels with the deduplicated input.
func (s *RegisteredModelService) SetLabels(ctx context.Context, id uuid.UUID, labels []string) (*domain.RegisteredModel, error) {
	next, err := domain.NewLabels(labels)
	if err != nil {
		s.recorder.ObserveOperation("set_labels", err)
		return nil, err
	}

	model, err := s.repo.Mutate(ctx, id, func(m *domain.RegisteredModel) error {
		m.Labels = next
		return nil
	})
	s.recorder.ObserveOperation("set_labels", err)
	return model, err
}

func (s *RegisteredModelService) Archive(ctx context.Context, id uuid.UUID) (*domain.RegisteredModel, error) {
	model, err := s.setArchived(ctx, id, true)
	s.recorder.ObserveOperation("archive_model", err)
	return model, err
}

func (s *RegisteredModelService) Unarchive(ctx context.Context, id uuid.UUID) (*domain.RegisteredModel, error) {
	model, err := s.setArchived(ctx, id, false)
	s.recorder.ObserveOperation("unarchive_model", err)
	return model, err
}

func (s *RegisteredModelService) setArchived(ctx context.Context, id uuid.UUID, archived bool) (*domain.RegisteredModel, error) {
	return s.repo.Mutate(ctx, id, func(m *domain.RegisteredModel) error {
		if m.Archived == archived {
			return ports.ErrNoChange
		}
		m.Archived = archived
		return nil
	})
}

// Delete removes the model together with all of its versions.
func (s *RegisteredModelService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.repo.Delete(ctx, id)
	s.recorder.ObserveOperation("delete_model", err)
	if err != nil {
		return err
	}

	log.WithField("model_id", id).Info("registered model deleted")
	return nil
}
