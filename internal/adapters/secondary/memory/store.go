// Package memory provides an in-process implementation of the registry
// repositories. A single RWMutex serializes writers, so each model mutation
// is atomic and readers always see fully committed state.
package memory

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"experiment-model-registry/internal/core/domain"
	"experiment-model-registry/internal/core/ports/output"
)

type modelEntry struct {
	model    *domain.RegisteredModel
	versions map[int]*domain.ModelVersion
	// highWater is the largest version number ever allocated for the model.
	highWater int
}

type Store struct {
	mu     sync.RWMutex
	models map[uuid.UUID]*modelEntry
	byName map[string]uuid.UUID
	seq    int64
}

func NewStore() *Store {
	return &Store{
		models: make(map[uuid.UUID]*modelEntry),
		byName: make(map[string]uuid.UUID),
	}
}

// Models returns the store as a RegisteredModelRepository.
func (s *Store) Models() ports.RegisteredModelRepository {
	return &modelRepo{s: s}
}

// Versions returns the store as a ModelVersionRepository.
func (s *Store) Versions() ports.ModelVersionRepository {
	return &versionRepo{s: s}
}

// snapshot returns a detached copy of the entry's model. Callers hold s.mu.
func (e *modelEntry) snapshot() *domain.RegisteredModel {
	m := e.model.Clone()
	m.NumVersions = len(e.versions)
	return m
}

type modelRepo struct {
	s *Store
}

func (r *modelRepo) Create(ctx context.Context, model *domain.RegisteredModel) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.byName[model.Name]; ok {
		return domain.ErrModelNameConflict
	}

	r.s.seq++
	model.Seq = r.s.seq
	r.s.models[model.ID] = &modelEntry{
		model:    model.Clone(),
		versions: make(map[int]*domain.ModelVersion),
	}
	r.s.byName[model.Name] = model.ID
	return nil
}

func (r *modelRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.RegisteredModel, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	e, ok := r.s.models[id]
	if !ok {
		return nil, domain.ErrModelNotFound
	}
	return e.snapshot(), nil
}

func (r *modelRepo) GetByName(ctx context.Context, name string) (*domain.RegisteredModel, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.byName[name]
	if !ok {
		return nil, domain.ErrModelNotFound
	}
	return r.s.models[id].snapshot(), nil
}

func (r *modelRepo) Mutate(ctx context.Context, id uuid.UUID, fn ports.ModelMutation) (*domain.RegisteredModel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.s.models[id]
	if !ok {
		return nil, domain.ErrModelNotFound
	}

	working := e.model.Clone()
	if err := fn(working); err != nil {
		if errors.Is(err, ports.ErrNoChange) {
			return e.snapshot(), nil
		}
		return nil, err
	}

	// Identity, name and creation data are fixed after Create.
	working.ID = e.model.ID
	working.Name = e.model.Name
	working.Owner = e.model.Owner
	working.CreatedAt = e.model.CreatedAt
	working.Seq = e.model.Seq
	working.UpdatedAt = time.Now().UTC()

	e.model = working
	return e.snapshot(), nil
}

func (r *modelRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.s.models[id]
	if !ok {
		return domain.ErrModelNotFound
	}
	delete(r.s.byName, e.model.Name)
	delete(r.s.models, id)
	return nil
}

func (r *modelRepo) List(ctx context.Context, filter ports.ListFilter) ([]*domain.RegisteredModel, int, error) {
	r.s.mu.RLock()
	models := make([]*domain.RegisteredModel, 0, len(r.s.models))
	for _, e := range r.s.models {
		if matches(e.model, filter) {
			models = append(models, e.snapshot())
		}
	}
	r.s.mu.RUnlock()

	domain.SortModels(models, filter.SortBy, filter.Order)

	total := len(models)
	if filter.Offset >= total {
		return []*domain.RegisteredModel{}, total, nil
	}
	models = models[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(models) {
		models = models[:filter.Limit]
	}
	return models, total, nil
}

func matches(m *domain.RegisteredModel, filter ports.ListFilter) bool {
	if filter.Archived != nil && m.Archived != *filter.Archived {
		return false
	}
	if filter.Name != "" && !strings.Contains(m.Name, filter.Name) {
		return false
	}
	if filter.Owner != "" && m.Owner != filter.Owner {
		return false
	}
	return m.Labels.ContainsAll(filter.Labels)
}

func (r *modelRepo) LabelCounts(ctx context.Context) (map[string]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	models := make([]*domain.RegisteredModel, 0, len(r.s.models))
	for _, e := range r.s.models {
		models = append(models, e.model)
	}
	return domain.CountLabels(models), nil
}
