package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"experiment-model-registry/internal/core/domain"
)

type versionRepo struct {
	s *Store
}

func (r *versionRepo) Register(ctx context.Context, version *domain.ModelVersion) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.s.models[version.RegisteredModelID]
	if !ok {
		return domain.ErrModelNotFound
	}

	existing := make([]int, 0, len(e.versions))
	for n := range e.versions {
		existing = append(existing, n)
	}
	number := domain.NextVersion(e.highWater, existing)

	version.Version = number
	version.ModelName = e.model.Name
	e.versions[number] = version.Clone()
	e.highWater = number
	e.model.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *versionRepo) Get(ctx context.Context, modelID uuid.UUID, version int) (*domain.ModelVersion, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	e, ok := r.s.models[modelID]
	if !ok {
		return nil, domain.ErrModelNotFound
	}
	v, ok := e.versions[version]
	if !ok {
		return nil, domain.ErrVersionNotFound
	}
	return v.Clone(), nil
}

func (r *versionRepo) Latest(ctx context.Context, modelID uuid.UUID) (*domain.ModelVersion, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	e, ok := r.s.models[modelID]
	if !ok {
		return nil, domain.ErrModelNotFound
	}

	var latest *domain.ModelVersion
	for n, v := range e.versions {
		if latest == nil || n > latest.Version {
			latest = v
		}
	}
	if latest == nil {
		return nil, domain.ErrVersionNotFound
	}
	return latest.Clone(), nil
}

func (r *versionRepo) ListByModel(ctx context.Context, modelID uuid.UUID) ([]*domain.ModelVersion, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	e, ok := r.s.models[modelID]
	if !ok {
		return nil, domain.ErrModelNotFound
	}

	versions := make([]*domain.ModelVersion, 0, len(e.versions))
	for _, v := range e.versions {
		versions = append(versions, v.Clone())
	}
	sort.Slice(versions, func(i, j int) bool {
		return versions[i].Version > versions[j].Version
	})
	return versions, nil
}

func (r *versionRepo) Update(ctx context.Context, modelID uuid.UUID, version int, patch domain.VersionPatch) (*domain.ModelVersion, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.s.models[modelID]
	if !ok {
		return nil, domain.ErrModelNotFound
	}
	v, ok := e.versions[version]
	if !ok {
		return nil, domain.ErrVersionNotFound
	}

	updated := v.Clone()
	patch.Apply(updated)
	updated.UpdatedAt = time.Now().UTC()
	e.versions[version] = updated
	return updated.Clone(), nil
}

func (r *versionRepo) Delete(ctx context.Context, modelID uuid.UUID, version int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.s.models[modelID]
	if !ok {
		return domain.ErrModelNotFound
	}
	if _, ok := e.versions[version]; !ok {
		return domain.ErrVersionNotFound
	}
	delete(e.versions, version)
	return nil
}
