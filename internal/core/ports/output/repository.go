package ports

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"experiment-model-registry/internal/core/domain"
)

type ListFilter struct {
	SortBy   domain.ModelSortBy
	Order    domain.SortOrder
	Archived *bool
	Name     string
	Owner    string
	Labels   []string
	Limit    int
	Offset   int
}

// ModelMutation transforms a loaded model in place. Returning an error aborts
// the transaction and leaves the stored model untouched.
type ModelMutation func(model *domain.RegisteredModel) error

// ErrNoChange may be returned by a ModelMutation to end the transaction
// without writing. Mutate then returns the stored model and a nil error.
var ErrNoChange = errors.New("no change")

type RegisteredModelRepository interface {
	Create(ctx context.Context, model *domain.RegisteredModel) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.RegisteredModel, error)
	GetByName(ctx context.Context, name string) (*domain.RegisteredModel, error)
	// Mutate loads the model, applies fn and commits the result as one
	// transaction scoped to that model.
	Mutate(ctx context.Context, id uuid.UUID, fn ModelMutation) (*domain.RegisteredModel, error)
	// Delete removes the model and all of its versions.
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns the matching models and the total before pagination.
	List(ctx context.Context, filter ListFilter) ([]*domain.RegisteredModel, int, error)
	// LabelCounts returns, per label, the number of models carrying it.
	LabelCounts(ctx context.Context) (map[string]int, error)
}

type ModelVersionRepository interface {
	// Register assigns the next version number for version.RegisteredModelID
	// and inserts the version in the same transaction, advancing the model's
	// UpdatedAt. It returns domain.ErrVersionNumberTaken when the number lost
	// a race.
	Register(ctx context.Context, version *domain.ModelVersion) error
	Get(ctx context.Context, modelID uuid.UUID, version int) (*domain.ModelVersion, error)
	// Latest returns the highest-numbered version, or domain.ErrVersionNotFound
	// when the model has none.
	Latest(ctx context.Context, modelID uuid.UUID) (*domain.ModelVersion, error)
	// ListByModel returns versions ordered by number, latest first.
	ListByModel(ctx context.Context, modelID uuid.UUID) ([]*domain.ModelVersion, error)
	Update(ctx context.Context, modelID uuid.UUID, version int, patch domain.VersionPatch) (*domain.ModelVersion, error)
	Delete(ctx context.Context, modelID uuid.UUID, version int) error
}
