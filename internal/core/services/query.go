package services

import (
	"context"

	"experiment-model-registry/internal/core/domain"
	"experiment-model-registry/internal/core/ports/output"
)

// ModelQueryService answers read-only listing queries over committed state.
type ModelQueryService struct {
	repo ports.RegisteredModelRepository
}

func NewModelQueryService(repo ports.RegisteredModelRepository) *ModelQueryService {
	return &ModelQueryService{repo: repo}
}

// List returns models sorted by filter.SortBy (NAME by default) in
// filter.Order, ties broken by creation order. Names compare byte-wise, so
// the order is case-sensitive. A zero Limit returns every match.
func (s *ModelQueryService) List(ctx context.Context, filter ports.ListFilter) ([]*domain.RegisteredModel, int, error) {
	if filter.SortBy == "" {
		filter.SortBy = domain.ModelSortByName
	}
	if filter.Order == "" {
		filter.Order = domain.SortOrderAsc
	}
	if filter.Limit < 0 {
		filter.Limit = 0
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.repo.List(ctx, filter)
}

// LabelUnion returns all distinct labels in the order of
// domain.OrderLabelCounts.
func (s *ModelQueryService) LabelUnion(ctx context.Context) ([]string, error) {
	counts, err := s.repo.LabelCounts(ctx)
	if err != nil {
		return nil, err
	}
	return domain.OrderLabelCounts(counts), nil
}
