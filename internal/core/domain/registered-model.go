package domain

import (
	"time"

	"github.com/google/uuid"
)

type ModelSortBy string

const (
	ModelSortByName            ModelSortBy = "NAME"
	ModelSortByDescription     ModelSortBy = "DESCRIPTION"
	ModelSortByCreationTime    ModelSortBy = "CREATION_TIME"
	ModelSortByLastUpdatedTime ModelSortBy = "LAST_UPDATED_TIME"
	ModelSortByNumVersions     ModelSortBy = "NUM_VERSIONS"
)

func ParseModelSortBy(s string) (ModelSortBy, error) {
	switch sb := ModelSortBy(s); sb {
	case "":
		return ModelSortByName, nil
	case ModelSortByName, ModelSortByDescription, ModelSortByCreationTime,
		ModelSortByLastUpdatedTime, ModelSortByNumVersions:
		return sb, nil
	default:
		return "", ErrInvalidSortBy
	}
}

type SortOrder string

const (
	SortOrderAsc  SortOrder = "ASC"
	SortOrderDesc SortOrder = "DESC"
)

func ParseSortOrder(s string) (SortOrder, error) {
	switch s {
	case "", "asc", "ASC":
		return SortOrderAsc, nil
	case "desc", "DESC":
		return SortOrderDesc, nil
	default:
		return "", ErrInvalidOrder
	}
}

// ModelState is derived from the archived flag; a model is always in exactly
// one of the two states until it is deleted.
type ModelState string

const (
	ModelStateActive   ModelState = "ACTIVE"
	ModelStateArchived ModelState = "ARCHIVED"
)

type RegisteredModel struct {
	ID          uuid.UUID `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Metadata    Metadata  `json:"metadata"`
	Labels      Labels    `json:"labels"`
	Archived    bool      `json:"archived"`
	Owner       string    `json:"owner"`

	// Seq is the store-assigned creation sequence. It breaks sort ties.
	Seq int64 `json:"-"`

	// Computed fields (populated by repository)
	NumVersions int `json:"num_versions"`
}

func (m *RegisteredModel) State() ModelState {
	if m.Archived {
		return ModelStateArchived
	}
	return ModelStateActive
}

// Clone returns a copy that shares no mutable state with m.
func (m *RegisteredModel) Clone() *RegisteredModel {
	c := *m
	c.Metadata = m.Metadata.Clone()
	c.Labels = m.Labels.Clone()
	return &c
}
