package domain

import (
	"time"

	"github.com/google/uuid"
)

// ModelVersion points a registered model at one checkpoint. Version numbers
// are assigned by the registry and never reused within a model.
type ModelVersion struct {
	RegisteredModelID uuid.UUID `json:"registered_model_id"`
	Version           int       `json:"version"`
	CheckpointRef     string    `json:"checkpoint_ref"`
	Name              string    `json:"name"`
	Notes             string    `json:"notes"`
	Owner             string    `json:"owner"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	// Computed fields
	ModelName string `json:"model_name,omitempty"`
}

func (v *ModelVersion) Clone() *ModelVersion {
	c := *v
	return &c
}

// VersionPatch is a partial update of the mutable version fields. Nil fields
// are left unchanged.
type VersionPatch struct {
	Name  *string
	Notes *string
}

func (p VersionPatch) Apply(v *ModelVersion) {
	if p.Name != nil {
		v.Name = *p.Name
	}
	if p.Notes != nil {
		v.Notes = *p.Notes
	}
}
