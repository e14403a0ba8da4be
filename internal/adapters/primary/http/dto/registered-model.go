package dto

import (
	"encoding/json"

	"github.com/google/uuid"
)

type CreateRegisteredModelRequest struct {
	Name        string                     `json:"name" binding:"required,max=256"`
	Description string                     `json:"description"`
	Labels      []string                   `json:"labels"`
	Metadata    map[string]json.RawMessage `json:"metadata"`
}

type UpdateRegisteredModelRequest struct {
	Description *string `json:"description"`
}

// PatchMetadataRequest removes the keys in Remove, then sets every key in Add.
type PatchMetadataRequest struct {
	Add    map[string]json.RawMessage `json:"add"`
	Remove []string                   `json:"remove"`
}

type SetLabelsRequest struct {
	Labels []string `json:"labels"`
}

type RegisteredModelResponse struct {
	ID          uuid.UUID      `json:"id"`
	CreatedAt   string         `json:"created_at"`
	UpdatedAt   string         `json:"updated_at"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Metadata    map[string]any `json:"metadata"`
	Labels      []string       `json:"labels"`
	Archived    bool           `json:"archived"`
	State       string         `json:"state"`
	Owner       string         `json:"owner"`
	NumVersions int            `json:"num_versions"`
}

type ListRegisteredModelsResponse struct {
	Items      []RegisteredModelResponse `json:"items"`
	Total      int                       `json:"total"`
	PageSize   int                       `json:"page_size"`
	NextOffset int                       `json:"next_offset"`
}

type LabelsResponse struct {
	Labels []string `json:"labels"`
}
