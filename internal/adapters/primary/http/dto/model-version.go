package dto

import (
	"github.com/google/uuid"
)

type RegisterModelVersionRequest struct {
	CheckpointRef string `json:"checkpoint_ref" binding:"required"`
	Name          string `json:"name"`
	Notes         string `json:"notes"`
}

type UpdateModelVersionRequest struct {
	Name  *string `json:"name"`
	Notes *string `json:"notes"`
}

type ModelVersionResponse struct {
	RegisteredModelID uuid.UUID `json:"registered_model_id"`
	ModelName         string    `json:"model_name"`
	Version           int       `json:"version"`
	CheckpointRef     string    `json:"checkpoint_ref"`
	Name              string    `json:"name"`
	Notes             string    `json:"notes"`
	Owner             string    `json:"owner"`
	CreatedAt         string    `json:"created_at"`
	UpdatedAt         string    `json:"updated_at"`
}

type ListModelVersionsResponse struct {
	Items []ModelVersionResponse `json:"items"`
	Total int                    `json:"total"`
}
