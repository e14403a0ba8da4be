package dto

import (
	"encoding/json"
	"time"

	"experiment-model-registry/internal/core/domain"
)

const timeFormat = time.RFC3339Nano

func ToRegisteredModelResponse(m *domain.RegisteredModel) RegisteredModelResponse {
	metadata := map[string]any(m.Metadata)
	if metadata == nil {
		metadata = map[string]any{}
	}
	labels := []string(m.Labels)
	if labels == nil {
		labels = []string{}
	}

	return RegisteredModelResponse{
		ID:          m.ID,
		CreatedAt:   m.CreatedAt.Format(timeFormat),
		UpdatedAt:   m.UpdatedAt.Format(timeFormat),
		Name:        m.Name,
		Description: m.Description,
		Metadata:    metadata,
		Labels:      labels,
		Archived:    m.Archived,
		State:       string(m.State()),
		Owner:       m.Owner,
		NumVersions: m.NumVersions,
	}
}

func ToModelVersionResponse(v *domain.ModelVersion) ModelVersionResponse {
	return ModelVersionResponse{
		RegisteredModelID: v.RegisteredModelID,
		ModelName:         v.ModelName,
		Version:           v.Version,
		CheckpointRef:     v.CheckpointRef,
		Name:              v.Name,
		Notes:             v.Notes,
		Owner:             v.Owner,
		CreatedAt:         v.CreatedAt.Format(timeFormat),
		UpdatedAt:         v.UpdatedAt.Format(timeFormat),
	}
}

// RawMetadata converts request metadata into the loosely typed map the
// services validate. Raw values encode back to exactly what the client sent.
func RawMetadata(in map[string]json.RawMessage) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
