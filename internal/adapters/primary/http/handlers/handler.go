package handlers

import (
	"github.com/gin-gonic/gin"

	"experiment-model-registry/internal/core/services"
)

type Handler struct {
	modelSvc   *services.RegisteredModelService
	versionSvc *services.ModelVersionService
	querySvc   *services.ModelQueryService
}

func New(
	modelSvc *services.RegisteredModelService,
	versionSvc *services.ModelVersionService,
	querySvc *services.ModelQueryService,
) *Handler {
	return &Handler{
		modelSvc:   modelSvc,
		versionSvc: versionSvc,
		querySvc:   querySvc,
	}
}

// RegisterRoutes mounts the registry API on r. The :model segment accepts
// either the model ID or its name.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	// Registered Models
	r.GET("/models", h.ListModels)
	r.POST("/models", h.CreateModel)
	r.GET("/models/:model", h.GetModel)
	r.PATCH("/models/:model", h.UpdateModel)
	r.DELETE("/models/:model", h.DeleteModel)
	r.PATCH("/models/:model/metadata", h.PatchModelMetadata)
	r.PUT("/models/:model/labels", h.SetModelLabels)
	r.POST("/models/:model/archive", h.ArchiveModel)
	r.POST("/models/:model/unarchive", h.UnarchiveModel)

	// Model Versions
	r.GET("/models/:model/versions", h.ListModelVersions)
	r.POST("/models/:model/versions", h.RegisterModelVersion)
	r.GET("/models/:model/versions/latest", h.GetLatestModelVersion)
	r.GET("/models/:model/versions/:version", h.GetModelVersion)
	r.PATCH("/models/:model/versions/:version", h.UpdateModelVersion)
	r.DELETE("/models/:model/versions/:version", h.DeleteModelVersion)

	// Labels
	r.GET("/model-labels", h.ListModelLabels)
}
