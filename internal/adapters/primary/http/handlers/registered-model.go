package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"experiment-model-registry/internal/adapters/primary/http/dto"
	"experiment-model-registry/internal/adapters/primary/http/middleware"
	"experiment-model-registry/internal/core/domain"
	"experiment-model-registry/internal/core/ports/output"
	"experiment-model-registry/internal/core/services"
)

func (h *Handler) ListModels(c *gin.Context) {
	filter, err := parseListFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	models, total, err := h.querySvc.List(c.Request.Context(), filter)
	if err != nil {
		log.WithError(err).Error("list models failed")
		mapDomainError(c, err)
		return
	}

	items := make([]dto.RegisteredModelResponse, len(models))
	for i, m := range models {
		items[i] = dto.ToRegisteredModelResponse(m)
	}

	c.JSON(http.StatusOK, dto.ListRegisteredModelsResponse{
		Items:      items,
		Total:      total,
		PageSize:   len(items),
		NextOffset: filter.Offset + len(items),
	})
}

func (h *Handler) CreateModel(c *gin.Context) {
	var req dto.CreateRegisteredModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	model, err := h.modelSvc.Create(c.Request.Context(), services.CreateModelInput{
		Name:        req.Name,
		Description: req.Description,
		Owner:       c.GetString(middleware.ContextKeyUsername),
		Labels:      req.Labels,
		Metadata:    dto.RawMetadata(req.Metadata),
	})
	if err != nil {
		log.WithError(err).Error("create model failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToRegisteredModelResponse(model))
}

func (h *Handler) GetModel(c *gin.Context) {
	model, ok := h.resolveModel(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.ToRegisteredModelResponse(model))
}

func (h *Handler) UpdateModel(c *gin.Context) {
	var req dto.UpdateRegisteredModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	target, ok := h.resolveModel(c)
	if !ok {
		return
	}

	model, err := h.modelSvc.Update(c.Request.Context(), target.ID, services.UpdateModelInput{
		Description: req.Description,
	})
	if err != nil {
		log.WithError(err).Error("update model failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToRegisteredModelResponse(model))
}

func (h *Handler) DeleteModel(c *gin.Context) {
	target, ok := h.resolveModel(c)
	if !ok {
		return
	}

	if err := h.modelSvc.Delete(c.Request.Context(), target.ID); err != nil {
		log.WithError(err).Error("delete model failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *Handler) PatchModelMetadata(c *gin.Context) {
	var req dto.PatchMetadataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	target, ok := h.resolveModel(c)
	if !ok {
		return
	}

	model, err := h.modelSvc.PatchMetadata(c.Request.Context(), target.ID, services.PatchMetadataInput{
		Add:    dto.RawMetadata(req.Add),
		Remove: req.Remove,
	})
	if err != nil {
		log.WithError(err).Error("patch model metadata failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToRegisteredModelResponse(model))
}

func (h *Handler) SetModelLabels(c *gin.Context) {
	var req dto.SetLabelsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	target, ok := h.resolveModel(c)
	if !ok {
		return
	}

	model, err := h.modelSvc.SetLabels(c.Request.Context(), target.ID, req.Labels)
	if err != nil {
		log.WithError(err).Error("set model labels failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToRegisteredModelResponse(model))
}

func (h *Handler) ArchiveModel(c *gin.Context) {
	target, ok := h.resolveModel(c)
	if !ok {
		return
	}

	model, err := h.modelSvc.Archive(c.Request.Context(), target.ID)
	if err != nil {
		log.WithError(err).Error("archive model failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToRegisteredModelResponse(model))
}

func (h *Handler) UnarchiveModel(c *gin.Context) {
	target, ok := h.resolveModel(c)
	if !ok {
		return
	}

	model, err := h.modelSvc.Unarchive(c.Request.Context(), target.ID)
	if err != nil {
		log.WithError(err).Error("unarchive model failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToRegisteredModelResponse(model))
}

// resolveModel looks up the :model path segment. On failure it has already
// written the response.
func (h *Handler) resolveModel(c *gin.Context) (*domain.RegisteredModel, bool) {
	model, err := h.modelSvc.Get(c.Request.Context(), c.Param("model"))
	if err != nil {
		mapDomainError(c, err)
		return nil, false
	}
	return model, true
}

func parseListFilter(c *gin.Context) (ports.ListFilter, error) {
	sortBy, err := domain.ParseModelSortBy(c.Query("sort_by"))
	if err != nil {
		return ports.ListFilter{}, err
	}
	order, err := domain.ParseSortOrder(c.Query("order"))
	if err != nil {
		return ports.ListFilter{}, err
	}

	filter := ports.ListFilter{
		SortBy: sortBy,
		Order:  order,
		Name:   c.Query("name"),
		Owner:  c.Query("owner"),
		Labels: c.QueryArray("label"),
	}

	if raw := c.Query("archived"); raw != "" {
		archived, err := strconv.ParseBool(raw)
		if err != nil {
			return ports.ListFilter{}, errInvalidQuery("archived")
		}
		filter.Archived = &archived
	}
	if filter.Limit, err = parseNonNegative(c, "limit"); err != nil {
		return ports.ListFilter{}, err
	}
	if filter.Offset, err = parseNonNegative(c, "offset"); err != nil {
		return ports.ListFilter{}, err
	}

	return filter, nil
}

func parseNonNegative(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errInvalidQuery(key)
	}
	return n, nil
}

func errInvalidQuery(key string) error {
	return fmt.Errorf("invalid %s parameter", key)
}
