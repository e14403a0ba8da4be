package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"experiment-model-registry/internal/adapters/primary/http/dto"
	"experiment-model-registry/internal/adapters/primary/http/middleware"
	"experiment-model-registry/internal/core/domain"
	"experiment-model-registry/internal/core/services"
)

func (h *Handler) ListModelVersions(c *gin.Context) {
	model, ok := h.resolveModel(c)
	if !ok {
		return
	}

	versions, err := h.versionSvc.ListByModel(c.Request.Context(), model.ID)
	if err != nil {
		log.WithError(err).Error("list model versions failed")
		mapDomainError(c, err)
		return
	}

	items := make([]dto.ModelVersionResponse, len(versions))
	for i, v := range versions {
		items[i] = dto.ToModelVersionResponse(v)
	}

	c.JSON(http.StatusOK, dto.ListModelVersionsResponse{
		Items: items,
		Total: len(items),
	})
}

func (h *Handler) RegisterModelVersion(c *gin.Context) {
	var req dto.RegisterModelVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	model, ok := h.resolveModel(c)
	if !ok {
		return
	}

	version, err := h.versionSvc.Register(c.Request.Context(), services.RegisterVersionInput{
		ModelID:       model.ID,
		CheckpointRef: req.CheckpointRef,
		Name:          req.Name,
		Notes:         req.Notes,
		Owner:         c.GetString(middleware.ContextKeyUsername),
	})
	if err != nil {
		log.WithError(err).Error("register model version failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToModelVersionResponse(version))
}

func (h *Handler) GetLatestModelVersion(c *gin.Context) {
	model, ok := h.resolveModel(c)
	if !ok {
		return
	}

	version, err := h.versionSvc.Latest(c.Request.Context(), model.ID)
	if err != nil {
		log.WithError(err).Error("get latest model version failed")
		mapDomainError(c, err)
		return
	}
	if version == nil {
		c.Status(http.StatusNoContent)
		return
	}

	c.JSON(http.StatusOK, dto.ToModelVersionResponse(version))
}

func (h *Handler) GetModelVersion(c *gin.Context) {
	number, ok := parseVersion(c)
	if !ok {
		return
	}
	model, ok := h.resolveModel(c)
	if !ok {
		return
	}

	version, err := h.versionSvc.Get(c.Request.Context(), model.ID, number)
	if err != nil {
		log.WithError(err).Error("get model version failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToModelVersionResponse(version))
}

func (h *Handler) UpdateModelVersion(c *gin.Context) {
	number, ok := parseVersion(c)
	if !ok {
		return
	}

	var req dto.UpdateModelVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	model, ok := h.resolveModel(c)
	if !ok {
		return
	}

	version, err := h.versionSvc.Update(c.Request.Context(), model.ID, number, domain.VersionPatch{
		Name:  req.Name,
		Notes: req.Notes,
	})
	if err != nil {
		log.WithError(err).Error("update model version failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToModelVersionResponse(version))
}

func (h *Handler) DeleteModelVersion(c *gin.Context) {
	number, ok := parseVersion(c)
	if !ok {
		return
	}
	model, ok := h.resolveModel(c)
	if !ok {
		return
	}

	if err := h.versionSvc.Delete(c.Request.Context(), model.ID, number); err != nil {
		log.WithError(err).Error("delete model version failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func parseVersion(c *gin.Context) (int, bool) {
	number, err := strconv.Atoi(c.Param("version"))
	if err != nil || number <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrInvalidVersionNumber.Error()})
		return 0, false
	}
	return number, true
}
