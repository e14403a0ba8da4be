package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"experiment-model-registry/internal/adapters/primary/http/dto"
)

// ListModelLabels returns every label in use, most common first.
func (h *Handler) ListModelLabels(c *gin.Context) {
	labels, err := h.querySvc.LabelUnion(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("list model labels failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.LabelsResponse{Labels: labels})
}
