package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"experiment-model-registry/internal/core/domain"
)

// mapDomainError writes the response for err by its kind. Unresolvable is
// checked first so an unknown checkpoint reads as a missing resource.
func mapDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrUnresolvable):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	case errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
