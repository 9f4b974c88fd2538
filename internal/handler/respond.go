package handler

import (
	"errors"
	"fmt"
	"net/http"

	"zapshift/internal/domain"
	"zapshift/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyPaid):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUpstreamPayment):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// fail logs err with its kind and writes the matching status. Server-side
// failures get a generic message; client errors carry the reason.
func fail(c *gin.Context, err error, extra gin.H) {
	status := statusFor(err)
	log := logger.FromGin(c)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", zap.String("kind", domain.Kind(err)), zap.Error(err))
	} else {
		log.Info("request rejected", zap.String("kind", domain.Kind(err)), zap.Error(err))
	}
	_ = c.Error(err)

	msg := err.Error()
	switch status {
	case http.StatusInternalServerError:
		msg = "internal error"
	case http.StatusBadGateway:
		msg = "payment provider unavailable"
	}
	body := gin.H{"error": msg}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(status, body)
}

// parseID validates a path identifier before it reaches the store.
func parseID(c *gin.Context) (string, error) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", fmt.Errorf("id must be a UUID: %w", domain.ErrInvalidInput)
	}
	return id, nil
}
