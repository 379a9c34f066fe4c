package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"maintenance-logbook-backend/internal/account"
	"maintenance-logbook-backend/internal/attachment"
	"maintenance-logbook-backend/internal/auth"
	"maintenance-logbook-backend/internal/lifecycle"
	"maintenance-logbook-backend/internal/mw"
)

// Pinger reports whether the backing database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	complaints  *lifecycle.Service
	accounts    *account.Service
	attachments *attachment.Store
	db          Pinger
	log         *zap.Logger
}

// NewHandler creates a new API handler.
func NewHandler(complaints *lifecycle.Service, accounts *account.Service, attachments *attachment.Store, db Pinger, logger *zap.Logger) *Handler {
	return &Handler{
		complaints:  complaints,
		accounts:    accounts,
		attachments: attachments,
		db:          db,
		log:         logger,
	}
}

func principal(c *gin.Context) auth.Principal {
	p, _ := mw.Principal(c)
	return p
}

// fail writes the HTTP status that matches err.
func (h *Handler) fail(c *gin.Context, err error) {
	var ve *lifecycle.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error()})
	case errors.Is(err, attachment.ErrNotImage), errors.Is(err, attachment.ErrTooLarge):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, lifecycle.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, lifecycle.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, account.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		h.log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// Healthz reports process and database liveness.
func (h *Handler) Healthz(c *gin.Context) {
	if err := h.db.Ping(c.Request.Context()); err != nil {
		h.log.Warn("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
