// Package httpapi serves the admin HTTP API next to the gRPC endpoint:
// a health check plus user management and audit-log routes guarded by a
// bearer access token with the admin role.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/taskboard/internal/common"
	"github.com/dmitrijs2005/taskboard/internal/logging"
	"github.com/dmitrijs2005/taskboard/internal/server/models"
	"github.com/dmitrijs2005/taskboard/internal/server/services"
	"github.com/gin-gonic/gin"
)

type userService interface {
	ListProfiles(ctx context.Context, caller models.Caller) ([]*models.Profile, error)
	UpdateProfile(ctx context.Context, caller models.Caller, id, username string) error
	DeleteProfile(ctx context.Context, caller models.Caller, id string) error
}

type auditService interface {
	List(ctx context.Context, caller models.Caller, filter models.AuditFilter) ([]*models.AuditLogEntry, error)
	Export(ctx context.Context, caller models.Caller, action string) (*services.ExportResult, error)
}

type Handler struct {
	Users  userService
	Audit  auditService
	Logger logging.Logger
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, common.ErrorNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, common.ErrorForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, common.ErrorUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	default:
		h.Logger.Error(c.Request.Context(), "admin api request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) ListUsers(c *gin.Context) {
	profiles, err := h.Users.ListProfiles(c.Request.Context(), callerOf(c))
	if err != nil {
		h.fail(c, err)
		return
	}

	out := make([]gin.H, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, gin.H{
			"id":         p.ID,
			"username":   p.Username,
			"email":      p.Email,
			"role":       p.Role,
			"created_at": p.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) UpdateUser(c *gin.Context) {
	var input struct {
		Username string `json:"username" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Users.UpdateProfile(c.Request.Context(), callerOf(c), c.Param("id"), input.Username); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *Handler) DeleteUser(c *gin.Context) {
	if err := h.Users.DeleteProfile(c.Request.Context(), callerOf(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *Handler) ListAuditLogs(c *gin.Context) {
	filter := models.AuditFilter{Action: c.Query("action")}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		filter.Limit = limit
	}

	entries, err := h.Audit.List(c.Request.Context(), callerOf(c), filter)
	if err != nil {
		h.fail(c, err)
		return
	}

	out := make([]gin.H, 0, len(entries))
	for _, e := range entries {
		details := e.Details
		if len(details) == 0 {
			details = []byte("{}")
		}
		out = append(out, gin.H{
			"id":          e.ID,
			"user_id":     e.UserID,
			"username":    e.Username,
			"action":      e.Action,
			"entity_type": e.EntityType,
			"entity_id":   e.EntityID,
			"details":     details,
			"created_at":  e.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) ExportAuditLogs(c *gin.Context) {
	var input struct {
		Action string `json:"action"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	res, err := h.Audit.Export(c.Request.Context(), callerOf(c), input.Action)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": res.Key, "url": res.URL, "count": res.Count})
}
