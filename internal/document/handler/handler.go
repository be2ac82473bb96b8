package handler

import (
	"errors"
	"net/http"

	"github.com/docgate/docgate/internal/document"
	"github.com/docgate/docgate/internal/document/service"
	"github.com/docgate/docgate/pkg/logger"
	"github.com/docgate/docgate/pkg/middleware"
	"github.com/gin-gonic/gin"
)

// Handler exposes the document access control API over HTTP. All routes sit
// behind the identity middleware, so by the time a handler runs the caller's
// username is present in the gin context.
type Handler struct {
	svc service.Service
}

func New(svc service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts the document routes. identity resolves the caller username
// (X-User header or optional bearer fallback) and rejects anonymous requests.
func (h *Handler) Register(r *gin.Engine, identity gin.HandlerFunc) {
	g := r.Group("/api/documents", identity)
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.DELETE("/:id", h.Delete)
	g.POST("/:id/grant", h.GrantPermission)
	g.POST("/access-check", h.CheckAccess)
}

type userPermission struct {
	Username   string `json:"username" binding:"required"`
	Permission string `json:"permission" binding:"required"`
}

type createDocumentRequest struct {
	Name            string           `json:"name" binding:"required"`
	Content         string           `json:"content"`
	FileType        string           `json:"fileType"`
	AccessibleUsers []userPermission `json:"accessibleUsers" binding:"omitempty,dive"`
}

type grantPermissionRequest struct {
	Username   string `json:"username" binding:"required"`
	Permission string `json:"permission" binding:"required"`
}

// documentIds is deliberately not "required": an empty candidate set is legal
// and yields an empty result rather than a validation error.
type accessCheckRequest struct {
	DocumentIDs []string `json:"documentIds"`
	Permission  string   `json:"permission" binding:"required"`
}

func (h *Handler) Create(c *gin.Context) {
	username := c.GetString(middleware.UserKey)
	var req createDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bad Request", "message": err.Error()})
		return
	}
	grants := make([]document.Grant, 0, len(req.AccessibleUsers))
	for _, up := range req.AccessibleUsers {
		p, err := document.ParsePermission(up.Permission)
		if err != nil {
			writeError(c, err)
			return
		}
		grants = append(grants, document.Grant{Username: up.Username, Permission: p})
	}
	doc, err := h.svc.Create(c.Request.Context(), username, service.CreateInput{
		Name:     req.Name,
		Content:  req.Content,
		FileType: req.FileType,
		Grants:   grants,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

func (h *Handler) List(c *gin.Context) {
	username := c.GetString(middleware.UserKey)
	docs, err := h.svc.List(c.Request.Context(), username)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

func (h *Handler) Get(c *gin.Context) {
	username := c.GetString(middleware.UserKey)
	doc, err := h.svc.Get(c.Request.Context(), username, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *Handler) Delete(c *gin.Context) {
	username := c.GetString(middleware.UserKey)
	if err := h.svc.Delete(c.Request.Context(), username, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) GrantPermission(c *gin.Context) {
	username := c.GetString(middleware.UserKey)
	var req grantPermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bad Request", "message": err.Error()})
		return
	}
	p, err := document.ParsePermission(req.Permission)
	if err != nil {
		writeError(c, err)
		return
	}
	doc, err := h.svc.Grant(c.Request.Context(), username, c.Param("id"), req.Username, p)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *Handler) CheckAccess(c *gin.Context) {
	username := c.GetString(middleware.UserKey)
	var req accessCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bad Request", "message": err.Error()})
		return
	}
	p, err := document.ParsePermission(req.Permission)
	if err != nil {
		writeError(c, err)
		return
	}
	ids, err := h.svc.CheckAccess(c.Request.Context(), username, p, req.DocumentIDs)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"accessibleIds": ids})
}

// writeError maps domain errors onto HTTP statuses. Unexpected errors are
// logged and surfaced as a generic 500 without internal detail.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, document.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not Found", "message": err.Error()})
	case errors.Is(err, document.ErrAccessDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden", "message": err.Error()})
	case errors.Is(err, document.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bad Request", "message": err.Error()})
	default:
		logger.Errorf("internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error", "message": "an unexpected error occurred"})
	}
}
