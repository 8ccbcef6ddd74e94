package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handler exposes a Store over HTTP: GET /<app> and GET /health.
type Handler struct {
	kind  Kind
	store Store
}

func NewHandler(kind Kind, st Store) *Handler {
	return &Handler{kind: kind, store: st}
}

// Register mounts the store routes on r.
func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/health", h.health)
	r.GET("/:app", h.get)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": h.kind.Service})
}

func (h *Handler) get(c *gin.Context) {
	app := c.Param("app")

	data, err := h.store.Load(c.Request.Context(), app)
	if errors.Is(err, ErrNotFound) {
		slog.Info("STORE: Document not found", "kind", h.kind.Name, "app", app)
		c.JSON(http.StatusNotFound, gin.H{"error": h.kind.notFoundMessage(app)})
		return
	}
	if err != nil {
		slog.Error("STORE: Failed to load document", "kind", h.kind.Name, "app", app, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Internal server error: %s", err)})
		return
	}

	var probe any
	if err := json.Unmarshal(data, &probe); err != nil {
		slog.Error("STORE: Invalid JSON document", "kind", h.kind.Name, "app", app, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": h.kind.invalidMessage(err)})
		return
	}

	slog.Info("STORE: Served document", "kind", h.kind.Name, "app", app, "bytes", len(data))
	c.Data(http.StatusOK, "application/json", data)
}
