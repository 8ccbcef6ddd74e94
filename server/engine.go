package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// NewEngine returns a gin engine with request logging and a recovery
// handler that answers panics with the internal error body.
func NewEngine(component string) *gin.Engine {
	r := gin.New()
	r.Use(requestLogger(component))
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		slog.Error(component+": Recovered from panic", "path", c.Request.URL.Path, "panic", recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Internal server error: %v", recovered)})
	}))
	return r
}

func requestLogger(component string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Info(component+": Request handled",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
	}
}
