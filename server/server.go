// Package server exposes the bot over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"configbot"
	"configbot/orchestrator"

	"github.com/gin-gonic/gin"
)

// Handler runs a single natural-language request.
type Handler interface {
	Handle(ctx context.Context, input string) (*orchestrator.Result, error)
}

type Server struct {
	handler Handler
	slack   configbot.SlackClient
	channel string
}

type Option func(*Server)

// WithSlack posts every proposed configuration to channel. Posting failures
// are logged and never affect the response.
func WithSlack(client configbot.SlackClient, channel string) Option {
	return func(s *Server) {
		s.slack = client
		s.channel = channel
	}
}

func New(h Handler, opts ...Option) *Server {
	s := &Server{handler: h}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register mounts POST /message and GET /health on r.
func (s *Server) Register(r gin.IRoutes) {
	r.POST("/message", s.message)
	r.GET("/health", s.health)
}

type messageRequest struct {
	Input *string `json:"input"`
}

func (s *Server) message(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Input == nil {
		s.writeError(c, orchestrator.ErrMissingInput())
		return
	}

	res, err := s.handler.Handle(c.Request.Context(), *req.Input)
	if err != nil {
		s.writeError(c, err)
		return
	}

	if s.slack != nil {
		s.notify(c.Request.Context(), res)
	}

	c.Data(http.StatusOK, "application/json", res.Document)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "bot-service"})
}

func (s *Server) notify(ctx context.Context, res *orchestrator.Result) {
	msg := fmt.Sprintf("Proposed %s configuration (request %s):\n```%s```", res.App, res.RequestID, res.Document)
	if len(res.SchemaViolations) > 0 {
		msg += fmt.Sprintf("\n%d schema violation(s) reported", len(res.SchemaViolations))
	}
	if err := s.slack.PostMessage(ctx, s.channel, msg); err != nil {
		slog.Error("BOT_SERVER: Failed to post result to Slack", "error", err)
	}
}

func (s *Server) writeError(c *gin.Context, err error) {
	status, body := ErrorBody(err)
	c.JSON(status, body)
}

// ErrorBody converts err into the status code and JSON body of an error
// response. Errors other than *orchestrator.Error are internal errors.
func ErrorBody(err error) (int, map[string]any) {
	var oe *orchestrator.Error
	if !errors.As(err, &oe) {
		oe = orchestrator.NewInternalError(err)
	}

	body := map[string]any{"error": oe.Message}
	if oe.Hint != "" {
		body["hint"] = oe.Hint
	}
	if len(oe.Details) > 0 {
		body["details"] = oe.Details
	}
	if oe.Kind == orchestrator.KindEdit {
		body["reason"] = oe.Reason
		body["preview"] = oe.Preview
	}
	return StatusFor(oe.Kind), body
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(k orchestrator.Kind) int {
	switch k {
	case orchestrator.KindValidation, orchestrator.KindClassification:
		return http.StatusBadRequest
	case orchestrator.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
