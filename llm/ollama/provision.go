package ollama

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/sethvargo/go-retry"
)

const probeTimeout = 5 * time.Second

type modelAPI interface {
	List(ctx context.Context) (*api.ListResponse, error)
	Pull(ctx context.Context, req *api.PullRequest, fn api.PullProgressFunc) error
}

// Provisioner prepares an Ollama server before the bot takes traffic: it
// waits for the server to answer and pulls the configured model if needed.
type Provisioner struct {
	api         modelAPI
	model       string
	attempts    uint64
	delay       time.Duration
	pullTimeout time.Duration
}

type ProvisionerOpts struct {
	BaseEndpoint string
	ModelID      string
	Attempts     uint64
	Delay        time.Duration
	PullTimeout  time.Duration
	HTTPClient   *http.Client
}

func NewProvisioner(opts ProvisionerOpts) (*Provisioner, error) {
	base, err := url.Parse(opts.BaseEndpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ollama endpoint: %w", err)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	return newProvisioner(api.NewClient(base, opts.HTTPClient), opts), nil
}

func newProvisioner(m modelAPI, opts ProvisionerOpts) *Provisioner {
	if opts.Attempts == 0 {
		opts.Attempts = 1
	}
	if opts.Delay <= 0 {
		opts.Delay = time.Millisecond
	}
	return &Provisioner{
		api:         m,
		model:       opts.ModelID,
		attempts:    opts.Attempts,
		delay:       opts.Delay,
		pullTimeout: opts.PullTimeout,
	}
}

// WaitReady polls the model list until the server answers or the attempts
// run out.
func (p *Provisioner) WaitReady(ctx context.Context) error {
	attempt := 0
	backoff := retry.WithMaxRetries(p.attempts-1, retry.NewConstant(p.delay))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		defer cancel()

		if _, err := p.api.List(probeCtx); err != nil {
			slog.Info("PROVISION: Waiting for Ollama", "attempt", attempt, "max_attempts", p.attempts, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("ollama not ready after %d attempts: %w", attempt, err)
	}

	slog.Info("PROVISION: Ollama is ready", "attempts", attempt)
	return nil
}

// HasModel reports whether any installed model name contains the configured
// model id, so "llama3.2" matches "llama3.2:latest".
func (p *Provisioner) HasModel(ctx context.Context) (bool, error) {
	resp, err := p.api.List(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to list models: %w", err)
	}
	for _, m := range resp.Models {
		if strings.Contains(m.Name, p.model) {
			return true, nil
		}
	}
	return false, nil
}

// EnsureModel pulls the configured model unless it is already installed.
func (p *Provisioner) EnsureModel(ctx context.Context) error {
	ok, err := p.HasModel(ctx)
	if err != nil {
		return err
	}
	if ok {
		slog.Info("PROVISION: Model already available", "model", p.model)
		return nil
	}

	slog.Info("PROVISION: Pulling model", "model", p.model, "timeout", p.pullTimeout)
	if p.pullTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.pullTimeout)
		defer cancel()
	}

	lastStatus := ""
	err = p.api.Pull(ctx, &api.PullRequest{Model: p.model}, func(pr api.ProgressResponse) error {
		if pr.Status != lastStatus {
			slog.Info("PROVISION: Pull progress", "model", p.model, "status", pr.Status)
			lastStatus = pr.Status
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to pull model %s: %w", p.model, err)
	}

	slog.Info("PROVISION: Model pulled", "model", p.model)
	return nil
}
