package ollama

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModelAPI struct {
	listErrs  []error
	models    []string
	listCalls int
	pulled    []string
	pullErr   error
	progress  []string
}

func (f *fakeModelAPI) List(ctx context.Context) (*api.ListResponse, error) {
	f.listCalls++
	if len(f.listErrs) > 0 {
		err := f.listErrs[0]
		f.listErrs = f.listErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	resp := &api.ListResponse{}
	for _, m := range f.models {
		resp.Models = append(resp.Models, api.ListModelResponse{Name: m, Model: m})
	}
	return resp, nil
}

func (f *fakeModelAPI) Pull(ctx context.Context, req *api.PullRequest, fn api.PullProgressFunc) error {
	f.pulled = append(f.pulled, req.Model)
	for _, s := range f.progress {
		if err := fn(api.ProgressResponse{Status: s}); err != nil {
			return err
		}
	}
	return f.pullErr
}

func TestProvisioner_WaitReady(t *testing.T) {
	down := errors.New("connection refused")

	tests := []struct {
		name      string
		listErrs  []error
		attempts  uint64
		wantCalls int
		wantErr   bool
	}{
		{name: "ready first try", attempts: 30, wantCalls: 1},
		{name: "ready after two failures", listErrs: []error{down, down}, attempts: 30, wantCalls: 3},
		{name: "never ready", listErrs: []error{down, down, down, down}, attempts: 3, wantCalls: 3, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeModelAPI{listErrs: tt.listErrs}
			p := newProvisioner(f, ProvisionerOpts{ModelID: "llama3.2", Attempts: tt.attempts, Delay: time.Millisecond})

			err := p.WaitReady(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantCalls, f.listCalls)
		})
	}
}

func TestProvisioner_EnsureModel(t *testing.T) {
	tests := []struct {
		name       string
		models     []string
		pullErr    error
		wantPulled []string
		wantErr    bool
	}{
		{name: "already installed with tag", models: []string{"mistral:7b", "llama3.2:latest"}},
		{name: "missing is pulled", models: []string{"mistral:7b"}, wantPulled: []string{"llama3.2"}},
		{name: "pull failure", pullErr: errors.New("disk full"), wantPulled: []string{"llama3.2"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeModelAPI{models: tt.models, pullErr: tt.pullErr, progress: []string{"pulling manifest", "pulling manifest", "success"}}
			p := newProvisioner(f, ProvisionerOpts{ModelID: "llama3.2", Attempts: 1})

			err := p.EnsureModel(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantPulled, f.pulled)
		})
	}
}

func TestProvisioner_HasModelOverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"models":[{"name":"llama3.2:latest","model":"llama3.2:latest"}]}`)) // nolint: errcheck
	}))
	defer srv.Close()

	p, err := NewProvisioner(ProvisionerOpts{BaseEndpoint: srv.URL, ModelID: "llama3.2", Attempts: 1})
	require.NoError(t, err)

	require.NoError(t, p.WaitReady(context.Background()))
	ok, err := p.HasModel(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
}
