// Package storecmd is the shared entry point of the schema and values store
// binaries.
package storecmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"configbot"
	"configbot/server"
	"configbot/store"

	"github.com/gin-gonic/gin"
	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Run serves kind until SIGINT or SIGTERM.
func Run(ctx context.Context, kind store.Kind) error {
	_ = godotenv.Load()

	var cfg configbot.StoreConfig
	if err := envdecode.Decode(&cfg); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}

	listen, dir := &cfg.SchemaListen, &cfg.SchemaDir
	if kind.Name == store.Values.Name {
		listen, dir = &cfg.ValuesListen, &cfg.ValuesDir
	}
	pflag.StringVar(listen, "listen", *listen, "Host:Port to listen on")
	pflag.StringVar(dir, kind.Name+"-dir", *dir, fmt.Sprintf("Directory containing %s files", kind.Name))
	pflag.Parse()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg, kind)
	if err != nil {
		return err
	}

	component := strings.ToUpper(kind.Name) + "_STORE"
	gin.SetMode(gin.ReleaseMode)
	engine := server.NewEngine(component)
	store.NewHandler(kind, st).Register(engine)

	srv := &http.Server{Addr: *listen, Handler: engine}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error(component+": Shutdown failed", "error", err)
		}
	}()

	slog.Info(component+": Starting", "service", kind.Service, "listen", *listen)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
