package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"assistant/internal/app"
	"assistant/internal/assistant"
	"assistant/internal/domain"
	"assistant/internal/httputil"
	"assistant/internal/index"
	"assistant/internal/queue"
	"assistant/internal/watcher"
)

const (
	shutdownTimeout = 10 * time.Second
	// reloadTimeout bounds an admin reload, which outlives a dropped client.
	reloadTimeout = 10 * time.Minute
)

type queryRequest struct {
	Query string `json:"query" validate:"required,notblank"`
}

// queryHandler is the part of the assistant the HTTP layer needs.
type queryHandler interface {
	Handle(ctx context.Context, query string) (domain.Response, error)
}

type reloader interface {
	Reload(ctx context.Context) error
}

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := app.Build(ctx)
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		return 1
	}
	defer deps.Close()
	log := deps.Log

	if err := deps.Index.LoadOrBuild(ctx, false); err != nil {
		log.Error("document index unavailable; QA queries fail until a reload succeeds", "err", err)
	} else {
		log.Info("document index ready", "fragments", deps.Index.Len(), "activated_at", deps.Index.ActivatedAt())
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", deps.Config.Port),
		Handler:           newRouter(log, deps.Config.RequestTimeout, deps.Assistant, deps.Reloader),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("assistant listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return deps.Queue.Subscribe(gctx, queue.TaskTypeReindex, deps.Reloader.HandleTask)
	})
	if deps.Config.WatchDocuments {
		w := watcher.New(deps.Config.DocumentsDir, watcher.DefaultDebounce, deps.Reloader.Reload, log)
		g.Go(func() error { return w.Run(gctx) })
	}

	if err := g.Wait(); err != nil {
		log.Error("assistant stopped", "err", err)
		return 1
	}
	log.Info("assistant stopped")
	return 0
}

func newRouter(log *slog.Logger, timeout time.Duration, a queryHandler, rl reloader) *chi.Mux {
	r := httputil.NewRouter(log, timeout)
	r.Post("/query", handleQuery(log, a))
	r.Get("/health", httputil.HealthHandler())
	r.Post("/admin/reload-documents", handleReload(log, rl))
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func handleQuery(log *slog.Logger, a queryHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req queryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.Fail(log, w, "invalid payload", err, http.StatusBadRequest)
			return
		}
		if err := httputil.Validator.Struct(&req); err != nil {
			httputil.Fail(log, w, "Query cannot be empty", err, http.StatusBadRequest)
			return
		}

		resp, err := a.Handle(r.Context(), req.Query)
		switch {
		case err == nil:
			httputil.WriteJSON(w, http.StatusOK, resp)
		case errors.Is(err, assistant.ErrEmptyQuery):
			httputil.Fail(log, w, "Query cannot be empty", err, http.StatusBadRequest)
		case errors.Is(err, index.ErrNotReady):
			httputil.Fail(log, w, "document index is not ready", err, http.StatusServiceUnavailable)
		default:
			httputil.Fail(log, w, "failed to process query", err, http.StatusInternalServerError)
		}
	}
}

func handleReload(log *slog.Logger, rl reloader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), reloadTimeout)
		defer cancel()
		if err := rl.Reload(ctx); err != nil {
			httputil.Fail(log, w, "failed to reload documents", err, http.StatusInternalServerError)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "Documents reloaded successfully"})
	}
}
