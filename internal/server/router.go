// Package server serves a read-only JSON view of the archive registry.
package server

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"
	"tubarchive/internal/contracts"
	"tubarchive/internal/domain/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// DefaultPort is the port the status server listens on when none is configured.
const DefaultPort = "8827"

const shutdownTimeout = 5 * time.Second

type api struct {
	cs contracts.ChannelStore
	vs contracts.VideoStore
	rs contracts.RunStore
	db *sql.DB
}

// NewRouter returns the status API handler.
func NewRouter(s contracts.Store) http.Handler {
	a := &api{
		cs: s.ChannelStore(),
		vs: s.VideoStore(),
		rs: s.RunStore(),
		db: s.ChannelStore().GetDB(),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SetHeader("Content-Type", "application/json"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/channels", func(r chi.Router) {
			r.Get("/", a.handleListChannels)
			r.Get("/{id}", a.handleGetChannel)
			r.Get("/{id}/videos", a.handleChannelVideos)
		})
		r.Get("/videos/{id}", a.handleGetVideo)
		r.Get("/runs", a.handleListRuns)
		r.Get("/blocked", a.handleListBlocked)
	})
	return r
}

// Serve runs the status server on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, s contracts.Store) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(s),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Pl.S("Status server running on http://%s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
