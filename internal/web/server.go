// Package web serves the inventory JSON API.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vbonduro/stowaway/internal/metrics"
	"github.com/vbonduro/stowaway/internal/service"
	"github.com/vbonduro/stowaway/internal/store"
)

type Server struct {
	service *service.InventoryService
	router  chi.Router
	logger  *slog.Logger
}

func NewServer(svc *service.InventoryService, logger *slog.Logger) *Server {
	s := &Server{
		service: svc,
		router:  chi.NewRouter(),
		logger:  logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	r := s.router
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(requestLogger(s.logger))
	r.Use(securityHeaders)
	r.Use(metrics.Middleware())

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(requireUser)

		r.Post("/inventory/load", s.handleLoad)

		r.Get("/places", s.handleListPlaces)
		r.Post("/places", s.handleCreatePlace)
		r.Delete("/places/{id}", s.handleDeletePlace)
		r.Post("/places/{id}/members", s.handleSharePlace)
		r.Post("/places/{id}/photos", s.handleUploadPhoto(store.PhotoPlace))

		r.Get("/containers", s.handleListContainers)
		r.Post("/containers", s.handleCreateContainer)
		r.Delete("/containers/{id}", s.handleDeleteContainer)
		r.Post("/containers/{id}/photos", s.handleUploadPhoto(store.PhotoContainer))

		r.Get("/items", s.handleListItems)
		r.Post("/items", s.handleCreateItem)
		r.Delete("/items/{id}", s.handleDeleteItem)
		r.Post("/items/{id}/photos", s.handleUploadPhoto(store.PhotoItem))

		r.Get("/groups", s.handleListGroups)
		r.Post("/groups", s.handleCreateGroup)
		r.Get("/search", s.handleSearch)
		r.Get("/qr/{code}", s.handleQRCode)
		r.Get("/photos/*", s.handleGetPhoto)
	})
}

// securityHeaders sets the browser hardening headers on every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'none'; img-src 'self'; frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}

// requestLogger emits one log line per request.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", chiMiddleware.GetReqID(r.Context()),
				"user_id", r.Header.Get(headerUserID),
			)
		})
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
