// Package server exposes the gallery over HTTP. Handlers stay thin: they
// check auth, decode the request and hand off to the store or the listing
// service.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dharsanguruparan/PhotoDrop/internal/auth"
	"github.com/dharsanguruparan/PhotoDrop/internal/config"
	"github.com/dharsanguruparan/PhotoDrop/internal/gallery"
	"github.com/dharsanguruparan/PhotoDrop/internal/model"
	"github.com/dharsanguruparan/PhotoDrop/internal/storage"
)

// Server hosts the HTTP handlers for PhotoDrop.
type Server struct {
	cfg     *config.Config
	store   *storage.Store
	gallery *gallery.Service
	uploads *auth.Verifier
	seeds   *auth.Verifier
	limiter *ipLimiter
}

// New creates a configured server.
func New(cfg *config.Config, store *storage.Store, list *gallery.Service) *Server {
	return &Server{
		cfg:     cfg,
		store:   store,
		gallery: list,
		uploads: auth.NewVerifier(cfg.UploadToken),
		seeds:   auth.NewVerifier(cfg.SeedToken),
		limiter: newIPLimiter(cfg.RateLimit, cfg.RateWindow),
	}
}

// Serve launches the HTTP server until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()
	log.Info().Str("address", s.cfg.Address).Str("storage", s.store.Root()).Msg("photodrop listening")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	return recoverer(requestLogger(cors(s.routes())))
}

// routes registers every endpoint. Only /api/ routes are rate limited: a
// single gallery page loads one thumbnail per photo.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	api := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, s.limiter.middleware(h))
	}
	mux.HandleFunc("GET /healthz", s.handleHealth)
	api("GET /api/photos", s.handleList)
	api("DELETE /api/photos/{name}", s.handleDelete)
	api("POST /api/upload", s.handleUpload)
	api("POST /api/seed", s.handleSeed)
	mux.HandleFunc("GET /files/{name}", s.handleOriginal)
	mux.HandleFunc("GET /files/thumbs/{name}", s.handleThumbnail)
	if s.cfg.PublicDir != "" {
		mux.Handle("GET /", http.FileServer(http.Dir(s.cfg.PublicDir)))
	}
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func respondError(w http.ResponseWriter, status int, err error) {
	respondJSON(w, status, errorBody{Error: err.Error(), Kind: model.ErrorKind(err)})
}

// statusFor maps a request-level error onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrUnsupportedType), errors.Is(err, model.ErrInvalidImage):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
