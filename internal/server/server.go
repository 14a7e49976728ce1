// Package server exposes the handoff service over HTTP so a device-side
// shim can drive shares and oauth requests and feed callbacks back in.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"handoff/internal/core/services"
	"handoff/internal/domain"
	hlog "handoff/internal/log"
	"handoff/internal/pkg/config"
	"handoff/internal/ports"
)

// Handoff is the part of the handoff service the bridge drives.
type Handoff interface {
	Share(p domain.Platform, message domain.Message, endpoint domain.Endpoint, done domain.Completion) error
	Oauth(p domain.Platform, done domain.Completion) error
	HandleCallback(event domain.CallbackEvent) error
	Platforms() []domain.Platform
}

// LinkSource hands out launch links waiting for the device.
type LinkSource interface {
	Drain() []domain.LaunchRecord
}

// CallbackBody is the JSON body of a callback delivery.
type CallbackBody struct {
	URL      string `json:"url"`
	Activity bool   `json:"activity"`
}

// AcceptedBody is returned when a share or oauth request was started.
type AcceptedBody struct {
	OperationID string `json:"operation_id"`
}

// Server is the HTTP bridge.
type Server struct {
	HTTPServer *http.Server
	cfg        *config.Config
	handoff    Handoff
	parser     ports.RequestParser
	operations *OperationStore
	links      LinkSource
	newID      func() string
	logger     *slog.Logger
}

// New creates the bridge server and its routes.
func New(cfg *config.Config, handoff Handoff, parser ports.RequestParser, operations *OperationStore, links LinkSource, logger *slog.Logger) (*Server, error) {
	if cfg == nil || handoff == nil || parser == nil || operations == nil || links == nil {
		return nil, errors.New("server: missing dependency")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:        cfg,
		handoff:    handoff,
		parser:     parser,
		operations: operations,
		links:      links,
		newID:      uuid.NewString,
		logger:     logger.With("component", "server"),
	}

	chiRouter := chi.NewRouter()
	chiRouter.Use(middleware.RequestID)
	chiRouter.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  &hlog.PrintAdapter{Logger: s.logger},
		NoColor: true,
	}))
	chiRouter.Use(middleware.Recoverer)

	chiRouter.Get("/health", s.health)

	chiRouter.Route("/api/v1", func(r chi.Router) {
		r.Post("/platforms/{platform}/share", s.share)
		r.Post("/platforms/{platform}/oauth", s.oauth)
		r.Post("/callbacks", s.callback)
		r.Get("/operations", s.listOperations)
		r.Get("/operations/{operationID}", s.getOperation)
		r.Get("/links", s.drainLinks)
	})

	s.HTTPServer = &http.Server{
		Addr:         cfg.Address(),
		Handler:      chiRouter,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return s, nil
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	s.logger.Info("bridge listening", "addr", s.HTTPServer.Addr)
	return s.HTTPServer.ListenAndServe()
}

// Shutdown stops the HTTP server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down bridge")
	return s.HTTPServer.Shutdown(ctx)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"platforms": s.handoff.Platforms(),
	})
}

// complete returns the completion that records outcomes for operation id.
func (s *Server) complete(id string) domain.Completion {
	return func(outcome domain.Outcome) {
		if err := s.operations.Complete(id, outcome); err != nil {
			s.logger.Warn("outcome for unknown operation", "operation_id", id, "error", err)
			return
		}
		s.logger.Info("operation completed", "operation_id", id, "ok", outcome.OK(), "reason", outcome.Reason())
	}
}

func (s *Server) knownPlatform(w http.ResponseWriter, p domain.Platform) bool {
	for _, known := range s.handoff.Platforms() {
		if known == p {
			return true
		}
	}
	http.Error(w, fmt.Sprintf("%v: %s", services.ErrUnknownPlatform, p), http.StatusNotFound)
	return false
}

func (s *Server) share(w http.ResponseWriter, r *http.Request) {
	platform := domain.Platform(chi.URLParam(r, "platform"))
	if !s.knownPlatform(w, platform) {
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodyBytes))
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusRequestEntityTooLarge)
		return
	}
	req, err := s.parser.ParseShare(data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id := s.newID()
	s.operations.CreateOperation(id, platform, domain.OperationShare, req.Endpoint, s.cfg.Bridge.OperationTTL)
	if err := s.handoff.Share(platform, req.Message, req.Endpoint, s.complete(id)); err != nil {
		s.operations.Complete(id, domain.Failed(domain.ErrUnknown))
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, AcceptedBody{OperationID: id})
}

func (s *Server) oauth(w http.ResponseWriter, r *http.Request) {
	platform := domain.Platform(chi.URLParam(r, "platform"))
	if !s.knownPlatform(w, platform) {
		return
	}

	id := s.newID()
	s.operations.CreateOperation(id, platform, domain.OperationOauth, "", s.cfg.Bridge.OperationTTL)
	if err := s.handoff.Oauth(platform, s.complete(id)); err != nil {
		s.operations.Complete(id, domain.Failed(domain.ErrUnknown))
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, AcceptedBody{OperationID: id})
}

func (s *Server) callback(w http.ResponseWriter, r *http.Request) {
	var body CallbackBody
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodyBytes)).Decode(&body); err != nil {
		http.Error(w, "failed to decode request body", http.StatusBadRequest)
		return
	}
	if body.URL == "" {
		http.Error(w, "url is required", http.StatusBadRequest)
		return
	}

	source := domain.SourceURL
	if body.Activity {
		source = domain.SourceActivity
	}
	event, err := domain.ParseCallback(body.URL, source)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.handoff.HandleCallback(event); err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listOperations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.operations.List())
}

func (s *Server) getOperation(w http.ResponseWriter, r *http.Request) {
	record, err := s.operations.GetOperation(chi.URLParam(r, "operationID"))
	if err != nil {
		http.Error(w, "operation not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) drainLinks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.links.Drain())
}

func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrUnknownPlatform):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, services.ErrNoOwner):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		s.logger.Error("handoff request failed", "error", err)
		http.Error(w, fmt.Sprintf("internal error: %v", err), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
