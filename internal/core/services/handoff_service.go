package services

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"handoff/internal/domain"
	"handoff/internal/ports"
)

var (
	// ErrUnknownPlatform is returned when no handler is registered for a platform.
	ErrUnknownPlatform = errors.New("unknown platform")
	// ErrDuplicatePlatform is returned when a platform is registered twice.
	ErrDuplicatePlatform = errors.New("platform already registered")
	// ErrNoOwner is returned when no handler claims a callback.
	ErrNoOwner = errors.New("no handler owns callback")
)

// HandoffService routes requests to the registered platform handlers and
// offers each callback to the handler that owns it.
type HandoffService struct {
	mu       sync.RWMutex
	handlers map[domain.Platform]ports.PlatformHandler
	order    []domain.Platform
	logger   *slog.Logger
}

// NewHandoffService creates a service with the given handlers.
func NewHandoffService(logger *slog.Logger, handlers ...ports.PlatformHandler) (*HandoffService, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &HandoffService{
		handlers: make(map[domain.Platform]ports.PlatformHandler),
		logger:   logger.With("component", "handoff_service"),
	}
	for _, h := range handlers {
		if err := s.Register(h); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Register adds a platform handler.
func (s *HandoffService) Register(h ports.PlatformHandler) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := h.Platform()
	if _, ok := s.handlers[p]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicatePlatform, p)
	}
	s.handlers[p] = h
	s.order = append(s.order, p)
	s.logger.Info("platform registered", "platform", p, "endpoints", h.Endpoints())
	return nil
}

// Platforms lists registered platforms in registration order.
func (s *HandoffService) Platforms() []domain.Platform {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Platform, len(s.order))
	copy(out, s.order)
	return out
}

func (s *HandoffService) handler(p domain.Platform) (ports.PlatformHandler, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.handlers[p]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlatform, p)
	}
	return h, nil
}

// Share starts a share on platform. The outcome is delivered to done, possibly
// before Share returns.
func (s *HandoffService) Share(p domain.Platform, message domain.Message, endpoint domain.Endpoint, done domain.Completion) error {
	h, err := s.handler(p)
	if err != nil {
		return err
	}
	h.Share(message, endpoint, done)
	return nil
}

// Oauth starts an oauth request on platform.
func (s *HandoffService) Oauth(p domain.Platform, done domain.Completion) error {
	h, err := s.handler(p)
	if err != nil {
		return err
	}
	h.Oauth(done)
	return nil
}

// HandleCallback gives event to the first handler that owns it.
func (s *HandoffService) HandleCallback(event domain.CallbackEvent) error {
	s.mu.RLock()
	var owner ports.PlatformHandler
	for _, p := range s.order {
		if h := s.handlers[p]; h.Owns(event) {
			owner = h
			break
		}
	}
	s.mu.RUnlock()

	if owner == nil {
		s.logger.Warn("callback not owned by any platform", "source", event.Source, "url", event.Raw)
		return ErrNoOwner
	}
	owner.HandleCallback(event)
	return nil
}
