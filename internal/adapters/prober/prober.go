// Package prober answers app-installed probes from a configured scheme list.
package prober

import (
	"strings"
	"sync"

	"handoff/internal/ports"
)

// Static reports a fixed, replaceable set of openable URL schemes.
type Static struct {
	mu      sync.RWMutex
	schemes map[string]struct{}
}

var _ ports.AppProber = (*Static)(nil)

// NewStatic creates a prober that can open the given schemes.
// Schemes may be given as "weixin" or "weixin://"; matching ignores case.
func NewStatic(schemes ...string) *Static {
	s := &Static{}
	s.Set(schemes...)
	return s
}

// Set replaces the installed scheme list.
func (s *Static) Set(schemes ...string) {
	set := make(map[string]struct{}, len(schemes))
	for _, scheme := range schemes {
		if n := normalize(scheme); n != "" {
			set[n] = struct{}{}
		}
	}
	s.mu.Lock()
	s.schemes = set
	s.mu.Unlock()
}

// CanOpen reports whether scheme is installed.
func (s *Static) CanOpen(scheme string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.schemes[normalize(scheme)]
	return ok
}

func normalize(scheme string) string {
	scheme = strings.TrimSpace(scheme)
	scheme = strings.TrimSuffix(scheme, "://")
	scheme = strings.TrimSuffix(scheme, ":")
	return strings.ToLower(scheme)
}
