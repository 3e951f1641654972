package server

import (
	"net/http"
	"sync"
	"time"

	"resumeforge/internal/errors"
)

// actionWindow tracks usage of one key inside the current window
type actionWindow struct {
	count   int
	started time.Time
}

// ActionLimiter caps how many times a client may perform a named action
// inside a fixed window. Unlike the token-bucket request limiter this is
// a business cap: once the window's budget is spent, the client waits
// for the window to roll over.
type ActionLimiter struct {
	mu      sync.Mutex
	windows map[string]*actionWindow
	limit   int
	window  time.Duration
	done    chan struct{}
	logger  *errors.Logger
}

// NewActionLimiter creates a limiter allowing limit actions per window per key.
func NewActionLimiter(limit int, window time.Duration, logger *errors.Logger) *ActionLimiter {
	if limit <= 0 {
		limit = 3
	}
	if window <= 0 {
		window = time.Hour
	}

	al := &ActionLimiter{
		windows: make(map[string]*actionWindow),
		limit:   limit,
		window:  window,
		done:    make(chan struct{}),
		logger:  logger,
	}

	go al.cleanupRoutine()
	return al
}

// Allow reports whether the client may perform the action, counting the
// attempt when it is allowed. Keys combine client identity and action name.
func (al *ActionLimiter) Allow(clientKey, action string) bool {
	key := clientKey + "|" + action
	now := time.Now()

	al.mu.Lock()
	defer al.mu.Unlock()

	w, exists := al.windows[key]
	if !exists || now.Sub(w.started) > al.window {
		al.windows[key] = &actionWindow{count: 1, started: now}
		return true
	}

	if w.count >= al.limit {
		return false
	}
	w.count++
	return true
}

// GetStats returns current action limiter statistics
func (al *ActionLimiter) GetStats() map[string]any {
	al.mu.Lock()
	defer al.mu.Unlock()

	return map[string]any{
		"active_windows": len(al.windows),
		"limit":          al.limit,
		"window":         al.window.String(),
	}
}

// cleanupRoutine drops expired windows so the map does not grow unbounded
func (al *ActionLimiter) cleanupRoutine() {
	ticker := time.NewTicker(al.window)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			al.cleanup()
		case <-al.done:
			return
		}
	}
}

func (al *ActionLimiter) cleanup() {
	al.mu.Lock()
	defer al.mu.Unlock()

	now := time.Now()
	for key, w := range al.windows {
		if now.Sub(w.started) > al.window {
			delete(al.windows, key)
		}
	}

	if al.logger != nil {
		al.logger.Debug("Action limiter cleanup completed",
			"remaining_windows", len(al.windows))
	}
}

// Close stops the cleanup goroutine. Should be called when shutting down the server.
func (al *ActionLimiter) Close() {
	close(al.done)
}

// allowAction checks the per-action cap for the request's client IP.
// A disabled limiter always allows.
func (s *Server) allowAction(r *http.Request, action string) bool {
	if s.ActionLimiter == nil {
		return true
	}
	return s.ActionLimiter.Allow(getClientIP(r), action)
}
