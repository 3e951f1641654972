package server

import (
	"fmt"
	"sync"
	"time"

	"resumeforge/internal/config"
	"resumeforge/internal/errors"

	"github.com/google/uuid"
)

const defaultWatermark = "PREVIEW • ResumeForge"

// previewEntry holds one registered preview until it expires
type previewEntry struct {
	html    string
	docType string
	created time.Time
}

// PreviewRegistry keeps rendered documents fetchable under opaque ids for
// a short time. Entries live in memory only; a restart drops them all.
type PreviewRegistry struct {
	mu        sync.Mutex
	entries   map[string]previewEntry
	ttl       time.Duration
	capacity  int
	watermark string
	done      chan struct{}
	logger    *errors.Logger
}

// NewPreviewRegistry creates a registry from preview configuration.
func NewPreviewRegistry(cfg *config.PreviewConfig, logger *errors.Logger) *PreviewRegistry {
	ttl := 15 * time.Minute
	capacity := 500
	watermark := defaultWatermark
	if cfg != nil {
		if cfg.TTL > 0 {
			ttl = cfg.TTL
		}
		if cfg.Capacity > 0 {
			capacity = cfg.Capacity
		}
		if cfg.Watermark != "" {
			watermark = cfg.Watermark
		}
	}

	pr := &PreviewRegistry{
		entries:   make(map[string]previewEntry),
		ttl:       ttl,
		capacity:  capacity,
		watermark: watermark,
		done:      make(chan struct{}),
		logger:    logger,
	}

	go pr.cleanupRoutine()
	return pr
}

// Put registers a preview and returns its id and expiry time.
func (pr *PreviewRegistry) Put(html, docType string) (string, time.Time) {
	id := uuid.NewString()
	now := time.Now()

	pr.mu.Lock()
	defer pr.mu.Unlock()

	if len(pr.entries) >= pr.capacity {
		pr.evictOldestLocked()
	}
	pr.entries[id] = previewEntry{html: html, docType: docType, created: now}

	return id, now.Add(pr.ttl)
}

// Get returns the watermark-wrapped HTML for an id, or false when the
// preview never existed or has expired.
func (pr *PreviewRegistry) Get(id string) (string, bool) {
	pr.mu.Lock()
	entry, ok := pr.entries[id]
	if ok && time.Since(entry.created) > pr.ttl {
		delete(pr.entries, id)
		ok = false
	}
	pr.mu.Unlock()

	if !ok {
		return "", false
	}
	return wrapPreviewHTML(entry.html, pr.watermark), true
}

// GetStats returns current preview registry statistics
func (pr *PreviewRegistry) GetStats() map[string]any {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	return map[string]any{
		"active_previews": len(pr.entries),
		"ttl":             pr.ttl.String(),
		"capacity":        pr.capacity,
	}
}

// evictOldestLocked removes the oldest entry; caller holds the lock.
func (pr *PreviewRegistry) evictOldestLocked() {
	var oldestID string
	var oldestAt time.Time
	for id, entry := range pr.entries {
		if oldestID == "" || entry.created.Before(oldestAt) {
			oldestID = id
			oldestAt = entry.created
		}
	}
	if oldestID != "" {
		delete(pr.entries, oldestID)
	}
}

// cleanupRoutine periodically removes expired previews
func (pr *PreviewRegistry) cleanupRoutine() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pr.cleanup()
		case <-pr.done:
			return
		}
	}
}

func (pr *PreviewRegistry) cleanup() {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	now := time.Now()
	for id, entry := range pr.entries {
		if now.Sub(entry.created) > pr.ttl {
			delete(pr.entries, id)
		}
	}

	if pr.logger != nil {
		pr.logger.Debug("Preview registry cleanup completed",
			"remaining_previews", len(pr.entries))
	}
}

// Close stops the cleanup goroutine. Should be called when shutting down the server.
func (pr *PreviewRegistry) Close() {
	close(pr.done)
}

// wrapPreviewHTML layers a striped overlay, a frosted glass pane, and a
// rotated watermark over the document so the preview resists copying.
func wrapPreviewHTML(innerHTML, watermarkText string) string {
	return fmt.Sprintf(`
  <div style="position:relative; font-family:Inter,Segoe UI,sans-serif; line-height:1.5;">
    <div style="
      position:absolute; inset:0;
      background: repeating-linear-gradient(
        -45deg,
        rgba(0,0,0,0.05) 0 20px,
        rgba(0,0,0,0.08) 20px 40px
      );
      pointer-events:none; mix-blend: multiply;"></div>

    <div style="
      position:absolute; inset:0;
      background: rgba(255,255,255,0.6);
      backdrop-filter: blur(2px);
      -webkit-user-select: none; user-select: none;"></div>

    <div style="
      position:absolute; inset:0;
      display:flex; align-items:center; justify-content:center;
      color:#444; font-weight:700; font-size:42px; opacity:0.2;
      transform: rotate(-25deg); pointer-events:none;">
      %s
    </div>

    <div style="position:relative; padding:24px; color:#111;">
      %s
    </div>
  </div>`, watermarkText, innerHTML)
}
