package server

import (
	"time"

	"resumeforge/internal/assemble"
	"resumeforge/internal/config"
	forgeErrors "resumeforge/internal/errors"
	"resumeforge/internal/export"
)

// CoverResponse mirrors BuildResult for cover letters. The plain-text
// body travels under "text" rather than "plain_text"; clients depend on it.
type CoverResponse struct {
	Output   string `json:"output"`
	HTML     string `json:"html"`
	Text     string `json:"text"`
	ATSScore int    `json:"ats_score"`
	Error    string `json:"error,omitempty"`
}

// PreviewRequest is the body of a preview registration call
type PreviewRequest struct {
	HTML string `json:"html"`
	Type string `json:"type"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	// TLS Configuration
	TLSConfig config.TLSConfig

	// API Authentication
	APIKeys map[string]bool

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Request size limit
	MaxRequestSize int64

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	// Per-action generation cap
	ActionLimit   *config.ActionLimitConfig
	ActionLimiter *ActionLimiter

	// Document infrastructure
	Templates *assemble.TemplateStore
	Exporter  *export.Service
	Previews  *PreviewRegistry

	// Logger
	Logger *forgeErrors.Logger
}

// ServerConfig holds configuration for creating a Server instance
// (Refactored to reduce long parameter list in NewServer)
type ServerConfig struct {
	Host           string
	Port           string
	Version        string
	TLSConfig      config.TLSConfig
	APIKeys        []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestSize int64
	RateLimit      *config.RateLimitConfig
	ActionLimit    *config.ActionLimitConfig
}

// NewServer creates a new Server instance from a ServerConfig struct
func NewServer(appCfg *config.Config, cfg ServerConfig, logger *forgeErrors.Logger) *Server {
	// Convert API keys slice to map for O(1) lookup
	apiKeyMap := make(map[string]bool)
	for _, key := range cfg.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	var rateLimiter *RateLimiter
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(
			cfg.RateLimit.RequestsPerMin,
			cfg.RateLimit.BurstCapacity,
			logger,
		)
	}

	var actionLimiter *ActionLimiter
	if cfg.ActionLimit != nil && cfg.ActionLimit.Enabled {
		actionLimiter = NewActionLimiter(cfg.ActionLimit.Limit, cfg.ActionLimit.Window, logger)
	}

	var templates *assemble.TemplateStore
	if appCfg.Templates.Dir != "" {
		templates = assemble.NewTemplateStore(appCfg.Templates.Dir, logger)
		if appCfg.Templates.Reload {
			if err := templates.StartWatching(); err != nil {
				logger.LogError(err, "Failed to start template watcher")
			}
		}
	}

	exporter := export.NewService(export.NewDocxConverter(), &appCfg.Export, logger)
	previews := NewPreviewRegistry(&appCfg.Preview, logger)

	return &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		AppConfig:      appCfg,
		TLSConfig:      cfg.TLSConfig,
		APIKeys:        apiKeyMap,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		RateLimit:      cfg.RateLimit,
		RateLimiter:    rateLimiter,
		ActionLimit:    cfg.ActionLimit,
		ActionLimiter:  actionLimiter,
		Templates:      templates,
		Exporter:       exporter,
		Previews:       previews,
		Logger:         logger,
	}
}
