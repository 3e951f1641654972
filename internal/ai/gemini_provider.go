package ai

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math"
	"math/big"
	"net"
	"net/http"
	"time"

	"resumeforge/internal/config"
	forgeErrors "resumeforge/internal/errors"
	"resumeforge/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

// GeminiProvider implements Oracle for Google Gemini
type GeminiProvider struct {
	client         *genai.Client
	httpClient     *http.Client
	config         *config.OperationAIConfig
	circuitBreaker *OracleCircuitBreaker
	modelBreaker   *ModelCircuitBreaker
	operationType  string
	logger         *forgeErrors.Logger
}

// Ensure GeminiProvider implements Oracle
var _ Oracle = (*GeminiProvider)(nil)

// NewGeminiProvider creates a new Gemini provider instance for a specific operation
func NewGeminiProvider(cfg *config.OperationAIConfig, operationType string, logger *forgeErrors.Logger) (*GeminiProvider, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, forgeErrors.NewOracleError(forgeErrors.ErrCodeOracleUnavailable,
			"Failed to create Gemini client", err)
	}

	// Initialize circuit breaker with operation-specific configuration
	circuitBreaker := NewOracleCircuitBreaker(operationType, cfg, logger)
	modelBreaker := NewModelCircuitBreaker(operationType, cfg, logger)

	return &GeminiProvider{
		client: client,
		httpClient: &http.Client{
			Timeout: *cfg.Timeout,
		},
		config:         cfg,
		circuitBreaker: circuitBreaker,
		modelBreaker:   modelBreaker,
		operationType:  operationType,
		logger:         logger,
	}, nil
}

// ModelInfo represents information about the oracle model
type ModelInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}

// GetModelInfo checks the readiness and availability of the configured model
func (g *GeminiProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	modelInfo := &ModelInfo{
		Name:      g.config.Model,
		Available: false,
	}

	// Create a timeout context for the model check
	timeout := getModelCheckTimeout()
	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// Get model information from Gemini API with circuit breaker
	model, err := g.modelBreaker.ExecuteModel(func() (*genai.Model, error) {
		return g.client.Models.Get(checkCtx, g.config.Model, &genai.GetModelConfig{})
	})
	if err != nil {
		modelInfo.Error = fmt.Sprintf("Failed to get model info: %v", err)

		// Log the error for debugging
		g.logger.Warn("Model availability check failed",
			"model", g.config.Model,
			"provider", g.config.Provider,
			"error", err.Error())
		return modelInfo
	}

	// Model is available, populate info
	modelInfo.Available = true
	if model.DisplayName != "" {
		modelInfo.DisplayName = model.DisplayName
	}
	if model.Version != "" {
		modelInfo.Version = model.Version
	}

	// Log successful check
	g.logger.Debug("Model availability check successful",
		"model", g.config.Model,
		"provider", g.config.Provider,
		"display_name", modelInfo.DisplayName,
		"version", modelInfo.Version)

	return modelInfo
}

// executeWithRetry executes an oracle operation with retry logic and exponential backoff
func (g *GeminiProvider) executeWithRetry(ctx context.Context, operation string, fn func() (*genai.GenerateContentResponse, error)) (*genai.GenerateContentResponse, error) {
	var lastErr error

	for attempt := 0; attempt <= *g.config.MaxRetries; attempt++ {
		if attempt > 0 {
			// Log retry attempt
			g.logger.Warn("Retrying oracle operation",
				"operation", operation,
				"attempt", attempt,
				"max_retries", *g.config.MaxRetries,
				"error", lastErr.Error())

			// Exponential backoff with jitter to prevent thundering herd
			baseDelay := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
			// Use crypto/rand for secure random jitter
			jitterMax := big.NewInt(int64(float64(baseDelay) * 0.1))
			jitterBig, _ := rand.Int(rand.Reader, jitterMax)
			jitter := time.Duration(jitterBig.Int64())
			// Cap maximum backoff at 30 seconds
			backoff := min(baseDelay+jitter, 30*time.Second)

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		result, err := fn()
		if err == nil {
			if attempt > 0 {
				g.logger.Info("Oracle operation succeeded after retry",
					"operation", operation,
					"successful_attempt", attempt+1,
					"total_attempts", attempt+1)
			}
			return result, nil
		}

		lastErr = err

		// Don't retry on certain errors (auth, invalid input, etc.)
		if !g.isRetryableError(err) {
			g.logger.Debug("Error is not retryable, stopping retry attempts",
				"operation", operation,
				"error", err.Error())
			break
		}
	}

	// Log final failure
	g.logger.LogError(lastErr, "Oracle operation failed after all retry attempts",
		"operation", operation,
		"total_attempts", *g.config.MaxRetries+1)

	return nil, fmt.Errorf("operation '%s' failed after %d retries: %w", operation, *g.config.MaxRetries, lastErr)
}

// isRetryableError determines if an error should trigger a retry
func (g *GeminiProvider) isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	// Check for network errors (timeouts, connection issues)
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return true // Retry on timeouts
		}
		// Consider other network errors retryable (e.g., connection refused)
		return true
	}

	// Check for Google API errors (HTTP status codes)
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
	}

	return false
}

// executeOracleOperation runs a generation call with common tracing, circuit
// breaker, and retry logic. It returns the raw response text untouched:
// defensive parsing belongs to the caller's boundary so a malformed reply is
// a fallback signal there, never a transport error here.
func (g *GeminiProvider) executeOracleOperation(
	ctx context.Context,
	operationName string,
	userPrompt string,
	systemPrompt string,
	spanAttributes ...attribute.KeyValue,
) (string, *TokenUsage, error) {
	tracer := otel.Tracer("resumeforge.ai.gemini")
	ctx, span := tracer.Start(ctx, "gemini."+operationName)
	defer span.End()

	// Set base attributes
	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", g.config.Model),
		attribute.Float64("ai.temperature", float64(*g.config.Temperature)),
	)
	span.SetAttributes(spanAttributes...)

	genaiConfig := &genai.GenerateContentConfig{
		Temperature: g.config.Temperature,
	}

	if *g.config.UseSystemPrompts && systemPrompt != "" {
		genaiConfig.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	result, err := g.circuitBreaker.Execute(func() (*genai.GenerateContentResponse, error) {
		return g.executeWithRetry(ctx, operationName, func() (*genai.GenerateContentResponse, error) {
			return g.client.Models.GenerateContent(ctx, g.config.Model, genai.Text(userPrompt), genaiConfig)
		})
	})

	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return "", nil, forgeErrors.NewOracleError(forgeErrors.ErrCodeOracleTransportFailed,
			"Failed to generate content for "+operationName, err)
	}

	text := result.Text()

	tokenUsage := extractTokenUsage(result)
	if tokenUsage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", tokenUsage.InputTokens),
			attribute.Int64("ai.tokens.output", tokenUsage.OutputTokens),
			attribute.Int64("ai.tokens.total", tokenUsage.TotalTokens),
		)
	}

	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.Int("output.length", len(text)),
	)
	return text, tokenUsage, nil
}

// FormalizeList implements Oracle for list normalization
func (g *GeminiProvider) FormalizeList(ctx context.Context, input types.FormalizeInput) (string, *TokenUsage, error) {
	styleGuide := g.getSystemPrompt("formalize")
	systemPrompt := buildFormalizeSystemPrompt(styleGuide, input.Category)
	userPrompt := buildFormalizeUserPrompt(input)

	return g.executeOracleOperation(
		ctx,
		"formalize_list",
		userPrompt,
		systemPrompt,
		attribute.String("formalize.category", string(input.Category)),
		attribute.Int("input.item_count", len(input.Items)),
	)
}

// ComposeCoverBody implements Oracle for cover-letter body composition
func (g *GeminiProvider) ComposeCoverBody(ctx context.Context, input types.CoverInput) (string, *TokenUsage, error) {
	systemPrompt := g.getSystemPrompt("cover")
	userPrompt := buildCoverUserPrompt(input)

	return g.executeOracleOperation(
		ctx,
		"compose_cover_body",
		userPrompt,
		systemPrompt,
		attribute.Int("input.job_length", len(input.JobDescription)),
		attribute.Bool("input.has_company_location", input.CompanyLocation != ""),
	)
}

// RewriteContent implements Oracle for conservative summary/bullet rewriting
func (g *GeminiProvider) RewriteContent(ctx context.Context, input types.RewriteInput) (string, *TokenUsage, error) {
	systemPrompt := g.getSystemPrompt("rewrite")
	userPrompt := buildRewriteUserPrompt(input)

	return g.executeOracleOperation(
		ctx,
		"rewrite_content",
		userPrompt,
		systemPrompt,
		attribute.Int("input.bullet_count", len(input.Bullets)),
		attribute.Bool("input.has_summary", input.Summary != ""),
	)
}

// GenerateResume implements Oracle for full resume-body generation
func (g *GeminiProvider) GenerateResume(ctx context.Context, input types.GenerateInput) (string, *TokenUsage, error) {
	systemPrompt := g.getSystemPrompt("generate")
	userPrompt := buildGenerateUserPrompt(input)

	return g.executeOracleOperation(
		ctx,
		"generate_resume",
		userPrompt,
		systemPrompt,
		attribute.Int("input.job_length", len(input.JobDescription)),
		attribute.Int("input.role_count", len(input.ExperienceHeaders)),
	)
}

// GetCircuitBreakerStats returns circuit breaker statistics
func (g *GeminiProvider) GetCircuitBreakerStats() map[string]any {
	stats := map[string]any{
		"oracle_operations": g.circuitBreaker.GetStats(),
		"model_operations":  g.modelBreaker.GetModelStats(),
	}

	// Overall health - both breakers must be healthy
	oracleHealthy := g.circuitBreaker.IsHealthy()
	modelHealthy := g.modelBreaker.IsModelHealthy()
	stats["overall_healthy"] = oracleHealthy && modelHealthy

	return stats
}

// Close implements Oracle interface
func (g *GeminiProvider) Close() error {
	// Gemini client doesn't have a Close method in current single-shot usage
	// Probably needed in streaming mode
	return nil
}

// TokenUsage represents token usage information from oracle responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// extractTokenUsage extracts token usage information from Gemini API response
func extractTokenUsage(result *genai.GenerateContentResponse) *TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}

	usage := result.UsageMetadata
	return &TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}

// getModelCheckTimeout returns the configured model check timeout
func getModelCheckTimeout() time.Duration {
	// Use default timeout since we don't have access to config here
	// This function should be refactored to accept timeout as parameter
	// Fallback to default
	return 10 * time.Second
}

// getSystemPrompt returns the appropriate system prompt, prioritizing
// file-loaded content, then inline config, then the built-in default.
func (g *GeminiProvider) getSystemPrompt(promptType string) string {
	loadedPrompts := config.GetPromptsForOperation(promptType)
	configPrompts := g.config.CustomPrompts.SystemPrompts

	switch promptType {
	case "formalize":
		return resolvePrompt(loadedPrompts.Formalize, configPrompts.Formalize, DefaultSystemPrompts.Formalize)
	case "cover":
		return resolvePrompt(loadedPrompts.Cover, configPrompts.Cover, DefaultSystemPrompts.Cover)
	case "rewrite":
		return resolvePrompt(loadedPrompts.Rewrite, configPrompts.Rewrite, DefaultSystemPrompts.Rewrite)
	case "generate":
		return resolvePrompt(loadedPrompts.Generate, configPrompts.Generate, DefaultSystemPrompts.Generate)
	default:
		return ""
	}
}

// resolvePrompt selects the correct prompt string based on a clear priority order:
// 1. A prompt loaded from a file.
// 2. A prompt defined directly in the configuration.
// 3. A hardcoded default prompt.
func resolvePrompt(loadedFromFile, fromConfig, fromDefault string) string {
	if loadedFromFile != "" {
		return loadedFromFile
	}
	if fromConfig != "" {
		return fromConfig
	}
	return fromDefault
}
