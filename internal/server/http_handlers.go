package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"resumeforge/internal/ai"
	"resumeforge/internal/config"
)

// healthHandler provides a comprehensive health check endpoint including oracle model status
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"status":  "healthy",
		"service": "resumeforge",
		"version": s.Version,
		"oracle":  s.AppConfig.HasOracle(),
	}

	// Check oracle model availability for all operations
	aiStatus := s.checkAIModelsHealth()
	response["ai_models"] = aiStatus

	// Check circuit breaker status
	circuitBreakerStatus := s.checkCircuitBreakerHealth()
	response["circuit_breakers"] = circuitBreakerStatus

	// Report template availability
	response["templates"] = s.checkTemplateHealth()

	// Determine overall health status
	overallHealthy := true
	for _, modelStatus := range aiStatus {
		if modelInfo, ok := modelStatus.(map[string]any); ok {
			if available, exists := modelInfo["available"]; exists {
				if avail, ok := available.(bool); ok && !avail {
					overallHealthy = false
					break
				}
			}
		}
	}

	if !overallHealthy {
		response["status"] = "degraded"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(response)
	if err != nil {
		log.Printf("Failed to encode health response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// operationConfigs lists every oracle operation with its effective configuration
func (s *Server) operationConfigs() map[string]config.OperationAIConfig {
	return map[string]config.OperationAIConfig{
		"formalize": s.AppConfig.GetFormalizeConfig(),
		"cover":     s.AppConfig.GetCoverConfig(),
		"rewrite":   s.AppConfig.GetRewriteConfig(),
		"generate":  s.AppConfig.GetGenerateConfig(),
	}
}

// checkAIModelsHealth checks the health of the oracle models used by each operation
func (s *Server) checkAIModelsHealth() map[string]any {
	// Use configurable health check timeout
	timeout := s.AppConfig.Observability.HealthCheck.Timeout
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	aiStatus := make(map[string]any)

	if !s.AppConfig.HasOracle() {
		// Without an oracle every operation runs the local fallback
		// pipeline, which is always available.
		for op := range s.operationConfigs() {
			aiStatus[op] = map[string]any{
				"available": true,
				"mode":      "fallback",
			}
		}
		return aiStatus
	}

	for op, opCfg := range s.operationConfigs() {
		service, err := ai.NewService(&opCfg, op, s.Logger)
		if err != nil {
			aiStatus[op] = map[string]any{
				"available": false,
				"error":     fmt.Sprintf("Failed to create %s service: %v", op, err),
			}
			continue
		}
		aiStatus[op] = service.GetModelInfo(ctx)
	}

	return aiStatus
}

// checkCircuitBreakerHealth checks the health of circuit breakers for all oracle operations
func (s *Server) checkCircuitBreakerHealth() map[string]any {
	circuitBreakerStatus := make(map[string]any)

	if !s.AppConfig.HasOracle() {
		for op := range s.operationConfigs() {
			circuitBreakerStatus[op] = map[string]any{
				"available": false,
				"message":   "No oracle configured",
			}
		}
		return circuitBreakerStatus
	}

	for op, opCfg := range s.operationConfigs() {
		if _, err := ai.NewService(&opCfg, op, s.Logger); err == nil {
			circuitBreakerStatus[op] = map[string]any{
				"available": true,
				"message":   fmt.Sprintf("Circuit breaker integrated with %s service", op),
			}
		} else {
			circuitBreakerStatus[op] = map[string]any{
				"available": false,
				"error":     fmt.Sprintf("Failed to create %s service: %v", op, err),
			}
		}
	}

	return circuitBreakerStatus
}

// checkTemplateHealth reports which HTML templates are loaded
func (s *Server) checkTemplateHealth() map[string]any {
	if s.Templates == nil {
		return map[string]any{
			"configured": false,
		}
	}

	return map[string]any{
		"configured": true,
		"resume":     s.Templates.HasResumeTemplate(),
		"cover":      s.Templates.HasCoverTemplate(),
		"reload":     s.AppConfig.Templates.Reload,
	}
}

// statsHandler provides server statistics including rate limiting info
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"service": "resumeforge",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
		},
	}

	// Add rate limiting stats if enabled
	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{
			"enabled": false,
		}
	}

	// Add configuration info
	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"by_ip":            s.RateLimit.ByIP,
			"by_api_key":       s.RateLimit.ByAPIKey,
		}
	}

	// Add generation cap stats if enabled
	if s.ActionLimiter != nil {
		response["action_limiting"] = s.ActionLimiter.GetStats()
	} else {
		response["action_limiting"] = map[string]any{
			"enabled": false,
		}
	}

	// Add preview registry stats
	if s.Previews != nil {
		response["previews"] = s.Previews.GetStats()
	}

	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(response)
	if err != nil {
		log.Printf("Failed to encode stats response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// parseJSONRequest parses JSON request body into the provided struct
func parseJSONRequest(r *http.Request, v any) error {
	if r.Header.Get("Content-Type") != "application/json" {
		return fmt.Errorf("content-type must be application/json")
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return fmt.Errorf("request body too large (limit is %d bytes)", maxBytesErr.Limit)
		}
		return fmt.Errorf("failed to read request body: %w", err)
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			log.Printf("Failed to close request body: %v", err)
		}
	}()

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	return nil
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, error, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Error:   error,
		Message: message,
	}

	err := json.NewEncoder(w).Encode(response)
	if err != nil {
		log.Printf("Failed to encode error response: %v", err)
		http.Error(w, "Failed to encode error response", http.StatusInternalServerError)
	}
}
