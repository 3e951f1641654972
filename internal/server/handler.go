package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"resumeforge/internal/ai"
	"resumeforge/internal/build"
	forgeErrors "resumeforge/internal/errors"
	"resumeforge/internal/export"
	"resumeforge/internal/formalize"
	"resumeforge/internal/observability"
	"resumeforge/internal/types"

	"go.opentelemetry.io/otel/attribute"
)

// parseGenerateRequest reads the body once and decodes it twice: into the
// envelope and into an inline form for older clients that put the form
// fields at the top level instead of under formData.
func (s *Server) parseGenerateRequest(r *http.Request) (*types.BuildRequest, *types.ResumeForm, error) {
	if r.Header.Get("Content-Type") != "application/json" {
		return nil, nil, fmt.Errorf("content-type must be application/json")
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, nil, fmt.Errorf("request body too large (limit is %d bytes)", maxBytesErr.Limit)
		}
		return nil, nil, fmt.Errorf("failed to read request body: %w", err)
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			s.Logger.Debug("Failed to close request body", "error", err)
		}
	}()

	var req types.BuildRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	var inline types.ResumeForm
	if err := json.Unmarshal(body, &inline); err != nil {
		return nil, nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	return &req, &inline, nil
}

// newBuilder assembles a document builder for one request. The oracle is
// optional; without one the builder runs the local fallback pipeline.
func (s *Server) newBuilder(om *observability.ObservabilityManager) (*build.Builder, func()) {
	var oracle ai.Oracle
	cleanup := func() {}

	if s.AppConfig.HasOracle() {
		router, err := ai.NewRouter(s.AppConfig, s.Logger)
		if err != nil {
			// Document builds degrade to the local pipeline rather than fail.
			s.Logger.LogError(err, "Failed to create oracle providers, building without oracle")
		} else {
			oracle = router
			cleanup = func() {
				if err := router.Close(); err != nil {
					s.Logger.Debug("Failed to close oracle providers", "error", err)
				}
			}
		}
	}

	formalizer := formalize.New(oracle, s.Logger)
	metrics := observability.NewBuildMetrics(om)
	return build.New(formalizer, oracle, s.Templates, metrics, s.Logger), cleanup
}

// createGenerateHandler wraps the document build handler with observability
func (s *Server) createGenerateHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("resumeforge.api")
		ctx, span := tracer.Start(ctx, "api.generate")
		defer span.End()

		req, inline, err := s.parseGenerateRequest(r)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		docType := req.Type
		if docType != "resume" && docType != "cover" {
			err := fmt.Errorf("invalid document type: %q", docType)
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid type", "type must be \"resume\" or \"cover\"", http.StatusBadRequest)
			return
		}

		// Per-IP generation cap. The body intentionally looks like a build
		// result so clients render the message in place of a document.
		if !s.allowAction(r, "generate") {
			s.Logger.Info("Generation limit reached",
				"client_ip", getClientIP(r),
				"type", docType)
			span.SetAttributes(attribute.Bool("action_limited", true))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			if err := json.NewEncoder(w).Encode(types.BuildResult{
				Error: "Generation limit reached.",
			}); err != nil {
				s.Logger.Debug("Failed to encode limit response", "error", err)
			}
			return
		}

		form := build.ResolveForm(req, inline)
		span.SetAttributes(
			attribute.String("operation", "generate"),
			attribute.String("document.type", docType),
			attribute.String("document.mode", req.Mode),
		)

		builder, cleanup := s.newBuilder(om)
		defer cleanup()

		metrics := om.GetMetrics()
		var result *types.BuildResult
		err = metrics.TrackAIOperationWithTokens(ctx, "build_"+docType, func(ctx context.Context) *observability.AIOperationResult {
			var buildErr error
			if docType == "cover" {
				result, buildErr = builder.BuildCover(ctx, form, req.Options)
			} else {
				result, buildErr = builder.BuildResume(ctx, form, req.Mode)
			}
			return &observability.AIOperationResult{Error: buildErr}
		}, om)

		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "build"))
			writeErrorResponse(w, "Failed to build document", err.Error(), http.StatusInternalServerError)
			return
		}

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("response.output_length", len(result.Output)),
			attribute.Int("ats.score", result.ATSScore),
		)

		w.Header().Set("Content-Type", "application/json")
		if docType == "cover" {
			err = json.NewEncoder(w).Encode(CoverResponse{
				Output:   result.Output,
				HTML:     result.HTML,
				Text:     result.PlainText,
				ATSScore: result.ATSScore,
				Error:    result.Error,
			})
		} else {
			err = json.NewEncoder(w).Encode(result)
		}
		if err != nil {
			span.RecordError(err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// createExportHandler wraps the DOCX export handler with observability
func (s *Server) createExportHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("resumeforge.api")
		ctx, span := tracer.Start(ctx, "api.export")
		defer span.End()

		var req export.Request
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.String("operation", "export"),
			attribute.String("document.type", req.Type),
			attribute.Int("request.html_length", len(req.HTML)),
		)

		data, filename, err := s.Exporter.Export(ctx, req)
		if err != nil {
			span.RecordError(err)
			var appErr *forgeErrors.AppError
			if errors.As(err, &appErr) {
				switch appErr.Code {
				case forgeErrors.ErrCodePaymentRequired:
					span.SetAttributes(attribute.String("error.type", "payment"))
					writeErrorResponse(w, "payment_required", appErr.Message, http.StatusPaymentRequired)
					return
				case forgeErrors.ErrCodeInvalidHTML:
					span.SetAttributes(attribute.String("error.type", "validation"))
					writeErrorResponse(w, "html_required", appErr.Message, http.StatusBadRequest)
					return
				}
			}
			span.SetAttributes(attribute.String("error.type", "export"))
			om.GetMetrics().RecordBusinessMetric(ctx, "document_exported", false, om,
				attribute.String("type", req.Type))
			writeErrorResponse(w, "export_failed", "Failed to convert document", http.StatusInternalServerError)
			return
		}

		om.GetMetrics().RecordBusinessMetric(ctx, "document_exported", true, om,
			attribute.String("type", req.Type))
		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("response.docx_bytes", len(data)),
		)

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.wordprocessingml.document")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		if _, err := w.Write(data); err != nil {
			s.Logger.Debug("Failed to write export response", "error", err)
		}
	}
}

// createPreviewStoreHandler registers rendered documents for later viewing
func (s *Server) createPreviewStoreHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("resumeforge.api")
		ctx, span := tracer.Start(ctx, "api.preview.store")
		defer span.End()

		var req PreviewRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		if req.HTML == "" {
			err := fmt.Errorf("missing html")
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Missing html", "html field is required", http.StatusBadRequest)
			return
		}

		id, expiresAt := s.Previews.Put(req.HTML, req.Type)
		om.GetMetrics().RecordBusinessMetric(ctx, "preview_stored", true, om,
			attribute.String("type", req.Type))
		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.String("preview.id", id),
		)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]any{
			"id":         id,
			"url":        "/api/preview/" + id,
			"expires_at": expiresAt,
		}); err != nil {
			span.RecordError(err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// createPreviewFetchHandler serves watermarked previews by id
func (s *Server) createPreviewFetchHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tracer := om.Tracer("resumeforge.api")
		_, span := tracer.Start(r.Context(), "api.preview.fetch")
		defer span.End()

		id := r.PathValue("id")
		html, ok := s.Previews.Get(id)
		if !ok {
			span.SetAttributes(attribute.Bool("preview.found", false))
			writeErrorResponse(w, "Preview not found", "The preview has expired or never existed", http.StatusNotFound)
			return
		}

		span.SetAttributes(attribute.Bool("preview.found", true))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if _, err := io.WriteString(w, html); err != nil {
			s.Logger.Debug("Failed to write preview response", "error", err)
		}
	}
}

// createRateLimitMiddleware adds observability to rate limiting
func (s *Server) createRateLimitMiddleware(om *observability.ObservabilityManager) func(http.HandlerFunc) http.HandlerFunc {
	originalMiddleware := s.rateLimitMiddleware()

	return func(next http.HandlerFunc) http.HandlerFunc {
		return originalMiddleware(func(w http.ResponseWriter, r *http.Request) {
			// Check if this request was rate limited by examining the response
			// We'll wrap the ResponseWriter to detect rate limit responses
			wrapper := &responseWrapper{ResponseWriter: w, statusCode: 200}

			next(wrapper, r)

			// If rate limited, record metric
			if wrapper.statusCode == http.StatusTooManyRequests {
				metrics := om.GetMetrics()
				metrics.RecordBusinessMetric(r.Context(), "rate_limit_hit", true, om,
					attribute.String("endpoint", r.URL.Path),
					attribute.String("method", r.Method))
			}
		})
	}
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
