package ai

import (
	"context"

	"resumeforge/internal/config"
	"resumeforge/internal/errors"
	"resumeforge/internal/types"
)

// Router fans a single Oracle out to per-operation providers, so each
// operation runs with its own model, prompts, and circuit breaker.
type Router struct {
	formalize Oracle
	cover     Oracle
	rewrite   Oracle
	generate  Oracle
}

// NewRouter builds providers for all four operations from their
// operation-specific configurations.
func NewRouter(cfg *config.Config, logger *errors.Logger) (*Router, error) {
	formalizeCfg := cfg.GetFormalizeConfig()
	formalizeSvc, err := NewService(&formalizeCfg, "formalize", logger)
	if err != nil {
		return nil, err
	}

	coverCfg := cfg.GetCoverConfig()
	coverSvc, err := NewService(&coverCfg, "cover", logger)
	if err != nil {
		return nil, err
	}

	rewriteCfg := cfg.GetRewriteConfig()
	rewriteSvc, err := NewService(&rewriteCfg, "rewrite", logger)
	if err != nil {
		return nil, err
	}

	generateCfg := cfg.GetGenerateConfig()
	generateSvc, err := NewService(&generateCfg, "generate", logger)
	if err != nil {
		return nil, err
	}

	return &Router{
		formalize: formalizeSvc.Provider,
		cover:     coverSvc.Provider,
		rewrite:   rewriteSvc.Provider,
		generate:  generateSvc.Provider,
	}, nil
}

func (r *Router) FormalizeList(ctx context.Context, input types.FormalizeInput) (string, *TokenUsage, error) {
	return r.formalize.FormalizeList(ctx, input)
}

func (r *Router) ComposeCoverBody(ctx context.Context, input types.CoverInput) (string, *TokenUsage, error) {
	return r.cover.ComposeCoverBody(ctx, input)
}

func (r *Router) RewriteContent(ctx context.Context, input types.RewriteInput) (string, *TokenUsage, error) {
	return r.rewrite.RewriteContent(ctx, input)
}

func (r *Router) GenerateResume(ctx context.Context, input types.GenerateInput) (string, *TokenUsage, error) {
	return r.generate.GenerateResume(ctx, input)
}

// GetModelInfo reports the formalize provider's model; the other
// providers surface through the health endpoint individually.
func (r *Router) GetModelInfo(ctx context.Context) *ModelInfo {
	return r.formalize.GetModelInfo(ctx)
}

// Close shuts down every provider, returning the first failure.
func (r *Router) Close() error {
	var firstErr error
	for _, o := range []Oracle{r.formalize, r.cover, r.rewrite, r.generate} {
		if err := o.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
