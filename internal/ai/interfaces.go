package ai

import (
	"context"

	"resumeforge/internal/types"
)

// Oracle is the interface for language-model providers.
// Every operation returns the provider's raw text response - parsing and
// validation happen at the caller's boundary, never here. All methods also
// return token usage information; callers can ignore it if not needed.
type Oracle interface {
	FormalizeList(ctx context.Context, input types.FormalizeInput) (string, *TokenUsage, error)
	ComposeCoverBody(ctx context.Context, input types.CoverInput) (string, *TokenUsage, error)
	RewriteContent(ctx context.Context, input types.RewriteInput) (string, *TokenUsage, error)
	GenerateResume(ctx context.Context, input types.GenerateInput) (string, *TokenUsage, error)
	GetModelInfo(ctx context.Context) *ModelInfo
	Close() error
}
