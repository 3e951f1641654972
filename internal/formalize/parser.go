package formalize

import (
	"encoding/json"
	"regexp"
	"strings"

	"resumeforge/internal/types"
)

// Oracle replies are best-effort JSON: models wrap output in code fences,
// prepend commentary, or return prose. Every parser here strips fences,
// tries a direct parse, then degrades further before giving up. A nil or
// error result is a fallback signal for the caller, never a crash.

var (
	openFenceRe  = regexp.MustCompile("(?i)^```(?:json)?\\s*")
	closeFenceRe = regexp.MustCompile("(?i)```$")
)

// StripFences removes a leading/trailing markdown code fence and trims.
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	s = openFenceRe.ReplaceAllString(s, "")
	s = closeFenceRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// firstObject returns the text between the first "{" and the last "}",
// or "" when no such block exists.
func firstObject(s string) string {
	i := strings.Index(s, "{")
	j := strings.LastIndex(s, "}")
	if i == -1 || j == -1 || j <= i {
		return ""
	}
	return s[i : j+1]
}

// ParseStringArray parses a formalize reply. It returns (nil, false) when
// the reply is not a JSON array of the expected length, which callers
// treat as "use the deterministic fallback".
func ParseStringArray(raw string, expectedLen int) ([]string, bool) {
	s := StripFences(raw)

	var arr []string
	if err := json.Unmarshal([]byte(s), &arr); err != nil {
		return nil, false
	}
	if len(arr) != expectedLen {
		return nil, false
	}
	return arr, true
}

// ParseCoverBody parses a cover-letter reply. The chain is: direct JSON,
// first {...} block, then splitting plain text on blank lines into
// opening / body / closing. Something usable always comes back.
func ParseCoverBody(raw string) types.CoverBody {
	s := StripFences(raw)

	var body types.CoverBody
	if err := json.Unmarshal([]byte(s), &body); err == nil {
		return normalizeCoverBody(body)
	}

	if block := firstObject(s); block != "" {
		if err := json.Unmarshal([]byte(block), &body); err == nil {
			return normalizeCoverBody(body)
		}
	}

	// Paragraph-split fallback for plain-prose replies.
	parts := splitParagraphs(s)
	out := types.CoverBody{}
	if len(parts) > 0 {
		out.Opening = parts[0]
	}
	if len(parts) > 1 {
		out.Closing = parts[len(parts)-1]
		end := min(len(parts)-1, 3)
		if end > 1 {
			out.Body = parts[1:end]
		}
	}
	return out
}

func normalizeCoverBody(b types.CoverBody) types.CoverBody {
	out := types.CoverBody{
		Opening: strings.TrimSpace(b.Opening),
		Closing: strings.TrimSpace(b.Closing),
	}
	for _, p := range b.Body {
		if s := strings.TrimSpace(p); s != "" {
			out.Body = append(out.Body, s)
		}
	}
	if len(out.Body) > 3 {
		out.Body = out.Body[:3]
	}
	return out
}

var blankLinesRe = regexp.MustCompile(`\n{2,}`)

func splitParagraphs(s string) []string {
	var parts []string
	for _, p := range blankLinesRe.Split(s, -1) {
		if t := strings.TrimSpace(p); t != "" {
			parts = append(parts, t)
		}
	}
	return parts
}

// ParseRewriteResult parses a rewrite reply. Unusable replies collapse to
// the neutral zero value, which the caller reads as "keep the original".
func ParseRewriteResult(raw string) types.RewriteResult {
	s := StripFences(raw)

	var result types.RewriteResult
	if err := json.Unmarshal([]byte(s), &result); err == nil {
		return normalizeRewriteResult(result)
	}

	if block := firstObject(s); block != "" {
		if err := json.Unmarshal([]byte(block), &result); err == nil {
			return normalizeRewriteResult(result)
		}
	}

	return types.RewriteResult{Summary: "", Bullets: []string{}}
}

func normalizeRewriteResult(r types.RewriteResult) types.RewriteResult {
	out := types.RewriteResult{
		Summary: strings.TrimSpace(r.Summary),
		Bullets: make([]string, len(r.Bullets)),
	}
	// Blank bullets stay in place: bullet counts must line up with the
	// originals so the caller can restore them one-for-one.
	for i, b := range r.Bullets {
		out.Bullets[i] = strings.TrimSpace(b)
	}
	return out
}

// ParseGeneratedResume parses a full-generation reply. It returns nil when
// no JSON object can be recovered; callers then seed the document from the
// form data instead.
func ParseGeneratedResume(raw string) *types.GeneratedResume {
	s := strings.TrimSpace(raw)

	var resume types.GeneratedResume
	if err := json.Unmarshal([]byte(s), &resume); err == nil {
		return &resume
	}

	s = StripFences(s)
	if err := json.Unmarshal([]byte(s), &resume); err == nil {
		return &resume
	}

	if block := firstObject(s); block != "" {
		if err := json.Unmarshal([]byte(block), &resume); err == nil {
			return &resume
		}
	}

	return nil
}
