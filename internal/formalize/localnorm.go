package formalize

import (
	"regexp"
	"strings"
)

// localRule is one deterministic substitution applied when no oracle is
// available. Order matters: degree abbreviations run before subject
// expansions so "BS" never matches inside an already-expanded phrase.
type localRule struct {
	re   *regexp.Regexp
	repl string
}

var localRules = []localRule{
	{regexp.MustCompile(`\bBS\b`), "B.S."},
	{regexp.MustCompile(`\bBA\b`), "B.A."},
	{regexp.MustCompile(`\bMS\b`), "M.S."},
	{regexp.MustCompile(`\bMA\b`), "M.A."},
	{regexp.MustCompile(`(?i)\bPhD\b`), "Ph.D."},
	{regexp.MustCompile(`\bMicro\b`), "Microbiology"},
	{regexp.MustCompile(`\bBio\b`), "Biology"},
	{regexp.MustCompile(`\bCS\b`), "Computer Science"},
	{regexp.MustCompile(`\bIT\b`), "Information Technology"},
	{regexp.MustCompile(`\bMgr\b`), "Manager"},
	{regexp.MustCompile(`\bSr\b`), "Senior"},
}

// LocalCleanup applies the deterministic abbreviation expansions to a
// single line. It is a light touch: well-known acronyms (CPR, AWS, PMP)
// are deliberately left alone.
func LocalCleanup(s string) string {
	out := s
	for _, rule := range localRules {
		out = rule.re.ReplaceAllString(out, rule.repl)
	}
	return strings.TrimSpace(out)
}

// CleanList trims every line and drops empties, preserving order.
func CleanList(items []string) []string {
	cleaned := make([]string, 0, len(items))
	for _, item := range items {
		if s := strings.TrimSpace(item); s != "" {
			cleaned = append(cleaned, s)
		}
	}
	return cleaned
}
