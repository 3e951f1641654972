package formalize

import (
	"regexp"
	"strings"
)

// The rewrite prompt forbids invented numbers, but prompts are not
// guarantees. The guard compares every numeric token in a rewritten line
// against the originals and strips anything new.

var numberTokenRe = regexp.MustCompile(`\d[\d,]*\.?\d*(?:%|k|K|M|m)?`)

var nonDigitDotRe = regexp.MustCompile(`[^\d.]`)

// NumberTokens returns every numeric token in a line, including comma
// groupings and %/k/M suffixes.
func NumberTokens(s string) []string {
	return numberTokenRe.FindAllString(s, -1)
}

// normalizeNumber reduces a token to digits and dots so "1,200" and
// "1200" compare equal while "12%" and "12k" both normalize to "12".
func normalizeNumber(token string) string {
	return nonDigitDotRe.ReplaceAllString(token, "")
}

// GuardNumbers returns the rewritten line with any numeric token not
// present in the original removed. If stripping leaves the line empty,
// the original wins outright.
func GuardNumbers(original, rewritten string) string {
	allowed := make(map[string]struct{})
	for _, token := range NumberTokens(original) {
		allowed[normalizeNumber(token)] = struct{}{}
	}

	cleaned := numberTokenRe.ReplaceAllStringFunc(rewritten, func(token string) string {
		if _, ok := allowed[normalizeNumber(token)]; ok {
			return token
		}
		return ""
	})

	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return original
	}
	return cleaned
}

// GuardBullets applies GuardNumbers pairwise. Lengths must already match;
// extra rewritten lines are dropped, missing ones fall back to originals.
func GuardBullets(originals, rewritten []string) []string {
	out := make([]string, len(originals))
	for i, orig := range originals {
		if i < len(rewritten) && strings.TrimSpace(rewritten[i]) != "" {
			out[i] = GuardNumbers(orig, rewritten[i])
		} else {
			out[i] = orig
		}
	}
	return out
}
