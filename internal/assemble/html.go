// Package assemble turns formalized content into the HTML document shells
// the client renders and the exporter converts. Everything here is
// deterministic; no oracle calls.
package assemble

import (
	"html"
	"regexp"
	"strings"
)

var (
	codeFenceOpenRe  = regexp.MustCompile(`(?i)^` + "```" + `(?:\s*html)?\s*`)
	codeFenceCloseRe = regexp.MustCompile(`(?i)` + "```" + `$`)
	docTypeRe        = regexp.MustCompile(`(?i)<!DOCTYPE[^>]*>`)
	outerWrapperRe   = regexp.MustCompile(`(?i)</?(?:html|head|body|style|title|meta|script|link)[^>]*>`)
	anyTagRe         = regexp.MustCompile(`<\w+[^>]*>`)
	tagTokenRe       = regexp.MustCompile(`(?i)<\s*/?\s*([a-z0-9:-]+)([^>]*)>`)
	allowedTagRe     = regexp.MustCompile(`(?i)^(div|h2|h3|p|ul|ol|li|strong|em|br)$`)
	divTagRe         = regexp.MustCompile(`<div[^>]*>`)
	contactParaRe    = regexp.MustCompile(`(?is)<p>\s*(?:name|contact)\s*:.*?</p>`)
	betweenTagsRe    = regexp.MustCompile(`>\s+<`)
	runsOfSpaceRe    = regexp.MustCompile(`\s{2,}`)
	stripTagsRe      = regexp.MustCompile(`<[^>]+>`)
	upperLetterRe    = regexp.MustCompile(`[A-Z]`)
)

// EscapeHTML escapes the five HTML-significant characters.
func EscapeHTML(s string) string {
	return html.EscapeString(s)
}

// Collapse removes whitespace between tags and squeezes runs of spaces so
// the emitted shells stay compact.
func Collapse(htmlStr string) string {
	s := betweenTagsRe.ReplaceAllString(htmlStr, "><")
	s = runsOfSpaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// StripTags removes all tags, leaving the text content. Used for the
// plain-text rendition of a document.
func StripTags(htmlStr string) string {
	return stripTagsRe.ReplaceAllString(htmlStr, "")
}

// StripCodeFences removes a surrounding markdown code fence, with or
// without an "html" tag.
func StripCodeFences(s string) string {
	out := codeFenceOpenRe.ReplaceAllString(s, "")
	out = codeFenceCloseRe.ReplaceAllString(out, "")
	return strings.TrimSpace(out)
}

// StripOuterWrappers removes document-level tags (html, head, body,
// script and friends) so only fragment content remains.
func StripOuterWrappers(s string) string {
	out := docTypeRe.ReplaceAllString(s, "")
	out = outerWrapperRe.ReplaceAllString(out, "")
	return strings.TrimSpace(out)
}

// SanitizeAllowedTags keeps a small whitelist of structural tags, stripped
// of their attributes. Disallowed tags lose their markup but keep their
// inner text.
func SanitizeAllowedTags(htmlStr string) string {
	return tagTokenRe.ReplaceAllStringFunc(htmlStr, func(m string) string {
		sub := tagTokenRe.FindStringSubmatch(m)
		if sub == nil || !allowedTagRe.MatchString(sub[1]) {
			return ""
		}
		if sub[2] == "" {
			return m
		}
		// Drop the attribute section, keep the tag itself.
		return strings.Replace(m, sub[2], "", 1)
	})
}

// CoerceToCleanHTML normalizes an arbitrary HTML-ish string into the
// fragment shape the assembler expects: fences and wrappers stripped,
// tags sanitized, wrapped in a classed div, stray contact paragraphs
// removed. Plain text is promoted to HTML via the bullet converter.
func CoerceToCleanHTML(raw, docType string) string {
	s := StripCodeFences(raw)
	s = StripOuterWrappers(s)

	if !anyTagRe.MatchString(s) {
		return ConvertBulletsToHTML(s)
	}

	s = SanitizeAllowedTags(s)
	if !divTagRe.MatchString(s) {
		s = "<div>" + s + "</div>"
	}
	if !strings.Contains(s, `class="`) {
		class := "resume"
		if docType == "cover" {
			class = "cover"
		}
		s = strings.Replace(s, "<div", `<div class="`+class+`"`, 1)
	}
	s = contactParaRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// ConvertBulletsToHTML promotes plain text to HTML: "- " lines become list
// items, ALL-CAPS lines become section headings, everything else becomes a
// paragraph.
func ConvertBulletsToHTML(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	var out []string
	inList := false

	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			if inList {
				out = append(out, "</ul>")
				inList = false
			}
			continue
		}
		if strings.HasPrefix(line, "- ") {
			if !inList {
				out = append(out, "<ul>")
				inList = true
			}
			out = append(out, "<li>"+strings.TrimSpace(line[2:])+"</li>")
			continue
		}
		if inList {
			out = append(out, "</ul>")
			inList = false
		}
		if line == strings.ToUpper(line) && upperLetterRe.MatchString(line) {
			out = append(out, "<strong>"+line+"</strong>")
		} else {
			out = append(out, "<p>"+line+"</p>")
		}
	}

	if inList {
		out = append(out, "</ul>")
	}
	return strings.Join(out, "\n")
}
