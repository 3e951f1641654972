package formalize

import (
	"regexp"
	"strings"

	"resumeforge/internal/types"
)

var (
	// Matches "Doctor|Bachelor|Master of <subject> in <field>". Whether the
	// field repeats the subject decides collapse vs em-dash join.
	degreeFieldRe = regexp.MustCompile(`(?i)\b(Doctor|Bachelor|Master) of ([A-Za-z][A-Za-z ]*?)\s+in\s+([A-Za-z][A-Za-z ]+)\b`)

	monthYearRe = regexp.MustCompile(`(?i)\b(January|February|March|April|May|June|July|August|September|October|November|December|Jan|Feb|Mar|Apr|Jun|Jul|Aug|Sept|Sep|Oct|Nov|Dec)\s+(\d{4})\b`)

	titleWordRe = regexp.MustCompile(`(?i)\b[a-z][a-z'0-9]*\b`)
)

// collapseDegreeTautology rewrites the first "<Degree> of <X> in <Y>"
// occurrence: when Y repeats X the field is dropped ("Doctor of Optometry
// in Optometry" becomes "Doctor of Optometry"), otherwise the "in" joint
// becomes an em dash ("Bachelor of Science in Nursing" becomes
// "Bachelor of Science — Nursing").
func collapseDegreeTautology(line string) string {
	loc := degreeFieldRe.FindStringSubmatchIndex(line)
	if loc == nil {
		return line
	}

	degree := line[loc[2]:loc[3]]
	subject := strings.TrimSpace(line[loc[4]:loc[5]])
	field := strings.TrimSpace(line[loc[6]:loc[7]])

	var replacement string
	if strings.EqualFold(subject, field) {
		replacement = degree + " of " + subject
	} else {
		replacement = degree + " of " + subject + " — " + field
	}

	return line[:loc[0]] + replacement + line[loc[1]:]
}

// CommafyMonthYear turns "Month YYYY" into "Month, YYYY" anywhere in the
// line, including abbreviated month names.
func CommafyMonthYear(s string) string {
	return monthYearRe.ReplaceAllString(s, "$1, $2")
}

// TitleCaseLite uppercases the first letter of each word and lowercases
// the rest. Used only on fallback output for hobbies and skills; oracle
// output is trusted to be cased already.
func TitleCaseLite(s string) string {
	return titleWordRe.ReplaceAllStringFunc(s, func(word string) string {
		return strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	})
}

// PostProcess runs the category-aware cleanup pass over formalized lines:
// degree tautology collapse for education, then month-year comma insertion
// for every category.
func PostProcess(lines []string, category types.ContentCategory) []string {
	if len(lines) == 0 {
		return lines
	}

	out := make([]string, len(lines))
	for i, line := range lines {
		s := strings.TrimSpace(line)

		if category == types.CategoryEducation {
			s = collapseDegreeTautology(s)
		}

		out[i] = CommafyMonthYear(s)
	}
	return out
}
