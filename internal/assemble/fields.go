package assemble

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"resumeforge/internal/types"
)

var (
	nonDigitRe = regexp.MustCompile(`\D`)

	longMonthYearRe = regexp.MustCompile(`\b(January|February|March|April|May|June|July|August|September|October|November|December)\s+(\d{4})\b`)

	fourDigitYearRe = regexp.MustCompile(`^\d{4}$`)
	twoDigitYearRe  = regexp.MustCompile(`^\d{2}$`)

	trailingCommaRe = regexp.MustCompile(`\s*,\s*$`)
)

// FormatPhone renders a 10-digit number as "(NNN) NNN-NNNN". Anything
// else passes through untouched.
func FormatPhone(raw string) string {
	d := nonDigitRe.ReplaceAllString(raw, "")
	if len(d) != 10 {
		return raw
	}
	return "(" + d[:3] + ") " + d[3:6] + "-" + d[6:]
}

// AddCommaMonthYear turns "Month YYYY" into "Month, YYYY" for full month
// names. Experience date ranges use this before display and scoring.
func AddCommaMonthYear(s string) string {
	return longMonthYearRe.ReplaceAllString(s, "$1, $2")
}

// NormalizeYear4 widens a two-digit year to four, pivoting on the current
// year: "24" becomes "2024" while "99" becomes "1999".
func NormalizeYear4(y string) string {
	s := strings.TrimSpace(y)
	if fourDigitYearRe.MatchString(s) {
		return s
	}
	if !twoDigitYearRe.MatchString(s) {
		return s
	}
	n, _ := strconv.Atoi(s)
	cur2 := time.Now().Year() % 100
	if n <= cur2 {
		return strconv.Itoa(2000 + n)
	}
	return strconv.Itoa(1900 + n)
}

// FullName joins first and last, defaulting to empty when both are blank.
func FullName(first, last string) string {
	parts := make([]string, 0, 2)
	if s := strings.TrimSpace(first); s != "" {
		parts = append(parts, s)
	}
	if s := strings.TrimSpace(last); s != "" {
		parts = append(parts, s)
	}
	return strings.Join(parts, " ")
}

// AddressLine joins the street address with an optional unit line.
func AddressLine(address, address2 string) string {
	a := strings.TrimSpace(address)
	a2 := strings.TrimSpace(address2)
	if a2 == "" {
		return a
	}
	return a + ", " + a2
}

// CityStateZip joins the non-empty locality parts with commas.
func CityStateZip(city, state, zip string) string {
	parts := make([]string, 0, 3)
	for _, v := range []string{city, state, zip} {
		if s := strings.TrimSpace(v); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

// TrimTrailingComma drops a dangling comma from a template field.
func TrimTrailingComma(s string) string {
	return trailingCommaRe.ReplaceAllString(s, "")
}

// toYear parses a loose year string, returning 0 when unparseable so
// undated entries sort last.
func toYear(v string) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0
	}
	return n
}

// SortEducationNewestFirst orders entries by graduation year, descending.
func SortEducationNewestFirst(entries []types.EducationEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return toYear(entries[i].GraduationYear) > toYear(entries[j].GraduationYear)
	})
}

// SortExperienceNewestFirst orders entries by end year (falling back to
// start year), descending.
func SortExperienceNewestFirst(entries []types.ExperienceEntry) {
	key := func(e types.ExperienceEntry) int {
		if y := toYear(e.End); y != 0 {
			return y
		}
		return toYear(e.Start)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return key(entries[i]) > key(entries[j])
	})
}

// EducationLine renders one education entry as a display line:
// "Degree in Major — School, Month, YYYY", with an "Anticipated
// Graduation:" prefix when the year has not passed yet.
func EducationLine(e types.EducationEntry, now time.Time) string {
	line := strings.TrimSpace(strings.TrimSpace(e.Degree) + " in " + strings.TrimSpace(e.Major))
	if school := strings.TrimSpace(e.School); school != "" {
		line += " — " + school
	}

	month := strings.TrimSpace(e.GraduationMonth)
	year := NormalizeYear4(strings.TrimSpace(e.GraduationYear))

	var grad string
	switch {
	case month != "" && year != "":
		grad = month + ", " + year
	case month != "":
		grad = month
	default:
		grad = year
	}

	if year != "" {
		if y, err := strconv.Atoi(year); err == nil && y >= now.Year() {
			grad = "Anticipated Graduation: " + grad
		}
	}
	if grad != "" {
		line += ", " + grad
	}
	return line
}

// EducationLines renders every entry, preserving order.
func EducationLines(entries []types.EducationEntry, now time.Time) []string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, EducationLine(e, now))
	}
	return lines
}

// ExperienceHeader renders one experience entry as a display header:
// "Position at Company — Location (Start – End)". The formatted date
// range, when present, is also returned for ATS date scoring.
func ExperienceHeader(e types.ExperienceEntry) (header, dateRange string) {
	header = strings.TrimSpace(strings.TrimSpace(e.Position) + " at " + strings.TrimSpace(e.Company))
	if loc := strings.TrimSpace(e.Location); loc != "" {
		header += " — " + loc
	}
	if strings.TrimSpace(e.Start) != "" || strings.TrimSpace(e.End) != "" {
		end := strings.TrimSpace(e.End)
		if end == "" {
			end = "Present"
		}
		dateRange = AddCommaMonthYear(strings.TrimSpace(e.Start) + " – " + end)
		header += " (" + dateRange + ")"
	}
	return header, dateRange
}

// signoffTones maps tone keywords to closing phrases.
var signoffTones = map[string]string{
	"default":      "Sincerely",
	"professional": "Sincerely",
	"formal":       "Respectfully",
	"friendly":     "Best regards",
	"warm":         "Kind regards",
	"thanks":       "Thank you",
	"appreciative": "With appreciation",
}

// ResolveSignoff picks the closing phrase: an explicit option wins, then
// the form's signoff fields; tone keywords map to stock phrases and
// anything else is used verbatim with the first letter capitalized.
func ResolveSignoff(form *types.ResumeForm, options types.BuildOptions) string {
	raw := strings.TrimSpace(options.Signoff)
	if raw == "" && form != nil {
		raw = strings.TrimSpace(form.Signoff)
		if raw == "" {
			raw = strings.TrimSpace(form.SignoffTone)
		}
	}
	if raw == "" {
		return "Sincerely"
	}
	if mapped, ok := signoffTones[strings.ToLower(raw)]; ok {
		return mapped
	}
	return strings.ToUpper(raw[:1]) + raw[1:]
}
