// Package ats scores an assembled resume the way applicant tracking
// systems are commonly believed to: action-verb density, section
// completeness, date formatting, and bullet volume.
package ats

import (
	"math"
	"regexp"
	"strings"
)

// actionVerbs is the list of leading words that count as strong bullet
// openers. Matching is a prefix check against the trimmed bullet.
var actionVerbs = []string{
	"Led",
	"Managed",
	"Developed",
	"Created",
	"Delivered",
	"Assisted",
	"Collaborated",
	"Supported",
	"Trained",
	"Performed",
	"Implemented",
	"Built",
	"Designed",
	"Resolved",
	"Launched",
	"Achieved",
	"Increased",
	"Decreased",
	"Optimized",
	"Streamlined",
	"Facilitated",
	"Presented",
	"Organized",
	"Monitored",
	"Analyzed",
	"Recommended",
	"Improved",
	"Communicated",
	"Prepared",
	"Evaluated",
	"Planned",
	"Negotiated",
	"Operated",
	"Maintained",
	"Initiated",
	"Directed",
	"Documented",
	"Tested",
	"Inspected",
	"Supervised",
	"Configured",
	"Updated",
	"Reviewed",
}

// SectionFlags records which resume sections ended up non-empty.
type SectionFlags struct {
	Skills         bool
	Certifications bool
	Education      bool
	Experience     bool
	Summary        bool
	Hobbies        bool
}

// monthCommaYearRe matches the "Month, YYYY" date style the formalizer
// produces.
var monthCommaYearRe = regexp.MustCompile(`\b[A-Za-z]+,\s+\d{4}\b`)

// StartsWithActionVerb reports whether a bullet opens with one of the
// recognized action verbs.
func StartsWithActionVerb(bullet string) bool {
	trimmed := strings.TrimSpace(bullet)
	for _, verb := range actionVerbs {
		if strings.HasPrefix(trimmed, verb) {
			return true
		}
	}
	return false
}

// Score computes the 0-100 ATS score. Up to 30 points come from the share
// of bullets that open with an action verb, up to 47 from section
// completeness, 5 when at least one date is present and every date is
// "Month, YYYY" formatted, and 5 when the resume carries at least four
// bullets.
func Score(bullets []string, sections SectionFlags, dates []string) int {
	verbCount := 0
	for _, b := range bullets {
		if StartsWithActionVerb(b) {
			verbCount++
		}
	}

	total := len(bullets)
	if total == 0 {
		total = 1
	}
	actionScore := int(math.Round(float64(verbCount) / float64(total) * 30))

	sectionScore := 0
	if sections.Skills {
		sectionScore += 10
	}
	if sections.Certifications {
		sectionScore += 10
	}
	if sections.Education {
		sectionScore += 10
	}
	if sections.Experience {
		sectionScore += 10
	}
	if sections.Summary {
		sectionScore += 5
	}
	if sections.Hobbies {
		sectionScore += 2
	}

	// The bonus needs at least one date; an empty resume scores zero.
	dateScore := 0
	if len(dates) > 0 {
		dateScore = 5
		for _, d := range dates {
			if !monthCommaYearRe.MatchString(d) {
				dateScore = 0
				break
			}
		}
	}

	lengthScore := 0
	if len(bullets) >= 4 {
		lengthScore = 5
	}

	score := actionScore + sectionScore + dateScore + lengthScore
	if score > 100 {
		score = 100
	}
	return score
}
