package build

import (
	"context"
	"strings"

	"resumeforge/internal/ats"
	"resumeforge/internal/formalize"
	"resumeforge/internal/types"
)

// rewriteSeed is the form-derived material the rewrite path scores
// against.
type rewriteSeed struct {
	Education      []types.EducationEntry
	Experience     []types.ExperienceEntry
	BulletList     []string
	FormattedDates []string
}

// rewriteResume tightens the summary and each role's bullets through the
// oracle, holding every numeric fact to the original. Any oracle failure
// keeps the affected text as-is.
func (b *Builder) rewriteResume(ctx context.Context, form *types.ResumeForm, contact contactFields, doc resumeDoc, seed rewriteSeed) (*types.BuildResult, error) {
	summaryOut := doc.Summary
	if summaryOut != "" {
		raw, _, err := b.oracle.RewriteContent(ctx, types.RewriteInput{Summary: summaryOut})
		if err != nil {
			if b.logger != nil {
				b.logger.Warn("Summary rewrite failed, keeping original", "error", err)
			}
			b.recordFallback("rewrite_summary", "oracle call failed")
		} else if parsed := formalize.ParseRewriteResult(raw); parsed.Summary != "" {
			summaryOut = parsed.Summary
		}
		summaryOut = b.polishSummary(ctx, summaryOut, form)
	}

	blocks := make([]expBlock, len(doc.Blocks))
	var rewrittenBullets []string
	for i, block := range doc.Blocks {
		if len(block.Bullets) == 0 {
			blocks[i] = block
			continue
		}

		outBullets := block.Bullets
		raw, _, err := b.oracle.RewriteContent(ctx, types.RewriteInput{Bullets: block.Bullets})
		if err != nil {
			if b.logger != nil {
				b.logger.Warn("Bullet rewrite failed, keeping originals", "error", err)
			}
			b.recordFallback("rewrite_bullets", "oracle call failed")
		} else {
			parsed := formalize.ParseRewriteResult(raw)
			if len(parsed.Bullets) == len(block.Bullets) {
				outBullets = parsed.Bullets
			}
		}

		safe := formalize.GuardBullets(block.Bullets, outBullets)
		rewrittenBullets = append(rewrittenBullets, safe...)
		blocks[i] = expBlock{Header: block.Header, Bullets: safe}
	}

	result := b.assembleResume(contact, resumeDoc{
		Summary:   summaryOut,
		Education: doc.Education,
		Skills:    doc.Skills,
		Certs:     doc.Certs,
		Hobbies:   doc.Hobbies,
		Blocks:    blocks,
	}, false)

	atsBullets := rewrittenBullets
	if len(atsBullets) == 0 {
		atsBullets = seed.BulletList
	}
	result.ATSScore = ats.Score(atsBullets, ats.SectionFlags{
		Skills: len(doc.Skills) > 0,
		// Longstanding quirk kept for parity with the original scorer:
		// the certifications flag tracks education here.
		Certifications: len(seed.Education) > 0,
		Education:      len(seed.Education) > 0,
		Experience:     len(seed.Experience) > 0,
		Summary:        summaryOut != "",
		Hobbies:        len(doc.Hobbies) > 0,
	}, seed.FormattedDates)

	plainParts := append([]string{summaryOut}, atsBullets...)
	result.PlainText = strings.TrimSpace(strings.Join(plainParts, "\n"))

	b.recordBuilt("resume", ModeRewrite)
	return result, nil
}
