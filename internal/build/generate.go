package build

import (
	"context"

	"resumeforge/internal/ats"
	"resumeforge/internal/formalize"
	"resumeforge/internal/types"
)

// generateSeed is the form-derived material the generate path starts
// from and falls back to.
type generateSeed struct {
	EduLines       []string
	ExpHeaders     []string
	RawBullets     [][]string
	BulletList     []string
	FormattedDates []string
	HasExperience  bool
}

// generateResume asks the oracle for a full resume body seeded with the
// form's facts, re-formalizes every generated list, and assembles the
// document. Oracle failures degrade to the already-formalized form
// content; the build never fails outright.
func (b *Builder) generateResume(ctx context.Context, form *types.ResumeForm, contact contactFields, doc resumeDoc, seed generateSeed) (*types.BuildResult, error) {
	input := types.GenerateInput{
		CandidateRole:     form.JobTitle,
		TargetCompany:     form.CompanyName,
		JobDescription:    form.JobDescription,
		Summary:           doc.Summary,
		Skills:            formalize.CleanList(form.Skills),
		Certifications:    formalize.CleanList(form.Certifications),
		Hobbies:           formalize.CleanList(form.Hobbies),
		EducationLines:    seed.EduLines,
		ExperienceHeaders: seed.ExpHeaders,
		ExperienceBullets: seed.RawBullets,
		MaxBulletsPerRole: 4,
	}

	generated := &types.GeneratedResume{}
	raw, _, err := b.oracle.GenerateResume(ctx, input)
	if err != nil {
		if b.logger != nil {
			b.logger.Warn("Resume generation failed, using formalized form content", "error", err)
		}
		b.recordFallback("generate", "oracle call failed")
	} else if parsed := formalize.ParseGeneratedResume(raw); parsed != nil {
		generated = parsed
	} else {
		if b.logger != nil {
			b.logger.Warn("Resume generation reply was not usable JSON, using formalized form content")
		}
		b.recordFallback("generate", "reply shape mismatch")
	}

	eduSource := doc.Education
	if len(generated.Education) > 0 {
		eduSource = formalize.CleanList(generated.Education)
	}
	eduOut := b.formalizeCategory(ctx, eduSource, types.CategoryEducation, form)

	skillsSource := doc.Skills
	if len(generated.Skills) > 0 {
		skillsSource = formalize.CleanList(generated.Skills)
	}
	skillsOut := b.formalizeCategory(ctx, skillsSource, types.CategorySkills, form)

	certsSource := doc.Certs
	if len(generated.Certifications) > 0 {
		certsSource = formalize.CleanList(generated.Certifications)
	}
	certsOut := b.formalizeCategory(ctx, certsSource, types.CategoryCertifications, form)

	hobbiesOut := b.formalizeCategory(ctx, formalize.CleanList(form.Hobbies), types.CategoryHobbies, form)

	summaryGen := generated.Summary
	if summaryGen == "" {
		summaryGen = doc.Summary
	}
	summaryGen = b.polishSummary(ctx, summaryGen, form)

	// Generated roles replace the form's experience only when the oracle
	// actually produced some.
	blocks := doc.Blocks
	var generatedBullets []string
	styledHeaders := false
	if len(generated.Experience) > 0 {
		styledHeaders = true
		headers := make([]string, len(generated.Experience))
		for i, role := range generated.Experience {
			headers[i] = role.Header
		}
		headersFormal := b.formalizeCategory(ctx, headers, types.CategoryExperience, form)

		blocks = make([]expBlock, len(generated.Experience))
		for i, role := range generated.Experience {
			header := headers[i]
			if i < len(headersFormal) && headersFormal[i] != "" {
				header = headersFormal[i]
			}
			bullets := formalize.CleanList(role.Bullets)
			generatedBullets = append(generatedBullets, bullets...)
			blocks[i] = expBlock{Header: header, Bullets: bullets}
		}
	}

	result := b.assembleResume(contact, resumeDoc{
		Summary:   summaryGen,
		Education: eduOut,
		Skills:    skillsOut,
		Certs:     certsOut,
		Hobbies:   hobbiesOut,
		Blocks:    blocks,
	}, styledHeaders)

	atsBullets := generatedBullets
	if len(atsBullets) == 0 {
		atsBullets = seed.BulletList
	}
	result.ATSScore = ats.Score(atsBullets, ats.SectionFlags{
		Skills:         len(skillsOut) > 0,
		Certifications: len(certsOut) > 0,
		Education:      len(eduOut) > 0,
		Experience:     len(generated.Experience) > 0 || seed.HasExperience,
		Summary:        summaryGen != "",
		Hobbies:        len(hobbiesOut) > 0,
	}, seed.FormattedDates)

	b.recordBuilt("resume", ModeGenerate)
	return result, nil
}
