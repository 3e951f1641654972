package build

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"
	"resumeforge/internal/assemble"
	"resumeforge/internal/ats"
	"resumeforge/internal/formalize"
	"resumeforge/internal/types"
)

// Resume build modes. Auto picks generate only when the form carries no
// bullets and no summary to work from.
const (
	ModeAuto     = "auto"
	ModeGenerate = "generate"
	ModeRewrite  = "rewrite"
)

// expBlock is one experience role ready for assembly.
type expBlock struct {
	Header  string
	Bullets []string
}

func (e expBlock) headerHTML() string {
	return "<strong>" + assemble.EscapeHTML(e.Header) + "</strong>"
}

// BuildResume assembles a resume from the form. With no oracle the
// deterministic path runs; otherwise the mode decides between a full
// generation and a conservative rewrite.
func (b *Builder) BuildResume(ctx context.Context, form *types.ResumeForm, mode string) (*types.BuildResult, error) {
	mode = strings.ToLower(strings.TrimSpace(mode))
	if mode == "" {
		mode = strings.ToLower(strings.TrimSpace(form.Mode))
	}
	if mode == "" {
		mode = ModeAuto
	}

	contact := deriveContact(form)

	summaryIn := strings.TrimSpace(form.Summary)
	if summaryIn == "" {
		summaryIn = strings.TrimSpace(form.Experience)
	}

	skills := formalize.CleanList(form.Skills)
	certifications := formalize.CleanList(form.Certifications)
	hobbies := formalize.CleanList(form.Hobbies)

	education := make([]types.EducationEntry, 0, len(form.Education))
	for _, e := range form.Education {
		if !e.IsBlank() {
			education = append(education, e)
		}
	}
	experience := make([]types.ExperienceEntry, 0, len(form.ExperienceList))
	for _, e := range form.ExperienceList {
		if !e.IsBlank() {
			experience = append(experience, e)
		}
	}
	assemble.SortEducationNewestFirst(education)
	assemble.SortExperienceNewestFirst(experience)

	eduLines := assemble.EducationLines(education, b.now())

	expHeaders := make([]string, 0, len(experience))
	formattedDates := make([]string, 0, len(experience))
	rawBullets := make([][]string, 0, len(experience))
	var bulletList []string
	for _, e := range experience {
		header, dates := assemble.ExperienceHeader(e)
		expHeaders = append(expHeaders, header)
		if dates != "" {
			formattedDates = append(formattedDates, dates)
		}
		bullets := formalize.CleanList(e.Bullets)
		rawBullets = append(rawBullets, bullets)
		bulletList = append(bulletList, bullets...)
	}

	// Formalize every category concurrently; each call degrades to the
	// deterministic path on its own.
	var (
		eduFormal     []string
		headersFormal []string
		skillsFormal  []string
		certsFormal   []string
		hobbiesFormal []string
		summaryOut    = summaryIn
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		eduFormal = b.formalizeCategory(gctx, eduLines, types.CategoryEducation, form)
		return nil
	})
	g.Go(func() error {
		headersFormal = b.formalizeCategory(gctx, expHeaders, types.CategoryExperience, form)
		return nil
	})
	g.Go(func() error {
		skillsFormal = b.formalizeCategory(gctx, skills, types.CategorySkills, form)
		return nil
	})
	g.Go(func() error {
		certsFormal = b.formalizeCategory(gctx, certifications, types.CategoryCertifications, form)
		return nil
	})
	g.Go(func() error {
		hobbiesFormal = b.formalizeCategory(gctx, hobbies, types.CategoryHobbies, form)
		return nil
	})
	g.Go(func() error {
		summaryOut = b.polishSummary(gctx, summaryIn, form)
		return nil
	})
	_ = g.Wait()

	blocks := make([]expBlock, len(experience))
	for i := range experience {
		header := expHeaders[i]
		if i < len(headersFormal) && headersFormal[i] != "" {
			header = headersFormal[i]
		}
		blocks[i] = expBlock{Header: header, Bullets: rawBullets[i]}
	}

	doc := resumeDoc{
		Summary:   summaryOut,
		Education: eduFormal,
		Skills:    skillsFormal,
		Certs:     certsFormal,
		Hobbies:   hobbiesFormal,
		Blocks:    blocks,
	}

	if !b.HasOracle() {
		result := b.assembleResume(contact, doc, false)
		result.ATSScore = ats.Score(bulletList, ats.SectionFlags{
			Skills:         len(skillsFormal) > 0,
			Certifications: len(certsFormal) > 0,
			Education:      len(education) > 0,
			Experience:     len(experience) > 0,
			Summary:        summaryOut != "",
			Hobbies:        len(hobbiesFormal) > 0,
		}, formattedDates)
		b.recordBuilt("resume", "fallback")
		return result, nil
	}

	hasAnyBullets := len(bulletList) > 0
	if mode == ModeGenerate || (mode == ModeAuto && !hasAnyBullets && summaryIn == "") {
		return b.generateResume(ctx, form, contact, doc, generateSeed{
			EduLines:       eduLines,
			ExpHeaders:     expHeaders,
			RawBullets:     rawBullets,
			BulletList:     bulletList,
			FormattedDates: formattedDates,
			HasExperience:  len(experience) > 0,
		})
	}

	return b.rewriteResume(ctx, form, contact, doc, rewriteSeed{
		Education:      education,
		Experience:     experience,
		BulletList:     bulletList,
		FormattedDates: formattedDates,
	})
}

// formalizeCategory runs one category through the formalizer and records
// fallbacks.
func (b *Builder) formalizeCategory(ctx context.Context, items []string, category types.ContentCategory, form *types.ResumeForm) []string {
	out := b.formalizer.FormalizeList(ctx, items, category, form.City, form.State)
	return b.noteOutcome(category, out)
}

// polishSummary runs the summary through formalization as a single-item
// list, keeping the input when the outcome is unusable.
func (b *Builder) polishSummary(ctx context.Context, summary string, form *types.ResumeForm) string {
	if summary == "" {
		return ""
	}
	out := b.formalizer.FormalizeList(ctx, []string{summary}, types.CategorySummary, form.City, form.State)
	b.noteOutcome(types.CategorySummary, out)
	if len(out.Lines) > 0 && out.Lines[0] != "" {
		return out.Lines[0]
	}
	return summary
}

// resumeDoc carries the section content for final assembly.
type resumeDoc struct {
	Summary   string
	Education []string
	Skills    []string
	Certs     []string
	Hobbies   []string
	Blocks    []expBlock
}

// assembleResume renders the document body, preferring the template when
// one is loaded. styledHeaders switches the template's experience
// fragment to the generated-header style.
func (b *Builder) assembleResume(contact contactFields, doc resumeDoc, styledHeaders bool) *types.BuildResult {
	var parts []string
	if doc.Summary != "" {
		parts = append(parts, "<strong>SUMMARY</strong>", "<p>"+assemble.EscapeHTML(doc.Summary)+"</p>")
	}
	parts = append(parts, listSection("EDUCATION", doc.Education)...)
	if len(doc.Blocks) > 0 {
		parts = append(parts, "<strong>WORK EXPERIENCE</strong>")
		for _, block := range doc.Blocks {
			if block.Header != "" {
				parts = append(parts, block.headerHTML())
			}
			if len(block.Bullets) > 0 {
				parts = append(parts, "<ul>"+escapeListItems(block.Bullets)+"</ul>")
			}
		}
	}
	parts = append(parts, listSection("SKILLS", doc.Skills)...)
	parts = append(parts, listSection("CERTIFICATIONS", doc.Certs)...)
	parts = append(parts, listSection("HOBBIES", doc.Hobbies)...)
	bodyHTML := strings.Join(parts, "\n")

	contactHTML := assemble.BuildResumeContact(contact.assembleContact())

	var templated string
	if b.templates != nil {
		model := assemble.ResumeTemplateModel(contact.assembleContact(), contact.City, contact.State, contact.Zip, doc.Summary, assemble.SectionHTML{
			Experience:    experienceFragment(doc.Blocks, styledHeaders),
			EducationList: escapeListItems(doc.Education),
			SkillsList:    escapeListItems(doc.Skills),
			CertsList:     escapeListItems(doc.Certs),
			HobbiesList:   escapeListItems(doc.Hobbies),
		})
		templated, _ = b.templates.RenderResume(model)
	}

	result := &types.BuildResult{}
	if templated != "" {
		result.Output = templated
		result.HTML = templated
	} else {
		result.Output = assemble.FormatResumeHTML(contactHTML, bodyHTML)
		result.HTML = assemble.FormatResumeHTMLPlain(contactHTML, bodyHTML)
	}
	return result
}

// experienceFragment renders the per-role blocks for the template model.
func experienceFragment(blocks []expBlock, styledHeaders bool) string {
	var sb strings.Builder
	for _, block := range blocks {
		sb.WriteString(`<div style="margin:0 0 10px 0;">`)
		if block.Header != "" {
			if styledHeaders {
				sb.WriteString(`<div style="font-weight:700; font-size:14px;">` + assemble.EscapeHTML(block.Header) + `</div>`)
			} else {
				sb.WriteString(block.headerHTML())
			}
		}
		if len(block.Bullets) > 0 {
			sb.WriteString("<ul>" + escapeListItems(block.Bullets) + "</ul>")
		}
		sb.WriteString("</div>")
	}
	return sb.String()
}
