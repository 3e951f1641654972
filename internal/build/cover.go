package build

import (
	"context"
	"regexp"
	"strings"

	"resumeforge/internal/assemble"
	"resumeforge/internal/formalize"
	"resumeforge/internal/types"
)

var coverTitleRe = regexp.MustCompile(`(?is)<h[12][^>]*>.*?</h[12]>`)

// BuildCover assembles a cover letter. The oracle composes the body when
// available; otherwise a short static letter is produced. Oracle failures
// degrade to the static letter.
func (b *Builder) BuildCover(ctx context.Context, form *types.ResumeForm, options types.BuildOptions) (*types.BuildResult, error) {
	contact := deriveContact(form)
	if contact.FullName == "" {
		contact.FullName = "Your Name"
	}

	recipient := firstTrimmed(form.Recipient, form.RecipientName, form.HiringManager, form.ContactName)
	company := strings.TrimSpace(form.CompanyName)
	role := strings.TrimSpace(form.JobTitle)
	companyLocation := assemble.CityStateZip(form.CompanyCity, form.CompanyState, "")

	signoff := assemble.ResolveSignoff(form, options)
	salutation := "Dear Hiring Manager,"
	if recipient != "" {
		salutation = "Dear " + recipient + ","
	}

	var body types.CoverBody
	usedOracle := false
	if b.HasOracle() {
		raw, _, err := b.oracle.ComposeCoverBody(ctx, types.CoverInput{
			CandidateName:   contact.FullName,
			TargetRole:      role,
			Company:         company,
			CompanyLocation: companyLocation,
			Recipient:       recipient,
			Highlights:      strings.TrimSpace(form.Summary),
			JobDescription:  strings.TrimSpace(form.JobDescription),
			Signoff:         signoff,
		})
		if err != nil {
			if b.logger != nil {
				b.logger.Warn("Cover composition failed, using static letter", "error", err)
			}
			b.recordFallback("cover", "oracle call failed")
		} else {
			body = formalize.ParseCoverBody(raw)
			usedOracle = body.Opening != "" || len(body.Body) > 0 || body.Closing != ""
			if !usedOracle {
				b.recordFallback("cover", "reply shape mismatch")
			}
		}
	}

	var bodyHTML string
	if usedOracle {
		paras := []string{salutation}
		if body.Opening != "" {
			paras = append(paras, body.Opening)
		}
		paras = append(paras, body.Body...)
		if body.Closing != "" {
			paras = append(paras, body.Closing)
		}
		paras = append(paras, signoff+",<br/>"+contact.FullName)

		var sb strings.Builder
		sb.WriteString(`<div class="cover">`)
		for _, p := range paras {
			sb.WriteString(`<p style="margin:0 0 10px 0;">` + strings.TrimSpace(p) + `</p>`)
		}
		sb.WriteString(`</div>`)
		bodyHTML = coverTitleRe.ReplaceAllString(sb.String(), "")
	} else {
		bodyHTML = b.staticCoverBody(salutation, role, company, companyLocation, signoff, contact.FullName)
	}

	bodyHTML = removeHomeLocationMentions(bodyHTML, companyLocation, contact.City, contact.State)

	contactHTML := assemble.BuildCoverContact(contact.assembleContact())

	var templated string
	if b.templates != nil {
		model := assemble.CoverTemplateModel(contact.assembleContact(), bodyHTML)
		templated, _ = b.templates.RenderCover(model)
	}

	result := &types.BuildResult{}
	if templated != "" {
		result.Output = templated
		result.HTML = templated
	} else {
		result.Output = assemble.FormatCoverHTML(contactHTML, bodyHTML)
		result.HTML = assemble.FormatCoverHTMLPlain(contactHTML, bodyHTML)
	}
	result.PlainText = assemble.StripTags(result.Output)

	b.recordBuilt("cover", "default")
	return result, nil
}

// staticCoverBody is the deterministic letter used without an oracle.
func (b *Builder) staticCoverBody(salutation, role, company, companyLocation, signoff, fullName string) string {
	interest := "I'm writing to express interest in "
	if role != "" {
		interest += role
	} else {
		interest += "the role"
	}
	if company != "" {
		interest += " at " + company
	}
	if companyLocation != "" {
		interest += " in " + companyLocation
	}
	interest += "."

	return strings.TrimSpace(`
<div class="cover">
  <p>` + salutation + `</p>
  <p>` + interest + `</p>
  <p>Thank you for your time and consideration.</p>
  <p>` + signoff + `,<br/>` + fullName + `</p>
</div>`)
}

// removeHomeLocationMentions scrubs "in <home city, state>" phrasing when
// no company location was supplied, so the letter never claims the
// candidate's home town is the job's location.
func removeHomeLocationMentions(html, companyLocation, city, state string) string {
	if companyLocation != "" {
		return html
	}
	homeLoc := assemble.CityStateZip(city, state, "")
	if homeLoc == "" {
		return html
	}
	re := regexp.MustCompile(`(?i)\s+in\s+` + regexp.QuoteMeta(homeLoc))
	return re.ReplaceAllString(html, "")
}

func firstTrimmed(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
