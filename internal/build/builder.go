// Package build orchestrates document assembly: it formalizes form
// content, drives the optional rewrite and generate oracle operations,
// renders the HTML shells, and scores the result.
package build

import (
	"strings"
	"time"

	"resumeforge/internal/ai"
	"resumeforge/internal/assemble"
	"resumeforge/internal/errors"
	"resumeforge/internal/formalize"
	"resumeforge/internal/types"
)

// MetricsRecorder receives build events. The server wires its metrics
// registry in; a nil recorder disables recording.
type MetricsRecorder interface {
	RecordFallback(category, reason string)
	RecordDocumentBuilt(docType, mode string)
}

// Builder assembles resumes and cover letters. The oracle is optional;
// without one every document is built deterministically.
type Builder struct {
	formalizer *formalize.Formalizer
	oracle     ai.Oracle
	templates  *assemble.TemplateStore
	metrics    MetricsRecorder
	logger     *errors.Logger
	now        func() time.Time
}

// New creates a Builder. oracle may be nil; templates may be nil when no
// template directory is configured.
func New(formalizer *formalize.Formalizer, oracle ai.Oracle, templates *assemble.TemplateStore, metrics MetricsRecorder, logger *errors.Logger) *Builder {
	return &Builder{
		formalizer: formalizer,
		oracle:     oracle,
		templates:  templates,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// HasOracle reports whether oracle-backed operations are available.
func (b *Builder) HasOracle() bool {
	return b.oracle != nil
}

func (b *Builder) recordFallback(category, reason string) {
	if b.metrics != nil {
		b.metrics.RecordFallback(category, reason)
	}
}

func (b *Builder) recordBuilt(docType, mode string) {
	if b.metrics != nil {
		b.metrics.RecordDocumentBuilt(docType, mode)
	}
}

// noteOutcome logs and records when a formalization fell back.
func (b *Builder) noteOutcome(category types.ContentCategory, out formalize.Outcome) []string {
	if out.Source == formalize.SourceFallback && out.Reason != "no oracle configured" {
		b.recordFallback(string(category), out.Reason)
	}
	return out.Lines
}

// contactFields is the shared header data derived from a form.
type contactFields struct {
	FullName     string
	Email        string
	Phone        string
	AddressLine  string
	CityStateZip string
	City         string
	State        string
	Zip          string
}

func deriveContact(form *types.ResumeForm) contactFields {
	return contactFields{
		FullName:     assemble.FullName(form.FirstName, form.LastName),
		Email:        strings.TrimSpace(form.Email),
		Phone:        assemble.FormatPhone(strings.TrimSpace(form.Phone)),
		AddressLine:  assemble.AddressLine(form.Address, form.Address2),
		CityStateZip: assemble.CityStateZip(form.City, form.State, form.Zip),
		City:         strings.TrimSpace(form.City),
		State:        strings.TrimSpace(form.State),
		Zip:          strings.TrimSpace(form.Zip),
	}
}

func (c contactFields) assembleContact() assemble.Contact {
	return assemble.Contact{
		FullName:     c.FullName,
		AddressLine:  c.AddressLine,
		CityStateZip: c.CityStateZip,
		Phone:        c.Phone,
		Email:        c.Email,
	}
}

// ResolveForm unwraps a build request into its form: the formData object
// when present, otherwise the request itself doubles as the form for
// older clients.
func ResolveForm(req *types.BuildRequest, inline *types.ResumeForm) *types.ResumeForm {
	if req != nil && req.FormData != nil {
		return req.FormData
	}
	if inline != nil {
		return inline
	}
	return &types.ResumeForm{}
}

func escapeListItems(lines []string) string {
	var sb strings.Builder
	for _, l := range lines {
		sb.WriteString("<li>" + assemble.EscapeHTML(l) + "</li>")
	}
	return sb.String()
}

func listSection(title string, lines []string) []string {
	if len(lines) == 0 {
		return nil
	}
	return []string{
		"<strong>" + title + "</strong>",
		"<ul>" + escapeListItems(lines) + "</ul>",
	}
}
