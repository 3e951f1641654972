// Package export converts assembled documents to DOCX behind the payment
// gate.
package export

import (
	"context"
	"strings"

	"resumeforge/internal/config"
	"resumeforge/internal/errors"
)

// pageStyle is the stylesheet embedded in the export shell so the
// converter sees the same typography as the on-screen document.
const pageStyle = `
body{font-family:Arial,Helvetica,sans-serif;color:#111;font-size:11pt;line-height:1.35}
.resume-head,.letterhead{margin-bottom:12pt}
.contact{margin-bottom:12pt}
.body p{margin:0 0 8pt 0}
ul{margin:0 0 8pt 20pt}
`

// Request is the body of an export call.
type Request struct {
	HTML  string `json:"html"`
	Type  string `json:"type"`
	Paid  bool   `json:"paid"`
	Token string `json:"token"`
}

// Options configures the converter output.
type Options struct {
	MarginTwips       int
	TableRowCantSplit bool
}

// Converter turns an HTML document into binary document bytes.
type Converter interface {
	Convert(ctx context.Context, html string, opts Options) ([]byte, error)
}

// Service runs the gate, the shell wrapping, and the conversion.
type Service struct {
	converter Converter
	config    *config.ExportConfig
	logger    *errors.Logger
}

// NewService creates an export service with the given converter.
func NewService(converter Converter, cfg *config.ExportConfig, logger *errors.Logger) *Service {
	return &Service{converter: converter, config: cfg, logger: logger}
}

// Authorize enforces the payment gate: the paid flag, a checkout token
// longer than the configured minimum, or the dev bypass.
func (s *Service) Authorize(req Request) error {
	if req.Paid || s.config.Bypass {
		return nil
	}
	if len(req.Token) > s.config.MinTokenLength {
		return nil
	}
	return errors.NewPaymentError(errors.ErrCodePaymentRequired,
		"Please complete checkout to export", nil)
}

// Export gates the request, wraps the fragment in the page shell, and
// converts it. Returns the document bytes and the download filename.
func (s *Service) Export(ctx context.Context, req Request) ([]byte, string, error) {
	if err := s.Authorize(req); err != nil {
		return nil, "", err
	}
	if strings.TrimSpace(req.HTML) == "" {
		return nil, "", errors.NewValidationError(errors.ErrCodeInvalidHTML,
			"html is required", nil)
	}

	docHTML := WrapDocHTML(req.HTML)
	data, err := s.converter.Convert(ctx, docHTML, Options{
		MarginTwips:       720,
		TableRowCantSplit: true,
	})
	if err != nil {
		if s.logger != nil {
			s.logger.LogError(err, "Document conversion failed")
		}
		return nil, "", errors.NewExportError(errors.ErrCodeExportFailed,
			"Document conversion failed", err)
	}

	return data, Filename(req.Type), nil
}

// WrapDocHTML embeds a document fragment in the full-page export shell.
func WrapDocHTML(fragment string) string {
	return `<!DOCTYPE html><html><head><meta charset="utf-8"><style>` +
		pageStyle + `</style></head><body>` + fragment + `</body></html>`
}

// Filename picks the download name by document type.
func Filename(docType string) string {
	switch docType {
	case "resume":
		return "resume.docx"
	case "cover":
		return "cover_letter.docx"
	default:
		return "document.docx"
	}
}
