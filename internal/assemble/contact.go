package assemble

// Contact carries the rendered header fields for either document type.
// Fields are raw text; the builders escape them.
type Contact struct {
	FullName     string
	AddressLine  string
	CityStateZip string
	Phone        string
	Email        string
}

// BuildResumeContact renders the centered resume header block.
func BuildResumeContact(c Contact) string {
	html := `
<div class="resume-head" style="text-align:center;font-family:Arial,Helvetica,sans-serif;color:#111;">
  <div style="font-weight:700;font-size:18px;line-height:1.25;margin:0;">` + EscapeHTML(c.FullName) + `</div>
  <div style="margin-top:4px;display:inline-flex;gap:10px;flex-wrap:wrap;justify-content:center;font-size:13.5px;line-height:1.35;">
    ` + span(c.AddressLine) + `
    ` + span(c.CityStateZip) + `
    ` + span(c.Phone) + `
    ` + span(c.Email) + `
  </div>
</div>`
	return Collapse(html)
}

// BuildCoverContact renders the left-aligned cover-letter letterhead.
func BuildCoverContact(c Contact) string {
	html := `
<div class="letterhead" style="font-family:Arial,Helvetica,sans-serif;color:#111;">
  <div style="font-weight:700;font-size:18px;line-height:1.25;margin:0;">` + EscapeHTML(c.FullName) + `</div>
  <div style="margin-top:6px;display:flex;flex-direction:column;row-gap:2px;font-size:14px;line-height:1.35;">
    ` + line(c.AddressLine, "") + `
    ` + line(c.CityStateZip, "") + `
    ` + line(c.Phone, "Phone: ") + `
    ` + line(c.Email, "Email: ") + `
  </div>
</div>`
	return Collapse(html)
}

func span(v string) string {
	if v == "" {
		return ""
	}
	return "<span>" + EscapeHTML(v) + "</span>"
}

func line(v, label string) string {
	if v == "" {
		return ""
	}
	return "<div>" + label + EscapeHTML(v) + "</div>"
}

// FormatResumeHTML wraps contact and body in the styled on-screen shell.
func FormatResumeHTML(contactHTML, bodyHTML string) string {
	return Collapse(`
<div class="resume-doc" style="font-family:Arial,Helvetica,sans-serif;color:#111;line-height:1.45;white-space:normal !important;">
  <div class="contact" style="margin:0 0 12px 0;">` + contactHTML + `</div>
  <div class="body" style="font-size:13.5px;">
    ` + bodyHTML + `
  </div>
</div>`)
}

// FormatResumeHTMLPlain is the unstyled variant used for export, where the
// page stylesheet supplies formatting instead of inline styles.
func FormatResumeHTMLPlain(contactHTML, bodyHTML string) string {
	return Collapse(`
<div class="resume-doc" style="white-space:normal !important;">
  <div class="contact">` + contactHTML + `</div>
  <div class="body">` + bodyHTML + `</div>
</div>`)
}

// FormatCoverHTML wraps letterhead and body in the styled cover shell.
func FormatCoverHTML(contactHTML, bodyHTML string) string {
	return Collapse(`
<div class="cover-doc" style="font-family:Arial,Helvetica,sans-serif;color:#111;line-height:1.45;white-space:normal !important;">
  <div class="contact" style="margin:0 0 10px 0;">` + contactHTML + `</div>
  <div class="body" style="font-size:14px;">
    ` + bodyHTML + `
  </div>
</div>`)
}

// FormatCoverHTMLPlain is the unstyled export variant of the cover shell.
func FormatCoverHTMLPlain(contactHTML, bodyHTML string) string {
	return Collapse(`
<div class="cover-doc" style="white-space:normal !important;">
  <div class="contact">` + contactHTML + `</div>
  <div class="body">` + bodyHTML + `</div>
</div>`)
}
