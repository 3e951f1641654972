package export

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/unidoc/unioffice/document"
	"github.com/unidoc/unioffice/measurement"
	"github.com/unidoc/unioffice/schema/soo/wml"
	"golang.org/x/net/html"
)

// DocxConverter walks the export HTML and emits a Word document. Only the
// allow-listed structural tags appear in export HTML, so the walk handles
// exactly those.
type DocxConverter struct{}

// NewDocxConverter creates the default converter.
func NewDocxConverter() *DocxConverter {
	return &DocxConverter{}
}

// Convert parses the HTML shell and writes each block element as a
// paragraph, honoring bold runs, bullet lists, and line breaks.
func (c *DocxConverter) Convert(ctx context.Context, htmlStr string, opts Options) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	qdoc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return nil, fmt.Errorf("failed to parse export HTML: %w", err)
	}

	doc := document.New()
	defer doc.Close()

	if opts.MarginTwips > 0 {
		margin := measurement.Distance(opts.MarginTwips) * measurement.Twips
		doc.BodySection().SetPageMargins(margin, margin, margin, margin,
			0.5*measurement.Inch, 0.5*measurement.Inch, 0)
	}

	bulletDef := doc.Numbering.AddDefinition()
	lvl := bulletDef.AddLevel()
	lvl.SetFormat(wml.ST_NumberFormatBullet)
	lvl.SetAlignment(wml.ST_JcLeft)
	lvl.SetText("•")
	lvl.Properties().SetLeftIndent(0.25 * measurement.Inch)

	w := &docxWriter{doc: doc, bullets: bulletDef}
	qdoc.Find("body").Each(func(_ int, body *goquery.Selection) {
		w.walkChildren(body)
	})

	var buf bytes.Buffer
	if err := doc.Save(&buf); err != nil {
		return nil, fmt.Errorf("failed to save document: %w", err)
	}
	return buf.Bytes(), nil
}

type docxWriter struct {
	doc     *document.Document
	bullets document.NumberingDefinition
}

func (w *docxWriter) walkChildren(sel *goquery.Selection) {
	sel.Contents().Each(func(_ int, node *goquery.Selection) {
		w.walkNode(node)
	})
}

func (w *docxWriter) walkNode(node *goquery.Selection) {
	n := node.Get(0)
	if n == nil {
		return
	}

	if n.Type == html.TextNode {
		if text := strings.TrimSpace(n.Data); text != "" {
			para := w.doc.AddParagraph()
			para.AddRun().AddText(text)
		}
		return
	}
	if n.Type != html.ElementNode {
		return
	}

	switch n.Data {
	case "h2", "h3":
		para := w.doc.AddParagraph()
		run := para.AddRun()
		run.Properties().SetBold(true)
		run.Properties().SetSize(13 * measurement.Point)
		run.AddText(strings.TrimSpace(node.Text()))
	case "p":
		w.writeParagraph(node, false)
	case "strong":
		// A bare strong at block level is a section heading.
		para := w.doc.AddParagraph()
		run := para.AddRun()
		run.Properties().SetBold(true)
		run.AddText(strings.TrimSpace(node.Text()))
	case "ul", "ol":
		node.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
			w.writeBullet(li)
		})
	case "div":
		w.walkChildren(node)
	case "br":
		// Block-level br: blank paragraph.
		w.doc.AddParagraph()
	default:
		w.walkChildren(node)
	}
}

// writeParagraph emits one paragraph, splitting runs on strong/em and br
// so inline emphasis survives the conversion.
func (w *docxWriter) writeParagraph(node *goquery.Selection, bold bool) {
	para := w.doc.AddParagraph()
	w.writeInline(para, node, bold, false)
}

func (w *docxWriter) writeInline(para document.Paragraph, node *goquery.Selection, bold, italic bool) {
	node.Contents().Each(func(_ int, child *goquery.Selection) {
		n := child.Get(0)
		if n == nil {
			return
		}
		switch {
		case n.Type == html.TextNode:
			text := n.Data
			if strings.TrimSpace(text) == "" {
				return
			}
			run := para.AddRun()
			if bold {
				run.Properties().SetBold(true)
			}
			if italic {
				run.Properties().SetItalic(true)
			}
			run.AddText(text)
		case n.Type != html.ElementNode:
			return
		case n.Data == "strong":
			w.writeInline(para, child, true, italic)
		case n.Data == "em":
			w.writeInline(para, child, bold, true)
		case n.Data == "br":
			para.AddRun().AddBreak()
		default:
			w.writeInline(para, child, bold, italic)
		}
	})
}

func (w *docxWriter) writeBullet(li *goquery.Selection) {
	para := w.doc.AddParagraph()
	para.SetNumberingDefinition(w.bullets)
	para.SetNumberingLevel(0)
	w.writeInline(para, li, false, false)
}
