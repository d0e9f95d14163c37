package letter

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
)

const letterCSS = `body{font-family:Arial,sans-serif;line-height:1.6;margin:40px;color:#333;max-width:800px;}
.header{margin-bottom:30px;border-bottom:2px solid #007bff;padding-bottom:20px;}
.header div{margin-bottom:10px;}
.subject{font-weight:bold;font-size:16px;}
.body{margin-bottom:40px;text-align:justify;}
.body ul{padding-left:1.2rem;}
.footer{margin-top:50px;font-size:10px;color:#666;text-align:center;border-top:1px solid #eee;padding-top:20px;}
@media print{@page{size:auto;margin:18mm;} body{margin:0;}}`

// Markdown renders the letter body with bullet lines turned into list items.
func Markdown(l Letter) string {
	lines := strings.Split(l.Body, "\n")
	var b strings.Builder
	inList := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if item, ok := strings.CutPrefix(trimmed, "•"); ok {
			if !inList {
				b.WriteString("\n")
				inList = true
			}
			b.WriteString("- " + escapeMarkdown(strings.TrimSpace(item)) + "\n")
			continue
		}
		if inList {
			b.WriteString("\n")
			inList = false
		}
		b.WriteString(escapeMarkdown(line) + "\n")
	}
	return b.String()
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "#", `\#`, "[", `\[`, "]", `\]`, "<", `\<`, ">", `\>`,
)

func escapeMarkdown(s string) string { return markdownEscaper.Replace(s) }

// RenderHTML produces a standalone HTML page used both for preview and as
// the PDF source.
func RenderHTML(l Letter) (string, error) {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(Markdown(l)), &body); err != nil {
		return "", fmt.Errorf("markdown convert: %w", err)
	}
	esc := html.EscapeString
	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html><head><meta charset=\"utf-8\"><title>Negotiation Letter Preview</title>")
	b.WriteString("<style>" + letterCSS + "</style></head><body>")
	b.WriteString("<div class=\"header\">")
	b.WriteString("<div class=\"date\"><strong>Date:</strong> " + esc(l.GeneratedAt.Format("January 02, 2006")) + "</div>")
	b.WriteString("<div class=\"recipient\"><strong>To:</strong> " + esc(l.Recipient) + "</div>")
	b.WriteString("<div class=\"policy\"><strong>Re:</strong> Policy #" + esc(l.PolicyNumber) + "</div>")
	b.WriteString("<div class=\"subject\"><strong>Subject:</strong> " + esc(l.Subject) + "</div>")
	b.WriteString("</div>")
	b.WriteString("<div class=\"body\">" + body.String() + "</div>")
	if len(l.LegalReferences) > 0 {
		b.WriteString("<div class=\"references\"><strong>References:</strong><ul>")
		for _, r := range l.LegalReferences {
			b.WriteString("<li>" + esc(r) + "</li>")
		}
		b.WriteString("</ul></div>")
	}
	b.WriteString("<div class=\"footer\">Generated on " + esc(l.GeneratedAt.Format("2006-01-02 15:04:05")) +
		" | Case ID: " + esc(l.CaseID) + "</div>")
	b.WriteString("</body></html>")
	return b.String(), nil
}
