package web

import (
	"bytes"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

var (
	mdRenderer    goldmark.Markdown
	htmlSanitizer *bluemonday.Policy
	docSanitizer  *bluemonday.Policy
)

func init() {
	// GitHub comment bodies treat single newlines as line breaks.
	mdRenderer = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(gmhtml.WithUnsafe(), gmhtml.WithHardWraps()),
	)

	htmlSanitizer = bluemonday.UGCPolicy()

	docSanitizer = bluemonday.UGCPolicy()
	docSanitizer.AllowAttrs("data-lineno").Matching(bluemonday.Integer).Globally()
	docSanitizer.AllowAttrs("class").Globally()
}

// RenderMarkdown converts a GitHub comment or review body to sanitized HTML.
// Returns empty string for empty input.
func RenderMarkdown(src string) string {
	if strings.TrimSpace(src) == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(src), &buf); err != nil {
		return htmlSanitizer.Sanitize(src)
	}

	return htmlSanitizer.Sanitize(buf.String())
}

// SanitizeDocument cleans rendered RFD HTML while keeping the element ids,
// line attributes, and classes that anchoring and styling rely on.
func SanitizeDocument(doc string) string {
	return docSanitizer.Sanitize(doc)
}

// RenderDiffHunk converts the diff hunk of a review comment into HTML with
// line-level CSS classes:
//   - diff-add: added lines (prefix "+")
//   - diff-del: deleted lines (prefix "-")
//   - diff-header: hunk headers (prefix "@@")
//   - diff-ctx: context lines (no special prefix)
//
// GitHub cuts the hunk at the commented line, so the last line also gets
// diff-target.
func RenderDiffHunk(hunk string) string {
	hunk = strings.TrimRight(hunk, "\n")
	if hunk == "" {
		return ""
	}

	lines := strings.Split(hunk, "\n")
	var buf strings.Builder
	buf.Grow(len(hunk) * 2)

	for i, line := range lines {
		if i > 0 {
			buf.WriteByte('\n')
		}

		cssClass := classForDiffLine(line)
		if i == len(lines)-1 && cssClass != "diff-header" {
			cssClass += " diff-target"
		}

		buf.WriteString(`<span class="`)
		buf.WriteString(cssClass)
		buf.WriteString(`">`)
		buf.WriteString(html.EscapeString(line))
		buf.WriteString(`</span>`)
	}

	return buf.String()
}

func classForDiffLine(line string) string {
	if strings.HasPrefix(line, "@@") {
		return "diff-header"
	}
	if strings.HasPrefix(line, "+") {
		return "diff-add"
	}
	if strings.HasPrefix(line, "-") {
		return "diff-del"
	}
	return "diff-ctx"
}
