package web

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdown_EmptyInput(t *testing.T) {
	assert.Equal(t, "", RenderMarkdown(""))
}

func TestRenderMarkdown_PlainText(t *testing.T) {
	result := RenderMarkdown("hello world")
	assert.Contains(t, result, "hello world")
}

func TestRenderMarkdown_Bold(t *testing.T) {
	result := RenderMarkdown("**bold text**")
	assert.Contains(t, result, "<strong>bold text</strong>")
}

func TestRenderMarkdown_InlineCode(t *testing.T) {
	result := RenderMarkdown("use `fmt.Println`")
	assert.Contains(t, result, "<code>fmt.Println</code>")
}

func TestRenderMarkdown_CodeBlock(t *testing.T) {
	input := "```go\nfmt.Println(\"hello\")\n```"
	result := RenderMarkdown(input)
	assert.Contains(t, result, "<code")
	assert.Contains(t, result, "fmt.Println")
}

func TestRenderMarkdown_Link(t *testing.T) {
	result := RenderMarkdown("[click](https://example.com)")
	assert.Contains(t, result, `<a href="https://example.com"`)
	assert.Contains(t, result, "click</a>")
}

func TestRenderMarkdown_SanitizesScript(t *testing.T) {
	result := RenderMarkdown(`<script>alert("xss")</script>`)
	assert.NotContains(t, result, "<script>")
}

func TestRenderMarkdown_GFMStrikethrough(t *testing.T) {
	result := RenderMarkdown("~~deleted~~")
	assert.Contains(t, result, "<del>deleted</del>")
}

func TestRenderMarkdown_GFMTaskList(t *testing.T) {
	result := RenderMarkdown("- [x] done\n- [ ] todo")
	assert.Contains(t, result, "<li>")
	assert.Contains(t, result, "done")
	assert.Contains(t, result, "todo")
}

func TestRenderDiffHunk_EmptyInput(t *testing.T) {
	assert.Equal(t, "", RenderDiffHunk(""))
}

func TestRenderDiffHunk_LineClasses(t *testing.T) {
	hunk := "@@ -1,3 +1,4 @@\n context line\n-removed line\n+added line\n trailing context"
	result := RenderDiffHunk(hunk)

	assert.Contains(t, result, `class="diff-header"`)
	assert.Contains(t, result, `class="diff-ctx"`)
	assert.Contains(t, result, `class="diff-add"`)
	assert.Contains(t, result, `class="diff-del"`)
	assert.Contains(t, result, `<span class="diff-ctx diff-target"> trailing context</span>`)
	assert.Equal(t, 1, strings.Count(result, "diff-target"))
}

func TestRenderDiffHunk_EscapesHTML(t *testing.T) {
	hunk := "+<script>alert('xss')</script>"
	result := RenderDiffHunk(hunk)

	assert.NotContains(t, result, "<script>")
	assert.Contains(t, result, "&lt;script&gt;")
	assert.Contains(t, result, `class="diff-add diff-target"`)
}

func TestRenderDiffHunk_MarksLastLineAsTarget(t *testing.T) {
	hunk := "@@ -1,2 +1,2 @@\n context\n+commented line\n"
	result := RenderDiffHunk(hunk)

	lines := strings.Split(result, "\n")
	assert.Len(t, lines, 3, "trailing newline does not add an empty line")
	assert.Equal(t, `<span class="diff-add diff-target">+commented line</span>`, lines[2])
	assert.NotContains(t, lines[1], "diff-target")
}

func TestRenderMarkdown_HardWraps(t *testing.T) {
	result := RenderMarkdown("first\nsecond")
	assert.Contains(t, result, "<br")
}

func TestRenderMarkdown_WhitespaceOnly(t *testing.T) {
	assert.Equal(t, "", RenderMarkdown("  \n "))
}

func TestSanitizeDocument_KeepsAnchorAttributes(t *testing.T) {
	doc := `<div class="sect1"><p id="rfd-line-1" data-lineno="12" onclick="x()">Hi</p><script>bad()</script></div>`
	result := SanitizeDocument(doc)

	assert.Contains(t, result, `id="rfd-line-1"`)
	assert.Contains(t, result, `data-lineno="12"`)
	assert.Contains(t, result, `class="sect1"`)
	assert.NotContains(t, result, "onclick")
	assert.NotContains(t, result, "<script>")
}

func TestSanitizeDocument_DropsNonNumericLine(t *testing.T) {
	result := SanitizeDocument(`<p data-lineno="abc">x</p>`)
	assert.False(t, strings.Contains(result, "data-lineno"))
}
