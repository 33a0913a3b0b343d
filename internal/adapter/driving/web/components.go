package web

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

// htmlWriter accumulates the first write error so components can emit
// markup without checking every call.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (hw *htmlWriter) raw(s string) {
	if hw.err == nil {
		_, hw.err = io.WriteString(hw.w, s)
	}
}

func (hw *htmlWriter) text(s string) {
	hw.raw(templ.EscapeString(s))
}

func (hw *htmlWriter) attr(name, val string) {
	hw.raw(" " + name + `="`)
	hw.text(val)
	hw.raw(`"`)
}

func (hw *htmlWriter) component(ctx context.Context, c templ.Component) {
	if hw.err == nil {
		hw.err = c.Render(ctx, hw.w)
	}
}

// Layout wraps body in the page shell.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		hw.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		hw.raw(`<title>`)
		hw.text(title)
		hw.raw(`</title><link rel="stylesheet" href="/static/style.css"></head><body>`)
		hw.raw(`<header class="site-header"><a href="/">RFDs</a></header><main>`)
		hw.component(ctx, body)
		hw.raw(`</main></body></html>`)
		return hw.err
	})
}

// IndexPage lists every RFD.
func IndexPage(rows []rfdIndexRow) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.raw(`<h1>Requests for Discussion</h1>`)
		if len(rows) == 0 {
			hw.raw(`<p class="empty">No RFDs yet.</p>`)
			return hw.err
		}

		hw.raw(`<table class="rfd-index"><thead><tr><th>RFD</th><th>Title</th><th>State</th><th>Updated</th></tr></thead><tbody>`)
		for _, r := range rows {
			hw.raw(`<tr><td><a`)
			hw.attr("href", r.Path)
			hw.raw(`>`)
			hw.text(r.Label)
			hw.raw(`</a></td><td>`)
			hw.text(r.Title)
			hw.raw(`</td><td><span`)
			hw.attr("class", "state state-"+r.State)
			hw.raw(`>`)
			hw.text(r.State)
			hw.raw(`</span></td><td>`)
			hw.text(r.UpdatedAt)
			hw.raw(`</td></tr>`)
		}
		hw.raw(`</tbody></table>`)
		return hw.err
	})
}

// RFDPage renders the document beside its discussion timeline.
func RFDPage(v rfdPageView) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}

		hw.raw(`<div class="rfd-page"><article class="rfd-document"><h1>`)
		hw.text(v.Label + ": " + v.Title)
		hw.raw(`</h1><p class="rfd-meta"><span`)
		hw.attr("class", "state state-"+v.State)
		hw.raw(`>`)
		hw.text(v.State)
		hw.raw(`</span>`)
		if v.Authors != "" {
			hw.raw(` by `)
			hw.text(v.Authors)
		}
		hw.raw(`</p>`)
		hw.raw(v.DocumentHTML)
		hw.raw(`</article><aside class="discussion">`)

		if v.PRName == "" {
			hw.raw(`<p class="empty">This RFD has no discussion yet.</p></aside></div>`)
			return hw.err
		}

		hw.raw(`<h2>Discussion <a`)
		hw.attr("href", v.PRURL)
		hw.raw(`>`)
		hw.text(v.PRName)
		hw.raw(`</a></h2>`)
		if v.Stale {
			hw.raw(`<p class="stale">GitHub is unreachable. Showing discussion as of `)
			hw.text(v.FetchedAt)
			hw.raw(`.</p>`)
		}

		if len(v.Timeline) == 0 {
			hw.raw(`<p class="empty">No comments yet.</p>`)
		}
		for _, e := range v.Timeline {
			writeTimelineEntry(hw, e)
		}

		writeThreadGroup(hw, "Not in this document", "unanchored", v.Unanchored)
		writeThreadGroup(hw, "Outdated", "outdated", v.Outdated)

		hw.raw(`</aside></div>`)
		return hw.err
	})
}

func writeTimelineEntry(hw *htmlWriter, e timelineEntryView) {
	hw.raw(`<section`)
	hw.attr("class", "entry entry-"+e.Kind)
	hw.raw(`><header>`)
	writeAuthor(hw, e.Author, e.AvatarURL)
	if e.State != "" {
		hw.raw(` <span class="review-state">`)
		hw.text(e.State)
		hw.raw(`</span>`)
	}
	writeWhen(hw, e.When, e.URL)
	hw.raw(`</header>`)
	if e.BodyHTML != "" {
		hw.raw(`<div class="body">`)
		hw.raw(e.BodyHTML)
		hw.raw(`</div>`)
	}
	writeReactions(hw, e.Reactions)
	for _, t := range e.Threads {
		writeThread(hw, t)
	}
	hw.raw(`</section>`)
}

func writeThreadGroup(hw *htmlWriter, title, class string, threads []threadView) {
	if len(threads) == 0 {
		return
	}
	hw.raw(`<section`)
	hw.attr("class", "thread-group "+class)
	hw.raw(`><h3>`)
	hw.text(title)
	hw.raw(` <span class="count">`)
	hw.text(strconv.Itoa(len(threads)))
	hw.raw(`</span></h3>`)
	for _, t := range threads {
		// Unanchored threads already render in the timeline; link to them.
		if t.Status == "unanchored" {
			hw.raw(`<p><a`)
			hw.attr("href", "#"+t.DOMID)
			hw.raw(`>`)
			hw.text(t.Path + " " + t.Line)
			hw.raw(`</a></p>`)
			continue
		}
		writeThread(hw, t)
	}
	hw.raw(`</section>`)
}

func writeThread(hw *htmlWriter, t threadView) {
	hw.raw(`<div`)
	hw.attr("class", "thread thread-"+t.Status)
	hw.attr("id", t.DOMID)
	hw.raw(`><p class="thread-location">`)
	if t.AnchorRef != "" {
		hw.raw(`<a`)
		hw.attr("href", "#"+t.AnchorRef)
		hw.raw(`>`)
		hw.text(t.Line)
		hw.raw(`</a>`)
	} else {
		hw.text(t.Line)
	}
	hw.raw(`</p>`)
	if t.DiffHTML != "" {
		hw.raw(`<pre class="diff-hunk">`)
		hw.raw(t.DiffHTML)
		hw.raw(`</pre>`)
	}
	for _, c := range t.Comments {
		hw.raw(`<div class="comment"><header>`)
		writeAuthor(hw, c.Author, c.AvatarURL)
		writeWhen(hw, c.When, c.URL)
		hw.raw(`</header><div class="body">`)
		hw.raw(c.BodyHTML)
		hw.raw(`</div>`)
		writeReactions(hw, c.Reactions)
		hw.raw(`</div>`)
	}
	hw.raw(`</div>`)
}

func writeAuthor(hw *htmlWriter, author, avatarURL string) {
	if avatarURL != "" {
		hw.raw(`<img class="avatar" width="20" height="20" alt=""`)
		hw.attr("src", string(templ.URL(avatarURL)))
		hw.raw(`>`)
	}
	hw.raw(`<strong>`)
	hw.text(author)
	hw.raw(`</strong>`)
}

func writeWhen(hw *htmlWriter, when, url string) {
	if when == "" {
		return
	}
	hw.raw(` <a class="when"`)
	hw.attr("href", string(templ.URL(url)))
	hw.raw(`>`)
	hw.text(when)
	hw.raw(`</a>`)
}

func writeReactions(hw *htmlWriter, n int) {
	if n == 0 {
		return
	}
	hw.raw(`<span class="reactions">`)
	hw.text(pluralize(n, "reaction"))
	hw.raw(`</span>`)
}
