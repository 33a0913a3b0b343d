package web

import (
	"fmt"
	"strings"
	"time"

	"github.com/ericfisherdev/rfdpanel/internal/application"
	"github.com/ericfisherdev/rfdpanel/internal/domain/model"
)

const timeLayout = "Jan 2, 2006 15:04 MST"

// rfdIndexRow is one line of the RFD index page.
type rfdIndexRow struct {
	Label     string
	Title     string
	State     string
	UpdatedAt string
	Path      string
}

// rfdPageView holds presentation-ready data for the RFD discussion page.
type rfdPageView struct {
	Label        string
	Title        string
	State        string
	Authors      string
	DocumentHTML string // Sanitized, with thread markers injected.
	PRName       string
	PRURL        string
	Stale        bool
	FetchedAt    string
	Timeline     []timelineEntryView
	Outdated     []threadView
	Unanchored   []threadView
}

// timelineEntryView is one review or PR comment in the discussion sidebar.
type timelineEntryView struct {
	Kind      string
	Author    string
	AvatarURL string
	When      string
	State     string // Review state; empty for PR comments.
	BodyHTML  string
	URL       string
	Reactions int
	Threads   []threadView
}

// threadView is an inline comment thread with its anchoring outcome.
type threadView struct {
	DOMID     string
	Path      string
	Line      string
	Status    string
	AnchorRef string
	DiffHTML  string
	Comments  []commentView
}

type commentView struct {
	Author    string
	AvatarURL string
	When      string
	BodyHTML  string
	URL       string
	Reactions int
}

func toIndexRows(rfds []model.RFDSummary) []rfdIndexRow {
	rows := make([]rfdIndexRow, 0, len(rfds))
	for _, s := range rfds {
		rows = append(rows, rfdIndexRow{
			Label:     model.RFD{Number: s.Number}.Label(),
			Title:     s.Title,
			State:     string(s.State),
			UpdatedAt: formatWhen(s.UpdatedAt),
			Path:      fmt.Sprintf("/rfd/%d", s.Number),
		})
	}
	return rows
}

// toRFDPageView converts an assembled RFD discussion into the page view.
// Outdated and unanchored threads are additionally listed in their own
// groups; anchored threads get a marker on their document block.
func toRFDPageView(page *application.RFDDiscussion) (rfdPageView, error) {
	rfd := page.RFD
	view := rfdPageView{
		Label:   rfd.Label(),
		Title:   rfd.Title,
		State:   string(rfd.State),
		Authors: strings.Join(rfd.Authors, ", "),
		Stale:   page.Stale,
	}

	if page.PR != nil {
		view.PRName = page.PR.String()
		view.PRURL = fmt.Sprintf("https://github.com/%s/pull/%d", page.PR.RepoFullName, page.PR.Number)
		view.FetchedAt = formatWhen(page.FetchedAt)
	}

	anchors := make(map[int64]model.ThreadAnchor, len(page.Anchors))
	for _, a := range page.Anchors {
		anchors[a.ThreadRootID] = a
	}

	markers := make(map[string][]threadMarker)

	for _, d := range page.Discussions {
		switch d.Kind {
		case model.DiscussionKindReview:
			entry := reviewEntry(*d.Review)
			for _, t := range d.Threads {
				tv := toThreadView(t, anchors)
				switch anchors[t.RootID].Status {
				case model.AnchorStatusOutdated:
					view.Outdated = append(view.Outdated, tv)
					continue
				case model.AnchorStatusUnanchored:
					view.Unanchored = append(view.Unanchored, tv)
				case model.AnchorStatusAnchored:
					markers[tv.AnchorRef] = append(markers[tv.AnchorRef], threadMarker{
						ThreadDOMID: tv.DOMID,
						Comments:    len(t.Comments),
					})
				}
				entry.Threads = append(entry.Threads, tv)
			}
			view.Timeline = append(view.Timeline, entry)
		case model.DiscussionKindIssueComment:
			view.Timeline = append(view.Timeline, issueCommentEntry(*d.IssueComment))
		}
	}

	doc, err := injectMarkers(SanitizeDocument(rfd.HTML), markers)
	if err != nil {
		return rfdPageView{}, fmt.Errorf("placing thread markers: %w", err)
	}
	view.DocumentHTML = doc

	return view, nil
}

func reviewEntry(r model.Review) timelineEntryView {
	return timelineEntryView{
		Kind:      string(model.DiscussionKindReview),
		Author:    r.Author,
		AvatarURL: r.AvatarURL,
		When:      formatWhen(r.SubmittedAt),
		State:     reviewStateLabel(r.State),
		BodyHTML:  RenderMarkdown(r.Body),
		URL:       r.HTMLURL,
	}
}

func issueCommentEntry(c model.IssueComment) timelineEntryView {
	return timelineEntryView{
		Kind:      string(model.DiscussionKindIssueComment),
		Author:    c.Author,
		AvatarURL: c.AvatarURL,
		When:      formatWhen(c.CreatedAt),
		BodyHTML:  RenderMarkdown(c.Body),
		URL:       c.HTMLURL,
		Reactions: c.Reactions.TotalCount,
	}
}

func toThreadView(t model.CommentThread, anchors map[int64]model.ThreadAnchor) threadView {
	root := t.Root()
	anchor := anchors[t.RootID]

	tv := threadView{
		DOMID:     fmt.Sprintf("thread-%d", t.RootID),
		Path:      root.Path,
		Status:    string(anchor.Status),
		AnchorRef: anchor.Ref,
		DiffHTML:  RenderDiffHunk(root.DiffHunk),
		Comments:  make([]commentView, 0, len(t.Comments)),
	}

	switch {
	case root.Line != nil:
		tv.Line = fmt.Sprintf("line %d", *root.Line)
	case root.OriginalLine != nil:
		tv.Line = fmt.Sprintf("originally line %d", *root.OriginalLine)
	}

	for _, c := range t.Comments {
		tv.Comments = append(tv.Comments, commentView{
			Author:    c.Author,
			AvatarURL: c.AvatarURL,
			When:      formatWhen(c.CreatedAt),
			BodyHTML:  RenderMarkdown(c.Body),
			URL:       c.HTMLURL,
			Reactions: c.Reactions.TotalCount,
		})
	}

	return tv
}

func reviewStateLabel(s model.ReviewState) string {
	switch s {
	case model.ReviewStateApproved:
		return "approved"
	case model.ReviewStateChangesRequested:
		return "requested changes"
	case model.ReviewStateDismissed:
		return "review dismissed"
	case model.ReviewStatePending:
		return "pending review"
	default:
		return "reviewed"
	}
}

func formatWhen(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}
