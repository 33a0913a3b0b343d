package httphandler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/rfdpanel/internal/application"
	"github.com/ericfisherdev/rfdpanel/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the JSON body of the health endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

// RefreshResponse acknowledges a forced refresh.
type RefreshResponse struct {
	RFD    int    `json:"rfd"`
	Status string `json:"status"`
}

// RFDSummaryResponse is one entry of the RFD index.
type RFDSummaryResponse struct {
	Number    int    `json:"number"`
	Title     string `json:"title"`
	State     string `json:"state"`
	UpdatedAt string `json:"updated_at"`
}

// RFDResponse is the RFD header of a discussion page. HTML carries the
// generated anchor ids.
type RFDResponse struct {
	Number     int      `json:"number"`
	Label      string   `json:"label"`
	Title      string   `json:"title"`
	State      string   `json:"state"`
	Authors    []string `json:"authors"`
	SourcePath string   `json:"source_path"`
	CommitSHA  string   `json:"commit_sha"`
	HTML       string   `json:"html"`
	UpdatedAt  string   `json:"updated_at"`
}

// PullRequestResponse identifies the discussion pull request.
type PullRequestResponse struct {
	Repository string `json:"repository"`
	Number     int    `json:"number"`
}

// DiscussionPageResponse is the full discussion view of one RFD.
type DiscussionPageResponse struct {
	RFD         RFDResponse          `json:"rfd"`
	PullRequest *PullRequestResponse `json:"pull_request"`
	Stale       bool                 `json:"stale"`
	FetchedAt   string               `json:"fetched_at,omitempty"`
	Discussions []DiscussionResponse `json:"discussions"`
	Anchors     []AnchorResponse     `json:"anchors"`
}

// DiscussionResponse is one timeline entry. Exactly one of Review or
// IssueComment is set, according to Kind.
type DiscussionResponse struct {
	Kind         string                `json:"kind"`
	CreatedAt    string                `json:"created_at"`
	Review       *ReviewResponse       `json:"review,omitempty"`
	Threads      []ThreadResponse      `json:"threads,omitempty"`
	IssueComment *IssueCommentResponse `json:"issue_comment,omitempty"`
}

// ReviewResponse is the JSON representation of a single review.
type ReviewResponse struct {
	ID          int64  `json:"id"`
	Author      string `json:"author"`
	AvatarURL   string `json:"avatar_url"`
	State       string `json:"state"`
	Body        string `json:"body"`
	CommitID    string `json:"commit_id"`
	URL         string `json:"url"`
	SubmittedAt string `json:"submitted_at"`
}

// ThreadResponse is one inline comment thread, root first.
type ThreadResponse struct {
	RootID   int64                   `json:"root_id"`
	Comments []ReviewCommentResponse `json:"comments"`
}

// ReviewCommentResponse is the JSON representation of a single review comment.
type ReviewCommentResponse struct {
	ID           int64           `json:"id"`
	InReplyToID  *int64          `json:"in_reply_to_id"`
	Author       string          `json:"author"`
	AvatarURL    string          `json:"avatar_url"`
	Body         string          `json:"body"`
	Path         string          `json:"path"`
	Line         *int            `json:"line"`
	OriginalLine *int            `json:"original_line"`
	DiffHunk     string          `json:"diff_hunk"`
	URL          string          `json:"url"`
	Reactions    model.Reactions `json:"reactions"`
	CreatedAt    string          `json:"created_at"`
}

// IssueCommentResponse is the JSON representation of a PR-level comment.
type IssueCommentResponse struct {
	ID        int64           `json:"id"`
	Author    string          `json:"author"`
	AvatarURL string          `json:"avatar_url"`
	Body      string          `json:"body"`
	URL       string          `json:"url"`
	Reactions model.Reactions `json:"reactions"`
	CreatedAt string          `json:"created_at"`
}

// AnchorResponse places one thread against the rendered document.
type AnchorResponse struct {
	ThreadRootID int64  `json:"thread_root_id"`
	ReviewID     int64  `json:"review_id"`
	Status       string `json:"status"`
	TargetLine   int    `json:"target_line,omitempty"`
	Ref          string `json:"ref,omitempty"`
	AnchorLine   int    `json:"anchor_line,omitempty"`
}

// AnchorCandidateJSON is a line-tagged element as enumerated by a client.
type AnchorCandidateJSON struct {
	Ref  string        `json:"ref"`
	Line CandidateLine `json:"line"`
}

// CandidateLine is the raw line attribute of a candidate. Clients copy it
// from the DOM as a string, but numbers and null are accepted too; anything
// else decodes to "" and the candidate is skipped by the matcher.
type CandidateLine string

// UnmarshalJSON implements json.Unmarshaler.
func (l *CandidateLine) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}

	switch t := v.(type) {
	case string:
		*l = CandidateLine(t)
	case json.Number:
		*l = CandidateLine(t.String())
	default:
		*l = ""
	}
	return nil
}

// AnchorMatchRequest is the body of POST /api/v1/anchors/match.
type AnchorMatchRequest struct {
	Line       *int                  `json:"line"`
	Candidates []AnchorCandidateJSON `json:"candidates"`
}

// AnchorMatchResponse carries the chosen candidate, or null.
type AnchorMatchResponse struct {
	Match *AnchorCandidateJSON `json:"match"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func toRFDSummaryResponse(s model.RFDSummary) RFDSummaryResponse {
	return RFDSummaryResponse{
		Number:    s.Number,
		Title:     s.Title,
		State:     string(s.State),
		UpdatedAt: formatTime(s.UpdatedAt),
	}
}

// NewDiscussionPageResponse converts an assembled RFD discussion into its
// JSON representation.
func NewDiscussionPageResponse(page *application.RFDDiscussion) DiscussionPageResponse {
	rfd := page.RFD
	authors := rfd.Authors
	if authors == nil {
		authors = []string{}
	}

	resp := DiscussionPageResponse{
		RFD: RFDResponse{
			Number:     rfd.Number,
			Label:      rfd.Label(),
			Title:      rfd.Title,
			State:      string(rfd.State),
			Authors:    authors,
			SourcePath: rfd.SourcePath,
			CommitSHA:  rfd.CommitSHA,
			HTML:       rfd.HTML,
			UpdatedAt:  formatTime(rfd.UpdatedAt),
		},
		Stale:       page.Stale,
		FetchedAt:   formatTime(page.FetchedAt),
		Discussions: make([]DiscussionResponse, 0, len(page.Discussions)),
		Anchors:     make([]AnchorResponse, 0, len(page.Anchors)),
	}

	if page.PR != nil {
		resp.PullRequest = &PullRequestResponse{Repository: page.PR.RepoFullName, Number: page.PR.Number}
	}

	for _, d := range page.Discussions {
		resp.Discussions = append(resp.Discussions, toDiscussionResponse(d))
	}

	for _, a := range page.Anchors {
		resp.Anchors = append(resp.Anchors, AnchorResponse{
			ThreadRootID: a.ThreadRootID,
			ReviewID:     a.ReviewID,
			Status:       string(a.Status),
			TargetLine:   a.TargetLine,
			Ref:          a.Ref,
			AnchorLine:   a.AnchorLine,
		})
	}

	return resp
}

func toDiscussionResponse(d model.Discussion) DiscussionResponse {
	resp := DiscussionResponse{
		Kind:      string(d.Kind),
		CreatedAt: formatTime(d.CreatedAt),
	}

	switch d.Kind {
	case model.DiscussionKindReview:
		r := d.Review
		resp.Review = &ReviewResponse{
			ID:          r.ID,
			Author:      r.Author,
			AvatarURL:   r.AvatarURL,
			State:       string(r.State),
			Body:        r.Body,
			CommitID:    r.CommitID,
			URL:         r.HTMLURL,
			SubmittedAt: formatTime(r.SubmittedAt),
		}
		for _, t := range d.Threads {
			resp.Threads = append(resp.Threads, toThreadResponse(t))
		}
	case model.DiscussionKindIssueComment:
		c := d.IssueComment
		resp.IssueComment = &IssueCommentResponse{
			ID:        c.ID,
			Author:    c.Author,
			AvatarURL: c.AvatarURL,
			Body:      c.Body,
			URL:       c.HTMLURL,
			Reactions: c.Reactions,
			CreatedAt: formatTime(c.CreatedAt),
		}
	}

	return resp
}

func toThreadResponse(t model.CommentThread) ThreadResponse {
	resp := ThreadResponse{
		RootID:   t.RootID,
		Comments: make([]ReviewCommentResponse, 0, len(t.Comments)),
	}

	for _, c := range t.Comments {
		resp.Comments = append(resp.Comments, ReviewCommentResponse{
			ID:           c.ID,
			InReplyToID:  c.InReplyToID,
			Author:       c.Author,
			AvatarURL:    c.AvatarURL,
			Body:         c.Body,
			Path:         c.Path,
			Line:         c.Line,
			OriginalLine: c.OriginalLine,
			DiffHunk:     c.DiffHunk,
			URL:          c.HTMLURL,
			Reactions:    c.Reactions,
			CreatedAt:    formatTime(c.CreatedAt),
		})
	}

	return resp
}
