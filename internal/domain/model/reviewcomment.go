package model

import "time"

// ReviewComment represents an inline comment left on a specific line of a
// pull request diff.
type ReviewComment struct {
	ID           int64
	ReviewID     *int64 // pull_request_review_id; nil when not attached to a review.
	InReplyToID  *int64 // nil for thread roots.
	Author       string
	AvatarURL    string
	Body         string
	Path         string
	Line         *int // nil when the anchored diff region no longer exists.
	OriginalLine *int
	DiffHunk     string
	CommitID     string
	HTMLURL      string
	Reactions    Reactions
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsRoot reports whether the comment starts its own thread.
func (c ReviewComment) IsRoot() bool {
	return c.InReplyToID == nil
}

// IsOutdated reports whether the comment's diff anchor has disappeared.
func (c ReviewComment) IsOutdated() bool {
	return c.Line == nil
}

// Reactions holds the emoji reaction counts on a comment.
type Reactions struct {
	TotalCount int `json:"total_count"`
	PlusOne    int `json:"+1"`
	MinusOne   int `json:"-1"`
	Laugh      int `json:"laugh"`
	Confused   int `json:"confused"`
	Heart      int `json:"heart"`
	Hooray     int `json:"hooray"`
	Rocket     int `json:"rocket"`
	Eyes       int `json:"eyes"`
}
