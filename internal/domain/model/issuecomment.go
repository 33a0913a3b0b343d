package model

import "time"

// IssueComment represents a PR-level general comment (from the GitHub Issues API,
// not the Pull Requests review comments API). It is never attached to a diff line.
type IssueComment struct {
	ID        int64
	Author    string
	AvatarURL string
	Body      string
	HTMLURL   string
	Reactions Reactions
	CreatedAt time.Time
	UpdatedAt time.Time
}
