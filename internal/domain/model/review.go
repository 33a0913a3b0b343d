package model

import "time"

// Review represents a top-level review action submitted on a pull request.
type Review struct {
	ID          int64
	Author      string
	AvatarURL   string
	State       ReviewState
	Body        string
	CommitID    string
	HTMLURL     string
	SubmittedAt time.Time // Zero for pending reviews.
}
