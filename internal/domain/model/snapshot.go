package model

import "time"

// DiscussionSnapshot is the raw review data of one pull request as fetched
// from GitHub at FetchedAt.
type DiscussionSnapshot struct {
	PR             PullRequestRef
	Reviews        []Review
	ReviewComments []ReviewComment
	IssueComments  []IssueComment
	FetchedAt      time.Time
}

// SnapshotKey identifies a cached snapshot without loading its contents.
type SnapshotKey struct {
	PR        PullRequestRef
	FetchedAt time.Time
}
