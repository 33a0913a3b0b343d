package model

// ReviewState represents the state of a review.
type ReviewState string

const (
	ReviewStateApproved         ReviewState = "approved"
	ReviewStateChangesRequested ReviewState = "changes_requested"
	ReviewStateCommented        ReviewState = "commented"
	ReviewStatePending          ReviewState = "pending"
	ReviewStateDismissed        ReviewState = "dismissed"
)

// RFDState represents the lifecycle state of an RFD.
type RFDState string

const (
	RFDStatePrediscussion RFDState = "prediscussion"
	RFDStateIdeation      RFDState = "ideation"
	RFDStateDiscussion    RFDState = "discussion"
	RFDStatePublished     RFDState = "published"
	RFDStateCommitted     RFDState = "committed"
	RFDStateAbandoned     RFDState = "abandoned"
)

// DiscussionKind distinguishes the variants of a Discussion.
type DiscussionKind string

const (
	DiscussionKindReview       DiscussionKind = "review"        // Review with its comment threads.
	DiscussionKindIssueComment DiscussionKind = "issue_comment" // Standalone PR-level comment.
)

// AnchorStatus describes how an inline thread relates to the rendered document.
type AnchorStatus string

const (
	AnchorStatusAnchored   AnchorStatus = "anchored"
	AnchorStatusOutdated   AnchorStatus = "outdated"   // Root comment has no current diff line.
	AnchorStatusUnanchored AnchorStatus = "unanchored" // No rendered block at or above the line.
)
