package model

import "time"

// CommentThread is a root review comment followed by its direct replies, in
// the order they were received.
type CommentThread struct {
	RootID   int64
	Comments []ReviewComment // Comments[0] is the root.
}

// Root returns the comment that started the thread.
func (t CommentThread) Root() ReviewComment {
	return t.Comments[0]
}

// Replies returns every comment after the root.
func (t CommentThread) Replies() []ReviewComment {
	return t.Comments[1:]
}

// Discussion is one entry of an RFD's discussion timeline. Kind selects which
// of Review/Threads or IssueComment is populated.
type Discussion struct {
	Kind      DiscussionKind
	CreatedAt time.Time

	// Set when Kind == DiscussionKindReview. Threads are keyed by RootID and
	// kept in first-seen order.
	Review  *Review
	Threads []CommentThread

	// Set when Kind == DiscussionKindIssueComment.
	IssueComment *IssueComment
}

// Thread returns the thread rooted at rootID, if this discussion holds it.
func (d Discussion) Thread(rootID int64) (CommentThread, bool) {
	for _, t := range d.Threads {
		if t.RootID == rootID {
			return t, true
		}
	}
	return CommentThread{}, false
}
