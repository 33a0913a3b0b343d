package application

import (
	"slices"

	"github.com/ericfisherdev/rfdpanel/internal/domain/model"
)

// assembleStats counts the records dropped while assembling discussions.
type assembleStats struct {
	orphanReplies    int // Replies whose parent is not a thread root.
	unmatchedThreads int // Threads whose root names no known review.
}

// AssembleDiscussions turns raw review data into a chronological discussion
// timeline. Every review and every issue comment becomes one entry; comment
// threads are attached to the review their root comment belongs to.
// Replies to unknown parents and threads of unknown reviews are dropped.
// The result is sorted ascending by CreatedAt and ties keep input order.
func AssembleDiscussions(
	reviews []model.Review,
	comments []model.ReviewComment,
	issueComments []model.IssueComment,
) []model.Discussion {
	discussions, _ := assemble(reviews, comments, issueComments)
	return discussions
}

func assemble(
	reviews []model.Review,
	comments []model.ReviewComment,
	issueComments []model.IssueComment,
) ([]model.Discussion, assembleStats) {
	var stats assembleStats

	threads, orphans := groupIntoThreads(comments)
	stats.orphanReplies = orphans

	discussions := make([]model.Discussion, 0, len(reviews)+len(issueComments))
	byReviewID := make(map[int64]int, len(reviews))

	for _, r := range reviews {
		if _, seen := byReviewID[r.ID]; seen {
			continue
		}
		byReviewID[r.ID] = len(discussions)
		discussions = append(discussions, model.Discussion{
			Kind:      model.DiscussionKindReview,
			CreatedAt: r.SubmittedAt,
			Review:    &r,
		})
	}

	for _, t := range threads {
		root := t.Root()
		if root.ReviewID == nil {
			stats.unmatchedThreads++
			continue
		}

		idx, ok := byReviewID[*root.ReviewID]
		if !ok {
			stats.unmatchedThreads++
			continue
		}
		discussions[idx].Threads = append(discussions[idx].Threads, t)
	}

	for _, ic := range issueComments {
		discussions = append(discussions, model.Discussion{
			Kind:         model.DiscussionKindIssueComment,
			CreatedAt:    ic.CreatedAt,
			IssueComment: &ic,
		})
	}

	slices.SortStableFunc(discussions, func(a, b model.Discussion) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	return discussions, stats
}

// groupIntoThreads groups review comments into threads keyed by their root
// comment. Roots are collected first so a reply may appear before its parent
// in the input. Replies keep input order. It returns the threads in root
// order and the number of replies whose parent was not a known root.
func groupIntoThreads(comments []model.ReviewComment) ([]model.CommentThread, int) {
	if len(comments) == 0 {
		return nil, 0
	}

	byRootID := make(map[int64]int)
	var threads []model.CommentThread

	for _, c := range comments {
		if !c.IsRoot() {
			continue
		}
		if _, seen := byRootID[c.ID]; seen {
			continue
		}
		byRootID[c.ID] = len(threads)
		threads = append(threads, model.CommentThread{
			RootID:   c.ID,
			Comments: []model.ReviewComment{c},
		})
	}

	var orphans int
	for _, c := range comments {
		if c.IsRoot() {
			continue
		}

		idx, ok := byRootID[*c.InReplyToID]
		if !ok {
			orphans++
			continue
		}
		threads[idx].Comments = append(threads[idx].Comments, c)
	}

	return threads, orphans
}
