package application

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/rfdpanel/internal/domain/model"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestAssembleDiscussions_EndToEnd(t *testing.T) {
	reviews := []model.Review{
		{ID: 10, Author: "alice", SubmittedAt: day(1)},
	}
	comments := []model.ReviewComment{
		{ID: 1, ReviewID: int64Ptr(10), Line: intPtr(42), CreatedAt: day(1)},
		{ID: 2, InReplyToID: int64Ptr(1), CreatedAt: day(1).Add(time.Hour)},
	}
	issueComments := []model.IssueComment{
		{ID: 99, CreatedAt: time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)},
	}

	got := AssembleDiscussions(reviews, comments, issueComments)

	require.Len(t, got, 2)

	assert.Equal(t, model.DiscussionKindIssueComment, got[0].Kind)
	require.NotNil(t, got[0].IssueComment)
	assert.Equal(t, int64(99), got[0].IssueComment.ID)

	assert.Equal(t, model.DiscussionKindReview, got[1].Kind)
	require.NotNil(t, got[1].Review)
	assert.Equal(t, int64(10), got[1].Review.ID)
	assert.Equal(t, day(1), got[1].CreatedAt)
	require.Len(t, got[1].Threads, 1)
	assert.Equal(t, int64(1), got[1].Threads[0].RootID)
	require.Len(t, got[1].Threads[0].Comments, 2)
	assert.Equal(t, int64(1), got[1].Threads[0].Root().ID)
	assert.Equal(t, int64(2), got[1].Threads[0].Replies()[0].ID)
}

func TestAssembleDiscussions_Empty(t *testing.T) {
	assert.Empty(t, AssembleDiscussions(nil, nil, nil))
	assert.Empty(t, AssembleDiscussions([]model.Review{}, []model.ReviewComment{}, []model.IssueComment{}))
}

func TestAssembleDiscussions_SortedByCreatedAt(t *testing.T) {
	reviews := []model.Review{
		{ID: 1, SubmittedAt: day(5)},
		{ID: 2, SubmittedAt: day(2)},
		{ID: 3, SubmittedAt: day(9)},
	}
	issueComments := []model.IssueComment{
		{ID: 100, CreatedAt: day(7)},
		{ID: 101, CreatedAt: day(1)},
		{ID: 102, CreatedAt: day(3)},
	}

	got := AssembleDiscussions(reviews, nil, issueComments)

	require.Len(t, got, 6)
	for i := 1; i < len(got); i++ {
		assert.False(t, got[i].CreatedAt.Before(got[i-1].CreatedAt),
			"entry %d (%s) sorts before entry %d (%s)", i, got[i].CreatedAt, i-1, got[i-1].CreatedAt)
	}
}

func TestAssembleDiscussions_TiesKeepReviewsFirst(t *testing.T) {
	reviews := []model.Review{{ID: 1, SubmittedAt: day(4)}}
	issueComments := []model.IssueComment{{ID: 2, CreatedAt: day(4)}}

	got := AssembleDiscussions(reviews, nil, issueComments)

	require.Len(t, got, 2)
	assert.Equal(t, model.DiscussionKindReview, got[0].Kind)
	assert.Equal(t, model.DiscussionKindIssueComment, got[1].Kind)
}

func TestAssembleDiscussions_ReplyBeforeParent(t *testing.T) {
	reviews := []model.Review{{ID: 10, SubmittedAt: day(1)}}
	comments := []model.ReviewComment{
		{ID: 2, InReplyToID: int64Ptr(1)},
		{ID: 1, ReviewID: int64Ptr(10)},
		{ID: 3, InReplyToID: int64Ptr(1)},
	}

	got := AssembleDiscussions(reviews, comments, nil)

	require.Len(t, got, 1)
	require.Len(t, got[0].Threads, 1)
	ids := make([]int64, 0, 3)
	for _, c := range got[0].Threads[0].Comments {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []int64{1, 2, 3}, ids, "root first, replies in input order")
}

func TestAssembleDiscussions_OrphanReplyDropped(t *testing.T) {
	reviews := []model.Review{{ID: 10, SubmittedAt: day(1)}}
	comments := []model.ReviewComment{
		{ID: 1, ReviewID: int64Ptr(10)},
		{ID: 5, InReplyToID: int64Ptr(999)},
	}

	got, stats := assemble(reviews, comments, nil)

	require.Len(t, got, 1)
	require.Len(t, got[0].Threads, 1)
	assert.Len(t, got[0].Threads[0].Comments, 1)
	assert.Equal(t, 1, stats.orphanReplies)
}

func TestAssembleDiscussions_ReplyToReplyDropped(t *testing.T) {
	reviews := []model.Review{{ID: 10, SubmittedAt: day(1)}}
	comments := []model.ReviewComment{
		{ID: 1, ReviewID: int64Ptr(10)},
		{ID: 2, InReplyToID: int64Ptr(1)},
		{ID: 3, InReplyToID: int64Ptr(2)},
	}

	got, stats := assemble(reviews, comments, nil)

	require.Len(t, got[0].Threads, 1)
	assert.Len(t, got[0].Threads[0].Comments, 2)
	assert.Equal(t, 1, stats.orphanReplies)
}

func TestAssembleDiscussions_UnmatchedReviewDropsThread(t *testing.T) {
	reviews := []model.Review{{ID: 10, SubmittedAt: day(1)}}
	comments := []model.ReviewComment{
		{ID: 1, ReviewID: int64Ptr(10)},
		{ID: 2, ReviewID: int64Ptr(77)},
		{ID: 3, InReplyToID: int64Ptr(2)},
		{ID: 4},
	}

	got, stats := assemble(reviews, comments, nil)

	require.Len(t, got, 1)
	require.Len(t, got[0].Threads, 1)
	assert.Equal(t, int64(1), got[0].Threads[0].RootID)
	assert.Equal(t, 2, stats.unmatchedThreads, "unknown review id and missing review id")
}

func TestAssembleDiscussions_ReviewWithoutThreads(t *testing.T) {
	reviews := []model.Review{{ID: 10, SubmittedAt: day(1)}}

	got := AssembleDiscussions(reviews, nil, nil)

	require.Len(t, got, 1)
	assert.Equal(t, model.DiscussionKindReview, got[0].Kind)
	assert.Empty(t, got[0].Threads)
	assert.Empty(t, got[0].Review.Body)
}

func TestAssembleDiscussions_MultipleThreadsPerReview(t *testing.T) {
	reviews := []model.Review{{ID: 10, SubmittedAt: day(1)}}
	comments := []model.ReviewComment{
		{ID: 1, ReviewID: int64Ptr(10), Line: intPtr(3)},
		{ID: 2, ReviewID: int64Ptr(10), Line: intPtr(8)},
		{ID: 3, InReplyToID: int64Ptr(2)},
		{ID: 4, ReviewID: int64Ptr(10), Line: intPtr(20)},
	}

	got := AssembleDiscussions(reviews, comments, nil)

	require.Len(t, got, 1)
	require.Len(t, got[0].Threads, 3)

	for _, rootID := range []int64{1, 2, 4} {
		thread, ok := got[0].Thread(rootID)
		require.True(t, ok, "thread %d kept", rootID)
		assert.Equal(t, rootID, thread.Root().ID)
	}

	thread, _ := got[0].Thread(2)
	assert.Len(t, thread.Replies(), 1)

	_, ok := got[0].Thread(3)
	assert.False(t, ok, "replies are not thread keys")
}

func TestAssembleDiscussions_EveryRootWithKnownReviewKept(t *testing.T) {
	reviews := []model.Review{
		{ID: 10, SubmittedAt: day(1)},
		{ID: 11, SubmittedAt: day(2)},
	}
	var comments []model.ReviewComment
	for i := int64(1); i <= 20; i++ {
		reviewID := int64(10 + i%2)
		comments = append(comments, model.ReviewComment{ID: i, ReviewID: &reviewID})
	}

	got := AssembleDiscussions(reviews, comments, nil)

	seen := make(map[int64]int)
	for _, d := range got {
		for _, th := range d.Threads {
			seen[th.RootID]++
		}
	}
	assert.Len(t, seen, 20)
	for id, n := range seen {
		assert.Equal(t, 1, n, "root %d appears once", id)
	}
}

func TestAssembleDiscussions_EveryIssueCommentOnce(t *testing.T) {
	issueComments := []model.IssueComment{
		{ID: 1, CreatedAt: day(3)},
		{ID: 2, CreatedAt: day(1)},
		{ID: 3, CreatedAt: day(2)},
	}

	got := AssembleDiscussions(nil, nil, issueComments)

	require.Len(t, got, 3)
	seen := make(map[int64]bool)
	for _, d := range got {
		require.Equal(t, model.DiscussionKindIssueComment, d.Kind)
		assert.False(t, seen[d.IssueComment.ID])
		seen[d.IssueComment.ID] = true
	}
	assert.Len(t, seen, 3)
}

func TestAssembleDiscussions_Idempotent(t *testing.T) {
	reviews := []model.Review{{ID: 10, SubmittedAt: day(2)}, {ID: 11, SubmittedAt: day(4)}}
	comments := []model.ReviewComment{
		{ID: 1, ReviewID: int64Ptr(10), Line: intPtr(4)},
		{ID: 2, InReplyToID: int64Ptr(1)},
		{ID: 3, ReviewID: int64Ptr(11)},
	}
	issueComments := []model.IssueComment{{ID: 50, CreatedAt: day(3)}}

	first := AssembleDiscussions(reviews, comments, issueComments)
	second := AssembleDiscussions(reviews, comments, issueComments)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("assemble not idempotent (-first +second):\n%s", diff)
	}
}

func TestGroupIntoThreads_DuplicateRootKeptOnce(t *testing.T) {
	comments := []model.ReviewComment{
		{ID: 1, Body: "first"},
		{ID: 1, Body: "again"},
	}

	threads, orphans := groupIntoThreads(comments)

	require.Len(t, threads, 1)
	assert.Equal(t, "first", threads[0].Root().Body)
	assert.Zero(t, orphans)
}
