package github_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	ghAdapter "github.com/ericfisherdev/rfdpanel/internal/adapter/driven/github"
	"github.com/ericfisherdev/rfdpanel/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient creates a Client backed by the given httptest handler.
func newTestClient(t *testing.T, handler http.Handler) *ghAdapter.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := ghAdapter.NewClientWithHTTPClient(server.Client(), server.URL+"/")
	require.NoError(t, err)

	return client
}

func TestFetchReviews(t *testing.T) {
	reviews := []map[string]any{
		{
			"id":           int64(1001),
			"state":        "APPROVED",
			"body":         "LGTM!",
			"commit_id":    "abc123",
			"html_url":     "https://github.com/owner/repo/pull/42#pullrequestreview-1001",
			"submitted_at": "2026-01-10T10:00:00Z",
			"user":         map[string]any{"login": "alice", "avatar_url": "https://avatars.example/alice"},
		},
		{
			"id":           int64(1002),
			"state":        "CHANGES_REQUESTED",
			"body":         "Please fix the error handling.",
			"commit_id":    "def456",
			"submitted_at": "2026-01-11T11:00:00Z",
			"user":         map[string]any{"login": "bob"},
		},
	}

	var gotPath string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(reviews)
	})

	client := newTestClient(t, handler)
	result, err := client.FetchReviews(context.Background(), "owner/repo", 42)

	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "/repos/owner/repo/pulls/42/reviews", gotPath)

	assert.Equal(t, int64(1001), result[0].ID)
	assert.Equal(t, "alice", result[0].Author)
	assert.Equal(t, "https://avatars.example/alice", result[0].AvatarURL)
	assert.Equal(t, model.ReviewStateApproved, result[0].State)
	assert.Equal(t, "LGTM!", result[0].Body)
	assert.Equal(t, "abc123", result[0].CommitID)
	assert.Contains(t, result[0].HTMLURL, "pullrequestreview-1001")
	assert.Equal(t, time.Date(2026, 1, 10, 10, 0, 0, 0, time.UTC), result[0].SubmittedAt.UTC())

	assert.Equal(t, int64(1002), result[1].ID)
	assert.Equal(t, "bob", result[1].Author)
	assert.Equal(t, model.ReviewStateChangesRequested, result[1].State)
}

func TestFetchReviewComments(t *testing.T) {
	comments := []map[string]any{
		{
			"id":                     int64(2001),
			"pull_request_review_id": int64(1001),
			"body":                   "This paragraph contradicts section 2.",
			"path":                   "rfd/0042/README.adoc",
			"line":                   42,
			"original_line":          40,
			"diff_hunk":              "@@ -38,7 +38,7 @@\n context line\n-old line\n+new line",
			"commit_id":              "abc123",
			"html_url":               "https://github.com/owner/repo/pull/42#discussion_r2001",
			"created_at":             "2026-01-10T10:00:00Z",
			"updated_at":             "2026-01-10T10:00:00Z",
			"user":                   map[string]any{"login": "alice"},
			"reactions":              map[string]any{"total_count": 3, "+1": 2, "heart": 1},
		},
		{
			"id":                     int64(2002),
			"pull_request_review_id": int64(1002),
			"body":                   "Good point, I agree.",
			"path":                   "rfd/0042/README.adoc",
			"line":                   nil,
			"original_line":          40,
			"in_reply_to_id":         int64(2001),
			"created_at":             "2026-01-10T11:00:00Z",
			"updated_at":             "2026-01-10T11:00:00Z",
			"user":                   map[string]any{"login": "bob"},
		},
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "created", r.URL.Query().Get("sort"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(comments)
	})

	client := newTestClient(t, handler)
	result, err := client.FetchReviewComments(context.Background(), "owner/repo", 42)

	require.NoError(t, err)
	require.Len(t, result, 2)

	root := result[0]
	assert.Equal(t, int64(2001), root.ID)
	require.NotNil(t, root.ReviewID)
	assert.Equal(t, int64(1001), *root.ReviewID)
	assert.Nil(t, root.InReplyToID, "root comment should have nil InReplyToID")
	require.NotNil(t, root.Line)
	assert.Equal(t, 42, *root.Line)
	require.NotNil(t, root.OriginalLine)
	assert.Equal(t, 40, *root.OriginalLine)
	assert.Equal(t, "rfd/0042/README.adoc", root.Path)
	assert.Contains(t, root.DiffHunk, "@@ -38,7 +38,7 @@")
	assert.Equal(t, 3, root.Reactions.TotalCount)
	assert.Equal(t, 2, root.Reactions.PlusOne)
	assert.Equal(t, 1, root.Reactions.Heart)
	assert.False(t, root.IsOutdated())

	reply := result[1]
	assert.Equal(t, "bob", reply.Author)
	require.NotNil(t, reply.InReplyToID, "reply should have non-nil InReplyToID")
	assert.Equal(t, int64(2001), *reply.InReplyToID)
	assert.Nil(t, reply.Line, "null line marks an outdated comment")
	assert.True(t, reply.IsOutdated())
	assert.Zero(t, reply.Reactions.TotalCount)
}

func TestFetchReviewComments_Pagination(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		w.Header().Set("Content-Type", "application/json")

		if page == "" || page == "1" {
			w.Header().Set("Link", fmt.Sprintf(`<%s?page=2>; rel="next"`, "http://"+r.Host+r.URL.Path))
			json.NewEncoder(w).Encode([]map[string]any{{"id": 1, "body": "page one"}})
			return
		}
		json.NewEncoder(w).Encode([]map[string]any{{"id": 2, "body": "page two", "in_reply_to_id": 1}})
	})

	client := newTestClient(t, handler)
	result, err := client.FetchReviewComments(context.Background(), "owner/repo", 7)

	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, int64(1), result[0].ID)
	assert.Equal(t, int64(2), result[1].ID)
	assert.Nil(t, result[0].ReviewID)
}

func TestFetchIssueComments(t *testing.T) {
	comments := []map[string]any{
		{
			"id":         int64(3001),
			"body":       "Great work on this RFD!",
			"html_url":   "https://github.com/owner/repo/pull/42#issuecomment-3001",
			"created_at": "2026-01-10T10:00:00Z",
			"updated_at": "2026-01-10T10:00:00Z",
			"user":       map[string]any{"login": "charlie"},
		},
	}

	var gotPath string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(comments)
	})

	client := newTestClient(t, handler)
	result, err := client.FetchIssueComments(context.Background(), "owner/repo", 42)

	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "/repos/owner/repo/issues/42/comments", gotPath)

	assert.Equal(t, int64(3001), result[0].ID)
	assert.Equal(t, "charlie", result[0].Author)
	assert.Equal(t, "Great work on this RFD!", result[0].Body)
	assert.False(t, result[0].CreatedAt.IsZero())
	assert.False(t, result[0].UpdatedAt.IsZero())
}

func TestFetch_InvalidRepoName(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for an invalid repo name")
	})
	client := newTestClient(t, handler)

	_, err := client.FetchReviews(context.Background(), "no-slash", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected owner/repo")
}

func TestFetch_APIError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Not Found"}`))
	})
	client := newTestClient(t, handler)

	_, err := client.FetchIssueComments(context.Background(), "owner/repo", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listing issue comments for owner/repo#1")
}
