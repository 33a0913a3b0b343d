package application

import (
	"context"
	"sync"

	"github.com/ericfisherdev/rfdpanel/internal/domain/model"
	"github.com/ericfisherdev/rfdpanel/internal/domain/port/driven"
)

// --- Mock implementations shared by the application tests ---

type mockRFDSource struct {
	rfds map[int]model.RFD
	list []model.RFDSummary
	err  error
}

func (m *mockRFDSource) FetchRFD(_ context.Context, number int) (*model.RFD, error) {
	if m.err != nil {
		return nil, m.err
	}
	rfd, ok := m.rfds[number]
	if !ok {
		return nil, driven.ErrRFDNotFound
	}
	return &rfd, nil
}

func (m *mockRFDSource) ListRFDs(_ context.Context) ([]model.RFDSummary, error) {
	return m.list, m.err
}

type mockGitHubClient struct {
	mu             sync.Mutex
	calls          int
	reviews        []model.Review
	reviewComments []model.ReviewComment
	issueComments  []model.IssueComment
	err            error
}

func (m *mockGitHubClient) FetchReviews(_ context.Context, _ string, _ int) ([]model.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.reviews, nil
}

func (m *mockGitHubClient) FetchReviewComments(_ context.Context, _ string, _ int) ([]model.ReviewComment, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.reviewComments, nil
}

func (m *mockGitHubClient) FetchIssueComments(_ context.Context, _ string, _ int) ([]model.IssueComment, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.issueComments, nil
}

func (m *mockGitHubClient) reviewCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type mockDiscussionStore struct {
	mu        sync.Mutex
	snapshots map[model.PullRequestRef]model.DiscussionSnapshot
	deleted   []model.PullRequestRef
}

func newMockDiscussionStore() *mockDiscussionStore {
	return &mockDiscussionStore{snapshots: make(map[model.PullRequestRef]model.DiscussionSnapshot)}
}

func (m *mockDiscussionStore) ReplaceSnapshot(_ context.Context, snapshot model.DiscussionSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[snapshot.PR] = snapshot
	return nil
}

func (m *mockDiscussionStore) GetSnapshot(_ context.Context, pr model.PullRequestRef) (*model.DiscussionSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.snapshots[pr]
	if !ok {
		return nil, driven.ErrSnapshotNotFound
	}
	return &s, nil
}

func (m *mockDiscussionStore) ListSnapshotKeys(_ context.Context) ([]model.SnapshotKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]model.SnapshotKey, 0, len(m.snapshots))
	for pr, s := range m.snapshots {
		keys = append(keys, model.SnapshotKey{PR: pr, FetchedAt: s.FetchedAt})
	}
	return keys, nil
}

func (m *mockDiscussionStore) DeleteSnapshot(_ context.Context, pr model.PullRequestRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snapshots, pr)
	m.deleted = append(m.deleted, pr)
	return nil
}

// --- Helper functions ---

func int64Ptr(v int64) *int64 {
	return &v
}

func intPtr(v int) *int {
	return &v
}
