package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/rfdpanel/internal/domain/model"
)

// ErrSnapshotNotFound indicates no cached snapshot exists for a pull request.
var ErrSnapshotNotFound = errors.New("discussion snapshot not found")

// DiscussionStore defines the driven port for caching raw pull request
// discussion data between GitHub fetches.
type DiscussionStore interface {
	// ReplaceSnapshot atomically replaces every cached row for snapshot.PR.
	ReplaceSnapshot(ctx context.Context, snapshot model.DiscussionSnapshot) error
	// GetSnapshot returns ErrSnapshotNotFound if the PR has never been cached.
	GetSnapshot(ctx context.Context, pr model.PullRequestRef) (*model.DiscussionSnapshot, error)
	ListSnapshotKeys(ctx context.Context) ([]model.SnapshotKey, error)
	DeleteSnapshot(ctx context.Context, pr model.PullRequestRef) error
}
