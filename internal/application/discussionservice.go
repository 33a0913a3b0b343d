package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ericfisherdev/rfdpanel/internal/domain/model"
	"github.com/ericfisherdev/rfdpanel/internal/domain/port/driven"
)

// RFDDiscussion is the complete view of an RFD page: the document with
// anchor ids assigned, its chronological discussion, and where each inline
// thread attaches to the document.
type RFDDiscussion struct {
	RFD         model.RFD
	PR          *model.PullRequestRef // nil when the RFD has no discussion PR.
	Discussions []model.Discussion
	Anchors     []model.ThreadAnchor
	FetchedAt   time.Time
	Stale       bool // GitHub was unreachable and an expired snapshot was served.
}

// DiscussionService loads RFDs and their GitHub discussions, caching raw
// review data in the DiscussionStore for cacheTTL.
type DiscussionService struct {
	rfdSource driven.RFDSource
	ghClient  driven.GitHubClient
	store     driven.DiscussionStore
	cacheTTL  time.Duration
	now       func() time.Time
}

// NewDiscussionService creates a new DiscussionService with the required dependencies.
func NewDiscussionService(
	rfdSource driven.RFDSource,
	ghClient driven.GitHubClient,
	store driven.DiscussionStore,
	cacheTTL time.Duration,
) *DiscussionService {
	return &DiscussionService{
		rfdSource: rfdSource,
		ghClient:  ghClient,
		store:     store,
		cacheTTL:  cacheTTL,
		now:       time.Now,
	}
}

// ListRFDs returns the RFD index from the content API.
func (s *DiscussionService) ListRFDs(ctx context.Context) ([]model.RFDSummary, error) {
	rfds, err := s.rfdSource.ListRFDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing rfds: %w", err)
	}
	return rfds, nil
}

// GetRFDDiscussion assembles the discussion view for one RFD. The GitHub data
// comes from cache while it is younger than the cache TTL. If a refresh fails
// and an expired snapshot exists, that snapshot is served and marked stale.
func (s *DiscussionService) GetRFDDiscussion(ctx context.Context, number int) (*RFDDiscussion, error) {
	rfd, err := s.rfdSource.FetchRFD(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("fetching rfd %d: %w", number, err)
	}

	annotated, candidates, err := AnnotateAnchors(rfd.HTML)
	if err != nil {
		return nil, fmt.Errorf("annotating rfd %d: %w", number, err)
	}
	rfd.HTML = annotated

	result := &RFDDiscussion{RFD: *rfd}

	pr, ok := ParseDiscussionURL(rfd.DiscussionURL)
	if !ok {
		slog.Debug("rfd has no discussion pull request",
			"rfd", number,
			"discussion_url", rfd.DiscussionURL,
		)
		return result, nil
	}
	result.PR = &pr

	snapshot, stale, err := s.loadSnapshot(ctx, pr)
	if err != nil {
		return nil, err
	}

	discussions, stats := assemble(snapshot.Reviews, snapshot.ReviewComments, snapshot.IssueComments)
	if stats.orphanReplies > 0 || stats.unmatchedThreads > 0 {
		slog.Debug("dropped unresolvable review comments",
			"pr", pr.String(),
			"orphan_replies", stats.orphanReplies,
			"unmatched_threads", stats.unmatchedThreads,
		)
	}

	idx := NewAnchorIndex(candidates)

	result.Discussions = discussions
	result.Anchors = AnchorThreads(idx, discussions, rfd.SourcePath)
	result.FetchedAt = snapshot.FetchedAt
	result.Stale = stale

	slog.Debug("rfd discussion assembled",
		"rfd", number,
		"pr", pr.String(),
		"discussions", len(discussions),
		"anchor_candidates", idx.Len(),
		"anchors", len(result.Anchors),
		"stale", stale,
	)

	return result, nil
}

// RefreshRFD re-fetches the GitHub discussion of an RFD into the cache,
// regardless of its age. RFDs without a discussion PR are a no-op.
func (s *DiscussionService) RefreshRFD(ctx context.Context, number int) error {
	pr, ok, err := s.resolvePR(ctx, number)
	if err != nil || !ok {
		return err
	}

	_, err = s.RefreshPR(ctx, pr)
	return err
}

// Invalidate drops the cached discussion of an RFD so the next view fetches
// it from GitHub.
func (s *DiscussionService) Invalidate(ctx context.Context, number int) error {
	pr, ok, err := s.resolvePR(ctx, number)
	if err != nil || !ok {
		return err
	}

	if err := s.store.DeleteSnapshot(ctx, pr); err != nil {
		return fmt.Errorf("invalidating snapshot for %s: %w", pr, err)
	}
	return nil
}

// RefreshPR fetches reviews, review comments, and issue comments of a pull
// request concurrently and replaces its cached snapshot.
func (s *DiscussionService) RefreshPR(ctx context.Context, pr model.PullRequestRef) (*model.DiscussionSnapshot, error) {
	start := time.Now()
	snapshot := model.DiscussionSnapshot{PR: pr}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		reviews, err := s.ghClient.FetchReviews(gctx, pr.RepoFullName, pr.Number)
		snapshot.Reviews = reviews
		return err
	})
	g.Go(func() error {
		comments, err := s.ghClient.FetchReviewComments(gctx, pr.RepoFullName, pr.Number)
		snapshot.ReviewComments = comments
		return err
	})
	g.Go(func() error {
		comments, err := s.ghClient.FetchIssueComments(gctx, pr.RepoFullName, pr.Number)
		snapshot.IssueComments = comments
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetching discussion for %s: %w", pr, err)
	}

	snapshot.FetchedAt = s.now().UTC()

	if err := s.store.ReplaceSnapshot(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("caching discussion for %s: %w", pr, err)
	}

	slog.Info("discussion refreshed",
		"pr", pr.String(),
		"reviews", len(snapshot.Reviews),
		"review_comments", len(snapshot.ReviewComments),
		"issue_comments", len(snapshot.IssueComments),
		"duration", time.Since(start).Round(time.Millisecond),
	)

	return &snapshot, nil
}

// loadSnapshot returns a fresh cached snapshot, or refreshes it. The bool
// result reports that an expired snapshot was served because the refresh failed.
func (s *DiscussionService) loadSnapshot(ctx context.Context, pr model.PullRequestRef) (*model.DiscussionSnapshot, bool, error) {
	cached, err := s.store.GetSnapshot(ctx, pr)
	if err != nil && !errors.Is(err, driven.ErrSnapshotNotFound) {
		return nil, false, fmt.Errorf("loading cached discussion for %s: %w", pr, err)
	}

	if cached != nil && s.now().Sub(cached.FetchedAt) < s.cacheTTL {
		return cached, false, nil
	}

	fresh, err := s.RefreshPR(ctx, pr)
	if err != nil {
		if cached == nil {
			return nil, false, err
		}
		slog.Warn("serving stale discussion",
			"pr", pr.String(),
			"fetched_at", cached.FetchedAt,
			"error", err,
		)
		return cached, true, nil
	}

	return fresh, false, nil
}

func (s *DiscussionService) resolvePR(ctx context.Context, number int) (model.PullRequestRef, bool, error) {
	rfd, err := s.rfdSource.FetchRFD(ctx, number)
	if err != nil {
		return model.PullRequestRef{}, false, fmt.Errorf("fetching rfd %d: %w", number, err)
	}

	pr, ok := ParseDiscussionURL(rfd.DiscussionURL)
	return pr, ok, nil
}
