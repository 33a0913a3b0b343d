package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ericfisherdev/rfdpanel/internal/domain/model"
	"github.com/ericfisherdev/rfdpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.DiscussionStore = (*DiscussionRepo)(nil)

// timeLayout is fixed-width so lexical ORDER BY on the TEXT columns matches
// chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// DiscussionRepo is the SQLite implementation of the DiscussionStore port.
type DiscussionRepo struct {
	db *DB
}

// NewDiscussionRepo creates a new DiscussionRepo backed by the given DB.
func NewDiscussionRepo(db *DB) *DiscussionRepo {
	return &DiscussionRepo{db: db}
}

// ReplaceSnapshot deletes every cached row for snapshot.PR and inserts the
// snapshot's contents in a single transaction.
func (r *DiscussionRepo) ReplaceSnapshot(ctx context.Context, snapshot model.DiscussionSnapshot) (err error) {
	pr := snapshot.PR

	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot tx for %s: %w", pr, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Child rows go with the snapshot row via ON DELETE CASCADE.
	const deleteSnapshot = `DELETE FROM snapshots WHERE repo_full_name = ? AND pr_number = ?`
	if _, err = tx.ExecContext(ctx, deleteSnapshot, pr.RepoFullName, pr.Number); err != nil {
		return fmt.Errorf("clear snapshot %s: %w", pr, err)
	}

	const insertSnapshot = `INSERT INTO snapshots (repo_full_name, pr_number, fetched_at) VALUES (?, ?, ?)`
	if _, err = tx.ExecContext(ctx, insertSnapshot, pr.RepoFullName, pr.Number, formatTime(snapshot.FetchedAt)); err != nil {
		return fmt.Errorf("insert snapshot %s: %w", pr, err)
	}

	if err = insertReviews(ctx, tx, pr, snapshot.Reviews); err != nil {
		return err
	}
	if err = insertReviewComments(ctx, tx, pr, snapshot.ReviewComments); err != nil {
		return err
	}
	if err = insertIssueComments(ctx, tx, pr, snapshot.IssueComments); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot %s: %w", pr, err)
	}

	return nil
}

// GetSnapshot loads the cached snapshot for pr. Returns driven.ErrSnapshotNotFound
// if the PR has never been cached.
func (r *DiscussionRepo) GetSnapshot(ctx context.Context, pr model.PullRequestRef) (*model.DiscussionSnapshot, error) {
	const query = `SELECT fetched_at FROM snapshots WHERE repo_full_name = ? AND pr_number = ?`

	var fetchedAt string
	err := r.db.Reader.QueryRowContext(ctx, query, pr.RepoFullName, pr.Number).Scan(&fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, driven.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot %s: %w", pr, err)
	}

	snapshot := &model.DiscussionSnapshot{PR: pr}
	snapshot.FetchedAt, err = parseTime(fetchedAt)
	if err != nil {
		return nil, fmt.Errorf("parse fetched_at: %w", err)
	}

	if snapshot.Reviews, err = r.getReviews(ctx, pr); err != nil {
		return nil, err
	}
	if snapshot.ReviewComments, err = r.getReviewComments(ctx, pr); err != nil {
		return nil, err
	}
	if snapshot.IssueComments, err = r.getIssueComments(ctx, pr); err != nil {
		return nil, err
	}

	return snapshot, nil
}

// ListSnapshotKeys returns every cached PR with its fetch time, oldest first.
func (r *DiscussionRepo) ListSnapshotKeys(ctx context.Context) ([]model.SnapshotKey, error) {
	const query = `
		SELECT repo_full_name, pr_number, fetched_at
		FROM snapshots
		ORDER BY fetched_at, repo_full_name, pr_number
	`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list snapshot keys: %w", err)
	}
	defer rows.Close()

	var keys []model.SnapshotKey
	for rows.Next() {
		var key model.SnapshotKey
		var fetchedAt string
		if err := rows.Scan(&key.PR.RepoFullName, &key.PR.Number, &fetchedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot key: %w", err)
		}
		if key.FetchedAt, err = parseTime(fetchedAt); err != nil {
			return nil, fmt.Errorf("parse fetched_at: %w", err)
		}
		keys = append(keys, key)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot keys: %w", err)
	}

	return keys, nil
}

// DeleteSnapshot removes the snapshot and all of its rows. Deleting an
// uncached PR is not an error.
func (r *DiscussionRepo) DeleteSnapshot(ctx context.Context, pr model.PullRequestRef) error {
	const query = `DELETE FROM snapshots WHERE repo_full_name = ? AND pr_number = ?`

	if _, err := r.db.Writer.ExecContext(ctx, query, pr.RepoFullName, pr.Number); err != nil {
		return fmt.Errorf("delete snapshot %s: %w", pr, err)
	}

	return nil
}

func insertReviews(ctx context.Context, tx *sql.Tx, pr model.PullRequestRef, reviews []model.Review) error {
	const query = `
		INSERT OR REPLACE INTO reviews (
			repo_full_name, pr_number, id, author, avatar_url, state,
			body, commit_id, html_url, submitted_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	for _, review := range reviews {
		_, err := tx.ExecContext(ctx, query,
			pr.RepoFullName, pr.Number, review.ID, review.Author, review.AvatarURL,
			string(review.State), review.Body, review.CommitID, review.HTMLURL,
			formatTime(review.SubmittedAt),
		)
		if err != nil {
			return fmt.Errorf("insert review %d: %w", review.ID, err)
		}
	}

	return nil
}

func insertReviewComments(ctx context.Context, tx *sql.Tx, pr model.PullRequestRef, comments []model.ReviewComment) error {
	const query = `
		INSERT OR REPLACE INTO review_comments (
			repo_full_name, pr_number, id, review_id, in_reply_to_id, author,
			avatar_url, body, path, line, original_line, diff_hunk, commit_id,
			html_url, reactions, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	for _, comment := range comments {
		reactions, err := json.Marshal(comment.Reactions)
		if err != nil {
			return fmt.Errorf("encode reactions for review comment %d: %w", comment.ID, err)
		}

		_, err = tx.ExecContext(ctx, query,
			pr.RepoFullName, pr.Number, comment.ID,
			nullInt64(comment.ReviewID), nullInt64(comment.InReplyToID),
			comment.Author, comment.AvatarURL, comment.Body, comment.Path,
			nullInt(comment.Line), nullInt(comment.OriginalLine),
			comment.DiffHunk, comment.CommitID, comment.HTMLURL, string(reactions),
			formatTime(comment.CreatedAt), formatTime(comment.UpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("insert review comment %d: %w", comment.ID, err)
		}
	}

	return nil
}

func insertIssueComments(ctx context.Context, tx *sql.Tx, pr model.PullRequestRef, comments []model.IssueComment) error {
	const query = `
		INSERT OR REPLACE INTO issue_comments (
			repo_full_name, pr_number, id, author, avatar_url, body,
			html_url, reactions, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	for _, comment := range comments {
		reactions, err := json.Marshal(comment.Reactions)
		if err != nil {
			return fmt.Errorf("encode reactions for issue comment %d: %w", comment.ID, err)
		}

		_, err = tx.ExecContext(ctx, query,
			pr.RepoFullName, pr.Number, comment.ID, comment.Author, comment.AvatarURL,
			comment.Body, comment.HTMLURL, string(reactions),
			formatTime(comment.CreatedAt), formatTime(comment.UpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("insert issue comment %d: %w", comment.ID, err)
		}
	}

	return nil
}

func (r *DiscussionRepo) getReviews(ctx context.Context, pr model.PullRequestRef) ([]model.Review, error) {
	const query = `
		SELECT id, author, avatar_url, state, body, commit_id, html_url, submitted_at
		FROM reviews
		WHERE repo_full_name = ? AND pr_number = ?
		ORDER BY submitted_at, id
	`

	rows, err := r.db.Reader.QueryContext(ctx, query, pr.RepoFullName, pr.Number)
	if err != nil {
		return nil, fmt.Errorf("query reviews for %s: %w", pr, err)
	}
	defer rows.Close()

	var reviews []model.Review
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, *review)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviews: %w", err)
	}

	return reviews, nil
}

func (r *DiscussionRepo) getReviewComments(ctx context.Context, pr model.PullRequestRef) ([]model.ReviewComment, error) {
	const query = `
		SELECT id, review_id, in_reply_to_id, author, avatar_url, body, path,
		       line, original_line, diff_hunk, commit_id, html_url, reactions,
		       created_at, updated_at
		FROM review_comments
		WHERE repo_full_name = ? AND pr_number = ?
		ORDER BY created_at, id
	`

	rows, err := r.db.Reader.QueryContext(ctx, query, pr.RepoFullName, pr.Number)
	if err != nil {
		return nil, fmt.Errorf("query review comments for %s: %w", pr, err)
	}
	defer rows.Close()

	var comments []model.ReviewComment
	for rows.Next() {
		comment, err := scanReviewComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review comment: %w", err)
		}
		comments = append(comments, *comment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review comments: %w", err)
	}

	return comments, nil
}

func (r *DiscussionRepo) getIssueComments(ctx context.Context, pr model.PullRequestRef) ([]model.IssueComment, error) {
	const query = `
		SELECT id, author, avatar_url, body, html_url, reactions, created_at, updated_at
		FROM issue_comments
		WHERE repo_full_name = ? AND pr_number = ?
		ORDER BY created_at, id
	`

	rows, err := r.db.Reader.QueryContext(ctx, query, pr.RepoFullName, pr.Number)
	if err != nil {
		return nil, fmt.Errorf("query issue comments for %s: %w", pr, err)
	}
	defer rows.Close()

	var comments []model.IssueComment
	for rows.Next() {
		comment, err := scanIssueComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan issue comment: %w", err)
		}
		comments = append(comments, *comment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate issue comments: %w", err)
	}

	return comments, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReview(s scanner) (*model.Review, error) {
	var review model.Review
	var state, submittedAt string

	err := s.Scan(
		&review.ID, &review.Author, &review.AvatarURL, &state,
		&review.Body, &review.CommitID, &review.HTMLURL, &submittedAt,
	)
	if err != nil {
		return nil, err
	}

	review.State = model.ReviewState(state)

	review.SubmittedAt, err = parseTime(submittedAt)
	if err != nil {
		return nil, fmt.Errorf("parse submitted_at: %w", err)
	}

	return &review, nil
}

func scanReviewComment(s scanner) (*model.ReviewComment, error) {
	var comment model.ReviewComment
	var reviewID, inReplyToID, line, originalLine sql.NullInt64
	var reactions, createdAt, updatedAt string

	err := s.Scan(
		&comment.ID, &reviewID, &inReplyToID, &comment.Author, &comment.AvatarURL,
		&comment.Body, &comment.Path, &line, &originalLine, &comment.DiffHunk,
		&comment.CommitID, &comment.HTMLURL, &reactions, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	comment.ReviewID = int64Ptr(reviewID)
	comment.InReplyToID = int64Ptr(inReplyToID)
	comment.Line = intPtr(line)
	comment.OriginalLine = intPtr(originalLine)

	if err := json.Unmarshal([]byte(reactions), &comment.Reactions); err != nil {
		return nil, fmt.Errorf("decode reactions: %w", err)
	}

	comment.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	comment.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	return &comment, nil
}

func scanIssueComment(s scanner) (*model.IssueComment, error) {
	var comment model.IssueComment
	var reactions, createdAt, updatedAt string

	err := s.Scan(
		&comment.ID, &comment.Author, &comment.AvatarURL, &comment.Body,
		&comment.HTMLURL, &reactions, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(reactions), &comment.Reactions); err != nil {
		return nil, fmt.Errorf("decode reactions: %w", err)
	}

	comment.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	comment.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	return &comment, nil
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func int64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	formats := []string{
		timeLayout,
		time.RFC3339Nano,
		"2006-01-02 15:04:05",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}
