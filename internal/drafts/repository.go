// Package drafts owns CRUD over draft records, enforcing per-user ownership
// and partial-field update semantics.
package drafts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/draftkeeper/backend/internal/database"
	"github.com/draftkeeper/backend/internal/errs"
	"github.com/draftkeeper/backend/internal/models"
)

// Update carries the optional fields of a partial draft update. A nil field
// is left untouched; a non-nil field is written verbatim (including empty
// strings).
type Update struct {
	Title   *string
	Content *string
}

// Repository defines persistence operations for drafts. Every operation is
// scoped to an owner: a draft belonging to another user is reported as
// errs.ErrNotFound, indistinguishable from a missing row.
type Repository interface {
	List(ctx context.Context, ownerID int64) ([]*models.Draft, error)
	Get(ctx context.Context, id, ownerID int64) (*models.Draft, error)
	Create(ctx context.Context, ownerID int64, title, content string) (*models.Draft, error)
	Update(ctx context.Context, id, ownerID int64, upd Update) (*models.Draft, error)
	Delete(ctx context.Context, id, ownerID int64) error
	MarkSynced(ctx context.Context, id, ownerID int64, fileID string) (*models.Draft, error)
}

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct{ db *database.DB }

// NewPostgresRepository creates a repository backed by the given pool.
func NewPostgresRepository(db *database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const draftColumns = `id, user_id, title, content, saved_to_cloud, google_file_id, created_at, updated_at`

func scanDraft(row pgx.Row) (*models.Draft, error) {
	var d models.Draft
	err := row.Scan(&d.ID, &d.UserID, &d.Title, &d.Content, &d.SavedToCloud, &d.GoogleFileID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

// List returns all drafts owned by ownerID, most recently updated first.
func (r *PostgresRepository) List(ctx context.Context, ownerID int64) ([]*models.Draft, error) {
	const q = `SELECT ` + draftColumns + ` FROM drafts WHERE user_id=$1 ORDER BY updated_at DESC`
	rows, err := r.db.Pool.Query(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*models.Draft{}
	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Get returns the draft iff it exists and is owned by ownerID. Existence and
// ownership are checked in the same query so the caller cannot tell a foreign
// draft from a missing one.
func (r *PostgresRepository) Get(ctx context.Context, id, ownerID int64) (*models.Draft, error) {
	const q = `SELECT ` + draftColumns + ` FROM drafts WHERE id=$1 AND user_id=$2`
	return scanDraft(r.db.Pool.QueryRow(ctx, q, id, ownerID))
}

// Create inserts a new draft with defaults applied: an empty title becomes
// "Untitled Draft" and content defaults to "".
func (r *PostgresRepository) Create(ctx context.Context, ownerID int64, title, content string) (*models.Draft, error) {
	if title == "" {
		title = models.DefaultDraftTitle
	}
	const q = `
INSERT INTO drafts (user_id, title, content)
VALUES ($1, $2, $3)
RETURNING ` + draftColumns
	return scanDraft(r.db.Pool.QueryRow(ctx, q, ownerID, title, content))
}

// exists performs the discrete ownership precondition shared by Update and
// Delete. Kept separate from the mutation so "not found vs. unauthorized"
// stays auditable rather than being inferred from a zero-row result.
func (r *PostgresRepository) exists(ctx context.Context, id, ownerID int64) error {
	const q = `SELECT id FROM drafts WHERE id=$1 AND user_id=$2`
	var got int64
	if err := r.db.Pool.QueryRow(ctx, q, id, ownerID).Scan(&got); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errs.ErrNotFound
		}
		return err
	}
	return nil
}

// Update applies a partial update. Only fields present in upd change; the
// UPDATE always runs so updated_at advances even when no field is provided,
// and the current row is returned in that case.
func (r *PostgresRepository) Update(ctx context.Context, id, ownerID int64, upd Update) (*models.Draft, error) {
	if err := r.exists(ctx, id, ownerID); err != nil {
		return nil, err
	}

	// Enumerated optional fields only; anything not listed here can never be
	// touched by an update, which keeps unspecified fields bit-for-bit intact.
	set := []string{}
	args := []any{}
	if upd.Title != nil {
		args = append(args, *upd.Title)
		set = append(set, fmt.Sprintf("title=$%d", len(args)))
	}
	if upd.Content != nil {
		args = append(args, *upd.Content)
		set = append(set, fmt.Sprintf("content=$%d", len(args)))
	}
	set = append(set, "updated_at=NOW()")

	args = append(args, id, ownerID)
	q := fmt.Sprintf(`UPDATE drafts SET %s WHERE id=$%d AND user_id=$%d RETURNING %s`,
		strings.Join(set, ", "), len(args)-1, len(args), draftColumns)
	return scanDraft(r.db.Pool.QueryRow(ctx, q, args...))
}

// Delete removes the draft after the same ownership precondition as Update.
func (r *PostgresRepository) Delete(ctx context.Context, id, ownerID int64) error {
	if err := r.exists(ctx, id, ownerID); err != nil {
		return err
	}
	const q = `DELETE FROM drafts WHERE id=$1 AND user_id=$2`
	_, err := r.db.Pool.Exec(ctx, q, id, ownerID)
	return err
}

// MarkSynced records a successful Drive upload on the draft. Used only by the
// sync orchestrator.
func (r *PostgresRepository) MarkSynced(ctx context.Context, id, ownerID int64, fileID string) (*models.Draft, error) {
	const q = `
UPDATE drafts
SET saved_to_cloud = TRUE, google_file_id = $1, updated_at = NOW()
WHERE id = $2 AND user_id = $3
RETURNING ` + draftColumns
	return scanDraft(r.db.Pool.QueryRow(ctx, q, fileID, id, ownerID))
}
