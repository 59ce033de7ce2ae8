package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/draftkeeper/backend/internal/database"
	"github.com/draftkeeper/backend/internal/errs"
	"github.com/draftkeeper/backend/internal/models"
)

// Repository defines persistence operations for users
type Repository interface {
	GetByFirebaseUID(ctx context.Context, uid string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	Upsert(ctx context.Context, u *models.User) (*models.User, error)
}

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct{ db *database.DB }

// NewPostgresRepository creates a repository backed by the given pool.
func NewPostgresRepository(db *database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, firebase_uid, name, email, COALESCE(picture, ''), created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.FirebaseUID, &u.Name, &u.Email, &u.Picture, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByFirebaseUID looks up a user by the external Firebase identity.
// Returns errs.ErrNotFound when no local row exists yet (first login).
func (r *PostgresRepository) GetByFirebaseUID(ctx context.Context, uid string) (*models.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE firebase_uid=$1`
	return scanUser(r.db.Pool.QueryRow(ctx, q, uid))
}

// GetByID selects a user by local id.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return scanUser(r.db.Pool.QueryRow(ctx, q, id))
}

// Upsert creates the user row on first profile sync and refreshes
// name/email/picture on every subsequent one. A single statement so two
// concurrent first logins cannot both insert.
func (r *PostgresRepository) Upsert(ctx context.Context, u *models.User) (*models.User, error) {
	const q = `
INSERT INTO users (firebase_uid, name, email, picture)
VALUES ($1, $2, $3, $4)
ON CONFLICT (firebase_uid) DO UPDATE
SET name = EXCLUDED.name, email = EXCLUDED.email, picture = EXCLUDED.picture, updated_at = NOW()
RETURNING ` + userColumns
	return scanUser(r.db.Pool.QueryRow(ctx, q, u.FirebaseUID, u.Name, u.Email, u.Picture))
}
