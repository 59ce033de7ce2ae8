package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/draftkeeper/backend/internal/database"
	"github.com/draftkeeper/backend/internal/errs"
	"github.com/draftkeeper/backend/internal/models"
)

func newDB(t *testing.T) (*database.DB, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return &database.DB{Pool: mock}, mock
}

func userRows(u *models.User) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "firebase_uid", "name", "email", "picture", "created_at", "updated_at"}).
		AddRow(u.ID, u.FirebaseUID, u.Name, u.Email, u.Picture, u.CreatedAt, u.UpdatedAt)
}

func TestUserRepo_GetByFirebaseUID_OK(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewPostgresRepository(db)

	now := time.Now()
	want := &models.User{ID: 7, FirebaseUID: "fb-1", Name: "Ada", Email: "ada@example.com", Picture: "p", CreatedAt: now, UpdatedAt: now}

	mock.ExpectQuery(`SELECT .+ FROM users WHERE firebase_uid=\$1`).
		WithArgs("fb-1").
		WillReturnRows(userRows(want))

	got, err := r.GetByFirebaseUID(context.Background(), "fb-1")
	require.NoError(t, err)
	require.Equal(t, want.ID, got.ID)
	require.Equal(t, want.Email, got.Email)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetByFirebaseUID_NotFound(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewPostgresRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE firebase_uid=\$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := r.GetByFirebaseUID(context.Background(), "missing")
	require.True(t, errors.Is(err, errs.ErrNotFound))
}

func TestUserRepo_GetByID_NotFound(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewPostgresRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE id=\$1`).
		WithArgs(int64(42)).
		WillReturnError(pgx.ErrNoRows)

	_, err := r.GetByID(context.Background(), 42)
	require.True(t, errors.Is(err, errs.ErrNotFound))
}

func TestUserRepo_Upsert_ReturnsRow(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewPostgresRepository(db)

	now := time.Now()
	want := &models.User{ID: 3, FirebaseUID: "fb-9", Name: "Grace", Email: "grace@example.com", Picture: "", CreatedAt: now, UpdatedAt: now}

	mock.ExpectQuery(`(?s)INSERT INTO users.+ON CONFLICT \(firebase_uid\) DO UPDATE`).
		WithArgs("fb-9", "Grace", "grace@example.com", "").
		WillReturnRows(userRows(want))

	got, err := r.Upsert(context.Background(), &models.User{FirebaseUID: "fb-9", Name: "Grace", Email: "grace@example.com"})
	require.NoError(t, err)
	require.Equal(t, int64(3), got.ID)
	require.Equal(t, "fb-9", got.FirebaseUID)
	require.NoError(t, mock.ExpectationsWereMet())
}
