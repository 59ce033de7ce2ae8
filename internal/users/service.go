package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/draftkeeper/backend/internal/errs"
	"github.com/draftkeeper/backend/internal/models"
)

// Claims are the identity fields extracted from a verified Firebase ID token.
type Claims struct {
	UID     string
	Email   string
	Name    string
	Picture string
}

// Identity is the resolved caller. On first login the verified token has no
// local user row yet; the identity is then ephemeral (User == nil) and the
// request proceeds on claims alone until an explicit profile sync creates the
// row. Resolution never writes.
type Identity struct {
	User   *models.User
	Claims Claims
}

// Persisted reports whether a local user row backs this identity.
func (i Identity) Persisted() bool { return i.User != nil }

// Service encapsulates identity resolution and profile persistence
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

// Resolve maps verified token claims to a local identity. A missing user row
// is not an error: the returned identity is simply ephemeral.
func (s *Service) Resolve(ctx context.Context, c Claims) (Identity, error) {
	u, err := s.repo.GetByFirebaseUID(ctx, c.UID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return Identity{Claims: c}, nil
		}
		return Identity{}, err
	}
	return Identity{User: u, Claims: c}, nil
}

// SyncProfile upserts the user row from the supplied identity fields and
// returns the persisted user. This is the only place a user row is created.
func (s *Service) SyncProfile(ctx context.Context, c Claims) (*models.User, error) {
	if c.UID == "" {
		return nil, fmt.Errorf("%w: missing external id", errs.ErrInvalidArgument)
	}
	u := &models.User{
		FirebaseUID: c.UID,
		Name:        c.Name,
		Email:       c.Email,
		Picture:     c.Picture,
	}
	return s.repo.Upsert(ctx, u)
}

// GetByID loads a user by local id.
func (s *Service) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}
