// Package sync composes the draft repository, user lookup and Drive client
// into the save-to-drive reconciler.
package sync

import (
	"context"
	"fmt"

	"github.com/draftkeeper/backend/internal/drafts"
	"github.com/draftkeeper/backend/internal/drive"
	"github.com/draftkeeper/backend/internal/errs"
	"github.com/draftkeeper/backend/internal/models"
	"github.com/draftkeeper/backend/pkg/logger"
	"github.com/draftkeeper/backend/pkg/metrics"
)

// FolderProvisioner yields the user's archival folder id, creating folders as
// needed. Implemented by *drive.Provisioner.
type FolderProvisioner interface {
	EnsureUserFolder(ctx context.Context, email string) (string, error)
}

// UserLookup resolves a local user id to a user record. Implemented by
// *users.Service.
type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// RemoteDraft is the listing summary for a document already in Drive,
// independent of local sync state. Content is intentionally empty: bodies are
// never fetched by the listing call.
type RemoteDraft struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	ViewLink  string `json:"viewLink"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
	FromDrive bool   `json:"fromDrive"`
}

// Service orchestrates draft-to-Drive synchronization.
type Service struct {
	drafts drafts.Repository
	users  UserLookup
	prov   FolderProvisioner
	client drive.Client
}

func NewService(d drafts.Repository, u UserLookup, p FolderProvisioner, c drive.Client) *Service {
	return &Service{drafts: d, users: u, prov: p, client: c}
}

// SaveDraftToDrive uploads the draft's content as a Google Doc in the owner's
// archival folder and records the file id locally. Steps and their failure
// modes:
//
//  1. load draft with ownership check        -> errs.ErrNotFound
//  2. resolve owner email                    -> errs.ErrNotFound
//  3. provision the user folder              -> errs.ErrRemote
//  4. upload the document                    -> errs.ErrRemote
//  5. mark the draft synced                  -> errs.ErrPartialSync
//
// A failure at steps 3-4 leaves local state untouched. A failure at step 5
// means the remote document already exists with no local linkage; retrying
// uploads a second copy rather than detecting the orphan.
func (s *Service) SaveDraftToDrive(ctx context.Context, draftID, ownerID int64) (*models.Draft, error) {
	if s.client == nil {
		metrics.DriveSyncTotal.WithLabelValues("remote_error").Inc()
		return nil, fmt.Errorf("%w: Google Drive is not configured", errs.ErrRemote)
	}

	draft, err := s.drafts.Get(ctx, draftID, ownerID)
	if err != nil {
		metrics.DriveSyncTotal.WithLabelValues("not_found").Inc()
		return nil, err
	}

	owner, err := s.users.GetByID(ctx, ownerID)
	if err != nil {
		metrics.DriveSyncTotal.WithLabelValues("not_found").Inc()
		return nil, err
	}

	folderID, err := s.prov.EnsureUserFolder(ctx, owner.Email)
	if err != nil {
		metrics.DriveSyncTotal.WithLabelValues("remote_error").Inc()
		return nil, fmt.Errorf("%w: %v", errs.ErrRemote, err)
	}

	// a draft can have been updated to an empty title since creation; never
	// upload a nameless document
	title := draft.Title
	if title == "" {
		title = models.DefaultDraftTitle
	}

	doc, err := s.client.CreateDocument(ctx, folderID, title, draft.Content)
	if err != nil {
		metrics.DriveSyncTotal.WithLabelValues("remote_error").Inc()
		return nil, fmt.Errorf("%w: %v", errs.ErrRemote, err)
	}
	logger.Infof("draft %d uploaded to Drive as file %s", draft.ID, doc.ID)

	updated, err := s.drafts.MarkSynced(ctx, draftID, ownerID, doc.ID)
	if err != nil {
		// The remote document exists but the local record says otherwise.
		logger.Errorf("draft %d: Drive file %s created but local write-back failed: %v", draftID, doc.ID, err)
		metrics.DriveSyncTotal.WithLabelValues("partial").Inc()
		return nil, fmt.Errorf("%w: drive file %s not recorded: %v", errs.ErrPartialSync, doc.ID, err)
	}

	metrics.DriveSyncTotal.WithLabelValues("success").Inc()
	updated.WebViewLink = doc.ViewLink
	return updated, nil
}

// ListDriveDrafts lists the documents already in the user's Drive folder,
// regardless of local sync state.
func (s *Service) ListDriveDrafts(ctx context.Context, ownerID int64) ([]*RemoteDraft, error) {
	if s.client == nil {
		return nil, fmt.Errorf("%w: Google Drive is not configured", errs.ErrRemote)
	}

	owner, err := s.users.GetByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	folderID, err := s.prov.EnsureUserFolder(ctx, owner.Email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrRemote, err)
	}

	docs, err := s.client.ListDocuments(ctx, folderID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrRemote, err)
	}

	out := make([]*RemoteDraft, 0, len(docs))
	for _, d := range docs {
		out = append(out, &RemoteDraft{
			ID:        d.ID,
			Title:     d.Title,
			Content:   "",
			ViewLink:  d.ViewLink,
			CreatedAt: d.CreatedTime,
			UpdatedAt: d.ModifiedTime,
			FromDrive: true,
		})
	}
	return out, nil
}
