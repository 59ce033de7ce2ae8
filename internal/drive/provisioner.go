package drive

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Provisioner idempotently ensures the archival folder layout exists:
// a fixed root folder plus one subfolder per user, named after the user's
// email address. Folder ids are never cached locally; every call re-discovers
// (or re-creates) them against the remote store.
type Provisioner struct {
	client     Client
	rootFolder string
}

// NewProvisioner creates a provisioner targeting the given root folder name.
func NewProvisioner(c Client, rootFolder string) *Provisioner {
	return &Provisioner{client: c, rootFolder: rootFolder}
}

// UserFolderName derives a name-safe folder name from an email address.
func UserFolderName(email string) string {
	return strings.ReplaceAll(email, "@", "_at_")
}

// EnsureUserFolder returns the id of the user's subfolder, creating the root
// folder and/or the subfolder when absent. Pure list-then-create: two
// concurrent calls for the same user can both miss the lookup and both
// create, leaving duplicate folders. There is no remote transaction to
// prevent this; sequential calls are idempotent.
func (p *Provisioner) EnsureUserFolder(ctx context.Context, email string) (string, error) {
	if p.client == nil {
		return "", errors.New("drive client not configured")
	}

	rootID, err := p.ensureFolder(ctx, p.rootFolder, "")
	if err != nil {
		return "", fmt.Errorf("root folder %q: %w", p.rootFolder, err)
	}

	userName := UserFolderName(email)
	userID, err := p.ensureFolder(ctx, userName, rootID)
	if err != nil {
		return "", fmt.Errorf("user folder %q: %w", userName, err)
	}
	return userID, nil
}

func (p *Provisioner) ensureFolder(ctx context.Context, name, parentID string) (string, error) {
	id, err := p.client.FindFolder(ctx, name, parentID)
	if err != nil {
		return "", err
	}
	if id != "" {
		return id, nil
	}
	return p.client.CreateFolder(ctx, name, parentID)
}
