// Package drive wraps the Google Drive v3 API behind the minimal surface the
// sync layer needs: name-based folder lookup/creation, document upload, and
// folder listing.
package drive

import (
	"context"
	"fmt"
	"strings"

	drivev3 "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	folderMIME   = "application/vnd.google-apps.folder"
	documentMIME = "application/vnd.google-apps.document"
)

// Document is a lightweight remote document summary. Content is never
// fetched; timestamps are RFC 3339 strings as reported by Drive.
type Document struct {
	ID           string
	Title        string
	ViewLink     string
	CreatedTime  string
	ModifiedTime string
}

// Client is the Drive surface used by the provisioner and sync service.
// Implemented by GoogleClient and by test fakes.
type Client interface {
	// FindFolder returns the id of a non-trashed folder with the given name,
	// scoped to parentID when non-empty, or "" when no such folder exists.
	FindFolder(ctx context.Context, name, parentID string) (string, error)
	// CreateFolder creates a folder, optionally under parentID, and returns its id.
	CreateFolder(ctx context.Context, name, parentID string) (string, error)
	// CreateDocument uploads content as a Google Doc inside folderID.
	CreateDocument(ctx context.Context, folderID, title, content string) (*Document, error)
	// ListDocuments lists non-trashed Google Docs directly inside folderID.
	ListDocuments(ctx context.Context, folderID string) ([]*Document, error)
}

// GoogleClient is a thin wrapper around the Drive v3 service.
type GoogleClient struct {
	srv *drivev3.Service
}

// NewGoogleClient builds a Drive client from service-account credentials JSON.
func NewGoogleClient(ctx context.Context, credentialsJSON []byte) (*GoogleClient, error) {
	srv, err := drivev3.NewService(ctx,
		option.WithCredentialsJSON(credentialsJSON),
		option.WithScopes(drivev3.DriveFileScope),
	)
	if err != nil {
		return nil, fmt.Errorf("drive service: %w", err)
	}
	return &GoogleClient{srv: srv}, nil
}

// escapeQuery escapes single quotes for embedding a name in a Drive query.
func escapeQuery(s string) string {
	return strings.ReplaceAll(s, `'`, `\'`)
}

func (c *GoogleClient) FindFolder(ctx context.Context, name, parentID string) (string, error) {
	q := fmt.Sprintf("name='%s' and mimeType='%s' and trashed=false", escapeQuery(name), folderMIME)
	if parentID != "" {
		q += fmt.Sprintf(" and '%s' in parents", escapeQuery(parentID))
	}
	res, err := c.srv.Files.List().Q(q).Fields("files(id, name)").Spaces("drive").Context(ctx).Do()
	if err != nil {
		return "", err
	}
	if len(res.Files) == 0 {
		return "", nil
	}
	return res.Files[0].Id, nil
}

func (c *GoogleClient) CreateFolder(ctx context.Context, name, parentID string) (string, error) {
	meta := &drivev3.File{Name: name, MimeType: folderMIME}
	if parentID != "" {
		meta.Parents = []string{parentID}
	}
	f, err := c.srv.Files.Create(meta).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return f.Id, nil
}

func (c *GoogleClient) CreateDocument(ctx context.Context, folderID, title, content string) (*Document, error) {
	meta := &drivev3.File{
		Name:     title,
		MimeType: documentMIME,
		Parents:  []string{folderID},
	}
	f, err := c.srv.Files.Create(meta).
		Media(strings.NewReader(content), googleapi.ContentType("text/plain")).
		Fields("id, name, webViewLink, createdTime, modifiedTime").
		Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return &Document{
		ID:           f.Id,
		Title:        f.Name,
		ViewLink:     f.WebViewLink,
		CreatedTime:  f.CreatedTime,
		ModifiedTime: f.ModifiedTime,
	}, nil
}

func (c *GoogleClient) ListDocuments(ctx context.Context, folderID string) ([]*Document, error) {
	q := fmt.Sprintf("'%s' in parents and mimeType='%s' and trashed=false", escapeQuery(folderID), documentMIME)
	res, err := c.srv.Files.List().Q(q).
		Fields("files(id, name, webViewLink, createdTime, modifiedTime)").
		Spaces("drive").Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	out := make([]*Document, 0, len(res.Files))
	for _, f := range res.Files {
		out = append(out, &Document{
			ID:           f.Id,
			Title:        f.Name,
			ViewLink:     f.WebViewLink,
			CreatedTime:  f.CreatedTime,
			ModifiedTime: f.ModifiedTime,
		})
	}
	return out, nil
}
