package models

import "time"

// DefaultDraftTitle is applied when a draft is created with an empty title.
const DefaultDraftTitle = "Untitled Draft"

// Draft is a user-owned text record with optional Drive archival state.
// GoogleFileID stays nil until the draft has been saved to Drive;
// SavedToCloud=true implies a non-nil GoogleFileID.
type Draft struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"userId"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	SavedToCloud bool      `json:"savedToCloud"`
	GoogleFileID *string   `json:"googleFileId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	// WebViewLink is only populated on save-to-drive responses.
	WebViewLink string `json:"webViewLink,omitempty"`
}
