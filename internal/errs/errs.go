// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

var (
	// ErrInvalidArgument indicates a malformed id or request body.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnauthorized indicates a missing, invalid or revoked credential.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound indicates the requested entity does not exist or is not
	// owned by the caller. The two cases are deliberately indistinguishable
	// so a caller cannot probe for other users' drafts.
	ErrNotFound = errors.New("not found")

	// ErrRemote indicates an upstream Google Drive failure. Nothing was
	// changed locally when this is returned.
	ErrRemote = errors.New("remote service error")

	// ErrPartialSync indicates the remote document was created but the
	// local write-back failed: the draft is not marked synced and the remote
	// document is orphaned. Distinct from ErrRemote so operators can tell
	// "nothing happened" from "inconsistent state".
	ErrPartialSync = errors.New("partial sync failure")
)
