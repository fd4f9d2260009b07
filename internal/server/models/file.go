// Package models defines server-side data models persisted in the database.
package models

import "time"

// File describes an uploaded file. The bytes live in the blob store under
// StoredName; everything else is metadata kept in the database.
type File struct {
	ID string
	// StoredName is the server-generated blob key. It is never derived from
	// client input and never shown to clients.
	StoredName string
	// OriginalName is the client-supplied filename, used only for display
	// and the download attachment name.
	OriginalName string
	// MimeType is the client-declared content type. It is display metadata
	// and never drives server-side processing.
	MimeType  string
	SizeBytes int64
	// OwnerID is fixed at creation.
	OwnerID    string
	UploadedAt time.Time
}
