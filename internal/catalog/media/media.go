// Copyright (c) 2026 Bibliora. All rights reserved.
// Author: ngocanh.tran.books@gmail.com

package media

import "time"

// # Media Lifecycle

// Media status values. A binary is registered as TEMP and only becomes
// ATTACHED when a catalog entity claims it inside its own transaction.
// TEMP media older than the retention window is reclaimed by the janitor.
const (
	StatusTemp     = "TEMP"
	StatusAttached = "ATTACHED"
)

// Media type values, mirroring the storage provider's resource types.
const (
	TypeImage = "image"
	TypeVideo = "video"
	TypeFile  = "file"
)

// Media represents an uploaded binary tracked by the catalog.
type Media struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
	Type     string `json:"type"`
	Status   string `json:"status"`

	// UploadedBy is the owning user, nil for system-ingested assets.
	UploadedBy *string `json:"uploaded_by,omitempty"`

	// AttachedToKind and AttachedToID identify the claiming entity
	// (e.g. kind "book") while Status is ATTACHED.
	AttachedToKind *string `json:"attached_to_kind,omitempty"`
	AttachedToID   *string `json:"attached_to_id,omitempty"`

	OriginalName string    `json:"original_name,omitempty"`
	MimeType     string    `json:"mime_type,omitempty"`
	SizeBytes    int64     `json:"size_bytes"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"-"`
}

// IsTemp reports whether the media is still unclaimed.
func (m *Media) IsTemp() bool { return m.Status == StatusTemp }

// OwnedBy reports whether the media belongs to the given user.
// System-ingested media (no owner) is considered owned by everyone.
func (m *Media) OwnedBy(userID string) bool {
	return m.UploadedBy == nil || *m.UploadedBy == userID
}

// ImageKind distinguishes the single cover image from gallery images.
type ImageKind string

const (
	KindCover   ImageKind = "cover"
	KindGallery ImageKind = "gallery"
)

// Image is a media reference as attached to a catalog entity. The owning
// entity id lives on the junction row, not here.
type Image struct {
	MediaID  string    `json:"media_id"`
	URL      string    `json:"url"`
	Kind     ImageKind `json:"kind"`
	Position int       `json:"position"`
}

// Filter narrows media listings.
type Filter struct {
	Status string
	Type   string
}
