// Copyright (c) 2026 Bibliora. All rights reserved.
// Author: ngocanh.tran.books@gmail.com

/*
Package objstore abstracts binary storage for uploaded media.

The catalog core never touches transport mechanics — it registers metadata
and drives the TEMP/ATTACHED lifecycle. The BinaryStore interface is the seam
where a CDN-backed provider (Cloudinary, S3, R2) plugs in; the bundled
filesystem implementation serves development and tests.

Destroy is best-effort by contract: a failed remote delete is logged by the
caller and never fails the user's request, because the metadata row is the
source of truth and orphaned binaries are reclaimed out of band.
*/
package objstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	uuid "github.com/ngocanhtran/bibliora/pkg/uuid"
)

// UploadResult describes a stored binary.
type UploadResult struct {
	// URL is the publicly resolvable address of the binary.
	URL string

	// PublicID is the storage-provider identifier used for later destruction.
	PublicID string
}

// UploadParams carries the binary payload and its placement hints.
type UploadParams struct {
	Body         io.Reader
	Folder       string
	ResourceType string // "image", "video" or "raw"
	Filename     string
}

// BinaryStore is the transport contract for media binaries.
type BinaryStore interface {
	// Upload persists the binary and returns its public address and id.
	Upload(ctx context.Context, params UploadParams) (UploadResult, error)

	// Destroy removes the binary identified by publicID. Best-effort.
	Destroy(ctx context.Context, publicID string) error
}

// # Filesystem Implementation

// FileStore stores binaries on the local filesystem under a root directory.
type FileStore struct {
	root    string
	baseURL string
}

// NewFileStore creates a filesystem-backed [BinaryStore].
//
// # Parameters
//   - root: Directory where binaries are written (created if missing).
//   - baseURL: Public URL prefix mapped to root by the static file server.
func NewFileStore(root, baseURL string) (*FileStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("objstore: failed to create media root %s: %w", root, err)
	}

	return &FileStore{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// Upload writes the binary under <root>/<folder>/<publicID> and returns
// the mapped public URL.
func (store *FileStore) Upload(ctx context.Context, params UploadParams) (UploadResult, error) {
	publicID := buildPublicID(params.Folder, params.Filename)

	targetPath := filepath.Join(store.root, filepath.FromSlash(publicID))
	if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
		return UploadResult{}, fmt.Errorf("objstore: failed to create folder: %w", err)
	}

	file, err := os.Create(targetPath)
	if err != nil {
		return UploadResult{}, fmt.Errorf("objstore: failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, params.Body); err != nil {
		// Remove the partial file so a retry does not find a corrupt binary.
		_ = os.Remove(targetPath)
		return UploadResult{}, fmt.Errorf("objstore: failed to write file: %w", err)
	}

	return UploadResult{
		URL:      store.baseURL + "/" + publicID,
		PublicID: publicID,
	}, nil
}

// Destroy removes the stored binary. A missing file is not an error.
func (store *FileStore) Destroy(ctx context.Context, publicID string) error {
	targetPath := filepath.Join(store.root, filepath.FromSlash(publicID))

	if err := os.Remove(targetPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("objstore: failed to remove %s: %w", publicID, err)
	}

	return nil
}

// buildPublicID derives a collision-free storage key. The original filename
// is kept as a readable suffix when present.
func buildPublicID(folder, filename string) string {
	key := uuid.New()

	if filename != "" {
		key = key + "-" + sanitizeFilename(filename)
	}

	if folder != "" {
		return strings.Trim(folder, "/") + "/" + key
	}

	return key
}

// sanitizeFilename strips path separators and whitespace from a user-supplied
// filename so it is safe as a single path segment.
func sanitizeFilename(filename string) string {
	filename = filepath.Base(filename)

	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '-'
		}
	}, filename)
}
