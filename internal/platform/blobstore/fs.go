package blobstore

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// FSBlobStore stores blob content on the local filesystem under a
// root directory. Each blob is a content file named by its ID plus a
// sidecar <id>.json holding the metadata.
type FSBlobStore struct {
	root string
	mu   sync.Mutex
}

// NewFSBlobStore creates the root directory if needed and returns the store.
func NewFSBlobStore(root string) (*FSBlobStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating uploads dir: %w", err)
	}
	return &FSBlobStore{root: root}, nil
}

func (s *FSBlobStore) contentPath(id string) string {
	return filepath.Join(s.root, id)
}

func (s *FSBlobStore) metaPath(id string) string {
	return filepath.Join(s.root, id+".json")
}

// validID rejects IDs that could escape the root directory.
func validID(id string) bool {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return false
	}
	return true
}

// Upload validates inputs, writes the content file and metadata sidecar.
func (s *FSBlobStore) Upload(_ context.Context, meta BlobMetadata, content io.Reader) (*BlobMetadata, error) {
	data, err := validateAndRead(meta, content)
	if err != nil {
		return nil, err
	}

	h := sha256.Sum256(data)

	meta.ID = uuid.New().String()
	meta.Size = int64(len(data))
	meta.Hash = fmt.Sprintf("%x", h)
	meta.CreatedAt = time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.WriteFile(s.contentPath(meta.ID), data, 0o644); err != nil {
		return nil, fmt.Errorf("writing blob content: %w", err)
	}

	raw, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("encoding blob metadata: %w", err)
	}
	if err := os.WriteFile(s.metaPath(meta.ID), raw, 0o644); err != nil {
		os.Remove(s.contentPath(meta.ID))
		return nil, fmt.Errorf("writing blob metadata: %w", err)
	}

	out := meta
	return &out, nil
}

// Download opens the blob content and loads its metadata.
func (s *FSBlobStore) Download(ctx context.Context, id string) (io.ReadCloser, *BlobMetadata, error) {
	meta, err := s.GetMetadata(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(s.contentPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, ErrBlobNotFound
		}
		return nil, nil, fmt.Errorf("opening blob content: %w", err)
	}
	return f, meta, nil
}

// Delete removes the content file and metadata sidecar.
func (s *FSBlobStore) Delete(_ context.Context, id string) error {
	if !validID(id) {
		return ErrBlobNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.metaPath(id)); os.IsNotExist(err) {
		return ErrBlobNotFound
	}
	if err := os.Remove(s.contentPath(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing blob content: %w", err)
	}
	if err := os.Remove(s.metaPath(id)); err != nil {
		return fmt.Errorf("removing blob metadata: %w", err)
	}
	return nil
}

// GetMetadata reads the metadata sidecar.
func (s *FSBlobStore) GetMetadata(_ context.Context, id string) (*BlobMetadata, error) {
	if !validID(id) {
		return nil, ErrBlobNotFound
	}

	raw, err := os.ReadFile(s.metaPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("reading blob metadata: %w", err)
	}

	var meta BlobMetadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("decoding blob metadata: %w", err)
	}
	return &meta, nil
}
