// Package storage provides blob storage for uploaded documents and images,
// backed by Google Cloud Storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// UploadResult describes a stored blob: its object name (stored path), an
// absolute retrieval URL, and the byte size written.
type UploadResult struct {
	ObjectName string
	URL        string
	Size       int64
}

// BlobStore is the outbound interface for uploaded file storage.
type BlobStore interface {
	// Upload streams the reader into a new object under the given prefix.
	// The object name ends with the original filename so report display
	// names stay human-readable.
	Upload(ctx context.Context, prefix, filename string, r io.Reader) (*UploadResult, error)
	Delete(ctx context.Context, objectName string) error
}

// gcsBlobStore implements BlobStore against a single GCS bucket.
type gcsBlobStore struct {
	client *gcs.Client
	bucket string
}

// NewGCSBlobStore creates a GCS-backed BlobStore. Credential options follow
// the same resolution as the Firebase initialization (explicit credentials or
// Application Default Credentials).
func NewGCSBlobStore(ctx context.Context, bucket string, opts ...option.ClientOption) (BlobStore, error) {
	if bucket == "" {
		return nil, errors.New("storage bucket name is required")
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}
	return &gcsBlobStore{client: client, bucket: bucket}, nil
}

// Upload writes the reader to "<prefix>/<uuid>/<filename>" and returns the
// stored path, public URL and size. The uuid segment guarantees uniqueness
// while path.Base of the object name still yields the original filename.
func (s *gcsBlobStore) Upload(ctx context.Context, prefix, filename string, r io.Reader) (*UploadResult, error) {
	if filename == "" {
		return nil, errors.New("filename cannot be empty for Upload operation")
	}
	// Strip any client-supplied directory components.
	base := path.Base(filename)

	objectName := fmt.Sprintf("%s/%s/%s", prefix, uuid.NewString(), base)

	w := s.client.Bucket(s.bucket).Object(objectName).NewWriter(ctx)
	size, err := io.Copy(w, r)
	if err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to write object '%s': %w", objectName, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize object '%s': %w", objectName, err)
	}

	return &UploadResult{
		ObjectName: objectName,
		URL:        fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, objectName),
		Size:       size,
	}, nil
}

// Delete removes an object from the bucket. A missing object is not an
// error; the metadata record is authoritative and may outlive the blob.
func (s *gcsBlobStore) Delete(ctx context.Context, objectName string) error {
	if objectName == "" {
		return errors.New("objectName cannot be empty for Delete operation")
	}
	err := s.client.Bucket(s.bucket).Object(objectName).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete object '%s': %w", objectName, err)
	}
	return nil
}
