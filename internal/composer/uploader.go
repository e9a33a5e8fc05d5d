// Package composer implements the post authoring pipeline: draft state,
// attachment staging and the sequential upload of new media.
package composer

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"funprofile/internal/middleware"
	"funprofile/internal/models"
	"funprofile/internal/storage"
)

// ProgressFunc receives upload progress in percent. Only newly uploaded
// files count toward progress; re-attached existing URLs are free.
type ProgressFunc func(percent float64)

// Uploader pushes staged attachments to blob storage.
type Uploader struct {
	bucket storage.Bucket
	now    func() time.Time
}

// NewUploader creates an Uploader writing to bucket.
func NewUploader(bucket storage.Bucket) *Uploader {
	return &Uploader{bucket: bucket, now: time.Now}
}

// UploadAll resolves the final media URL list for a draft. Attachments that
// already have a URL pass through verbatim without touching the network;
// new files upload one at a time so the resulting URL order matches the
// attachment order. The first failed upload aborts the rest.
func (u *Uploader) UploadAll(ctx context.Context, ownerID uint, atts []Attachment, progress ProgressFunc) ([]string, error) {
	newCount := 0
	for _, a := range atts {
		if a.ExistingURL == "" {
			newCount++
		}
	}

	urls := make([]string, 0, len(atts))
	batch := u.now().UnixMilli()
	uploaded := 0
	for i, a := range atts {
		if a.ExistingURL != "" {
			urls = append(urls, a.ExistingURL)
			continue
		}

		key := objectKey(ownerID, batch, i, a.File.Name)
		url, err := u.bucket.Upload(ctx, key, a.File.ContentType, bytes.NewReader(a.File.Data), a.File.Size)
		if err != nil {
			middleware.MediaUploads.WithLabelValues("failure").Inc()
			return nil, models.NewUploadError(fmt.Errorf("failed to upload %q: %w", a.File.Name, err))
		}
		middleware.MediaUploads.WithLabelValues("success").Inc()
		urls = append(urls, url)

		uploaded++
		if progress != nil && newCount > 0 {
			progress(float64(uploaded) / float64(newCount) * 100)
		}
	}
	return urls, nil
}

// objectKey builds the storage key for a new attachment. Keys are grouped
// under the owner so listing and cleanup stay per user.
func objectKey(ownerID uint, batch int64, seq int, name string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if ext == "" {
		ext = "bin"
	}
	return fmt.Sprintf("%d/%d_%d.%s", ownerID, batch, seq, ext)
}
