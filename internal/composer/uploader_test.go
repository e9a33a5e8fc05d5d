package composer

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"funprofile/internal/media"
	"funprofile/internal/storage"
)

func newTestUploader(bucket storage.Bucket) *Uploader {
	u := NewUploader(bucket)
	u.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return u
}

func TestUploadAllExistingPassThrough(t *testing.T) {
	bucket := storage.NewMemoryBucket()
	u := newTestUploader(bucket)

	atts := []Attachment{
		{ExistingURL: "https://storage.test/1/old_0.jpg"},
		{ExistingURL: "https://storage.test/1/old_1.jpg"},
	}

	urls, err := u.UploadAll(context.Background(), 1, atts, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://storage.test/1/old_0.jpg",
		"https://storage.test/1/old_1.jpg",
	}, urls)
	// No network work for surviving URLs.
	assert.Equal(t, 0, bucket.Len())
}

func TestUploadAllSequentialKeysAndOrder(t *testing.T) {
	bucket := storage.NewMemoryBucket()
	u := newTestUploader(bucket)

	atts := []Attachment{
		{ExistingURL: "https://storage.test/7/kept.jpg"},
		{File: media.File{Name: "b.PNG", ContentType: "image/png", Size: 3, Data: []byte("png")}},
		{File: media.File{Name: "c", ContentType: "application/octet-stream", Size: 3, Data: []byte("bin")}},
	}

	urls, err := u.UploadAll(context.Background(), 7, atts, nil)
	require.NoError(t, err)
	require.Len(t, urls, 3)

	// URL order matches attachment order; the sequence number is the
	// attachment index and extensions are lowercased.
	assert.Equal(t, "https://storage.test/7/kept.jpg", urls[0])
	assert.Equal(t, "https://storage.test/7/1700000000000_1.png", urls[1])
	assert.Equal(t, "https://storage.test/7/1700000000000_2.bin", urls[2])

	_, contentType, ok := bucket.Object("7/1700000000000_1.png")
	require.True(t, ok)
	assert.Equal(t, "image/png", contentType)
}

func TestUploadAllProgressCountsNewFilesOnly(t *testing.T) {
	bucket := storage.NewMemoryBucket()
	u := newTestUploader(bucket)

	atts := []Attachment{
		{ExistingURL: "https://storage.test/1/kept.jpg"},
		{File: media.File{Name: "a.jpg", ContentType: "image/jpeg", Size: 1, Data: []byte("a")}},
		{File: media.File{Name: "b.jpg", ContentType: "image/jpeg", Size: 1, Data: []byte("b")}},
	}

	var reported []float64
	_, err := u.UploadAll(context.Background(), 1, atts, func(p float64) {
		reported = append(reported, p)
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{50, 100}, reported)
}

func TestUploadAllAbortsOnFirstFailure(t *testing.T) {
	bucket := storage.NewMemoryBucket()
	bucket.FailKeys["1/1700000000000_1.jpg"] = true
	u := newTestUploader(bucket)

	atts := make([]Attachment, 3)
	for i := range atts {
		atts[i] = Attachment{File: media.File{
			Name: fmt.Sprintf("f%d.jpg", i), ContentType: "image/jpeg", Size: 1, Data: []byte("x"),
		}}
	}

	urls, err := u.UploadAll(context.Background(), 1, atts, nil)
	require.Error(t, err)
	assert.Nil(t, urls)
	// The first file landed, the second failed, the third never started.
	assert.Equal(t, 1, bucket.Len())
}
