package media

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name        string
		fileName    string
		contentType string
		want        Kind
	}{
		{"jpeg by mime", "photo.jpg", "image/jpeg", KindImage},
		{"png by mime", "pic.png", "image/png", KindImage},
		{"webp by mime", "pic.webp", "image/webp", KindImage},
		{"video by mime", "clip.mp4", "video/mp4", KindVideo},
		{"video by extension", "clip.mp4", "application/octet-stream", KindVideo},
		{"video by extension uppercase", "CLIP.MOV", "", KindVideo},
		{"webm by extension", "x.webm", "", KindVideo},
		{"image by extension fallback", "photo.jpg", "", KindImage},
		{"unknown", "notes.txt", "text/plain", KindOther},
		{"no extension no type", "blob", "", KindOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.fileName, tt.contentType))
		})
	}
}

func TestValidateBatchAttachmentCap(t *testing.T) {
	files := make([]File, 3)
	for i := range files {
		files[i] = File{Name: fmt.Sprintf("p%d.jpg", i), ContentType: "image/jpeg", Size: 100}
	}

	// 8 existing + 3 incoming exceeds the cap: the whole batch bounces,
	// including files that would individually fit.
	accepted, errs := ValidateBatch(8, files)
	assert.Empty(t, accepted)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "at most 10")

	// 7 existing + 3 incoming lands exactly on the cap.
	accepted, errs = ValidateBatch(7, files)
	assert.Len(t, accepted, 3)
	assert.Empty(t, errs)
}

func TestValidateBatchVideoSize(t *testing.T) {
	files := []File{
		{Name: "ok.mp4", ContentType: "video/mp4", Size: MaxVideoBytes},
		{Name: "big.mp4", ContentType: "video/mp4", Size: MaxVideoBytes + 1},
		{Name: "photo.jpg", ContentType: "image/jpeg", Size: MaxVideoBytes * 2},
	}

	accepted, errs := ValidateBatch(0, files)
	// Oversized videos fail individually; the rest of the batch still
	// lands. Images are exempt from the size cap.
	require.Len(t, accepted, 2)
	assert.Equal(t, "ok.mp4", accepted[0].Name)
	assert.Equal(t, "photo.jpg", accepted[1].Name)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "big.mp4")
}

func TestPreviewRegistryLifecycle(t *testing.T) {
	reg := NewPreviewRegistry()

	h := reg.Acquire([]byte("bytes"))
	assert.Equal(t, 1, reg.Live())

	data, err := reg.Get(h)
	require.NoError(t, err)
	assert.Equal(t, []byte("bytes"), data)

	reg.Release(h)
	assert.Equal(t, 0, reg.Live())

	// Double release is harmless.
	reg.Release(h)
	assert.Equal(t, 0, reg.Live())

	_, err = reg.Get(h)
	assert.Error(t, err)
}
