package composer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"funprofile/internal/media"
)

func imageFile(name string) media.File {
	return media.File{Name: name, ContentType: "image/jpeg", Size: 16, Data: []byte("not a real image")}
}

func TestDraftStateTransitions(t *testing.T) {
	d := NewDraft(1, nil)
	assert.Equal(t, StateEmpty, d.State())

	d.SetContent("hello")
	assert.Equal(t, StateEditing, d.State())

	d.SetContent("")
	assert.Equal(t, StateEmpty, d.State())

	errs := d.AttachFiles([]media.File{imageFile("a.jpg")})
	assert.Empty(t, errs)
	assert.Equal(t, StateEditing, d.State())

	require.NoError(t, d.RemoveAttachment(0))
	assert.Equal(t, StateEmpty, d.State())
}

func TestDraftSubmittable(t *testing.T) {
	d := NewDraft(1, nil)
	assert.False(t, d.Submittable())

	// Whitespace-only content does not count.
	d.SetContent("   \n\t ")
	assert.False(t, d.Submittable())

	d.AttachFiles([]media.File{imageFile("a.jpg")})
	assert.True(t, d.Submittable())

	require.NoError(t, d.RemoveAttachment(0))
	d.SetContent("real text")
	assert.True(t, d.Submittable())
}

func TestDraftSubmitEmptyRejected(t *testing.T) {
	d := NewDraft(1, nil)
	err := d.Submit(context.Background(), func(context.Context, *Draft) error {
		t.Fatal("persist must not run for an unsubmittable draft")
		return nil
	})
	assert.Error(t, err)
	assert.Equal(t, StateEmpty, d.State())
}

func TestDraftSubmitFailureKeepsEverything(t *testing.T) {
	reg := media.NewPreviewRegistry()
	d := NewDraft(1, reg)
	d.SetContent("keep me")
	d.AttachFiles([]media.File{imageFile("a.jpg")})
	require.Equal(t, 1, reg.Live())

	err := d.Submit(context.Background(), func(context.Context, *Draft) error {
		return errors.New("storage down")
	})
	require.Error(t, err)

	// The draft returns to editing with content, attachments and preview
	// handles intact so the author can retry.
	assert.Equal(t, StateEditing, d.State())
	assert.Equal(t, "keep me", d.Content)
	assert.Len(t, d.Attachments(), 1)
	assert.Equal(t, 1, reg.Live())
}

func TestDraftSubmitSuccessClosesAndReleases(t *testing.T) {
	reg := media.NewPreviewRegistry()
	d := NewDraft(1, reg)
	d.SetContent("post me")
	d.AttachFiles([]media.File{imageFile("a.jpg"), imageFile("b.jpg")})
	require.Equal(t, 2, reg.Live())

	err := d.Submit(context.Background(), func(context.Context, *Draft) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, StateClosed, d.State())
	assert.Equal(t, 0, reg.Live())
}

func TestDraftDoubleSubmitIsNoop(t *testing.T) {
	d := NewDraft(1, nil)
	d.SetContent("once")

	calls := 0
	persist := func(context.Context, *Draft) error {
		calls++
		return nil
	}
	require.NoError(t, d.Submit(context.Background(), persist))
	require.NoError(t, d.Submit(context.Background(), persist))
	assert.Equal(t, 1, calls)
}

func TestDraftDiscardReleasesPreviews(t *testing.T) {
	reg := media.NewPreviewRegistry()
	d := NewDraft(1, reg)
	d.AttachFiles([]media.File{imageFile("a.jpg"), imageFile("b.jpg")})
	require.Equal(t, 2, reg.Live())

	d.Discard()
	assert.Equal(t, 0, reg.Live())
	assert.Equal(t, StateEmpty, d.State())
	assert.Empty(t, d.Attachments())
}

func TestDraftRemoveAttachmentReleasesOnlyThatPreview(t *testing.T) {
	reg := media.NewPreviewRegistry()
	d := NewDraft(1, reg)
	d.AttachFiles([]media.File{imageFile("a.jpg"), imageFile("b.jpg")})

	require.NoError(t, d.RemoveAttachment(0))
	assert.Equal(t, 1, reg.Live())
	assert.Len(t, d.Attachments(), 1)

	assert.Error(t, d.RemoveAttachment(5))
}
