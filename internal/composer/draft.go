package composer

import (
	"context"
	"strings"

	"funprofile/internal/media"
	"funprofile/internal/models"
)

// State of a draft.
type State string

const (
	// StateEmpty is a fresh draft with no content and no attachments.
	StateEmpty State = "empty"
	// StateEditing is a draft with at least some content staged.
	StateEditing State = "editing"
	// StateSubmitting is a draft whose submit is in flight.
	StateSubmitting State = "submitting"
	// StateClosed is a successfully submitted draft. Closed drafts are dead;
	// a new post starts a new draft.
	StateClosed State = "closed"
)

// Attachment is one staged media slot on a draft. Either ExistingURL is set
// (the attachment survived from a previous version of the post and needs no
// upload) or File carries new bytes to push.
type Attachment struct {
	ExistingURL   string
	File          media.File
	PreviewHandle string
}

// Draft is a post being authored. It tracks content, staged attachments and
// the submit lifecycle. Drafts are not safe for concurrent use; each request
// builds its own.
type Draft struct {
	OwnerID      uint
	Content      string
	PrivacyLevel string
	FeelingType  string
	FeelingText  string

	attachments []Attachment
	state       State
	previews    *media.PreviewRegistry
}

// NewDraft starts an empty draft for a user.
func NewDraft(ownerID uint, previews *media.PreviewRegistry) *Draft {
	return &Draft{
		OwnerID:      ownerID,
		PrivacyLevel: models.PrivacyPublic,
		state:        StateEmpty,
		previews:     previews,
	}
}

// State returns the current draft state.
func (d *Draft) State() State {
	return d.state
}

// Attachments returns the staged attachments in display order.
func (d *Draft) Attachments() []Attachment {
	return d.attachments
}

// SetContent updates the draft text and moves an empty draft into editing.
func (d *Draft) SetContent(content string) {
	if d.state == StateClosed || d.state == StateSubmitting {
		return
	}
	d.Content = content
	d.syncState()
}

// AttachExisting stages an attachment that already lives in storage. Used
// when editing a post: surviving URLs ride through without re-upload.
func (d *Draft) AttachExisting(url string) {
	if d.state == StateClosed || d.state == StateSubmitting {
		return
	}
	d.attachments = append(d.attachments, Attachment{ExistingURL: url})
	d.syncState()
}

// AttachFiles validates and stages a batch of new files. The whole batch is
// rejected when it would push the draft over the attachment cap; oversized
// videos are rejected individually and the rest of the batch still lands.
func (d *Draft) AttachFiles(files []media.File) []error {
	if d.state == StateClosed || d.state == StateSubmitting {
		return []error{models.NewValidationError("draft is not editable")}
	}

	accepted, errs := media.ValidateBatch(len(d.attachments), files)
	for _, f := range accepted {
		optimized := media.Optimize(f)
		att := Attachment{File: optimized}
		if d.previews != nil {
			att.PreviewHandle = d.previews.Acquire(optimized.Data)
		}
		d.attachments = append(d.attachments, att)
	}
	d.syncState()
	return errs
}

// RemoveAttachment drops the attachment at index and releases its preview.
func (d *Draft) RemoveAttachment(index int) error {
	if index < 0 || index >= len(d.attachments) {
		return models.NewValidationError("attachment index out of range")
	}
	att := d.attachments[index]
	if att.PreviewHandle != "" && d.previews != nil {
		d.previews.Release(att.PreviewHandle)
	}
	d.attachments = append(d.attachments[:index], d.attachments[index+1:]...)
	d.syncState()
	return nil
}

// Discard abandons the draft and releases every preview handle.
func (d *Draft) Discard() {
	d.releasePreviews()
	d.attachments = nil
	d.Content = ""
	d.state = StateEmpty
}

// Submittable reports whether the draft has enough content to post: either
// non-blank text or at least one attachment.
func (d *Draft) Submittable() bool {
	return strings.TrimSpace(d.Content) != "" || len(d.attachments) > 0
}

// Submit runs the draft through persist. A draft already submitting or
// closed is a no-op, which makes a double-click on submit harmless. On
// failure the draft returns to editing with everything intact; on success
// it closes and releases its previews.
func (d *Draft) Submit(ctx context.Context, persist func(ctx context.Context, d *Draft) error) error {
	if d.state == StateSubmitting || d.state == StateClosed {
		return nil
	}
	if !d.Submittable() {
		return models.NewValidationError("post must have text or at least one attachment")
	}

	d.state = StateSubmitting
	if err := persist(ctx, d); err != nil {
		d.state = StateEditing
		return err
	}

	d.releasePreviews()
	d.state = StateClosed
	return nil
}

func (d *Draft) releasePreviews() {
	if d.previews == nil {
		return
	}
	for _, att := range d.attachments {
		if att.PreviewHandle != "" {
			d.previews.Release(att.PreviewHandle)
		}
	}
}

func (d *Draft) syncState() {
	if d.state == StateSubmitting || d.state == StateClosed {
		return
	}
	if strings.TrimSpace(d.Content) == "" && len(d.attachments) == 0 {
		d.state = StateEmpty
	} else {
		d.state = StateEditing
	}
}
