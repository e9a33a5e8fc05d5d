// Package media classifies, validates and optimizes post attachments.
package media

import (
	"fmt"
	"mime"
	"path/filepath"
	"regexp"
	"strings"
)

// Kind of attachment, decided from the MIME type with a filename fallback.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
	KindOther Kind = "other"
)

// Attachment limits.
const (
	// MaxAttachments is the per-post attachment cap, counting both already
	// attached files and the incoming batch.
	MaxAttachments = 10
	// MaxVideoBytes is the per-file size cap for videos. Images have no size
	// cap; they go through the optimization pass instead.
	MaxVideoBytes = 50 * 1024 * 1024
)

var videoExtRegex = regexp.MustCompile(`(?i)\.(mp4|webm|mov)$`)

// File is one incoming attachment before upload.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Data        []byte
}

// Detect classifies a file by MIME type prefix, falling back to the filename
// extension for videos when the type is missing or generic.
func Detect(name, contentType string) Kind {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return KindImage
	case strings.HasPrefix(contentType, "video/"):
		return KindVideo
	}
	if videoExtRegex.MatchString(name) {
		return KindVideo
	}
	if ext := filepath.Ext(name); ext != "" {
		if t := mime.TypeByExtension(ext); strings.HasPrefix(t, "image/") {
			return KindImage
		}
	}
	return KindOther
}

// ValidateBatch checks an incoming batch against a draft that already holds
// existingCount attachments. The count rule rejects the whole batch: either
// every file in the selection is accepted or none is. The video size rule is
// per file; callers get back the subset that passed.
func ValidateBatch(existingCount int, files []File) ([]File, []error) {
	if existingCount+len(files) > MaxAttachments {
		return nil, []error{fmt.Errorf("you can attach at most %d files per post", MaxAttachments)}
	}

	accepted := make([]File, 0, len(files))
	var errs []error
	for _, f := range files {
		if Detect(f.Name, f.ContentType) == KindVideo && f.Size > MaxVideoBytes {
			errs = append(errs, fmt.Errorf("video %q exceeds the 50MB limit", f.Name))
			continue
		}
		accepted = append(accepted, f)
	}
	return accepted, errs
}
