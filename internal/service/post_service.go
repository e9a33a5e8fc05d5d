// Package service contains the application's business logic.
package service

import (
	"context"
	"strings"

	"funprofile/internal/composer"
	"funprofile/internal/media"
	"funprofile/internal/models"
	"funprofile/internal/repository"
	"funprofile/internal/storage"
)

// PostInput carries the fields of a create or edit request.
type PostInput struct {
	Content      string
	PrivacyLevel string
	FeelingType  string
	FeelingText  string
	// ExistingURLs are attachments carried over from the stored post when
	// editing. They are trusted verbatim and never re-uploaded.
	ExistingURLs []string
	// NewFiles are freshly selected attachments to validate, optimize and
	// upload.
	NewFiles []media.File
}

// PostService owns the authoring pipeline and post mutations.
type PostService struct {
	posts    repository.PostRepository
	profiles repository.ProfileRepository
	uploader *composer.Uploader
	previews *media.PreviewRegistry
}

// NewPostService wires the post service.
func NewPostService(posts repository.PostRepository, profiles repository.ProfileRepository, bucket storage.Bucket) *PostService {
	return &PostService{
		posts:    posts,
		profiles: profiles,
		uploader: composer.NewUploader(bucket),
		previews: media.NewPreviewRegistry(),
	}
}

// Previews exposes the preview registry for handlers and tests.
func (s *PostService) Previews() *media.PreviewRegistry {
	return s.previews
}

// Create runs the full authoring pipeline: stage, validate, upload new
// media sequentially, then persist. The auth gate runs before any network
// work so an anonymous caller never costs an upload.
func (s *PostService) Create(ctx context.Context, userID uint, in PostInput, progress composer.ProgressFunc) (*models.Post, []error, error) {
	if userID == 0 {
		return nil, nil, models.NewUnauthorizedError("you must be signed in to post")
	}

	draft := composer.NewDraft(userID, s.previews)
	draft.SetContent(in.Content)
	if in.PrivacyLevel != "" {
		draft.PrivacyLevel = in.PrivacyLevel
	}
	draft.FeelingType = in.FeelingType
	draft.FeelingText = in.FeelingText

	for _, url := range in.ExistingURLs {
		draft.AttachExisting(url)
	}
	rejected := draft.AttachFiles(in.NewFiles)

	var post *models.Post
	err := draft.Submit(ctx, func(ctx context.Context, d *composer.Draft) error {
		urls, err := s.uploader.UploadAll(ctx, d.OwnerID, d.Attachments(), progress)
		if err != nil {
			return err
		}
		post = s.buildPost(d, urls)
		return s.posts.Create(ctx, post)
	})
	if err != nil {
		return nil, rejected, err
	}

	// Keep the author's honor counters warm; a stale counter until the next
	// cron run would be visible on the profile page.
	_ = s.profiles.RecomputeHonor(ctx, userID)
	return post, rejected, nil
}

// Update edits a post. Only the owner may edit. Existing URLs pass through
// without network calls; only newly added files upload.
func (s *PostService) Update(ctx context.Context, userID, postID uint, in PostInput, progress composer.ProgressFunc) (*models.Post, []error, error) {
	if userID == 0 {
		return nil, nil, models.NewUnauthorizedError("you must be signed in to edit posts")
	}

	stored, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, nil, err
	}
	if stored.UserID != userID {
		return nil, nil, models.NewUnauthorizedError("you can only edit your own posts")
	}

	draft := composer.NewDraft(userID, s.previews)
	draft.SetContent(in.Content)
	if in.PrivacyLevel != "" {
		draft.PrivacyLevel = in.PrivacyLevel
	} else {
		draft.PrivacyLevel = stored.PrivacyLevel
	}
	draft.FeelingType = in.FeelingType
	draft.FeelingText = in.FeelingText

	for _, url := range in.ExistingURLs {
		draft.AttachExisting(url)
	}
	rejected := draft.AttachFiles(in.NewFiles)

	err = draft.Submit(ctx, func(ctx context.Context, d *composer.Draft) error {
		urls, err := s.uploader.UploadAll(ctx, d.OwnerID, d.Attachments(), progress)
		if err != nil {
			return err
		}
		updated := s.buildPost(d, urls)
		updated.ID = stored.ID
		updated.CreatedAt = stored.CreatedAt
		stored = updated
		return s.posts.Update(ctx, stored)
	})
	if err != nil {
		return nil, rejected, err
	}
	return stored, rejected, nil
}

// Delete removes the post row. Media objects stay in storage; the row is
// the unit of deletion.
func (s *PostService) Delete(ctx context.Context, userID, postID uint) error {
	if userID == 0 {
		return models.NewUnauthorizedError("you must be signed in to delete posts")
	}
	stored, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if stored.UserID != userID {
		return models.NewUnauthorizedError("you can only delete your own posts")
	}
	if err := s.posts.Delete(ctx, postID); err != nil {
		return err
	}
	_ = s.profiles.RecomputeHonor(ctx, userID)
	return nil
}

// Feed returns a feed page for the viewer. viewerID zero means anonymous.
func (s *PostService) Feed(ctx context.Context, viewerID uint, page, limit int) ([]models.Post, error) {
	return s.posts.GetFeed(ctx, viewerID, page, limit)
}

// Get returns a single post with counters and author.
func (s *PostService) Get(ctx context.Context, postID uint) (*models.Post, error) {
	return s.posts.GetByID(ctx, postID)
}

// UserPosts returns a page of one user's posts.
func (s *PostService) UserPosts(ctx context.Context, userID uint, page, limit int) ([]models.Post, error) {
	return s.posts.GetByUserID(ctx, userID, page, limit)
}

// Comment adds a comment to a post.
func (s *PostService) Comment(ctx context.Context, userID, postID uint, content string) (*models.Comment, error) {
	if userID == 0 {
		return nil, models.NewUnauthorizedError("you must be signed in to comment")
	}
	if strings.TrimSpace(content) == "" {
		return nil, models.NewValidationError("comment cannot be empty")
	}
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	comment := &models.Comment{PostID: postID, UserID: userID, Content: content}
	if err := s.posts.AddComment(ctx, comment); err != nil {
		return nil, err
	}
	_ = s.profiles.RecomputeHonor(ctx, post.UserID)
	return comment, nil
}

// Comments returns a page of comments on a post.
func (s *PostService) Comments(ctx context.Context, postID uint, page, limit int) ([]models.Comment, error) {
	return s.posts.GetComments(ctx, postID, page, limit)
}

// React toggles the user's reaction on a post and reports whether it is
// active afterwards.
func (s *PostService) React(ctx context.Context, userID, postID uint, reactionType string) (bool, error) {
	if userID == 0 {
		return false, models.NewUnauthorizedError("you must be signed in to react")
	}
	if reactionType == "" {
		reactionType = "like"
	}
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return false, err
	}
	active, err := s.posts.ToggleReaction(ctx, postID, userID, reactionType)
	if err != nil {
		return false, err
	}
	_ = s.profiles.RecomputeHonor(ctx, post.UserID)
	return active, nil
}

// Share records a share of a post.
func (s *PostService) Share(ctx context.Context, userID, postID uint) error {
	if userID == 0 {
		return models.NewUnauthorizedError("you must be signed in to share")
	}
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if err := s.posts.AddShare(ctx, postID, userID); err != nil {
		return err
	}
	_ = s.profiles.RecomputeHonor(ctx, post.UserID)
	return nil
}

func (s *PostService) buildPost(d *composer.Draft, urls []string) *models.Post {
	post := &models.Post{
		UserID:       d.OwnerID,
		MediaURLs:    urls,
		PrivacyLevel: d.PrivacyLevel,
	}
	if trimmed := strings.TrimSpace(d.Content); trimmed != "" {
		post.Content = &d.Content
	}
	if d.FeelingType != "" {
		ft := d.FeelingType
		post.FeelingType = &ft
	}
	if d.FeelingText != "" {
		ft := d.FeelingText
		post.FeelingText = &ft
	}
	return post
}
