package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"funprofile/internal/media"
	"funprofile/internal/models"
	"funprofile/internal/repository"
	"funprofile/internal/storage"
	"funprofile/internal/validation"
)

// ProfileService owns profile reads, avatar replacement and the honor
// board.
type ProfileService struct {
	profiles repository.ProfileRepository
	avatars  storage.Bucket
	now      func() time.Time
}

// NewProfileService wires the profile service.
func NewProfileService(profiles repository.ProfileRepository, avatars storage.Bucket) *ProfileService {
	return &ProfileService{profiles: profiles, avatars: avatars, now: time.Now}
}

// Get returns a user's profile.
func (s *ProfileService) Get(ctx context.Context, userID uint) (*models.Profile, error) {
	return s.profiles.GetByUserID(ctx, userID)
}

// UpdateBio updates the profile bio.
func (s *ProfileService) UpdateBio(ctx context.Context, userID uint, bio string) (*models.Profile, error) {
	if len(bio) > 500 {
		return nil, models.NewValidationError("bio must be at most 500 characters")
	}
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile.Bio = bio
	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// UpdateUsername changes the profile display name.
func (s *ProfileService) UpdateUsername(ctx context.Context, userID uint, username string) (*models.Profile, error) {
	if err := validation.ValidateUsername(username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile.Username = username
	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// SetWalletAddress links a wallet address to the profile.
func (s *ProfileService) SetWalletAddress(ctx context.Context, userID uint, address string) (*models.Profile, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile.WalletAddress = address
	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// ReplaceAvatar uploads the new avatar first and removes the previous
// objects only after the profile row points at the new URL. A crash between
// the two steps leaves a stray object, never a profile with a dead URL.
func (s *ProfileService) ReplaceAvatar(ctx context.Context, userID uint, f media.File) (string, error) {
	if media.Detect(f.Name, f.ContentType) != media.KindImage {
		return "", models.NewValidationError("avatar must be an image")
	}

	prefix := fmt.Sprintf("%d/", userID)
	old, err := s.avatars.List(ctx, prefix)
	if err != nil {
		return "", models.NewUploadError(err)
	}

	optimized := media.Optimize(f)
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(f.Name), "."))
	if ext == "" {
		ext = "jpg"
	}
	key := fmt.Sprintf("%d/%d.%s", userID, s.now().UnixMilli(), ext)

	url, err := s.avatars.Upload(ctx, key, optimized.ContentType, bytes.NewReader(optimized.Data), optimized.Size)
	if err != nil {
		return "", models.NewUploadError(err)
	}

	if err := s.profiles.UpdateAvatarURL(ctx, userID, url); err != nil {
		return "", err
	}

	for _, k := range old {
		if k == key {
			continue
		}
		if err := s.avatars.Remove(ctx, k); err != nil {
			slog.WarnContext(ctx, "failed to remove old avatar", "key", k, "error", err)
		}
	}
	return url, nil
}

// HonorBoard returns the top profiles by honor points.
func (s *ProfileService) HonorBoard(ctx context.Context, limit int) ([]models.Profile, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.profiles.HonorBoard(ctx, limit)
}
