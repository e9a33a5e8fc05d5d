package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"funprofile/internal/cache"
	"funprofile/internal/models"
)

// ProfileRepository handles profile rows and the honor counters on them.
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID uint) (*models.Profile, error)
	Update(ctx context.Context, profile *models.Profile) error
	UpdateAvatarURL(ctx context.Context, userID uint, url string) error
	HonorBoard(ctx context.Context, limit int) ([]models.Profile, error)
	RecomputeHonor(ctx context.Context, userID uint) error
	RecomputeAllHonor(ctx context.Context) error
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a gorm-backed ProfileRepository.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID uint) (*models.Profile, error) {
	return cache.Aside(ctx, cache.ProfileKey(userID), cache.ProfileTTL, func() (*models.Profile, error) {
		var profile models.Profile
		err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("profile", userID)
		}
		if err != nil {
			return nil, err
		}
		return &profile, nil
	})
}

func (r *profileRepository) Update(ctx context.Context, profile *models.Profile) error {
	if err := r.db.WithContext(ctx).Save(profile).Error; err != nil {
		return models.NewPersistenceError(err)
	}
	cache.InvalidateProfile(ctx, profile.UserID)
	return nil
}

func (r *profileRepository) UpdateAvatarURL(ctx context.Context, userID uint, url string) error {
	res := r.db.WithContext(ctx).Model(&models.Profile{}).
		Where("user_id = ?", userID).Update("avatar_url", url)
	if res.Error != nil {
		return models.NewPersistenceError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("profile", userID)
	}
	cache.InvalidateProfile(ctx, userID)
	return nil
}

// HonorBoard returns the top profiles by honor points.
func (r *profileRepository) HonorBoard(ctx context.Context, limit int) ([]models.Profile, error) {
	return cache.Aside(ctx, cache.HonorBoardKey(limit), cache.HonorTTL, func() ([]models.Profile, error) {
		var profiles []models.Profile
		err := r.db.WithContext(ctx).
			Order("honor_points_balance DESC, total_posts DESC").
			Limit(limit).Find(&profiles).Error
		return profiles, err
	})
}

// honorWeights for the points balance. Reactions and comments received are
// worth more than raw post volume.
const (
	honorPostWeight     = 1
	honorCommentWeight  = 3
	honorReactionWeight = 2
	honorShareWeight    = 5
	honorFriendWeight   = 2
)

// RecomputeHonor recalculates one user's honor counters from the source
// tables and writes them back in a single UPDATE.
func (r *profileRepository) RecomputeHonor(ctx context.Context, userID uint) error {
	counters, err := r.computeCounters(ctx, userID)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Model(&models.Profile{}).
		Where("user_id = ?", userID).Updates(counters).Error; err != nil {
		return models.NewPersistenceError(err)
	}
	cache.InvalidateProfile(ctx, userID)
	return nil
}

// RecomputeAllHonor recalculates counters for every profile. Runs on a cron
// schedule; per-user recompute after mutations keeps things fresh between
// runs.
func (r *profileRepository) RecomputeAllHonor(ctx context.Context) error {
	var userIDs []uint
	if err := r.db.WithContext(ctx).Model(&models.Profile{}).Pluck("user_id", &userIDs).Error; err != nil {
		return err
	}
	for _, id := range userIDs {
		if err := r.RecomputeHonor(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (r *profileRepository) computeCounters(ctx context.Context, userID uint) (map[string]interface{}, error) {
	db := r.db.WithContext(ctx)

	var totalPosts int64
	if err := db.Model(&models.Post{}).Where("user_id = ?", userID).Count(&totalPosts).Error; err != nil {
		return nil, err
	}

	ownPosts := db.Model(&models.Post{}).Select("id").Where("user_id = ?", userID)

	var commentsReceived int64
	if err := db.Model(&models.Comment{}).Where("post_id IN (?)", ownPosts).Count(&commentsReceived).Error; err != nil {
		return nil, err
	}

	var reactionsReceived int64
	if err := db.Model(&models.Interaction{}).Where("post_id IN (?)", ownPosts).Count(&reactionsReceived).Error; err != nil {
		return nil, err
	}

	var sharesReceived int64
	if err := db.Model(&models.Share{}).Where("post_id IN (?)", ownPosts).Count(&sharesReceived).Error; err != nil {
		return nil, err
	}

	var friendCount int64
	if err := db.Model(&models.Friendship{}).
		Where("status = ? AND (requester_id = ? OR addressee_id = ?)",
			models.FriendshipStatusAccepted, userID, userID).
		Count(&friendCount).Error; err != nil {
		return nil, err
	}

	balance := totalPosts*honorPostWeight +
		commentsReceived*honorCommentWeight +
		reactionsReceived*honorReactionWeight +
		sharesReceived*honorShareWeight +
		friendCount*honorFriendWeight

	return map[string]interface{}{
		"total_posts":              totalPosts,
		"total_comments_received":  commentsReceived,
		"total_reactions_received": reactionsReceived,
		"total_shares_received":    sharesReceived,
		"friend_count":             friendCount,
		"honor_points_balance":     balance,
	}, nil
}
