package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"funprofile/internal/cache"
	"funprofile/internal/models"
)

// FriendshipRepository handles friend requests and accepted links.
type FriendshipRepository interface {
	Request(ctx context.Context, requesterID, addresseeID uint) (*models.Friendship, error)
	Accept(ctx context.Context, addresseeID, requesterID uint) (*models.Friendship, error)
	FriendIDs(ctx context.Context, userID uint) ([]uint, error)
	PendingFor(ctx context.Context, addresseeID uint) ([]models.Friendship, error)
}

type friendshipRepository struct {
	db *gorm.DB
}

// NewFriendshipRepository creates a gorm-backed FriendshipRepository.
func NewFriendshipRepository(db *gorm.DB) FriendshipRepository {
	return &friendshipRepository{db: db}
}

// Request creates a pending friendship. Requesting someone who already
// requested you accepts instead, and a duplicate in either direction is
// rejected.
func (r *friendshipRepository) Request(ctx context.Context, requesterID, addresseeID uint) (*models.Friendship, error) {
	if requesterID == addresseeID {
		return nil, models.NewValidationError("you cannot befriend yourself")
	}

	var existing models.Friendship
	err := r.db.WithContext(ctx).
		Where("(requester_id = ? AND addressee_id = ?) OR (requester_id = ? AND addressee_id = ?)",
			requesterID, addresseeID, addresseeID, requesterID).
		First(&existing).Error
	switch {
	case err == nil:
		if existing.Status == models.FriendshipStatusPending && existing.RequesterID == addresseeID {
			return r.Accept(ctx, requesterID, addresseeID)
		}
		return nil, models.NewValidationError("friendship already exists")
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	friendship := &models.Friendship{
		RequesterID: requesterID,
		AddresseeID: addresseeID,
		Status:      models.FriendshipStatusPending,
	}
	if err := r.db.WithContext(ctx).Create(friendship).Error; err != nil {
		return nil, models.NewPersistenceError(err)
	}
	return friendship, nil
}

// Accept moves a pending request addressed to addresseeID into accepted.
func (r *friendshipRepository) Accept(ctx context.Context, addresseeID, requesterID uint) (*models.Friendship, error) {
	var friendship models.Friendship
	err := r.db.WithContext(ctx).
		Where("requester_id = ? AND addressee_id = ? AND status = ?",
			requesterID, addresseeID, models.FriendshipStatusPending).
		First(&friendship).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("friend request", requesterID)
	}
	if err != nil {
		return nil, err
	}

	friendship.Status = models.FriendshipStatusAccepted
	if err := r.db.WithContext(ctx).Save(&friendship).Error; err != nil {
		return nil, models.NewPersistenceError(err)
	}

	// Friend counts changed on both sides.
	cache.InvalidateProfile(ctx, requesterID)
	cache.InvalidateProfile(ctx, addresseeID)
	return &friendship, nil
}

// FriendIDs returns the user ids of accepted friends.
func (r *friendshipRepository) FriendIDs(ctx context.Context, userID uint) ([]uint, error) {
	var friendships []models.Friendship
	err := r.db.WithContext(ctx).
		Where("status = ? AND (requester_id = ? OR addressee_id = ?)",
			models.FriendshipStatusAccepted, userID, userID).
		Find(&friendships).Error
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(friendships))
	for _, f := range friendships {
		if f.RequesterID == userID {
			ids = append(ids, f.AddresseeID)
		} else {
			ids = append(ids, f.RequesterID)
		}
	}
	return ids, nil
}

// PendingFor returns requests waiting on the user's answer.
func (r *friendshipRepository) PendingFor(ctx context.Context, addresseeID uint) ([]models.Friendship, error) {
	var friendships []models.Friendship
	err := r.db.WithContext(ctx).
		Where("addressee_id = ? AND status = ?", addresseeID, models.FriendshipStatusPending).
		Order("created_at DESC").
		Find(&friendships).Error
	return friendships, err
}
