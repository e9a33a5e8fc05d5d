package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"funprofile/internal/cache"
	"funprofile/internal/models"
)

// PostRepository handles feed posts and their engagement rows.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetFeed(ctx context.Context, viewerID uint, page, limit int) ([]models.Post, error)
	GetByUserID(ctx context.Context, userID uint, page, limit int) ([]models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error

	AddComment(ctx context.Context, comment *models.Comment) error
	GetComments(ctx context.Context, postID uint, page, limit int) ([]models.Comment, error)
	ToggleReaction(ctx context.Context, postID, userID uint, reactionType string) (bool, error)
	AddShare(ctx context.Context, postID, userID uint) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a gorm-backed PostRepository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// loadCounters fills the computed counters on a batch of posts with three
// grouped queries instead of N correlated subqueries per page. Handlers
// never store or update counters; they are always derived.
func (r *postRepository) loadCounters(ctx context.Context, posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]uint, len(posts))
	index := make(map[uint]*models.Post, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
		index[posts[i].ID] = &posts[i]
	}

	type countRow struct {
		PostID uint
		N      int64
	}

	var rows []countRow
	if err := r.db.WithContext(ctx).Model(&models.Interaction{}).
		Select("post_id, COUNT(*) AS n").Where("post_id IN ?", ids).
		Group("post_id").Scan(&rows).Error; err != nil {
		return err
	}
	for _, row := range rows {
		index[row.PostID].ReactionCount = row.N
	}

	rows = rows[:0]
	if err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Select("post_id, COUNT(*) AS n").Where("post_id IN ?", ids).
		Group("post_id").Scan(&rows).Error; err != nil {
		return err
	}
	for _, row := range rows {
		index[row.PostID].CommentCount = row.N
	}

	rows = rows[:0]
	if err := r.db.WithContext(ctx).Model(&models.Share{}).
		Select("post_id, COUNT(*) AS n").Where("post_id IN ?", ids).
		Group("post_id").Scan(&rows).Error; err != nil {
		return err
	}
	for _, row := range rows {
		index[row.PostID].ShareCount = row.N
	}
	return nil
}

// loadAuthors attaches the author profiles to a batch of posts.
func (r *postRepository) loadAuthors(ctx context.Context, posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	userIDs := make([]uint, 0, len(posts))
	seen := make(map[uint]bool, len(posts))
	for _, p := range posts {
		if !seen[p.UserID] {
			seen[p.UserID] = true
			userIDs = append(userIDs, p.UserID)
		}
	}

	var profiles []models.Profile
	if err := r.db.WithContext(ctx).Where("user_id IN ?", userIDs).Find(&profiles).Error; err != nil {
		return err
	}
	byUser := make(map[uint]*models.Profile, len(profiles))
	for i := range profiles {
		byUser[profiles[i].UserID] = &profiles[i]
	}
	for i := range posts {
		posts[i].Author = byUser[posts[i].UserID]
	}
	return nil
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewPersistenceError(err)
	}
	cache.InvalidateFeed(ctx)
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return cache.Aside(ctx, cache.PostKey(id), cache.PostTTL, func() (*models.Post, error) {
		var post models.Post
		err := r.db.WithContext(ctx).First(&post, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("post", id)
		}
		if err != nil {
			return nil, err
		}
		posts := []models.Post{post}
		if err := r.loadCounters(ctx, posts); err != nil {
			return nil, err
		}
		if err := r.loadAuthors(ctx, posts); err != nil {
			return nil, err
		}
		return &posts[0], nil
	})
}

// GetFeed returns a page of posts visible to viewerID: public posts, the
// viewer's own posts, and friends-only posts from accepted friends.
func (r *postRepository) GetFeed(ctx context.Context, viewerID uint, page, limit int) ([]models.Post, error) {
	fetch := func() ([]models.Post, error) {
		var posts []models.Post
		q := r.db.WithContext(ctx).Order("created_at DESC").
			Offset((page - 1) * limit).Limit(limit)

		if viewerID == 0 {
			q = q.Where("privacy_level = ?", models.PrivacyPublic)
		} else {
			friendIDs := r.db.Model(&models.Friendship{}).
				Select("CASE WHEN requester_id = ? THEN addressee_id ELSE requester_id END", viewerID).
				Where("status = ? AND (requester_id = ? OR addressee_id = ?)",
					models.FriendshipStatusAccepted, viewerID, viewerID)
			q = q.Where("privacy_level = ? OR user_id = ? OR (privacy_level = ? AND user_id IN (?))",
				models.PrivacyPublic, viewerID, models.PrivacyFriends, friendIDs)
		}

		if err := q.Find(&posts).Error; err != nil {
			return nil, err
		}
		if err := r.loadCounters(ctx, posts); err != nil {
			return nil, err
		}
		if err := r.loadAuthors(ctx, posts); err != nil {
			return nil, err
		}
		return posts, nil
	}

	// Only the anonymous public feed is cached; a per-viewer feed would
	// fragment the cache without helping hit rate.
	if viewerID == 0 {
		return cache.Aside(ctx, cache.FeedKey(page, limit), cache.FeedTTL, fetch)
	}
	return fetch()
}

func (r *postRepository) GetByUserID(ctx context.Context, userID uint, page, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	if err := r.loadCounters(ctx, posts); err != nil {
		return nil, err
	}
	if err := r.loadAuthors(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Save(post).Error; err != nil {
		return models.NewPersistenceError(err)
	}
	cache.InvalidatePost(ctx, post.ID)
	return nil
}

// Delete soft-deletes the post row only. Engagement rows and media objects
// stay behind; orphaned media is an accepted tradeoff, cleanup is a
// storage-side job.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	if res.Error != nil {
		return models.NewPersistenceError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("post", id)
	}
	cache.InvalidatePost(ctx, id)
	return nil
}

func (r *postRepository) AddComment(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return models.NewPersistenceError(err)
	}
	cache.InvalidatePost(ctx, comment.PostID)
	return nil
}

func (r *postRepository) GetComments(ctx context.Context, postID uint, page, limit int) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).Where("post_id = ?", postID).
		Order("created_at ASC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&comments).Error
	return comments, err
}

// ToggleReaction adds or removes the user's reaction on a post and reports
// whether a reaction exists afterwards.
func (r *postRepository) ToggleReaction(ctx context.Context, postID, userID uint, reactionType string) (bool, error) {
	var active bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Interaction
		err := tx.Where("post_id = ? AND user_id = ?", postID, userID).First(&existing).Error
		switch {
		case err == nil:
			if existing.Type == reactionType {
				active = false
				return tx.Delete(&existing).Error
			}
			existing.Type = reactionType
			active = true
			return tx.Save(&existing).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			active = true
			return tx.Create(&models.Interaction{
				PostID: postID,
				UserID: userID,
				Type:   reactionType,
			}).Error
		default:
			return err
		}
	})
	if err != nil {
		return false, models.NewPersistenceError(err)
	}
	cache.InvalidatePost(ctx, postID)
	return active, nil
}

func (r *postRepository) AddShare(ctx context.Context, postID, userID uint) error {
	if err := r.db.WithContext(ctx).Create(&models.Share{PostID: postID, UserID: userID}).Error; err != nil {
		return models.NewPersistenceError(err)
	}
	cache.InvalidatePost(ctx, postID)
	return nil
}
