package models

import (
	"time"

	"gorm.io/gorm"
)

// Privacy levels for posts.
const (
	PrivacyPublic  = "public"
	PrivacyFriends = "friends"
)

// Post is a feed entry. Content is optional as long as the post carries
// media; the composer enforces that at least one of the two is present.
// MediaURLs keeps upload order, which is also display order.
type Post struct {
	ID           uint     `gorm:"primaryKey" json:"id"`
	UserID       uint     `gorm:"not null;index" json:"user_id"`
	Content      *string  `json:"content"`
	MediaURLs    []string `gorm:"serializer:json" json:"media_urls"`
	PrivacyLevel string   `gorm:"type:varchar(20);default:'public'" json:"privacy_level"`
	FeelingType  *string  `json:"feeling_type"`
	FeelingText  *string  `json:"feeling_text"`

	// Counters are computed at query time from interactions/comments/shares;
	// request handlers never write them.
	ReactionCount int64 `gorm:"-" json:"reaction_count"`
	CommentCount  int64 `gorm:"-" json:"comment_count"`
	ShareCount    int64 `gorm:"-" json:"share_count"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	User   User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Author *Profile `gorm:"-" json:"author,omitempty"`
}

// Comment is a reply on a post.
type Comment struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	PostID    uint           `gorm:"not null;index" json:"post_id"`
	UserID    uint           `gorm:"not null" json:"user_id"`
	Content   string         `gorm:"not null" json:"content"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Interaction is a reaction on a post (like, love, ...). One row per
// user/post pair; the type distinguishes the reaction flavor.
type Interaction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_interaction_user_post" json:"post_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_interaction_user_post" json:"user_id"`
	Type      string    `gorm:"type:varchar(20);default:'like'" json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

// Share records a user re-sharing a post.
type Share struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	UserID    uint      `gorm:"not null" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
