// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an authenticated account. Display data and honor counters
// live on the associated Profile row.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"unique;not null" json:"username"`
	Email     string         `gorm:"unique;not null" json:"email"`
	Password  string         `gorm:"not null" json:"-"`
	IsAdmin   bool           `gorm:"default:false" json:"is_admin"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Profile *Profile `gorm:"foreignKey:UserID" json:"profile,omitempty"`
	Posts   []Post   `gorm:"foreignKey:UserID" json:"posts,omitempty"`
}

// Profile holds the public-facing identity of a user plus the honor board
// counters. The counters are read-mostly display values recomputed by the
// honor job, never written by request handlers.
type Profile struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	UserID    uint   `gorm:"uniqueIndex;not null" json:"user_id"`
	Username  string `gorm:"not null" json:"username"`
	AvatarURL string `json:"avatar_url"`
	Bio       string `json:"bio"`

	// Honor board counters (server-authoritative, recomputed periodically)
	TotalPosts             int64 `gorm:"default:0" json:"total_posts"`
	TotalCommentsReceived  int64 `gorm:"default:0" json:"total_comments_received"`
	TotalReactionsReceived int64 `gorm:"default:0" json:"total_reactions_received"`
	TotalSharesReceived    int64 `gorm:"default:0" json:"total_shares_received"`
	FriendCount            int64 `gorm:"default:0" json:"friend_count"`
	HonorPointsBalance     int64 `gorm:"default:0" json:"honor_points_balance"`

	WalletAddress string `json:"wallet_address"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
