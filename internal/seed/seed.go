// Package seed populates a development database with plausible data.
package seed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"funprofile/internal/models"
	"funprofile/internal/repository"
)

// Run fills the database with users, posts, engagement rows, friendships
// and wallet data. Idempotence is not a goal; run against a fresh database.
func Run(ctx context.Context, db *gorm.DB, userCount, postsPerUser int) error {
	gofakeit.Seed(0)

	users := repository.NewUserRepository(db)
	profiles := repository.NewProfileRepository(db)

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		return err
	}

	created := make([]*models.User, 0, userCount)
	for i := 0; i < userCount; i++ {
		user := &models.User{
			Username: fmt.Sprintf("%s%d", gofakeit.Username(), i),
			Email:    fmt.Sprintf("%d_%s", i, gofakeit.Email()),
			Password: string(hashed),
		}
		if err := users.Create(ctx, user); err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}
		if err := db.WithContext(ctx).Model(&models.Profile{}).
			Where("user_id = ?", user.ID).
			Updates(map[string]interface{}{
				"bio":            gofakeit.Sentence(12),
				"wallet_address": "0x" + gofakeit.Regex("[a-f0-9]{40}"),
			}).Error; err != nil {
			return err
		}
		created = append(created, user)
	}

	feelings := []string{"happy", "excited", "grateful", "thoughtful"}
	for _, user := range created {
		for i := 0; i < postsPerUser; i++ {
			content := gofakeit.Paragraph(1, 3, 10, " ")
			post := models.Post{
				UserID:       user.ID,
				Content:      &content,
				PrivacyLevel: models.PrivacyPublic,
			}
			if gofakeit.Bool() {
				feeling := feelings[gofakeit.Number(0, len(feelings)-1)]
				post.FeelingType = &feeling
			}
			if err := db.WithContext(ctx).Create(&post).Error; err != nil {
				return err
			}

			for _, other := range created {
				if other.ID == user.ID || !gofakeit.Bool() {
					continue
				}
				db.WithContext(ctx).Create(&models.Interaction{PostID: post.ID, UserID: other.ID, Type: "like"})
				if gofakeit.Bool() {
					db.WithContext(ctx).Create(&models.Comment{
						PostID: post.ID, UserID: other.ID, Content: gofakeit.Sentence(8),
					})
				}
			}
		}
	}

	// A few accepted friendships and wallet rows round out the dataset.
	for i := 1; i < len(created); i++ {
		db.WithContext(ctx).Create(&models.Friendship{
			RequesterID: created[i-1].ID,
			AddresseeID: created[i].ID,
			Status:      models.FriendshipStatusAccepted,
		})
		db.WithContext(ctx).Create(&models.WalletContact{
			UserID:               created[i].ID,
			ContactName:          gofakeit.Name(),
			ContactWalletAddress: "0x" + gofakeit.Regex("[a-f0-9]{40}"),
		})
	}

	if err := profiles.RecomputeAllHonor(ctx); err != nil {
		return err
	}

	slog.Info("seed complete", "users", userCount, "posts_per_user", postsPerUser)
	return nil
}
