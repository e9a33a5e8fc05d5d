package repository

import (
	"context"

	"gorm.io/gorm"

	"funprofile/internal/cache"
	"funprofile/internal/models"
)

// walletHistoryLimit is the number of rows shown in the history tab.
const walletHistoryLimit = 10

// WalletRepository handles the simulated wallet's history and contacts.
type WalletRepository interface {
	AddTransaction(ctx context.Context, tx *models.Transaction) error
	History(ctx context.Context, userID uint) ([]models.Transaction, error)
	Contacts(ctx context.Context, userID uint) ([]models.WalletContact, error)
	AddContact(ctx context.Context, contact *models.WalletContact) error
	FindContactByAddress(ctx context.Context, userID uint, address string) (*models.WalletContact, error)
}

type walletRepository struct {
	db *gorm.DB
}

// NewWalletRepository creates a gorm-backed WalletRepository.
func NewWalletRepository(db *gorm.DB) WalletRepository {
	return &walletRepository{db: db}
}

func (r *walletRepository) AddTransaction(ctx context.Context, tx *models.Transaction) error {
	if err := r.db.WithContext(ctx).Create(tx).Error; err != nil {
		return models.NewPersistenceError(err)
	}
	cache.InvalidateWallet(ctx, tx.UserID)
	return nil
}

// History returns the newest transactions first, capped at the display
// limit.
func (r *walletRepository) History(ctx context.Context, userID uint) ([]models.Transaction, error) {
	return cache.Aside(ctx, cache.WalletHistoryKey(userID), cache.WalletTTL, func() ([]models.Transaction, error) {
		var txs []models.Transaction
		err := r.db.WithContext(ctx).Where("user_id = ?", userID).
			Order("created_at DESC").Limit(walletHistoryLimit).Find(&txs).Error
		return txs, err
	})
}

func (r *walletRepository) Contacts(ctx context.Context, userID uint) ([]models.WalletContact, error) {
	var contacts []models.WalletContact
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("contact_name ASC").Find(&contacts).Error
	return contacts, err
}

func (r *walletRepository) AddContact(ctx context.Context, contact *models.WalletContact) error {
	if err := r.db.WithContext(ctx).Create(contact).Error; err != nil {
		return models.NewPersistenceError(err)
	}
	return nil
}

// FindContactByAddress resolves a receiver address to a saved contact.
// Returns nil without error when no contact matches; unknown receivers are
// legitimate.
func (r *walletRepository) FindContactByAddress(ctx context.Context, userID uint, address string) (*models.WalletContact, error) {
	var contact models.WalletContact
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND contact_wallet_address = ?", userID, address).
		First(&contact).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &contact, nil
}
