package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"funprofile/internal/models"
	"funprofile/internal/testutil"
)

func TestWalletHistoryLimitAndOrder(t *testing.T) {
	db := testutil.NewTestDB(t)
	testutil.NewTestRedis(t)
	ctx := context.Background()

	user := seedUser(t, db, "walletuser")
	repo := NewWalletRepository(db)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 15; i++ {
		tx := models.Transaction{
			UserID:      user.ID,
			Type:        models.TransactionTypeSend,
			Amount:      float64(i),
			Token:       "ETH",
			Description: fmt.Sprintf("tx %d", i),
			TxHash:      fmt.Sprintf("0x%064d", i),
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.Create(&tx).Error)
	}

	history, err := repo.History(ctx, user.ID)
	require.NoError(t, err)
	// Capped at 10, newest first.
	require.Len(t, history, 10)
	assert.Equal(t, "tx 14", history[0].Description)
	assert.Equal(t, "tx 5", history[9].Description)
}

func TestWalletContactResolution(t *testing.T) {
	db := testutil.NewTestDB(t)
	testutil.NewTestRedis(t)
	ctx := context.Background()

	user := seedUser(t, db, "contactowner")
	repo := NewWalletRepository(db)

	addr := "0x" + fmt.Sprintf("%040d", 7)
	require.NoError(t, repo.AddContact(ctx, &models.WalletContact{
		UserID: user.ID, ContactName: "Ada", ContactWalletAddress: addr,
	}))

	contact, err := repo.FindContactByAddress(ctx, user.ID, addr)
	require.NoError(t, err)
	require.NotNil(t, contact)
	assert.Equal(t, "Ada", contact.ContactName)

	// Unknown addresses are legitimate; no error, no contact.
	contact, err = repo.FindContactByAddress(ctx, user.ID, "0x"+fmt.Sprintf("%040d", 8))
	require.NoError(t, err)
	assert.Nil(t, contact)
}

func TestWalletAddTransactionInvalidatesCache(t *testing.T) {
	db := testutil.NewTestDB(t)
	testutil.NewTestRedis(t)
	ctx := context.Background()

	user := seedUser(t, db, "cacheduser")
	repo := NewWalletRepository(db)

	history, err := repo.History(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, history)

	require.NoError(t, repo.AddTransaction(ctx, &models.Transaction{
		UserID: user.ID, Type: models.TransactionTypeSend, Amount: 1, Token: "ETH", TxHash: "0xabc",
	}))

	// The cached empty page was dropped on write.
	history, err = repo.History(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}
