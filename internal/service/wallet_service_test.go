package service

import (
	"bytes"
	"context"
	"image/png"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"funprofile/internal/config"
	"funprofile/internal/models"
	"funprofile/internal/repository"
	"funprofile/internal/testutil"
)

var txHashRegex = regexp.MustCompile(`^0x[0-9a-f]{64}$`)

func newWalletServiceFixture(t *testing.T) (*WalletService, *gorm.DB, *models.User) {
	t.Helper()
	db := testutil.NewTestDB(t)
	testutil.NewTestRedis(t)

	user := &models.User{Username: "walletowner", Email: "wallet@example.com", Password: "x"}
	require.NoError(t, repository.NewUserRepository(db).Create(context.Background(), user))

	cfg := &config.Config{
		WalletChainName:    "BNB Smart Chain",
		WalletChainID:      56,
		WalletExplorerURL:  "https://bscscan.com/tx/",
		WalletDefaultToken: "ETH",
	}
	svc := NewWalletService(repository.NewWalletRepository(db), repository.NewProfileRepository(db), cfg)
	svc.delay = 0
	return svc, db, user
}

const testAddress = "0x1234567890abcdef1234567890abcdef12345678"

func TestSimulateSendFabricatesHashAndRecords(t *testing.T) {
	svc, _, user := newWalletServiceFixture(t)
	ctx := context.Background()

	result, err := svc.SimulateSend(ctx, user.ID, testAddress, 1.5, "")
	require.NoError(t, err)

	assert.Regexp(t, txHashRegex, result.Transaction.TxHash)
	assert.Equal(t, models.TransactionTypeSend, result.Transaction.Type)
	assert.Equal(t, 1.5, result.Transaction.Amount)
	// Empty token falls back to the configured default.
	assert.Equal(t, "ETH", result.Transaction.Token)
	assert.Equal(t, "https://bscscan.com/tx/"+result.Transaction.TxHash, result.ExplorerURL)

	history, err := svc.History(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, result.Transaction.TxHash, history[0].TxHash)
}

func TestSimulateSendResolvesContactName(t *testing.T) {
	svc, _, user := newWalletServiceFixture(t)
	ctx := context.Background()

	_, err := svc.AddContact(ctx, user.ID, "Ada", testAddress)
	require.NoError(t, err)

	result, err := svc.SimulateSend(ctx, user.ID, testAddress, 2, "BNB")
	require.NoError(t, err)
	assert.Equal(t, "Ada", result.ReceiverName)
	assert.Contains(t, result.Transaction.Description, "Ada")
}

func TestSimulateSendValidation(t *testing.T) {
	svc, _, user := newWalletServiceFixture(t)
	ctx := context.Background()

	_, err := svc.SimulateSend(ctx, user.ID, "not-an-address", 1, "ETH")
	assert.True(t, models.IsCode(err, "VALIDATION_ERROR"))

	_, err = svc.SimulateSend(ctx, user.ID, testAddress, 0, "ETH")
	assert.True(t, models.IsCode(err, "VALIDATION_ERROR"))

	_, err = svc.SimulateSend(ctx, 0, testAddress, 1, "ETH")
	assert.True(t, models.IsCode(err, "UNAUTHORIZED"))
}

func TestReceiveRequiresLinkedAddress(t *testing.T) {
	svc, db, user := newWalletServiceFixture(t)
	ctx := context.Background()

	_, err := svc.Receive(ctx, user.ID)
	assert.True(t, models.IsCode(err, "VALIDATION_ERROR"))

	require.NoError(t, db.Model(&models.Profile{}).Where("user_id = ?", user.ID).
		Update("wallet_address", testAddress).Error)
	// Drop the cached profile from the failed attempt.
	testutil.NewTestRedis(t)

	info, err := svc.Receive(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, testAddress, info.Address)
	assert.Equal(t, "BNB Smart Chain", info.ChainName)
	assert.Equal(t, 56, info.ChainID)

	// The QR payload is a decodable PNG.
	img, err := png.Decode(bytes.NewReader(info.QRCodePNG))
	require.NoError(t, err)
	assert.Equal(t, 256, img.Bounds().Dx())
}

func TestAddContactValidation(t *testing.T) {
	svc, _, user := newWalletServiceFixture(t)
	ctx := context.Background()

	_, err := svc.AddContact(ctx, user.ID, "", testAddress)
	assert.True(t, models.IsCode(err, "VALIDATION_ERROR"))

	_, err = svc.AddContact(ctx, user.ID, "Bob", "bad")
	assert.True(t, models.IsCode(err, "VALIDATION_ERROR"))

	contacts, err := svc.Contacts(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, contacts)
}
