package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/skip2/go-qrcode"

	"funprofile/internal/config"
	"funprofile/internal/middleware"
	"funprofile/internal/models"
	"funprofile/internal/repository"
	"funprofile/internal/validation"
)

// simulatedConfirmDelay imitates the wait for a chain confirmation. The
// send flow is a simulation end to end; no network leaves the process.
const simulatedConfirmDelay = 2 * time.Second

// SendResult is the outcome of a simulated send.
type SendResult struct {
	Transaction  models.Transaction `json:"transaction"`
	ReceiverName string             `json:"receiver_name,omitempty"`
	ExplorerURL  string             `json:"explorer_url"`
}

// ReceiveInfo is what the receive tab shows: the user's address plus a QR
// code encoding it.
type ReceiveInfo struct {
	Address   string `json:"address"`
	ChainName string `json:"chain_name"`
	ChainID   int    `json:"chain_id"`
	QRCodePNG []byte `json:"qr_code_png"`
}

// WalletService implements the simulated crypto wallet panel.
type WalletService struct {
	wallets  repository.WalletRepository
	profiles repository.ProfileRepository
	cfg      *config.Config

	// delay is swappable so tests do not sleep.
	delay time.Duration
}

// NewWalletService wires the wallet service.
func NewWalletService(wallets repository.WalletRepository, profiles repository.ProfileRepository, cfg *config.Config) *WalletService {
	return &WalletService{
		wallets:  wallets,
		profiles: profiles,
		cfg:      cfg,
		delay:    simulatedConfirmDelay,
	}
}

// SimulateSend fabricates a transaction: wait out the fake confirmation
// delay, mint a random tx hash, and record the row in the history. Nothing
// touches a real chain.
func (s *WalletService) SimulateSend(ctx context.Context, userID uint, toAddress string, amount float64, token string) (*SendResult, error) {
	if userID == 0 {
		return nil, models.NewUnauthorizedError("you must be signed in to use the wallet")
	}
	if err := validation.ValidateWalletAddress(toAddress); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if amount <= 0 {
		return nil, models.NewValidationError("amount must be positive")
	}
	if token == "" {
		token = s.cfg.WalletDefaultToken
	}

	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	hash, err := fabricateTxHash()
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	receiverName := ""
	if contact, err := s.wallets.FindContactByAddress(ctx, userID, toAddress); err == nil && contact != nil {
		receiverName = contact.ContactName
	}

	description := fmt.Sprintf("Sent %g %s to %s", amount, token, shortAddress(toAddress))
	if receiverName != "" {
		description = fmt.Sprintf("Sent %g %s to %s", amount, token, receiverName)
	}

	tx := models.Transaction{
		UserID:      userID,
		Type:        models.TransactionTypeSend,
		Amount:      amount,
		Token:       token,
		Description: description,
		TxHash:      hash,
	}
	if err := s.wallets.AddTransaction(ctx, &tx); err != nil {
		return nil, err
	}
	middleware.WalletSimulatedSends.Inc()

	return &SendResult{
		Transaction:  tx,
		ReceiverName: receiverName,
		ExplorerURL:  s.cfg.WalletExplorerURL + hash,
	}, nil
}

// History returns the user's recent transactions, newest first.
func (s *WalletService) History(ctx context.Context, userID uint) ([]models.Transaction, error) {
	if userID == 0 {
		return nil, models.NewUnauthorizedError("you must be signed in to use the wallet")
	}
	return s.wallets.History(ctx, userID)
}

// Contacts returns the user's saved address book.
func (s *WalletService) Contacts(ctx context.Context, userID uint) ([]models.WalletContact, error) {
	if userID == 0 {
		return nil, models.NewUnauthorizedError("you must be signed in to use the wallet")
	}
	return s.wallets.Contacts(ctx, userID)
}

// AddContact saves an address book entry.
func (s *WalletService) AddContact(ctx context.Context, userID uint, name, address string) (*models.WalletContact, error) {
	if userID == 0 {
		return nil, models.NewUnauthorizedError("you must be signed in to use the wallet")
	}
	if name == "" {
		return nil, models.NewValidationError("contact name is required")
	}
	if err := validation.ValidateWalletAddress(address); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	contact := &models.WalletContact{
		UserID:               userID,
		ContactName:          name,
		ContactWalletAddress: address,
	}
	if err := s.wallets.AddContact(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

// Receive builds the receive tab payload for the user's linked address.
func (s *WalletService) Receive(ctx context.Context, userID uint) (*ReceiveInfo, error) {
	if userID == 0 {
		return nil, models.NewUnauthorizedError("you must be signed in to use the wallet")
	}
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile.WalletAddress == "" {
		return nil, models.NewValidationError("no wallet address linked to this profile")
	}

	png, err := qrcode.Encode(profile.WalletAddress, qrcode.Medium, 256)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	return &ReceiveInfo{
		Address:   profile.WalletAddress,
		ChainName: s.cfg.WalletChainName,
		ChainID:   s.cfg.WalletChainID,
		QRCodePNG: png,
	}, nil
}

// fabricateTxHash mints a 0x-prefixed 64 hex char placeholder hash.
func fabricateTxHash() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "0x" + hex.EncodeToString(buf), nil
}

func shortAddress(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}
