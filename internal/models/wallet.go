package models

import "time"

// Transaction types recorded in the wallet history.
const (
	TransactionTypeSend    = "send"
	TransactionTypeReceive = "receive"
)

// Transaction is one entry in a user's wallet history. The tx hash is a
// fabricated placeholder, not a chain-confirmed identifier; the send flow
// is a UI simulation end to end.
type Transaction struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	Type        string    `gorm:"type:varchar(20);not null" json:"type"`
	Amount      float64   `json:"amount"`
	Token       string    `gorm:"type:varchar(16)" json:"token"`
	Description string    `json:"description"`
	TxHash      string    `gorm:"type:varchar(66)" json:"tx_hash"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName keeps the table name aligned with the original schema.
func (Transaction) TableName() string {
	return "transactions_history"
}

// WalletContact is a saved address book entry used to resolve display
// names when sending.
type WalletContact struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	UserID               uint      `gorm:"not null;index" json:"user_id"`
	ContactName          string    `gorm:"not null" json:"contact_name"`
	ContactWalletAddress string    `gorm:"not null" json:"contact_wallet_address"`
	CreatedAt            time.Time `json:"created_at"`
}
