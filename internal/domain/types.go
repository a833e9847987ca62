package domain

import (
	"time"

	"github.com/google/uuid"
)

// CashSymbol is the sentinel symbol recorded on ledger rows that represent
// cash deposits rather than trades. Deposit rows carry zero shares and the
// deposited amount in the price column.
const CashSymbol = "CASH"

type User struct {
	ID           uuid.UUID `db:"id"            json:"id"`
	Username     string    `db:"username"      json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Cash         float64   `db:"cash"          json:"cash"`
	CreatedAt    time.Time `db:"created_at"    json:"created_at"`
}

// Transaction is one append-only ledger row. Positive shares are buys,
// negative shares are sells, zero shares mark a cash deposit.
type Transaction struct {
	ID         int64     `db:"id"         json:"id"`
	UserID     uuid.UUID `db:"user_id"    json:"user_id"`
	Symbol     string    `db:"symbol"     json:"symbol"`
	Shares     int64     `db:"shares"     json:"shares"`
	Price      float64   `db:"price"      json:"price"`
	Transacted time.Time `db:"transacted" json:"transacted"`
}

// Holding is the derived net position in one symbol, summed from the ledger.
type Holding struct {
	Symbol string `db:"symbol" json:"symbol"`
	Shares int64  `db:"shares" json:"shares"`
}

type Quote struct {
	Symbol string  `json:"symbol"`
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
}
