package trading

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/yourorg/stocksim/internal/domain"
	"github.com/yourorg/stocksim/internal/quotes"
	pgRepo "github.com/yourorg/stocksim/internal/repository/postgres"
)

var (
	ErrInsufficientCash   = errors.New("insufficient cash")
	ErrInsufficientShares = errors.New("insufficient shares")
	ErrInvalidShares      = errors.New("shares must be a positive whole number")
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrMissingSymbol      = errors.New("symbol is required")
)

// Service executes trades and cash deposits against the ledger, and derives
// portfolio state from it. Every mutation couples the users.cash update and
// the ledger insert in a single database transaction.
type Service struct {
	db       *sqlx.DB
	userRepo *pgRepo.UserRepo
	txnRepo  *pgRepo.TransactionRepo
	quotes   quotes.Provider
}

func NewService(db *sqlx.DB, userRepo *pgRepo.UserRepo, txnRepo *pgRepo.TransactionRepo, provider quotes.Provider) *Service {
	return &Service{
		db:       db,
		userRepo: userRepo,
		txnRepo:  txnRepo,
		quotes:   provider,
	}
}

// PositionView is one row of the portfolio page: a held symbol joined with
// its live quote.
type PositionView struct {
	Symbol string
	Name   string
	Shares int64
	Price  float64
	Total  float64
}

// Portfolio is the fully valued account: every held position at live prices,
// plus cash and the grand total.
type Portfolio struct {
	Positions []PositionView
	Cash      float64
	Total     float64
}

// Positions values the user's current holdings at live quotes. A failed
// quote lookup for any held symbol aborts the whole valuation; there is no
// stale-price fallback.
func (s *Service) Positions(ctx context.Context, userID uuid.UUID) (*Portfolio, error) {
	holdings, err := s.txnRepo.Holdings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load holdings: %w", err)
	}

	p := &Portfolio{}
	for _, h := range holdings {
		q, err := s.quotes.Lookup(ctx, h.Symbol)
		if err != nil {
			return nil, fmt.Errorf("quote %s: %w", h.Symbol, err)
		}
		subtotal := float64(h.Shares) * q.Price
		p.Positions = append(p.Positions, PositionView{
			Symbol: q.Symbol,
			Name:   q.Name,
			Shares: h.Shares,
			Price:  q.Price,
			Total:  subtotal,
		})
		p.Total += subtotal
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	p.Cash = user.Cash
	p.Total += user.Cash
	return p, nil
}

// HeldSymbols lists the symbols the user currently holds, for the sell form.
func (s *Service) HeldSymbols(ctx context.Context, userID uuid.UUID) ([]string, error) {
	holdings, err := s.txnRepo.Holdings(ctx, userID)
	if err != nil {
		return nil, err
	}
	symbols := make([]string, 0, len(holdings))
	for _, h := range holdings {
		symbols = append(symbols, h.Symbol)
	}
	return symbols, nil
}

func (s *Service) History(ctx context.Context, userID uuid.UUID) ([]domain.Transaction, error) {
	return s.txnRepo.ListByUser(ctx, userID)
}

// Buy purchases shares at the live quote. The price is whatever the quote
// provider returns at execution time, not any price previously shown.
func (s *Service) Buy(ctx context.Context, userID uuid.UUID, symbol string, shares int64) (*domain.Transaction, error) {
	if err := validateTrade(symbol, shares); err != nil {
		return nil, err
	}

	q, err := s.quotes.Lookup(ctx, symbol)
	if err != nil {
		return nil, err
	}
	cost := float64(shares) * q.Price

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	user, err := s.userRepo.GetByIDForUpdateTx(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if cost > user.Cash {
		return nil, ErrInsufficientCash
	}

	if err := s.userRepo.UpdateCashTx(ctx, tx, userID, user.Cash-cost); err != nil {
		return nil, fmt.Errorf("update cash: %w", err)
	}
	txn := &domain.Transaction{
		UserID: userID,
		Symbol: q.Symbol,
		Shares: shares,
		Price:  q.Price,
	}
	if err := s.txnRepo.InsertTx(ctx, tx, txn); err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return txn, nil
}

// Sell disposes shares at the live quote. The position check runs inside the
// same transaction as the ledger insert, so the aggregate can never go
// negative.
func (s *Service) Sell(ctx context.Context, userID uuid.UUID, symbol string, shares int64) (*domain.Transaction, error) {
	if err := validateTrade(symbol, shares); err != nil {
		return nil, err
	}

	q, err := s.quotes.Lookup(ctx, symbol)
	if err != nil {
		return nil, err
	}
	proceeds := float64(shares) * q.Price

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	user, err := s.userRepo.GetByIDForUpdateTx(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	held, err := s.txnRepo.HeldSharesTx(ctx, tx, userID, q.Symbol)
	if err != nil {
		return nil, fmt.Errorf("load position: %w", err)
	}
	if shares > held {
		return nil, ErrInsufficientShares
	}

	if err := s.userRepo.UpdateCashTx(ctx, tx, userID, user.Cash+proceeds); err != nil {
		return nil, fmt.Errorf("update cash: %w", err)
	}
	txn := &domain.Transaction{
		UserID: userID,
		Symbol: q.Symbol,
		Shares: -shares,
		Price:  q.Price,
	}
	if err := s.txnRepo.InsertTx(ctx, tx, txn); err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return txn, nil
}

// AddCash deposits amount into the user's balance and records it on the
// ledger under the cash sentinel symbol.
func (s *Service) AddCash(ctx context.Context, userID uuid.UUID, amount float64) (*domain.Transaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	user, err := s.userRepo.GetByIDForUpdateTx(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdateCashTx(ctx, tx, userID, user.Cash+amount); err != nil {
		return nil, fmt.Errorf("update cash: %w", err)
	}
	txn := &domain.Transaction{
		UserID: userID,
		Symbol: domain.CashSymbol,
		Shares: 0,
		Price:  amount,
	}
	if err := s.txnRepo.InsertTx(ctx, tx, txn); err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return txn, nil
}
