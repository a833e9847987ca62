package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/yourorg/stocksim/internal/domain"
)

// TransactionRepo is the append-only ledger. Positions and cash flow are
// always derived from it; rows are never updated or deleted.
type TransactionRepo struct {
	db *sqlx.DB
}

func NewTransactionRepo(db *sqlx.DB) *TransactionRepo {
	return &TransactionRepo{db: db}
}

func (r *TransactionRepo) InsertTx(ctx context.Context, tx *sqlx.Tx, t *domain.Transaction) error {
	query := `
		INSERT INTO transactions (user_id, symbol, shares, price)
		VALUES ($1, $2, $3, $4)
		RETURNING id, transacted`
	return tx.QueryRowContext(ctx, query, t.UserID, t.Symbol, t.Shares, t.Price).
		Scan(&t.ID, &t.Transacted)
}

func (r *TransactionRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Transaction, error) {
	var txns []domain.Transaction
	err := r.db.SelectContext(ctx, &txns,
		`SELECT * FROM transactions WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	return txns, nil
}

// Holdings sums signed shares per symbol, keeping only symbols the user
// currently holds. Cash-deposit rows are excluded.
func (r *TransactionRepo) Holdings(ctx context.Context, userID uuid.UUID) ([]domain.Holding, error) {
	var holdings []domain.Holding
	err := r.db.SelectContext(ctx, &holdings, `
		SELECT symbol, SUM(shares) AS shares
		FROM transactions
		WHERE user_id = $1 AND symbol <> $2
		GROUP BY symbol
		HAVING SUM(shares) > 0
		ORDER BY symbol`, userID, domain.CashSymbol)
	if err != nil {
		return nil, err
	}
	return holdings, nil
}

func (r *TransactionRepo) HeldShares(ctx context.Context, userID uuid.UUID, symbol string) (int64, error) {
	var shares int64
	err := r.db.GetContext(ctx, &shares, `
		SELECT COALESCE(SUM(shares), 0)
		FROM transactions
		WHERE user_id = $1 AND symbol = $2`, userID, symbol)
	if err != nil {
		return 0, err
	}
	return shares, nil
}

// HeldSharesTx is HeldShares evaluated inside a transaction so a sell's
// position check and its ledger insert see the same ledger state.
func (r *TransactionRepo) HeldSharesTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, symbol string) (int64, error) {
	var shares int64
	err := tx.GetContext(ctx, &shares, `
		SELECT COALESCE(SUM(shares), 0)
		FROM transactions
		WHERE user_id = $1 AND symbol = $2`, userID, symbol)
	if err != nil {
		return 0, err
	}
	return shares, nil
}
