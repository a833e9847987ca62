package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/yourorg/stocksim/internal/domain"
)

// ErrUsernameTaken is returned when an insert hits the unique constraint on
// users.username. Uniqueness is enforced by the constraint, not by a prior
// lookup, so concurrent registrations of the same name resolve to exactly
// one winner.
var ErrUsernameTaken = errors.New("username already taken")

type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	query := `
		INSERT INTO users (id, username, password_hash)
		VALUES ($1, $2, $3)
		RETURNING cash, created_at`
	err := r.db.QueryRowContext(ctx, query, u.ID, u.Username, u.PasswordHash).
		Scan(&u.Cash, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrUsernameTaken
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	err := r.db.GetContext(ctx, &u, `SELECT * FROM users WHERE username = $1`, username)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}
	return &u, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var u domain.User
	err := r.db.GetContext(ctx, &u, `SELECT * FROM users WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}
	return &u, nil
}

// GetByIDForUpdateTx locks the user row for the remainder of the transaction
// so cash checks and updates see a consistent balance.
func (r *UserRepo) GetByIDForUpdateTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*domain.User, error) {
	var u domain.User
	err := tx.GetContext(ctx, &u, `SELECT * FROM users WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}
	return &u, nil
}

func (r *UserRepo) UpdateCashTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, newCash float64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE users SET cash = $1 WHERE id = $2`,
		newCash, id)
	return err
}
