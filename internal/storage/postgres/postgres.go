// internal/storage/postgres/postgres.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"effipay/internal/domain"
	"effipay/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// Storage is the pgx-backed account store. Broken connections inside
// the pool are re-established by pgxpool itself; the LazyPool only
// defers the first connect.
type Storage struct {
	db *LazyPool
}

var _ storage.UserStorage = (*Storage)(nil)

func NewStorage(db *LazyPool) *Storage {
	return &Storage{db: db}
}

func (s *Storage) CreateUser(ctx context.Context, email, passwordHash string) (int64, error) {
	pool, err := s.db.Get(ctx)
	if err != nil {
		return 0, err
	}

	var id int64
	err = pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash)
		VALUES ($1, $2)
		RETURNING id
	`, email, passwordHash).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return 0, storage.ErrEmailTaken
		}
		return 0, fmt.Errorf("create user: %w", err)
	}
	return id, nil
}

func (s *Storage) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.findOne(ctx, "email = $1", email)
}

func (s *Storage) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.findOne(ctx, "id = $1", id)
}

func (s *Storage) findOne(ctx context.Context, where string, arg any) (*domain.User, error) {
	pool, err := s.db.Get(ctx)
	if err != nil {
		return nil, err
	}

	var u domain.User
	err = pool.QueryRow(ctx, `
		SELECT id, email, password_hash, plaid, preferences, cards, spending_history, created_at, updated_at
		FROM users
		WHERE `+where, arg).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Plaid, &u.Preferences, &u.Cards, &u.SpendingHistory, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

func (s *Storage) UpdatePreferences(ctx context.Context, userID int64, prefs domain.Preferences) error {
	pool, err := s.db.Get(ctx)
	if err != nil {
		return err
	}

	tag, err := pool.Exec(ctx, `
		UPDATE users SET preferences = $2, updated_at = now() WHERE id = $1
	`, userID, prefs)
	if err != nil {
		return fmt.Errorf("update preferences: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrUserNotFound
	}
	return nil
}

func (s *Storage) UpdatePlaidItem(ctx context.Context, userID int64, item domain.PlaidItem) error {
	pool, err := s.db.Get(ctx)
	if err != nil {
		return err
	}

	tag, err := pool.Exec(ctx, `
		UPDATE users SET plaid = $2, updated_at = now() WHERE id = $1
	`, userID, item)
	if err != nil {
		return fmt.Errorf("update plaid item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrUserNotFound
	}
	return nil
}

func (s *Storage) ReplaceCards(ctx context.Context, userID int64, cards []domain.Card) error {
	pool, err := s.db.Get(ctx)
	if err != nil {
		return err
	}

	if cards == nil {
		cards = []domain.Card{}
	}
	tag, err := pool.Exec(ctx, `
		UPDATE users SET cards = $2, updated_at = now() WHERE id = $1
	`, userID, cards)
	if err != nil {
		return fmt.Errorf("replace cards: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrUserNotFound
	}
	return nil
}
