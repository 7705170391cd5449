// internal/storage/storage.go
package storage

import (
	"context"
	"errors"

	"effipay/internal/domain"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("user already exists")
)

type UserStorage interface {
	CreateUser(ctx context.Context, email, passwordHash string) (int64, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	UpdatePreferences(ctx context.Context, userID int64, prefs domain.Preferences) error
	UpdatePlaidItem(ctx context.Context, userID int64, item domain.PlaidItem) error
	ReplaceCards(ctx context.Context, userID int64, cards []domain.Card) error
}
