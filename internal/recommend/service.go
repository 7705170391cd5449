// internal/recommend/service.go
package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"effipay/internal/domain"
	"effipay/internal/llm"
)

// ErrMissingAmount: the transaction payload carries no numeric amount.
// The HTTP boundary rejects this before the service is reached; the
// check here keeps the workflow safe for other callers.
var ErrMissingAmount = errors.New("transaction amount is required")

// ErrEmptyResponse: the provider returned no content.
var ErrEmptyResponse = errors.New("no recommendation received")

// UserFinder is the slice of the account store the workflow reads.
type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
}

// CompletionClient issues one synchronous completion request.
type CompletionClient interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Service runs the split-recommendation workflow: assemble the user's
// profile, ask the model for a split, validate the untrusted answer.
// The three stages are strictly sequential; nothing is written back to
// the store.
type Service struct {
	store     UserFinder
	llm       CompletionClient
	validator Validator
	timeout   time.Duration
}

func NewService(store UserFinder, completions CompletionClient, timeout time.Duration) *Service {
	return &Service{
		store:     store,
		llm:       completions,
		validator: Validator{Tolerance: DefaultTolerance},
		timeout:   timeout,
	}
}

// SplitTransaction returns a validated recommendation for splitting tx
// across the user's cards, or one of the classified errors:
// storage.ErrUserNotFound, ErrMissingAmount, ErrProvider,
// ErrEmptyResponse, ErrMalformedResponse, ErrInvalidShape,
// *AmountMismatchError. None of these are retried here.
func (s *Service) SplitTransaction(ctx context.Context, email string, tx domain.Transaction) (*domain.SplitRecommendation, error) {
	amount, ok := tx.Amount()
	if !ok {
		return nil, ErrMissingAmount
	}

	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	return s.split(ctx, email, user, tx, amount)
}

// SplitTransactionForUser is the by-id variant used by callers that
// know the account id rather than the email.
func (s *Service) SplitTransactionForUser(ctx context.Context, userID int64, tx domain.Transaction) (*domain.SplitRecommendation, error) {
	amount, ok := tx.Amount()
	if !ok {
		return nil, ErrMissingAmount
	}

	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.split(ctx, strconv.FormatInt(userID, 10), user, tx, amount)
}

func (s *Service) split(ctx context.Context, who string, user *domain.User, tx domain.Transaction, amount float64) (*domain.SplitRecommendation, error) {
	userPrompt := buildUserPrompt(tx, user)

	// The completion call is the only stage with unbounded latency, so
	// it alone runs under the timeout.
	llmCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.llm.Complete(llmCtx, systemPrompt, userPrompt)
	if err != nil {
		if errors.Is(err, llm.ErrEmptyResponse) {
			return nil, ErrEmptyResponse
		}
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}

	rec, err := s.validator.Validate(raw, amount)
	if err != nil {
		return nil, err
	}

	// The original behavior trusts the model's card references; an
	// unknown id is logged, not failed.
	for _, split := range rec.Splits {
		if len(user.Cards) > 0 && !hasCard(user.Cards, split.CardID) {
			slog.Warn("recommendation references unknown card", "user", who, "card_id", split.CardID)
		}
	}

	return rec, nil
}

func hasCard(cards []domain.Card, id string) bool {
	for _, c := range cards {
		if c.ID == id {
			return true
		}
	}
	return false
}
