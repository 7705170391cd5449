// internal/recommend/cards.go
package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"effipay/internal/domain"
	"effipay/internal/llm"
)

const cardAdviceSystemPrompt = `You are a financial assistant that recommends credit cards based on a user's financial profile and reward preferences.`

// RecommendCard asks the model for a new-card recommendation based on
// the user's profile. Unlike the split workflow the answer is free
// form: JSON is passed through decoded, anything else is returned as a
// plain recommendation text.
func (s *Service) RecommendCard(ctx context.Context, userID int64) (any, error) {
	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	llmCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.llm.Complete(llmCtx, cardAdviceSystemPrompt, buildCardAdvicePrompt(user))
	if err != nil {
		if errors.Is(err, llm.ErrEmptyResponse) {
			return nil, ErrEmptyResponse
		}
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}

	var parsed any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return map[string]any{"recommendation": raw}, nil
	}
	return parsed, nil
}

// buildCardAdvicePrompt serializes the profile without credentials.
// Deterministic like buildUserPrompt.
func buildCardAdvicePrompt(user *domain.User) string {
	cards := user.Cards
	if cards == nil {
		cards = []domain.Card{}
	}
	history := user.SpendingHistory
	if history == nil {
		history = []domain.SpendingRecord{}
	}

	profile := map[string]any{
		"cards":           cards,
		"preferences":     user.Preferences,
		"spendingHistory": history,
	}

	return fmt.Sprintf(`Based on the following user financial data and reward preferences, provide a credit card recommendation. Include details such as the card name, interest rate, credit limit, annual fee, and any special rewards or features.

User Data:
%s`, jsonBlock(profile))
}
