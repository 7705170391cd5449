// internal/recommend/prompt.go
package recommend

import (
	"encoding/json"
	"fmt"

	"effipay/internal/domain"
)

// How many spending-history entries are worth showing the model.
const historyWindow = 5

const systemPrompt = `You are a financial assistant that helps split transactions across different payment methods.
Analyze the provided transaction and user data to recommend the optimal payment split across available cards.
Your response must be in valid JSON format with the following structure:
{
  "splits": [{
    "cardId": string,
    "amount": number,
    "reason": string
  }],
  "explanation": string
}`

// buildUserPrompt serializes the transaction and the user's profile
// into one user-role message. Construction is deterministic: same
// inputs, same prompt. Empty profile fields render as empty containers
// rather than being skipped.
func buildUserPrompt(tx domain.Transaction, user *domain.User) string {
	cards := user.Cards
	if cards == nil {
		cards = []domain.Card{}
	}
	history := user.SpendingHistory
	if history == nil {
		history = []domain.SpendingRecord{}
	}
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}

	return fmt.Sprintf(`Current Transaction:
%s

User Cards:
%s

User Preferences:
%s

Spending Categories:
%s

Spending History:
%s`,
		jsonBlock(tx),
		jsonBlock(cards),
		jsonBlock(user.Preferences),
		jsonBlock(user.Preferences.SpendingCategories),
		jsonBlock(history),
	)
}

func jsonBlock(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}
