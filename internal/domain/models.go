// internal/domain/models.go
package domain

import "time"

// Reward types a user can prefer. Unknown values are rejected at the
// preferences boundary, never stored.
const (
	RewardCashback = "cashback"
	RewardPoints   = "points"
	RewardMiles    = "miles"
)

type User struct {
	ID              int64            `json:"-"`
	Email           string           `json:"email"`
	PasswordHash    string           `json:"-"`
	Plaid           PlaidItem        `json:"-"`
	Preferences     Preferences      `json:"preferences"`
	Cards           []Card           `json:"cards"`
	SpendingHistory []SpendingRecord `json:"spendingHistory"`
	CreatedAt       time.Time        `json:"-"`
	UpdatedAt       time.Time        `json:"-"`
}

// PlaidItem is the credential produced by the bank-link exchange.
type PlaidItem struct {
	AccessToken string `json:"access_token,omitempty"`
	ItemID      string `json:"item_id,omitempty"`
	RequestID   string `json:"request_id,omitempty"`
}

type Preferences struct {
	RewardType         string             `json:"rewardType"`
	SpendingCategories SpendingCategories `json:"spendingCategories"`
}

type SpendingCategories struct {
	Travel         bool `json:"travel"`
	Shopping       bool `json:"shopping"`
	Dining         bool `json:"dining"`
	Transportation bool `json:"transportation"`
}

type Card struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Issuer     string  `json:"issuer,omitempty"`
	RewardType string  `json:"rewardType,omitempty"`
	RewardRate float64 `json:"rewardRate,omitempty"`
}

type SpendingRecord struct {
	Merchant string    `json:"merchant"`
	Category string    `json:"category"`
	Amount   float64   `json:"amount"`
	Date     time.Time `json:"date"`
}

// Transaction is the caller-supplied payload. Besides amount the fields
// are arbitrary and passed through verbatim into the prompt context.
type Transaction map[string]any

// Amount returns the transaction total and whether it was present as a
// JSON number.
func (t Transaction) Amount() (float64, bool) {
	v, ok := t["amount"]
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}

// Split is one allocation of part of a transaction's amount to a card.
type Split struct {
	CardID string  `json:"cardId"`
	Amount float64 `json:"amount"`
	Reason string  `json:"reason"`
}

type SplitRecommendation struct {
	Splits      []Split `json:"splits"`
	Explanation string  `json:"explanation"`
}
