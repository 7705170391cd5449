// internal/recommend/validate.go
package recommend

import (
	"encoding/json"
	"fmt"
	"math"

	"effipay/internal/domain"
)

// DefaultTolerance absorbs floating point noise in the splits' sum,
// one minor currency unit.
const DefaultTolerance = 0.01

// Validator checks untrusted model output against the expected shape
// and the monetary-sum invariant. Pure: no retries, no side effects.
type Validator struct {
	// Tolerance is the maximum absolute deviation allowed between the
	// splits' sum and the transaction amount. Zero means
	// DefaultTolerance.
	Tolerance float64
}

// Validate parses raw as a single JSON value and returns the
// recommendation, or one of ErrMalformedResponse, ErrInvalidShape,
// *AmountMismatchError. Shape errors are deliberately distinct from
// the sum check: the former means the model ignored the format, the
// latter that it miscalculated.
func (v Validator) Validate(raw string, expectedAmount float64) (*domain.SplitRecommendation, error) {
	tolerance := v.Tolerance
	if tolerance == 0 {
		tolerance = DefaultTolerance
	}

	var parsed any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedResponse, err)
	}

	obj, ok := parsed.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: top-level value is not an object", ErrInvalidShape)
	}

	rawSplits, ok := obj["splits"].([]any)
	if !ok {
		return nil, fmt.Errorf("%w: missing splits array", ErrInvalidShape)
	}
	if len(rawSplits) == 0 {
		return nil, fmt.Errorf("%w: splits array is empty", ErrInvalidShape)
	}

	splits := make([]domain.Split, len(rawSplits))
	for i, rawSplit := range rawSplits {
		split, err := parseSplit(rawSplit)
		if err != nil {
			return nil, fmt.Errorf("%w: splits[%d]: %s", ErrInvalidShape, i, err)
		}
		splits[i] = split
	}

	var total float64
	for _, s := range splits {
		total += s.Amount
	}
	if math.Abs(total-expectedAmount) > tolerance {
		return nil, &AmountMismatchError{Expected: expectedAmount, Total: total}
	}

	// Missing explanation defaults to empty rather than failing.
	explanation, _ := obj["explanation"].(string)

	return &domain.SplitRecommendation{
		Splits:      splits,
		Explanation: explanation,
	}, nil
}

func parseSplit(raw any) (domain.Split, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return domain.Split{}, fmt.Errorf("element is not an object")
	}

	cardID, err := scalarID(m["cardId"])
	if err != nil {
		return domain.Split{}, fmt.Errorf("cardId %v", err)
	}

	amount, ok := m["amount"].(float64)
	if !ok {
		return domain.Split{}, fmt.Errorf("amount is not a number")
	}
	if amount < 0 {
		return domain.Split{}, fmt.Errorf("amount is negative")
	}

	reason, ok := m["reason"].(string)
	if !ok {
		return domain.Split{}, fmt.Errorf("reason is not a string")
	}

	return domain.Split{CardID: cardID, Amount: amount, Reason: reason}, nil
}

// scalarID accepts any scalar identifier and renders it as a string.
func scalarID(v any) (string, error) {
	switch id := v.(type) {
	case string:
		return id, nil
	case float64:
		// JSON numbers; integral ids print without a fraction
		if id == math.Trunc(id) {
			return fmt.Sprintf("%d", int64(id)), nil
		}
		return fmt.Sprintf("%g", id), nil
	case bool:
		return fmt.Sprintf("%t", id), nil
	default:
		return "", fmt.Errorf("is not a scalar")
	}
}
