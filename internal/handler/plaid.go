// internal/handler/plaid.go
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"effipay/internal/domain"
	"effipay/internal/plaid"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BankLinker is the aggregator surface the link endpoints need.
type BankLinker interface {
	CreateLinkToken(ctx context.Context, clientUserID string) (string, error)
	ExchangePublicToken(ctx context.Context, publicToken string) (*plaid.ExchangeResult, error)
	GetAccounts(ctx context.Context, accessToken string) ([]plaid.Account, error)
}

// BankLinkStore persists the link credential and the linked cards.
type BankLinkStore interface {
	UpdatePlaidItem(ctx context.Context, userID int64, item domain.PlaidItem) error
	ReplaceCards(ctx context.Context, userID int64, cards []domain.Card) error
}

type PlaidHandler struct {
	client BankLinker
	store  BankLinkStore
}

func NewPlaidHandler(client BankLinker, store BankLinkStore) *PlaidHandler {
	return &PlaidHandler{client: client, store: store}
}

// CreateLinkToken godoc
// @Summary Create an aggregator link token for the front end
// @Router /api/plaid/create_link_token [post]
func (h *PlaidHandler) CreateLinkToken(c *gin.Context) {
	clientUserID := "user-" + uuid.NewString()

	linkToken, err := h.client.CreateLinkToken(c.Request.Context(), clientUserID)
	if err != nil {
		slog.Error("failed to create link token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create link token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"link_token": linkToken})
}

// ExchangePublicToken godoc
// @Summary Exchange a public token for an access credential and store it
// @Router /api/plaid/exchange_public_token [post]
func (h *PlaidHandler) ExchangePublicToken(c *gin.Context) {
	var req ExchangePublicTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "public_token is required"})
		return
	}
	if err := validateStruct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	result, err := h.client.ExchangePublicToken(c.Request.Context(), req.PublicToken)
	if err != nil {
		slog.Error("public token exchange failed", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to exchange public token"})
		return
	}

	item := domain.PlaidItem{
		AccessToken: result.AccessToken,
		ItemID:      result.ItemID,
		RequestID:   result.RequestID,
	}
	if err := h.store.UpdatePlaidItem(c.Request.Context(), userID, item); err != nil {
		slog.Error("failed to store plaid item", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to exchange public token"})
		return
	}

	// Best effort: link the accounts as cards so the recommendation
	// workflow has something to split across. A failure here must not
	// undo the exchange.
	accounts, err := h.client.GetAccounts(c.Request.Context(), result.AccessToken)
	if err != nil {
		slog.Error("failed to fetch linked accounts", "error", err, "user_id", userID)
	} else if err := h.store.ReplaceCards(c.Request.Context(), userID, accountsToCards(accounts)); err != nil {
		slog.Error("failed to store linked cards", "error", err, "user_id", userID)
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func accountsToCards(accounts []plaid.Account) []domain.Card {
	cards := make([]domain.Card, 0, len(accounts))
	for _, acc := range accounts {
		name := acc.OfficialName
		if name == "" {
			name = acc.Name
		}
		cards = append(cards, domain.Card{
			ID:     acc.AccountID,
			Name:   name,
			Issuer: acc.Subtype,
		})
	}
	return cards
}

// === DTO ===

type ExchangePublicTokenRequest struct {
	PublicToken string `json:"public_token" validate:"required,notblank"`
}
