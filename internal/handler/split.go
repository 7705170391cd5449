// internal/handler/split.go
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"effipay/internal/domain"
	"effipay/internal/recommend"
	"effipay/internal/storage"

	"github.com/gin-gonic/gin"
)

// Recommender runs the transaction-split workflow.
type Recommender interface {
	SplitTransaction(ctx context.Context, email string, tx domain.Transaction) (*domain.SplitRecommendation, error)
	SplitTransactionForUser(ctx context.Context, userID int64, tx domain.Transaction) (*domain.SplitRecommendation, error)
}

type SplitHandler struct {
	svc Recommender
}

func NewSplitHandler(svc Recommender) *SplitHandler {
	return &SplitHandler{svc: svc}
}

// SplitTransaction godoc
// @Summary Recommend how to split a transaction across the user's cards
// @Description Gathers the user's financial profile, asks the model for a split and validates the answer
// @Tags split
// @Accept json
// @Produce json
// @Param request body SplitTransactionRequest true "Email and transaction payload"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /split-transaction [post]
func (h *SplitHandler) SplitTransaction(c *gin.Context) {
	var req SplitTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and transaction data are required"})
		return
	}
	if req.Email == "" || req.TransactionData == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and transaction data are required"})
		return
	}
	if _, ok := req.TransactionData.Amount(); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Transaction amount must be a number"})
		return
	}

	rec, err := h.svc.SplitTransaction(c.Request.Context(), req.Email, req.TransactionData)
	if err != nil {
		h.writeError(c, req.Email, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":             true,
		"splitRecommendation": rec,
		"originalTransaction": req.TransactionData,
	})
}

// SplitTransactionByUser is the by-id variant: the caller addresses the
// account by its id instead of the email. Same workflow, same response
// envelope.
func (h *SplitHandler) SplitTransactionByUser(c *gin.Context) {
	var req SplitByUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User id and transaction data are required"})
		return
	}
	if req.UserID == 0 || req.TransactionData == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User id and transaction data are required"})
		return
	}
	if _, ok := req.TransactionData.Amount(); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Transaction amount must be a number"})
		return
	}

	rec, err := h.svc.SplitTransactionForUser(c.Request.Context(), req.UserID, req.TransactionData)
	if err != nil {
		h.writeError(c, strconv.FormatInt(req.UserID, 10), err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":             true,
		"splitRecommendation": rec,
		"originalTransaction": req.TransactionData,
	})
}

// writeError collapses the workflow's error taxonomy to the boundary
// statuses. The client gets a short generic message; the distinct kinds
// survive in the logs so "the provider is down" and "our prompt or
// validator is broken" stay tellable apart.
func (h *SplitHandler) writeError(c *gin.Context, who string, err error) {
	var mismatch *recommend.AmountMismatchError

	switch {
	case errors.Is(err, storage.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})

	case errors.Is(err, recommend.ErrMissingAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Transaction amount must be a number"})

	case errors.Is(err, recommend.ErrEmptyResponse):
		slog.Error("split-transaction: empty provider response", "user", who)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No recommendation received from AI"})

	case errors.As(err, &mismatch):
		slog.Error("split-transaction: amount mismatch", "user", who,
			"expected", mismatch.Expected, "total", mismatch.Total)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate valid payment split recommendation"})

	case errors.Is(err, recommend.ErrMalformedResponse), errors.Is(err, recommend.ErrInvalidShape):
		slog.Error("split-transaction: invalid model response", "user", who, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate valid payment split recommendation"})

	case errors.Is(err, recommend.ErrProvider):
		slog.Error("split-transaction: provider failure", "user", who, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})

	default:
		slog.Error("split-transaction failed", "user", who, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// === DTO ===

type SplitTransactionRequest struct {
	Email           string             `json:"email"`
	TransactionData domain.Transaction `json:"transactionData"`
}

type SplitByUserRequest struct {
	UserID          int64              `json:"userId"`
	TransactionData domain.Transaction `json:"transactionData"`
}
