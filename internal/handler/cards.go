// internal/handler/cards.go
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"effipay/internal/recommend"
	"effipay/internal/storage"

	"github.com/gin-gonic/gin"
)

// CardAdvisor asks the model which new card the user should adopt.
type CardAdvisor interface {
	RecommendCard(ctx context.Context, userID int64) (any, error)
}

type CardsHandler struct {
	svc CardAdvisor
}

func NewCardsHandler(svc CardAdvisor) *CardsHandler {
	return &CardsHandler{svc: svc}
}

// Recommend answers GET /api/recommend-card?user_id=N with the model's
// card recommendation for that account. The body is whatever the model
// produced: decoded JSON, or {"recommendation": <text>} for prose.
func (h *CardsHandler) Recommend(c *gin.Context) {
	idParam := c.Query("user_id")
	if idParam == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing user_id in request"})
		return
	}
	userID, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id must be an integer"})
		return
	}

	rec, err := h.svc.RecommendCard(c.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "User financial data not found"})
		case errors.Is(err, recommend.ErrEmptyResponse), errors.Is(err, recommend.ErrProvider):
			slog.Error("recommend-card: provider failure", "user_id", userID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "LLM processing error"})
		default:
			slog.Error("recommend-card failed", "user_id", userID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, rec)
}
