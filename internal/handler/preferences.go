// internal/handler/preferences.go
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"effipay/internal/domain"
	"effipay/internal/storage"

	"github.com/gin-gonic/gin"
)

// PreferencesStore writes the user's reward preferences.
type PreferencesStore interface {
	UpdatePreferences(ctx context.Context, userID int64, prefs domain.Preferences) error
}

type PreferencesHandler struct {
	store PreferencesStore
}

func NewPreferencesHandler(store PreferencesStore) *PreferencesHandler {
	return &PreferencesHandler{store: store}
}

// Save godoc
// @Summary Save the user's reward preferences
// @Description rewardType must be one of cashback, points, miles; unknown values are rejected here
// @Router /api/preferences [post]
func (h *PreferencesHandler) Save(c *gin.Context) {
	var req SavePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
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

	prefs := domain.Preferences{
		RewardType:         req.Preferences.RewardType,
		SpendingCategories: req.Preferences.SpendingCategories,
	}

	if err := h.store.UpdatePreferences(c.Request.Context(), userID, prefs); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		slog.Error("failed to save preferences", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save preferences"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// === DTO ===

type SavePreferencesRequest struct {
	Preferences struct {
		RewardType         string                    `json:"rewardType" validate:"required,oneof=cashback points miles"`
		SpendingCategories domain.SpendingCategories `json:"spendingCategories"`
	} `json:"preferences" validate:"required"`
}
