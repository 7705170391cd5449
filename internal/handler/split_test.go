package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"effipay/internal/domain"
	"effipay/internal/middleware"
	"effipay/internal/recommend"
	"effipay/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecommender struct {
	rec    *domain.SplitRecommendation
	err    error
	calls  int
	userID int64
}

func (f *fakeRecommender) SplitTransaction(_ context.Context, _ string, _ domain.Transaction) (*domain.SplitRecommendation, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.rec, nil
}

func (f *fakeRecommender) SplitTransactionForUser(_ context.Context, userID int64, _ domain.Transaction) (*domain.SplitRecommendation, error) {
	f.calls++
	f.userID = userID
	if f.err != nil {
		return nil, f.err
	}
	return f.rec, nil
}

func splitRouter(svc Recommender) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.CORS())
	h := NewSplitHandler(svc)
	router.POST("/split-transaction", h.SplitTransaction)
	router.POST("/api/split-transaction", h.SplitTransactionByUser)
	return router
}

func postSplit(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/split-transaction", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSplitTransactionEndpointSuccess(t *testing.T) {
	svc := &fakeRecommender{rec: &domain.SplitRecommendation{
		Splits: []domain.Split{
			{CardID: "c1", Amount: 60, Reason: "travel bonus"},
			{CardID: "c2", Amount: 40, Reason: "cashback"},
		},
		Explanation: "split for rewards",
	}}
	router := splitRouter(svc)

	w := postSplit(router, `{"email":"user@example.com","transactionData":{"amount":100,"merchant":"Delta"}}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success             bool                       `json:"success"`
		SplitRecommendation domain.SplitRecommendation `json:"splitRecommendation"`
		OriginalTransaction map[string]any             `json:"originalTransaction"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.True(t, resp.Success)
	assert.Len(t, resp.SplitRecommendation.Splits, 2)
	assert.Equal(t, "split for rewards", resp.SplitRecommendation.Explanation)
	assert.Equal(t, "Delta", resp.OriginalTransaction["merchant"])
	assert.Equal(t, 100.0, resp.OriginalTransaction["amount"])
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSplitTransactionEndpointMissingFields(t *testing.T) {
	cases := map[string]string{
		"missing email":           `{"transactionData":{"amount":100}}`,
		"missing transactionData": `{"email":"user@example.com"}`,
		"empty body":              `{}`,
		"not json":                `amount=100`,
	}
	for name, body := range cases {
		svc := &fakeRecommender{}
		w := postSplit(splitRouter(svc), body)
		assert.Equal(t, http.StatusBadRequest, w.Code, name)
		assert.Equal(t, 0, svc.calls, "%s: workflow must not run on invalid input", name)
	}
}

func TestSplitTransactionEndpointMissingAmount(t *testing.T) {
	svc := &fakeRecommender{}
	w := postSplit(splitRouter(svc), `{"email":"user@example.com","transactionData":{"merchant":"Delta"}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, svc.calls)
}

func TestSplitTransactionEndpointUserNotFound(t *testing.T) {
	svc := &fakeRecommender{err: storage.ErrUserNotFound}
	w := postSplit(splitRouter(svc), `{"email":"nobody@example.com","transactionData":{"amount":100}}`)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "User not found")
}

func TestSplitTransactionEndpointErrorsCollapseTo500(t *testing.T) {
	cases := map[string]error{
		"provider":  recommend.ErrProvider,
		"empty":     recommend.ErrEmptyResponse,
		"malformed": recommend.ErrMalformedResponse,
		"shape":     recommend.ErrInvalidShape,
		"mismatch":  &recommend.AmountMismatchError{Expected: 100, Total: 60},
	}
	for name, err := range cases {
		w := postSplit(splitRouter(&fakeRecommender{err: err}), `{"email":"user@example.com","transactionData":{"amount":100}}`)
		assert.Equal(t, http.StatusInternalServerError, w.Code, name)
		// no internal detail leaks to the client
		assert.NotContains(t, w.Body.String(), "60", name)
	}
}

func TestSplitTransactionByUserEndpointSuccess(t *testing.T) {
	svc := &fakeRecommender{rec: &domain.SplitRecommendation{
		Splits: []domain.Split{{CardID: "c1", Amount: 100, Reason: "only card"}},
	}}
	router := splitRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/split-transaction",
		strings.NewReader(`{"userId":7,"transactionData":{"amount":100,"merchant":"Delta"}}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(7), svc.userID)

	var resp struct {
		Success             bool           `json:"success"`
		OriginalTransaction map[string]any `json:"originalTransaction"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Delta", resp.OriginalTransaction["merchant"])
}

func TestSplitTransactionByUserEndpointMissingFields(t *testing.T) {
	cases := map[string]string{
		"missing userId":          `{"transactionData":{"amount":100}}`,
		"missing transactionData": `{"userId":7}`,
		"missing amount":          `{"userId":7,"transactionData":{"merchant":"Delta"}}`,
	}
	for name, body := range cases {
		svc := &fakeRecommender{}
		req := httptest.NewRequest(http.MethodPost, "/api/split-transaction", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		splitRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, name)
		assert.Equal(t, 0, svc.calls, "%s: workflow must not run on invalid input", name)
	}
}

func TestSplitTransactionByUserEndpointUserNotFound(t *testing.T) {
	svc := &fakeRecommender{err: storage.ErrUserNotFound}
	req := httptest.NewRequest(http.MethodPost, "/api/split-transaction",
		strings.NewReader(`{"userId":99,"transactionData":{"amount":100}}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	splitRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "User not found")
}

func TestSplitTransactionPreflight(t *testing.T) {
	router := splitRouter(&fakeRecommender{})

	req := httptest.NewRequest(http.MethodOptions, "/split-transaction", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST, PUT, DELETE, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type, Authorization", w.Header().Get("Access-Control-Allow-Headers"))
}
