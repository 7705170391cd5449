// cmd/api/main.go
package main

import (
	"log"
	"log/slog"
	"net/http"
	"os"

	"effipay/internal/auth"
	"effipay/internal/config"
	"effipay/internal/handler"
	"effipay/internal/llm"
	"effipay/internal/middleware"
	"effipay/internal/plaid"
	"effipay/internal/recommend"
	"effipay/internal/storage/postgres"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.MustLoad()

	// The pool opens lazily on the first store access; until then the
	// server can come up without the database.
	pool := postgres.NewLazyPool(cfg.DBConn)
	defer pool.Close()

	store := postgres.NewStorage(pool)

	tokenService := auth.NewTokenService(cfg)
	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	completions := llm.NewClient(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
	recommender := recommend.NewService(store, completions, cfg.LLMTimeout)

	plaidClient := plaid.NewClient(cfg.PlaidClientID, cfg.PlaidSecret, cfg.PlaidEnv)

	authHandler := handler.NewAuthHandler(store, tokenService)
	preferencesHandler := handler.NewPreferencesHandler(store)
	plaidHandler := handler.NewPlaidHandler(plaidClient, store)
	splitHandler := handler.NewSplitHandler(recommender)
	cardsHandler := handler.NewCardsHandler(recommender)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), middleware.CORS())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// The browser front end calls this cross-origin; OPTIONS preflight
	// is answered by the CORS middleware.
	router.POST("/split-transaction", splitHandler.SplitTransaction)

	api := router.Group("/api")
	{
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)
		api.GET("/ingest", authHandler.Ingest)
		api.POST("/split-transaction", splitHandler.SplitTransactionByUser)
		api.GET("/recommend-card", cardsHandler.Recommend)
	}

	authed := router.Group("/api")
	authed.Use(authMiddleware.RequireAuth())
	{
		authed.POST("/preferences", preferencesHandler.Save)
		authed.POST("/plaid/create_link_token", plaidHandler.CreateLinkToken)
		authed.POST("/plaid/exchange_public_token", plaidHandler.ExchangePublicToken)
	}

	slog.Info("🚀 effipay API listening", "port", cfg.ServerPort)
	if err := router.Run(cfg.ServerPort); err != nil {
		log.Fatalf("server stopped with error: %v", err)
	}
}
