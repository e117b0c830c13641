package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/justyntemme/shelfmate/internal/api"
	"github.com/justyntemme/shelfmate/internal/assistant"
	"github.com/justyntemme/shelfmate/internal/config"
	"github.com/justyntemme/shelfmate/internal/library"
	"github.com/justyntemme/shelfmate/internal/store"
)

func main() {
	urlFlag := flag.String("url", "", "Server bind address (e.g., :8080 or 0.0.0.0:8080)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	defer cfg.Logger.Sync()
	logger := cfg.Logger

	bindAddr := cfg.BindAddr
	if *urlFlag != "" {
		bindAddr = *urlFlag
	}

	// Persistent store
	st, err := store.Open(filepath.Join(cfg.DataDir, "store"), logger)
	if err != nil {
		logger.Fatal("Failed to open store", zap.Error(err))
	}
	defer st.Close()

	// Library state
	lib := library.NewManager(st, logger)

	// Assistant provider
	var provider assistant.Provider
	switch cfg.AIProvider {
	case "ollama":
		provider = assistant.NewOllamaProvider(cfg.OllamaURL, cfg.OllamaModel)
	default:
		provider = assistant.NewOpenAIProvider(cfg.OpenAIKey, cfg.OpenAIModel)
	}
	ai := assistant.NewService(provider, cfg.AITimeout, logger)
	logger.Info("assistant provider ready", zap.String("provider", provider.Name()))

	handler := api.NewHandler(lib, ai, st, logger)

	// Set up Gin router
	r := gin.Default()
	r.Use(corsMiddleware())

	r.GET("/health", handler.HealthCheck)

	apiGroup := r.Group("/api")
	{
		// Books
		apiGroup.GET("/books", handler.ListBooks)
		apiGroup.POST("/books", handler.AddBook)
		apiGroup.GET("/books/:id", handler.GetBook)
		apiGroup.PUT("/books/:id", handler.UpdateBook)
		apiGroup.POST("/books/import", handler.ImportBooks)

		// Dashboard
		apiGroup.GET("/stats", handler.GetStats)

		// Assistant
		apiGroup.POST("/search", handler.SearchCatalog)
		apiGroup.POST("/search/add", handler.AddFromSearch)
		apiGroup.GET("/covers", handler.SearchCovers)
		apiGroup.POST("/chat", handler.Chat)
		apiGroup.GET("/chat/:id", handler.ChatHistory)

		// Profile
		apiGroup.GET("/profile", handler.GetProfile)
		apiGroup.PUT("/profile", handler.UpdateProfile)
	}

	logger.Info("shelfmate server starting",
		zap.String("addr", bindAddr),
		zap.String("data_dir", cfg.DataDir))
	if err := r.Run(bindAddr); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
