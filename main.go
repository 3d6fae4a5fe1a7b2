package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tcg-price-bot/app/config"
	"github.com/tcg-price-bot/app/controllers"
	"github.com/tcg-price-bot/app/services"
	"github.com/tcg-price-bot/internal/catalog"
	"github.com/tcg-price-bot/internal/classifier"
	"github.com/tcg-price-bot/internal/discord"
	"github.com/tcg-price-bot/internal/index"
	"github.com/tcg-price-bot/internal/normalizer"
	"github.com/tcg-price-bot/routes"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Cannot load configuration: ", err)
	}

	// 2. Init logger
	logger := initLogger(cfg.Env)
	defer logger.Sync()

	logger.Info("Starting TCG Price Bot")

	// 3. Core components
	textNormalizer, err := normalizer.NewTextNormalizer()
	if err != nil {
		logger.Fatal("Failed to build text normalizer", zap.Error(err))
	}

	catalogClient := catalog.NewClient(catalog.Config{
		BaseURL:    cfg.Catalog.BaseURL,
		CategoryID: cfg.Catalog.CategoryID,
		Timeout:    cfg.Catalog.Timeout,
	}, logger)

	controller := index.NewSnapshotController(catalogClient, index.ControllerConfig{
		Validity:    cfg.Catalog.Validity,
		MaxGroupAge: cfg.Catalog.MaxGroupAge,
		PacingDelay: cfg.Catalog.PacingDelay,
	}, index.Config{
		Weights: index.Weights{
			Name:      cfg.Matcher.NameWeight,
			CleanName: cfg.Matcher.CleanNameWeight,
			GroupName: cfg.Matcher.GroupNameWeight,
		},
		Threshold:     cfg.Matcher.Threshold,
		MinTermLength: cfg.Matcher.MinTermLength,
	}, logger)

	// 4. Services
	queryCache := services.NewQueryCacheService(cfg.Cache.QuerySize, cfg.Cache.QueryTTL, logger)
	priceService := services.NewPriceService(controller, textNormalizer, queryCache, logger)

	// 5. Discord bot
	bot, err := discord.NewBot(cfg.Discord, classifier.NewClassifier(), priceService, logger)
	if err != nil {
		logger.Fatal("Failed to build Discord bot", zap.Error(err))
	}
	if err := bot.Start(); err != nil {
		logger.Fatal("Failed to connect to Discord", zap.Error(err))
	}
	defer bot.Stop()

	// 6. Admin HTTP surface
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	adminController := controllers.NewAdminController(priceService, logger)
	routes.SetupAllRoutes(router, adminController)

	go func() {
		logger.Info("Admin server starting", zap.String("port", cfg.Server.Port))
		if err := router.Run(":" + cfg.Server.Port); err != nil {
			logger.Fatal("Admin server failed", zap.Error(err))
		}
	}()

	// 7. Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
}

// initLogger builds the structured logger for the configured environment.
func initLogger(env string) *zap.Logger {
	var config zap.Config
	if env == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
	}

	logger, err := config.Build()
	if err != nil {
		log.Fatal("Cannot initialize logger: ", err)
	}

	return logger
}
