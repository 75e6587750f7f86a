package main

import (
	"os"
	"os/signal"
	"syscall"

	"aurapay/internal/config"
	"aurapay/internal/providers"
	"aurapay/internal/providers/airwallex"
	"aurapay/internal/providers/binance"
	"aurapay/internal/providers/flutterwave"
	"aurapay/internal/providers/lithic"
	"aurapay/internal/providers/stripeissuing"
	"aurapay/internal/repositories"
	"aurapay/internal/routes"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func main() {
	config.LoadEnv()

	logger := newLogger()
	defer logger.Sync()

	if err := repositories.InitDB(); err != nil {
		logger.Fatal("database init failed", zap.Error(err))
	}

	registry := buildRegistry(logger)

	app := fiber.New(fiber.Config{
		AppName:      "aurapay",
		ErrorHandler: errorHandler(logger),
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: config.GetEnv("CORS_ORIGINS", "*"),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(compress.New())

	routes.Setup(app, registry, logger)

	go func() {
		addr := ":" + config.GetEnv("PORT", "8080")
		logger.Info("server listening", zap.String("addr", addr))
		if err := app.Listen(addr); err != nil {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	if err := app.Shutdown(); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
	if repositories.Cache != nil {
		if err := repositories.Cache.Close(); err != nil {
			logger.Error("cache close error", zap.Error(err))
		}
	}
}

func newLogger() *zap.Logger {
	if config.IsProduction() {
		logger, err := zap.NewProduction()
		if err != nil {
			panic(err)
		}
		return logger
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	return logger
}

// buildRegistry registers every provider whose credentials are configured.
// A provider with missing credentials is skipped with a warning so a partial
// configuration still serves the providers it has.
func buildRegistry(logger *zap.Logger) *providers.Registry {
	creds := config.LoadProviderCredentials()
	registry := providers.NewRegistry()

	if creds.StripeSecretKey != "" {
		registry.RegisterCard(stripeissuing.New(creds.StripeSecretKey, logger))
	} else {
		logger.Warn("stripe disabled, no credentials")
	}

	if creds.AirwallexClientID != "" && creds.AirwallexAPIKey != "" {
		registry.RegisterCard(airwallex.New(airwallex.Config{
			ClientID: creds.AirwallexClientID,
			APIKey:   creds.AirwallexAPIKey,
			BaseURL:  creds.AirwallexBaseURL,
		}, logger))
	} else {
		logger.Warn("airwallex disabled, no credentials")
	}

	if creds.LithicAPIKey != "" {
		registry.RegisterCard(lithic.New(lithic.Config{
			APIKey:     creds.LithicAPIKey,
			BaseURL:    creds.LithicBaseURL,
			Production: config.IsProduction(),
		}, logger))
	} else {
		logger.Warn("lithic disabled, no credentials")
	}

	if creds.FlutterwaveSecretKey != "" {
		registry.RegisterPayment(flutterwave.New(flutterwave.Config{
			SecretKey:     creds.FlutterwaveSecretKey,
			PublicKey:     creds.FlutterwavePublicKey,
			EncryptionKey: creds.FlutterwaveEncryptionKey,
			BaseURL:       creds.FlutterwaveBaseURL,
		}, logger))
	} else {
		logger.Warn("flutterwave disabled, no credentials")
	}

	if creds.BinanceAPIKey != "" && creds.BinanceSecretKey != "" {
		registry.RegisterPayment(binance.New(binance.Config{
			APIKey:     creds.BinanceAPIKey,
			SecretKey:  creds.BinanceSecretKey,
			MerchantID: creds.BinanceMerchantID,
			BaseURL:    creds.BinanceBaseURL,
		}, logger))
	} else {
		logger.Warn("binance pay disabled, no credentials")
	}

	logger.Info("providers registered",
		zap.Strings("card_providers", registry.CardProviderNames()))
	return registry
}

func errorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
		}
		if code >= 500 {
			logger.Error("unhandled request error",
				zap.String("path", c.Path()), zap.Error(err))
		}
		return c.Status(code).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}
}
