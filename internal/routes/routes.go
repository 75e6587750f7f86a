// Package routes wires repositories, services and handlers onto the Fiber app.
package routes

import (
	"time"

	"aurapay/internal/config"
	"aurapay/internal/handlers"
	"aurapay/internal/middleware"
	"aurapay/internal/models"
	"aurapay/internal/providers"
	"aurapay/internal/repositories"
	"aurapay/internal/services/admin"
	"aurapay/internal/services/auth"
	"aurapay/internal/services/card"
	"aurapay/internal/services/deposit"
	"aurapay/internal/services/wallet"
	"aurapay/internal/services/webhook"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"go.uber.org/zap"
)

// Setup builds the dependency graph and registers every route.
func Setup(app *fiber.App, registry *providers.Registry, logger *zap.Logger) {
	userRepo := repositories.NewUserRepository(repositories.DB)
	walletRepo := repositories.NewWalletRepository(repositories.DB)
	cardRepo := repositories.NewCardRepository(repositories.DB)
	depositRepo := repositories.NewDepositRepository(repositories.DB)
	webhookRepo := repositories.NewWebhookRepository(repositories.DB)

	walletSvc := wallet.NewService(walletRepo, wallet.Config{
		DefaultCurrency:      config.GetEnv("WALLET_CURRENCY", "USD"),
		MaxTransactionAmount: int64(config.GetIntEnv("WALLET_MAX_AMOUNT", 0)),
		MinTransactionAmount: int64(config.GetIntEnv("WALLET_MIN_AMOUNT", 0)),
	}, logger)
	authSvc := auth.NewService(userRepo, walletSvc, logger)
	cardSvc := card.NewService(cardRepo, registry, repositories.Cache, logger)
	depositSvc := deposit.NewService(depositRepo, registry, walletSvc, deposit.Config{
		RedirectURL:   config.GetEnv("APP_BASE_URL", "http://localhost:8080") + "/api/payment/verify-deposit",
		PendingWindow: config.GetDurationEnv("DEPOSIT_PENDING_WINDOW", 0),
	}, logger)
	webhookSvc := webhook.NewService(webhookRepo, logger)
	adminSvc := admin.NewService(userRepo, walletRepo, cardRepo, depositRepo, logger)

	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authSvc)
	walletHandler := handlers.NewWalletHandler(walletSvc)
	cardHandler := handlers.NewCardHandler(cardSvc, userRepo)
	depositHandler := handlers.NewDepositHandler(depositSvc, userRepo)
	webhookHandler := handlers.NewWebhookHandler(webhookSvc)
	adminHandler := handlers.NewAdminHandler(adminSvc)

	app.Get("/health", healthHandler.Check)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", loginLimiter(), authHandler.Login)
	authGroup.Post("/refresh", authHandler.Refresh)
	authGroup.Post("/logout", middleware.Protected(), authHandler.Logout)
	authGroup.Post("/change-password",
		middleware.Protected(),
		middleware.RequirePermission(models.PermissionChangePassword),
		authHandler.ChangePassword)

	// Providers redirect the user here after checkout; no auth possible.
	api.Get("/payment/verify-deposit", depositHandler.VerifyCallback)

	walletGroup := api.Group("/wallet", middleware.Protected())
	walletGroup.Get("/", middleware.RequirePermission(models.PermissionWalletRead), walletHandler.GetWallet)
	walletGroup.Post("/withdraw", middleware.RequirePermission(models.PermissionWalletWrite), walletHandler.Withdraw)
	walletGroup.Post("/transfer", middleware.RequirePermission(models.PermissionWalletWrite), walletHandler.Transfer)

	cardGroup := api.Group("/cards", middleware.Protected())
	cardGroup.Post("/", middleware.RequirePermission(models.PermissionCardWrite), cardHandler.Create)
	cardGroup.Get("/", middleware.RequirePermission(models.PermissionCardRead), cardHandler.List)
	cardGroup.Get("/:id", middleware.RequirePermission(models.PermissionCardRead), cardHandler.Get)
	cardGroup.Get("/:id/details",
		middleware.RequirePermission(models.PermissionCardDetail),
		detailsLimiter(),
		cardHandler.Details)
	cardGroup.Post("/:id/suspend", middleware.RequirePermission(models.PermissionCardWrite), cardHandler.Suspend)
	cardGroup.Post("/:id/activate", middleware.RequirePermission(models.PermissionCardWrite), cardHandler.Activate)
	cardGroup.Patch("/:id/status", middleware.RequirePermission(models.PermissionCardWrite), cardHandler.UpdateStatus)
	cardGroup.Get("/:id/transactions", middleware.RequirePermission(models.PermissionCardRead), cardHandler.Transactions)

	depositCard := api.Group("/deposit/card", middleware.Protected())
	depositCard.Post("/init", middleware.RequirePermission(models.PermissionDepositWrite), depositHandler.Initiate)
	depositCard.Get("/verify/:transactionId", middleware.RequirePermission(models.PermissionDepositWrite), depositHandler.VerifyByID)

	depositGroup := api.Group("/deposits", middleware.Protected())
	depositGroup.Get("/", depositHandler.List)
	depositGroup.Get("/:txRef", depositHandler.Status)
	depositGroup.Post("/:txRef/verify", middleware.RequirePermission(models.PermissionDepositWrite), depositHandler.Reverify)

	webhookGroup := api.Group("/webhooks",
		middleware.Protected(),
		middleware.RequirePermission(models.PermissionWebhookManage))
	webhookGroup.Post("/subscribe", webhookHandler.Subscribe)
	webhookGroup.Get("/", webhookHandler.List)
	webhookGroup.Delete("/:id", webhookHandler.Unsubscribe)

	adminGroup := api.Group("/admin", middleware.Protected(), middleware.AdminOnly())
	adminGroup.Get("/users", adminHandler.ListUsers)
	adminGroup.Patch("/users/:id/role", adminHandler.UpdateUserRole)
	adminGroup.Patch("/users/:id/toggle-status", adminHandler.ToggleUserStatus)
	adminGroup.Get("/cards", adminHandler.ListCards)
	adminGroup.Get("/stats", adminHandler.Stats)
}

// loginLimiter slows credential stuffing without touching other routes.
func loginLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        10,
		Expiration: time.Minute,
	})
}

// detailsLimiter bounds how often full card details can be pulled. Keyed per
// user so one client cannot starve others behind the same NAT.
func detailsLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        5,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			if claims := middleware.Claims(c); claims != nil {
				return claims.Email
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"message": "too many card detail requests, slow down",
			})
		},
	})
}
