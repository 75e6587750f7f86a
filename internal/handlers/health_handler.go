package handlers

import (
	"context"

	"aurapay/internal/repositories"
	"aurapay/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// Check reports liveness plus dependency status. The cache being down is
// reported but does not fail the check; the database being down does.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	status := fiber.Map{"api": "ok"}

	sqlDB, err := repositories.DB.DB()
	if err != nil || sqlDB.PingContext(c.Context()) != nil {
		status["database"] = "down"
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"success": false,
			"message": "degraded",
			"data":    status,
		})
	}
	status["database"] = "ok"

	status["cache"] = "ok"
	if hc, ok := repositories.Cache.(interface{ HealthCheck(context.Context) error }); ok {
		if hc.HealthCheck(c.Context()) != nil {
			status["cache"] = "down"
		}
	}

	return utils.Success(c, "healthy", status)
}
