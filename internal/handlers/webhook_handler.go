package handlers

import (
	"errors"

	"aurapay/internal/middleware"
	"aurapay/internal/services/webhook"
	"aurapay/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type WebhookHandler struct {
	svc webhook.Service
}

func NewWebhookHandler(svc webhook.Service) *WebhookHandler {
	return &WebhookHandler{svc: svc}
}

func (h *WebhookHandler) Subscribe(c *fiber.Ctx) error {
	var in webhook.SubscribeInput
	if err := c.BodyParser(&in); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	sub, err := h.svc.Subscribe(c.Context(), middleware.UserID(c), in)
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidURL) {
			return utils.BadRequest(c, err.Error())
		}
		return utils.ServerError(c, "could not create subscription")
	}
	return utils.Created(c, "webhook subscribed", sub)
}

func (h *WebhookHandler) List(c *fiber.Ctx) error {
	subs, err := h.svc.List(c.Context())
	if err != nil {
		return utils.ServerError(c, "could not list subscriptions")
	}
	return utils.Success(c, "webhooks", subs)
}

func (h *WebhookHandler) Unsubscribe(c *fiber.Ctx) error {
	if err := h.svc.Unsubscribe(c.Context(), c.Params("id")); err != nil {
		if errors.Is(err, webhook.ErrWebhookNotFound) {
			return utils.NotFound(c, err.Error())
		}
		return utils.ServerError(c, "could not delete subscription")
	}
	return utils.Success(c, "webhook unsubscribed", nil)
}
