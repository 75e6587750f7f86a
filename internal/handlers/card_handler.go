package handlers

import (
	"errors"
	"time"

	"aurapay/internal/middleware"
	"aurapay/internal/providers"
	"aurapay/internal/repositories"
	"aurapay/internal/services/card"
	"aurapay/internal/utils"
	"aurapay/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type CardHandler struct {
	svc   card.Service
	users repositories.UserRepository
}

func NewCardHandler(svc card.Service, users repositories.UserRepository) *CardHandler {
	return &CardHandler{svc: svc, users: users}
}

func (h *CardHandler) Create(c *fiber.Ctx) error {
	var in card.CreateCardInput
	if err := c.BodyParser(&in); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	if err := validation.Struct(in); err != nil {
		return utils.BadRequest(c, validation.Message(err))
	}

	user, err := h.users.GetByID(middleware.UserID(c))
	if err != nil {
		return utils.Unauthorized(c, "unknown user")
	}

	view, err := h.svc.CreateCard(c.Context(), user, in)
	if err != nil {
		return cardError(c, err)
	}
	// The PAN and CVV in this response are shown exactly once. They are not
	// stored and this endpoint will not return them again.
	return utils.Created(c, "card issued", view)
}

func (h *CardHandler) List(c *fiber.Ctx) error {
	views, err := h.svc.ListCards(c.Context(), middleware.UserID(c))
	if err != nil {
		return cardError(c, err)
	}
	return utils.Success(c, "cards", views)
}

func (h *CardHandler) Get(c *fiber.Ctx) error {
	view, err := h.svc.GetCard(c.Context(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return cardError(c, err)
	}
	return utils.Success(c, "card", view)
}

func (h *CardHandler) Details(c *fiber.Ctx) error {
	view, err := h.svc.GetCardDetails(c.Context(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return cardError(c, err)
	}
	return utils.Success(c, "card details", view)
}

func (h *CardHandler) UpdateStatus(c *fiber.Ctx) error {
	var in struct {
		Status string `json:"status" validate:"required,oneof=active suspended canceled"`
	}
	if err := c.BodyParser(&in); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	if err := validation.Struct(in); err != nil {
		return utils.BadRequest(c, validation.Message(err))
	}

	view, err := h.svc.UpdateStatus(c.Context(), middleware.UserID(c), c.Params("id"), in.Status)
	if err != nil {
		return cardError(c, err)
	}
	return utils.Success(c, "card status updated", view)
}

func (h *CardHandler) Suspend(c *fiber.Ctx) error {
	view, err := h.svc.UpdateStatus(c.Context(), middleware.UserID(c), c.Params("id"), "suspended")
	if err != nil {
		return cardError(c, err)
	}
	return utils.Success(c, "card suspended", view)
}

func (h *CardHandler) Activate(c *fiber.Ctx) error {
	view, err := h.svc.UpdateStatus(c.Context(), middleware.UserID(c), c.Params("id"), "active")
	if err != nil {
		return cardError(c, err)
	}
	return utils.Success(c, "card activated", view)
}

func (h *CardHandler) Transactions(c *fiber.Ctx) error {
	opts := providers.ListOptions{
		Limit:  c.QueryInt("limit", 25),
		Cursor: c.Query("cursor"),
	}
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return utils.BadRequest(c, "from must be RFC3339")
		}
		opts.From = t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return utils.BadRequest(c, "to must be RFC3339")
		}
		opts.To = t
	}

	page, err := h.svc.ListTransactions(c.Context(), middleware.UserID(c), c.Params("id"), opts)
	if err != nil {
		return cardError(c, err)
	}
	return utils.Success(c, "card transactions", fiber.Map{
		"transactions": page.Transactions,
		"next_cursor":  page.NextCursor,
	})
}

func cardError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, card.ErrCardNotFound):
		return utils.NotFound(c, err.Error())
	case errors.Is(err, card.ErrNotCardOwner):
		return utils.Forbidden(c, err.Error())
	case errors.Is(err, card.ErrCardTerminal):
		return utils.Conflict(c, err.Error())
	case errors.Is(err, card.ErrInvalidStatus),
		errors.Is(err, card.ErrInvalidFormFactor),
		errors.Is(err, card.ErrUnknownProvider),
		errors.Is(err, card.ErrNotVirtual):
		return utils.BadRequest(c, err.Error())
	}
	return providerError(c, err)
}

// providerError maps the provider error taxonomy onto HTTP statuses.
func providerError(c *fiber.Ctx, err error) error {
	var authErr *providers.AuthError
	var valErr *providers.ValidationError
	var declineErr *providers.DeclineError
	var notFoundErr *providers.NotFoundError
	switch {
	case errors.As(err, &authErr):
		return utils.ServerError(c, "provider configuration error")
	case errors.As(err, &valErr):
		return utils.BadRequest(c, valErr.Message)
	case errors.As(err, &declineErr):
		return utils.UnprocessableEntity(c, declineErr.Reason)
	case errors.As(err, &notFoundErr):
		return utils.NotFound(c, "not found at provider")
	case providers.IsRetryable(err):
		return utils.ServiceUnavailable(c, "provider temporarily unavailable")
	}
	return utils.ServerError(c, "operation failed")
}
