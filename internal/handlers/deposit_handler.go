package handlers

import (
	"errors"

	"aurapay/internal/middleware"
	"aurapay/internal/repositories"
	"aurapay/internal/services/deposit"
	"aurapay/internal/utils"
	"aurapay/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type DepositHandler struct {
	svc   deposit.Service
	users repositories.UserRepository
}

func NewDepositHandler(svc deposit.Service, users repositories.UserRepository) *DepositHandler {
	return &DepositHandler{svc: svc, users: users}
}

func (h *DepositHandler) Initiate(c *fiber.Ctx) error {
	var in deposit.InitiateInput
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

	result, err := h.svc.Initiate(c.Context(), user, in)
	if err != nil {
		return depositError(c, err)
	}
	return utils.Created(c, "deposit initiated", result)
}

// VerifyCallback handles the provider redirect after checkout. It is
// unauthenticated because the user arrives here from the provider's page.
// Query params name the transaction only; any status param is advisory and
// ignored, verification is always done against the provider API.
func (h *DepositHandler) VerifyCallback(c *fiber.Ctx) error {
	txRef := c.Query("tx_ref")
	if txRef == "" {
		return utils.BadRequest(c, "tx_ref is required")
	}
	providerTxID := c.Query("transaction_id")

	result, err := h.svc.Verify(c.Context(), txRef, providerTxID)
	if err != nil {
		return depositError(c, err)
	}
	if result.Processing {
		return utils.Accepted(c, "deposit is still processing, check again shortly", result)
	}
	return utils.Success(c, "deposit verified", result)
}

// Reverify lets an authenticated user re-check a deposit that was still
// processing. Safe to call repeatedly; a settled deposit returns its
// recorded outcome without another provider call.
func (h *DepositHandler) Reverify(c *fiber.Ctx) error {
	return h.verifyOwned(c, c.Params("txRef"))
}

// VerifyByID re-checks a deposit addressed by the provider transaction id
// carried on the checkout redirect, or by the tx_ref itself.
func (h *DepositHandler) VerifyByID(c *fiber.Ctx) error {
	return h.verifyOwned(c, c.Params("transactionId"))
}

func (h *DepositHandler) verifyOwned(c *fiber.Ctx, ref string) error {
	result, err := h.svc.VerifyByRef(c.Context(), middleware.UserID(c), ref)
	if err != nil {
		return depositError(c, err)
	}
	if result.Processing {
		return utils.Accepted(c, "deposit is still processing, check again shortly", result)
	}
	return utils.Success(c, "deposit verified", result)
}

func (h *DepositHandler) Status(c *fiber.Ctx) error {
	d, err := h.svc.Status(c.Context(), middleware.UserID(c), c.Params("txRef"))
	if err != nil {
		return depositError(c, err)
	}
	return utils.Success(c, "deposit", fiber.Map{
		"tx_ref":      d.TxRef,
		"provider":    d.Provider,
		"amount":      d.Amount,
		"currency":    d.Currency,
		"status":      d.Status,
		"reason":      d.FailureReason,
		"verified_at": d.VerifiedAt,
		"created_at":  d.CreatedAt,
	})
}

func (h *DepositHandler) List(c *fiber.Ctx) error {
	p := utils.ParsePagination(c)
	deposits, total, err := h.svc.List(c.Context(), middleware.UserID(c), p.Limit, p.Offset)
	if err != nil {
		return utils.ServerError(c, "could not list deposits")
	}
	return utils.Success(c, "deposits", utils.PageResponse(deposits, total, p))
}

func depositError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, deposit.ErrDepositNotFound):
		return utils.NotFound(c, err.Error())
	case errors.Is(err, deposit.ErrNotDepositOwner):
		return utils.Forbidden(c, err.Error())
	case errors.Is(err, deposit.ErrInvalidAmount),
		errors.Is(err, deposit.ErrInvalidCurrency),
		errors.Is(err, deposit.ErrUnknownProvider):
		return utils.BadRequest(c, err.Error())
	case errors.Is(err, deposit.ErrProviderUnavailable):
		return utils.ServiceUnavailable(c, err.Error())
	}
	return providerError(c, err)
}
