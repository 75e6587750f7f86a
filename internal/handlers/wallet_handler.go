package handlers

import (
	"errors"

	"aurapay/internal/middleware"
	"aurapay/internal/services/wallet"
	"aurapay/internal/utils"
	"aurapay/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type WalletHandler struct {
	svc wallet.Service
}

func NewWalletHandler(svc wallet.Service) *WalletHandler {
	return &WalletHandler{svc: svc}
}

func (h *WalletHandler) GetWallet(c *fiber.Ctx) error {
	w, err := h.svc.GetWallet(c.Context(), middleware.UserID(c))
	if err != nil {
		if errors.Is(err, wallet.ErrWalletNotFound) {
			return utils.NotFound(c, err.Error())
		}
		return utils.ServerError(c, "could not load wallet")
	}
	return utils.Success(c, "wallet", fiber.Map{
		"balance":  w.Balance,
		"currency": w.Currency,
		"status":   w.Status,
	})
}

func (h *WalletHandler) Withdraw(c *fiber.Ctx) error {
	var in struct {
		Amount      int64  `json:"amount" validate:"required,gt=0"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&in); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	if err := validation.Struct(in); err != nil {
		return utils.BadRequest(c, validation.Message(err))
	}

	w, err := h.svc.Withdraw(c.Context(), middleware.UserID(c), in.Amount, in.Description)
	if err != nil {
		return walletError(c, err)
	}
	return utils.Success(c, "withdrawal completed", fiber.Map{
		"balance":  w.Balance,
		"currency": w.Currency,
	})
}

func (h *WalletHandler) Transfer(c *fiber.Ctx) error {
	var in struct {
		ToUserID    uint   `json:"to_user_id" validate:"required"`
		Amount      int64  `json:"amount" validate:"required,gt=0"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&in); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	if err := validation.Struct(in); err != nil {
		return utils.BadRequest(c, validation.Message(err))
	}

	err := h.svc.Transfer(c.Context(), middleware.UserID(c), in.ToUserID, in.Amount, in.Description)
	if err != nil {
		return walletError(c, err)
	}
	return utils.Success(c, "transfer completed", nil)
}

func walletError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, wallet.ErrInvalidAmount):
		return utils.BadRequest(c, err.Error())
	case errors.Is(err, wallet.ErrSelfTransfer):
		return utils.BadRequest(c, err.Error())
	case errors.Is(err, wallet.ErrInsufficientBalance):
		return utils.UnprocessableEntity(c, err.Error())
	case errors.Is(err, wallet.ErrCurrencyMismatch):
		return utils.UnprocessableEntity(c, err.Error())
	case errors.Is(err, wallet.ErrWalletLocked):
		return utils.Forbidden(c, err.Error())
	case errors.Is(err, wallet.ErrWalletNotFound):
		return utils.NotFound(c, err.Error())
	}
	return utils.ServerError(c, "wallet operation failed")
}
