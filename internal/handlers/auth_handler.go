package handlers

import (
	"errors"

	"aurapay/internal/middleware"
	"aurapay/internal/services/auth"
	"aurapay/internal/utils"
	"aurapay/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	svc auth.Service
}

func NewAuthHandler(svc auth.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in auth.RegisterInput
	if err := c.BodyParser(&in); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	if err := validation.Struct(in); err != nil {
		return utils.BadRequest(c, validation.Message(err))
	}

	user, err := h.svc.Register(c.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailTaken):
			return utils.Conflict(c, err.Error())
		case errors.Is(err, auth.ErrWeakPassword):
			return utils.BadRequest(c, err.Error())
		}
		return utils.ServerError(c, "registration failed")
	}

	return utils.Created(c, "account created", fiber.Map{
		"id":    user.ID,
		"email": user.Email,
		"name":  user.Name,
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in auth.LoginInput
	if err := c.BodyParser(&in); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	if err := validation.Struct(in); err != nil {
		return utils.BadRequest(c, validation.Message(err))
	}

	tokens, user, err := h.svc.Login(c.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			return utils.Unauthorized(c, err.Error())
		case errors.Is(err, auth.ErrAccountSuspended):
			return utils.Forbidden(c, err.Error())
		}
		return utils.ServerError(c, "login failed")
	}

	return utils.Success(c, "logged in", fiber.Map{
		"tokens": tokens,
		"user": fiber.Map{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.Name,
			"role":  user.Role,
		},
	})
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var in struct {
		RefreshToken string `json:"refresh_token" validate:"required"`
	}
	if err := c.BodyParser(&in); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	if in.RefreshToken == "" {
		return utils.BadRequest(c, "refresh_token is required")
	}

	tokens, err := h.svc.RefreshTokens(c.Context(), in.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidToken):
			return utils.Unauthorized(c, err.Error())
		case errors.Is(err, auth.ErrAccountSuspended):
			return utils.Forbidden(c, err.Error())
		}
		return utils.ServerError(c, "token refresh failed")
	}
	return utils.Success(c, "tokens refreshed", tokens)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.svc.Logout(c.Context(), middleware.UserID(c)); err != nil {
		return utils.ServerError(c, "logout failed")
	}
	return utils.Success(c, "logged out", nil)
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var in auth.ChangePasswordInput
	if err := c.BodyParser(&in); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	if err := validation.Struct(in); err != nil {
		return utils.BadRequest(c, validation.Message(err))
	}

	err := h.svc.ChangePassword(c.Context(), middleware.UserID(c), in)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			return utils.Unauthorized(c, "current password is incorrect")
		case errors.Is(err, auth.ErrWeakPassword):
			return utils.BadRequest(c, err.Error())
		case errors.Is(err, auth.ErrUserNotFound):
			return utils.NotFound(c, err.Error())
		}
		return utils.ServerError(c, "password change failed")
	}
	return utils.Success(c, "password changed", nil)
}
