package handlers

import (
	"errors"
	"strconv"

	"aurapay/internal/middleware"
	"aurapay/internal/services/admin"
	"aurapay/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	svc admin.Service
}

func NewAdminHandler(svc admin.Service) *AdminHandler {
	return &AdminHandler{svc: svc}
}

func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	p := utils.ParsePagination(c)
	users, total, err := h.svc.ListUsers(c.Context(), p.Limit, p.Offset)
	if err != nil {
		return utils.ServerError(c, "could not list users")
	}

	type userRow struct {
		ID        uint   `json:"id"`
		Email     string `json:"email"`
		Name      string `json:"name"`
		Role      string `json:"role"`
		Status    string `json:"status"`
		KYCStatus string `json:"kyc_status"`
	}
	rows := make([]userRow, 0, len(users))
	for _, u := range users {
		rows = append(rows, userRow{
			ID: u.ID, Email: u.Email, Name: u.Name,
			Role: u.Role, Status: u.Status, KYCStatus: u.KYCStatus,
		})
	}
	return utils.Success(c, "users", utils.PageResponse(rows, total, p))
}

func (h *AdminHandler) UpdateUserRole(c *fiber.Ctx) error {
	userID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return utils.BadRequest(c, "invalid user id")
	}
	var in struct {
		Role string `json:"role"`
	}
	if err := c.BodyParser(&in); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	user, err := h.svc.UpdateUserRole(c.Context(), middleware.UserID(c), uint(userID), in.Role)
	if err != nil {
		return adminError(c, err)
	}
	return utils.Success(c, "role updated", fiber.Map{"id": user.ID, "role": user.Role})
}

func (h *AdminHandler) ToggleUserStatus(c *fiber.Ctx) error {
	userID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return utils.BadRequest(c, "invalid user id")
	}
	var in struct {
		Reason string `json:"reason"`
	}
	_ = c.BodyParser(&in) // reason is optional

	user, err := h.svc.ToggleUserStatus(c.Context(), middleware.UserID(c), uint(userID), in.Reason)
	if err != nil {
		return adminError(c, err)
	}
	return utils.Success(c, "status updated", fiber.Map{"id": user.ID, "status": user.Status})
}

func (h *AdminHandler) ListCards(c *fiber.Ctx) error {
	p := utils.ParsePagination(c)
	cards, total, err := h.svc.ListCards(c.Context(), p.Limit, p.Offset)
	if err != nil {
		return utils.ServerError(c, "could not list cards")
	}
	return utils.Success(c, "cards", utils.PageResponse(cards, total, p))
}

func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.svc.GetStats(c.Context())
	if err != nil {
		return utils.ServerError(c, "could not compute stats")
	}
	return utils.Success(c, "stats", stats)
}

func adminError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, admin.ErrUserNotFound):
		return utils.NotFound(c, err.Error())
	case errors.Is(err, admin.ErrInvalidRole):
		return utils.BadRequest(c, err.Error())
	case errors.Is(err, admin.ErrSelfDemotion),
		errors.Is(err, admin.ErrSelfSuspension):
		return utils.Forbidden(c, err.Error())
	}
	return utils.ServerError(c, "admin operation failed")
}
