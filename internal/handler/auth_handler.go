package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"stocksy/internal/service"
)

type AuthHandler struct {
	service service.AuthService
}

func NewAuthHandler(s service.AuthService) *AuthHandler {
	return &AuthHandler{service: s}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var cmd service.RegisterCommand
	if err := c.BodyParser(&cmd); err != nil {
		return writeError(c, fiber.StatusBadRequest, "Invalid JSON payload", err.Error())
	}

	user, err := h.service.Register(&cmd)
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			return writeError(c, fiber.StatusBadRequest, "Validation failed", verr.Messages...)
		case errors.Is(err, service.ErrEmailTaken):
			return writeError(c, fiber.StatusConflict, err.Error())
		default:
			return writeError(c, fiber.StatusInternalServerError, "Failed to register")
		}
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, fiber.StatusBadRequest, "Invalid JSON payload", err.Error())
	}

	resp, err := h.service.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return writeError(c, fiber.StatusUnauthorized, err.Error())
		}
		return writeError(c, fiber.StatusInternalServerError, "Failed to log in")
	}
	return c.JSON(resp)
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, fiber.StatusBadRequest, "Invalid JSON payload", err.Error())
	}
	if len(req.NewPassword) < 8 {
		return writeError(c, fiber.StatusBadRequest, "Validation failed",
			"new_password must be at least 8 characters")
	}

	if err := h.service.ResetPassword(req.Email, req.OldPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrInvalidCredentials):
			return writeError(c, fiber.StatusUnauthorized, "Invalid email or password")
		default:
			return writeError(c, fiber.StatusInternalServerError, "Failed to reset password")
		}
	}
	return c.SendStatus(fiber.StatusNoContent)
}
