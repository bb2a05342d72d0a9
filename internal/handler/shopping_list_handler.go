package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"stocksy/internal/service"
)

type ShoppingListHandler struct {
	service service.ShoppingListService
}

func NewShoppingListHandler(s service.ShoppingListService) *ShoppingListHandler {
	return &ShoppingListHandler{service: s}
}

type updateItemRequest struct {
	QuantityToPurchase *int `json:"quantity_to_purchase"`
}

func (h *ShoppingListHandler) List(c *fiber.Ctx) error {
	list, err := h.service.List(userID(c))
	if err != nil {
		return writeError(c, fiber.StatusInternalServerError, "Failed to fetch shopping list")
	}
	return c.JSON(list)
}

func (h *ShoppingListHandler) UpdateItem(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "Invalid item ID")
	}

	var req updateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, fiber.StatusBadRequest, "Invalid JSON payload", err.Error())
	}
	if req.QuantityToPurchase == nil || *req.QuantityToPurchase < 1 {
		return writeError(c, fiber.StatusBadRequest, "Validation failed",
			"quantity_to_purchase must be a positive integer")
	}

	item, err := h.service.UpdateQuantity(userID(c), id, *req.QuantityToPurchase)
	if err != nil {
		if errors.Is(err, service.ErrItemNotFound) {
			return writeError(c, fiber.StatusNotFound, err.Error())
		}
		return writeError(c, fiber.StatusInternalServerError, "Failed to update shopping list item")
	}
	return c.JSON(item)
}

func (h *ShoppingListHandler) CheckInItem(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "Invalid item ID")
	}

	if err := h.service.CheckInItem(userID(c), id); err != nil {
		if errors.Is(err, service.ErrItemNotFound) {
			return writeError(c, fiber.StatusNotFound, err.Error())
		}
		return writeError(c, fiber.StatusInternalServerError, "Failed to check in item")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ShoppingListHandler) CheckInAll(c *fiber.Ctx) error {
	if err := h.service.CheckInAll(userID(c)); err != nil {
		if errors.Is(err, service.ErrEmptyList) {
			return writeError(c, fiber.StatusNotFound, "Shopping list is empty")
		}
		return writeError(c, fiber.StatusInternalServerError, "Failed to check in all items")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
