package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"stocksy/internal/repository"
	"stocksy/internal/service"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

type ProductHandler struct {
	service service.ProductService
}

func NewProductHandler(s service.ProductService) *ProductHandler {
	return &ProductHandler{service: s}
}

// parseListQuery validates page/limit/sort/order; any malformed value
// is a 400 rather than a silent default.
func parseListQuery(c *fiber.Ctx) (repository.ListQuery, error) {
	q := repository.ListQuery{Page: 1, Limit: defaultLimit, Sort: "name", Order: "asc"}

	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return q, errors.New("page must be a positive integer")
		}
		q.Page = page
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxLimit {
			return q, errors.New("limit must be between 1 and 100")
		}
		q.Limit = limit
	}
	if raw := c.Query("sort"); raw != "" {
		if raw != "name" && raw != "quantity" {
			return q, errors.New("sort must be 'name' or 'quantity'")
		}
		q.Sort = raw
	}
	if raw := c.Query("order"); raw != "" {
		if raw != "asc" && raw != "desc" {
			return q, errors.New("order must be 'asc' or 'desc'")
		}
		q.Order = raw
	}
	return q, nil
}

func (h *ProductHandler) List(c *fiber.Ctx) error {
	q, err := parseListQuery(c)
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "Invalid query parameters", err.Error())
	}

	list, err := h.service.List(userID(c), q)
	if err != nil {
		return writeError(c, fiber.StatusInternalServerError, "Failed to fetch products")
	}
	return c.JSON(list)
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var cmd service.CreateProductCommand
	if err := c.BodyParser(&cmd); err != nil {
		return writeError(c, fiber.StatusBadRequest, "Invalid JSON payload", err.Error())
	}

	product, err := h.service.Create(userID(c), &cmd)
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			return writeError(c, fiber.StatusBadRequest, "Validation failed", verr.Messages...)
		case errors.Is(err, service.ErrDuplicateName):
			return writeError(c, fiber.StatusConflict, err.Error())
		default:
			return writeError(c, fiber.StatusInternalServerError, "Failed to create product")
		}
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "Invalid product ID")
	}

	var cmd service.UpdateProductCommand
	if err := c.BodyParser(&cmd); err != nil {
		return writeError(c, fiber.StatusBadRequest, "Invalid JSON payload", err.Error())
	}

	product, err := h.service.Update(userID(c), id, &cmd)
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			return writeError(c, fiber.StatusBadRequest, "Validation failed", verr.Messages...)
		case errors.Is(err, service.ErrProductNotFound):
			return writeError(c, fiber.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrDuplicateName):
			return writeError(c, fiber.StatusConflict, err.Error())
		default:
			return writeError(c, fiber.StatusInternalServerError, "Failed to update product")
		}
	}
	return c.JSON(product)
}

func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "Invalid product ID")
	}

	if err := h.service.Delete(userID(c), id); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			return writeError(c, fiber.StatusNotFound, err.Error())
		}
		return writeError(c, fiber.StatusInternalServerError, "Failed to delete product")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
