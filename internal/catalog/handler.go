package catalog

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Handler struct {
	service *Service
	logger  *zap.Logger
}

func NewHandler(service *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger}
}

func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Get("/services", h.listServices)
	app.Get("/services/:id", h.getService)
	app.Post("/services", h.createService)
	app.Put("/services/:id", h.updateService)
	app.Delete("/services/:id", h.deleteService)
}

// itemRequest mirrors Item but lets is_active default to true when omitted.
type itemRequest struct {
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	BasePrice decimal.Decimal `json:"base_price"`
	Unit      string          `json:"unit"`
	IsActive  *bool           `json:"is_active"`
}

func (r itemRequest) toItem() Item {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return Item{Name: r.Name, Category: r.Category, BasePrice: r.BasePrice, Unit: r.Unit, IsActive: active}
}

func (h *Handler) listServices(c *fiber.Ctx) error {
	items, err := h.service.List()
	if err != nil {
		h.logger.Error("list services failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(items)
}

func (h *Handler) getService(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid id"})
	}

	it, err := h.service.GetByID(id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(it)
}

func (h *Handler) createService(c *fiber.Ctx) error {
	payload := new(itemRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	created, err := h.service.Create(payload.toItem())
	if err != nil {
		return h.fail(c, err)
	}
	h.logger.Info("service created", zap.Int("id", created.ID), zap.String("name", created.Name))
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) updateService(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid id"})
	}

	payload := new(itemRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	updated, err := h.service.Update(id, payload.toItem())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(updated)
}

func (h *Handler) deleteService(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid id"})
	}

	if err := h.service.Delete(id); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, ErrInvalid):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	default:
		h.logger.Error("catalog request failed", zap.String("path", c.Path()), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
}
