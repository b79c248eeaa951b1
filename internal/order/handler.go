package order

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/laundry-pos/internal/metrics"
	"go.uber.org/zap"
)

// IdempotencyKeyHeader carries the client's per-attempt key on POST /orders.
const IdempotencyKeyHeader = "Idempotency-Key"

// Handler exposes the Order service over HTTP.
type Handler struct {
	service *Service
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewHandler(s *Service, logger *zap.Logger, m *metrics.Metrics) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: s, logger: logger, metrics: m}
}

func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Post("/orders", h.createOrder)
	app.Get("/orders", h.getOrders)
	app.Get("/orders/:id", h.getOrder)
}

func (h *Handler) createOrder(c *fiber.Ctx) error {
	payload := new(Draft)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	key := c.Get(IdempotencyKeyHeader)
	created, err := h.service.Create(*payload, key)
	if err != nil {
		if errors.Is(err, ErrInvalidDraft) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
		}
		h.logger.Error("create order failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	h.metrics.ObserveOrder(created.Total)
	h.logger.Info("order created",
		zap.Int("id", created.ID),
		zap.String("total", created.Total.StringFixed(2)),
		zap.Int("lines", len(created.Items)),
		zap.String("idempotency_key", key),
	)
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) getOrders(c *fiber.Ctx) error {
	orders, err := h.service.List()
	if err != nil {
		h.logger.Error("list orders failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(orders)
}

func (h *Handler) getOrder(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid id"})
	}

	ord, err := h.service.GetByID(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(ord)
}
