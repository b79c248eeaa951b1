package health

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handler answers GET / and GET /health. Without a database it always reports ok.
type Handler struct {
	db      Pinger
	timeout time.Duration
	logger  *zap.Logger
}

func NewHandler(db Pinger, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{db: db, timeout: time.Second, logger: logger}
}

func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Get("/", h.getHome)
	app.Get("/health", h.getHealth)
}

func (h *Handler) getHome(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "Laundry POS API up"})
}

func (h *Handler) getHealth(c *fiber.Ctx) error {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			h.logger.Warn("database ping failed", zap.Error(err))
			return c.JSON(fiber.Map{"status": StatusDegraded})
		}
	}
	return c.JSON(fiber.Map{"status": StatusOK})
}
