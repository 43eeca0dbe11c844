// Package webapi exposes the withdrawal service over HTTP using Fiber.
package webapi

import (
	"log/slog"

	"github.com/amirasaad/pixflow/pkg/config"
	"github.com/amirasaad/pixflow/pkg/domain"
	"github.com/amirasaad/pixflow/pkg/idempotency"
	"github.com/amirasaad/pixflow/pkg/notification"
	"github.com/amirasaad/pixflow/pkg/repository"
	"github.com/amirasaad/pixflow/pkg/service"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// Deps carries everything the HTTP layer needs. The initializer builds one
// at startup; nothing is resolved at request time.
type Deps struct {
	Service     *service.WithdrawalService
	Reads       repository.WithdrawReadRepository
	Idempotency idempotency.Service
	Notifier    notification.Sender
	Clock       domain.Clock
	Logger      *slog.Logger
	RateLimit   config.RateLimit
}

// NewApp builds the Fiber application with its middleware and routes.
func NewApp(deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			status := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			}
			return ErrorResponseJSON(c, status, "Internal Server Error", err.Error())
		},
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(limiter.New(limiter.Config{
		Max:        deps.RateLimit.MaxRequests,
		Expiration: deps.RateLimit.Window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return ErrorResponseJSON(c, fiber.StatusTooManyRequests, "Too Many Requests", "Rate limit exceeded")
		},
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})

	WithdrawRoutes(app, deps.Service, deps.Reads, deps.Idempotency, deps.Notifier, deps.Clock, deps.Logger)

	return app
}
