package routes

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/watchpay/watchpay/internal/stats"
)

// RegisterStatsRoutes wires the public platform counters.
func RegisterStatsRoutes(r fiber.Router, svc *stats.Service) {
	r.Get("/stats", func(c *fiber.Ctx) error {
		snap, err := svc.Current(c.UserContext())
		if err != nil {
			return fiber.NewError(http.StatusServiceUnavailable, "stats unavailable")
		}
		return c.Status(http.StatusOK).JSON(snap)
	})
	r.Post("/stats/visit", func(c *fiber.Ctx) error {
		svc.RecordVisitor(c.UserContext())
		return c.SendStatus(http.StatusNoContent)
	})
}
