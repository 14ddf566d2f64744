package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/watchpay/watchpay/internal/rewards"
)

// RegisterRewardRoutes wires the reward claim endpoints.
func RegisterRewardRoutes(r fiber.Router, h *rewards.Handler) {
	group := r.Group("/rewards")
	group.Post("/video-complete", h.VideoComplete)
	group.Post("/channel-follow", h.ChannelFollow)
}
