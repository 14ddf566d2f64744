package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/watchpay/watchpay/internal/wallet"
)

// RegisterWalletRoutes wires the wallet endpoints for the authenticated user.
func RegisterWalletRoutes(r fiber.Router, h *wallet.Handler) {
	group := r.Group("/wallet")
	group.Get("", h.Overview)
	group.Post("/withdrawals", h.Withdraw)
	group.Get("/transactions", h.Transactions)
}
