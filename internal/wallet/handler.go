package wallet

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/watchpay/watchpay/internal/ledger"
)

var validate = validator.New()

// Handler exposes wallet HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a wallet HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type transactionResponse struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	Method      string `json:"method,omitempty"`
	Description string `json:"description"`
	Timestamp   string `json:"timestamp"`
}

// Overview returns the wallet summary for the authenticated user.
func (h *Handler) Overview(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)

	overview, err := h.service.Overview(c.UserContext(), uid)
	if err != nil {
		return mapLedgerError(err)
	}
	account := overview.Account
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"account_id":       account.ID,
		"email":            account.Email,
		"display_name":     account.DisplayName,
		"balance":          account.Balance.StringFixed(2),
		"total_earnings":   account.TotalEarnings.StringFixed(2),
		"withdrawn_amount": account.WithdrawnAmount.StringFixed(2),
		"ads_watched":      account.AdsWatched,
		"streak":           account.Streak,
		"rank":             account.Rank,
		"created_at":       account.CreatedAt,
		"min_withdrawal":   overview.MinWithdrawal.StringFixed(2),
		"methods":          overview.Methods,
		"as_of":            overview.AsOf,
	})
}

type withdrawRequest struct {
	Amount string `json:"amount" validate:"required"`
	Method string `json:"method" validate:"required"`
}

// Withdraw requests a payout. The response includes the WhatsApp link the
// client opens for admin approval.
func (h *Handler) Withdraw(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)

	var req withdrawRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "amount must be a decimal number")
	}

	result, err := h.service.Withdraw(c.UserContext(), uid, amount, req.Method)
	if err != nil {
		return mapLedgerError(err)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"transaction_id":   result.Txn.ID,
		"amount":           result.Txn.Amount.StringFixed(2),
		"method":           result.Txn.Method,
		"balance":          result.Account.Balance.StringFixed(2),
		"withdrawn_amount": result.Account.WithdrawnAmount.StringFixed(2),
		"approval_url":     result.ApprovalURL,
		"status":           "pending_approval",
	})
}

// Transactions lists the account history, newest first. Supports
// ?filter=all|earn|withdraw and ?limit=N.
func (h *Handler) Transactions(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	filter := ledger.Filter(c.Query("filter", string(ledger.FilterAll)))
	limit := c.QueryInt("limit", 0)

	txns, err := h.service.History(c.UserContext(), uid, filter, limit)
	if err != nil {
		return mapLedgerError(err)
	}

	out := make([]transactionResponse, 0, len(txns))
	for _, txn := range txns {
		out = append(out, transactionResponse{
			ID:          txn.ID,
			Type:        string(txn.Type),
			Amount:      txn.Amount.StringFixed(2),
			Method:      txn.Method,
			Description: txn.Description,
			Timestamp:   txn.Timestamp.Format(time.RFC3339Nano),
		})
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"transactions": out})
}

type reverseRequest struct {
	TransactionID string `json:"transaction_id" validate:"required,uuid4"`
}

// Reverse is the admin endpoint compensating a rejected withdrawal.
func (h *Handler) Reverse(c *fiber.Ctx) error {
	var req reverseRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	account, txn, err := h.service.Reverse(c.UserContext(), req.TransactionID)
	if err != nil {
		return mapLedgerError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"transaction_id":   txn.ID,
		"reversed":         req.TransactionID,
		"amount":           txn.Amount.StringFixed(2),
		"balance":          account.Balance.StringFixed(2),
		"withdrawn_amount": account.WithdrawnAmount.StringFixed(2),
	})
}

// mapLedgerError translates the ledger taxonomy into one status per kind so
// clients can render a specific message.
func mapLedgerError(err error) error {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrBelowMinimum),
		errors.Is(err, ledger.ErrInvalidMethod),
		errors.Is(err, ledger.ErrInvalidArgument):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrInsufficientBalance):
		return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ledger.ErrDuplicateReward), errors.Is(err, ledger.ErrConflict):
		return fiber.NewError(http.StatusConflict, err.Error())
	case errors.Is(err, ledger.ErrStoreUnavailable):
		return fiber.NewError(http.StatusServiceUnavailable, err.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}
