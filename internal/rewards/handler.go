package rewards

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/watchpay/watchpay/internal/ledger"
)

var validate = validator.New()

// Handler exposes the reward trigger endpoints.
type Handler struct {
	service    *Service
	channelURL string
}

// NewHandler builds a rewards HTTP handler.
func NewHandler(service *Service, channelURL string) *Handler {
	return &Handler{service: service, channelURL: channelURL}
}

type videoRequest struct {
	VideoID string `json:"video_id" validate:"required,max=128"`
}

type claimResponse struct {
	TransactionID  string `json:"transaction_id"`
	Amount         string `json:"amount"`
	Balance        string `json:"balance"`
	TotalEarnings  string `json:"total_earnings"`
	AdsWatched     int    `json:"ads_watched"`
	Rank           string `json:"rank"`
	AlreadyClaimed bool   `json:"already_claimed"`
}

// VideoComplete credits the reward for a finished video.
func (h *Handler) VideoComplete(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	var req videoRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	result, err := h.service.CompleteVideo(c.UserContext(), uid, req.VideoID)
	if err != nil {
		return mapLedgerError(err)
	}
	status := http.StatusCreated
	if result.AlreadyClaimed {
		status = http.StatusOK
	}
	return c.Status(status).JSON(toClaimResponse(result))
}

// ChannelFollow credits the one-time channel-follow reward and echoes the
// channel URL for the client to open.
func (h *Handler) ChannelFollow(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)

	result, err := h.service.FollowChannel(c.UserContext(), uid)
	if err != nil {
		return mapLedgerError(err)
	}
	resp := toClaimResponse(result)
	status := http.StatusCreated
	if result.AlreadyClaimed {
		status = http.StatusOK
	}
	return c.Status(status).JSON(fiber.Map{
		"claim":       resp,
		"channel_url": h.channelURL,
	})
}

func toClaimResponse(result Result) claimResponse {
	return claimResponse{
		TransactionID:  result.Txn.ID,
		Amount:         result.Txn.Amount.StringFixed(2),
		Balance:        result.Account.Balance.StringFixed(2),
		TotalEarnings:  result.Account.TotalEarnings.StringFixed(2),
		AdsWatched:     result.Account.AdsWatched,
		Rank:           result.Account.Rank,
		AlreadyClaimed: result.AlreadyClaimed,
	}
}

func mapLedgerError(err error) error {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrInvalidArgument):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrStoreUnavailable):
		return fiber.NewError(http.StatusServiceUnavailable, err.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}
