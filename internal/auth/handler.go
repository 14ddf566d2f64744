package auth

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/watchpay/watchpay/internal/identity"
	"github.com/watchpay/watchpay/internal/ledger"
	"github.com/watchpay/watchpay/internal/stats"
)

var validate = validator.New()

// Handler exposes sign-up, sign-in, refresh, and logout endpoints. A new
// registration provisions the user's ledger account with zero balances.
type Handler struct {
	ids    *identity.Service
	svc    *Service
	ledger *ledger.Service
	stats  *stats.Service
}

// NewHandler builds an auth HTTP handler.
func NewHandler(ids *identity.Service, svc *Service, ledgerSvc *ledger.Service, statsSvc *stats.Service) *Handler {
	return &Handler{ids: ids, svc: svc, ledger: ledgerSvc, stats: statsSvc}
}

type registerRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	DisplayName string `json:"display_name" validate:"max=80"`
}

type sessionResponse struct {
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
	DisplayName  string `json:"display_name"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	Rank         string `json:"rank"`
	Balance      string `json:"balance"`
}

// Register creates a user plus their zero-balance ledger account and signs
// them in.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	user, err := h.ids.Register(c.UserContext(), identity.Credentials{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		if errors.Is(err, identity.ErrEmailTaken) {
			return fiber.NewError(http.StatusConflict, err.Error())
		}
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	account, err := h.ledger.CreateAccount(c.UserContext(), user.ID, user.Email, user.DisplayName)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	pair, err := h.svc.Login(user)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	if h.stats != nil {
		h.stats.RecordUser(c.UserContext())
	}

	return c.Status(http.StatusCreated).JSON(h.session(user, account, pair))
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login validates credentials and returns a token pair. The ledger account
// is provisioned on first sign-in when missing, which tolerates users who
// registered before the ledger existed.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	user, err := h.ids.Authenticate(c.UserContext(), identity.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		return fiber.NewError(http.StatusUnauthorized, err.Error())
	}

	account, err := h.ledger.CreateAccount(c.UserContext(), user.ID, user.Email, user.DisplayName)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	pair, err := h.svc.Login(user)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	return c.Status(http.StatusOK).JSON(h.session(user, account, pair))
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Refresh issues a new access token using a valid refresh token.
func (h *Handler) Refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	token, expiresIn, err := h.svc.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return fiber.NewError(http.StatusUnauthorized, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"access_token": token, "expires_in": expiresIn})
}

// Logout invalidates all outstanding tokens for the authenticated user.
func (h *Handler) Logout(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	if uid == "" {
		return fiber.NewError(http.StatusUnauthorized, "unauthorized")
	}
	if err := h.svc.Logout(c.UserContext(), uid); err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.SendStatus(http.StatusNoContent)
}

func (h *Handler) session(user identity.User, account ledger.Account, pair TokenPair) sessionResponse {
	return sessionResponse{
		UserID:       user.ID,
		Email:        user.Email,
		DisplayName:  user.DisplayName,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
		Rank:         account.Rank,
		Balance:      account.Balance.StringFixed(2),
	}
}
