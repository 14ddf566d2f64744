package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/watchpay/watchpay/internal/auth"
	"github.com/watchpay/watchpay/internal/config"
	"github.com/watchpay/watchpay/internal/identity"
	"github.com/watchpay/watchpay/internal/ledger"
	"github.com/watchpay/watchpay/internal/middleware"
	"github.com/watchpay/watchpay/internal/notification"
	"github.com/watchpay/watchpay/internal/rewards"
	"github.com/watchpay/watchpay/internal/stats"
	"github.com/watchpay/watchpay/internal/wallet"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	// Health
	RegisterHealthRoutes(app, d)

	// Stores and services
	var store ledger.Store
	var identityRepo identity.Repository
	if d.DB != nil {
		store = ledger.NewPostgresStore(d.DB)
		identityRepo = identity.NewPostgresRepository(d.DB)
	} else {
		store = ledger.NewMemoryStore()
		identityRepo = identity.NewMemoryRepository()
	}

	ledgerSvc := ledger.NewService(store, ledger.ServiceConfig{
		MinWithdrawal: d.Cfg.MinWithdrawal,
	})
	identitySvc := identity.NewService(identityRepo)
	authSvc := auth.NewService(d.Cfg, identityRepo)
	statsSvc := stats.NewService(d.Cache, d.Logger)
	notifier := notification.NewLoggerNotifier(d.Logger)
	rewardsSvc := rewards.NewService(ledgerSvc, d.Cfg.VideoReward, d.Cfg.FollowReward)
	walletSvc := wallet.NewService(ledgerSvc, notifier, statsSvc, d.Cfg.AdminWhatsApp)

	authHandler := auth.NewHandler(identitySvc, authSvc, ledgerSvc, statsSvc)
	rewardsHandler := rewards.NewHandler(rewardsSvc, d.Cfg.ChannelURL)
	walletHandler := wallet.NewHandler(walletSvc)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public routes
	rateLimiter := middleware.LoginRateLimit(d.Cache, d.Cfg.LoginRateLimit)
	RegisterAuthRoutes(api, authHandler, rateLimiter)
	RegisterStatsRoutes(api, statsSvc)

	// Admin routes. Registered before the protected group: Group("") attaches
	// the JWT middleware to every /api/v1 route added after it, and the admin
	// endpoints authenticate with the shared token instead of a bearer token.
	admin := api.Group("/admin", middleware.AdminOnly(d.Cfg.AdminToken))
	admin.Post("/withdrawals/reverse", walletHandler.Reverse)

	// Protected routes
	jwtmw := middleware.JWTAuth(authSvc)
	protected := api.Group("", jwtmw)
	if d.Cache != nil {
		protected.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	protected.Get("/me", func(c *fiber.Ctx) error {
		uid, _ := c.Locals("user_id").(string)
		user, err := identityRepo.FindByID(c.UserContext(), uid)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "user not found")
		}
		return c.JSON(fiber.Map{
			"user_id":      user.ID,
			"email":        user.Email,
			"display_name": user.DisplayName,
			"created_at":   user.CreatedAt,
			"last_login":   user.LastLogin,
		})
	})

	RegisterSessionRoutes(protected, authHandler)
	RegisterWalletRoutes(protected, walletHandler)
	RegisterRewardRoutes(protected, rewardsHandler)

	return nil
}
