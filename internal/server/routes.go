package server

import (
	"strconv"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func (s *FiberServer) RegisterFiberRoutes() {
	// Apply CORS middleware
	s.App.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders:     "Accept,Authorization,Content-Type",
		AllowCredentials: false, // credentials require explicit origins
		MaxAge:           300,
	}))

	// Basic routes
	s.App.Get("/health", s.healthHandler)

	api := s.App.Group("/api/v1")

	// User routes
	api.Get("/user/:telegramId", s.getUserHandler)
	api.Get("/user/:telegramId/balance", s.getUserBalanceHandler)
	api.Get("/user/:telegramId/transactions", s.getUserTransactionsHandler)
	api.Get("/user/:telegramId/history", s.getUserGameHistoryHandler)
	api.Get("/user/:telegramId/daily-bonus", s.checkDailyBonusHandler)
	api.Post("/user/:telegramId/daily-bonus", s.claimDailyBonusHandler)
	api.Post("/user/:telegramId/promo", s.redeemPromoHandler)

	// Admin routes, founder only
	admin := api.Group("/admin", s.requireFounder)
	admin.Get("/users", s.adminListUsersHandler)
	admin.Post("/broadcast", s.adminBroadcastHandler)
	admin.Post("/badge", s.adminGiveBadgeHandler)
	admin.Post("/balance", s.adminChangeBalanceHandler)
	admin.Get("/promos", s.adminListPromosHandler)
	admin.Post("/promo", s.adminAddPromoHandler)
	admin.Post("/maintenance", s.adminMaintenanceHandler)
	admin.Post("/fn-live/block", s.adminBlockHandler)
	admin.Post("/fn-live/unblock", s.adminUnblockHandler)
	admin.Post("/fn-live/toggle", s.adminToggleFnLiveHandler)

	// WebSocket route
	s.App.Get("/ws", websocket.New(s.gameWebSocketHandler))
}

// requireFounder guards the admin group. The caller identifies itself with
// an X-Telegram-Id header.
func (s *FiberServer) requireFounder(c *fiber.Ctx) error {
	telegramID, err := strconv.ParseInt(c.Get("X-Telegram-Id"), 10, 64)
	if err != nil || telegramID == 0 {
		return c.Status(401).JSON(fiber.Map{
			"error": "X-Telegram-Id header is required",
		})
	}

	founder, err := s.store.Users.IsFounder(c.Context(), telegramID)
	if err != nil || !founder {
		return c.Status(403).JSON(fiber.Map{
			"error": "founder access required",
		})
	}

	c.Locals("telegram_id", telegramID)
	return c.Next()
}
