package server

import (
	"time"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"frnmines/internal/store"
)

// Admin handlers. All of these sit behind requireFounder.

func (s *FiberServer) adminListUsersHandler(c *fiber.Ctx) error {
	users, err := s.store.Users.List(c.Context())
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to load users"})
	}
	return c.JSON(fiber.Map{"users": users})
}

func (s *FiberServer) adminBroadcastHandler(c *fiber.Ctx) error {
	var body struct {
		Message string `json:"message"`
	}
	if err := c.BodyParser(&body); err != nil || body.Message == "" {
		return c.Status(400).JSON(fiber.Map{"error": "message is required"})
	}

	s.hub.Broadcast(map[string]interface{}{
		"type":    "admin_message",
		"message": body.Message,
	})

	return c.JSON(fiber.Map{"success": true})
}

func (s *FiberServer) adminGiveBadgeHandler(c *fiber.Ctx) error {
	var body struct {
		TelegramID int64  `json:"telegram_id"`
		Badge      string `json:"badge"`
	}
	if err := c.BodyParser(&body); err != nil || body.TelegramID == 0 || body.Badge == "" {
		return c.Status(400).JSON(fiber.Map{"error": "telegram_id and badge are required"})
	}

	if err := s.store.Badges.Grant(c.Context(), body.TelegramID, body.Badge); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to grant badge"})
	}

	s.hub.SendToUser(body.TelegramID, map[string]interface{}{
		"type":  "badge_received",
		"badge": body.Badge,
	})

	return c.JSON(fiber.Map{"success": true})
}

func (s *FiberServer) adminChangeBalanceHandler(c *fiber.Ctx) error {
	var body struct {
		TelegramID int64 `json:"telegram_id"`
		Delta      int64 `json:"delta"`
	}
	if err := c.BodyParser(&body); err != nil || body.TelegramID == 0 || body.Delta == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "telegram_id and delta are required"})
	}

	newBalance, err := s.store.Users.AdjustBalance(c.Context(), body.TelegramID, body.Delta)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to adjust balance"})
	}
	if err := s.store.Transactions.Record(c.Context(), body.TelegramID, store.TxTypeAdmin, body.Delta); err != nil {
		log.Errorf("failed to record admin transaction: %v", err)
	}

	s.hub.SendToUser(body.TelegramID, map[string]interface{}{
		"type":        "balance_changed",
		"new_balance": newBalance,
	})

	return c.JSON(fiber.Map{
		"success":     true,
		"new_balance": newBalance,
	})
}

func (s *FiberServer) adminListPromosHandler(c *fiber.Ctx) error {
	promos, err := s.store.Promos.List(c.Context())
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to load promos"})
	}
	return c.JSON(fiber.Map{"promocodes": promos})
}

func (s *FiberServer) adminAddPromoHandler(c *fiber.Ctx) error {
	var body struct {
		Code   string `json:"code"`
		Amount int64  `json:"amount"`
	}
	if err := c.BodyParser(&body); err != nil || body.Code == "" || body.Amount <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "code and a positive amount are required"})
	}

	if err := s.store.Promos.Create(c.Context(), body.Code, body.Amount); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to create promo"})
	}

	return c.JSON(fiber.Map{"success": true})
}

func (s *FiberServer) adminMaintenanceHandler(c *fiber.Ctx) error {
	var body struct {
		Enabled bool `json:"enabled"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := s.store.Settings.SetBool(c.Context(), store.SettingMaintenanceMode, body.Enabled); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to update setting"})
	}

	s.hub.Broadcast(map[string]interface{}{
		"type":    "maintenance_mode",
		"enabled": body.Enabled,
	})

	return c.JSON(fiber.Map{"success": true, "enabled": body.Enabled})
}

func (s *FiberServer) adminBlockHandler(c *fiber.Ctx) error {
	var body struct {
		TelegramID int64  `json:"telegram_id"`
		Reason     string `json:"reason"`
		Hours      int    `json:"hours"`
	}
	if err := c.BodyParser(&body); err != nil || body.TelegramID == 0 || body.Hours <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "telegram_id and positive hours are required"})
	}

	until := time.Now().Add(time.Duration(body.Hours) * time.Hour)
	if err := s.store.Blocks.Create(c.Context(), body.TelegramID, body.Reason, until); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to block user"})
	}

	s.hub.SendToUser(body.TelegramID, map[string]interface{}{
		"type":          "fn_live_block",
		"reason":        body.Reason,
		"blocked_until": until,
	})

	return c.JSON(fiber.Map{"success": true, "blocked_until": until})
}

func (s *FiberServer) adminUnblockHandler(c *fiber.Ctx) error {
	var body struct {
		TelegramID int64 `json:"telegram_id"`
	}
	if err := c.BodyParser(&body); err != nil || body.TelegramID == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "telegram_id is required"})
	}

	if err := s.store.Blocks.Clear(c.Context(), body.TelegramID); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to unblock user"})
	}

	s.hub.SendToUser(body.TelegramID, map[string]interface{}{
		"type": "fn_live_unblock",
	})

	return c.JSON(fiber.Map{"success": true})
}

func (s *FiberServer) adminToggleFnLiveHandler(c *fiber.Ctx) error {
	active, err := s.store.Settings.GetBool(c.Context(), store.SettingFnLiveActive)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to read setting"})
	}

	if err := s.store.Settings.SetBool(c.Context(), store.SettingFnLiveActive, !active); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to update setting"})
	}

	s.hub.Broadcast(map[string]interface{}{
		"type":           "system_status",
		"fn_live_active": !active,
	})

	return c.JSON(fiber.Map{"success": true, "active": !active})
}
