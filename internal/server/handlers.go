package server

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"frnmines/internal/game"
	"frnmines/internal/store"
)

const (
	dailyBonusAmount   = 10000
	dailyBonusInterval = 24 * time.Hour

	historyLimit = 50
)

// Health handler
func (s *FiberServer) healthHandler(c *fiber.Ctx) error {
	health := fiber.Map{
		"database": s.db.Health(),
		"cache":    s.cache.Health(),
		"game": fiber.Map{
			"status":            "running",
			"connected_clients": s.hub.GetClientCount(),
		},
	}
	return c.JSON(health)
}

// betAllowed rejects bets while maintenance mode is on or while the user
// holds an active block. On rejection it writes the response and returns
// false.
func (s *FiberServer) betAllowed(c *fiber.Ctx, telegramID int64) bool {
	maintenance, err := s.store.Settings.GetBool(c.Context(), store.SettingMaintenanceMode)
	if err != nil {
		log.Errorf("failed to read maintenance flag: %v", err)
	}
	if maintenance {
		founder, _ := s.store.Users.IsFounder(c.Context(), telegramID)
		if !founder {
			c.Status(503).JSON(fiber.Map{
				"error": "maintenance in progress",
			})
			return false
		}
	}

	block, err := s.store.Blocks.ActiveBlock(c.Context(), telegramID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Errorf("failed to read block for user %d: %v", telegramID, err)
	}
	if block != nil {
		c.Status(403).JSON(fiber.Map{
			"error":         "account blocked",
			"reason":        block.Reason,
			"blocked_until": block.BlockedUntil,
		})
		return false
	}

	return true
}

// Rocket game handlers

func (s *FiberServer) rocketStateHandler(c *fiber.Ctx) error {
	round := s.rocket.CurrentRound()
	if round == nil {
		return c.Status(404).JSON(fiber.Map{
			"error": "No active game round",
		})
	}
	return c.JSON(round)
}

func (s *FiberServer) rocketHistoryHandler(c *fiber.Ctx) error {
	entries, err := s.cache.RecentRocketRounds(c.Context(), historyLimit)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": "failed to load history",
		})
	}
	return c.JSON(fiber.Map{"history": entries})
}

func (s *FiberServer) rocketBetHandler(c *fiber.Ctx) error {
	var req game.RocketBetRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.UserID == 0 {
		return c.Status(400).JSON(fiber.Map{
			"error": "telegram_id is required",
		})
	}

	if !s.betAllowed(c, req.UserID) {
		return nil
	}

	resp := s.rocket.PlaceBet(req)
	if !resp.Success {
		return c.Status(400).JSON(resp)
	}

	return c.JSON(resp)
}

func (s *FiberServer) rocketCashoutHandler(c *fiber.Ctx) error {
	var req game.RocketCashoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.UserID == 0 {
		return c.Status(400).JSON(fiber.Map{
			"error": "telegram_id is required",
		})
	}

	resp := s.rocket.Cashout(req)
	if !resp.Success {
		return c.Status(400).JSON(resp)
	}

	return c.JSON(resp)
}

// Roulette game handlers

func (s *FiberServer) rouletteStateHandler(c *fiber.Ctx) error {
	round := s.roulette.CurrentRound()
	if round == nil {
		return c.Status(404).JSON(fiber.Map{
			"error": "No active game round",
		})
	}
	return c.JSON(round)
}

func (s *FiberServer) rouletteHistoryHandler(c *fiber.Ctx) error {
	entries, err := s.cache.RecentRouletteRounds(c.Context(), historyLimit)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": "failed to load history",
		})
	}
	return c.JSON(fiber.Map{"history": entries})
}

func (s *FiberServer) rouletteBetHandler(c *fiber.Ctx) error {
	var req game.RouletteBetRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.UserID == 0 {
		return c.Status(400).JSON(fiber.Map{
			"error": "telegram_id is required",
		})
	}

	if !s.betAllowed(c, req.UserID) {
		return nil
	}

	resp := s.roulette.PlaceBet(req)
	if !resp.Success {
		return c.Status(400).JSON(resp)
	}

	return c.JSON(resp)
}

// User handlers

func (s *FiberServer) telegramIDParam(c *fiber.Ctx) (int64, error) {
	id, err := c.ParamsInt("telegramId")
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid telegram id")
	}
	return int64(id), nil
}

func (s *FiberServer) getUserHandler(c *fiber.Ctx) error {
	telegramID, err := s.telegramIDParam(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	user, err := s.store.Users.GetByTelegramID(c.Context(), telegramID)
	if errors.Is(err, store.ErrNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "user not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to load user"})
	}

	badges, err := s.store.Badges.ListByUser(c.Context(), telegramID)
	if err != nil {
		log.Errorf("failed to load badges for user %d: %v", telegramID, err)
	}

	return c.JSON(fiber.Map{
		"user":   user,
		"badges": badges,
		"online": s.hub.IsOnline(telegramID),
	})
}

func (s *FiberServer) getUserBalanceHandler(c *fiber.Ctx) error {
	telegramID, err := s.telegramIDParam(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	user, err := s.store.Users.GetByTelegramID(c.Context(), telegramID)
	if errors.Is(err, store.ErrNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "user not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to load user"})
	}

	return c.JSON(fiber.Map{
		"telegram_id": telegramID,
		"balance":     user.Balance,
	})
}

func (s *FiberServer) getUserTransactionsHandler(c *fiber.Ctx) error {
	telegramID, err := s.telegramIDParam(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	limit := c.QueryInt("limit", historyLimit)
	txs, err := s.store.Transactions.ListByUser(c.Context(), telegramID, limit)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to load transactions"})
	}

	return c.JSON(fiber.Map{"transactions": txs})
}

func (s *FiberServer) getUserGameHistoryHandler(c *fiber.Ctx) error {
	telegramID, err := s.telegramIDParam(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	limit := c.QueryInt("limit", historyLimit)
	entries, err := s.store.History.ListByUser(c.Context(), telegramID, limit)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to load history"})
	}

	return c.JSON(fiber.Map{"history": entries})
}

func (s *FiberServer) claimDailyBonusHandler(c *fiber.Ctx) error {
	telegramID, err := s.telegramIDParam(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	newBalance, err := s.store.Bonuses.Claim(c.Context(), telegramID, dailyBonusAmount, dailyBonusInterval)
	if errors.Is(err, store.ErrBonusNotReady) {
		last, lastErr := s.store.Bonuses.LastClaimedAt(c.Context(), telegramID)
		resp := fiber.Map{"error": "bonus already claimed"}
		if lastErr == nil {
			nextAt := last.Add(dailyBonusInterval)
			resp["next_claim_at"] = nextAt
			resp["seconds_to_wait"] = int64(time.Until(nextAt).Seconds())
		}
		return c.Status(400).JSON(resp)
	}
	if errors.Is(err, store.ErrNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "user not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to credit bonus"})
	}
	if err := s.store.Transactions.Record(c.Context(), telegramID, store.TxTypeBonus, dailyBonusAmount); err != nil {
		log.Errorf("failed to record bonus transaction: %v", err)
	}

	s.hub.SendToUser(telegramID, map[string]interface{}{
		"type":        "daily_bonus_claimed",
		"amount":      dailyBonusAmount,
		"new_balance": newBalance,
	})

	return c.JSON(fiber.Map{
		"success":     true,
		"amount":      dailyBonusAmount,
		"new_balance": newBalance,
	})
}

func (s *FiberServer) checkDailyBonusHandler(c *fiber.Ctx) error {
	telegramID, err := s.telegramIDParam(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	last, err := s.store.Bonuses.LastClaimedAt(c.Context(), telegramID)
	if errors.Is(err, store.ErrNotFound) {
		return c.JSON(fiber.Map{"available": true})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to check bonus"})
	}

	nextAt := last.Add(dailyBonusInterval)
	remaining := time.Until(nextAt)
	return c.JSON(fiber.Map{
		"available":       remaining <= 0,
		"next_claim_at":   nextAt,
		"seconds_to_wait": max64(int64(remaining.Seconds()), 0),
	})
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func (s *FiberServer) redeemPromoHandler(c *fiber.Ctx) error {
	telegramID, err := s.telegramIDParam(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	var body struct {
		Code string `json:"code"`
	}
	if err := c.BodyParser(&body); err != nil || body.Code == "" {
		return c.Status(400).JSON(fiber.Map{"error": "promo code is required"})
	}

	amount, err := s.store.Promos.Redeem(c.Context(), body.Code, telegramID)
	if errors.Is(err, store.ErrNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "unknown promo code"})
	}
	if errors.Is(err, store.ErrPromoUsed) {
		return c.Status(400).JSON(fiber.Map{"error": "promo code already used"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to redeem promo"})
	}

	newBalance, err := s.store.Users.Credit(c.Context(), telegramID, amount)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to credit balance"})
	}
	if err := s.store.Transactions.Record(c.Context(), telegramID, store.TxTypePromo, amount); err != nil {
		log.Errorf("failed to record promo transaction: %v", err)
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"amount":      amount,
		"new_balance": newBalance,
	})
}
