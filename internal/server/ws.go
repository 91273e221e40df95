package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/contrib/websocket"
	log "github.com/sirupsen/logrus"

	"frnmines/internal/game"
	"frnmines/internal/store"
)

// gameWebSocketHandler is the realtime endpoint. A connection may watch
// rounds anonymously; sending an auth message binds it to a telegram account
// and unlocks betting.
func (s *FiberServer) gameWebSocketHandler(conn *websocket.Conn) {
	telegramID, _ := strconv.ParseInt(conn.Query("telegram_id"), 10, 64)

	log.Infof("new ws connection, telegram id %d", telegramID)

	client := s.hub.RegisterClient(conn, telegramID)
	defer s.hub.UnregisterClient(client)

	s.sendInitialState(client)

	for {
		messageType, message, err := conn.ReadMessage()
		if err != nil {
			log.Infof("ws closed for user %d: %v", telegramID, err)
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var clientMsg map[string]interface{}
		if err := json.Unmarshal(message, &clientMsg); err != nil {
			continue
		}
		msgType, ok := clientMsg["type"].(string)
		if !ok {
			continue
		}

		switch msgType {
		case "auth":
			id := s.handleAuth(client, clientMsg)
			if id != 0 && id != telegramID {
				// Rebind the connection to the authenticated account
				telegramID = id
				s.hub.BindUser(client, telegramID)
			}

		case "place_bet":
			s.handleWsBet(client, telegramID, clientMsg)

		case "cashout":
			if telegramID == 0 {
				client.Send(map[string]interface{}{"type": "error", "message": "auth required"})
				continue
			}
			resp := s.rocket.Cashout(game.RocketCashoutRequest{UserID: telegramID})
			client.Send(map[string]interface{}{
				"type":     "cashout_result",
				"response": resp,
			})

		case "use_promo":
			s.handleWsPromo(client, telegramID, clientMsg)

		case "game_result":
			s.handleWsGameResult(client, telegramID, clientMsg)

		case "ping":
			client.Send(map[string]string{"type": "pong"})
		}
	}
}

func (s *FiberServer) sendInitialState(client *game.Client) {
	state := map[string]interface{}{
		"type":         "initial_state",
		"online_count": s.hub.GetClientCount(),
	}
	if round := s.rocket.CurrentRound(); round != nil {
		state["rocket"] = round
	}
	if round := s.roulette.CurrentRound(); round != nil {
		state["roulette"] = round
	}
	client.Send(state)
}

// handleAuth loads or creates the account named in the message and reports
// the profile back. It returns the authenticated telegram id, or 0.
func (s *FiberServer) handleAuth(client *game.Client, msg map[string]interface{}) int64 {
	telegramID := asInt64(msg["telegram_id"])
	if telegramID == 0 {
		client.Send(map[string]interface{}{"type": "auth_failed", "message": "telegram_id is required"})
		return 0
	}

	ctx := context.Background()

	user, err := s.store.Users.GetByTelegramID(ctx, telegramID)
	if errors.Is(err, store.ErrNotFound) {
		user, err = s.store.Users.Create(ctx, telegramID,
			asString(msg["username"]),
			asString(msg["first_name"]),
			asString(msg["last_name"]),
			asString(msg["photo_url"]))
	}
	if err != nil {
		log.Errorf("auth failed for user %d: %v", telegramID, err)
		client.Send(map[string]interface{}{"type": "auth_failed", "message": "failed to load account"})
		return 0
	}

	if err := s.store.Users.TouchLastActive(ctx, telegramID); err != nil {
		log.Errorf("failed to touch last active for user %d: %v", telegramID, err)
	}

	badges, err := s.store.Badges.ListByUser(ctx, telegramID)
	if err != nil {
		log.Errorf("failed to load badges for user %d: %v", telegramID, err)
	}

	payload := map[string]interface{}{
		"type":   "auth_success",
		"user":   user,
		"badges": badges,
	}

	if block, err := s.store.Blocks.ActiveBlock(ctx, telegramID); err == nil {
		payload["block"] = block
	}

	client.Send(payload)
	return telegramID
}

func (s *FiberServer) handleWsBet(client *game.Client, telegramID int64, msg map[string]interface{}) {
	if telegramID == 0 {
		client.Send(map[string]interface{}{"type": "error", "message": "auth required"})
		return
	}

	if !s.wsBetAllowed(client, telegramID) {
		return
	}

	amount := asInt64(msg["amount"])

	switch asString(msg["game"]) {
	case string(game.GameTypeRocket):
		resp := s.rocket.PlaceBet(game.RocketBetRequest{UserID: telegramID, Amount: amount})
		client.Send(map[string]interface{}{
			"type":     "bet_result",
			"game":     game.GameTypeRocket,
			"response": resp,
		})

	case string(game.GameTypeRoulette):
		resp := s.roulette.PlaceBet(game.RouletteBetRequest{
			UserID:   telegramID,
			BetType:  asString(msg["bet_type"]),
			BetValue: int(asInt64(msg["bet_value"])),
			Amount:   amount,
		})
		client.Send(map[string]interface{}{
			"type":     "bet_result",
			"game":     game.GameTypeRoulette,
			"response": resp,
		})

	default:
		client.Send(map[string]interface{}{"type": "error", "message": "unknown game"})
	}
}

// wsBetAllowed mirrors the REST bet gate for socket bets.
func (s *FiberServer) wsBetAllowed(client *game.Client, telegramID int64) bool {
	ctx := context.Background()

	maintenance, err := s.store.Settings.GetBool(ctx, store.SettingMaintenanceMode)
	if err != nil {
		log.Errorf("failed to read maintenance flag: %v", err)
	}
	if maintenance {
		founder, _ := s.store.Users.IsFounder(ctx, telegramID)
		if !founder {
			client.Send(map[string]interface{}{"type": "error", "message": "maintenance in progress"})
			return false
		}
	}

	block, err := s.store.Blocks.ActiveBlock(ctx, telegramID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Errorf("failed to read block for user %d: %v", telegramID, err)
	}
	if block != nil {
		client.Send(map[string]interface{}{
			"type":          "error",
			"message":       "account blocked",
			"reason":        block.Reason,
			"blocked_until": block.BlockedUntil,
		})
		return false
	}

	return true
}

func (s *FiberServer) handleWsPromo(client *game.Client, telegramID int64, msg map[string]interface{}) {
	if telegramID == 0 {
		client.Send(map[string]interface{}{"type": "error", "message": "auth required"})
		return
	}

	code := asString(msg["code"])
	if code == "" {
		client.Send(map[string]interface{}{"type": "error", "message": "promo code is required"})
		return
	}

	ctx := context.Background()

	amount, err := s.store.Promos.Redeem(ctx, code, telegramID)
	if err != nil {
		message := "failed to redeem promo"
		if errors.Is(err, store.ErrNotFound) {
			message = "unknown promo code"
		} else if errors.Is(err, store.ErrPromoUsed) {
			message = "promo code already used"
		}
		client.Send(map[string]interface{}{"type": "promo_failed", "message": message})
		return
	}

	newBalance, err := s.store.Users.Credit(ctx, telegramID, amount)
	if err != nil {
		log.Errorf("failed to credit promo for user %d: %v", telegramID, err)
		client.Send(map[string]interface{}{"type": "promo_failed", "message": "failed to credit balance"})
		return
	}
	if err := s.store.Transactions.Record(ctx, telegramID, store.TxTypePromo, amount); err != nil {
		log.Errorf("failed to record promo transaction: %v", err)
	}

	client.Send(map[string]interface{}{
		"type":        "promo_success",
		"amount":      amount,
		"new_balance": newBalance,
	})
}

// handleWsGameResult stores a client-reported single-player result in the
// user's game history. It only feeds the history view; balances never move
// here.
func (s *FiberServer) handleWsGameResult(client *game.Client, telegramID int64, msg map[string]interface{}) {
	if telegramID == 0 {
		client.Send(map[string]interface{}{"type": "error", "message": "auth required"})
		return
	}

	gameType := asString(msg["game"])
	if gameType == "" {
		client.Send(map[string]interface{}{"type": "error", "message": "game is required"})
		return
	}

	multiplier, _ := msg["multiplier"].(float64)
	err := s.store.History.Record(context.Background(), telegramID, gameType,
		asInt64(msg["bet_amount"]), asInt64(msg["win_amount"]), multiplier)
	if err != nil {
		log.Errorf("failed to record game result for user %d: %v", telegramID, err)
	}
}


// JSON numbers arrive as float64; ids also show up as strings from some
// clients.
func asInt64(v interface{}) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case string:
		parsed, _ := strconv.ParseInt(n, 10, 64)
		return parsed
	case json.Number:
		parsed, _ := n.Int64()
		return parsed
	default:
		return 0
	}
}

func asString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}
