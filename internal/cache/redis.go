package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const (
	keyRocketHistory   = "rocket:history"
	keyRouletteHistory = "roulette:history"
	historyLimit       = 50
)

// RocketHistoryEntry is a finished rocket round as served to newly connected
// clients.
type RocketHistoryEntry struct {
	GameID     int64   `json:"game_id"`
	CrashPoint float64 `json:"crash_point"`
}

// RouletteHistoryEntry is a finished roulette round.
type RouletteHistoryEntry struct {
	GameID       int64 `json:"game_id"`
	ResultNumber int   `json:"result_number"`
}

type Service interface {
	GetClient() *redis.Client
	Health() map[string]string
	Close() error

	PushRocketRound(ctx context.Context, gameID int64, crashPoint float64) error
	PushRouletteRound(ctx context.Context, gameID int64, resultNumber int) error
	RecentRocketRounds(ctx context.Context, n int) ([]RocketHistoryEntry, error)
	RecentRouletteRounds(ctx context.Context, n int) ([]RouletteHistoryEntry, error)
}

type service struct {
	client *redis.Client
}

var (
	redisAddr     = getEnv("REDIS_URL", "localhost:6379")
	redisPassword = getEnv("REDIS_PASSWORD", "")
	redisDB       = getEnvAsInt("REDIS_DB", 0)
	cacheInstance *service
)

func New() Service {
	if cacheInstance != nil {
		return cacheInstance
	}

	client := redis.NewClient(&redis.Options{
		Addr:         redisAddr,
		Password:     redisPassword,
		DB:           redisDB,
		PoolSize:     100,
		MinIdleConns: 10,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		log.WithField("component", "cache").Warnf("redis connection failed: %v", err)
		return nil
	}

	log.WithField("component", "cache").Info("redis connected")

	cacheInstance = &service{client: client}
	return cacheInstance
}

func (s *service) GetClient() *redis.Client {
	return s.client
}

// PushRocketRound prepends a finished round to the rocket history list and
// trims it to the retention limit.
func (s *service) PushRocketRound(ctx context.Context, gameID int64, crashPoint float64) error {
	return s.pushHistory(ctx, keyRocketHistory, RocketHistoryEntry{GameID: gameID, CrashPoint: crashPoint})
}

func (s *service) PushRouletteRound(ctx context.Context, gameID int64, resultNumber int) error {
	return s.pushHistory(ctx, keyRouletteHistory, RouletteHistoryEntry{GameID: gameID, ResultNumber: resultNumber})
}

func (s *service) pushHistory(ctx context.Context, key string, entry interface{}) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, historyLimit-1)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *service) RecentRocketRounds(ctx context.Context, n int) ([]RocketHistoryEntry, error) {
	raw, err := s.client.LRange(ctx, keyRocketHistory, 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]RocketHistoryEntry, 0, len(raw))
	for _, item := range raw {
		var e RocketHistoryEntry
		if json.Unmarshal([]byte(item), &e) == nil {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func (s *service) RecentRouletteRounds(ctx context.Context, n int) ([]RouletteHistoryEntry, error) {
	raw, err := s.client.LRange(ctx, keyRouletteHistory, 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]RouletteHistoryEntry, 0, len(raw))
	for _, item := range raw {
		var e RouletteHistoryEntry
		if json.Unmarshal([]byte(item), &e) == nil {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func (s *service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	stats := make(map[string]string)

	_, err := s.client.Ping(ctx).Result()
	if err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("redis down: %v", err)
		return stats
	}

	stats["status"] = "up"
	stats["message"] = "Redis is healthy"

	poolStats := s.client.PoolStats()
	stats["hits"] = strconv.FormatUint(uint64(poolStats.Hits), 10)
	stats["misses"] = strconv.FormatUint(uint64(poolStats.Misses), 10)
	stats["timeouts"] = strconv.FormatUint(uint64(poolStats.Timeouts), 10)
	stats["total_conns"] = strconv.FormatUint(uint64(poolStats.TotalConns), 10)
	stats["idle_conns"] = strconv.FormatUint(uint64(poolStats.IdleConns), 10)

	return stats
}

func (s *service) Close() error {
	log.WithField("component", "cache").Info("disconnecting from redis")
	cacheInstance = nil
	return s.client.Close()
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}
