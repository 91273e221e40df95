package server

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	log "github.com/sirupsen/logrus"

	"frnmines/internal/cache"
	"frnmines/internal/database"
	"frnmines/internal/game"
	"frnmines/internal/store"
)

type FiberServer struct {
	*fiber.App

	db       database.Service
	cache    cache.Service
	store    *store.Store
	hub      *game.Hub
	registry *game.Registry
	rocket   *game.RocketEngine
	roulette *game.RouletteEngine
}

func New() *FiberServer {
	// Initialize database
	db := database.New()

	// Initialize Redis cache
	redisService := cache.New()
	if redisService == nil {
		log.Fatal("redis is required for round history")
	}

	st := store.New(db.Pool())

	// Initialize game components
	hub := game.NewHub()

	rocket := game.NewRocketEngine(hub, st.Users, st.Rounds, st.Bets, st.Transactions, st.History, redisService, game.RocketConfig{})
	roulette := game.NewRouletteEngine(hub, st.Users, st.Rounds, st.Bets, st.Transactions, st.History, redisService, game.RouletteConfig{})

	registry := game.NewRegistry()
	registry.Register(rocket)
	registry.Register(roulette)

	server := &FiberServer{
		App: fiber.New(fiber.Config{
			ServerHeader:  "frnmines",
			AppName:       "frnmines",
			ReadTimeout:   10 * time.Second,
			WriteTimeout:  10 * time.Second,
			IdleTimeout:   120 * time.Second,
			StrictRouting: false,
		}),

		db:       db,
		cache:    redisService,
		store:    st,
		hub:      hub,
		registry: registry,
		rocket:   rocket,
		roulette: roulette,
	}

	// Apply global middleware
	server.App.Use(recover.New())
	server.App.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
	}))

	// Start game components
	go hub.Run()

	if err := registry.StartAll(context.Background()); err != nil {
		log.Errorf("failed to start game engines: %v", err)
	}

	log.Info("hub and game engines started")

	return server
}

// Shutdown gracefully shuts down the server and game components
func (s *FiberServer) Shutdown() error {
	log.Info("shutting down...")

	if s.registry != nil {
		if err := s.registry.StopAll(); err != nil {
			log.Errorf("error stopping game engines: %v", err)
		}
	}

	// Close connections
	if s.cache != nil {
		s.cache.Close()
	}
	if s.db != nil {
		s.db.Close()
	}

	return nil
}
