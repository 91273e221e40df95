package game

import (
	"context"
	"testing"
)

type stubEngine struct {
	gameType GameType
	started  bool
	stopped  bool
}

func (e *stubEngine) GetType() GameType { return e.gameType }

func (e *stubEngine) Start(ctx context.Context) error {
	e.started = true
	return nil
}

func (e *stubEngine) Stop() error {
	e.stopped = true
	return nil
}

func (e *stubEngine) GetState() interface{} { return nil }

func TestRegistry_Register(t *testing.T) {
	registry := NewRegistry()

	t.Run("register rocket engine", func(t *testing.T) {
		registry.Register(&stubEngine{gameType: GameTypeRocket})

		engine, exists := registry.Get(GameTypeRocket)
		if !exists {
			t.Error("rocket engine should be registered")
		}
		if engine.GetType() != GameTypeRocket {
			t.Error("retrieved engine should be rocket type")
		}
	})

	t.Run("register roulette engine", func(t *testing.T) {
		registry.Register(&stubEngine{gameType: GameTypeRoulette})

		engine, exists := registry.Get(GameTypeRoulette)
		if !exists {
			t.Error("roulette engine should be registered")
		}
		if engine.GetType() != GameTypeRoulette {
			t.Error("retrieved engine should be roulette type")
		}
	})

	t.Run("get non-existent engine", func(t *testing.T) {
		_, exists := registry.Get(GameType("poker"))
		if exists {
			t.Error("unregistered engine should not exist")
		}
	})
}

func TestRegistry_StartStopAll(t *testing.T) {
	registry := NewRegistry()
	rocket := &stubEngine{gameType: GameTypeRocket}
	roulette := &stubEngine{gameType: GameTypeRoulette}
	registry.Register(rocket)
	registry.Register(roulette)

	if err := registry.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll() error = %v", err)
	}
	if !rocket.started || !roulette.started {
		t.Error("StartAll() should start every registered engine")
	}

	if err := registry.StopAll(); err != nil {
		t.Fatalf("StopAll() error = %v", err)
	}
	if !rocket.stopped || !roulette.stopped {
		t.Error("StopAll() should stop every registered engine")
	}
}

func TestGameType_Constants(t *testing.T) {
	types := []GameType{GameTypeRocket, GameTypeRoulette}

	uniqueMap := make(map[GameType]bool)
	for _, gameType := range types {
		if string(gameType) == "" {
			t.Error("game type should not be empty")
		}
		if uniqueMap[gameType] {
			t.Errorf("duplicate game type: %v", gameType)
		}
		uniqueMap[gameType] = true
	}
}
