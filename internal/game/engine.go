package game

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// Engine is a server-driven round loop for one game type. Start launches the
// loop; Stop halts it after the current operation without leaving a payout
// half-applied.
type Engine interface {
	GetType() GameType
	Start(ctx context.Context) error
	Stop() error
	GetState() interface{}
}

// Registry tracks the engines running in this process, one per game type.
type Registry struct {
	engines map[GameType]Engine
}

func NewRegistry() *Registry {
	return &Registry{engines: make(map[GameType]Engine)}
}

func (r *Registry) Register(engine Engine) {
	r.engines[engine.GetType()] = engine
}

func (r *Registry) Get(gameType GameType) (Engine, bool) {
	engine, exists := r.engines[gameType]
	return engine, exists
}

func (r *Registry) StartAll(ctx context.Context) error {
	for gameType, engine := range r.engines {
		if err := engine.Start(ctx); err != nil {
			return err
		}
		log.WithField("component", "registry").Infof("started %s engine", gameType)
	}
	return nil
}

func (r *Registry) StopAll() error {
	var firstErr error
	for gameType, engine := range r.engines {
		if err := engine.Stop(); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			log.WithField("component", "registry").Errorf("error stopping %s engine: %v", gameType, err)
			continue
		}
		log.WithField("component", "registry").Infof("stopped %s engine", gameType)
	}
	return firstErr
}
