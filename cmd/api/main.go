package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	_ "github.com/joho/godotenv/autoload"

	"frnmines/internal/server"
)

func gracefulShutdown(fiberServer *server.FiberServer, done chan bool) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	log.Info("shutting down gracefully, press Ctrl+C again to force")

	if err := fiberServer.Shutdown(); err != nil {
		log.Errorf("game shutdown error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := fiberServer.ShutdownWithContext(shutdownCtx); err != nil {
		log.Errorf("server forced to shutdown with error: %v", err)
	}

	log.Info("server exiting")
	done <- true
}

func main() {
	app := server.New()

	app.RegisterFiberRoutes()
	app.RegisterGameRoutes()

	done := make(chan bool, 1)

	go func() {
		port, _ := strconv.Atoi(os.Getenv("PORT"))
		if port == 0 {
			port = 8080
		}
		if err := app.Listen(fmt.Sprintf(":%d", port)); err != nil {
			log.Fatalf("http server error: %v", err)
		}
	}()

	go gracefulShutdown(app, done)

	<-done
	log.Info("graceful shutdown complete")
}
