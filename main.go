package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/wfunc/drawguess/config"
	"github.com/wfunc/drawguess/logger"
	"github.com/wfunc/drawguess/persistence"
	"github.com/wfunc/drawguess/server"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	// Initialize logger
	logger.Init(cfg.Debug)

	// Initialize database. The game runs without it: no account RPC and
	// the built-in word table instead of the words table.
	var store persistence.Store
	store, err = openStore(cfg)
	if err != nil {
		logger.Log.Warnf("Database unavailable, continuing without it: %v", err)
		store = nil
	} else {
		logger.Log.Infof("Database connection successful (driver=%s).", cfg.Database.Driver)
	}

	// Initialize Game Server
	gameServer := server.NewGameServer(cfg, store)

	// Stop the broadcast loop and listeners on SIGINT/SIGTERM
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Log.Info("Shutting down.")
		gameServer.Shutdown()
		if store != nil {
			store.Close()
		}
		os.Exit(0)
	}()

	// Start Server
	logger.Log.Infof("Starting draw-guess server on %s", cfg.Server.HTTPAddress)
	if err := gameServer.Start(); err != nil {
		logger.Log.Fatalf("Failed to start server: %v", err)
	}
}

// openStore picks the Store implementation from the configured driver.
func openStore(cfg *config.Config) (persistence.Store, error) {
	pg := cfg.Database.Postgres
	if cfg.Database.Driver == "pq" {
		return persistence.NewPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
	}
	return persistence.NewGormPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
}
