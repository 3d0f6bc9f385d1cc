package main

import (
	"log"
	"time"

	"github.com/nexclash/nexclash/config"
	_ "github.com/nexclash/nexclash/docs"
	"github.com/nexclash/nexclash/internal/identity"
	"github.com/nexclash/nexclash/internal/leaderboard"
	"github.com/nexclash/nexclash/internal/solo"
	"github.com/nexclash/nexclash/internal/team"
	"github.com/nexclash/nexclash/internal/tournament"
	"github.com/nexclash/nexclash/routes"
	"github.com/nexclash/nexclash/workers"
)

// @title NexClash Tournament API
// @version 1.0
// @description Dota 2 tournament registration, brackets and leaderboards.
// @host localhost:8088
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := config.Initialize(); err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	cfg := config.GetConfig()

	err := config.DB.AutoMigrate(
		&identity.Player{}, &identity.OTP{}, &identity.RefreshToken{},
		&tournament.Tournament{}, &tournament.BracketSlots{}, &tournament.Registration{},
		&team.Team{}, &team.Member{},
		&solo.Registration{},
		&leaderboard.Entry{},
	)
	if err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}
	log.Println("AutoMigrate successful")

	r, leaderboardService := routes.SetupRoutes(cfg)

	if cfg.Sweep.Enabled {
		interval := time.Duration(cfg.Sweep.IntervalMinutes) * time.Minute
		if _, err := workers.StartScoreSweep(config.DB, leaderboardService, interval); err != nil {
			log.Fatalf("Failed to start score sweep: %v", err)
		}
	}

	log.Printf("Starting server on port %s in %s mode\n", cfg.App.Port, cfg.App.Env)
	if err := r.Run(":" + cfg.App.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
