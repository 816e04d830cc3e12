package main

import (
	"context"
	"flag"
	"log"
	"time"

	"notetrack-be/internal/config"
	"notetrack-be/internal/pkg/logger"
	"notetrack-be/internal/repository/memory"
	"notetrack-be/internal/repository/unitofwork"
	"notetrack-be/internal/service"
	"notetrack-be/pkg/database"

	"github.com/fatih/color"
)

func main() {
	withUsers := flag.Bool("with-users", false, "also create the users table (standalone development only)")
	skipSeed := flag.Bool("skip-seed", false, "do not insert the default stages")
	flag.Parse()

	// 1. Load Configuration
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.App.Environment == "production")
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	// 3. AutoMigrate
	color.Cyan("Step 1: Running AutoMigrate for %d tables...", len(database.Models()))
	if err := database.AutoMigrate(db, *withUsers); err != nil {
		color.Red("AutoMigrate failed: %v", err)
		log.Fatal(err)
	}

	if *skipSeed {
		color.Green("✅ Migration completed (seeding skipped)")
		return
	}

	// 4. Seed default stages (idempotent)
	color.Cyan("Step 2: Seeding default stages...")
	stageService := service.NewStageService(
		unitofwork.NewRepositoryFactory(db),
		memory.NewStageCache(time.Minute),
		service.NewNopPublisherService(),
		logger.NewNopLogger(),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	created, err := stageService.CreateDefaultStages(ctx)
	if err != nil {
		color.Red("Seeding failed: %v", err)
		log.Fatal(err)
	}
	if created == 0 {
		color.Yellow("Default stages already present, nothing to insert")
	} else {
		color.Green("Inserted %d default stages", created)
	}

	color.Green("✅ Success: Database migration completed successfully via GORM.")
}
