package main

import (
	"context"
	"flag"
	"log"
	"time"

	"notetrack-be/internal/bootstrap"
	"notetrack-be/internal/config"
	"notetrack-be/pkg/database"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

// sweep runs the deadline reminder job once, outside the daily schedule.
func main() {
	testUser := flag.String("test", "", "send a test digest to this user id instead of sweeping")
	maintenance := flag.Bool("maintenance", false, "also apply the retention policy")
	timeout := flag.Duration("timeout", 10*time.Minute, "abort the run after this long")
	flag.Parse()

	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.App.Environment == "production")
	if err != nil {
		log.Fatalf("Unable to connect to GORM DB: %v", err)
	}

	container := bootstrap.NewContainer(db, cfg)
	defer container.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if *testUser != "" {
		userId, err := uuid.Parse(*testUser)
		if err != nil {
			log.Fatalf("invalid user id %q: %v", *testUser, err)
		}
		res, err := container.DeadlineService.SendTestNotification(ctx, userId)
		if err != nil {
			color.Red("Test notification failed: %v", err)
			return
		}
		color.Green("Test notification sent with %d notes", res.Notes)
		return
	}

	report, err := container.DeadlineService.RunSweep(ctx)
	if err != nil {
		color.Red("Sweep failed: %v", err)
		return
	}
	if report.Locked {
		color.Yellow("Today's sweep lock is held by another run, nothing to do")
	} else {
		color.Cyan("Users checked: %d", report.Users)
		color.Green("Digests sent:  %d", report.Sent)
		color.White("Skipped:       %d", report.Skipped)
		if report.Failed > 0 {
			color.Red("Failed:        %d", report.Failed)
		}
	}

	if *maintenance {
		res, err := container.MaintenanceService.Run(ctx)
		if err != nil {
			color.Red("Maintenance failed: %v", err)
			return
		}
		color.Cyan("Audit logs pruned: %d, notes purged: %d", res.AuditLogsPruned, res.NotesPurged)
	}
}
