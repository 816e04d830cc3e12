package main

import (
	"context"
	"flag"
	"log"
	"time"

	"notetrack-be/internal/config"
	"notetrack-be/internal/dto"
	"notetrack-be/internal/entity"
	"notetrack-be/internal/pkg/logger"
	"notetrack-be/internal/repository/memory"
	"notetrack-be/internal/repository/specification"
	"notetrack-be/internal/repository/unitofwork"
	"notetrack-be/internal/service"
	"notetrack-be/pkg/database"

	"github.com/fatih/color"
)

type demoNote struct {
	title    string
	priority string
	// relative to now; zero means no deadline
	due time.Duration
}

var demoNotes = []demoNote{
	{"Reply to the release thread", "urgent", -26 * time.Hour},
	{"Review onboarding checklist", "high", 20 * time.Hour},
	{"Draft quarterly summary", "medium", 60 * time.Hour},
	{"Tidy up the dashboard widgets", "low", 0},
}

// seed fills a development database with stages and a handful of notes owned by one user,
// enough to exercise the board, the audit trail and the deadline digest.
func main() {
	email := flag.String("email", "", "author of the demo notes (must exist in the users table)")
	flag.Parse()
	if *email == "" {
		log.Fatal("Error: -email is required")
	}

	cfg := config.Load()
	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, false)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	factory := unitofwork.NewRepositoryFactory(db)
	author, err := factory.NewUnitOfWork(ctx).UserRepository().FindOne(ctx, specification.ByEmail{Email: *email})
	if err != nil {
		log.Fatal("Error: Failed to look up user:", err)
	}
	if author == nil {
		log.Fatalf("Error: no user with email %q", *email)
	}

	nop := logger.NewNopLogger()
	publisher := service.NewNopPublisherService()
	stages := service.NewStageService(factory, memory.NewStageCache(time.Minute), publisher, nop)
	notes := service.NewNoteService(factory, publisher, nop)

	created, err := stages.CreateDefaultStages(ctx)
	if err != nil {
		log.Fatal("Error: Failed to seed stages:", err)
	}
	color.Cyan("Stages created: %d", created)

	actor := entity.Actor{UserId: author.Id, UserAgent: "notetrack-seed"}
	now := time.Now().UTC()
	for _, n := range demoNotes {
		req := &dto.CreateNoteRequest{
			Title:    n.title,
			Body:     "Seeded for " + author.DisplayName(),
			Priority: n.priority,
		}
		if n.due != 0 {
			deadline := now.Add(n.due)
			req.Deadline = &deadline
		}
		res, err := notes.Create(ctx, actor, req)
		if err != nil {
			color.Red("  x %s: %v", n.title, err)
			continue
		}
		color.Green("  + %s (%s)", n.title, res.Id)
	}
}
