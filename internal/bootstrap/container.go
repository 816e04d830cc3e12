package bootstrap

import (
	"context"
	"log"
	"time"

	"notetrack-be/internal/config"
	"notetrack-be/internal/controller"
	"notetrack-be/internal/handler"
	"notetrack-be/internal/pkg/logger"
	"notetrack-be/internal/pkg/mailer"
	"notetrack-be/internal/pkg/serverutils"
	"notetrack-be/internal/repository/lock"
	"notetrack-be/internal/repository/memory"
	"notetrack-be/internal/repository/unitofwork"
	"notetrack-be/internal/scheduler"
	"notetrack-be/internal/service"
	internalWS "notetrack-be/internal/websocket"

	pktNats "notetrack-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	NoteController         controller.INoteController
	StageController        controller.IStageController
	AuditController        controller.IAuditController
	NotificationController controller.INotificationController

	// Live note-event feed
	FeedHandler *handler.FeedHandler
	FeedHub     *internalWS.Hub

	// Auth guards every route group
	Auth fiber.Handler

	// Services exposed for the CLIs
	StageService       service.IStageService
	DeadlineService    service.IDeadlineService
	MaintenanceService service.IMaintenanceService

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	Scheduler       *scheduler.Daily

	Logger logger.ILogger

	natsPub *pktNats.Publisher
	rdb     *redis.Client
	pubSub  *gochannel.GoChannel
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	schedulerLogger := logger.NewIsolatedLogger(cfg.App.SchedulerLogPath)

	var emailService mailer.MailSender
	if cfg.SMTP.Host != "" {
		emailService = mailer.NewEmailService(
			cfg.SMTP.Host,
			cfg.SMTP.Port,
			cfg.SMTP.Email,
			cfg.SMTP.Password,
			cfg.SMTP.Email,
			cfg.SMTP.SenderName,
		)
	} else {
		log.Printf("[WARN] SMTP_HOST not set, deadline emails will only be logged")
		emailService = mailer.NewLogSender(schedulerLogger)
	}

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis
	var sweepLock lock.SweepLock
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v. Sweep lock is local only", err)
		_ = rdb.Close()
		rdb = nil
		sweepLock = lock.NewLocalSweepLock()
	} else {
		sweepLock = lock.NewRedisSweepLock(rdb, 23*time.Hour)
	}

	// Feed hub; Redis (when present) fans frames out across instances
	feedHub := internalWS.NewHub(rdb, sysLogger)
	eventSink := service.FanOutSink{feedHub}
	if natsPub != nil {
		eventSink = append(eventSink, natsPub)
	}

	// Caches
	stageCache := memory.NewStageCache(time.Duration(cfg.App.StageCacheSeconds) * time.Second)
	userNames, err := memory.NewUserNameCache(memory.DefaultUserNameCacheSize)
	if err != nil {
		log.Fatalf("[FATAL] Failed to create user name cache: %v", err)
	}

	// 3. Services
	publisherService := service.NewPublisherService(cfg.App.EventTopic, pubSub)
	consumerService := service.NewConsumerService(pubSub, cfg.App.EventTopic, eventSink, sysLogger)

	stageService := service.NewStageService(uowFactory, stageCache, publisherService, sysLogger)
	noteService := service.NewNoteService(uowFactory, publisherService, sysLogger)
	auditService := service.NewAuditService(uowFactory, userNames, sysLogger)
	deadlineService := service.NewDeadlineService(uowFactory, emailService, sweepLock, service.DeadlineOptions{
		OverdueLookbackDays: cfg.Scheduler.OverdueLookbackDays,
		UserBatchSize:       cfg.Scheduler.UserBatchSize,
	}, schedulerLogger)
	maintenanceService := service.NewMaintenanceService(auditService, noteService, service.RetentionPolicy{
		AuditLogDays:    cfg.Retention.AuditLogDays,
		DeletedNoteDays: cfg.Retention.DeletedNoteDays,
	}, schedulerLogger)

	// 3.5 Daily jobs
	daily := scheduler.NewDaily(cfg.Scheduler.Hour, cfg.Scheduler.Minute, schedulerLogger,
		scheduler.Job{Name: "deadline-sweep", Run: func(ctx context.Context) error {
			_, err := deadlineService.RunSweep(ctx)
			return err
		}},
		scheduler.Job{Name: "maintenance", Run: func(ctx context.Context) error {
			_, err := maintenanceService.Run(ctx)
			return err
		}},
	)

	// 4. Controllers
	return &Container{
		NoteController:         controller.NewNoteController(noteService),
		StageController:        controller.NewStageController(stageService),
		AuditController:        controller.NewAuditController(auditService),
		NotificationController: controller.NewNotificationController(deadlineService),

		FeedHandler: handler.NewFeedHandler(feedHub, cfg.Auth.JwtSecret, cfg.Auth.AdminRole, sysLogger),
		FeedHub:     feedHub,

		Auth: serverutils.NewJwtMiddleware(cfg.Auth.JwtSecret, cfg.Auth.AdminRole),

		StageService:       stageService,
		DeadlineService:    deadlineService,
		MaintenanceService: maintenanceService,

		ConsumerService: consumerService,
		Scheduler:       daily,

		Logger: sysLogger,

		natsPub: natsPub,
		rdb:     rdb,
		pubSub:  pubSub,
	}
}

// Close releases broker connections and flushes logs.
func (c *Container) Close() {
	if err := c.pubSub.Close(); err != nil {
		log.Printf("[WARN] Failed to close event bus: %v", err)
	}
	if c.natsPub != nil {
		c.natsPub.Close()
	}
	if c.rdb != nil {
		_ = c.rdb.Close()
	}
	_ = c.Logger.Sync()
}
