package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	SMTP      SMTPConfig
	Scheduler SchedulerConfig
	Retention RetentionConfig
	Auth      AuthConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	SchedulerLogPath   string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	EventTopic         string // in-process watermill topic for note events
	StageCacheSeconds  int
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type SchedulerConfig struct {
	Enabled bool
	Hour    int
	Minute  int
	// Overdue notes older than this are no longer included in reminders.
	OverdueLookbackDays int
	UserBatchSize       int
}

// RetentionConfig drives the daily maintenance pass. Zero disables a step.
type RetentionConfig struct {
	AuditLogDays    int
	DeletedNoteDays int
}

type AuthConfig struct {
	JwtSecret string
	AdminRole string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			SchedulerLogPath:   getEnv("SCHEDULER_LOG_FILE_PATH", "logs/scheduler.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			EventTopic:         getEnv("NOTE_EVENTS_TOPIC_NAME", "NOTE_EVENTS"),
			StageCacheSeconds:  getEnvAsInt("STAGE_CACHE_SECONDS", 300),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "NoteTrack"),
		},
		Scheduler: SchedulerConfig{
			Enabled:             getEnvAsBool("DEADLINE_SCHEDULER_ENABLED", true),
			Hour:                getEnvAsInt("DEADLINE_SCHEDULER_HOUR", 8),
			Minute:              getEnvAsInt("DEADLINE_SCHEDULER_MINUTE", 0),
			OverdueLookbackDays: getEnvAsInt("DEADLINE_OVERDUE_LOOKBACK_DAYS", 30),
			UserBatchSize:       getEnvAsInt("DEADLINE_USER_BATCH_SIZE", 200),
		},
		Retention: RetentionConfig{
			AuditLogDays:    getEnvAsInt("AUDIT_LOG_RETENTION_DAYS", 0),
			DeletedNoteDays: getEnvAsInt("DELETED_NOTE_PURGE_DAYS", 0),
		},
		Auth: AuthConfig{
			JwtSecret: getEnv("JWT_SECRET", ""),
			AdminRole: getEnv("ADMIN_ROLE", "admin"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
