package config

import "time"

const (
	DefaultMongoDatabaseName = "minyue_db"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort      = "5001"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultRateLimitRequests = 30
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout  = 30 * time.Second
	DefaultUpstreamTimeout = 10 * time.Second
	DefaultIdempotencyTTL  = 24 * time.Hour
	DefaultMaxRequestSize  = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 35 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultSalonTimezone          = "Asia/Taipei"
	DefaultDurationMinutes        = 60
	MaxDurationMinutes            = 480
	DefaultReminderLeadTime       = 2 * time.Hour
	DefaultReminderMaxAttempts    = 5
	DefaultReminderBatchSize      = 50
	DefaultServicesCacheTTL       = 5 * time.Minute
	DefaultCalendarMode           = CalendarModeGoogle
	DefaultCORSAllowedOriginsList = "*"
)

const (
	CalendarModeGoogle = "google"
	CalendarModeLocal  = "local"
)
