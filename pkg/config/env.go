package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort      = "PORT"
	EnvLogLevel  = "LOG_LEVEL"
	EnvLogFormat = "LOG_FORMAT"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout  = "REQUEST_TIMEOUT"
	EnvUpstreamTimeout = "UPSTREAM_TIMEOUT"
	EnvIdempotencyTTL  = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize  = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvAdminSecret = "ADMIN_SECRET"
	EnvCronSecret  = "CRON_SECRET"

	EnvSalonTimezone          = "SALON_TIMEZONE"
	EnvSalonAddress           = "SALON_ADDRESS"
	EnvDefaultDurationMinutes = "DEFAULT_DURATION_MINUTES"
	EnvReminderLeadTime       = "REMINDER_LEAD_TIME"
	EnvReminderMaxAttempts    = "REMINDER_MAX_ATTEMPTS"
	EnvReminderBatchSize      = "REMINDER_BATCH_SIZE"
	EnvReminderDrainSchedule  = "REMINDER_DRAIN_SCHEDULE"

	EnvLineChannelAccessToken = "LINE_CHANNEL_ACCESS_TOKEN"
	EnvTelegramBotToken       = "TELEGRAM_BOT_TOKEN"
	EnvTelegramStaffChatID    = "TELEGRAM_STAFF_CHAT_ID"

	EnvCalendarMode          = "CALENDAR_MODE"
	EnvGoogleCalendarID      = "GOOGLE_CALENDAR_ID"
	EnvGoogleCredentialsJSON = "GOOGLE_CREDENTIALS_JSON"

	EnvRedisAddr        = "REDIS_ADDR"
	EnvRedisPassword    = "REDIS_PASSWORD"
	EnvRedisDB          = "REDIS_DB"
	EnvServicesCacheTTL = "SERVICES_CACHE_TTL"

	EnvCORSAllowedOrigins = "CORS_ALLOWED_ORIGINS"

	EnvOTLPEndpoint = "OTEL_EXPORTER_OTLP_ENDPOINT"
)
