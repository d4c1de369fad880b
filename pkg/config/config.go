package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"salonbook/pkg/client"
	"salonbook/pkg/clock"
	"salonbook/pkg/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout  time.Duration
	UpstreamTimeout time.Duration
	IdempotencyTTL  time.Duration
	MaxRequestSize  int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	AdminSecret string
	CronSecret  string

	SalonTimezone          string
	SalonAddress           string
	DefaultDurationMinutes int
	ReminderLeadTime       time.Duration
	ReminderMaxAttempts    int
	ReminderBatchSize      int
	ReminderDrainSchedule  string

	LineChannelAccessToken string
	TelegramBotToken       string
	TelegramStaffChatID    int64

	CalendarMode          string
	GoogleCalendarID      string
	GoogleCredentialsJSON string

	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	ServicesCacheTTL time.Duration

	CORSAllowedOrigins []string

	OTLPEndpoint string

	Log    *logger.Logger
	Client *client.Client
}

// Load reads .env (if present) and the process environment, validates the
// result and exits on any configuration error.
func Load(serviceName string) *Config {
	_ = godotenv.Load()

	cfg := FromEnv(serviceName)
	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func FromEnv(serviceName string) *Config {
	return &Config{
		MongoURI:          getEnvStr(EnvMongoURI, ""),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout:  getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		UpstreamTimeout: getEnvDuration(EnvUpstreamTimeout, DefaultUpstreamTimeout),
		IdempotencyTTL:  getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize:  getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		AdminSecret: os.Getenv(EnvAdminSecret),
		CronSecret:  os.Getenv(EnvCronSecret),

		SalonTimezone:          getEnvStr(EnvSalonTimezone, DefaultSalonTimezone),
		SalonAddress:           os.Getenv(EnvSalonAddress),
		DefaultDurationMinutes: getEnvNum(EnvDefaultDurationMinutes, DefaultDurationMinutes),
		ReminderLeadTime:       getEnvDuration(EnvReminderLeadTime, DefaultReminderLeadTime),
		ReminderMaxAttempts:    getEnvNum(EnvReminderMaxAttempts, DefaultReminderMaxAttempts),
		ReminderBatchSize:      getEnvNum(EnvReminderBatchSize, DefaultReminderBatchSize),
		ReminderDrainSchedule:  os.Getenv(EnvReminderDrainSchedule),

		LineChannelAccessToken: os.Getenv(EnvLineChannelAccessToken),
		TelegramBotToken:       os.Getenv(EnvTelegramBotToken),
		TelegramStaffChatID:    getEnvInt64(EnvTelegramStaffChatID, 0),

		CalendarMode:          strings.ToLower(getEnvStr(EnvCalendarMode, DefaultCalendarMode)),
		GoogleCalendarID:      os.Getenv(EnvGoogleCalendarID),
		GoogleCredentialsJSON: os.Getenv(EnvGoogleCredentialsJSON),

		RedisAddr:        os.Getenv(EnvRedisAddr),
		RedisPassword:    os.Getenv(EnvRedisPassword),
		RedisDB:          getEnvNum(EnvRedisDB, 0),
		ServicesCacheTTL: getEnvDuration(EnvServicesCacheTTL, DefaultServicesCacheTTL),

		CORSAllowedOrigins: splitList(getEnvStr(EnvCORSAllowedOrigins, DefaultCORSAllowedOriginsList)),

		OTLPEndpoint: os.Getenv(EnvOTLPEndpoint),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    getEnvStr(EnvLogFormat, DefaultLogFormat),
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

// SetRedis connects the optional cache. Redis is never mandatory: a failed
// connection is logged and the service runs uncached.
func (cfg *Config) SetRedis() {
	if cfg.RedisAddr == "" {
		cfg.Log.Warn("REDIS_ADDR not set, service catalog cache disabled")
		return
	}
	cfg.Client.SetRedis(cfg.Log, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
	}
	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}

	positiveDurations := []struct {
		name  string
		value time.Duration
	}{
		{"MongoConnTimeout", cfg.MongoConnTimeout},
		{"RateLimitWindow", cfg.RateLimitWindow},
		{"RequestTimeout", cfg.RequestTimeout},
		{"UpstreamTimeout", cfg.UpstreamTimeout},
		{"IdempotencyTTL", cfg.IdempotencyTTL},
		{"ReadTimeout", cfg.ReadTimeout},
		{"WriteTimeout", cfg.WriteTimeout},
		{"IdleTimeout", cfg.IdleTimeout},
		{"ShutdownTimeout", cfg.ShutdownTimeout},
		{"ReminderLeadTime", cfg.ReminderLeadTime},
		{"ServicesCacheTTL", cfg.ServicesCacheTTL},
	}
	for _, d := range positiveDurations {
		if d.value <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %s", d.name, d.value))
		}
	}

	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	if _, err := clock.LoadLocation(cfg.SalonTimezone); err != nil {
		errors = append(errors, fmt.Sprintf("SalonTimezone is invalid: %v", err))
	}
	if cfg.DefaultDurationMinutes <= 0 || cfg.DefaultDurationMinutes > MaxDurationMinutes {
		errors = append(errors, fmt.Sprintf("DefaultDurationMinutes must be in (0, %d], got: %d", MaxDurationMinutes, cfg.DefaultDurationMinutes))
	}
	if cfg.ReminderMaxAttempts < 1 {
		errors = append(errors, fmt.Sprintf("ReminderMaxAttempts must be at least 1, got: %d", cfg.ReminderMaxAttempts))
	}
	if cfg.ReminderBatchSize < 1 {
		errors = append(errors, fmt.Sprintf("ReminderBatchSize must be at least 1, got: %d", cfg.ReminderBatchSize))
	}

	switch cfg.CalendarMode {
	case CalendarModeGoogle, CalendarModeLocal:
	default:
		errors = append(errors, fmt.Sprintf("CalendarMode must be %q or %q, got: %s", CalendarModeGoogle, CalendarModeLocal, cfg.CalendarMode))
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

// Warnings lists optional integrations that are not configured. Each one
// degrades to a no-op rather than failing startup.
func (cfg *Config) Warnings() []string {
	var warnings []string
	if cfg.AdminSecret == "" {
		warnings = append(warnings, "ADMIN_SECRET not set, admin endpoints will reject every request")
	}
	if cfg.CronSecret == "" {
		warnings = append(warnings, "CRON_SECRET not set, the reminder drain endpoint will reject every request")
	}
	if cfg.LineChannelAccessToken == "" {
		warnings = append(warnings, "LINE_CHANNEL_ACCESS_TOKEN not set, LINE reminders are logged but not sent")
	}
	if cfg.TelegramBotToken == "" || cfg.TelegramStaffChatID == 0 {
		warnings = append(warnings, "Telegram not configured, staff alerts are logged but not sent")
	}
	if cfg.CalendarMode == CalendarModeGoogle && (cfg.GoogleCalendarID == "" || cfg.GoogleCredentialsJSON == "") {
		warnings = append(warnings, "Google Calendar not configured, booking confirmation will fail until it is")
	}
	return warnings
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"upstream_timeout", cfg.UpstreamTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"admin_secret_set", cfg.AdminSecret != "",
		"cron_secret_set", cfg.CronSecret != "",
		"salon_timezone", cfg.SalonTimezone,
		"salon_address_set", cfg.SalonAddress != "",
		"default_duration_minutes", cfg.DefaultDurationMinutes,
		"reminder_lead_time", cfg.ReminderLeadTime,
		"reminder_max_attempts", cfg.ReminderMaxAttempts,
		"reminder_batch_size", cfg.ReminderBatchSize,
		"reminder_drain_schedule", cfg.ReminderDrainSchedule,
		"line_configured", cfg.LineChannelAccessToken != "",
		"telegram_configured", cfg.TelegramBotToken != "" && cfg.TelegramStaffChatID != 0,
		"calendar_mode", cfg.CalendarMode,
		"redis_addr", cfg.RedisAddr,
		"services_cache_ttl", cfg.ServicesCacheTTL,
		"cors_allowed_origins", cfg.CORSAllowedOrigins,
		"otlp_endpoint", cfg.OTLPEndpoint,
	)
	for _, w := range cfg.Warnings() {
		cfg.Log.Warn(w)
	}
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log, cfg.ShutdownTimeout)
}
