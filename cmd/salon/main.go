package main

import (
	"context"
	"net/http"
	"time"

	bookingshandler "salonbook/internal/bookings/handler"
	bookingsrepo "salonbook/internal/bookings/repository"
	bookingsservice "salonbook/internal/bookings/service"
	"salonbook/internal/bookings/validator"
	"salonbook/internal/calendar"
	confirmhandler "salonbook/internal/confirmation/handler"
	confirmservice "salonbook/internal/confirmation/service"
	customershandler "salonbook/internal/customers/handler"
	customersrepo "salonbook/internal/customers/repository"
	customersservice "salonbook/internal/customers/service"
	"salonbook/internal/events"
	"salonbook/internal/health"
	"salonbook/internal/notify"
	remindershandler "salonbook/internal/reminders/handler"
	remindersrepo "salonbook/internal/reminders/repository"
	remindersservice "salonbook/internal/reminders/service"
	serviceshandler "salonbook/internal/services/handler"
	servicesrepo "salonbook/internal/services/repository"
	servicesservice "salonbook/internal/services/service"
	usershandler "salonbook/internal/users/handler"
	usersrepo "salonbook/internal/users/repository"
	usersservice "salonbook/internal/users/service"
	"salonbook/pkg/app"
	"salonbook/pkg/clock"
	"salonbook/pkg/config"
	"salonbook/pkg/contracts"
	"salonbook/pkg/kafka"
	kafka_config "salonbook/pkg/kafka/config"
	kafka_middleware "salonbook/pkg/kafka/middleware"
	"salonbook/pkg/metrics"
	"salonbook/pkg/middleware"
	"salonbook/pkg/model"
	"salonbook/pkg/tracing"
	"salonbook/pkg/validation"
)

const ServiceName = "salonbook"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting salon booking service")
	serverApp := app.NewApplication(cfg)

	shutdownTracing, err := tracing.Init(context.Background(), ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize tracing", "error", err)
	}
	serverApp.OnShutdown("tracing", shutdownTracing)

	recorder := metrics.NewPrometheus()
	handlers := initServices(cfg, serverApp, recorder)

	serverApp.SetApp(health.NewHandler(cfg.Client.Mongo, recorder.Handler(), cfg.Log), handlers...)
	serverApp.Run()
}

func initServices(cfg *config.Config, serverApp *app.Application, recorder metrics.Recorder) []contracts.Handler {
	normalizer, err := clock.New(cfg.SalonTimezone)
	if err != nil {
		cfg.Log.Fatal("Invalid salon timezone", "timezone", cfg.SalonTimezone, "error", err)
	}
	v := validation.New()
	publisher := initEvents(cfg, serverApp)

	adminGuard := middleware.NewSecretGuard(middleware.AdminSecretHeader, cfg.AdminSecret, cfg.Log)
	cronGuard := middleware.NewSecretGuard(middleware.CronSecretHeader, cfg.CronSecret, cfg.Log)

	var serviceRepo servicesrepo.ServiceRepository = servicesrepo.NewMongoServiceRepository(cfg)
	if cfg.Client.Redis != nil {
		serviceRepo = servicesrepo.NewCachedRepository(serviceRepo, cfg.Client.Redis, cfg.ServicesCacheTTL, cfg.Log)
	}
	catalog := servicesservice.NewCatalogService(serviceRepo, v, cfg.Log)

	userRepo := usersrepo.NewMongoUserRepository(cfg)
	customerService := customersservice.NewCustomerService(customersrepo.NewMongoCustomerRepository(cfg), userRepo, v, cfg.Log)
	userService := usersservice.NewUserService(userRepo, v, customerService, cfg.Log)

	channels := initChannels(cfg)
	staffChannel, err := channels.Get(model.ChannelTelegram)
	if err != nil {
		cfg.Log.Fatal("Staff alert channel missing", "error", err)
	}
	alerter := notify.NewStaffAlerter(staffChannel, cfg.TelegramStaffChatID, normalizer)

	reminderRepo := remindersrepo.NewMongoReminderRepository(cfg)
	dispatcher := remindersservice.NewDispatcher(reminderRepo, channels, remindersservice.Config{
		BatchSize:       cfg.ReminderBatchSize,
		Policy:          remindersservice.RetryPolicy{MaxAttempts: cfg.ReminderMaxAttempts},
		DeliveryTimeout: cfg.UpstreamTimeout,
	}, publisher, recorder, cfg.Log)
	initScheduler(cfg, serverApp, normalizer, dispatcher)

	bookingRepo := bookingsrepo.NewMongoBookingRepository(cfg)
	if err := bookingRepo.EnsureIndexes(context.Background()); err != nil {
		cfg.Log.Fatal("Failed to ensure booking indexes", "error", err)
	}
	bookingService := bookingsservice.NewBookingService(bookingsservice.Deps{
		Repo:              bookingRepo,
		Validator:         validator.NewBookingValidator(normalizer),
		Clock:             normalizer,
		Catalog:           catalog,
		Profiles:          userService,
		Customers:         customerService,
		Alerter:           alerter,
		Reminders:         reminderRepo,
		Events:            publisher,
		Metrics:           recorder,
		Log:               cfg.Log,
		SideEffectTimeout: cfg.UpstreamTimeout,
	})

	confirmationService := confirmservice.NewConfirmationService(confirmservice.Deps{
		Bookings:  bookingRepo,
		Users:     userRepo,
		Services:  serviceRepo,
		Reminders: reminderRepo,
		Calendar:  initCalendar(cfg),
		Clock:     normalizer,
		Events:    publisher,
		Metrics:   recorder,
		Log:       cfg.Log,
		Settings: confirmservice.Settings{
			DefaultDurationMinutes: cfg.DefaultDurationMinutes,
			ReminderLeadTime:       cfg.ReminderLeadTime,
			SalonAddress:           cfg.SalonAddress,
			UpstreamTimeout:        cfg.UpstreamTimeout,
		},
	})

	cfg.Log.Info("Salon services initialized", "database", cfg.MongoDatabaseName)
	return []contracts.Handler{
		serviceshandler.NewServiceHandler(catalog, adminGuard, cfg.Log),
		usershandler.NewUserHandler(userService, cfg.Log),
		bookingshandler.NewBookingHandler(bookingService, normalizer, adminGuard, cfg.Log),
		confirmhandler.NewConfirmHandler(confirmationService, normalizer, adminGuard, cfg.Log),
		customershandler.NewCustomerHandler(customerService, adminGuard, cfg.Log),
		remindershandler.NewReminderHandler(dispatcher, cronGuard, cfg.Log),
	}
}

func initEvents(cfg *config.Config, serverApp *app.Application) events.Publisher {
	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	if !kafkaCfg.Enabled() {
		cfg.Log.Info("KAFKA_BROKERS not set, booking events disabled")
		return events.Noop{}
	}

	producer, err := kafka.NewProducer(kafkaCfg, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	publisher := events.NewKafkaPublisher(producer, ServiceName)
	serverApp.OnShutdown("kafka", func(context.Context) error { return publisher.Close() })
	return publisher
}

func initChannels(cfg *config.Config) *notify.Registry {
	registry := notify.NewRegistry()

	if cfg.LineChannelAccessToken != "" {
		line, err := notify.NewLineChannel(cfg.LineChannelAccessToken)
		if err != nil {
			cfg.Log.Fatal("Failed to create LINE client", "error", err)
		}
		registry.Register(model.ChannelLine, line)
	} else {
		cfg.Log.Warn("LINE_CHANNEL_ACCESS_TOKEN not set, customer reminders disabled")
		registry.Register(model.ChannelLine, notify.NoopChannel{Name: model.ChannelLine, Log: cfg.Log})
	}

	if cfg.TelegramBotToken != "" {
		telegram, err := notify.NewTelegramChannel(cfg.TelegramBotToken, &http.Client{Timeout: cfg.UpstreamTimeout})
		if err != nil {
			cfg.Log.Fatal("Failed to create Telegram bot", "error", err)
		}
		registry.Register(model.ChannelTelegram, telegram)
	} else {
		cfg.Log.Warn("TELEGRAM_BOT_TOKEN not set, staff alerts disabled")
		registry.Register(model.ChannelTelegram, notify.NoopChannel{Name: model.ChannelTelegram, Log: cfg.Log})
	}

	return registry
}

func initCalendar(cfg *config.Config) calendar.Provider {
	if cfg.CalendarMode == config.CalendarModeLocal {
		cfg.Log.Warn("Using in-process calendar, events are not synced to Google")
		return calendar.NewLocalProvider(cfg.Log)
	}

	if cfg.GoogleCalendarID == "" || cfg.GoogleCredentialsJSON == "" {
		cfg.Log.Warn("Google Calendar not configured, confirmations will fail")
		return calendar.NoopProvider{}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	provider, err := calendar.NewGoogleProvider(ctx, cfg.GoogleCalendarID, cfg.GoogleCredentialsJSON)
	if err != nil {
		cfg.Log.Fatal("Failed to create Google Calendar client", "error", err)
	}
	return provider
}

func initScheduler(cfg *config.Config, serverApp *app.Application, normalizer *clock.Normalizer, d remindersservice.Drainer) {
	if cfg.ReminderDrainSchedule == "" {
		cfg.Log.Info("REMINDER_DRAIN_SCHEDULE not set, reminders drain only via the cron endpoint")
		return
	}

	scheduler, err := remindersservice.NewScheduler(cfg.ReminderDrainSchedule, normalizer.Location(), d, cfg.RequestTimeout, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Invalid reminder drain schedule", "schedule", cfg.ReminderDrainSchedule, "error", err)
	}
	scheduler.Start()
	serverApp.OnShutdown("reminder-scheduler", scheduler.Stop)
}
