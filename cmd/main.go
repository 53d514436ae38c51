package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	addTimeOffHandler "github.com/m04kA/SMC-LessonService/internal/api/handlers/add_time_off"
	cancelSlotHandler "github.com/m04kA/SMC-LessonService/internal/api/handlers/cancel_slot"
	confirmBookingHandler "github.com/m04kA/SMC-LessonService/internal/api/handlers/confirm_booking"
	createSlotHandler "github.com/m04kA/SMC-LessonService/internal/api/handlers/create_slot"
	deleteSlotHandler "github.com/m04kA/SMC-LessonService/internal/api/handlers/delete_slot"
	getAvailabilityHandler "github.com/m04kA/SMC-LessonService/internal/api/handlers/get_availability"
	getBookingHandler "github.com/m04kA/SMC-LessonService/internal/api/handlers/get_booking"
	getSlotHandler "github.com/m04kA/SMC-LessonService/internal/api/handlers/get_slot"
	getUserBookingsHandler "github.com/m04kA/SMC-LessonService/internal/api/handlers/get_user_bookings"
	getWeekScheduleHandler "github.com/m04kA/SMC-LessonService/internal/api/handlers/get_week_schedule"
	healthHandler "github.com/m04kA/SMC-LessonService/internal/api/handlers/health"
	listTimeOffHandler "github.com/m04kA/SMC-LessonService/internal/api/handlers/list_time_off"
	listTutorSlotsHandler "github.com/m04kA/SMC-LessonService/internal/api/handlers/list_tutor_slots"
	placeHoldHandler "github.com/m04kA/SMC-LessonService/internal/api/handlers/place_hold"
	releaseHoldHandler "github.com/m04kA/SMC-LessonService/internal/api/handlers/release_hold"
	saveAvailabilityHandler "github.com/m04kA/SMC-LessonService/internal/api/handlers/save_availability"
	syncAvailabilityHandler "github.com/m04kA/SMC-LessonService/internal/api/handlers/sync_availability"
	"github.com/m04kA/SMC-LessonService/internal/api/middleware"
	"github.com/m04kA/SMC-LessonService/internal/app"
	"github.com/m04kA/SMC-LessonService/internal/config"
	availabilityRepo "github.com/m04kA/SMC-LessonService/internal/infra/storage/availability"
	bookingRepo "github.com/m04kA/SMC-LessonService/internal/infra/storage/booking"
	holdRepo "github.com/m04kA/SMC-LessonService/internal/infra/storage/hold"
	profileRepo "github.com/m04kA/SMC-LessonService/internal/infra/storage/profile"
	slotRepo "github.com/m04kA/SMC-LessonService/internal/infra/storage/slot"
	"github.com/m04kA/SMC-LessonService/internal/integrations/notifier"
	availabilityService "github.com/m04kA/SMC-LessonService/internal/service/availability"
	bookingsService "github.com/m04kA/SMC-LessonService/internal/service/bookings"
	slotsService "github.com/m04kA/SMC-LessonService/internal/service/slots"
	confirmBookingUC "github.com/m04kA/SMC-LessonService/internal/usecase/confirm_booking"
	getWeekScheduleUC "github.com/m04kA/SMC-LessonService/internal/usecase/get_week_schedule"
	placeHoldUC "github.com/m04kA/SMC-LessonService/internal/usecase/place_hold"
	releaseHoldUC "github.com/m04kA/SMC-LessonService/internal/usecase/release_hold"
	syncAvailabilityUC "github.com/m04kA/SMC-LessonService/internal/usecase/sync_availability"
	"github.com/m04kA/SMC-LessonService/pkg/dbmetrics"
	"github.com/m04kA/SMC-LessonService/pkg/logger"
	"github.com/m04kA/SMC-LessonService/pkg/metrics"
	"github.com/m04kA/SMC-LessonService/pkg/redis"
	"github.com/m04kA/SMC-LessonService/pkg/txmanager"
)

func main() {
	configPath := "config.toml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		configPath = v
	}

	// Загружаем конфигурацию
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-LessonService...")
	log.Info("Configuration loaded from %s", configPath)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// ============================================================
	// БАЗА ДАННЫХ
	// ============================================================

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.PingContext(ctx); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	if cfg.Database.AutoMigrate {
		migrator, err := app.NewMigrator(db)
		if err != nil {
			log.Fatal("Failed to initialize migrator: %v", err)
		}
		if err := migrator.Run(ctx); err != nil {
			log.Fatal("Failed to apply migrations: %v", err)
		}
		version, _ := migrator.Version(ctx)
		log.Info("Migrations applied (version=%d)", version)
	}

	// Без метрик обёртка только прокидывает вызовы
	var wrappedDB *dbmetrics.DB
	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
		log.Info("Database metrics collection started")
	} else {
		wrappedDB = dbmetrics.Wrap(db, nil)
	}

	// ============================================================
	// REDIS (события слотов и rate limit)
	// ============================================================

	var (
		slotNotifier placeHoldUC.Notifier = notifier.Nop{}
		rateLimiter  middleware.RateLimiter
	)

	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(ctx, redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal("Failed to connect to redis: %v", err)
		}
		defer redisClient.Close()

		slotNotifier = notifier.NewNotifier(redisClient, log)
		rateLimiter = redisClient
		log.Info("Redis connected (addr=%s), slot events and rate limiting enabled", cfg.Redis.Addr)
	} else {
		log.Warn("Redis disabled: slot events are not published, rate limiting is off")
	}

	// ============================================================
	// РЕПОЗИТОРИИ
	// ============================================================

	slotRepository := slotRepo.NewRepository(wrappedDB)
	holdRepository := holdRepo.NewRepository(wrappedDB)
	bookingRepository := bookingRepo.NewRepository(wrappedDB)
	availabilityRepository := availabilityRepo.NewRepository(wrappedDB)
	profileRepository := profileRepo.NewRepository(wrappedDB)

	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// ============================================================
	// USE CASES И СЕРВИСЫ
	// ============================================================

	placeHoldUseCase := placeHoldUC.NewUseCase(
		slotRepository,
		holdRepository,
		slotNotifier,
		txMgr,
		log,
		cfg.Booking.HoldTTL(),
	)
	releaseHoldUseCase := releaseHoldUC.NewUseCase(
		slotRepository,
		holdRepository,
		slotNotifier,
		txMgr,
		log,
	)
	confirmBookingUseCase := confirmBookingUC.NewUseCase(
		slotRepository,
		holdRepository,
		bookingRepository,
		slotNotifier,
		txMgr,
		log,
	)
	syncAvailabilityUseCase := syncAvailabilityUC.NewUseCase(
		availabilityRepository,
		slotRepository,
		profileRepository,
		slotNotifier,
		txMgr,
		log,
		syncAvailabilityUC.Defaults{
			HorizonWeeks:  cfg.Materializer.HorizonWeeks,
			LessonMinutes: cfg.Booking.LessonMinutes,
			PriceCents:    cfg.Booking.DefaultPriceCents,
		},
	)
	if cfg.Metrics.Enabled {
		syncAvailabilityUseCase.SetSlotsCounter(metricsCollector)
	}
	getWeekScheduleUseCase := getWeekScheduleUC.NewUseCase(
		availabilityRepository,
		slotRepository,
		bookingRepository,
		profileRepository,
		log,
	)

	slotSvc := slotsService.NewService(
		slotRepository,
		holdRepository,
		profileRepository,
		slotNotifier,
		txMgr,
		log,
		slotsService.Defaults{
			LessonMinutes: cfg.Booking.LessonMinutes,
			PriceCents:    cfg.Booking.DefaultPriceCents,
		},
	)
	availabilitySvc := availabilityService.NewService(
		availabilityRepository,
		syncAvailabilityUseCase,
		log,
	)
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		log,
		time.Duration(cfg.Booking.LessonMinutes)*time.Minute,
	)

	// ============================================================
	// HANDLERS
	// ============================================================

	listTutorSlots := listTutorSlotsHandler.NewHandler(slotSvc, log)
	getSlot := getSlotHandler.NewHandler(slotSvc, log)
	createSlot := createSlotHandler.NewHandler(slotSvc, log)
	deleteSlot := deleteSlotHandler.NewHandler(slotSvc, log)
	cancelSlot := cancelSlotHandler.NewHandler(slotSvc, log)
	placeHold := placeHoldHandler.NewHandler(placeHoldUseCase, log)
	releaseHold := releaseHoldHandler.NewHandler(releaseHoldUseCase, log)
	confirmBooking := confirmBookingHandler.NewHandler(confirmBookingUseCase, log)
	getAvailability := getAvailabilityHandler.NewHandler(availabilitySvc, log)
	saveAvailability := saveAvailabilityHandler.NewHandler(availabilitySvc, log)
	syncAvailability := syncAvailabilityHandler.NewHandler(syncAvailabilityUseCase, log)
	listTimeOff := listTimeOffHandler.NewHandler(availabilitySvc, log)
	addTimeOff := addTimeOffHandler.NewHandler(availabilitySvc, log)
	getWeekSchedule := getWeekScheduleHandler.NewHandler(getWeekScheduleUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	getUserBookings := getUserBookingsHandler.NewHandler(bookingSvc, log)
	health := healthHandler.NewHandler(db, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.Recover(log))
	r.Use(middleware.AccessLog(log))

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	r.HandleFunc("/healthz", health.Handle).Methods(http.MethodGet)

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Слоты тьютора за период
	api.HandleFunc("/tutors/{tutorId}/slots", listTutorSlots.Handle).Methods(http.MethodGet)

	// Слот по ID
	api.HandleFunc("/slots/{slotId}", getSlot.Handle).Methods(http.MethodGet)

	// Шаблон доступности и отпуска тьютора
	api.HandleFunc("/tutors/{tutorId}/availability", getAvailability.Handle).Methods(http.MethodGet)
	api.HandleFunc("/tutors/{tutorId}/time-off", listTimeOff.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют Bearer JWT)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth([]byte(cfg.Auth.JWTSecret), cfg.Auth.Issuer, log))

	// --- Управление слотами (тьютор или админ) ---
	protected.HandleFunc("/tutors/{tutorId}/slots", createSlot.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/slots/{slotId}", deleteSlot.Handle).Methods(http.MethodDelete)
	protected.HandleFunc("/slots/{slotId}/cancel", cancelSlot.Handle).Methods(http.MethodPatch)

	// --- Доступность ---
	protected.HandleFunc("/tutors/{tutorId}/availability", saveAvailability.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/tutors/{tutorId}/availability/sync", syncAvailability.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/tutors/{tutorId}/time-off", addTimeOff.Handle).Methods(http.MethodPost)

	// --- Недельное расписание ---
	protected.HandleFunc("/tutors/{tutorId}/schedule", getWeekSchedule.Handle).Methods(http.MethodGet)

	// --- Бронирования ---
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/me/bookings", getUserBookings.Handle).Methods(http.MethodGet)

	// --- Hold и бронирование (с ограничением частоты) ---
	limited := protected.PathPrefix("").Subrouter()
	limited.Use(middleware.RateLimit(
		rateLimiter,
		cfg.Redis.RateLimit,
		time.Duration(cfg.Redis.RateLimitWindow)*time.Second,
		log,
	))
	limited.HandleFunc("/slots/{slotId}/hold", placeHold.Handle).Methods(http.MethodPost)
	limited.HandleFunc("/slots/{slotId}/release", releaseHold.Handle).Methods(http.MethodPost)
	limited.HandleFunc("/slots/{slotId}/book", confirmBooking.Handle).Methods(http.MethodPost)

	// ============================================================
	// ФОНОВЫЕ ЗАДАЧИ
	// ============================================================

	var scheduler *app.Scheduler
	if cfg.Scheduler.Enabled {
		scheduler = app.NewScheduler(
			syncAvailabilityUseCase,
			slotSvc,
			bookingSvc,
			app.SchedulerIntervals{
				Materialize:      time.Duration(cfg.Materializer.IntervalMinutes) * time.Minute,
				PurgeHolds:       time.Duration(cfg.Scheduler.PurgeHoldsIntervalMinutes) * time.Minute,
				CompleteBookings: time.Duration(cfg.Scheduler.CompleteBookingsIntervalMinutes) * time.Minute,
			},
			log,
		)
		if cfg.Metrics.Enabled {
			scheduler.SetObserver(metricsCollector)
		}
		scheduler.Start(ctx)
	}

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	if scheduler != nil {
		scheduler.Stop()
	}
	stop()

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
