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

	approveBookingHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/approve_booking"
	cancelSeriesHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/cancel_series"
	createAppointmentHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/create_appointment"
	createBookingHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/create_booking"
	deleteAppointmentHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/delete_appointment"
	getAppointmentHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/get_appointment"
	getAvailableSlotsHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/get_booking"
	getBookingsHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/get_bookings"
	getPendingBookingsHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/get_pending_bookings"
	getProfileHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/get_profile"
	getPublicProfileHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/get_public_profile"
	getStatsHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/get_stats"
	listAppointmentsHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/list_appointments"
	regenerateBookingLinkHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/regenerate_booking_link"
	rejectBookingHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/reject_booking"
	updateAppointmentHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/update_appointment"
	updateProfileHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/update_profile"
	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
	"github.com/m04kA/SMC-SchedulingService/internal/api/realtime"
	"github.com/m04kA/SMC-SchedulingService/internal/config"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/reservation"
	appointmentRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/appointment"
	bookingRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage/postgres"
	therapistRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/therapist"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/meetingservice"
	appointmentsService "github.com/m04kA/SMC-SchedulingService/internal/service/appointments"
	bookingsService "github.com/m04kA/SMC-SchedulingService/internal/service/bookings"
	therapistsService "github.com/m04kA/SMC-SchedulingService/internal/service/therapists"
	approveBookingUC "github.com/m04kA/SMC-SchedulingService/internal/usecase/approve_booking"
	createBookingUC "github.com/m04kA/SMC-SchedulingService/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/m04kA/SMC-SchedulingService/internal/usecase/get_available_slots"
	rejectBookingUC "github.com/m04kA/SMC-SchedulingService/internal/usecase/reject_booking"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
	"github.com/m04kA/SMC-SchedulingService/pkg/metrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/txmanager"
)

// documentStore общий контракт memory и postgres хранилищ, нужный репозиториям
type documentStore interface {
	therapistRepo.Store
	bookingRepo.Store
	appointmentRepo.Store
}

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
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

	log.Info("Starting SMC-SchedulingService...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Документное хранилище
	var docs documentStore
	switch cfg.Store.Driver {
	case "postgres":
		db, err := sql.Open("postgres", cfg.Database.DSN())
		if err != nil {
			log.Fatal("Failed to connect to database: %v", err)
		}
		defer db.Close()

		// Настраиваем connection pool
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

		if err := db.Ping(); err != nil {
			log.Fatal("Failed to ping database: %v", err)
		}
		log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
			cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

		if cfg.Metrics.Enabled {
			if err := metricsCollector.RegisterDB(db, cfg.Database.DBName); err != nil {
				log.Warn("Failed to register connection pool metrics: %v", err)
			}
		}

		pgStore := postgres.NewStore(
			db,
			txmanager.NewTransactionManager(db),
			postgres.NewPQListener(cfg.Database.DSN(), log),
			cfg.Database.NotifyChannel,
			metricsCollector,
			log,
		)
		defer pgStore.Close()

		if err := pgStore.Migrate(context.Background()); err != nil {
			log.Fatal("Failed to migrate document store: %v", err)
		}
		docs = pgStore
		log.Info("Document store: postgres (notify channel=%s)", cfg.Database.NotifyChannel)

	default:
		docs = memory.NewStore()
		log.Warn("Document store: memory, data is lost on restart")
	}

	// Резервирование слотов
	var reserver reservation.Reserver = reservation.Noop{}
	if cfg.Redis.Enabled {
		rdb, err := reservation.NewRedisClient(context.Background(),
			cfg.Redis.Addr, cfg.Redis.Username, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal("Failed to connect to redis: %v", err)
		}
		defer rdb.Close()
		reserver = reservation.NewRedisReserver(rdb)
		log.Info("Slot reservation enabled (redis=%s)", cfg.Redis.Addr)
	}

	// Интеграция с календарем
	var meetingClient *meetingservice.Client
	if cfg.Meetings.Enabled {
		meetingClient = meetingservice.NewClient(
			cfg.Meetings.URL,
			time.Duration(cfg.Meetings.Timeout)*time.Second,
			log,
		)
		log.Info("Meeting service client initialized (url=%s, timeout=%ds)", cfg.Meetings.URL, cfg.Meetings.Timeout)
	}

	// Инициализируем репозитории
	therapistRepository := therapistRepo.NewRepository(docs)
	bookingRepository := bookingRepo.NewRepository(docs)
	appointmentRepository := appointmentRepo.NewRepository(docs)

	// Инициализируем сервисы
	therapistSvc := therapistsService.NewService(therapistRepository, log)
	bookingSvc := bookingsService.NewService(bookingRepository, therapistRepository, log)
	appointmentSvc := appointmentsService.NewService(
		appointmentRepository,
		therapistRepository,
		meetingClientOrNil(meetingClient),
		appointmentsService.Options{
			DefaultWeeks: cfg.Booking.DefaultOccurrences,
			MaxWeeks:     cfg.Booking.MaxOccurrences,
		},
		log,
	)

	// Инициализируем use cases
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		therapistRepository,
		bookingRepository,
		appointmentRepository,
		metricsCollector,
		cfg.Booking.HorizonDays,
		log,
	)
	createBookingUseCase := createBookingUC.NewUseCase(
		therapistRepository,
		bookingRepository,
		appointmentRepository,
		reserver,
		metricsCollector,
		createBookingUC.Options{
			DefaultOccurrences: cfg.Booking.DefaultOccurrences,
			MaxOccurrences:     cfg.Booking.MaxOccurrences,
			RejectConflicts:    cfg.Booking.RejectConflicts,
			AtomicSeries:       cfg.Booking.AtomicSeries,
		},
		log,
	)
	approveBookingUseCase := approveBookingUC.NewUseCase(
		therapistRepository,
		bookingRepository,
		appointmentRepository,
		approveMeetingClient(meetingClient),
		metricsCollector,
		approveBookingUC.Options{
			DefaultOccurrences: cfg.Booking.DefaultOccurrences,
			RecheckOnApprove:   cfg.Booking.RecheckOnApprove,
		},
		log,
	)
	rejectBookingUseCase := rejectBookingUC.NewUseCase(
		therapistRepository,
		bookingRepository,
		reserver,
		metricsCollector,
		log,
	)

	// Инициализируем handlers
	getPublicProfile := getPublicProfileHandler.NewHandler(therapistSvc, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)

	getProfile := getProfileHandler.NewHandler(therapistSvc, log)
	updateProfile := updateProfileHandler.NewHandler(therapistSvc, log)
	regenerateBookingLink := regenerateBookingLinkHandler.NewHandler(therapistSvc, log)

	getPendingBookings := getPendingBookingsHandler.NewHandler(bookingSvc, log)
	getBookings := getBookingsHandler.NewHandler(bookingSvc, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	approveBooking := approveBookingHandler.NewHandler(approveBookingUseCase, log)
	rejectBooking := rejectBookingHandler.NewHandler(rejectBookingUseCase, log)

	listAppointments := listAppointmentsHandler.NewHandler(appointmentSvc, log)
	createAppointment := createAppointmentHandler.NewHandler(appointmentSvc, log)
	getAppointment := getAppointmentHandler.NewHandler(appointmentSvc, log)
	updateAppointment := updateAppointmentHandler.NewHandler(appointmentSvc, log)
	deleteAppointment := deleteAppointmentHandler.NewHandler(appointmentSvc, log)
	cancelSeries := cancelSeriesHandler.NewHandler(appointmentSvc, log)
	getStats := getStatsHandler.NewHandler(appointmentSvc, log)

	hub := realtime.NewHub(realtimeMetrics(metricsCollector), log)
	appointmentStream := realtime.NewHandler(hub, appointmentSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		log.Info("HTTP metrics middleware enabled")
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (страница бронирования, без аутентификации)
	// ============================================================

	api.HandleFunc("/book/{bookingLink}", getPublicProfile.Handle).Methods(http.MethodGet)
	api.HandleFunc("/book/{bookingLink}/slots", getAvailableSlots.Handle).Methods(http.MethodGet)
	api.HandleFunc("/book/{bookingLink}/bookings", createBooking.Handle).Methods(http.MethodPost)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("/therapists/me").Subrouter()
	protected.Use(middleware.Auth)

	// --- Профиль ---
	protected.HandleFunc("", getProfile.Handle).Methods(http.MethodGet)
	protected.HandleFunc("", updateProfile.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/booking-link", regenerateBookingLink.Handle).Methods(http.MethodPost)

	// --- Заявки ---
	protected.HandleFunc("/bookings", getBookings.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/pending", getPendingBookings.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}/approve", approveBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}/reject", rejectBooking.Handle).Methods(http.MethodPost)

	// --- Календарь ---
	protected.HandleFunc("/appointments", listAppointments.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/appointments", createAppointment.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/stream", appointmentStream.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{appointmentId}", getAppointment.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{appointmentId}", updateAppointment.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/appointments/{appointmentId}", deleteAppointment.Handle).Methods(http.MethodDelete)
	protected.HandleFunc("/series/{seriesId}", cancelSeries.Handle).Methods(http.MethodDelete)
	protected.HandleFunc("/stats", getStats.Handle).Methods(http.MethodGet)

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

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	// Shutdown не ждет захваченные websocket соединения, закрываем их сами
	hub.Close()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}

// typed nil в интерфейсе не равен nil, поэтому выключенный клиент передаем как nil интерфейс
func meetingClientOrNil(c *meetingservice.Client) appointmentsService.MeetingClient {
	if c == nil {
		return nil
	}
	return c
}

func approveMeetingClient(c *meetingservice.Client) approveBookingUC.MeetingClient {
	if c == nil {
		return nil
	}
	return c
}

func realtimeMetrics(m *metrics.Metrics) realtime.Metrics {
	if m == nil {
		return nil
	}
	return m
}
