package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	_ "github.com/lib/pq"

	"github.com/m04kA/SMC-SchedulingService/internal/config"
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/reservation"
	appointmentRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/appointment"
	bookingRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage/postgres"
	therapistRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/therapist"
	therapistsService "github.com/m04kA/SMC-SchedulingService/internal/service/therapists"
	"github.com/m04kA/SMC-SchedulingService/internal/service/therapists/models"
	approveBookingUC "github.com/m04kA/SMC-SchedulingService/internal/usecase/approve_booking"
	createBookingUC "github.com/m04kA/SMC-SchedulingService/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/m04kA/SMC-SchedulingService/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
	"github.com/m04kA/SMC-SchedulingService/pkg/metrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
	"github.com/m04kA/SMC-SchedulingService/pkg/txmanager"
)

var specializations = []string{
	"Psicología clínica",
	"Terapia de pareja",
	"Terapia cognitivo-conductual",
	"Psicología infantil",
	"Neuropsicología",
}

// Заполняет хранилище демонстрационными данными: профиль практикующего,
// заявки с его публичной страницы и часть из них подтверждает.
// SEED_USER_ID и SEED_BOOKINGS задают практикующего и количество заявок.
func main() {
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	if cfg.Store.Driver != "postgres" {
		log.Fatal("seed requires store.driver = postgres, got %q", cfg.Store.Driver)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}

	// без listener: подписки здесь не нужны
	docs := postgres.NewStore(db, txmanager.NewTransactionManager(db), nil, cfg.Database.NotifyChannel, nil, log)
	if err := docs.Migrate(ctx); err != nil {
		log.Fatal("Failed to migrate document store: %v", err)
	}

	therapists := therapistRepo.NewRepository(docs)
	bookings := bookingRepo.NewRepository(docs)
	appointments := appointmentRepo.NewRepository(docs)

	// nil *Metrics безопасен: методы ничего не делают
	var noMetrics *metrics.Metrics

	therapistSvc := therapistsService.NewService(therapists, log)
	slotsUseCase := getAvailableSlotsUC.NewUseCase(therapists, bookings, appointments, noMetrics, cfg.Booking.HorizonDays, log)
	createUseCase := createBookingUC.NewUseCase(therapists, bookings, appointments, reservation.Noop{}, noMetrics,
		createBookingUC.Options{
			DefaultOccurrences: 4,
			MaxOccurrences:     cfg.Booking.MaxOccurrences,
		}, log)
	approveUseCase := approveBookingUC.NewUseCase(therapists, bookings, appointments, nil, noMetrics,
		approveBookingUC.Options{DefaultOccurrences: 4}, log)

	userID := envOr("SEED_USER_ID", "seed-therapist")
	count := envInt("SEED_BOOKINGS", 10)

	gofakeit.Seed(time.Now().UnixNano())

	profile, err := therapistSvc.Ensure(ctx, &models.EnsureProfileRequest{
		UserID:      userID,
		Email:       gofakeit.Email(),
		DisplayName: gofakeit.Name(),
	})
	if err != nil {
		log.Fatal("Failed to ensure profile: %v", err)
	}
	spec := specializations[gofakeit.Number(0, len(specializations)-1)]
	if _, err := therapistSvc.Update(ctx, userID, &models.UpdateProfileRequest{Specialization: &spec}); err != nil {
		log.Fatal("Failed to update profile: %v", err)
	}
	log.Info("Seeding therapist user=%s, booking link=%s", userID, profile.BookingLink)

	slots, err := slotsUseCase.Execute(ctx, &getAvailableSlotsUC.Request{BookingLink: profile.BookingLink})
	if err != nil {
		log.Fatal("Failed to generate slots: %v", err)
	}

	var free []domain.TimeRange
	for _, day := range slots.Days {
		for _, slot := range day.Slots {
			if !slot.Available {
				continue
			}
			r, err := domain.NewTimeRange(slot.StartTime, slot.EndTime)
			if err == nil {
				free = append(free, r)
			}
		}
	}

	created, approved := 0, 0
	for created < count && len(free) > 0 {
		i := gofakeit.Number(0, len(free)-1)
		slot := free[i]
		free = append(free[:i], free[i+1:]...)

		kind := string(domain.KindOneTime)
		if gofakeit.Bool() {
			kind = string(domain.KindRecurring)
		}

		resp, err := createUseCase.Execute(ctx, &createBookingUC.Request{
			BookingLink:  profile.BookingLink,
			PatientName:  gofakeit.Name(),
			PatientEmail: gofakeit.Email(),
			PatientPhone: ptr.Ptr(gofakeit.Phone()),
			StartTime:    slot.Start(),
			EndTime:      slot.End(),
			Type:         kind,
			Notes:        ptr.Ptr(gofakeit.Phrase()),
		})
		if err != nil {
			log.Warn("Skip slot %s: %v", slot, err)
			continue
		}
		created++

		if gofakeit.Bool() {
			if _, err := approveUseCase.Execute(ctx, &approveBookingUC.Request{
				UserID:    userID,
				BookingID: resp.Bookings[0].ID,
			}); err != nil {
				log.Warn("Failed to approve booking %s: %v", resp.Bookings[0].ID, err)
				continue
			}
			approved++
		}
	}

	log.Info("Seed complete: bookings=%d, approved=%d", created, approved)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
