package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/srfrogui/giacomoNsei/internal/app"
	"github.com/srfrogui/giacomoNsei/internal/clock"
	"github.com/srfrogui/giacomoNsei/internal/config"
	"github.com/srfrogui/giacomoNsei/internal/domain"
	"github.com/srfrogui/giacomoNsei/internal/logger"
	"github.com/srfrogui/giacomoNsei/internal/metrics"
	"github.com/srfrogui/giacomoNsei/internal/storage/postgres"
	transporthttp "github.com/srfrogui/giacomoNsei/internal/transport/http"
	"github.com/srfrogui/giacomoNsei/migrations"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	holidays, err := domain.ParseCalendar(cfg.Holidays)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to parse holiday calendar")
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.DB.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		log.Fatal().Err(err).Msg("database ping failed")
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		log.Fatal().Err(err).Msg("failed to apply migrations")
	}

	m := metrics.New()
	repo := postgres.NewOrderRepository(pool)
	allocator := app.NewAllocator(holidays, cfg.Allocation.MaxUnitsPerDay,
		app.WithMaxWalkDays(cfg.Allocation.MaxWalkDays))
	orderSvc := app.NewOrderService(repo, allocator, holidays, clock.NewSystem(),
		app.WithLeadTimeDays(cfg.Allocation.LeadTimeDays),
		app.WithPerDayCommitments(cfg.Allocation.PerDayCommitments),
		app.WithMetrics(m))

	mux := http.NewServeMux()
	mux.HandleFunc("/health", transporthttp.HealthHandler)
	mux.Handle("/metrics", m.Handler())
	mux.Handle("/orders", transporthttp.HandleOrders(orderSvc, orderSvc))
	mux.Handle("/orders/", transporthttp.HandleDeleteOrder(orderSvc))
	mux.Handle("/holidays", transporthttp.HandleHolidays(orderSvc))
	mux.Handle("/", transporthttp.NotFoundHandler())

	handler := transporthttp.RequestLogger(transporthttp.CORS(cfg.CORSOrigins, mux), log)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	log.Info().
		Str("addr", addr).
		Int("max_units_per_day", cfg.Allocation.MaxUnitsPerDay).
		Int("lead_time_days", cfg.Allocation.LeadTimeDays).
		Bool("per_day_commitments", cfg.Allocation.PerDayCommitments).
		Msg("api listening")

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server error")
		}
	case <-stopCtx.Done():
		log.Info().Msg("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("server shutdown error")
	}
	log.Info().Msg("server stopped")
}
