package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/manfromnowhere143/hostly-platform-sub000/internal/app"
	"github.com/manfromnowhere143/hostly-platform-sub000/internal/cache"
	"github.com/manfromnowhere143/hostly-platform-sub000/internal/clock"
	"github.com/manfromnowhere143/hostly-platform-sub000/internal/config"
	"github.com/manfromnowhere143/hostly-platform-sub000/internal/pms"
	"github.com/manfromnowhere143/hostly-platform-sub000/internal/storage/postgres"
	transporthttp "github.com/manfromnowhere143/hostly-platform-sub000/internal/transport/http"
	"github.com/manfromnowhere143/hostly-platform-sub000/migrations"
	"golang.org/x/time/rate"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := log.Default()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Printf("WARN: failed to load .env: %v", err)
	}

	cfgPath := os.Getenv("CONFIG_FILE")
	if cfgPath == "" {
		cfgPath = "syncd.toml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect to db: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		log.Fatalf("db ping: %v", err)
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	clk := clock.NewSystem()
	limiter := rate.NewLimiter(rate.Limit(cfg.PMS.RequestsPerSecond), cfg.PMS.Burst)
	pmsClient := pms.NewClient(cfg.PMS.BaseURL, cfg.PMS.APIKey, limiter)

	calendarRepo := postgres.NewCalendarRepository(pool)
	reservationRepo := postgres.NewReservationRepository(pool)
	propertyRepo := postgres.NewPropertyRepository(pool)
	eventRepo := postgres.NewSyncEventRepository(pool)

	listingCache := cache.NewListingCache(pmsClient, clk,
		cache.WithTTL(time.Duration(cfg.Sync.CacheTTLMinutes)*time.Minute))

	pricingSvc := app.NewPricingService(listingCache)
	calendarSvc := app.NewCalendarService(calendarRepo, eventRepo, propertyRepo, clk)
	reconcileSvc := app.NewReconcileService(propertyRepo, calendarRepo, eventRepo, pmsClient, clk,
		app.WithHorizonDays(cfg.Sync.HorizonDays))
	publishSvc := app.NewPublishService(reservationRepo, propertyRepo, calendarRepo, eventRepo, pmsClient, clk)
	orchestrator := app.NewOrchestrator(propertyRepo, reconcileSvc, logger,
		app.WithPropertyPause(time.Duration(cfg.Sync.PropertyPauseMS)*time.Millisecond))

	mux := http.NewServeMux()
	mux.HandleFunc("/health", transporthttp.HealthHandler)
	mux.Handle("/quote", transporthttp.HandleQuote(pricingSvc))
	mux.Handle("/properties/", transporthttp.HandleProperties(calendarSvc, reconcileSvc, eventRepo))
	mux.Handle("/reservations/", transporthttp.HandlePublishReservation(publishSvc))
	mux.Handle("/sync", transporthttp.HandleSyncAll(orchestrator))
	mux.Handle("/", transporthttp.NotFoundHandler())

	handler := transporthttp.RequestLogger(transporthttp.CORS(cfg.CORSOrigins, mux), logger)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	log.Printf("syncd listening on :%s", cfg.Port)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go runSyncLoop(stopCtx, orchestrator, time.Duration(cfg.Sync.IntervalMinutes)*time.Minute, logger)

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("server error: %v", err)
		}
	case <-stopCtx.Done():
		log.Printf("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("server shutdown error: %v", err)
	}
	log.Printf("server stopped")
}

// runSyncLoop reconciles all mapped properties on a fixed interval until the
// context is cancelled. One failing pass is logged, not fatal.
func runSyncLoop(ctx context.Context, orchestrator *app.Orchestrator, interval time.Duration, logger *log.Logger) {
	if interval <= 0 {
		logger.Printf("WARN: sync interval disabled, inbound sync runs only on demand")
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			report, err := orchestrator.SyncAll(ctx)
			if err != nil {
				logger.Printf("sync pass failed: %v", err)
				continue
			}
			logger.Printf("sync pass total=%d synced=%d failed=%d",
				report.TotalProperties, report.SyncedProperties, report.FailedProperties)
		}
	}
}
