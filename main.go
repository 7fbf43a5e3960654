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

	"go.uber.org/zap"

	"parking_management/internal/api"
	"parking_management/internal/api/handler"
	"parking_management/internal/config"
	"parking_management/internal/repository"
	"parking_management/internal/repository/memory"
	"parking_management/internal/repository/postgresql"
	"parking_management/internal/service"
)

type repositories struct {
	user        repository.UserRepository
	account     repository.AccountRepository
	vehicle     repository.VehicleRepository
	tariff      repository.TariffRepository
	lot         repository.ParkingLotRepository
	spot        repository.SpotRepository
	reservation repository.ReservationRepository
	session     repository.ParkingSessionRepository
	txManager   repository.TxManager
}

func main() {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("cannot initialize logger: %v", err)
	}
	defer logger.Sync()

	var repos repositories
	switch cfg.Store {
	case "memory":
		store := memory.NewStore()
		repos = repositories{
			user:        memory.NewUserRepository(store),
			account:     memory.NewAccountRepository(store),
			vehicle:     memory.NewVehicleRepository(store),
			tariff:      memory.NewTariffRepository(store),
			lot:         memory.NewParkingLotRepository(store),
			spot:        memory.NewSpotRepository(store),
			reservation: memory.NewReservationRepository(store),
			session:     memory.NewParkingSessionRepository(store),
			txManager:   memory.NewTxManager(store),
		}
		logger.Info("using in-memory store")
	default:
		db, err := postgresql.NewDB(cfg)
		if err != nil {
			logger.Fatal("cannot connect to database", zap.Error(err))
		}
		defer db.Close()
		repos = repositories{
			user:        postgresql.NewPgUserRepository(db),
			account:     postgresql.NewPgAccountRepository(db),
			vehicle:     postgresql.NewPgVehicleRepository(db),
			tariff:      postgresql.NewPgTariffRepository(db),
			lot:         postgresql.NewPgParkingLotRepository(db),
			spot:        postgresql.NewPgSpotRepository(db),
			reservation: postgresql.NewPgReservationRepository(db),
			session:     postgresql.NewPgParkingSessionRepository(db),
			txManager:   postgresql.NewTxManager(db),
		}
		logger.Info("connected to database",
			zap.String("host", cfg.DBHost),
			zap.String("database", cfg.DBName))
	}

	wsManager := handler.NewWebSocketManager(logger)
	go wsManager.Start()

	svc := api.Services{
		Auth: service.NewAuthService(repos.account, repos.user, repos.txManager,
			cfg.JWTSecret, cfg.JWTExpiration, logger),
		User:    service.NewUserService(repos.user, repos.vehicle, logger),
		Vehicle: service.NewVehicleService(repos.vehicle, repos.user, repos.reservation, repos.session, logger),
		Tariff:  service.NewTariffService(repos.tariff, repos.lot, logger),
		ParkingLot: service.NewParkingLotService(repos.lot, repos.spot, repos.tariff,
			repos.reservation, repos.session, repos.txManager, logger),
		Spot: service.NewSpotService(repos.spot, repos.lot, repos.reservation,
			repos.session, wsManager, logger),
		Reservation: service.NewReservationService(repos.reservation, repos.session,
			repos.spot, repos.vehicle, repos.user, repos.txManager, logger),
		Session: service.NewParkingSessionService(repos.session, repos.reservation,
			repos.spot, repos.vehicle, repos.user, repos.lot, repos.tariff,
			repos.txManager, wsManager, logger),
	}

	sweepCtx, cancelSweep := context.WithCancel(context.Background())
	go startReservationSweepJob(sweepCtx, svc.Reservation, cfg.SweepInterval, logger)

	router := api.SetupRouter(svc, wsManager, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen and serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	cancelSweep()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("forced shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

// startReservationSweepJob expires outdated reservations on a fixed interval
// so they never outlive their window by more than one tick, even without
// request traffic.
func startReservationSweepJob(ctx context.Context, rs *service.ReservationService, interval time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			opCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			if _, err := rs.ExpireOutdated(opCtx); err != nil {
				logger.Error("reservation sweep failed", zap.Error(err))
			}
			cancel()
		}
	}
}
