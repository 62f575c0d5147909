package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/boatbooking/config"
	"github.com/Domenick1991/boatbooking/internal/bootstrap"
	"github.com/Domenick1991/boatbooking/internal/cache"
	"github.com/Domenick1991/boatbooking/internal/kafka"
	"github.com/Domenick1991/boatbooking/internal/logger"
	"github.com/Domenick1991/boatbooking/internal/migrations"
	"github.com/Domenick1991/boatbooking/internal/rabbitmq"
	"github.com/Domenick1991/boatbooking/internal/repository"
	"github.com/Domenick1991/boatbooking/internal/repository/memory"
	"github.com/Domenick1991/boatbooking/internal/service/booking"
	"github.com/Domenick1991/boatbooking/internal/service/trips"
	"github.com/jackc/pgx/v5/pgxpool"
)

type storage struct {
	boats    repository.BoatRepository
	trips    repository.TripRepository
	cabins   repository.CabinRepository
	bookings repository.BookingRepository
	close    func()
}

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logg := logger.New(cfg.Log, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, logg)
	stop()
	if err != nil {
		logg.Error("app stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// run wires the app and serves until ctx is done. Every opened resource is
// closed before it returns.
func run(ctx context.Context, cfg *config.Config, logg *slog.Logger) error {
	store, err := openStorage(ctx, cfg, logg)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.close()

	producer, closeProducer, err := openProducer(ctx, cfg, logg)
	if err != nil {
		return fmt.Errorf("open broker: %w", err)
	}
	defer closeProducer()

	tripOpts := []trips.TripServiceOption{trips.WithLogger(logg)}
	bookingOpts := []booking.BookingServiceOption{
		booking.WithLogger(logg),
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	}

	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisCache(cfg.Redis, cfg.Booking.FleetCacheTTLDuration())
		defer redisCache.Close()
		if err := redisCache.Ping(ctx); err != nil {
			logg.Warn("redis unavailable, running without cache and trip lock", slog.String("error", err.Error()))
		} else {
			tripOpts = append(tripOpts, trips.WithCache(redisCache))
			bookingOpts = append(bookingOpts,
				booking.WithCache(redisCache),
				booking.WithLocker(redisCache, cfg.Booking.TripLockTTLDuration(), cfg.Booking.TripLockWaitDuration()),
			)
		}
	}

	tripService := trips.NewTripService(store.boats, store.trips, tripOpts...)
	bookingService := booking.NewBookingService(
		store.bookings,
		store.trips,
		store.cabins,
		producer,
		cfg.Kafka.BookingEventsTopic,
		bookingOpts...,
	)

	if err := bootstrap.Run(ctx, cfg, logg, tripService, bookingService); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

func openStorage(ctx context.Context, cfg *config.Config, logg *slog.Logger) (*storage, error) {
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		store := memory.NewStore()
		if cfg.Storage.SeedFile != "" {
			seed, err := memory.LoadSeed(cfg.Storage.SeedFile)
			if err != nil {
				return nil, err
			}
			if err := store.Apply(seed); err != nil {
				return nil, fmt.Errorf("apply seed: %w", err)
			}
		}
		logg.Info("using in-memory storage", slog.String("seed", cfg.Storage.SeedFile))
		return &storage{
			boats:    store.Boats(),
			trips:    store.Trips(),
			cabins:   store.Cabins(),
			bookings: store.Bookings(),
			close:    func() {},
		}, nil
	default:
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if cfg.Database.AutoMigrate {
			if err := migrations.Up(ctx, pool); err != nil {
				pool.Close()
				return nil, err
			}
		}
		return &storage{
			boats:    repository.NewBoatRepository(pool),
			trips:    repository.NewTripRepository(pool),
			cabins:   repository.NewCabinRepository(pool),
			bookings: repository.NewBookingRepository(pool),
			close:    pool.Close,
		}, nil
	}
}

func openProducer(ctx context.Context, cfg *config.Config, logg *slog.Logger) (booking.Producer, func(), error) {
	switch cfg.Messaging.Broker {
	case config.BrokerKafka:
		producer := kafka.NewProducer(cfg.Kafka.Brokers, logg)
		if err := producer.CheckConnection(ctx); err != nil {
			logg.Warn("kafka unreachable at startup", slog.String("error", err.Error()))
		}
		return producer, func() { _ = producer.Close() }, nil
	case config.BrokerRabbitMQ:
		client, err := rabbitmq.Dial(cfg.RabbitMQ.URL, logg)
		if err != nil {
			return nil, nil, err
		}
		return client, func() { _ = client.Close() }, nil
	default:
		logg.Info("event publishing disabled")
		return nil, func() {}, nil
	}
}
