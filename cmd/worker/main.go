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
	"github.com/Domenick1991/boatbooking/internal/email"
	"github.com/Domenick1991/boatbooking/internal/kafka"
	"github.com/Domenick1991/boatbooking/internal/logger"
	"github.com/Domenick1991/boatbooking/internal/rabbitmq"
)

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
		logg.Error("worker stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logg.Info("worker stopped")
}

// run consumes notifications until ctx is done. The broker connection is
// closed before it returns.
func run(ctx context.Context, cfg *config.Config, logg *slog.Logger) error {
	topic := cfg.Kafka.NotificationsTopic
	if topic == "" {
		topic = cfg.Kafka.BookingEventsTopic
	}
	sender := email.NewSender(logg)

	logg.Info("worker started", slog.String("broker", cfg.Messaging.Broker), slog.String("topic", topic))

	switch cfg.Messaging.Broker {
	case config.BrokerKafka:
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, topic)
		defer consumer.Close()
		return consumer.Consume(ctx, sender.Handle)
	case config.BrokerRabbitMQ:
		client, err := rabbitmq.Dial(cfg.RabbitMQ.URL, logg)
		if err != nil {
			return fmt.Errorf("open broker: %w", err)
		}
		defer client.Close()
		return client.Consume(ctx, topic, sender.Handle)
	default:
		logg.Info("messaging disabled, nothing to consume")
		return nil
	}
}
