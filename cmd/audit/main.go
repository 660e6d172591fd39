package main

import (
	"context"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload" // Autoload .env file.
	"go.uber.org/zap"

	"github.com/vietanh2810/eventbooking-api/internal/config"
	"github.com/vietanh2810/eventbooking-api/internal/logger"
	"github.com/vietanh2810/eventbooking-api/internal/queue"
)

// audit logs every booking.confirmed message.
func main() {
	conf, err := config.Load("./cmd/app/config.yml")
	if err != nil {
		panic(err)
	}

	if err = logger.Init(conf.API.Environment); err != nil {
		panic(err)
	}
	defer func() { _ = zap.L().Sync() }()

	if conf.RabbitMQ.URL == "" {
		zap.L().Fatal("rabbitmq.url is not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zap.L().Info("consuming", zap.String("queue", conf.RabbitMQ.Queue))
	c := queue.NewConsumer(conf.RabbitMQ.URL, conf.RabbitMQ.Queue, queue.LogHandler)
	if err = c.Run(ctx); err != nil && ctx.Err() == nil {
		zap.L().Fatal("consumer stopped", zap.Error(err))
	}
}
