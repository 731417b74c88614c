// main.go
package main

import (
	"context"
	"log"

	"cinema-reservation/cmd"
	"cinema-reservation/internal/data/repository"
	"cinema-reservation/internal/usecase"
	"cinema-reservation/internal/wire"
	"cinema-reservation/internal/worker"
	"cinema-reservation/pkg/apiclient"
	"cinema-reservation/pkg/metrics"
	"cinema-reservation/pkg/realtime"
	"cinema-reservation/pkg/utils"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
		zap.String("booking_api", config.Backend.BaseURL),
		zap.String("realtime", config.Realtime.Driver),
	)

	// Booking backend client and the durable unload sender sharing its transport
	client := apiclient.New(apiclient.Config{
		BaseURL:            config.Backend.BaseURL,
		Timeout:            config.Backend.Timeout,
		BreakerMaxFailures: config.Backend.BreakerMaxFailures,
		BreakerOpenTimeout: config.Backend.BreakerOpenTimeout,
	}, logger)
	beacon := apiclient.NewBeaconSender(client.HTTPClient(), config.Backend.BeaconQueueSize, config.Backend.BeaconTimeout, logger)

	subscriber := newSubscriber(config.Realtime, logger)

	// Initialize all repositories
	repos := repository.NewRepository(client, logger)

	clock := clockwork.NewRealClock()
	infra := usecase.Infra{
		Subscriber: subscriber,
		Beacon:     beacon,
		Clock:      clock,
		Metrics:    metrics.New(),
	}

	// Wire all dependencies
	app := wire.Wiring(repos, infra, config, logger)

	sweeper := worker.NewIdleSessionSweeper(app.Service.Session, clock,
		config.Session.SweepInterval, config.Session.IdleTTL, logger)
	go sweeper.Start(context.Background())

	err = cmd.APIServer(app.Router, config.App.Port, logger, func(ctx context.Context) {
		sweeper.Stop()
		// sessions first, their pending draft cancels still need the backend
		app.Service.Session.Shutdown()
		beacon.Close()
		if err := subscriber.Close(); err != nil {
			logger.Warn("Failed to close realtime subscriber", zap.Error(err))
		}
	})
	if err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

func newSubscriber(cfg utils.RealtimeConfig, logger *zap.Logger) realtime.Subscriber {
	switch cfg.Driver {
	case "redis":
		rdb := realtime.NewRedisClient(realtime.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.Warn("Redis not reachable, live seat updates may be delayed", zap.Error(err))
		} else {
			logger.Info("Redis connected successfully")
		}
		return realtime.NewRedisSubscriber(rdb, logger)

	case "amqp":
		sub, err := realtime.DialAMQP(cfg.AMQPURL, cfg.AMQPExchange, logger)
		if err != nil {
			logger.Warn("AMQP broker not reachable, live seat updates disabled", zap.Error(err))
			return realtime.NopSubscriber{}
		}
		logger.Info("AMQP connected successfully", zap.String("exchange", cfg.AMQPExchange))
		return sub

	default:
		logger.Warn("Live seat updates disabled", zap.String("driver", cfg.Driver))
		return realtime.NopSubscriber{}
	}
}
