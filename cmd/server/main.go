package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/omnistore/fulfillment-service/config"
	exchangeUCPkg "github.com/omnistore/fulfillment-service/internal/exchange/usecase"
	"github.com/omnistore/fulfillment-service/internal/hooks"
	"github.com/omnistore/fulfillment-service/internal/httpx"
	invRepoPkg "github.com/omnistore/fulfillment-service/internal/inventory/repository"
	invUCPkg "github.com/omnistore/fulfillment-service/internal/inventory/usecase"
	orderListenerPkg "github.com/omnistore/fulfillment-service/internal/order/listener"
	orderRepoPkg "github.com/omnistore/fulfillment-service/internal/order/repository"
	orderUCPkg "github.com/omnistore/fulfillment-service/internal/order/usecase"
	"github.com/omnistore/fulfillment-service/internal/pkg/broker"
	"github.com/omnistore/fulfillment-service/internal/pkg/cache"
	"github.com/omnistore/fulfillment-service/internal/pkg/logger"
	"github.com/omnistore/fulfillment-service/internal/pkg/postgres"
	purchaseRepoPkg "github.com/omnistore/fulfillment-service/internal/purchase/repository"
	purchaseUCPkg "github.com/omnistore/fulfillment-service/internal/purchase/usecase"
	"go.uber.org/zap"
)

const serviceName = "fulfillment-service"

func main() {
	_ = godotenv.Load()
	cfg := config.LoadEnv()

	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             "info",
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}
	if cfg.Server.AppEnv == "dev" || cfg.Server.AppEnv == "development" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = cfg.Logger.Encoding
		logConfig.Level = cfg.Logger.Level
	}
	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	db, err := postgres.NewPostgres(&postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		appLogger.Fatal("could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("connected to PostgreSQL", zap.String("db_name", cfg.Postgres.DBName))

	redisClient, err := cache.NewRedisClient(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		appLogger.Fatal("could not connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	appLogger.Info("connected to Redis", zap.String("addr", cfg.Redis.Addr))

	transitionProducer := broker.NewProducer(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.TransitionTopic,
	})
	defer transitionProducer.Close()

	notificationProducer := broker.NewProducer(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.NotificationTopic,
	})
	defer notificationProducer.Close()

	posConsumer := broker.NewConsumer(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.PosOrdersTopic,
		GroupID: cfg.Kafka.PosConsumerGroupID,
	})
	defer posConsumer.Close()
	appLogger.Info("connected to Kafka", zap.Strings("brokers", cfg.Kafka.Brokers))

	orderRepo := orderRepoPkg.NewPGRepository(db)
	invRepo := invRepoPkg.NewPGRepository(db)
	purchaseRepo := purchaseRepoPkg.NewPGRepository(db)

	stockLedger := invUCPkg.NewStockLedger(invRepo, orderRepo, redisClient, appLogger)
	dispatcher := hooks.NewDispatcher(
		hooks.NewKafkaNotifier(notificationProducer),
		hooks.NewTicketClient(cfg.Ticketing.BaseURL, cfg.Ticketing.Token),
		redisClient,
		appLogger,
	)
	exchangeUC := exchangeUCPkg.NewExchangeLinker(orderRepo, appLogger)
	orderUC := orderUCPkg.NewOrderUseCase(orderRepo, stockLedger, dispatcher, exchangeUC, transitionProducer, redisClient, appLogger, serviceName)
	purchaseUC := purchaseUCPkg.NewPurchaseUseCase(purchaseRepo, stockLedger, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	posListener := orderListenerPkg.NewPosListener(posConsumer, orderUC, redisClient, appLogger)
	go posListener.Start(ctx)

	router := httpx.NewRouter()
	handler := &httpx.Handler{
		Orders:    orderUC,
		Stock:     stockLedger,
		Purchases: purchaseUC,
		Exchanges: exchangeUC,
		Logger:    appLogger,
	}
	handler.Register(router)

	srv := &http.Server{
		Addr:         cfg.Server.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		appLogger.Info("starting HTTP server", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("shutdown error", zap.Error(err))
	}
	appLogger.Info("server stopped")
}
