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

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"storefront-api/internal/config"
	"storefront-api/internal/db"
	"storefront-api/internal/httpserver"
	"storefront-api/internal/idempotency"
	"storefront-api/internal/logger"
	"storefront-api/internal/metrics"
	"storefront-api/internal/notify"
	"storefront-api/internal/ratelimit"
	cartrepo "storefront-api/internal/repository/cart"
	orderrepo "storefront-api/internal/repository/order"
	productrepo "storefront-api/internal/repository/product"
	tokenrepo "storefront-api/internal/repository/token"
	userrepo "storefront-api/internal/repository/user"
	cartsvc "storefront-api/internal/service/cart"
	checkoutsvc "storefront-api/internal/service/checkout"
	ordersvc "storefront-api/internal/service/order"
	productsvc "storefront-api/internal/service/product"
	usersvc "storefront-api/internal/service/user"
)

func main() {
	cfg, help, err := config.Load()
	if err != nil {
		if errors.Is(err, config.ErrHelpWanted) {
			fmt.Println(help)
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{Service: "api", Env: cfg.Env, Level: cfg.Log.Level})
	entry := log.WithField("service", "api")
	entry.Infof("startup config:\n%s", cfg)

	if err := run(cfg, entry); err != nil {
		entry.WithError(err).Fatal("api stopped")
	}
}

func run(cfg config.Config, log *logrus.Entry) error {
	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DB.DSN)
	if err != nil {
		return fmt.Errorf("connect to db: %w", err)
	}
	defer dbpool.Close()

	m := metrics.New()

	var sink notify.Sink = notify.NewLogSink(log)
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaSink := notify.NewKafkaSink(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer func() {
			if err := kafkaSink.Close(); err != nil {
				log.WithError(err).Warn("closing kafka writer")
			}
		}()
		sink = kafkaSink
		log.WithField("topic", cfg.Kafka.Topic).Info("order confirmations go to kafka")
	}
	dispatcher := notify.NewDispatcher(sink, cfg.Notify.Workers, cfg.Notify.QueueSize, log)

	var checkoutOpts []checkoutsvc.Option
	checkoutOpts = append(checkoutOpts, checkoutsvc.WithMetrics(m))
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		checkoutOpts = append(checkoutOpts, checkoutsvc.WithIdempotency(idempotency.NewGuard(rdb)))
	}

	productRepo := productrepo.NewPostgres(dbpool, log)
	cartRepo := cartrepo.NewPostgres(dbpool, log)
	orderRepo := orderrepo.NewPostgres(dbpool, log)
	userRepo := userrepo.NewPostgres(dbpool, log)
	tokenRepo := tokenrepo.NewPostgres(dbpool)

	checkoutService := checkoutsvc.New(cartRepo, productRepo, orderRepo, dispatcher, checkoutsvc.Options{
		MaxConcurrency:       cfg.Checkout.MaxConcurrency,
		MaxAttempts:          cfg.Checkout.MaxAttempts,
		RecordExhaustedLines: cfg.Checkout.RecordExhaustedLines,
	}, log, checkoutOpts...)

	limiter := ratelimit.PerHour(cfg.RateLimit.PerHour, cfg.RateLimit.Burst)
	stopSweep := make(chan struct{})
	defer close(stopSweep)
	go limiter.Run(time.Minute, stopSweep)

	srv := httpserver.New(cfg.Web.Address, httpserver.Timeouts{
		Read:  cfg.Web.ReadTimeout,
		Write: cfg.Web.WriteTimeout,
		Idle:  cfg.Web.IdleTimeout,
	}, httpserver.Deps{
		Logger:      log,
		DB:          dbpool,
		Users:       usersvc.New(userRepo, tokenRepo, log),
		Products:    productsvc.New(productRepo),
		Cart:        cartsvc.New(cartRepo, productRepo, log),
		Checkout:    checkoutService,
		Orders:      ordersvc.New(orderRepo),
		Metrics:     m,
		Limiter:     limiter,
		CorsOrigins: cfg.Cors.Origins,
	})

	serverErr := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.Web.Address).Info("starting http server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-stopCh:
		log.WithField("signal", sig.String()).Info("shutting down")
	case runErr = <-serverErr:
		log.WithError(runErr).Error("server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("graceful shutdown failed")
	}
	// Pending confirmations are flushed after the last request finished.
	if err := dispatcher.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("notification queue not drained")
	}
	log.Info("server stopped")
	return runErr
}
