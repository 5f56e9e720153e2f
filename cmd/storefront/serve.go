package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aims/storefront/internal/backend"
	"github.com/aims/storefront/internal/cache"
	"github.com/aims/storefront/internal/cart"
	"github.com/aims/storefront/internal/catalog"
	"github.com/aims/storefront/internal/checkout"
	"github.com/aims/storefront/internal/client"
	"github.com/aims/storefront/internal/config"
	"github.com/aims/storefront/internal/delivery"
	h "github.com/aims/storefront/internal/http"
	"github.com/aims/storefront/internal/notify"
	"github.com/aims/storefront/internal/order"
	"github.com/aims/storefront/internal/payment"
	"github.com/aims/storefront/internal/publisher"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// collaborators is what the checkout needs from the backend.
type collaborators interface {
	delivery.Quoter
	checkout.AvailabilityChecker
	payment.Gateway
	order.DeliverySubmitter
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the storefront HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "http-port", Usage: "overrides STOREFRONT_HTTP_PORT"},
			&cli.StringFlag{Name: "backend-url", Usage: "overrides STOREFRONT_BACKEND_URL"},
			&cli.StringFlag{Name: "log-level", Usage: "overrides STOREFRONT_LOG_LEVEL"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if v := c.String("http-port"); v != "" {
				cfg.HTTPPort = v
			}
			if v := c.String("backend-url"); v != "" {
				cfg.BackendURL = v
			}
			if v := c.String("log-level"); v != "" {
				cfg.LogLevel = v
			}
			cfg.SetupLogging()
			return serve(cfg)
		},
	}
}

func serve(cfg *config.Config) error {
	products := catalog.New(catalog.Seed()...)

	latency := backend.Latency{}
	if cfg.SimulateLatency {
		latency = backend.DefaultLatency()
	}
	sim := backend.NewSimulator(products, backend.RandomOutcome{}, latency)

	var remote collaborators = sim
	if cfg.BackendURL != "" {
		remote = client.NewBackend(cfg.BackendURL, client.Options{
			Timeout:          cfg.BackendTimeout,
			FailureThreshold: cfg.BackendFailureThreshold,
			OpenTimeout:      cfg.BackendOpenTimeout,
		})
		log.WithFields(log.Fields{"url": cfg.BackendURL}).Info("using remote backend")
	}

	var feeCache cache.FeeCache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Warnf("redis unavailable, fee quotes stay uncached: %v", err)
		} else {
			feeCache = cache.NewRedisFeeCache(rdb, cfg.FeeCacheTTL)
		}
	}
	fees := delivery.NewResolver(remote, feeCache, cfg.FeeTimeout)

	var writer publisher.MessageWriter = publisher.LogWriter{}
	if len(cfg.KafkaBrokers) > 0 {
		kw := publisher.NewKafkaWriter(cfg.KafkaBrokers...)
		defer kw.Close()
		writer = kw
	}
	outbox := publisher.NewOutbox(writer, cfg.OutboxTick)

	sink := notify.NewSink(cfg.NotificationDuration, cfg.NotificationStagger)
	defer sink.Close()

	session := checkout.NewSession(checkout.Deps{
		Cart:         cart.NewStore(sink),
		Fees:         fees,
		Delivery:     remote,
		Gateway:      remote,
		Availability: remote,
		Products:     products,
		Events:       outbox,
		Notifier:     sink,
	}, checkout.Config{
		Payment:             cfg.Payment(),
		AvailabilityTimeout: cfg.AvailabilityTimeout,
	})

	router := h.NewRouter(h.Deps{
		Catalog:            products,
		Session:            session,
		Fees:               fees,
		Notifications:      sink,
		Simulator:          sim,
		RequestTimeout:     cfg.RequestTimeout,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
		AllowedOrigins:     cfg.AllowedOrigins,
		RateLimit:          cfg.RateLimit,
		RateBurst:          cfg.RateBurst,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.GRPCPort))
	if err != nil {
		return errors.Wrap(err, "failed to listen on grpc port")
	}
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	outboxDone := make(chan struct{})
	go func() {
		outbox.Run(ctx)
		close(outboxDone)
	}()

	go func() {
		log.Printf("gRPC health listening on port %s", cfg.GRPCPort)
		if err := grpcServer.Serve(lis); err != nil {
			log.Errorf("grpc server error: %v", err)
		}
	}()

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("storefront starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		log.Infof("got %s, shutting down...", sig)
	case err := <-serverErr:
		log.Errorf("server error: %v", err)
	}

	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("server forced to shutdown: %v", err)
	}
	session.Close()
	cancel()
	<-outboxDone
	grpcServer.GracefulStop()

	log.Println("storefront stopped")
	return nil
}
