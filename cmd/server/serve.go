package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"leadgate/internal/lead/handler"
	"leadgate/internal/lead/metrics"
	"leadgate/internal/lead/notify"
	kafkasink "leadgate/internal/lead/notify/kafka"
	"leadgate/internal/lead/notify/telegram"
	"leadgate/internal/lead/service"
	"leadgate/internal/lead/store/memory"
	mongostore "leadgate/internal/lead/store/mongo"
	postgresstore "leadgate/internal/lead/store/postgres"
	redisstore "leadgate/internal/lead/store/redis"
	"leadgate/internal/platform/config"
	"leadgate/internal/platform/database"
	"leadgate/internal/platform/httpserver"
	"leadgate/internal/platform/kafka"
	"leadgate/internal/platform/logger"
	"leadgate/internal/platform/redis"
	httptransport "leadgate/internal/transport/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP endpoint",
	RunE:  runServe,
}

// backing is a store plus whatever must be closed when the server stops.
type backing struct {
	store   service.Store
	closers []func(context.Context) error
}

// app is the assembled request pipeline plus everything shutdown must release.
type app struct {
	handler    http.Handler
	dispatcher *notify.Dispatcher
	sinks      int
	closers    []func(context.Context) error
}

type storeOpener func(ctx context.Context, cfg *config.Config, log *slog.Logger) (*backing, error)

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(logger.Options{Level: cfg.LogLevel, JSON: cfg.IsProduction()})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := assemble(ctx, cfg, log, openStore, prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}
	srv := httpserver.New(cfg.HTTPAddr, a.handler)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting leadgate", "addr", cfg.HTTPAddr, "store", cfg.StoreDriver, "sinks", a.sinks)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		log.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("http shutdown", "error", err)
		}
		if err := a.dispatcher.Close(shutdownCtx); err != nil {
			log.Warn("notifications still in flight at shutdown", "error", err)
		}
		closeAll(shutdownCtx, log, a.closers)
		return nil
	})
	return g.Wait()
}

// assemble wires store, sinks, dispatcher, service and router. On error every
// client opened so far is closed before returning.
func assemble(ctx context.Context, cfg *config.Config, log *slog.Logger, open storeOpener, reg prometheus.Registerer) (_ *app, err error) {
	b, err := open(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	closers := b.closers
	defer func() {
		if err != nil {
			closeAll(context.Background(), log, closers)
		}
	}()

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New(reg)
	}

	sinks, sinkClosers, err := buildSinks(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	closers = append(closers, sinkClosers...)

	fanout := notify.NewMulti(log, m, sinks...)
	dispatcher := notify.NewDispatcher(
		fanout,
		notify.WithLogger(log),
		notify.WithMetrics(m),
		notify.WithTimeout(cfg.NotifyTimeout),
	)

	leads, err := service.New(b.store,
		service.WithLogger(log),
		service.WithDispatcher(dispatcher),
		service.WithMaxSubmissionsPerIP(cfg.RateLimitMaxPerIP),
		service.WithTracer(otel.Tracer("leadgate/lead")),
	)
	if err != nil {
		return nil, err
	}

	routerCfg := httptransport.Config{
		Logger:          log,
		TrustedIPHeader: cfg.TrustedIPHeader,
		Health:          leads.Health,
		Modules:         []httptransport.RouteRegistrar{handler.New(leads, log, m)},
	}
	if cfg.MetricsEnabled {
		routerCfg.MetricsHandler = httptransport.DefaultMetricsHandler()
	}

	return &app{
		handler:    httptransport.NewRouter(routerCfg),
		dispatcher: dispatcher,
		sinks:      fanout.Len(),
		closers:    closers,
	}, nil
}

func openStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (*backing, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := database.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		s := postgresstore.New(db, postgresstore.WithTable(cfg.DatabaseTable))
		return &backing{
			store:   s,
			closers: []func(context.Context) error{func(context.Context) error { return db.Close() }},
		}, nil

	case config.DriverRedis:
		client, err := redis.New(ctx, redis.Config{URL: cfg.RedisURL})
		if err != nil {
			return nil, err
		}
		s := redisstore.New(client.Client)
		return &backing{
			store:   s,
			closers: []func(context.Context) error{func(context.Context) error { return client.Close() }},
		}, nil

	case config.DriverMongo:
		client, err := mongostore.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		s := mongostore.New(client, cfg.MongoDatabase, cfg.MongoCollection)
		if err := s.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		return &backing{
			store:   s,
			closers: []func(context.Context) error{client.Disconnect},
		}, nil

	default:
		log.Warn("using in-memory store; leads are lost on restart")
		s := memory.New()
		return &backing{store: s}, nil
	}
}

func buildSinks(ctx context.Context, cfg *config.Config, log *slog.Logger) ([]notify.Sink, []func(context.Context) error, error) {
	var (
		sinks   []notify.Sink
		closers []func(context.Context) error
	)

	if !cfg.TelegramEnabled() {
		log.Warn("telegram credentials missing; notifications will be skipped")
	}
	sinks = append(sinks, telegram.New(telegram.Config{
		BotToken: cfg.TelegramBotToken,
		ChatID:   cfg.TelegramChatID,
		APIBase:  cfg.TelegramAPIBase,
		Title:    cfg.NotifyTitle,
		Timeout:  cfg.NotifyTimeout,
	}, nil))

	if brokers := cfg.KafkaBrokersList(); len(brokers) > 0 {
		client, err := kafka.NewProducer(kafka.ProducerConfig{
			Brokers:     brokers,
			Topic:       cfg.KafkaTopic,
			ClientID:    "leadgate",
			DialTimeout: 5 * time.Second,
		})
		if err != nil {
			return nil, nil, err
		}
		if err := kafka.EnsureTopic(ctx, client, cfg.KafkaTopic, 1, 1); err != nil {
			client.Close()
			return nil, nil, err
		}
		sinks = append(sinks, kafkasink.New(client, cfg.KafkaTopic))
		closers = append(closers, func(context.Context) error {
			client.Close()
			return nil
		})
	}
	return sinks, closers, nil
}

func closeAll(ctx context.Context, log *slog.Logger, closers []func(context.Context) error) {
	for _, c := range closers {
		if err := c(ctx); err != nil {
			log.Warn("close", "error", err)
		}
	}
}
