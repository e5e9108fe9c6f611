package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"PulseWatch/internal/domain/repository"
	"PulseWatch/internal/handler/api"
	"PulseWatch/internal/notify"
	"PulseWatch/internal/scheduler"
	"PulseWatch/internal/service/gateio"
	"PulseWatch/internal/services/history"
	"PulseWatch/internal/services/indicators"
	"PulseWatch/internal/services/policy"
	"PulseWatch/internal/services/recorder"
	"PulseWatch/internal/services/scoring"
	"PulseWatch/internal/usecase"
	"PulseWatch/pkg/cache"
	"PulseWatch/pkg/config"
	xhttp "PulseWatch/pkg/http"
	pkgkafka "PulseWatch/pkg/kafka"
	applogger "PulseWatch/pkg/logger"
	"PulseWatch/pkg/metrics"
)

// App owns the full application lifecycle. All dependencies are built
// here, explicitly, in dependency order.
type App struct {
	cfg    *config.Config
	logger *applogger.Logger

	cacheSvc   cache.Service
	notifier   repository.Notifier
	scanner    *usecase.Scanner
	collector  *usecase.StreamCollector
	listings   *usecase.ListingWatcher
	sched      *scheduler.Scheduler
	httpServer *xhttp.Server
}

// New wires the application from config.
func New(cfg *config.Config) (*App, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	cacheSvc, err := buildCache(cfg, l)
	if err != nil {
		return nil, err
	}

	market := gateio.New(cfg.GateIO.BaseURL,
		gateio.WithTimeout(cfg.GateIO.Timeout),
		gateio.WithRateLimit(cfg.GateIO.RequestsPerSec, cfg.GateIO.Burst),
		gateio.WithCache(cacheSvc, cfg.Cache.TickerTTL, cfg.Cache.CandleTTL),
	)

	rec := recorder.New(cfg.Scanner.RecentSignalsBuffer)
	promMetrics := metrics.New()

	profile := scoring.Profile{
		RSIOversold:   cfg.Scoring.RSIOversold,
		RSIOverbought: cfg.Scoring.RSIOverbought,
		VolumeTiers:   cfg.Scoring.Volume,
		ChangeTiers:   cfg.Scoring.Change,
		BreakoutTiers: cfg.Scoring.Breakout,
		MomentumTiers: cfg.Scoring.Momentum,
	}

	notifier, err := buildNotifier(cfg, l)
	if err != nil {
		return nil, err
	}

	hist := history.NewStore(cfg.Scanner.WindowCapacity)

	scanner := usecase.NewScanner(
		market,
		hist,
		indicators.NewEngine(
			indicators.WithRSIPeriod(cfg.Indicators.RSIPeriod),
			indicators.WithMomentumPeriod(cfg.Indicators.MomentumPeriod),
			indicators.WithVolumeBaseline(cfg.Indicators.VolumeBaseline),
			indicators.WithBreakoutLookback(cfg.Indicators.BreakoutLookback),
		),
		scoring.NewScorer(profile),
		policy.New(policy.Config{
			MinConfidence:    cfg.Policy.MinConfidence,
			Cooldown:         cfg.Policy.Cooldown,
			MaxHourlySignals: cfg.Policy.MaxHourlySignals,
		}, profile),
		rec,
		notifier,
		promMetrics,
		l,
		usecase.ScannerConfig{
			QuoteSuffix:        cfg.Scanner.QuoteSuffix,
			Workers:            cfg.Scanner.Workers,
			MinVolumeUSD:       cfg.Scanner.MinVolumeUSD,
			CycleDeadline:      cfg.Scanner.CycleDeadline,
			MaxSymbolsPerCycle: cfg.Scanner.MaxSymbolsPerCycle,
			CandleInterval:     repository.NormalizeInterval(cfg.Scanner.CandleInterval),
			CandleLimit:        cfg.Scanner.CandleLimit,
			StreamSymbols:      cfg.Scanner.StreamSymbols,
		},
	)

	listings, err := usecase.NewListingWatcher(market, cfg.Scanner.KnownPairsFile, l)
	if err != nil {
		return nil, fmt.Errorf("listing watcher: %w", err)
	}

	var collector *usecase.StreamCollector
	if len(cfg.Scanner.StreamSymbols) > 0 {
		stream := gateio.NewStream(cfg.GateIO.WebSocketURL, cfg.GateIO.ReconnectDelay, cfg.GateIO.PingInterval, l)
		collector = usecase.NewStreamCollector(stream, cfg.Scanner.StreamSymbols, hist, cfg.Scanner.ScanInterval, promMetrics, l)
	}

	handler := api.NewScannerHandler(l, scanner, rec, usecase.NewVolumeFlow(market, cfg.Scanner.MinVolumeUSD), listings)
	httpServer := xhttp.NewServer(handler,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsLogging(l, time.Second),
	)

	return &App{
		cfg:        cfg,
		logger:     l,
		cacheSvc:   cacheSvc,
		notifier:   notifier,
		scanner:    scanner,
		collector:  collector,
		listings:   listings,
		sched:      scheduler.New(l),
		httpServer: httpServer,
	}, nil
}

// Run starts the scheduler and HTTP server and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.sched.AddJob(ctx, "scan", a.cfg.Scanner.ScanInterval, a.scanner.Scan); err != nil {
		return err
	}
	if err := a.sched.AddJob(ctx, "listings", a.cfg.Scanner.ListingsInterval, func(ctx context.Context) {
		if err := a.listings.Check(ctx); err != nil {
			a.logger.Warn("listings check", applogger.Error(err))
		}
	}); err != nil {
		return err
	}
	a.sched.Start()
	a.logger.Info("scheduler started",
		applogger.Duration("scan_interval", a.cfg.Scanner.ScanInterval),
		applogger.Duration("listings_interval", a.cfg.Scanner.ListingsInterval),
	)

	if a.collector != nil {
		if err := a.collector.Start(ctx); err != nil {
			a.logger.Warn("ticker stream start", applogger.Error(err))
		} else {
			a.logger.Info("ticker stream started", applogger.Strings("symbols", a.cfg.Scanner.StreamSymbols))
		}
	}

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start", applogger.Error(err))
		return err
	}
	a.logger.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown stops components in reverse start order.
func (a *App) shutdown(ctx context.Context) error {
	a.sched.Stop()

	if a.collector != nil {
		if err := a.collector.Stop(); err != nil {
			a.logger.Warn("ticker stream stop", applogger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown", applogger.Error(err))
	}

	if err := a.notifier.Close(); err != nil {
		a.logger.Warn("notifier close", applogger.Error(err))
	}
	if err := a.cacheSvc.Close(); err != nil {
		a.logger.Warn("cache close", applogger.Error(err))
	}

	a.logger.Info("shutdown complete")
	return nil
}

func buildCache(cfg *config.Config, l *applogger.Logger) (cache.Service, error) {
	if !cfg.Cache.Redis.Enabled {
		return cache.NewMemoryCache(), nil
	}

	redis, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Cache.Redis.Host),
		cache.WithRedisPort(cfg.Cache.Redis.Port),
		cache.WithRedisPassword(cfg.Cache.Redis.Password),
		cache.WithRedisDB(cfg.Cache.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	l.Info("redis cache connected", applogger.String("host", cfg.Cache.Redis.Host))
	return cache.NewLayeredCache(redis), nil
}

// buildNotifier assembles the delivery fanout. The log channel is always
// present; Telegram, email, and Kafka join when configured.
func buildNotifier(cfg *config.Config, l *applogger.Logger) (repository.Notifier, error) {
	channels := []repository.Notifier{notify.NewLogNotifier(l)}

	if cfg.Notify.Telegram.Token != "" && cfg.Notify.Telegram.ChatID != 0 {
		tg, err := notify.NewTelegram(cfg.Notify.Telegram.Token, cfg.Notify.Telegram.ChatID)
		if err != nil {
			return nil, fmt.Errorf("telegram notifier: %w", err)
		}
		channels = append(channels, tg)
		l.Info("telegram notifier enabled")
	}

	if cfg.Notify.Email.SMTPHost != "" && len(cfg.Notify.Email.To) > 0 {
		channels = append(channels, notify.NewEmail(notify.EmailConfig{
			Host:     cfg.Notify.Email.SMTPHost,
			Port:     cfg.Notify.Email.SMTPPort,
			Username: cfg.Notify.Email.Username,
			Password: cfg.Notify.Email.Password,
			From:     cfg.Notify.Email.From,
			To:       cfg.Notify.Email.To,
		}))
		l.Info("email notifier enabled")
	}

	if cfg.Notify.Kafka.Enabled && len(cfg.Notify.Kafka.Brokers) > 0 {
		producer, err := pkgkafka.NewProducer(
			pkgkafka.WithBrokers(cfg.Notify.Kafka.Brokers),
			pkgkafka.WithRequiredAcks(cfg.Notify.Kafka.RequiredAcks),
			pkgkafka.WithCompression(cfg.Notify.Kafka.Compression),
			pkgkafka.WithTimeouts(cfg.Notify.Kafka.WriteTimeout, cfg.Notify.Kafka.WriteTimeout),
			pkgkafka.WithHashByKey(true),
		)
		if err != nil {
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		channels = append(channels, notify.NewKafka(producer, cfg.Notify.Kafka.Topic))
		l.Info("kafka notifier enabled", applogger.String("topic", cfg.Notify.Kafka.Topic))
	}

	return notify.NewFanout(channels...), nil
}
