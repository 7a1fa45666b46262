package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/l0p7/innkeeper/internal/config"
	"github.com/l0p7/innkeeper/internal/expr"
	"github.com/l0p7/innkeeper/internal/gateway"
	"github.com/l0p7/innkeeper/internal/gateway/cache"
	"github.com/l0p7/innkeeper/internal/logging"
	"github.com/l0p7/innkeeper/internal/metrics"
	"github.com/l0p7/innkeeper/internal/records"
	"github.com/l0p7/innkeeper/internal/server"
	"github.com/l0p7/innkeeper/internal/store"
	"github.com/l0p7/innkeeper/internal/store/sqlite"
	"github.com/l0p7/innkeeper/internal/templates"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	var (
		configFile = flag.String("config", "", "path to server configuration file")
		envPrefix  = flag.String("env-prefix", "INNKEEPER", "environment variable prefix")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loader := config.NewLoader(*envPrefix, *configFile)
	cfg, err := loader.Load(ctx)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Server.Logging)
	if err != nil {
		log.Fatalf("failed to configure logger: %v", err)
	}

	metricsRecorder := metrics.NewRecorder(prometheus.NewRegistry())

	recordStore, err := sqlite.Open(ctx, cfg.Server.Store.Path)
	if err != nil {
		logger.Error("record store unavailable", slog.String("path", cfg.Server.Store.Path), slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := recordStore.Close(); err != nil {
			logger.Error("record store close failed", slog.Any("error", err))
		}
	}()

	policy, err := gatewayPolicy(cfg.Server.Gateway)
	if err != nil {
		logger.Error("invalid gateway settings", slog.Any("error", err))
		os.Exit(1)
	}
	isRetryable, err := expr.NewRetryClassifier(cfg.Server.Gateway.RetryWhen, store.Describe)
	if err != nil {
		logger.Error("invalid retry expression", slog.String("retryWhen", cfg.Server.Gateway.RetryWhen), slog.Any("error", err))
		os.Exit(1)
	}

	gatewayLogger := logger.With(slog.String("agent", "gateway"))
	gw := gateway.New(gateway.Options{
		Policy:       policy,
		Cache:        buildCacheStore(logger.With(slog.String("agent", "cache_factory")), cfg.Server.Cache, cacheTTL(policy)),
		IsRetryable:  isRetryable,
		SingleFlight: cfg.Server.Gateway.SingleFlight,
		Metrics:      metricsRecorder,
		OnRetry: func(ev gateway.RetryEvent) {
			gatewayLogger.Warn("record store call failed, retrying",
				slog.String("operation", string(ev.Operation)),
				slog.String("key", ev.Key),
				slog.Int("attempt", ev.Attempt),
				slog.Duration("delay", ev.Delay),
				slog.Any("error", ev.Err),
			)
		},
	})
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := gw.Close(shutdownCtx); err != nil {
			logger.Error("cache shutdown failed", slog.Any("error", err))
		}
	}()

	renderer := newTemplateRenderer(logger, cfg.Server.Templates)
	invoiceCfg, quotationCfg := cfg.Server.Invoices, cfg.Server.Quotations
	numberTemplate, err := compileNumberTemplate(renderer, "invoice-number", invoiceCfg.NumberTemplate, invoiceCfg.NumberTemplateFile)
	if err != nil {
		logger.Error("invoice number template invalid", slog.Any("error", err))
		os.Exit(1)
	}
	quotationTemplate, err := compileNumberTemplate(renderer, "quotation-number", quotationCfg.NumberTemplate, quotationCfg.NumberTemplateFile)
	if err != nil {
		logger.Error("quotation number template invalid", slog.Any("error", err))
		os.Exit(1)
	}

	svc, err := records.NewService(logger, records.Options{
		Store:              recordStore,
		Gateway:            gw,
		NumberTemplate:     numberTemplate,
		QuotationTemplate:  quotationTemplate,
		DueDays:            invoiceCfg.DueDays,
		QuotationValidDays: quotationCfg.ValidDays,
	})
	if err != nil {
		logger.Error("unable to construct records service", slog.Any("error", err))
		os.Exit(1)
	}
	if settings, err := svc.InitializeSettings(ctx); err != nil {
		logger.Warn("hotel settings not initialized", slog.Any("error", err))
	} else {
		logger.Info("hotel settings loaded",
			slog.String("hotel", settings.HotelName),
			slog.String("tax_type", string(settings.TaxType)),
			slog.Float64("tax_rate", settings.TaxRate),
		)
	}

	if watcher, err := loader.Watch(ctx, func(next config.Config) {
		applyGatewayTuning(logger, gw, next.Server.Gateway)
	}, func(err error) {
		logger.Error("config watcher error", slog.Any("error", err))
	}); err == nil {
		defer watcher.Stop()
	} else if len(loader.Files()) > 0 {
		logger.Warn("config watcher setup failed", slog.Any("error", err))
	}

	handler, err := server.NewHandler(logger, server.HandlerOptions{
		Records:           svc,
		Metrics:           metricsRecorder,
		CorrelationHeader: cfg.Server.Logging.CorrelationHeader,
	})
	if err != nil {
		logger.Error("unable to construct handler", slog.Any("error", err))
		os.Exit(1)
	}

	srv, err := server.New(cfg.Server.Listen, logger, handler)
	if err != nil {
		logger.Error("unable to construct server", slog.Any("error", err))
		os.Exit(1)
	}

	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server terminated unexpectedly", slog.Any("error", err))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger.Info("server shutdown complete")
}

func gatewayPolicy(cfg config.GatewayConfig) (gateway.Policy, error) {
	baseDelay, err := cfg.BaseDelayDuration()
	if err != nil {
		return gateway.Policy{}, err
	}
	ttl, err := cfg.TTLDuration()
	if err != nil {
		return gateway.Policy{}, err
	}
	return gateway.Policy{MaxRetries: cfg.MaxRetries, BaseDelay: baseDelay, TTL: ttl}, nil
}

// cacheTTL is the freshness window the gateway will enforce, used as the
// redis expiry.
func cacheTTL(policy gateway.Policy) time.Duration {
	if policy.TTL <= 0 {
		return gateway.DefaultTTL
	}
	return policy.TTL
}

// applyGatewayTuning swaps retry bounds and TTL on a live gateway. The retry
// expression, single-flight and cache backend only change on restart.
func applyGatewayTuning(logger *slog.Logger, gw *gateway.Gateway, cfg config.GatewayConfig) {
	policy, err := gatewayPolicy(cfg)
	if err != nil {
		logger.Error("ignoring gateway settings from reloaded config", slog.Any("error", err))
		return
	}
	gw.SetPolicy(policy)
	applied := gw.Policy()
	logger.Info("gateway policy updated",
		slog.Int("maxRetries", applied.MaxRetries),
		slog.Duration("baseDelay", applied.BaseDelay),
		slog.Duration("ttl", applied.TTL),
	)
}

// newTemplateRenderer sandboxes template files inside the templates folder.
// Without a usable folder only inline templates compile.
func newTemplateRenderer(logger *slog.Logger, tcfg config.TemplatesConfig) *templates.Renderer {
	var sandbox *templates.Sandbox
	if folder := strings.TrimSpace(tcfg.TemplatesFolder); folder != "" {
		sb, err := templates.NewSandbox(folder)
		if err != nil {
			logger.Warn("template sandbox setup failed", slog.String("templates_folder", folder), slog.Any("error", err))
		} else {
			sandbox = sb
		}
	}
	return templates.NewRenderer(sandbox)
}

// compileNumberTemplate compiles a document number template. A template file
// wins over the inline source.
func compileNumberTemplate(renderer *templates.Renderer, name, inline, file string) (*templates.Template, error) {
	if path := strings.TrimSpace(file); path != "" {
		return renderer.CompileFile(path)
	}
	return renderer.CompileInline(name, inline)
}

func buildCacheStore(logger *slog.Logger, cfg config.CacheConfig, ttl time.Duration) cache.Store {
	backend := strings.TrimSpace(strings.ToLower(cfg.Backend))
	switch backend {
	case "", "memory":
		if logger != nil {
			logger.Info("using memory read cache", slog.Duration("ttl", ttl))
		}
		return cache.NewMemory()
	case "redis":
		redisCache, err := cache.NewRedis(cache.RedisConfig{
			Address:  cfg.Redis.Address,
			Username: cfg.Redis.Username,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TLS: cache.RedisTLSConfig{
				Enabled: cfg.Redis.TLS.Enabled,
				CAFile:  cfg.Redis.TLS.CAFile,
			},
			Namespace: cfg.Namespace,
			TTL:       ttl,
		})
		if err != nil {
			if logger != nil {
				logger.Error("redis cache initialization failed", slog.Any("error", err))
				logger.Info("falling back to memory cache")
			}
			return cache.NewMemory()
		}
		if logger != nil {
			logger.Info("using redis read cache", slog.String("address", cfg.Redis.Address), slog.String("namespace", cfg.Namespace))
		}
		return redisCache
	default:
		if logger != nil {
			logger.Warn("unsupported cache backend, defaulting to memory", slog.String("backend", cfg.Backend))
		}
		return cache.NewMemory()
	}
}
