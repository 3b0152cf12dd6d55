// goload-replbot runs a goLoad engine behind a line-oriented stdin
// transport. Each input line is "<identity> <command> [args...]"; the
// reply prints to stdout. Notification events stream to stderr as JSON
// lines.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	goLoad "github.com/MrEthical07/goLoad"
	"github.com/MrEthical07/goLoad/catalog"
	"github.com/MrEthical07/goLoad/command"
	"github.com/MrEthical07/goLoad/dispatch"
	"github.com/MrEthical07/goLoad/metrics/export/prometheus"
	"github.com/MrEthical07/goLoad/principal"
	"github.com/caarlos0/env/v11"
	"github.com/redis/go-redis/v9"
)

type config struct {
	AdminIdentity   string        `env:"GOLOAD_ADMIN" envDefault:"admin"`
	Endpoints       []string      `env:"GOLOAD_ENDPOINTS" envSeparator:","`
	EndpointToken   string        `env:"GOLOAD_ENDPOINT_TOKEN"`
	SigningKey      string        `env:"GOLOAD_SIGNING_KEY"`
	PrincipalsFile  string        `env:"GOLOAD_PRINCIPALS_FILE" envDefault:"principals.json"`
	MethodsFile     string        `env:"GOLOAD_METHODS_FILE"`
	RedisAddr       string        `env:"GOLOAD_REDIS_ADDR"`
	RedisPrefix     string        `env:"GOLOAD_REDIS_PREFIX" envDefault:"goload"`
	MetricsAddr     string        `env:"GOLOAD_METRICS_ADDR"`
	CompletionGrace time.Duration `env:"GOLOAD_COMPLETION_GRACE" envDefault:"2s"`
	RequestTimeout  time.Duration `env:"GOLOAD_REQUEST_TIMEOUT" envDefault:"10s"`
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if err := run(logger); err != nil {
		logger.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if len(cfg.Endpoints) == 0 {
		return fmt.Errorf("GOLOAD_ENDPOINTS must list at least one worker URL")
	}

	endpoints := make([]dispatch.Endpoint, len(cfg.Endpoints))
	for i, url := range cfg.Endpoints {
		endpoints[i] = dispatch.Endpoint{
			BaseURL:    strings.TrimSpace(url),
			Token:      cfg.EndpointToken,
			SigningKey: []byte(cfg.SigningKey),
		}
	}

	store, closeStore, err := buildStore(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	methods := catalog.Default()
	if cfg.MethodsFile != "" {
		methods, err = catalog.LoadFile(cfg.MethodsFile)
		if err != nil {
			return fmt.Errorf("load methods: %w", err)
		}
	}

	engine, err := goLoad.New().
		WithCompletionGrace(cfg.CompletionGrace).
		WithAdminIdentity(cfg.AdminIdentity).
		WithEndpoints(endpoints).
		WithMethods(methods).
		WithPrincipalStore(store).
		WithNotifySink(goLoad.NewJSONWriterSink(os.Stderr)).
		WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}).
		Build()
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	defer engine.Close()

	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr, engine, logger)
	}

	logger.Info("ready",
		"admin", cfg.AdminIdentity,
		"endpoints", len(endpoints),
		"methods", len(methods))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	router := command.New(engine)
	lines := make(chan string)
	go readLines(os.Stdin, lines)

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down", "active_sessions", engine.ActiveSessions())
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			identity, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
			if identity == "" {
				continue
			}
			fmt.Println(router.Handle(ctx, identity, rest))
		}
	}
}

func buildStore(cfg config, logger *slog.Logger) (principal.Store, func(), error) {
	if cfg.RedisAddr != "" {
		client := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{cfg.RedisAddr},
		})
		logger.Info("principal store", "backend", "redis", "addr", cfg.RedisAddr)
		return principal.NewRedisStore(client, cfg.RedisPrefix), func() { _ = client.Close() }, nil
	}
	logger.Info("principal store", "backend", "file", "path", cfg.PrincipalsFile)
	return principal.NewFileStore(cfg.PrincipalsFile), func() {}, nil
}

func serveMetrics(addr string, engine *goLoad.Engine, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", prometheus.NewPrometheusExporter(engine).Handler())
	logger.Info("metrics listening", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics server stopped", "err", err)
	}
}

func readLines(f *os.File, out chan<- string) {
	defer close(out)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		out <- scanner.Text()
	}
}
