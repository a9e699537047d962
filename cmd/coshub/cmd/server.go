package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/netip"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/YoungLee-coder/coshub/api"
	"github.com/YoungLee-coder/coshub/auth"
	"github.com/YoungLee-coder/coshub/config"
	"github.com/YoungLee-coder/coshub/cos"
	coss3 "github.com/YoungLee-coder/coshub/cos/s3"
	"github.com/YoungLee-coder/coshub/kv"
	kvbbolt "github.com/YoungLee-coder/coshub/kv/bbolt"
	kvmemory "github.com/YoungLee-coder/coshub/kv/memory"
	"github.com/YoungLee-coder/coshub/settings"
	"github.com/YoungLee-coder/coshub/web"
)

var (
	tlsCert string
	tlsKey  string
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the console server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile, cmd.Flags())
		if err != nil {
			return err
		}

		logger := newLogger(cfg.Log)
		slog.SetDefault(logger)

		if cfg.Auth.Secret == "" {
			return fmt.Errorf("auth.secret is not configured; set COSHUB_AUTH_SECRET or auth.secret in the config file")
		}

		store, err := openKVStore(cfg.KV)
		if err != nil {
			return fmt.Errorf("open settings store: %w", err)
		}
		if store != nil {
			defer store.Close()
		}

		resolver := settings.NewResolver(store, cfg.EnvProvider(), settings.WithLogger(logger))

		codec, err := auth.NewTokenCodec([]byte(cfg.Auth.Secret))
		if err != nil {
			return err
		}
		limiter := auth.NewRateLimiter()
		flow := auth.NewLoginFlow(limiter, resolver, codec)
		guard := auth.NewGuard(codec)

		apiOpts := []api.Option{api.WithLogger(logger)}

		if len(cfg.Server.TrustedProxies) > 0 {
			prefixes, err := parsePrefixes(cfg.Server.TrustedProxies)
			if err != nil {
				return fmt.Errorf("parse trusted proxies: %w", err)
			}
			apiOpts = append(apiOpts, api.WithTrustedProxies(prefixes))
		}

		if cfg.S3.Endpoint != "" {
			objects, err := openObjectStore(cfg.S3)
			if err != nil {
				return fmt.Errorf("connect object storage: %w", err)
			}
			apiOpts = append(apiOpts, api.WithObjectStore(objects))
		} else {
			logger.Warn("no s3 endpoint configured, bucket routes disabled")
		}

		a := api.New(flow, guard, resolver, apiOpts...)

		r := chi.NewRouter()
		r.Use(middleware.Logger)
		r.Use(middleware.Recoverer)
		r.Use(api.RequestID)
		r.Use(api.SecurityHeaders)

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})

		r.Mount("/api/v1", a.Router())

		webHandler, err := web.Handler()
		if err != nil {
			return err
		}
		r.Handle("/*", webHandler)

		server := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		}

		// Graceful shutdown on SIGINT/SIGTERM.
		done := make(chan error, 1)
		go func() {
			var err error
			if tlsCert != "" && tlsKey != "" {
				err = server.ListenAndServeTLS(tlsCert, tlsKey)
			} else {
				err = server.ListenAndServe()
			}
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				done <- fmt.Errorf("server failed: %w", err)
				return
			}
			done <- nil
		}()

		printBanner()
		logger.Info("server started", "port", cfg.Server.Port, "kv_backend", cfg.KV.Backend)

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("shutting down", "signal", sig.String())
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				return fmt.Errorf("server shutdown failed: %w", err)
			}
			return nil
		case err := <-done:
			return err
		}
	},
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: level}))
}

// openKVStore returns nil for the "none" backend: the resolver then
// serves the environment tier only and settings writes fail with 503.
func openKVStore(cfg config.KVConfig) (kv.Store, error) {
	switch cfg.Backend {
	case "bbolt":
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o700); err != nil {
			return nil, err
		}
		return kvbbolt.NewStoreFromFile(cfg.Path, nil)
	case "memory":
		return kvmemory.NewStore(), nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown kv backend %q", cfg.Backend)
	}
}

func openObjectStore(cfg config.S3Config) (cos.ObjectStore, error) {
	return coss3.New(coss3.Config{
		Endpoint:       cfg.Endpoint,
		Region:         cfg.Region,
		AccessKey:      cfg.AccessKey,
		SecretKey:      cfg.SecretKey,
		Insecure:       cfg.Insecure,
		ForcePathStyle: cfg.ForcePathStyle,
	})
}

func parsePrefixes(cidrs []string) ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(cidrs))
	for _, raw := range cidrs {
		p, err := netip.ParsePrefix(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid CIDR %q: %w", raw, err)
		}
		prefixes = append(prefixes, p)
	}
	return prefixes, nil
}

func init() {
	rootCmd.AddCommand(serverCmd)
	serverCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serverCmd.Flags().String("kv", "bbolt", "Settings store backend (bbolt, memory, none)")
	serverCmd.Flags().String("kv-path", "./data/settings.db", "Path to the bbolt settings database")
	serverCmd.Flags().String("log-level", "info", "Log level (debug, info, warn, error)")
	serverCmd.Flags().String("log-format", "text", "Log format (text, json)")
	serverCmd.Flags().StringVar(&tlsCert, "tls-cert", "", "Path to TLS certificate file")
	serverCmd.Flags().StringVar(&tlsKey, "tls-key", "", "Path to TLS key file")
}
