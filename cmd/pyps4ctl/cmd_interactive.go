package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ps4golib/pyps4go/pkg/console"
	"github.com/ps4golib/pyps4go/pkg/ddp"
	"github.com/ps4golib/pyps4go/pkg/ddpconfig"
	"github.com/ps4golib/pyps4go/pkg/discovery"
	"github.com/ps4golib/pyps4go/pkg/metrics"
	"github.com/ps4golib/pyps4go/pkg/session"
	"github.com/ps4golib/pyps4go/pkg/store"
	"github.com/ps4golib/pyps4go/pkg/store/jsonstore"
	"github.com/ps4golib/pyps4go/pkg/store/pgstore"
)

var interactiveConfigPath string

// interactivePollInterval is how often the daemon re-polls the watched console.
const interactivePollInterval = 10 * time.Second

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Run as a long-lived daemon: watch a console, serve /metrics, persist its status",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		cfg, err := ddpconfig.LoadConfig(interactiveConfigPath)
		if err != nil {
			return err
		}
		setupLogging(cfg.Logging)

		if err := requireIPAddress(); err != nil {
			return err
		}
		cred, err := resolveCredential(ctx)
		if err != nil {
			return err
		}

		registry, closeRegistry, err := openRegistry(cfg.Store)
		if err != nil {
			return err
		}
		defer closeRegistry()

		promReg := prometheus.NewRegistry()
		_ = metrics.New(promReg)
		if cfg.Metrics.Enabled {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}))
			srv := &http.Server{Addr: cfg.Metrics.Addr, Handler: mux}
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error().Err(err).Msg("metrics server stopped")
				}
			}()
			defer srv.Shutdown(ctx)
			log.Info().Str("addr", cfg.Metrics.Addr).Msg("serving /metrics")
		}

		dmux, err := discovery.New(ctx,
			discovery.WithMaxPolls(cfg.Discovery.MaxPolls),
			discovery.WithStandbyBackoff(cfg.Discovery.StandbyBackoff),
		)
		if err != nil {
			return err
		}
		defer dmux.Close()

		c := console.New(dmux, flagIPAddress, cred, console.WithPort(flagPort),
			console.WithSessionOptions(session.WithHeartbeatTimeout(cfg.Session.HeartbeatTimeout)))
		defer c.Close()

		c.SetStatusCallback(func(status ddp.StatusMap, available bool) {
			if !available {
				return
			}
			rec := store.ConsoleRecord{
				Host:          flagIPAddress,
				HostID:        status.HostID,
				HostName:      status.HostName,
				Credential:    cred,
				DeviceName:    "pyps4ctl",
				SystemVersion: status.SystemVersion,
			}
			if err := registry.SaveConsole(ctx, rec); err != nil {
				log.Error().Err(err).Msg("persist console record")
			}
		})

		if err := dmux.Poll(flagIPAddress); err != nil {
			log.Warn().Err(err).Msg("initial poll failed")
		}

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		log.Info().Str("host", flagIPAddress).Msg("watching console, press Ctrl+C to stop")
		ticker := time.NewTicker(interactivePollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-sigCh:
				log.Info().Msg("shutting down")
				return nil
			case <-ticker.C:
				if err := dmux.Poll(flagIPAddress); err != nil {
					log.Warn().Err(err).Msg("poll failed")
				}
			}
		}
	},
}

func init() {
	interactiveCmd.Flags().StringVar(&interactiveConfigPath, "config", "", "path to the daemon YAML config (required)")
	_ = interactiveCmd.MarkFlagRequired("config")
	rootCmd.AddCommand(interactiveCmd)
}

func setupLogging(cfg ddpconfig.LoggingConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.OutputFile == "" {
		return
	}
	f, err := os.OpenFile(cfg.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.OutputFile).Msg("falling back to stderr logging")
		return
	}
	log.Logger = log.Logger.Output(f)
}

// openRegistry builds the store.ConsoleRegistry backend selected by cfg.
// The redis backend only implements store.GameCache, so it is rejected
// here rather than silently degrading to an in-memory registry.
func openRegistry(cfg ddpconfig.StoreConfig) (store.ConsoleRegistry, func(), error) {
	switch cfg.Backend {
	case "redis":
		return nil, func() {}, fmt.Errorf("interactive: redis backend only implements the game-name cache, not the console registry; use \"json\" or \"postgres\"")
	case "postgres":
		pg, err := pgstore.New(pgstore.Config{
			Host:     cfg.PostgresHost,
			Port:     cfg.PostgresPort,
			User:     cfg.PostgresUser,
			Password: cfg.PostgresPassword,
			DBName:   cfg.PostgresDBName,
			SSLMode:  cfg.PostgresSSLMode,
		})
		if err != nil {
			return nil, func() {}, err
		}
		return pg, func() { pg.Close() }, nil
	default:
		dir := cfg.JSONDir
		if dir == "" {
			var err error
			dir, err = jsonstore.DefaultDir()
			if err != nil {
				return nil, func() {}, err
			}
		}
		js, err := jsonstore.New(dir)
		if err != nil {
			return nil, func() {}, err
		}
		return js, func() {}, nil
	}
}
