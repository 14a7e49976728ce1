package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sevlyar/go-daemon"

	"handoff/internal/adapters/channel"
	"handoff/internal/adapters/parser"
	"handoff/internal/adapters/prober"
	"handoff/internal/adapters/tokenstore"
	"handoff/internal/core/services"
	hlog "handoff/internal/log"
	"handoff/internal/outbox"
	"handoff/internal/pkg/config"
	"handoff/internal/platform/wechat"
	"handoff/internal/platform/weibo"
	"handoff/internal/ports"
	"handoff/internal/server"
)

type flags struct {
	configPath string
	daemonize  bool
	pidFile    string
	logFile    string
}

func main() {
	var f flags
	flag.StringVar(&f.configPath, "config", "bridge.yaml", "Path to the YAML config file")
	flag.BoolVar(&f.daemonize, "daemon", false, "Detach and run in the background")
	flag.StringVar(&f.pidFile, "pid-file", "bridge.pid", "PID file used with --daemon")
	flag.StringVar(&f.logFile, "log-file", "bridge.log", "Log file used with --daemon")
	flag.Parse()

	if f.daemonize {
		dctx := &daemon.Context{
			PidFileName: f.pidFile,
			PidFilePerm: 0o644,
			LogFileName: f.logFile,
			LogFilePerm: 0o640,
			Umask:       0o027,
			Args:        os.Args,
		}
		child, err := dctx.Reborn()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to daemonize: %v\n", err)
			os.Exit(1)
		}
		if child != nil {
			fmt.Printf("bridge started with pid %d\n", child.Pid)
			return
		}
		defer dctx.Release()
	}

	if err := run(f.configPath); err != nil {
		slog.Error("application run failed", "error", err)
		os.Exit(1)
	}
}

// run wires the bridge and blocks until SIGINT or SIGTERM.
func run(configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := hlog.NewMaskedLogger(hlog.NewHandler(os.Stdout, cfg.Logging.Format, cfg.Logging.Level))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	sharedChannel, err := openChannel(cfg.Storage.ChannelFile)
	if err != nil {
		return err
	}
	tokens, closeTokens, err := openTokens(cfg.Storage.TokenDB)
	if err != nil {
		return err
	}
	defer closeTokens()

	box := outbox.New(cfg.Bridge.LinkTTL, cfg.Bridge.OutboxCapacity)
	installed := prober.NewStatic(cfg.Host.InstalledSchemes...)

	handlers, err := buildHandlers(cfg, sharedChannel, tokens, box, installed, logger)
	if err != nil {
		return err
	}
	svc, err := services.NewHandoffService(logger, handlers...)
	if err != nil {
		return fmt.Errorf("failed to create handoff service: %w", err)
	}

	operations := server.NewOperationStore()
	operations.StartCleanupTicker(appCtx, cfg.Bridge.CleanupInterval)
	box.StartCleanupTicker(appCtx, cfg.Bridge.CleanupInterval)

	srv, err := server.New(cfg, svc, parser.NewJSONParser(), operations, box, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		slog.Info("signal received, shutting down")
	case <-serverDone:
		return errors.New("server stopped unexpectedly")
	}

	appCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}
	<-serverDone

	slog.Info("bridge exited gracefully")
	return nil
}

func openChannel(path string) (ports.SharedChannel, error) {
	if path == "" {
		return channel.NewMemory(), nil
	}
	f, err := channel.NewFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open channel file: %w", err)
	}
	return f, nil
}

func openTokens(path string) (ports.TokenStore, func(), error) {
	if path == "" {
		return tokenstore.NewMemory(), func() {}, nil
	}
	db, err := tokenstore.OpenSQLite(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open token store: %w", err)
	}
	return db, func() {
		if err := db.Close(); err != nil {
			slog.Error("failed to close token store", "error", err)
		}
	}, nil
}

func buildHandlers(cfg *config.Config, ch ports.SharedChannel, tokens ports.TokenStore, opener ports.LinkOpener, appProber ports.AppProber, logger *slog.Logger) ([]ports.PlatformHandler, error) {
	var handlers []ports.PlatformHandler
	if cfg.Wechat.Enabled {
		h, err := wechat.NewHandler(wechat.Config{
			AppID:         cfg.Wechat.AppID,
			UniversalLink: config.MustParseURL(cfg.Wechat.UniversalLink),
			BundleID:      cfg.Host.BundleID,
		}, ch, tokens, opener, appProber, wechat.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("failed to create wechat handler: %w", err)
		}
		handlers = append(handlers, h)
	}
	if cfg.Weibo.Enabled {
		h, err := weibo.NewHandler(weibo.Config{
			AppID:         cfg.Weibo.AppID,
			UniversalLink: config.MustParseURL(cfg.Weibo.UniversalLink),
			RedirectLink:  config.MustParseURL(cfg.Weibo.RedirectLink),
			BundleID:      cfg.Host.BundleID,
		}, ch, opener, appProber, weibo.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("failed to create weibo handler: %w", err)
		}
		handlers = append(handlers, h)
	}
	return handlers, nil
}
