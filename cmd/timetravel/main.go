// Command timetravel runs a small counter application with the time-travel
// debug server enabled.
//
// Usage:
//
//	timetravel                              # defaults, listens on :8080
//	timetravel -config timetravel.yaml      # YAML configuration
//	timetravel -addr 127.0.0.1:9090 -log-level debug
//
// Then:
//
//	curl localhost:8080/
//	curl 'localhost:8080/step?cursor=3'
//	curl -X POST localhost:8080/undo
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hazyhaar/timetravel/config"
	"github.com/hazyhaar/timetravel/dbopen"
	"github.com/hazyhaar/timetravel/debugger"
	"github.com/hazyhaar/timetravel/debugserver"
	"github.com/hazyhaar/timetravel/journal"
	"github.com/hazyhaar/timetravel/store"
)

type counterStore = store.Store[debugger.Model[string, int], debugger.Action[string]]

func main() {
	configPath := flag.String("config", "", "path to timetravel.yaml config file")
	addr := flag.String("addr", "", "listen address (overrides config)")
	logLevel := flag.String("log-level", "", "log level: debug, info, warn, error (overrides config)")
	flag.Parse()

	cfg, err := loadConfig(*configPath, *addr, *logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "timetravel:", err)
		os.Exit(2)
	}

	level, _ := config.ParseLevel(cfg.Log.Level)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, cfg); err != nil {
		logger.Error("timetravel: fatal", "error", err)
		os.Exit(1)
	}
}

func loadConfig(path, addr, level string) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.LoadFile(path); err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	if level != "" {
		if _, err := config.ParseLevel(level); err != nil {
			return nil, err
		}
		cfg.Log.Level = level
	}
	return cfg, nil
}

// counter is the demo application reducer.
func counter(n int, action string) int {
	switch action {
	case "inc":
		return n + 1
	case "dec":
		return n - 1
	case "reset":
		return 0
	}
	return n
}

func run(ctx context.Context, logger *slog.Logger, cfg *config.Config) error {
	opts := []debugserver.Option{debugserver.WithLogger(logger)}

	if cfg.Journal.Path != "" {
		db, err := dbopen.Open(cfg.Journal.Path, dbopen.WithMkdirAll())
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer db.Close()
		j, err := journal.New(db, cfg.Journal.Buffer, journal.WithLogger(logger))
		if err != nil {
			return err
		}
		defer j.Close()
		opts = append(opts, debugserver.WithRecorder(j))
		logger.Info("timetravel: journal enabled", "path", cfg.Journal.Path)
	}

	st := store.New[debugger.Model[string, int], debugger.Action[string]](
		debugger.New[string](0),
		debugger.ReduceWithLimit[string, int](counter, cfg.Debugger.MaxHistory),
		store.WithLogger(logger),
	)

	srv := debugserver.NewServer(cfg.Server, opts...)
	h, err := debugserver.Enable[string, int](srv)
	if err != nil {
		return err
	}
	h.SetDispatcher(func(c debugger.Control) {
		st.Dispatch(debugger.Wrap[string](c))
	})
	st.Watch(h.View)

	go tick(ctx, st, cfg.Demo.Tick)

	err = st.Run(ctx)

	// Shutdown applies the configured timeout itself.
	if serr := srv.Shutdown(context.Background()); serr != nil {
		logger.Warn("timetravel: shutdown", "error", serr)
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// tick dispatches "inc" on every interval until ctx is done.
func tick(ctx context.Context, st *counterStore, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			st.Dispatch(debugger.Base("inc"))
		}
	}
}
