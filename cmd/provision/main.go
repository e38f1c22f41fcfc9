package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zeusync/provision/internal/config"
	"github.com/zeusync/provision/internal/core/observability/log"
	"github.com/zeusync/provision/internal/core/registry"
	"github.com/zeusync/provision/internal/core/scene/memscene"
	"github.com/zeusync/provision/internal/injector"
	"github.com/zeusync/provision/internal/provision"
	"github.com/zeusync/provision/internal/server"
	"github.com/zeusync/provision/internal/watch"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a .yaml or .toml config file")
		scene      = flag.String("scene", "", "scene to load, overrides entities.scene")
		watchData  = flag.Bool("watch", false, "reload when data files change")
		inspect    = flag.String("inspect", "", "serve the inspector on this address")
	)
	flag.Parse()

	if err := run(*configPath, *scene, *watchData, *inspect); err != nil {
		fmt.Fprintln(os.Stderr, "provision:", err)
		os.Exit(1)
	}
}

func run(configPath, scene string, watchData bool, inspect string) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if scene != "" {
		cfg.Entities.Scene = scene
	}
	if watchData {
		cfg.Watch.Enabled = true
	}
	if inspect != "" {
		cfg.Inspector.Enabled = true
		cfg.Inspector.Addr = inspect
	}

	host := memscene.NewHost()
	engine, err := injector.InitializeEngine(cfg, host, memscene.NewRecorder())
	if err != nil {
		return err
	}
	logger := engine.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The inspector follows the bus, so it must exist before the first load
	// to see the catalog.loaded event.
	var inspector *server.Server
	if cfg.Inspector.Enabled {
		inspector = server.NewServer(server.Config{
			ListenAddr: cfg.Inspector.Addr,
			Token:      cfg.Inspector.Token,
		}, engine.Registry(), engine.Events(), logger)
		defer inspector.Close()
	}

	report, err := engine.LoadContext(ctx, cfg.Entities.Scene)
	if err != nil {
		return err
	}
	if err := printSnapshot(engine, report); err != nil {
		return err
	}

	if inspector == nil && !cfg.Watch.Enabled {
		return nil
	}
	if inspector != nil {
		if err := inspector.Start(ctx); err != nil {
			return err
		}
	}

	var reloads <-chan watch.Change
	g, gctx := errgroup.WithContext(ctx)
	if cfg.Watch.Enabled {
		w, err := watch.New(logger, cfg.WatchDirs(), cfg.Watch.Debounce)
		if err != nil {
			return err
		}
		defer w.Close()
		reloads = w.Reloads()
		g.Go(func() error {
			if err := w.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	// Reloads run here so the registry stays on one goroutine.
	for done := false; !done; {
		select {
		case <-gctx.Done():
			done = true
		case change, ok := <-reloads:
			if !ok {
				reloads = nil
				continue
			}
			logger.Info("Data changed, reloading", log.Strings("paths", change.Paths))
			report, err := engine.Reload(gctx)
			if err != nil {
				logger.Error("Reload failed", log.Error(err))
				continue
			}
			if err := printSnapshot(engine, report); err != nil {
				logger.Error("Failed to print snapshot", log.Error(err))
			}
		}
	}

	stop()
	err = g.Wait()
	if inspector != nil {
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if stopErr := inspector.Stop(shutdown); stopErr != nil && !errors.Is(stopErr, server.ErrServerNotRunning) {
			err = errors.Join(err, stopErr)
		}
	}
	return err
}

type summary struct {
	Scene       string                  `json:"scene"`
	Components  int                     `json:"components"`
	Registered  int                     `json:"registered"`
	Rejected    int                     `json:"rejected"`
	Spawned     int                     `json:"spawned"`
	SpawnFailed int                     `json:"spawn_failed"`
	Fingerprint string                  `json:"fingerprint"`
	Elapsed     string                  `json:"elapsed"`
	Instances   []registry.SpawnedEntry `json:"instances"`
}

func printSnapshot(engine *provision.Engine, report provision.LoadReport) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(summary{
		Scene:       report.Scene,
		Components:  engine.Catalog().Len(),
		Registered:  report.Registered,
		Rejected:    report.Rejected,
		Spawned:     report.Spawned,
		SpawnFailed: report.SpawnFailed,
		Fingerprint: fmt.Sprintf("%016x", report.Fingerprint),
		Elapsed:     report.Elapsed.String(),
		Instances:   engine.Registry().Snapshot(),
	})
}
