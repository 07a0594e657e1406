package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/banyantree/banyan/internal/core/blueprint"
	"github.com/banyantree/banyan/internal/core/driver"
	"github.com/banyantree/banyan/internal/core/observability/log"
	"github.com/banyantree/banyan/internal/core/scene"
	"github.com/banyantree/banyan/internal/core/snapshot"
)

func main() {
	var (
		scenes      = flag.String("scene", "", "comma-separated blueprint files (.yaml, .yml or .json)")
		rootName    = flag.String("root", "", "name of the tree to drive when several load")
		ticks       = flag.Int("ticks", 0, "fixed number of ticks to run, 0 runs until a signal")
		tps         = flag.Int("tps", driver.DefaultTPS, "ticks per second")
		level       = flag.String("level", "info", "log level (debug, info, warn, error, fatal)")
		snapshotOut = flag.String("snapshot-out", "", "write a snapshot of the final tree to this file")
	)
	flag.Parse()

	logger := log.New(log.ParseLevel(*level))
	defer func() { _ = logger.Sync() }()

	if *scenes == "" {
		logger.Fatal("No scene files given, use -scene")
	}

	cfgs, err := loadConfigs(strings.Split(*scenes, ","))
	if err != nil {
		logger.Fatal("Loading blueprints failed", log.Error(err))
	}

	roots, err := blueprint.BuildAll(blueprint.NewRegistry(), cfgs...)
	if err != nil {
		logger.Fatal("Building scenes failed", log.Error(err))
	}
	root := pickRoot(roots, *rootName)
	if root == nil {
		logger.Fatal("No tree matches -root", log.String("root", *rootName))
	}
	logger.Info("Scene built",
		log.String("root", root.Name()),
		log.Int("nodes", root.Registry().Len()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loop := driver.New(root, driver.WithTPS(*tps), driver.WithLogger(logger))
	if err := run(ctx, loop, *ticks, *tps); err != nil {
		logger.Fatal("Run failed", log.Error(err))
	}

	reg := root.Registry()
	logger.Info("Scene stopped",
		log.Uint64("ticks", loop.Ticks()),
		log.Int("nodes", reg.Len()),
		log.Uint64("digest", reg.Digest()))

	if *snapshotOut != "" {
		if err := writeSnapshot(*snapshotOut, root); err != nil {
			logger.Fatal("Snapshot failed", log.Error(err))
		}
		logger.Info("Snapshot written", log.String("path", *snapshotOut))
	}
}

func loadConfigs(paths []string) ([]*blueprint.Config, error) {
	cfgs := make([]*blueprint.Config, 0, len(paths))
	for _, path := range paths {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		cfg, err := loadConfig(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		cfgs = append(cfgs, cfg)
	}
	if len(cfgs) == 0 {
		return nil, fmt.Errorf("no scene files")
	}
	return cfgs, nil
}

func loadConfig(path string) (*blueprint.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	if filepath.Ext(path) == ".json" {
		return blueprint.LoadJSON(f)
	}
	return blueprint.LoadYAML(f)
}

func pickRoot(roots []*scene.Node, name string) *scene.Node {
	if name == "" {
		return roots[0]
	}
	for _, root := range roots {
		if root.Name() == name {
			return root
		}
	}
	return nil
}

// run drives a fixed number of ticks at constant tpf, or hands off to
// the measured-time loop when ticks is zero.
func run(ctx context.Context, loop *driver.Loop, ticks, tps int) error {
	if ticks <= 0 {
		return loop.Run(ctx)
	}
	if tps <= 0 {
		tps = driver.DefaultTPS
	}
	tpf := 1.0 / float64(tps)
	for i := 0; i < ticks; i++ {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		if err := loop.Step(tpf); err != nil {
			return err
		}
	}
	return nil
}

func writeSnapshot(path string, root *scene.Node) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := snapshot.Encode(f, root); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
