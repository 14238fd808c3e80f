package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"scribe/internal/blobstore"
	"scribe/internal/config"
	"scribe/internal/daemon"
	"scribe/internal/logging"
	"scribe/internal/pipeline"
	"scribe/internal/progress"
	"scribe/internal/services/editor"
	"scribe/internal/services/source"
	"scribe/internal/services/stt"
	"scribe/internal/store"
)

func main() {
	configPath := flag.String("config", "", "configuration file path")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	pidPath := filepath.Join(cfg.Paths.LogDir, "scribed.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	st, err := store.Open(cfg)
	if err != nil {
		logger.Error("open job store", logging.Error(err))
		return err
	}
	defer st.Close()

	hub := progress.NewHub()
	runner := pipeline.NewRunner(cfg, pipeline.Deps{
		Store:    st,
		Blobs:    blobstore.NewClient(cfg.Store),
		Resolver: source.NewResolver(cfg.Source),
		EngineA:  stt.NewRecognizer(cfg.EngineA, blobstore.NewClient(cfg.Store)),
		EngineB:  stt.NewTranscriber(cfg.EngineB, blobstore.NewClient(cfg.Store)),
		Editor:   editor.NewClient(cfg.Editor),
		Media:    pipeline.NewMedia(cfg.Pipeline),
		Sink:     progress.NewSink(st, hub, logger),
		Logger:   logger,
	})

	d, err := daemon.New(cfg, st, runner, hub, logger)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	if err := d.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	logger.Info("scribe daemon shutting down")
	d.Stop()
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
