package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"staticd/internal/config"
	"staticd/internal/httpd"
	"staticd/internal/logbuf"
)

var (
	configPath string
	port       int
	dir        string
	workers    int
)

func main() {

	flag.StringVar(&configPath, "c", "config.json", "Path to config file")
	flag.IntVar(&port, "p", 0, "Override server port")
	flag.StringVar(&dir, "d", "", "Override directory to serve")
	flag.IntVar(&workers, "w", 0, "Override number of workers")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	if port != 0 {
		cfg.Port = port
	}
	if workers != 0 {
		cfg.MaxWorkers = workers
	}
	if dir != "" {
		cfg.PublicDir, err = config.ResolveDir(dir)
		if err != nil {
			log.Fatalf("Error: %v", err)
		}
	}

	logger, closeLog, err := buildLogger(cfg)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	defer closeLog()

	logger.Infof("web server starting - %s", cfg.Address())
	logger.Infof("public dir: %s", cfg.PublicDir)
	logger.Infof("max workers: %d", cfg.MaxWorkers)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := httpd.New(cfg, logger)
	if err := srv.Start(ctx); err != nil {
		log.Fatalf("Error: %v", err)
	}

	<-ctx.Done()
	srv.Shutdown()
}

// buildLogger wires stderr and, when configured, an append-only log
// file behind the shared line buffer the logs API serves.
func buildLogger(cfg *config.Config) (*logbuf.Logger, func(), error) {
	sinks := []io.Writer{os.Stderr}
	closeLog := func() {}

	if cfg.LogFile != "" {
		if d := filepath.Dir(cfg.LogFile); d != "." {
			if err := os.MkdirAll(d, 0o755); err != nil {
				return nil, nil, err
			}
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, f)
		closeLog = func() { f.Close() }
	}

	return logbuf.New(logbuf.DefaultCapacity, sinks...), closeLog, nil
}
