package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/soocke/virtual-fence-go/app"
	"github.com/soocke/virtual-fence-go/config"
	"github.com/soocke/virtual-fence-go/domain/camera"
)

func main() {
	cfgPath := flag.String("config", config.DefaultPath(), "path to the JSON config file")
	debugFlag := flag.Bool("debug", false, "enable debug logging and runtime stats")
	maskPath := flag.String("mask", "", "where to write the captured fence mask (overrides config)")
	flag.Parse()

	cfg, err := config.Resolve(*cfgPath, config.Overrides{Debug: *debugFlag, MaskPath: *maskPath})
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := NewLogger(level)
	if err != nil {
		if errors.Is(err, camera.ErrInvalidCamera) {
			logger.Error("invalid camera configuration", "path", *cfgPath, "error", err)
			os.Exit(1)
		}
		logger.Warn("config load failed, using defaults", "path", *cfgPath, "error", err)
	}

	c, err := app.BuildContainer(cfg, *cfgPath, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	application := app.NewApp("Virtual Fence", c)
	application.Start()
}
