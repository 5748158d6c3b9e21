package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"oakdex/internal/app"
)

func main() {
	cfg, err := app.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "oakdex:", err)
		os.Exit(1)
	}

	flag.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "directory for the progress database and cry cache")
	flag.StringVar(&cfg.CatalogDir, "catalog-dir", cfg.CatalogDir, "directory holding versions.yaml and catalog documents")
	flag.StringVar(&cfg.LogPath, "log", cfg.LogPath, "append JSON telemetry to this file")
	flag.StringVar(&cfg.Version, "version", cfg.Version, "challenge version to open (red, blue, yellow)")
	flag.StringVar(&cfg.CryBaseURL, "cry-url", cfg.CryBaseURL, "override the base URL for cry audio")
	flag.StringVar(&cfg.CryPlayer, "cry-player", cfg.CryPlayer, "force a specific audio player binary")
	flag.BoolVar(&cfg.Mute, "mute", cfg.Mute, "start with cries muted")
	flag.BoolVar(&cfg.ASCIIOnly, "ascii", cfg.ASCIIOnly, "render with ASCII glyphs only")
	flag.BoolVar(&cfg.Debug, "debug", cfg.Debug, "verbose UI logging to stderr")
	flag.StringVar(&cfg.UI.MotionLevel, "motion", cfg.UI.MotionLevel, "animation level: full, reduced, off")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "oakdex:", err)
		os.Exit(1)
	}

	a, err := app.New(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "oakdex:", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := a.Run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "oakdex:", err)
		os.Exit(1)
	}
}
