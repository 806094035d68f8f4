package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/menta2k/sketchpad"
	"github.com/menta2k/sketchpad/internal/config"
	"github.com/menta2k/sketchpad/internal/utils"
)

const usage = `usage: %s <command> [flags]

commands:
  draw      render a strokes file to an image
  augment   write every step of a filter plan applied to a sketch or image
  classify  classify a sketch or image with a vision model
  collect   add a drawing to the labelled sample store
  config    write the default configuration file

run "%[1]s <command> -h" for the flags of a command
`

type command func(ctx context.Context, cfg *config.Config, args []string) error

var commands = map[string]command{
	"draw":     runDraw,
	"augment":  runAugment,
	"classify": runClassify,
	"collect":  runCollect,
}

func main() {
	log.SetFlags(0)
	name := filepath.Base(os.Args[0])
	if len(os.Args) < 2 {
		log.Fatalf(usage, name)
	}

	global := flag.NewFlagSet(name, flag.ExitOnError)
	configPath := global.String("config", config.GetConfigPath(), "configuration file")
	verbose := global.Bool("v", false, "log library events to stderr")

	// global flags come before the command
	if err := global.Parse(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
	args := global.Args()
	if len(args) == 0 {
		log.Fatalf(usage, name)
	}

	if *verbose {
		sketchpad.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	if args[0] == "config" {
		if err := config.Default().SaveToFile(*configPath); err != nil {
			log.Fatal(err)
		}
		log.Printf("wrote %s", *configPath)
		return
	}

	run, ok := commands[args[0]]
	if !ok {
		log.Fatalf(usage, name)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, args[1:]); err != nil {
		log.Fatalf("%s: %v", args[0], err)
	}
}

// loadConfig reads path when it exists and falls back to the defaults
func loadConfig(path string) (*config.Config, error) {
	cfg := config.Default()
	if utils.FileExists(path) {
		var err error
		if cfg, err = config.LoadFromFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration %s: %w", path, err)
	}
	return cfg, nil
}
