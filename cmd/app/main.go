package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/veland/grimsync/internal"
	pkgconfig "github.com/veland/grimsync/pkg/config"
)

func run(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(configPath, cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	if cmd.Bool("verbose") {
		cfg.App.LogLevel = slog.LevelDebug
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
	}
	if cmd.Bool("once") {
		opts = append(opts, internal.WithOnce())
	}
	if cmd.Bool("dry-run") {
		opts = append(opts, internal.WithDryRun())
	}
	if cmd.Bool("resync") {
		opts = append(opts, internal.WithForceResync())
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:   "grimsync",
		Usage:  "Sync meeting notes from the Granola cache into an Obsidian vault with automatic wikilinks",
		Action: run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.BoolFlag{
				Name:  "once",
				Usage: "Run a single sync cycle and exit",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Report planned actions without writing anything",
			},
			&cli.BoolFlag{
				Name:  "resync",
				Usage: "Clear sync state and rewrite every note",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
