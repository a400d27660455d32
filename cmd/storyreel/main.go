// Package main provides the CLI entry point for storyreel.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ideamans/go-l10n"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		if ctx.Err() != nil {
			fmt.Fprintln(os.Stderr, l10n.T("Interrupted, shutting down..."))
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "storyreel",
		Usage:   l10n.T("Turn a storyboard of images, clips and narration into a video"),
		Version: version,
		Description: l10n.T("storyreel manages a storyboard of scenes and a media gallery, " +
			"generates images and narration, and renders the storyboard to WebM or MP4."),
		Flags: globalFlags(),
		Before: func(c *cli.Context) error {
			// A missing .env file is fine
			if err := godotenv.Load(c.String("env-file")); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("load %s: %w", c.String("env-file"), err)
			}
			return nil
		},
		Commands: []*cli.Command{
			renderCommand(),
			sceneCommand(),
			galleryCommand(),
			generateCommand(),
			apikeyCommand(),
			storyboardCommand(),
			{
				Name:  "version",
				Usage: l10n.T("Show version information"),
				Action: func(c *cli.Context) error {
					fmt.Fprintln(c.App.Writer, l10n.F("storyreel version %s", version))
					return nil
				},
			},
		},
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   l10n.T("YAML configuration file"),
			EnvVars: []string{"STORYREEL_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "db",
			Usage:   l10n.T("Studio database path (overrides the configuration)"),
			EnvVars: []string{"STORYREEL_DB"},
		},
		&cli.StringFlag{
			Name:  "env-file",
			Value: ".env",
			Usage: l10n.T("File with GEMINI_API_KEY"),
		},
		&cli.StringFlag{
			Name:     "log-level",
			Aliases:  []string{"l"},
			Value:    "info",
			Usage:    l10n.T("Log level (debug, info, warn, error)"),
			Category: l10n.T("Logging"),
		},
		&cli.BoolFlag{
			Name:     "quiet",
			Aliases:  []string{"Q"},
			Usage:    l10n.T("Suppress all log output"),
			Category: l10n.T("Logging"),
		},
	}
}
