package main

import (
	"fmt"
	"strings"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"
)

func apikeyCommand() *cli.Command {
	return &cli.Command{
		Name:  "apikey",
		Usage: l10n.T("Manage the Gemini API key"),
		Subcommands: []*cli.Command{
			{
				Name:      "set",
				Usage:     l10n.T("Store the API key; an empty key clears it"),
				ArgsUsage: "<key>",
				Action: withEnv(false, func(c *cli.Context, e *env) error {
					if e.envAPIKeySet() {
						e.log.Warn("GEMINI_API_KEY is set in the environment and takes precedence")
					}
					return e.state.SetAPIKey(c.Context, c.Args().First())
				}),
			},
			{
				Name:  "show",
				Usage: l10n.T("Show the active API key, masked"),
				Action: withEnv(false, func(c *cli.Context, e *env) error {
					key := e.state.APIKey()
					if key == "" {
						fmt.Fprintln(c.App.Writer, l10n.T("No API key configured"))
						return nil
					}
					source := l10n.T("stored")
					if e.envAPIKeySet() {
						source = l10n.T("environment")
					}
					fmt.Fprintf(c.App.Writer, "%s (%s)\n", maskKey(key), source)
					return nil
				}),
			},
		},
	}
}

// maskKey keeps the first and last four characters.
func maskKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
