package main

import (
	"fmt"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/storyreel/pkg/storyboard"
)

func storyboardCommand() *cli.Command {
	return &cli.Command{
		Name:  "storyboard",
		Usage: l10n.T("Import, export or clear the whole storyboard"),
		Subcommands: []*cli.Command{
			{
				Name:      "export",
				Usage:     l10n.T("Write the storyboard as YAML"),
				ArgsUsage: "<file.yaml>",
				Action: withEnv(false, func(c *cli.Context, e *env) error {
					if c.NArg() < 1 {
						return fmt.Errorf("missing output file")
					}
					sb, err := storyboard.New(e.state.Scenes()...)
					if err != nil {
						return err
					}
					return storyboard.WriteFile(sb, osExpand(c.Args().First()))
				}),
			},
			{
				Name:      "import",
				Usage:     l10n.T("Replace the storyboard with a YAML file"),
				ArgsUsage: "<file.yaml>",
				Action: withEnv(true, func(c *cli.Context, e *env) error {
					if c.NArg() < 1 {
						return fmt.Errorf("missing input file")
					}
					sb, err := storyboard.ReadFile(osExpand(c.Args().First()))
					if err != nil {
						return err
					}
					e.state.ReplaceStoryboard(sb)
					e.log.Info("Imported %d scenes", sb.Len())
					return nil
				}),
			},
			{
				Name:  "clear",
				Usage: l10n.T("Clear the stored studio state"),
				Action: withEnv(false, func(c *cli.Context, e *env) error {
					return e.state.Reset(c.Context)
				}),
			},
		},
	}
}
