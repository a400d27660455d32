package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/storyreel/pkg/storyboard"
)

func galleryCommand() *cli.Command {
	return &cli.Command{
		Name:  "gallery",
		Usage: l10n.T("Manage generated and uploaded media"),
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  l10n.T("List gallery items, newest first"),
				Action: withEnv(false, listGallery),
			},
			{
				Name:      "add",
				Usage:     l10n.T("Add a local file or a URL to the gallery"),
				ArgsUsage: "<file|url>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "kind", Usage: l10n.T("Media kind for a URL (image or video)")},
					&cli.StringFlag{Name: "name", Usage: l10n.T("Item name")},
				},
				Action: withEnv(true, addGalleryItem),
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     l10n.T("Remove a gallery item"),
				ArgsUsage: "<item>",
				Action: withEnv(true, func(c *cli.Context, e *env) error {
					item, err := resolveItem(e.state.Gallery().List(), c.Args().First())
					if err != nil {
						return err
					}
					return e.state.Gallery().Remove(item.ID)
				}),
			},
			{
				Name:      "move",
				Usage:     l10n.T("Move a gallery item to a 1-based position"),
				ArgsUsage: "<item> <position>",
				Action: withEnv(true, func(c *cli.Context, e *env) error {
					item, err := resolveItem(e.state.Gallery().List(), c.Args().First())
					if err != nil {
						return err
					}
					var pos int
					if _, err := fmt.Sscan(c.Args().Get(1), &pos); err != nil {
						return fmt.Errorf("invalid position %q", c.Args().Get(1))
					}
					return e.state.Gallery().Move(item.ID, pos-1)
				}),
			},
			{
				Name:      "download",
				Usage:     l10n.T("Write a gallery item to a directory"),
				ArgsUsage: "<item>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "dir", Value: ".", Usage: l10n.T("Target directory")},
				},
				Action: withEnv(false, func(c *cli.Context, e *env) error {
					item, err := resolveItem(e.state.Gallery().List(), c.Args().First())
					if err != nil {
						return err
					}
					out, err := e.state.Gallery().Download(c.Context, item.ID, osExpand(c.String("dir")))
					if err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, out)
					return nil
				}),
			},
		},
	}
}

func listGallery(c *cli.Context, e *env) error {
	items := e.state.Gallery().List()
	if len(items) == 0 {
		fmt.Fprintln(c.App.Writer, l10n.T("The gallery is empty"))
		return nil
	}

	w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tID\tKIND\tNAME\tCREATED\tLOCATOR")
	for i, it := range items {
		loc := storyboard.ShortLocator(it.Locator)
		if it.IsExpired() {
			loc = l10n.T("(re-upload required)")
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			i+1, shortID(it.ID), it.Kind, it.Name, it.CreatedAt.Format("2006-01-02 15:04"), loc)
	}
	return w.Flush()
}

func addGalleryItem(c *cli.Context, e *env) error {
	if c.NArg() < 1 {
		return fmt.Errorf("missing file or URL")
	}
	src := c.Args().First()

	var (
		item storyboard.GalleryItem
		err  error
	)
	if isURL(src) {
		kind := storyboard.KindImage
		if c.IsSet("kind") {
			if kind, err = storyboard.ParseMediaKind(c.String("kind")); err != nil {
				return err
			}
		}
		item, err = e.state.Gallery().AddLocator(src, kind, c.String("name"))
	} else {
		item, err = e.state.Upload(osExpand(src))
	}
	if err != nil {
		return err
	}
	if item.Ephemeral {
		e.log.Warn("%s is only kept for this session", item.Name)
	}
	fmt.Fprintln(c.App.Writer, item.ID)
	return nil
}

func isURL(s string) bool {
	for _, p := range []string{"http://", "https://", "data:"} {
		if len(s) >= len(p) && s[:len(p)] == p {
			return true
		}
	}
	return false
}
