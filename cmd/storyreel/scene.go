package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/storyreel/pkg/adapters/clipdecoder"
	"github.com/user/storyreel/pkg/adapters/ggrenderer"
	"github.com/user/storyreel/pkg/config"
	"github.com/user/storyreel/pkg/pipeline"
	"github.com/user/storyreel/pkg/ports"
	"github.com/user/storyreel/pkg/stages/composite"
	"github.com/user/storyreel/pkg/stages/layout"
	"github.com/user/storyreel/pkg/stages/load"
	"github.com/user/storyreel/pkg/storyboard"
)

func sceneCommand() *cli.Command {
	editFlags := []cli.Flag{
		&cli.StringFlag{Name: "text", Aliases: []string{"t"}, Usage: l10n.T("Narration text, also used as the subtitle")},
		&cli.StringFlag{Name: "voice", Usage: l10n.T("Narration voice (Zephyr, Puck, Charon, Kore, Fenrir)")},
		&cli.Float64Flag{Name: "duration", Usage: l10n.T("Scene duration in seconds")},
		&cli.BoolFlag{Name: "subtitles", Value: true, Usage: l10n.T("Show the narration text as a subtitle")},
		&cli.StringFlag{Name: "media", Aliases: []string{"m"}, Usage: l10n.T("Local image or video file, added to the gallery")},
		&cli.StringFlag{Name: "url", Usage: l10n.T("Media URL used as is")},
		&cli.StringFlag{Name: "kind", Value: "image", Usage: l10n.T("Media kind for --url (image or video)")},
		&cli.StringFlag{Name: "item", Usage: l10n.T("Gallery item to link")},
		&cli.StringFlag{Name: "audio", Usage: l10n.T("Recorded narration audio file")},
	}

	return &cli.Command{
		Name:  "scene",
		Usage: l10n.T("Edit the storyboard scenes"),
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  l10n.T("List the scenes in order"),
				Action: withEnv(false, listScenes),
			},
			{
				Name:   "add",
				Usage:  l10n.T("Append a scene"),
				Flags:  append(editFlags, &cli.IntFlag{Name: "at", Usage: l10n.T("Insert at this 1-based position instead of appending")}),
				Action: withEnv(true, addScene),
			},
			{
				Name:      "update",
				Usage:     l10n.T("Change a scene"),
				ArgsUsage: "<scene>",
				Flags: append(editFlags,
					&cli.BoolFlag{Name: "clear-audio", Usage: l10n.T("Remove the recorded narration")},
				),
				Action: withEnv(true, updateScene),
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     l10n.T("Remove a scene"),
				ArgsUsage: "<scene>",
				Action: withEnv(true, func(c *cli.Context, e *env) error {
					scene, err := sceneArg(c, e)
					if err != nil {
						return err
					}
					return e.state.Storyboard(func(sb *storyboard.Storyboard) error {
						return sb.Remove(scene.ID)
					})
				}),
			},
			{
				Name:      "move",
				Usage:     l10n.T("Move a scene to a 1-based position"),
				ArgsUsage: "<scene> <position>",
				Action: withEnv(true, func(c *cli.Context, e *env) error {
					scene, err := sceneArg(c, e)
					if err != nil {
						return err
					}
					var pos int
					if _, err := fmt.Sscan(c.Args().Get(1), &pos); err != nil {
						return fmt.Errorf("invalid position %q", c.Args().Get(1))
					}
					return e.state.Storyboard(func(sb *storyboard.Storyboard) error {
						return sb.Move(scene.ID, pos-1)
					})
				}),
			},
			{
				Name:      "link",
				Usage:     l10n.T("Use a gallery item as a scene's media"),
				ArgsUsage: "<scene> <item>",
				Action: withEnv(true, func(c *cli.Context, e *env) error {
					scene, err := sceneArg(c, e)
					if err != nil {
						return err
					}
					item, err := resolveItem(e.state.Gallery().List(), c.Args().Get(1))
					if err != nil {
						return err
					}
					return e.state.LinkGalleryItem(scene.ID, item.ID)
				}),
			},
			{
				Name:      "preview",
				Usage:     l10n.T("Paint a scene's first frame to a PNG file"),
				ArgsUsage: "<scene>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Value: "preview.png", Usage: l10n.T("Output PNG file")},
					&cli.StringFlag{Name: "ratio", Usage: l10n.T("Aspect ratio (16:9 or 9:16)")},
				},
				Action: withEnv(false, previewScene),
			},
		},
	}
}

func sceneArg(c *cli.Context, e *env) (storyboard.Scene, error) {
	if c.NArg() < 1 {
		return storyboard.Scene{}, fmt.Errorf("missing scene argument")
	}
	return resolveScene(e.state.Scenes(), c.Args().First())
}

func listScenes(c *cli.Context, e *env) error {
	scenes := e.state.Scenes()
	if len(scenes) == 0 {
		fmt.Fprintln(c.App.Writer, l10n.T("The storyboard is empty"))
		return nil
	}

	w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tID\tKIND\tDURATION\tVOICE\tAUDIO\tMEDIA\tTEXT")
	var total float64
	for i, s := range scenes {
		audio := "-"
		if s.NarrationAudio != "" {
			audio = "yes"
		}
		media := storyboard.ShortLocator(s.Media.Locator)
		if storyboard.IsExpiredLocator(s.Media.Locator) {
			media = l10n.T("(re-upload required)")
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%.1fs\t%s\t%s\t%s\t%s\n",
			i+1, shortID(s.ID), s.Media.Kind, s.Duration, s.Voice, audio, media, excerpt(s.NarrationText, 40))
		total += s.Duration
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, l10n.F("%d scenes, %.1fs total", len(scenes), total))
	return nil
}

func addScene(c *cli.Context, e *env) error {
	scene := storyboard.NewScene()
	if err := applySceneFlags(c, e, &scene); err != nil {
		return err
	}

	err := e.state.Storyboard(func(sb *storyboard.Storyboard) error {
		if c.IsSet("at") {
			return sb.Insert(c.Int("at")-1, scene)
		}
		return sb.Append(scene)
	})
	if err != nil {
		return err
	}

	if c.IsSet("media") {
		if _, err := e.state.UploadToScene(scene.ID, c.String("media")); err != nil {
			return err
		}
	}
	fmt.Fprintln(c.App.Writer, scene.ID)
	return nil
}

func updateScene(c *cli.Context, e *env) error {
	scene, err := sceneArg(c, e)
	if err != nil {
		return err
	}

	err = e.state.Storyboard(func(sb *storyboard.Storyboard) error {
		return sb.Update(scene.ID, func(s *storyboard.Scene) error {
			if c.Bool("clear-audio") {
				s.NarrationAudio = ""
			}
			return applySceneFlags(c, e, s)
		})
	})
	if err != nil {
		return err
	}

	if c.IsSet("media") {
		_, err = e.state.UploadToScene(scene.ID, c.String("media"))
	}
	return err
}

// applySceneFlags copies the edit flags that were given onto s. --media is
// handled by the caller since it goes through the gallery.
func applySceneFlags(c *cli.Context, e *env, s *storyboard.Scene) error {
	if c.IsSet("text") {
		s.NarrationText = c.String("text")
	}
	if c.IsSet("voice") {
		v, err := storyboard.ParseVoice(c.String("voice"))
		if err != nil {
			return err
		}
		s.Voice = v
	}
	if c.IsSet("duration") {
		if err := storyboard.ValidateDuration(c.Float64("duration")); err != nil {
			return err
		}
		s.Duration = c.Float64("duration")
	}
	if c.IsSet("subtitles") {
		s.SubtitlesEnabled = c.Bool("subtitles")
	}

	sources := 0
	for _, name := range []string{"media", "url", "item"} {
		if c.IsSet(name) {
			sources++
		}
	}
	if sources > 1 {
		return fmt.Errorf("use only one of --media, --url and --item")
	}
	if c.IsSet("url") {
		kind, err := storyboard.ParseMediaKind(c.String("kind"))
		if err != nil {
			return err
		}
		s.Media = storyboard.MediaRef{Locator: c.String("url"), Kind: kind}
	}
	if c.IsSet("item") {
		item, err := resolveItem(e.state.Gallery().List(), c.String("item"))
		if err != nil {
			return err
		}
		ref, err := item.Linkable()
		if err != nil {
			return err
		}
		s.Media = ref
	}
	if c.IsSet("audio") {
		locator, err := audioDataURL(e.fs, c.String("audio"))
		if err != nil {
			return err
		}
		s.NarrationAudio = locator
	}
	return nil
}

// audioDataURL inlines a narration file so it survives a save.
func audioDataURL(fs ports.FileSystem, path string) (string, error) {
	var mimeType string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		mimeType = "audio/wav"
	case ".mp3":
		mimeType = "audio/mpeg"
	case ".ogg", ".oga":
		mimeType = "audio/ogg"
	case ".m4a":
		mimeType = "audio/mp4"
	case ".webm":
		mimeType = "audio/webm"
	default:
		return "", fmt.Errorf("unsupported audio file %s", filepath.Ext(path))
	}
	data, err := fs.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return load.EncodeDataURL(data, mimeType), nil
}

func previewScene(c *cli.Context, e *env) error {
	scene, err := sceneArg(c, e)
	if err != nil {
		return err
	}

	in := pipeline.DefaultLayoutInput()
	in.AspectRatio = e.cfg.Render.Ratio
	if c.IsSet("ratio") {
		in.AspectRatio = c.String("ratio")
	}
	in.Width, in.Height = e.cfg.Render.Width, e.cfg.Render.Height
	lay := layout.ComputeLayout(in)

	renderer := ggrenderer.New()
	loader := load.NewLoader(e.state.Resolver(), renderer, clipdecoder.New(e.log), e.log, load.Options{
		FPS:     e.cfg.Render.FPS,
		Timeout: e.cfg.LoadTimeout(),
	})
	media, err := loader.Load(c.Context, scene.Media)
	if err != nil {
		return err
	}
	defer media.Close()

	frame, err := media.FrameAt(0)
	if err != nil {
		return err
	}

	theme := pipeline.DefaultTheme()
	if e.cfg.Theme.BandColor != "" {
		theme.BandColor = config.ParseColor(e.cfg.Theme.BandColor)
	}
	if e.cfg.Theme.TextColor != "" {
		theme.TextColor = config.ParseColor(e.cfg.Theme.TextColor)
	}
	if e.cfg.Theme.FontSize > 0 {
		theme.FontSize = e.cfg.Theme.FontSize
	}
	theme.FontPath = e.cfg.Theme.FontPath

	painted, err := composite.NewStage(renderer, e.log).Execute(c.Context, pipeline.PaintInput{
		Frame:           frame,
		Kind:            media.Kind(),
		Subtitle:        scene.Subtitle(),
		SubtitleEnabled: scene.SubtitlesEnabled,
		Layout:          lay,
		Theme:           theme,
	})
	if err != nil {
		return err
	}

	data, err := renderer.EncodeImage(painted.Image, ports.FormatPNG, 0)
	if err != nil {
		return err
	}
	out := osExpand(c.String("output"))
	if err := e.fs.WriteFile(out, data); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, out)
	return nil
}
