package main

import (
	"fmt"
	"path/filepath"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/storyreel/pkg/store"
	"github.com/user/storyreel/pkg/storyboard"
)

func generateCommand() *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: l10n.T("Generate media with Gemini"),
		Subcommands: []*cli.Command{
			{
				Name:      "image",
				Usage:     l10n.T("Generate an image into the gallery"),
				ArgsUsage: "<prompt>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "style", Value: "photorealistic", Usage: l10n.T("Visual style")},
					&cli.StringFlag{Name: "ratio", Usage: l10n.T("Aspect ratio (default: the render ratio)")},
					&cli.StringFlag{Name: "scene", Usage: l10n.T("Also link the image into this scene")},
				},
				Action: withEnv(true, generateImage),
			},
			{
				Name:      "narration",
				Usage:     l10n.T("Generate narration audio for a scene's text"),
				ArgsUsage: "<scene>",
				Action: withEnv(true, func(c *cli.Context, e *env) error {
					scene, err := sceneArg(c, e)
					if err != nil {
						return err
					}
					e.log.Info("Generating narration with voice %s", scene.Voice)
					return e.state.GenerateSceneNarration(c.Context, scene.ID)
				}),
			},
			{
				Name:      "voice-preview",
				Usage:     l10n.T("Save a spoken sample of a voice"),
				ArgsUsage: "<voice>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "dir", Value: ".", Usage: l10n.T("Target directory")},
				},
				Action: withEnv(false, previewVoice),
			},
		},
	}
}

func generateImage(c *cli.Context, e *env) error {
	if c.NArg() < 1 {
		return fmt.Errorf("missing prompt")
	}
	ratio := e.cfg.Render.Ratio
	if c.IsSet("ratio") {
		ratio = c.String("ratio")
	}

	var target storyboard.Scene
	if c.IsSet("scene") {
		s, err := resolveScene(e.state.Scenes(), c.String("scene"))
		if err != nil {
			return err
		}
		target = s
	}

	e.log.Info("Generating image...")
	item, err := e.state.GenerateImage(c.Context, c.Args().First(), c.String("style"), ratio)
	if err != nil {
		return err
	}
	if target.ID != "" {
		if err := e.state.LinkGalleryItem(target.ID, item.ID); err != nil {
			return err
		}
	}
	fmt.Fprintln(c.App.Writer, item.ID)
	return nil
}

func previewVoice(c *cli.Context, e *env) error {
	voice, err := storyboard.ParseVoice(c.Args().First())
	if err != nil {
		return err
	}
	asset, err := e.state.PreviewVoice(c.Context, voice)
	if err != nil {
		return err
	}
	// The client wraps raw PCM in WAV
	ext := ".wav"
	if asset.MimeType != "" {
		ext = store.ExtensionFor(asset.MimeType, storyboard.KindVideo)
	}
	out := filepath.Join(osExpand(c.String("dir")), fmt.Sprintf("storyreel-voice-%s%s", voice, ext))
	if err := e.fs.WriteFile(out, asset.Data); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, out)
	return nil
}
