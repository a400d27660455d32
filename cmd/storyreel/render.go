package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/storyreel/pkg/adapters/audiomix"
	"github.com/user/storyreel/pkg/adapters/clipdecoder"
	"github.com/user/storyreel/pkg/adapters/espeak"
	"github.com/user/storyreel/pkg/adapters/ffmpegencoder"
	"github.com/user/storyreel/pkg/adapters/filesink"
	"github.com/user/storyreel/pkg/adapters/frameclock"
	"github.com/user/storyreel/pkg/adapters/ggrenderer"
	"github.com/user/storyreel/pkg/adapters/nullsink"
	"github.com/user/storyreel/pkg/adapters/osfilesystem"
	"github.com/user/storyreel/pkg/adapters/productsink"
	"github.com/user/storyreel/pkg/adapters/smartencoder"
	"github.com/user/storyreel/pkg/config"
	"github.com/user/storyreel/pkg/orchestrator"
	"github.com/user/storyreel/pkg/ports"
	"github.com/user/storyreel/pkg/stages/layout"
	"github.com/user/storyreel/pkg/stages/load"
	"github.com/user/storyreel/pkg/stages/narrate"
	"github.com/user/storyreel/pkg/stages/record"
	"github.com/user/storyreel/pkg/stages/sequence"
	"github.com/user/storyreel/pkg/storyreel"
	"github.com/user/storyreel/pkg/summarizer"
)

func renderCommand() *cli.Command {
	return &cli.Command{
		Name:  "render",
		Usage: l10n.T("Render the storyboard to a video file"),
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: l10n.T("Output file or directory")},
			&cli.StringFlag{Name: "ratio", Usage: l10n.T("Aspect ratio (16:9 or 9:16)")},
			&cli.StringFlag{Name: "codec", Usage: l10n.T("Video codec (vp9 or h264)")},
			&cli.Float64Flag{Name: "fps", Usage: l10n.T("Frames per second")},
			&cli.StringFlag{Name: "quality", Usage: l10n.T("Quality preset (low, medium, high)")},
			&cli.IntFlag{Name: "bitrate", Usage: l10n.T("Target bitrate in kbps (0 for constant quality)")},
			&cli.BoolFlag{Name: "realtime", Usage: l10n.T("Pace the render by the wall clock")},
			&cli.StringFlag{Name: "overflow", Usage: l10n.T("Narration longer than its scene: allow or cut")},
			&cli.BoolFlag{Name: "no-gallery", Usage: l10n.T("Do not add the render to the gallery")},
			&cli.StringFlag{Name: "summary", Usage: l10n.T("Write a Markdown render summary to this file")},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: l10n.T("Save layout, timeline and scene frames")},
			&cli.StringFlag{Name: "debug-dir", Usage: l10n.T("Debug output directory")},
		},
		Action: withEnv(false, runRender),
	}
}

// buildRenderConfig layers the command flags over the configuration file.
func buildRenderConfig(c *cli.Context, cfg config.Config) (storyreel.Config, error) {
	ratio := cfg.Render.Ratio
	if c.IsSet("ratio") {
		ratio = c.String("ratio")
	}
	if ratio != "16:9" && ratio != "9:16" {
		return storyreel.Config{}, fmt.Errorf("invalid ratio %q: use 16:9 or 9:16", ratio)
	}

	cfg.Render.Ratio = ratio
	b := cfg.RenderBuilder()

	if c.IsSet("quality") {
		preset := storyreel.QualityPreset(c.String("quality"))
		switch preset {
		case storyreel.QualityLow, storyreel.QualityMedium, storyreel.QualityHigh:
			b.WithQualityPreset(preset)
		default:
			return storyreel.Config{}, fmt.Errorf("invalid quality preset %q", preset)
		}
	}
	if c.IsSet("codec") {
		b.WithCodec(c.String("codec"))
	}
	if c.IsSet("fps") {
		b.WithFPS(c.Float64("fps"))
	}
	if c.IsSet("bitrate") {
		b.WithBitrate(c.Int("bitrate"))
	}
	if c.IsSet("realtime") {
		b.WithRealtime(c.Bool("realtime"))
	}
	if c.IsSet("overflow") {
		if _, err := narrate.ParseOverflowPolicy(c.String("overflow")); err != nil {
			return storyreel.Config{}, err
		}
		b.WithOverflow(c.String("overflow"))
	}

	rc := b.Build()
	if _, err := ffmpegencoder.ParseCodec(rc.Codec); err != nil {
		return storyreel.Config{}, err
	}
	return rc, nil
}

func runRender(c *cli.Context, e *env) error {
	rc, err := buildRenderConfig(c, e.cfg)
	if err != nil {
		return err
	}
	scenes := e.state.Scenes()
	log := e.log

	codec, _ := ffmpegencoder.ParseCodec(rc.Codec)
	newEncoder, info, err := smartencoder.Factory(codec, smartencoder.Options{Logger: log})
	if err != nil {
		return err
	}
	log.Debug("Encoder: %s (%s)", info.Codec, info.Library)

	overflow, _ := narrate.ParseOverflowPolicy(rc.Overflow)

	renderer := ggrenderer.New()
	var debugSink ports.DebugSink = nullsink.New()
	if c.Bool("debug") {
		dir := e.cfg.Paths.DebugDir
		if c.IsSet("debug-dir") {
			dir = c.String("debug-dir")
		}
		debugSink = filesink.New(osExpand(dir), e.fs, renderer)
		log.Info("Debug output: %s", dir)
	}

	loader := load.NewLoader(e.state.Resolver(), renderer, clipdecoder.New(log), log, load.Options{
		FPS:     rc.FPS,
		Timeout: e.cfg.LoadTimeout(),
	})

	// Generation during a render needs a key; without one the player skips to speech.
	var client ports.GenerativeClient
	if e.cfg.Render.GenerateMissingNarration {
		if cl, err := e.state.Client(); err == nil {
			client = cl
		}
	}
	var speech ports.SpeechSynthesizer
	if path, err := espeak.Find(); err == nil {
		speech = espeak.New(path)
	} else {
		log.Debug("Speech synthesis unavailable: %v", err)
	}
	player := narrate.NewPlayer(e.state.Resolver(), client, speech, log, narrate.Options{
		Overflow:        overflow,
		Language:        rc.Language,
		SpeechVoice:     e.cfg.Render.SpeechVoice,
		WordsPerMinute:  e.cfg.Render.SpeechRate,
		GenerateMissing: client != nil,
	})

	recorder := record.New(record.EncoderFactory(newEncoder), audiomix.New(log), log, record.Options{
		Bitrate: rc.Bitrate,
		Quality: rc.Quality,
	})

	output := e.cfg.Paths.Output
	if c.IsSet("output") {
		output = c.String("output")
	}
	addToGallery := e.cfg.Render.AddToGallery && !c.Bool("no-gallery")
	products := productsink.New(e.fs, log, productsink.Options{
		Output:       osExpand(output),
		AddToGallery: addToGallery,
		Gallery:      e.state.Gallery(),
	})

	refreshHz := e.cfg.Render.RefreshHz
	clocks := func(fps float64) ports.FrameClock {
		if rc.Realtime {
			return frameclock.NewRealtime(refreshHz)
		}
		return frameclock.NewVirtual(fps)
	}

	orch := orchestrator.New(
		layout.NewStage(),
		sequence.NewStage(loader, player, recorder, renderer, debugSink, log),
		products,
		debugSink,
		clocks,
		log,
	)

	var sampler *summarizer.Sampler
	if c.IsSet("summary") {
		sampler = summarizer.StartSampler(200 * time.Millisecond)
	}

	result, err := orch.Run(c.Context, rc.ToOrchestratorConfig(), scenes)
	resources := sampler.Stop()
	if err != nil {
		return err
	}

	if result.GalleryItemID != "" {
		if err := e.state.Save(c.Context); err != nil {
			log.Warn("Failed to save gallery: %v", err)
		}
	}

	fmt.Fprintln(c.App.Writer, result.OutputPath)

	if path := c.String("summary"); path != "" {
		summary := buildSummary(result, rc, resources)
		w := summarizer.NewWriter(summarizer.NewMarkdownFormatter(
			summarizer.WithTranslator(l10n.T),
			summarizer.WithVersion(version),
		), e.fs)
		if err := w.Write(osExpand(path), summary); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
		log.Info("Summary written to %s", path)
	}
	return nil
}

func buildSummary(result orchestrator.RunResult, rc storyreel.Config, resources summarizer.Resources) *summarizer.Summary {
	rows := make([]summarizer.SceneRow, 0, len(result.Timeline))
	for _, t := range result.Timeline {
		row := summarizer.SceneRow{
			Index:     t.Index + 1,
			StartMs:   t.StartMs,
			Frames:    t.Frames,
			Subtitle:  t.Subtitle,
			Narration: string(t.Narration),
		}
		if t.Index < len(result.Scenes) {
			s := result.Scenes[t.Index]
			row.Kind = string(s.Media.Kind)
			row.Duration = s.Duration
			row.Voice = string(s.Voice)
		}
		rows = append(rows, row)
	}

	b := summarizer.NewBuilder().
		WithScenes(rows).
		WithSettings(summarizer.Settings{
			AspectRatio: result.AspectRatio,
			FPS:         result.FPS,
			Codec:       result.Format.Codec,
			Overflow:    result.Overflow,
			Realtime:    result.Realtime,
		}).
		WithVideo(summarizer.VideoInfo{
			FrameCount:   result.FrameCount,
			DurationMs:   result.VideoDuration,
			FileSize:     result.VideoFileSize,
			CanvasWidth:  result.CanvasWidth,
			CanvasHeight: result.CanvasHeight,
			Path:         result.OutputPath,
			GalleryItem:  result.GalleryItemID,
		}).
		WithResources(resources)
	for _, n := range result.Notices {
		b.WithNotice(fmt.Sprintf("%d: %v", n.SceneIndex+1, n.Err))
	}
	if rc.Codec != result.Format.Codec {
		b.WithNotice(fmt.Sprintf("codec %s unavailable, used %s", rc.Codec, result.Format.Codec))
	}
	return b.Build()
}

func osExpand(path string) string {
	if path == "" {
		return path
	}
	return filepath.Clean(osfilesystem.ExpandHome(path))
}
