// Package narrate implements the narration player.
package narrate

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/user/storyreel/pkg/pipeline"
	"github.com/user/storyreel/pkg/ports"
	"github.com/user/storyreel/pkg/stages/load"
	"github.com/user/storyreel/pkg/storyboard"
)

// OverflowPolicy decides what happens to recorded narration that outlasts its scene.
type OverflowPolicy string

const (
	// OverflowAllow lets recorded audio play to its natural end.
	OverflowAllow OverflowPolicy = "allow"
	// OverflowCut trims recorded audio at the scene end.
	OverflowCut OverflowPolicy = "cut"
)

// ParseOverflowPolicy parses "allow" or "cut". Empty selects allow.
func ParseOverflowPolicy(s string) (OverflowPolicy, error) {
	switch OverflowPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", OverflowAllow:
		return OverflowAllow, nil
	case OverflowCut:
		return OverflowCut, nil
	default:
		return "", fmt.Errorf("invalid narration overflow policy %q (want allow or cut)", s)
	}
}

// DefaultLanguage is the speech fallback language.
const DefaultLanguage = "pt-BR"

// Options configures the player.
type Options struct {
	Overflow        OverflowPolicy
	Language        string // Speech language (default: pt-BR)
	SpeechVoice     string // Engine voice; empty uses the language default
	WordsPerMinute  int
	GenerateMissing bool // Ask the generative client for scenes with text but no audio
}

// Player starts scene narration on the render timeline.
type Player struct {
	resolver *load.Resolver
	client   ports.GenerativeClient
	speech   ports.SpeechSynthesizer
	logger   ports.Logger
	opts     Options
}

// NewPlayer creates a narration player. client and speech may be nil.
func NewPlayer(resolver *load.Resolver, client ports.GenerativeClient, speech ports.SpeechSynthesizer, logger ports.Logger, opts Options) *Player {
	if opts.Overflow == "" {
		opts.Overflow = OverflowAllow
	}
	if opts.Language == "" {
		opts.Language = DefaultLanguage
	}
	return &Player{
		resolver: resolver,
		client:   client,
		speech:   speech,
		logger:   logger.WithComponent("narrate"),
		opts:     opts,
	}
}

// Play places the narration of scene at timeline time at.
// Narration failures become notices on the playback; only cancellation is an error.
func (p *Player) Play(ctx context.Context, scene storyboard.Scene, at time.Duration) (pipeline.Playback, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pb := &playback{sceneID: scene.ID, source: pipeline.NarrationNone, start: at}

	if scene.NarrationAudio != "" {
		data, mimeType, err := p.resolver.Fetch(ctx, scene.NarrationAudio)
		if err == nil {
			pb.place(pipeline.NarrationRecorded, data, mimeType, p.opts.Overflow == OverflowCut)
			p.logger.Debug("Scene %s: recorded narration, %d bytes", scene.ID, len(data))
			return pb, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		pb.notice(fmt.Errorf("scene %s: narration audio %s: %w", scene.ID, storyboard.ShortLocator(scene.NarrationAudio), err))
		p.logger.Warn("Narration audio unavailable for scene %s: %v", scene.ID, err)
	}

	text := strings.TrimSpace(scene.NarrationText)
	if text == "" {
		return pb, nil
	}

	if p.opts.GenerateMissing && p.client != nil {
		asset, err := p.client.GenerateNarrationAudio(ctx, text, scene.Voice)
		if err == nil {
			pb.place(pipeline.NarrationGenerated, asset.Data, asset.MimeType, p.opts.Overflow == OverflowCut)
			p.logger.Debug("Scene %s: generated narration with voice %s", scene.ID, scene.Voice)
			return pb, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		genErr := &storyboard.NarrationGenerationError{SceneID: scene.ID, Voice: scene.Voice, Err: err}
		pb.notice(genErr)
		p.logger.Warn("Narration generation failed, falling back to speech: %v", genErr)
	}

	if p.speech == nil {
		return pb, nil
	}
	data, err := p.speech.Synthesize(ctx, text, ports.SpeechOptions{
		Language:       p.opts.Language,
		Voice:          p.opts.SpeechVoice,
		WordsPerMinute: p.opts.WordsPerMinute,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		pb.notice(fmt.Errorf("scene %s: speech synthesis: %w", scene.ID, err))
		p.logger.Warn("Speech synthesis failed, scene %s stays silent: %v", scene.ID, err)
		return pb, nil
	}
	// Speech never outlives its scene
	pb.place(pipeline.NarrationSpeech, data, "audio/wav", true)
	p.logger.Debug("Scene %s: speech fallback, %d bytes", scene.ID, len(data))
	return pb, nil
}

var _ pipeline.NarrationPlayer = (*Player)(nil)

// playback is one scene's narration.
type playback struct {
	mu       sync.Mutex
	sceneID  string
	source   pipeline.NarrationSource
	start    time.Duration
	end      time.Duration
	canceled bool
	cut      bool
	data     []byte
	mimeType string
	notices  []error
}

func (pb *playback) place(source pipeline.NarrationSource, data []byte, mimeType string, cut bool) {
	pb.source = source
	pb.data = data
	pb.mimeType = mimeType
	pb.cut = cut
}

func (pb *playback) notice(err error) {
	pb.notices = append(pb.notices, err)
}

func (pb *playback) Source() pipeline.NarrationSource {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	return pb.source
}

// Cancel ends the playback at timeline time at. Later calls are ignored.
func (pb *playback) Cancel(at time.Duration) {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	if pb.canceled {
		return
	}
	pb.canceled = true
	pb.end = at
}

func (pb *playback) Cues() []ports.NarrationCue {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	if len(pb.data) == 0 {
		return nil
	}
	cue := ports.NarrationCue{
		SceneID:  pb.sceneID,
		Data:     pb.data,
		MimeType: pb.mimeType,
		StartMs:  int(pb.start / time.Millisecond),
	}
	if pb.cut && pb.canceled {
		cue.MaxMs = int((pb.end - pb.start) / time.Millisecond)
		if cue.MaxMs <= 0 {
			return nil
		}
	}
	return []ports.NarrationCue{cue}
}

func (pb *playback) Notices() []error {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	return append([]error(nil), pb.notices...)
}
