package studio

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/user/storyreel/pkg/adapters/logger"
	"github.com/user/storyreel/pkg/mocks"
	"github.com/user/storyreel/pkg/ports"
	"github.com/user/storyreel/pkg/store"
	"github.com/user/storyreel/pkg/storyboard"
)

type fixture struct {
	state  *State
	kv     *mocks.KeyValueStore
	fs     *mocks.FileSystem
	client *mocks.GenerativeClient
	keys   []string
}

func newFixture(envKey string) *fixture {
	f := &fixture{
		kv:     mocks.NewKeyValueStore(),
		fs:     mocks.NewFileSystem(),
		client: &mocks.GenerativeClient{},
	}
	f.state = New(Options{
		KV: f.kv,
		FS: f.fs,
		NewClient: func(apiKey string) ports.GenerativeClient {
			f.keys = append(f.keys, apiKey)
			return f.client
		},
		Logger:    logger.NewNoop(),
		EnvAPIKey: envKey,
	})
	return f
}

func TestAPIKey_StoredAndEnv(t *testing.T) {
	ctx := context.Background()
	f := newFixture("")

	if _, err := f.state.Client(); !errors.Is(err, storyboard.ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}

	if err := f.state.SetAPIKey(ctx, "  stored-key "); err != nil {
		t.Fatalf("SetAPIKey failed: %v", err)
	}
	if v, _ := f.kv.Value(store.APIKeyKey); v != "stored-key" {
		t.Errorf("expected trimmed key stored, got %q", v)
	}

	reloaded := newFixture("")
	reloaded.kv = f.kv
	reloaded.state.kv = f.kv
	if err := reloaded.state.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if reloaded.state.APIKey() != "stored-key" {
		t.Errorf("expected stored key after load, got %q", reloaded.state.APIKey())
	}

	env := newFixture("env-key")
	env.state.kv = f.kv
	env.state.Load(ctx)
	if env.state.APIKey() != "env-key" {
		t.Errorf("expected environment key to win, got %q", env.state.APIKey())
	}

	if err := f.state.SetAPIKey(ctx, ""); err != nil {
		t.Fatalf("clearing key failed: %v", err)
	}
	if _, ok := f.kv.Value(store.APIKeyKey); ok {
		t.Error("expected stored key removed")
	}
}

func TestGenerateImage_AddsToGallery(t *testing.T) {
	f := newFixture("k")

	item, err := f.state.GenerateImage(context.Background(), "a fox", "Anime", "16:9")
	if err != nil {
		t.Fatalf("GenerateImage failed: %v", err)
	}
	if f.state.Gallery().Len() != 1 || f.state.Gallery().List()[0].ID != item.ID {
		t.Errorf("expected generated image in gallery")
	}
	if !strings.HasPrefix(item.Locator, "data:image/png;base64,") {
		t.Errorf("expected inline image, got %s", storyboard.ShortLocator(item.Locator))
	}
	if len(f.keys) != 1 || f.keys[0] != "k" {
		t.Errorf("expected client built with key k, got %v", f.keys)
	}
}

func TestGenerateImage_Failure(t *testing.T) {
	f := newFixture("k")
	f.client.GenerateImageFunc = func(ctx context.Context, prompt, style, aspectRatio string) (ports.Asset, error) {
		return ports.Asset{}, errors.New("quota")
	}
	if _, err := f.state.GenerateImage(context.Background(), "a fox", "", "16:9"); err == nil {
		t.Fatal("expected error")
	}
	if f.state.Gallery().Len() != 0 {
		t.Error("expected nothing added on failure")
	}
}

func TestGenerateSceneNarration(t *testing.T) {
	f := newFixture("k")
	scene, _ := f.state.NewScene()

	if err := f.state.GenerateSceneNarration(context.Background(), scene.ID); err == nil {
		t.Error("expected error for scene without text")
	}

	f.state.Storyboard(func(sb *storyboard.Storyboard) error {
		return sb.Update(scene.ID, func(s *storyboard.Scene) error {
			s.NarrationText = "Olá"
			s.Voice = storyboard.VoiceCharon
			return nil
		})
	})
	if err := f.state.GenerateSceneNarration(context.Background(), scene.ID); err != nil {
		t.Fatalf("GenerateSceneNarration failed: %v", err)
	}
	got := f.state.Scenes()[0]
	if !strings.HasPrefix(got.NarrationAudio, "data:audio/wav;base64,") {
		t.Errorf("expected inline narration audio, got %s", storyboard.ShortLocator(got.NarrationAudio))
	}

	f.client.GenerateNarrationAudioFunc = func(ctx context.Context, text string, voice storyboard.Voice) (ports.Asset, error) {
		return ports.Asset{}, errors.New("boom")
	}
	err := f.state.GenerateSceneNarration(context.Background(), scene.ID)
	if !errors.Is(err, storyboard.ErrNarrationGeneration) {
		t.Errorf("expected NarrationGenerationError, got %v", err)
	}
}

func TestPreviewVoice(t *testing.T) {
	f := newFixture("k")
	if _, err := f.state.PreviewVoice(context.Background(), "Alloy"); !errors.Is(err, storyboard.ErrInvalidVoice) {
		t.Errorf("expected ErrInvalidVoice, got %v", err)
	}
	if _, err := f.state.PreviewVoice(context.Background(), storyboard.VoiceFenrir); err != nil {
		t.Fatalf("PreviewVoice failed: %v", err)
	}
	if len(f.client.PreviewVoices) != 1 || f.client.PreviewVoices[0] != storyboard.VoiceFenrir {
		t.Errorf("unexpected preview calls %v", f.client.PreviewVoices)
	}
}

func TestLinkAndUpload(t *testing.T) {
	f := newFixture("")
	scene, _ := f.state.NewScene()

	expired, _ := f.state.Gallery().AddLocator(storyboard.ExpiredLocator, storyboard.KindVideo, "old")
	if err := f.state.LinkGalleryItem(scene.ID, expired.ID); !errors.Is(err, storyboard.ErrReuploadRequired) {
		t.Errorf("expected ErrReuploadRequired, got %v", err)
	}

	f.fs.WriteFile("/videos/clip.mp4", []byte("mp4"))
	item, err := f.state.UploadToScene(scene.ID, "/videos/clip.mp4")
	if err != nil {
		t.Fatalf("UploadToScene failed: %v", err)
	}
	got := f.state.Scenes()[0]
	if got.Media.Kind != storyboard.KindVideo || got.Media.Locator != item.Locator {
		t.Errorf("expected scene linked to uploaded clip, got %+v", got.Media)
	}
	if item.Name != "clip.mp4" {
		t.Errorf("expected file name kept, got %s", item.Name)
	}

	if _, err := f.state.UploadToScene(scene.ID, "/notes.txt"); !errors.Is(err, storyboard.ErrInvalidMediaKind) {
		t.Errorf("expected ErrInvalidMediaKind, got %v", err)
	}
	if _, err := f.state.UploadToScene("missing", "/videos/clip.mp4"); !errors.Is(err, storyboard.ErrSceneNotFound) {
		t.Errorf("expected ErrSceneNotFound, got %v", err)
	}
}

func TestSaveLoadReset(t *testing.T) {
	ctx := context.Background()
	f := newFixture("")
	f.state.NewScene()
	f.state.Gallery().AddLocator("https://example.com/a.png", storyboard.KindImage, "a")
	f.state.SetAPIKey(ctx, "k")

	if err := f.state.Save(ctx); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	other := newFixture("")
	other.state.kv = f.kv
	other.state.gallery = store.NewGallery(f.kv, other.fs, other.state.resolver, store.GalleryOptions{})
	other.state.storyboards = store.NewStoryboards(f.kv)
	if err := other.state.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(other.state.Scenes()) != 1 || other.state.Gallery().Len() != 1 {
		t.Errorf("expected 1 scene and 1 item, got %d and %d", len(other.state.Scenes()), other.state.Gallery().Len())
	}

	if err := other.state.Reset(ctx); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if len(other.state.Scenes()) != 0 || other.state.Gallery().Len() != 0 || other.state.APIKey() != "" {
		t.Error("expected empty state after reset")
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		path string
		kind storyboard.MediaKind
		err  bool
	}{
		{"a.PNG", storyboard.KindImage, false},
		{"a.jpeg", storyboard.KindImage, false},
		{"a.webm", storyboard.KindVideo, false},
		{"a.mov", storyboard.KindVideo, false},
		{"a.txt", "", true},
	}
	for _, tt := range tests {
		kind, _, err := KindOf(tt.path)
		if (err != nil) != tt.err || kind != tt.kind {
			t.Errorf("KindOf(%s) = %s, %v", tt.path, kind, err)
		}
	}
}
