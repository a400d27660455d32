// Package studio holds the application state shared by the CLI commands:
// the API key, the gallery, the storyboard and the session blobs.
package studio

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"sync"

	"github.com/user/storyreel/pkg/ports"
	"github.com/user/storyreel/pkg/stages/load"
	"github.com/user/storyreel/pkg/store"
	"github.com/user/storyreel/pkg/storyboard"
)

// ClientFactory builds a generative client for an API key.
type ClientFactory func(apiKey string) ports.GenerativeClient

// Options configures the state.
type Options struct {
	KV        ports.KeyValueStore
	FS        ports.FileSystem
	Gallery   store.GalleryOptions
	NewClient ClientFactory
	Logger    ports.Logger

	// EnvAPIKey comes from the environment or a .env file and wins over the stored key.
	EnvAPIKey string
}

// State is the composition root state. Load and Save are the only
// persistence boundaries.
type State struct {
	kv          ports.KeyValueStore
	fs          ports.FileSystem
	newClient   ClientFactory
	logger      ports.Logger
	envAPIKey   string
	blobs       *load.BlobRegistry
	resolver    *load.Resolver
	gallery     *store.Gallery
	storyboards *store.Storyboards

	mu         sync.Mutex
	apiKey     string
	storyboard *storyboard.Storyboard
}

// New creates an empty state.
func New(opts Options) *State {
	blobs := load.NewBlobRegistry()
	resolver := load.NewResolver(opts.FS, blobs)
	sb, _ := storyboard.New()
	return &State{
		kv:          opts.KV,
		fs:          opts.FS,
		newClient:   opts.NewClient,
		logger:      opts.Logger.WithComponent("studio"),
		envAPIKey:   strings.TrimSpace(opts.EnvAPIKey),
		blobs:       blobs,
		resolver:    resolver,
		gallery:     store.NewGallery(opts.KV, opts.FS, resolver, opts.Gallery),
		storyboards: store.NewStoryboards(opts.KV),
		storyboard:  sb,
		apiKey:      strings.TrimSpace(opts.EnvAPIKey),
	}
}

// WithHTTPClient sets the client used to fetch remote locators.
func (s *State) WithHTTPClient(c *http.Client) *State {
	s.resolver.WithHTTPClient(c)
	return s
}

// Load reads the API key, the gallery and the storyboard.
func (s *State) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.envAPIKey == "" {
		key, _, err := s.kv.Get(ctx, store.APIKeyKey)
		if err != nil {
			return fmt.Errorf("load API key: %w", err)
		}
		s.apiKey = strings.TrimSpace(key)
	}
	if err := s.gallery.Load(ctx); err != nil {
		return err
	}
	sb, err := s.storyboards.Load(ctx)
	if err != nil {
		return err
	}
	s.storyboard = sb
	s.logger.Debug("State loaded: %d gallery items, %d scenes", s.gallery.Len(), sb.Len())
	return nil
}

// Save persists the gallery and the storyboard.
func (s *State) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.gallery.Save(ctx); err != nil {
		return err
	}
	return s.storyboards.Save(ctx, s.storyboard)
}

// Reset clears every stored value and the in-memory state.
func (s *State) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range []string{store.GalleryKey, store.StoryboardKey, store.APIKeyKey} {
		if err := s.kv.Delete(ctx, key); err != nil {
			return err
		}
	}
	s.apiKey = s.envAPIKey
	s.storyboard, _ = storyboard.New()
	return s.gallery.Load(ctx)
}

// APIKey returns the active API key.
func (s *State) APIKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apiKey
}

// SetAPIKey stores key. An empty key removes the stored one.
func (s *State) SetAPIKey(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if key == "" {
		if err := s.kv.Delete(ctx, store.APIKeyKey); err != nil {
			return err
		}
		s.apiKey = s.envAPIKey
		return nil
	}
	if err := s.kv.Set(ctx, store.APIKeyKey, key); err != nil {
		return err
	}
	s.apiKey = key
	return nil
}

// Gallery returns the gallery.
func (s *State) Gallery() *store.Gallery { return s.gallery }

// Resolver returns the locator resolver bound to the session blobs.
func (s *State) Resolver() *load.Resolver { return s.resolver }

// Storyboard calls fn with the storyboard under the state lock.
func (s *State) Storyboard(fn func(sb *storyboard.Storyboard) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.storyboard)
}

// Scenes returns a snapshot of the storyboard.
func (s *State) Scenes() []storyboard.Scene {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storyboard.Snapshot()
}

// ReplaceStoryboard swaps in sb, e.g. after an import.
func (s *State) ReplaceStoryboard(sb *storyboard.Storyboard) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.storyboard = sb
}

// Client returns a generative client for the active key.
func (s *State) Client() (ports.GenerativeClient, error) {
	key := s.APIKey()
	if key == "" || s.newClient == nil {
		return nil, storyboard.ErrMissingAPIKey
	}
	return s.newClient(key), nil
}

// GenerateImage generates an image and adds it to the gallery.
func (s *State) GenerateImage(ctx context.Context, prompt, style, ratio string) (storyboard.GalleryItem, error) {
	if strings.TrimSpace(prompt) == "" {
		return storyboard.GalleryItem{}, fmt.Errorf("studio: empty prompt")
	}
	client, err := s.Client()
	if err != nil {
		return storyboard.GalleryItem{}, err
	}
	asset, err := client.GenerateImage(ctx, prompt, style, ratio)
	if err != nil {
		return storyboard.GalleryItem{}, fmt.Errorf("generate image: %w", err)
	}
	item, err := s.gallery.Add(asset, storyboard.KindImage, "")
	if err != nil {
		return storyboard.GalleryItem{}, err
	}
	s.logger.Debug("Generated image added to gallery: %s", item.Name)
	return item, nil
}

// GenerateSceneNarration generates narration audio for a scene's text and
// stores it on the scene as an inline data URL.
func (s *State) GenerateSceneNarration(ctx context.Context, sceneID string) error {
	scene, err := s.scene(sceneID)
	if err != nil {
		return err
	}
	if strings.TrimSpace(scene.NarrationText) == "" {
		return fmt.Errorf("studio: scene %s has no narration text", sceneID)
	}
	client, err := s.Client()
	if err != nil {
		return err
	}

	asset, err := client.GenerateNarrationAudio(ctx, scene.NarrationText, scene.Voice)
	if err != nil {
		return &storyboard.NarrationGenerationError{SceneID: sceneID, Voice: scene.Voice, Err: err}
	}
	locator := load.EncodeDataURL(asset.Data, asset.MimeType)

	return s.Storyboard(func(sb *storyboard.Storyboard) error {
		return sb.Update(sceneID, func(sc *storyboard.Scene) error {
			sc.NarrationAudio = locator
			return nil
		})
	})
}

// PreviewVoice returns a spoken sample of voice.
func (s *State) PreviewVoice(ctx context.Context, voice storyboard.Voice) (ports.Asset, error) {
	if !voice.Valid() {
		return ports.Asset{}, fmt.Errorf("%w: %q", storyboard.ErrInvalidVoice, voice)
	}
	client, err := s.Client()
	if err != nil {
		return ports.Asset{}, err
	}
	return client.PreviewVoice(ctx, voice)
}

// NewScene appends a scene with the default settings and returns it.
func (s *State) NewScene() (storyboard.Scene, error) {
	scene := storyboard.NewScene()
	err := s.Storyboard(func(sb *storyboard.Storyboard) error {
		return sb.Append(scene)
	})
	return scene, err
}

// LinkGalleryItem points a scene's media at a gallery item.
func (s *State) LinkGalleryItem(sceneID, itemID string) error {
	ref, err := s.gallery.Resolve(itemID)
	if err != nil {
		return err
	}
	return s.Storyboard(func(sb *storyboard.Storyboard) error {
		return sb.Update(sceneID, func(sc *storyboard.Scene) error {
			sc.Media = ref
			return nil
		})
	})
}

// Upload adds a local file to the gallery. The kind follows the file extension.
func (s *State) Upload(path string) (storyboard.GalleryItem, error) {
	kind, mimeType, err := KindOf(path)
	if err != nil {
		return storyboard.GalleryItem{}, err
	}
	data, err := s.fs.ReadFile(path)
	if err != nil {
		return storyboard.GalleryItem{}, fmt.Errorf("read %s: %w", path, err)
	}
	return s.gallery.Add(ports.Asset{Data: data, MimeType: mimeType}, kind, filepath.Base(path))
}

// UploadToScene adds a local file to the gallery and links it into a scene.
func (s *State) UploadToScene(sceneID, path string) (storyboard.GalleryItem, error) {
	if _, err := s.scene(sceneID); err != nil {
		return storyboard.GalleryItem{}, err
	}
	item, err := s.Upload(path)
	if err != nil {
		return storyboard.GalleryItem{}, err
	}
	return item, s.LinkGalleryItem(sceneID, item.ID)
}

func (s *State) scene(id string) (storyboard.Scene, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	scene, _, ok := s.storyboard.Find(id)
	if !ok {
		return storyboard.Scene{}, fmt.Errorf("%w: %s", storyboard.ErrSceneNotFound, id)
	}
	return scene, nil
}

// KindOf classifies a media file by extension.
func KindOf(path string) (storyboard.MediaKind, string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return storyboard.KindImage, "image/png", nil
	case ".jpg", ".jpeg":
		return storyboard.KindImage, "image/jpeg", nil
	case ".webp":
		return storyboard.KindImage, "image/webp", nil
	case ".gif":
		return storyboard.KindImage, "image/gif", nil
	case ".mp4", ".m4v":
		return storyboard.KindVideo, "video/mp4", nil
	case ".webm":
		return storyboard.KindVideo, "video/webm", nil
	case ".mov":
		return storyboard.KindVideo, "video/quicktime", nil
	default:
		return "", "", fmt.Errorf("%w: unsupported file type %s", storyboard.ErrInvalidMediaKind, filepath.Ext(path))
	}
}
