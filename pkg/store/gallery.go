// Package store persists the gallery and the storyboard in a key-value store.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/user/storyreel/pkg/ports"
	"github.com/user/storyreel/pkg/stages/load"
	"github.com/user/storyreel/pkg/storyboard"
)

// Storage keys.
const (
	GalleryKey    = "storyreel_gallery_v1"
	StoryboardKey = "storyreel_storyboard_v1"
	APIKeyKey     = "GEMINI_API_KEY"
)

// GalleryOptions configures where added assets live.
type GalleryOptions struct {
	// InlineCeiling is the longest image data: URL kept inline (default: 500000).
	InlineCeiling int
	// MediaDir receives assets too large to inline. Empty keeps them as
	// session blobs, which expire when the gallery is saved.
	MediaDir string
	// Now is the clock used for CreatedAt and file names.
	Now func() time.Time
}

// Gallery is the ordered, newest-first list of reusable assets.
type Gallery struct {
	kv       ports.KeyValueStore
	fs       ports.FileSystem
	resolver *load.Resolver
	opts     GalleryOptions

	mu    sync.RWMutex
	items []storyboard.GalleryItem
}

// NewGallery creates an empty gallery. Call Load to read persisted items.
func NewGallery(kv ports.KeyValueStore, fs ports.FileSystem, resolver *load.Resolver, opts GalleryOptions) *Gallery {
	if opts.InlineCeiling <= 0 {
		opts.InlineCeiling = storyboard.DefaultInlineCeiling
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Gallery{kv: kv, fs: fs, resolver: resolver, opts: opts}
}

// List returns the items, newest first.
func (g *Gallery) List() []storyboard.GalleryItem {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]storyboard.GalleryItem, len(g.items))
	copy(out, g.items)
	return out
}

// Len returns the number of items.
func (g *Gallery) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.items)
}

// Get returns the item with id.
func (g *Gallery) Get(id string) (storyboard.GalleryItem, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	i := g.indexOf(id)
	if i < 0 {
		return storyboard.GalleryItem{}, fmt.Errorf("%w: %s", storyboard.ErrItemNotFound, id)
	}
	return g.items[i], nil
}

// Add stores asset bytes as a new item at the front of the gallery.
// Small images are inlined as data: URLs. Anything larger is written to the
// media directory, or registered as a session blob when there is none.
func (g *Gallery) Add(asset ports.Asset, kind storyboard.MediaKind, name string) (storyboard.GalleryItem, error) {
	if !kind.Valid() {
		return storyboard.GalleryItem{}, fmt.Errorf("%w: %q", storyboard.ErrInvalidMediaKind, kind)
	}
	if len(asset.Data) == 0 {
		return storyboard.GalleryItem{}, fmt.Errorf("store: empty %s asset", kind)
	}

	now := g.opts.Now()
	item := storyboard.GalleryItem{
		ID:        uuid.NewString(),
		Kind:      kind,
		Name:      name,
		CreatedAt: now,
	}
	if item.Name == "" {
		item.Name = storyboard.DefaultItemName(kind, now)
	}

	mimeType := asset.MimeType
	if mimeType == "" {
		mimeType = defaultMime(kind)
	}

	inline := load.EncodeDataURL(asset.Data, mimeType)
	switch {
	case kind == storyboard.KindImage && len(inline) <= g.opts.InlineCeiling:
		item.Locator = inline
	case g.opts.MediaDir != "":
		p := filepath.Join(g.opts.MediaDir, item.ID+ExtensionFor(mimeType, kind))
		if err := g.fs.WriteFile(p, asset.Data); err != nil {
			return storyboard.GalleryItem{}, fmt.Errorf("store media file: %w", err)
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = p
		}
		item.Locator = abs
	default:
		item.Locator = g.resolver.Blobs().Register(asset.Data, mimeType)
		item.Ephemeral = true
	}

	g.prepend(item)
	return item, nil
}

// AddLocator links an existing URL or file path as a new item.
func (g *Gallery) AddLocator(locator string, kind storyboard.MediaKind, name string) (storyboard.GalleryItem, error) {
	if !kind.Valid() {
		return storyboard.GalleryItem{}, fmt.Errorf("%w: %q", storyboard.ErrInvalidMediaKind, kind)
	}
	if strings.TrimSpace(locator) == "" {
		return storyboard.GalleryItem{}, fmt.Errorf("store: empty locator")
	}

	now := g.opts.Now()
	item := storyboard.GalleryItem{
		ID:        uuid.NewString(),
		Locator:   locator,
		Kind:      kind,
		Name:      name,
		CreatedAt: now,
		Ephemeral: storyboard.IsEphemeralLocator(locator, kind, g.opts.InlineCeiling),
	}
	if item.Name == "" {
		item.Name = storyboard.DefaultItemName(kind, now)
	}
	g.prepend(item)
	return item, nil
}

func (g *Gallery) prepend(item storyboard.GalleryItem) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.items = append([]storyboard.GalleryItem{item}, g.items...)
}

// Remove deletes an item. Session blobs behind it are released.
func (g *Gallery) Remove(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	i := g.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", storyboard.ErrItemNotFound, id)
	}
	if load.IsBlob(g.items[i].Locator) {
		g.resolver.Blobs().Revoke(g.items[i].Locator)
	}
	g.items = append(g.items[:i], g.items[i+1:]...)
	return nil
}

// Reorder replaces the order with ids, which must be a permutation of the current IDs.
func (g *Gallery) Reorder(ids []string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(ids) != len(g.items) {
		return fmt.Errorf("store: reorder needs %d ids, got %d", len(g.items), len(ids))
	}

	byID := make(map[string]storyboard.GalleryItem, len(g.items))
	for _, it := range g.items {
		byID[it.ID] = it
	}
	next := make([]storyboard.GalleryItem, 0, len(ids))
	for _, id := range ids {
		it, ok := byID[id]
		if !ok {
			return fmt.Errorf("%w: %s", storyboard.ErrItemNotFound, id)
		}
		delete(byID, id)
		next = append(next, it)
	}
	g.items = next
	return nil
}

// Move takes the item out of the list and reinserts it at index.
func (g *Gallery) Move(id string, index int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	i := g.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", storyboard.ErrItemNotFound, id)
	}
	if index < 0 || index >= len(g.items) {
		return fmt.Errorf("store: index %d out of range [0,%d)", index, len(g.items))
	}
	it := g.items[i]
	g.items = append(g.items[:i], g.items[i+1:]...)
	g.items = append(g.items[:index], append([]storyboard.GalleryItem{it}, g.items[index:]...)...)
	return nil
}

// Resolve returns the media reference of an item for linking into a scene.
func (g *Gallery) Resolve(id string) (storyboard.MediaRef, error) {
	it, err := g.Get(id)
	if err != nil {
		return storyboard.MediaRef{}, err
	}
	return it.Linkable()
}

// Download writes the item into dir under its conventional file name.
func (g *Gallery) Download(ctx context.Context, id, dir string) (string, error) {
	it, err := g.Get(id)
	if err != nil {
		return "", err
	}
	if it.IsExpired() {
		return "", fmt.Errorf("%w: %s", storyboard.ErrReuploadRequired, it.Name)
	}

	data, mimeType, err := g.resolver.Fetch(ctx, it.Locator)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", it.Name, err)
	}
	ext := strings.TrimPrefix(ExtensionFor(mimeType, it.Kind), ".")
	if mimeType == "" {
		if e := strings.TrimPrefix(path.Ext(it.Locator), "."); e != "" && len(e) <= 4 {
			ext = strings.ToLower(e)
		}
	}

	out := filepath.Join(dir, storyboard.DownloadName(it, ext, g.opts.Now()))
	if err := g.fs.WriteFile(out, data); err != nil {
		return "", fmt.Errorf("write %s: %w", out, err)
	}
	return out, nil
}

// Save persists the gallery. Session-only locators are written as expired.
func (g *Gallery) Save(ctx context.Context) error {
	g.mu.RLock()
	persisted := make([]storyboard.GalleryItem, len(g.items))
	for i, it := range g.items {
		persisted[i] = it.Persisted(g.opts.InlineCeiling)
	}
	g.mu.RUnlock()

	data, err := json.Marshal(persisted)
	if err != nil {
		return fmt.Errorf("marshal gallery: %w", err)
	}
	return g.kv.Set(ctx, GalleryKey, string(data))
}

// Load replaces the in-memory items with the persisted ones.
func (g *Gallery) Load(ctx context.Context) error {
	raw, ok, err := g.kv.Get(ctx, GalleryKey)
	if err != nil {
		return fmt.Errorf("load gallery: %w", err)
	}
	var items []storyboard.GalleryItem
	if ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			return fmt.Errorf("parse gallery: %w", err)
		}
	}
	g.mu.Lock()
	g.items = items
	g.mu.Unlock()
	return nil
}

func (g *Gallery) indexOf(id string) int {
	for i, it := range g.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// ExtensionFor returns a file extension (with dot) for mimeType.
func ExtensionFor(mimeType string, kind storyboard.MediaKind) string {
	mt := strings.ToLower(strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0]))
	switch mt {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	case "video/mp4":
		return ".mp4"
	case "video/webm":
		return ".webm"
	case "video/quicktime":
		return ".mov"
	case "audio/wav", "audio/x-wav", "audio/wave":
		return ".wav"
	}
	if kind == storyboard.KindVideo {
		return ".webm"
	}
	return ".png"
}

func defaultMime(kind storyboard.MediaKind) string {
	if kind == storyboard.KindVideo {
		return "video/webm"
	}
	return "image/png"
}
