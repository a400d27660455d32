package storyboard

import (
	"fmt"
	"strings"
	"time"
)

// DefaultInlineCeiling is the longest inline image locator kept across persistence.
const DefaultInlineCeiling = 500000

// BlobScheme prefixes session-only blob handles.
const BlobScheme = "blob:"

// GalleryItem is a reusable media asset.
type GalleryItem struct {
	ID        string    `json:"id"`
	Locator   string    `json:"locator"`
	Kind      MediaKind `json:"kind"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	Ephemeral bool      `json:"ephemeral"`
}

// IsExpired reports whether the item lost its locator in a persistence round-trip.
func (g GalleryItem) IsExpired() bool {
	return IsExpiredLocator(g.Locator)
}

// IsEphemeralLocator reports whether a locator is only valid for the current session.
// Blob handles always are. Inline images longer than inlineCeiling are too,
// matching what persistence keeps.
func IsEphemeralLocator(locator string, kind MediaKind, inlineCeiling int) bool {
	if strings.HasPrefix(locator, BlobScheme) {
		return true
	}
	if inlineCeiling <= 0 {
		inlineCeiling = DefaultInlineCeiling
	}
	return kind == KindImage && len(locator) > inlineCeiling
}

// Persisted returns the form of the item written to durable storage.
func (g GalleryItem) Persisted(inlineCeiling int) GalleryItem {
	if IsEphemeralLocator(g.Locator, g.Kind, inlineCeiling) {
		g.Locator = ExpiredLocator
		g.Ephemeral = true
	}
	return g
}

// Linkable returns the item's media reference, refusing expired items.
func (g GalleryItem) Linkable() (MediaRef, error) {
	if g.IsExpired() {
		return MediaRef{}, fmt.Errorf("%w: %s", ErrReuploadRequired, g.Name)
	}
	return MediaRef{Locator: g.Locator, Kind: g.Kind}, nil
}

// Timestamp formats t as YYYYMMDD-HHMMSS.
func Timestamp(t time.Time) string {
	return t.Format("20060102-150405")
}

// DefaultItemName names an item that was added without one.
func DefaultItemName(kind MediaKind, t time.Time) string {
	return fmt.Sprintf("storyreel-%s-%s", kind, Timestamp(t))
}

// DownloadName returns the file name used when an item is downloaded.
// Names that already carry the timestamp are kept.
func DownloadName(item GalleryItem, ext string, t time.Time) string {
	ts := Timestamp(t)
	if item.Name != "" && strings.Contains(item.Name, ts) {
		if strings.HasSuffix(item.Name, "."+ext) {
			return item.Name
		}
		return item.Name + "." + ext
	}
	return fmt.Sprintf("storyreel-%s-%s.%s", item.Kind, ts, ext)
}
