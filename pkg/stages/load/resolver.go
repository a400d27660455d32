package load

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/user/storyreel/pkg/ports"
	"github.com/user/storyreel/pkg/storyboard"
)

// maxRemoteSize caps remote downloads.
var maxRemoteSize int64 = 512 << 20

// ErrTooLarge is returned for remote assets over the download cap.
var ErrTooLarge = errors.New("remote asset too large")

// Resolver turns locators into bytes or local paths.
type Resolver struct {
	fs     ports.FileSystem
	blobs  *BlobRegistry
	client *http.Client
}

// NewResolver creates a resolver. blobs may be nil when no session blobs exist.
func NewResolver(fs ports.FileSystem, blobs *BlobRegistry) *Resolver {
	if blobs == nil {
		blobs = NewBlobRegistry()
	}
	return &Resolver{fs: fs, blobs: blobs, client: http.DefaultClient}
}

// WithHTTPClient replaces the client used for remote locators.
func (r *Resolver) WithHTTPClient(c *http.Client) *Resolver {
	r.client = c
	return r
}

// Blobs returns the session blob registry.
func (r *Resolver) Blobs() *BlobRegistry {
	return r.blobs
}

// Check reports whether locator can still be resolved without fetching it.
// The expired sentinel and blob handles unknown to this session are expired.
func (r *Resolver) Check(locator string) error {
	switch {
	case locator == "":
		return fmt.Errorf("empty locator")
	case storyboard.IsExpiredLocator(locator):
		return storyboard.ErrExpiredMedia
	case IsBlob(locator):
		if _, _, ok := r.blobs.Get(locator); !ok {
			return fmt.Errorf("%w: unknown blob handle", storyboard.ErrExpiredMedia)
		}
	}
	return nil
}

// Fetch returns the content behind locator and its MIME type when known.
func (r *Resolver) Fetch(ctx context.Context, locator string) ([]byte, string, error) {
	switch {
	case locator == "":
		return nil, "", fmt.Errorf("empty locator")
	case storyboard.IsExpiredLocator(locator):
		return nil, "", storyboard.ErrExpiredMedia
	case strings.HasPrefix(locator, "data:"):
		return DecodeDataURL(locator)
	case strings.HasPrefix(locator, "http://"), strings.HasPrefix(locator, "https://"):
		return r.fetchRemote(ctx, locator)
	case IsBlob(locator):
		data, mimeType, ok := r.blobs.Get(locator)
		if !ok {
			// Handles from a previous session are gone
			return nil, "", fmt.Errorf("%w: unknown blob handle", storyboard.ErrExpiredMedia)
		}
		return data, mimeType, nil
	default:
		path, err := FilePath(locator)
		if err != nil {
			return nil, "", err
		}
		data, err := r.fs.ReadFile(path)
		if err != nil {
			return nil, "", fmt.Errorf("read %s: %w", path, err)
		}
		return data, "", nil
	}
}

// LocalPath returns a filesystem path holding the content behind locator.
// Local files are used in place; other locators are copied to a temp file
// that cleanup removes.
func (r *Resolver) LocalPath(ctx context.Context, locator, pattern string) (string, func(), error) {
	if isLocal(locator) {
		path, err := FilePath(locator)
		if err != nil {
			return "", nil, err
		}
		if ok, err := r.fs.Exists(path); err != nil || !ok {
			return "", nil, fmt.Errorf("file not found: %s", path)
		}
		return path, func() {}, nil
	}

	data, _, err := r.Fetch(ctx, locator)
	if err != nil {
		return "", nil, err
	}
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}
	path := f.Name()
	cleanup := func() { os.Remove(path) }
	if _, err := f.Write(data); err != nil {
		f.Close()
		cleanup()
		return "", nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("close temp file: %w", err)
	}
	return path, cleanup, nil
}

func (r *Resolver) fetchRemote(ctx context.Context, locator string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch %s: %w", storyboard.ShortLocator(locator), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetch %s: status %d", storyboard.ShortLocator(locator), resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", storyboard.ShortLocator(locator), err)
	}
	if int64(len(data)) > maxRemoteSize {
		return nil, "", fmt.Errorf("fetch %s: %w (over %d bytes)", storyboard.ShortLocator(locator), ErrTooLarge, maxRemoteSize)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

func isLocal(locator string) bool {
	return !strings.HasPrefix(locator, "data:") &&
		!strings.HasPrefix(locator, "http://") &&
		!strings.HasPrefix(locator, "https://") &&
		!IsBlob(locator) &&
		!storyboard.IsExpiredLocator(locator)
}

// FilePath converts a file:// URL or plain path to a filesystem path.
func FilePath(locator string) (string, error) {
	if !strings.HasPrefix(locator, "file://") {
		return filepath.FromSlash(locator), nil
	}
	u, err := url.Parse(locator)
	if err != nil {
		return "", fmt.Errorf("parse file URL: %w", err)
	}
	return filepath.FromSlash(u.Path), nil
}

// DecodeDataURL decodes a data: URL, base64 or percent-encoded.
func DecodeDataURL(locator string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(locator, "data:")
	if !ok {
		return nil, "", fmt.Errorf("not a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", fmt.Errorf("malformed data URL")
	}

	isBase64 := false
	mimeType := ""
	for i, part := range strings.Split(meta, ";") {
		if i == 0 {
			mimeType = part
			continue
		}
		if part == "base64" {
			isBase64 = true
		}
	}

	if isBase64 {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			// Some producers strip padding
			data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
			if err != nil {
				return nil, "", fmt.Errorf("decode base64 payload: %w", err)
			}
		}
		return data, mimeType, nil
	}

	text, err := url.PathUnescape(payload)
	if err != nil {
		return nil, "", fmt.Errorf("decode data URL payload: %w", err)
	}
	return []byte(text), mimeType, nil
}

// EncodeDataURL builds a base64 data: URL.
func EncodeDataURL(data []byte, mimeType string) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
