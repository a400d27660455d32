// Package productsink delivers finished renders to the file system and,
// optionally, to the gallery.
package productsink

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/user/storyreel/pkg/adapters/codecdetect"
	"github.com/user/storyreel/pkg/ports"
	"github.com/user/storyreel/pkg/storyboard"
)

// ErrEmptyProduct is returned for a product without data.
var ErrEmptyProduct = errors.New("productsink: empty product")

// Gallery receives delivered renders.
type Gallery interface {
	AddLocator(locator string, kind storyboard.MediaKind, name string) (storyboard.GalleryItem, error)
}

// Options configures delivery.
type Options struct {
	// Output is a file path or a directory. A path without an extension is
	// treated as a directory. Empty writes into the working directory.
	Output string
	// AddToGallery adds the written file to Gallery.
	AddToGallery bool
	Gallery      Gallery
	Now          func() time.Time
}

// Sink writes render products.
type Sink struct {
	fs     ports.FileSystem
	logger ports.Logger
	opts   Options
}

// New creates a product sink.
func New(fs ports.FileSystem, logger ports.Logger, opts Options) *Sink {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Sink{fs: fs, logger: logger.WithComponent("productsink"), opts: opts}
}

// FileName returns the conventional name of a render written at t.
func FileName(format ports.VideoFormat, t time.Time) string {
	ext := format.Container
	if ext == "" {
		ext = "webm"
	}
	return fmt.Sprintf("storyreel-video-%s.%s", storyboard.Timestamp(t), ext)
}

// Path returns where a product of format will be written.
func (s *Sink) Path(format ports.VideoFormat, t time.Time) string {
	out := s.opts.Output
	if out != "" && filepath.Ext(out) != "" && !strings.HasSuffix(out, string(filepath.Separator)) {
		return out
	}
	return filepath.Join(out, FileName(format, t))
}

// Deliver writes product and reports where it went.
func (s *Sink) Deliver(ctx context.Context, product ports.RenderProduct) (ports.Delivery, error) {
	if len(product.Data) == 0 {
		return ports.Delivery{}, ErrEmptyProduct
	}
	if err := ctx.Err(); err != nil {
		return ports.Delivery{}, err
	}

	now := s.opts.Now()
	path := s.Path(product.Format, now)
	if ext := strings.TrimPrefix(filepath.Ext(path), "."); product.Format.Container != "" && !strings.EqualFold(ext, product.Format.Container) {
		s.logger.Warn("Output extension .%s does not match the %s container", ext, product.Format.Container)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := s.fs.MkdirAll(dir); err != nil {
			return ports.Delivery{}, fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := s.fs.WriteFile(path, product.Data); err != nil {
		return ports.Delivery{}, fmt.Errorf("write %s: %w", path, err)
	}
	s.logger.Debug("Render written: %s (%d bytes)", path, len(product.Data))
	if product.Format.Container == ports.FormatMP4.Container {
		s.verifyMP4(product)
	}

	d := ports.Delivery{Path: path}
	if !s.opts.AddToGallery || s.opts.Gallery == nil {
		return d, nil
	}

	locator, err := filepath.Abs(path)
	if err != nil {
		locator = path
	}
	name := fmt.Sprintf("storyreel-render-%s", storyboard.Timestamp(now))
	item, err := s.opts.Gallery.AddLocator(locator, storyboard.KindVideo, name)
	if err != nil {
		return d, fmt.Errorf("add render to gallery: %w", err)
	}
	d.GalleryItemID = item.ID
	return d, nil
}

// verifyMP4 checks the written MP4 headers against what was rendered.
func (s *Sink) verifyMP4(product ports.RenderProduct) {
	info, err := codecdetect.ProbeBytes(product.Data)
	if err != nil {
		s.logger.Warn("Could not verify MP4 output: %v", err)
		return
	}
	s.logger.Debug("MP4 output: %s %dx%d, %dms", info.Codec, info.Width, info.Height, info.DurationMs)
	if product.Format.Codec != "" && string(info.Codec) != product.Format.Codec {
		s.logger.Warn("MP4 output carries %s, expected %s", info.Codec, product.Format.Codec)
	}
}

var _ ports.ProductSink = (*Sink)(nil)
