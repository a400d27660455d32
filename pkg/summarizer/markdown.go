package summarizer

import (
	"fmt"
	"strings"
	"time"
)

// MarkdownFormatter renders a Summary as Markdown.
type MarkdownFormatter struct {
	translate func(string) string
	version   string
}

// MarkdownOption configures a MarkdownFormatter.
type MarkdownOption func(*MarkdownFormatter)

// WithTranslator translates headings and labels.
func WithTranslator(fn func(string) string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.translate = fn
	}
}

// WithVersion adds the program version to the footer.
func WithVersion(version string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.version = version
	}
}

// NewMarkdownFormatter creates a Markdown formatter.
func NewMarkdownFormatter(opts ...MarkdownOption) *MarkdownFormatter {
	f := &MarkdownFormatter{translate: func(s string) string { return s }}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format implements Formatter.
func (f *MarkdownFormatter) Format(s *Summary) string {
	t := f.translate
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", t("Render Summary"))
	fmt.Fprintf(&b, "%s: %s\n\n", t("Generated"), s.GeneratedAt.Format(time.RFC3339))

	// Scenes
	fmt.Fprintf(&b, "## %s\n\n", t("Scenes"))
	if len(s.Scenes) == 0 {
		fmt.Fprintf(&b, "%s\n\n", t("No scenes"))
	} else {
		fmt.Fprintf(&b, "| # | %s | %s | %s | %s | %s | %s |\n", t("Media"), t("Duration"), t("Start"), t("Frames"), t("Subtitle"), t("Narration"))
		b.WriteString("|---|---|---|---|---|---|---|\n")
		for _, row := range s.Scenes {
			narration := row.Narration
			if row.Voice != "" && narration != "none" && narration != "" {
				narration = fmt.Sprintf("%s (%s)", narration, row.Voice)
			}
			fmt.Fprintf(&b, "| %d | %s | %.2f s | %d ms | %d | %s | %s |\n",
				row.Index+1, row.Kind, row.Duration, row.StartMs, row.Frames, yesNo(t, row.Subtitle), narration)
		}
		b.WriteString("\n")
	}

	// Settings
	fmt.Fprintf(&b, "## %s\n\n", t("Settings"))
	fmt.Fprintf(&b, "- **%s**: %s\n", t("Aspect Ratio"), orDash(s.Settings.AspectRatio))
	fmt.Fprintf(&b, "- **%s**: %.0f\n", t("FPS"), s.Settings.FPS)
	fmt.Fprintf(&b, "- **%s**: %s\n", t("Codec"), orDash(s.Settings.Codec))
	fmt.Fprintf(&b, "- **%s**: %s\n", t("Narration Overflow"), orDash(s.Settings.Overflow))
	clock := t("virtual")
	if s.Settings.Realtime {
		clock = t("realtime")
	}
	fmt.Fprintf(&b, "- **%s**: %s\n\n", t("Clock"), clock)

	// Video
	fmt.Fprintf(&b, "## %s\n\n", t("Video"))
	fmt.Fprintf(&b, "- **%s**: %d\n", t("Frames"), s.Video.FrameCount)
	fmt.Fprintf(&b, "- **%s**: %.2f s\n", t("Duration"), float64(s.Video.DurationMs)/1000)
	fmt.Fprintf(&b, "- **%s**: %dx%d\n", t("Canvas Size"), s.Video.CanvasWidth, s.Video.CanvasHeight)
	fmt.Fprintf(&b, "- **%s**: %s\n", t("File Size"), formatBytes(s.Video.FileSize))
	if s.Video.Path != "" {
		fmt.Fprintf(&b, "- **%s**: `%s`\n", t("Output"), s.Video.Path)
	}
	if s.Video.GalleryItem != "" {
		fmt.Fprintf(&b, "- **%s**: %s\n", t("Gallery Item"), s.Video.GalleryItem)
	}
	b.WriteString("\n")

	// Notices
	if len(s.Notices) > 0 {
		fmt.Fprintf(&b, "## %s\n\n", t("Notices"))
		for _, n := range s.Notices {
			fmt.Fprintf(&b, "- %s\n", n)
		}
		b.WriteString("\n")
	}

	// Resources
	if s.Resources.PeakRSS > 0 || s.Resources.CPUTime > 0 {
		fmt.Fprintf(&b, "## %s\n\n", t("Resources"))
		fmt.Fprintf(&b, "- **%s**: %s\n", t("Peak Memory"), formatBytes(int64(s.Resources.PeakRSS)))
		fmt.Fprintf(&b, "- **%s**: %.2f s\n\n", t("CPU Time"), s.Resources.CPUTime.Seconds())
	}

	b.WriteString("---\n")
	if f.version != "" {
		fmt.Fprintf(&b, "storyreel %s\n", f.version)
	} else {
		b.WriteString("storyreel\n")
	}
	return b.String()
}

func yesNo(t func(string) string, v bool) string {
	if v {
		return t("yes")
	}
	return t("no")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// formatBytes formats a byte count with binary units.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit && exp < 2; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %s", float64(n)/float64(div), []string{"KB", "MB", "GB"}[exp])
}
