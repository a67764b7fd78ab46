package summarizer

import (
	"fmt"
	"strings"
)

// MarkdownFormatter renders a Summary as a Markdown report.
type MarkdownFormatter struct {
	translate func(string) string
	version   string
}

// MarkdownOption configures a MarkdownFormatter.
type MarkdownOption func(*MarkdownFormatter)

// WithTranslator sets the function used to translate labels.
func WithTranslator(translate func(string) string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.translate = translate
	}
}

// WithVersion adds the tool version to the report header.
func WithVersion(version string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.version = version
	}
}

// NewMarkdownFormatter creates a new MarkdownFormatter.
func NewMarkdownFormatter(opts ...MarkdownOption) *MarkdownFormatter {
	f := &MarkdownFormatter{
		translate: func(s string) string { return s },
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format implements the Formatter interface.
func (f *MarkdownFormatter) Format(s *Summary) string {
	t := f.translate
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", t("Generation Summary"))
	fmt.Fprintf(&b, "- **%s**: %s\n", t("Generated"), s.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	if f.version != "" {
		fmt.Fprintf(&b, "- **%s**: %s\n", t("Version"), f.version)
	}
	b.WriteString("\n")

	// Output
	f.section(&b, "Output")
	f.row(&b, "File", s.Output.Path)
	f.row(&b, "Container", s.Output.Container)
	f.row(&b, "File Size", formatBytes(s.Output.FileSize))
	b.WriteString("\n")

	// Settings
	f.section(&b, "Settings")
	f.row(&b, "Codec", s.Settings.Codec)
	f.row(&b, "Resolution", fmt.Sprintf("%dx%d", s.Settings.Width, s.Settings.Height))
	f.row(&b, "Frame Rate", fmt.Sprintf("%d fps", s.Settings.FPS))
	f.row(&b, "GOP", fmt.Sprintf("%d %s", s.Settings.GOPSize, t("frames")))
	if s.Settings.Bitrate > 0 {
		f.row(&b, "Rate Control", fmt.Sprintf("%d kbps", s.Settings.Bitrate))
	} else {
		f.row(&b, "Rate Control", fmt.Sprintf("CRF %d", s.Settings.CRF))
	}
	if s.Settings.Preset != "" {
		f.row(&b, "Preset", s.Settings.Preset)
	}
	f.row(&b, "Frame Bound", fmt.Sprintf("%d", s.Settings.FrameBound))
	b.WriteString("\n")

	// Stream
	f.section(&b, "Stream")
	f.row(&b, "Frames Submitted", fmt.Sprintf("%d", s.Stream.FramesSubmitted))
	f.row(&b, "Packets Written", fmt.Sprintf("%d", s.Stream.PacketsWritten))
	f.row(&b, "Keyframes", fmt.Sprintf("%d", s.Stream.Keyframes))
	f.row(&b, "Duration", fmt.Sprintf("%d ms", s.Stream.DurationMs(s.Settings.FPS)))
	f.row(&b, "Status", t(streamStatus(s.Stream)))
	if s.Stream.Error != "" {
		f.row(&b, "Error", "`"+s.Stream.Error+"`")
	}

	// Clock
	if s.Clock.FirstText != "" {
		b.WriteString("\n")
		f.section(&b, "Timestamps")
		f.row(&b, "First Frame", s.Clock.FirstText)
		f.row(&b, "Last Frame", s.Clock.LastText)
		f.row(&b, "Wall Clock Span", fmt.Sprintf("%d ms", s.Clock.SpanMs))
	}

	return b.String()
}

func (f *MarkdownFormatter) section(b *strings.Builder, title string) {
	fmt.Fprintf(b, "## %s\n\n", f.translate(title))
	fmt.Fprintf(b, "| %s | %s |\n", f.translate("Item"), f.translate("Value"))
	b.WriteString("|---|---|\n")
}

func (f *MarkdownFormatter) row(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "| %s | %s |\n", f.translate(label), value)
}

func streamStatus(s StreamInfo) string {
	switch {
	case s.Interrupted:
		return "Interrupted"
	case s.Truncated:
		return "Truncated"
	default:
		return "Complete"
	}
}

// formatBytes formats a byte count with binary units.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
