// Package summarizer provides summary generation for generation runs.
package summarizer

import "time"

// Summary contains all data collected during a generation run.
type Summary struct {
	// Metadata
	GeneratedAt time.Time

	// Output file
	Output OutputInfo

	// Encoding settings
	Settings Settings

	// What reached the container
	Stream StreamInfo

	// Overlay clock readings
	Clock ClockInfo
}

// OutputInfo contains information about the output file.
type OutputInfo struct {
	Path      string
	Container string
	FileSize  int64
}

// Settings contains the generation configuration.
type Settings struct {
	Codec      string
	Width      int
	Height     int
	FPS        int
	GOPSize    int
	CRF        int
	Preset     string
	Bitrate    int // kbit/s, 0 = constant quality
	FrameBound int
}

// StreamInfo contains the outcome of the frame loop.
type StreamInfo struct {
	FramesSubmitted int
	PacketsWritten  int
	Keyframes       int
	Truncated       bool
	Interrupted     bool
	Error           string
}

// DurationMs returns the playback duration of the written packets.
func (s StreamInfo) DurationMs(fps int) int {
	if fps <= 0 {
		return 0
	}
	return s.PacketsWritten * 1000 / fps
}

// ClockInfo contains the first and last overlay readings.
type ClockInfo struct {
	FirstText string
	LastText  string
	SpanMs    int64 // wall-clock time between the first and last frame
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithOutput sets output file information.
func (b *Builder) WithOutput(path, container string, fileSize int64) *Builder {
	b.summary.Output = OutputInfo{
		Path:      path,
		Container: container,
		FileSize:  fileSize,
	}
	return b
}

// WithSettings sets encoding settings.
func (b *Builder) WithSettings(settings Settings) *Builder {
	b.summary.Settings = settings
	return b
}

// WithStream sets the frame loop outcome.
func (b *Builder) WithStream(stream StreamInfo) *Builder {
	b.summary.Stream = stream
	return b
}

// WithClock sets the overlay clock readings.
func (b *Builder) WithClock(firstText, lastText string, spanMs int64) *Builder {
	b.summary.Clock = ClockInfo{
		FirstText: firstText,
		LastText:  lastText,
		SpanMs:    spanMs,
	}
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
