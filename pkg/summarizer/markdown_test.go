package summarizer

import (
	"strings"
	"testing"
	"time"
)

func testSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		Output: OutputInfo{
			Path:      "output.ts",
			Container: "mpegts",
			FileSize:  1024 * 1024, // 1 MB
		},
		Settings: Settings{
			Codec:      "h264",
			Width:      640,
			Height:     240,
			FPS:        60,
			GOPSize:    60,
			CRF:        23,
			Preset:     "veryfast",
			FrameBound: 60,
		},
		Stream: StreamInfo{
			FramesSubmitted: 60,
			PacketsWritten:  60,
			Keyframes:       1,
		},
		Clock: ClockInfo{
			FirstText: "12345",
			LastText:  "12444",
			SpanMs:    983,
		},
	}
}

func TestMarkdownFormatter_Format_Basic(t *testing.T) {
	formatter := NewMarkdownFormatter()

	result := formatter.Format(testSummary())

	// Check required sections
	checks := []string{
		"# Generation Summary",
		"2024-01-15 10:30:00 UTC",
		"output.ts",
		"mpegts",
		"1.00 MB",
		"640x240",
		"60 fps",
		"CRF 23",
		"veryfast",
		"| Packets Written | 60 |",
		"| Keyframes | 1 |",
		"1000 ms", // Duration
		"Complete",
		"12345",
		"12444",
		"983 ms",
	}

	for _, check := range checks {
		if !strings.Contains(result, check) {
			t.Errorf("expected output to contain %q", check)
		}
	}
	if strings.Contains(result, "| Error |") {
		t.Error("expected no error row for a complete run")
	}
}

func TestMarkdownFormatter_Format_Status(t *testing.T) {
	tests := []struct {
		name   string
		stream StreamInfo
		want   string
	}{
		{"complete", StreamInfo{}, "| Status | Complete |"},
		{"truncated", StreamInfo{Truncated: true, Error: "send frame 5: broken pipe"}, "| Status | Truncated |"},
		{"interrupted", StreamInfo{Truncated: true, Interrupted: true}, "| Status | Interrupted |"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary := testSummary()
			summary.Stream = tt.stream

			result := NewMarkdownFormatter().Format(summary)

			if !strings.Contains(result, tt.want) {
				t.Errorf("expected %q in output:\n%s", tt.want, result)
			}
			if tt.stream.Error != "" && !strings.Contains(result, "`"+tt.stream.Error+"`") {
				t.Error("expected error row")
			}
		})
	}
}

func TestMarkdownFormatter_Format_Bitrate(t *testing.T) {
	summary := testSummary()
	summary.Settings.Bitrate = 800

	result := NewMarkdownFormatter().Format(summary)

	if !strings.Contains(result, "800 kbps") {
		t.Error("expected bitrate rate control")
	}
	if strings.Contains(result, "CRF 23") {
		t.Error("expected CRF to be hidden when a bitrate is set")
	}
}

func TestMarkdownFormatter_Format_NoFrames(t *testing.T) {
	summary := testSummary()
	summary.Stream = StreamInfo{}
	summary.Clock = ClockInfo{}

	result := NewMarkdownFormatter().Format(summary)

	if strings.Contains(result, "Timestamps") {
		t.Error("expected no timestamp section without frames")
	}
	if !strings.Contains(result, "| Frames Submitted | 0 |") {
		t.Error("expected zero frames")
	}
}

func TestMarkdownFormatter_WithTranslator(t *testing.T) {
	translator := func(key string) string {
		translations := map[string]string{
			"Generation Summary": "生成サマリー",
			"Resolution":         "解像度",
			"Truncated":          "途中終了",
		}
		if v, ok := translations[key]; ok {
			return v
		}
		return key
	}

	formatter := NewMarkdownFormatter(WithTranslator(translator))

	summary := testSummary()
	summary.Stream.Truncated = true

	result := formatter.Format(summary)

	if !strings.Contains(result, "生成サマリー") {
		t.Error("expected translated 'Generation Summary'")
	}
	if !strings.Contains(result, "解像度") {
		t.Error("expected translated 'Resolution'")
	}
	if !strings.Contains(result, "途中終了") {
		t.Error("expected translated 'Truncated'")
	}
}

func TestMarkdownFormatter_WithVersion(t *testing.T) {
	formatter := NewMarkdownFormatter(WithVersion("v1.2.0"))

	result := formatter.Format(testSummary())

	if !strings.Contains(result, "v1.2.0") {
		t.Error("expected output to contain version 'v1.2.0'")
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{100, "100 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{1024 * 1024, "1.00 MB"},
		{1024 * 1024 * 1024, "1.00 GB"},
		{1536 * 1024 * 1024, "1.50 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := formatBytes(tt.bytes)
			if got != tt.want {
				t.Errorf("formatBytes(%d) = %q, want %q", tt.bytes, got, tt.want)
			}
		})
	}
}
