// Package config provides configuration loading and management.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/user/tickclip/pkg/orchestrator"
	"github.com/user/tickclip/pkg/ports"
)

// ErrInvalidConfig is returned by Validate and LoadFromFile.
var ErrInvalidConfig = errors.New("invalid configuration")

// Supported encoder presets, fastest first.
var Presets = []string{
	"ultrafast", "superfast", "veryfast", "faster", "fast",
	"medium", "slow", "slower", "veryslow",
}

// Config represents the full configuration for tickclip.
type Config struct {
	// Output
	OutputPath string `yaml:"output"`

	// Video
	Width   int `yaml:"width"`
	Height  int `yaml:"height"`
	FPS     int `yaml:"fps"`
	Frames  int `yaml:"frames"`
	GOPSize int `yaml:"gop_size"`

	// Encoding
	CRF        int    `yaml:"crf"`
	Preset     string `yaml:"preset"`
	Bitrate    int    `yaml:"bitrate"` // kbit/s, 0 = constant quality
	FFmpegPath string `yaml:"ffmpeg_path"`

	// Overlay
	Overlay OverlayConfig `yaml:"overlay"`

	// Error handling
	FailOnEncoderError bool `yaml:"fail_on_encoder_error"`

	// Debug
	Debug      bool   `yaml:"debug"`
	DebugDir   string `yaml:"debug_dir"`
	DebugEvery int    `yaml:"debug_every"`
}

// OverlayConfig represents the timestamp text settings.
type OverlayConfig struct {
	Divisor         int64   `yaml:"divisor"`
	FontSize        float64 `yaml:"font_size"`
	FontPath        string  `yaml:"font_path"`
	X               int     `yaml:"x"`
	Y               int     `yaml:"y"`
	BackgroundColor string  `yaml:"background_color"`
	TextColor       string  `yaml:"text_color"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		OutputPath: "output.ts",

		// Video
		Width:  640,
		Height: 240,
		FPS:    60,
		Frames: 60, // one second; 60000 runs for the full 1000 s

		// Encoding
		CRF:    23,
		Preset: "veryfast",

		// Overlay
		Overlay: OverlayConfig{
			Divisor:         10_000_000,
			FontSize:        18,
			X:               10,
			Y:               120,
			BackgroundColor: "#000000",
			TextColor:       "#ffffff",
		},

		// Debug
		DebugDir:   "./debug",
		DebugEvery: 10,
	}
}

// LoadFromFile loads configuration from a YAML file over the defaults.
// Unknown keys are rejected.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}

	return cfg, nil
}

// Validate reports every problem with the configuration at once.
func (c Config) Validate() error {
	var errs error
	add := func(format string, args ...interface{}) {
		errs = multierr.Append(errs, fmt.Errorf(format, args...))
	}

	if c.OutputPath == "" {
		add("output path is empty")
	} else if filepath.Ext(c.OutputPath) == "" {
		add("output path %q has no container extension", c.OutputPath)
	}

	if c.Width <= 0 || c.Height <= 0 {
		add("size %dx%d must be positive", c.Width, c.Height)
	} else if c.Width%2 != 0 || c.Height%2 != 0 {
		add("size %dx%d must be even", c.Width, c.Height)
	}
	if c.FPS <= 0 {
		add("fps %d must be positive", c.FPS)
	}
	if c.Frames < 0 {
		add("frames %d must not be negative", c.Frames)
	}
	if c.GOPSize < 0 {
		add("gop size %d must not be negative", c.GOPSize)
	}

	if c.CRF < 0 || c.CRF > 51 {
		add("crf %d out of range 0-51", c.CRF)
	}
	if c.Bitrate < 0 {
		add("bitrate %d must not be negative", c.Bitrate)
	}
	if c.Preset != "" && !validPreset(c.Preset) {
		add("unknown preset %q", c.Preset)
	}

	if c.Overlay.Divisor <= 0 {
		add("divisor %d must be positive", c.Overlay.Divisor)
	}
	if c.Overlay.FontSize <= 0 {
		add("font size %.1f must be positive", c.Overlay.FontSize)
	}
	if _, err := ParseColor(c.Overlay.BackgroundColor); err != nil {
		add("background color: %w", err)
	}
	if _, err := ParseColor(c.Overlay.TextColor); err != nil {
		add("text color: %w", err)
	}

	if c.Debug && c.DebugDir == "" {
		add("debug directory is empty")
	}
	if c.DebugEvery < 0 {
		add("debug interval %d must not be negative", c.DebugEvery)
	}

	if errs != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errs)
	}
	return nil
}

func validPreset(name string) bool {
	for _, p := range Presets {
		if p == name {
			return true
		}
	}
	return false
}

// ParseColor parses "#rrggbb" or "#rgb" (leading # optional).
func ParseColor(hex string) (color.RGBA, error) {
	s := strings.TrimPrefix(hex, "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("malformed color %q", hex)
	}

	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("malformed color %q", hex)
	}

	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

// ToOrchestratorConfig converts a validated Config to orchestrator.Config.
func (c Config) ToOrchestratorConfig() orchestrator.Config {
	oc := orchestrator.DefaultConfig()

	oc.OutputPath = c.OutputPath

	oc.Width = c.Width
	oc.Height = c.Height
	oc.FPS = c.FPS
	oc.Frames = c.Frames
	oc.GOPSize = c.GOPSize
	oc.Encoder = ports.EncoderOptions{
		CRF:     c.CRF,
		Preset:  c.Preset,
		Bitrate: c.Bitrate,
	}

	oc.TimestampDivisor = c.Overlay.Divisor
	oc.FontSize = c.Overlay.FontSize
	oc.FontPath = c.Overlay.FontPath
	oc.TextX = c.Overlay.X
	oc.TextY = c.Overlay.Y
	if bg, err := ParseColor(c.Overlay.BackgroundColor); err == nil {
		oc.Background = bg
	}
	if fg, err := ParseColor(c.Overlay.TextColor); err == nil {
		oc.Foreground = fg
	}

	oc.DebugEvery = c.DebugEvery
	oc.FailOnEncoderError = c.FailOnEncoderError

	return oc
}
