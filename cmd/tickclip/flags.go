package main

import (
	"errors"
	"fmt"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/tickclip/pkg/config"
)

const (
	flagConfig             = "config"
	flagOutput             = "output"
	flagWidth              = "width"
	flagHeight             = "height"
	flagFPS                = "fps"
	flagFrames             = "frames"
	flagGOP                = "gop"
	flagCRF                = "crf"
	flagPreset             = "preset"
	flagBitrate            = "bitrate"
	flagFFmpeg             = "ffmpeg"
	flagFontSize           = "font-size"
	flagFont               = "font"
	flagTextX              = "text-x"
	flagTextY              = "text-y"
	flagBackground         = "background"
	flagForeground         = "foreground"
	flagDivisor            = "divisor"
	flagFailOnEncoderError = "fail-on-encoder-error"
	flagSummary            = "summary"
	flagDebug              = "debug"
	flagDebugDir           = "debug-dir"
	flagDebugEvery         = "debug-every"
	flagLogLevel           = "log-level"
	flagQuiet              = "quiet"
)

// generateFlags returns the flags of the generate action. Defaults live in
// config.Defaults; a flag only overrides the config when it is set.
func generateFlags() []cli.Flag {
	var (
		catOutput  = l10n.T("Output")
		catVideo   = l10n.T("Video and Quality")
		catOverlay = l10n.T("Overlay")
		catDebug   = l10n.T("Debug")
		catLogging = l10n.T("Logging")
	)
	defaults := config.Defaults()

	return []cli.Flag{
		&cli.StringFlag{
			Name:     flagConfig,
			Aliases:  []string{"c"},
			Usage:    l10n.T("Load configuration from YAML `FILE`"),
			Category: catOutput,
		},
		&cli.StringFlag{
			Name:     flagOutput,
			Aliases:  []string{"o"},
			Usage:    l10n.F("Output file path (default: %s)", defaults.OutputPath),
			EnvVars:  []string{"TICKCLIP_OUTPUT"},
			Category: catOutput,
		},
		&cli.StringFlag{
			Name:     flagSummary,
			Usage:    l10n.T("Output execution summary to file (Markdown format)"),
			Category: catOutput,
		},

		&cli.IntFlag{
			Name:     flagWidth,
			Usage:    l10n.F("Output video width (default: %d)", defaults.Width),
			Category: catVideo,
		},
		&cli.IntFlag{
			Name:     flagHeight,
			Usage:    l10n.F("Output video height (default: %d)", defaults.Height),
			Category: catVideo,
		},
		&cli.IntFlag{
			Name:     flagFPS,
			Usage:    l10n.F("Frames per second (default: %d)", defaults.FPS),
			Category: catVideo,
		},
		&cli.IntFlag{
			Name:     flagFrames,
			Aliases:  []string{"n"},
			Usage:    l10n.F("Number of frames to generate (default: %d)", defaults.Frames),
			EnvVars:  []string{"TICKCLIP_FRAMES"},
			Category: catVideo,
		},
		&cli.IntFlag{
			Name:     flagGOP,
			Usage:    l10n.T("Keyframe interval in frames (default: one second)"),
			Category: catVideo,
		},
		&cli.IntFlag{
			Name:     flagCRF,
			Usage:    l10n.F("Video CRF value (0-51, lower is better, default: %d)", defaults.CRF),
			Category: catVideo,
		},
		&cli.StringFlag{
			Name:     flagPreset,
			Usage:    l10n.F("Encoder speed preset (default: %s)", defaults.Preset),
			Category: catVideo,
		},
		&cli.IntFlag{
			Name:     flagBitrate,
			Usage:    l10n.T("Target bitrate in kbps (0 = constant quality)"),
			Category: catVideo,
		},
		&cli.StringFlag{
			Name:     flagFFmpeg,
			Usage:    l10n.T("Path to ffmpeg executable (falls back to FFMPEG_PATH env, then PATH)"),
			Category: catVideo,
		},
		&cli.BoolFlag{
			Name:     flagFailOnEncoderError,
			Usage:    l10n.T("Exit with an error when encoding stops early"),
			Category: catVideo,
		},

		&cli.Float64Flag{
			Name:     flagFontSize,
			Usage:    l10n.F("Font size in points (default: %.0f)", defaults.Overlay.FontSize),
			Category: catOverlay,
		},
		&cli.StringFlag{
			Name:     flagFont,
			Usage:    l10n.T("TrueType font `FILE` (default: Go Bold)"),
			Category: catOverlay,
		},
		&cli.IntFlag{
			Name:     flagTextX,
			Usage:    l10n.F("Text baseline x position (default: %d)", defaults.Overlay.X),
			Category: catOverlay,
		},
		&cli.IntFlag{
			Name:     flagTextY,
			Usage:    l10n.F("Text baseline y position (default: %d)", defaults.Overlay.Y),
			Category: catOverlay,
		},
		&cli.StringFlag{
			Name:     flagBackground,
			Usage:    l10n.T("Background color (hex, e.g., #000000)"),
			Category: catOverlay,
		},
		&cli.StringFlag{
			Name:     flagForeground,
			Usage:    l10n.T("Text color (hex, e.g., #ffffff)"),
			Category: catOverlay,
		},
		&cli.Int64Flag{
			Name:     flagDivisor,
			Usage:    l10n.F("Nanoseconds per displayed tick (default: %d)", defaults.Overlay.Divisor),
			Category: catOverlay,
		},

		&cli.BoolFlag{
			Name:     flagDebug,
			Aliases:  []string{"d"},
			Usage:    l10n.T("Enable debug output"),
			Category: catDebug,
		},
		&cli.StringFlag{
			Name:     flagDebugDir,
			Usage:    l10n.F("Directory for debug output (default: %s)", defaults.DebugDir),
			Category: catDebug,
		},
		&cli.IntFlag{
			Name:     flagDebugEvery,
			Usage:    l10n.F("Save every Nth frame as PNG (default: %d)", defaults.DebugEvery),
			Category: catDebug,
		},

		&cli.StringFlag{
			Name:     flagLogLevel,
			Aliases:  []string{"l"},
			Value:    "info",
			Usage:    l10n.T("Log level (debug, info, warn, error)"),
			Category: catLogging,
		},
		&cli.BoolFlag{
			Name:     flagQuiet,
			Aliases:  []string{"Q"},
			Usage:    l10n.T("Suppress all log output"),
			Category: catLogging,
		},
	}
}

// loadConfig layers defaults, the YAML file and the set flags, then validates.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Defaults()

	if path := c.String(flagConfig); path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			if errors.Is(err, config.ErrInvalidConfig) {
				return cfg, err
			}
			return cfg, fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
		}
		cfg = loaded
	}

	applyFlags(c, &cfg)

	return cfg, cfg.Validate()
}

func applyFlags(c *cli.Context, cfg *config.Config) {
	if c.IsSet(flagOutput) {
		cfg.OutputPath = c.String(flagOutput)
	}

	if c.IsSet(flagWidth) {
		cfg.Width = c.Int(flagWidth)
	}
	if c.IsSet(flagHeight) {
		cfg.Height = c.Int(flagHeight)
	}
	if c.IsSet(flagFPS) {
		cfg.FPS = c.Int(flagFPS)
	}
	if c.IsSet(flagFrames) {
		cfg.Frames = c.Int(flagFrames)
	}
	if c.IsSet(flagGOP) {
		cfg.GOPSize = c.Int(flagGOP)
	}

	if c.IsSet(flagCRF) {
		cfg.CRF = c.Int(flagCRF)
	}
	if c.IsSet(flagPreset) {
		cfg.Preset = c.String(flagPreset)
	}
	if c.IsSet(flagBitrate) {
		cfg.Bitrate = c.Int(flagBitrate)
	}
	if c.IsSet(flagFFmpeg) {
		cfg.FFmpegPath = c.String(flagFFmpeg)
	}
	if c.IsSet(flagFailOnEncoderError) {
		cfg.FailOnEncoderError = c.Bool(flagFailOnEncoderError)
	}

	if c.IsSet(flagFontSize) {
		cfg.Overlay.FontSize = c.Float64(flagFontSize)
	}
	if c.IsSet(flagFont) {
		cfg.Overlay.FontPath = c.String(flagFont)
	}
	if c.IsSet(flagTextX) {
		cfg.Overlay.X = c.Int(flagTextX)
	}
	if c.IsSet(flagTextY) {
		cfg.Overlay.Y = c.Int(flagTextY)
	}
	if c.IsSet(flagBackground) {
		cfg.Overlay.BackgroundColor = c.String(flagBackground)
	}
	if c.IsSet(flagForeground) {
		cfg.Overlay.TextColor = c.String(flagForeground)
	}
	if c.IsSet(flagDivisor) {
		cfg.Overlay.Divisor = c.Int64(flagDivisor)
	}

	if c.IsSet(flagDebug) {
		cfg.Debug = c.Bool(flagDebug)
	}
	if c.IsSet(flagDebugDir) {
		cfg.DebugDir = c.String(flagDebugDir)
	}
	if c.IsSet(flagDebugEvery) {
		cfg.DebugEvery = c.Int(flagDebugEvery)
	}
}
