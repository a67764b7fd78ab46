package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/benbjohnson/clock"
	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/tickclip/pkg/adapters/filesink"
	"github.com/user/tickclip/pkg/adapters/ggrenderer"
	"github.com/user/tickclip/pkg/adapters/h264encoder"
	"github.com/user/tickclip/pkg/adapters/logger"
	"github.com/user/tickclip/pkg/adapters/nullsink"
	"github.com/user/tickclip/pkg/adapters/osfilesystem"
	"github.com/user/tickclip/pkg/adapters/tsmuxer"
	"github.com/user/tickclip/pkg/config"
	"github.com/user/tickclip/pkg/orchestrator"
	"github.com/user/tickclip/pkg/ports"
	"github.com/user/tickclip/pkg/stages/convert"
	"github.com/user/tickclip/pkg/stages/encode"
	"github.com/user/tickclip/pkg/stages/render"
	"github.com/user/tickclip/pkg/stages/timestamp"
	"github.com/user/tickclip/pkg/summarizer"
)

// runGenerate executes the generate action.
func runGenerate(c *cli.Context) error {
	log := newLogger(c)

	cfg, err := loadConfig(c)
	if err != nil {
		log.Error(l10n.F("Invalid configuration: %s", err))
		return err
	}

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			log.Warn(l10n.T("Interrupted, finishing output..."))
			cancel()
		case <-ctx.Done():
		}
	}()

	// Locate ffmpeg
	if cfg.FFmpegPath != "" {
		h264encoder.SetFFmpegPath(cfg.FFmpegPath)
	}
	if path, err := h264encoder.FindFFmpeg(); err == nil {
		log.Debug(l10n.F("Using ffmpeg at %s", path))
	}

	// Create adapters
	fs := osfilesystem.New()
	renderer := ggrenderer.New()

	// Create debug sink
	var sink ports.DebugSink
	if cfg.Debug {
		sink = filesink.New(cfg.DebugDir, fs, renderer)
		log.Info(l10n.F("Debug output enabled: %s", cfg.DebugDir))
	} else {
		sink = nullsink.New()
	}

	orchConfig := cfg.ToOrchestratorConfig()

	// Create stages
	orch := orchestrator.New(
		timestamp.New(clock.New(), orchConfig.TimestampDivisor),
		render.NewStage(renderer, log),
		convert.NewStage(),
		encode.NewSession(h264encoder.NewFinder(), tsmuxer.NewFactory(fs), log),
		sink,
		log,
	)

	result, runErr := orch.Run(ctx, orchConfig)

	// The summary covers every run that reached the frame loop
	if path := c.String(flagSummary); path != "" && (runErr == nil || errors.Is(runErr, orchestrator.ErrStreamTruncated)) {
		if err := writeSummary(fs, path, cfg, result); err != nil {
			log.Warn(l10n.F("Failed to write summary: %s", err))
		} else {
			log.Info(l10n.F("Summary written to %s", path))
		}
	}

	return runErr
}

func newLogger(c *cli.Context) ports.Logger {
	if c.Bool(flagQuiet) {
		return logger.NewNoop()
	}
	return logger.NewConsole(ports.ParseLogLevel(c.String(flagLogLevel)))
}

func writeSummary(fs ports.FileSystem, path string, cfg config.Config, result orchestrator.RunResult) error {
	summary := summarizer.NewBuilder().
		WithOutput(result.OutputPath, tsmuxer.FormatName, result.BytesWritten).
		WithSettings(summarizer.Settings{
			Codec:      result.Codec,
			Width:      result.Width,
			Height:     result.Height,
			FPS:        result.FPS,
			GOPSize:    result.GOPSize,
			CRF:        cfg.CRF,
			Preset:     cfg.Preset,
			Bitrate:    cfg.Bitrate,
			FrameBound: result.FramesRequested,
		}).
		WithStream(summarizer.StreamInfo{
			FramesSubmitted: result.FramesSubmitted,
			PacketsWritten:  result.PacketsWritten,
			Keyframes:       result.Keyframes,
			Truncated:       result.Truncated,
			Interrupted:     result.Interrupted,
			Error:           result.StreamError,
		}).
		WithClock(result.FirstText, result.LastText, (result.LastTimestampNs-result.FirstTimestampNs)/1e6).
		Build()

	formatter := summarizer.NewMarkdownFormatter(
		summarizer.WithTranslator(l10n.T),
		summarizer.WithVersion(version),
	)
	return summarizer.NewWriter(formatter, fs).Write(path, summary)
}
