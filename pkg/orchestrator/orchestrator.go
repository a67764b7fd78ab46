// Package orchestrator runs the frame loop: clock, render, convert, encode.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/color"

	"github.com/ideamans/go-l10n"

	"github.com/user/tickclip/pkg/pipeline"
	"github.com/user/tickclip/pkg/ports"
)

// ErrStreamTruncated is returned when the stream ended early and the
// configuration asks for that to be an error.
var ErrStreamTruncated = errors.New("output stream truncated")

// Config contains all configuration for the orchestrator.
type Config struct {
	// Output
	OutputPath string
	Codec      string

	// Video
	Width     int
	Height    int
	FPS       int
	Frames    int // iteration bound
	GOPSize   int // 0 = FPS
	Alignment int // plane stride alignment
	Encoder   ports.EncoderOptions

	// Overlay
	TimestampDivisor int64
	Background       color.Color
	Foreground       color.Color
	FontSize         float64
	FontPath         string
	TextX            int
	TextY            int

	// Debug
	DebugEvery int // save every Nth frame when the sink is enabled

	// Error handling
	FailOnEncoderError bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		OutputPath: "output.ts",
		Codec:      "h264",

		Width:     640,
		Height:    240,
		FPS:       60,
		Frames:    60,
		Alignment: 32,

		TimestampDivisor: 10_000_000,
		Background:       color.Black,
		Foreground:       color.White,
		FontSize:         18,
		TextX:            10,
		TextY:            120,

		DebugEvery: 10,
	}
}

// TimestampSource yields the wall-clock reading and its overlay text.
type TimestampSource interface {
	Next() (ns int64, text string)
}

// EncodeSession is the encoder/muxer lifecycle driven by the loop.
type EncodeSession interface {
	Configure(params pipeline.EncodeParams) error
	Open() error
	Submit(frame *ports.EncoderFrame) error
	Finalize() error
	Close() error
	Params() ports.CodecParams
	Stats() pipeline.EncodeStats
}

// Orchestrator coordinates the execution of all pipeline stages.
type Orchestrator struct {
	clock        TimestampSource
	renderStage  pipeline.Stage[pipeline.RenderInput, pipeline.Raster]
	convertStage pipeline.Stage[pipeline.ConvertInput, pipeline.ConvertResult]
	session      EncodeSession
	sink         ports.DebugSink
	logger       ports.Logger
}

// New creates a new Orchestrator.
func New(
	clock TimestampSource,
	renderStage pipeline.Stage[pipeline.RenderInput, pipeline.Raster],
	convertStage pipeline.Stage[pipeline.ConvertInput, pipeline.ConvertResult],
	session EncodeSession,
	sink ports.DebugSink,
	logger ports.Logger,
) *Orchestrator {
	return &Orchestrator{
		clock:        clock,
		renderStage:  renderStage,
		convertStage: convertStage,
		session:      session,
		sink:         sink,
		logger:       logger,
	}
}

// Run generates config.Frames frames into config.OutputPath.
//
// Setup failures are returned before anything is written. Once the output
// is open, any failure or cancellation ends the loop early and the
// container is still finalized; the result is then marked Truncated.
func (o *Orchestrator) Run(ctx context.Context, config Config) (RunResult, error) {
	o.logger.Info(l10n.F("Generating %d frames (%dx%d, %d fps) to %s",
		config.Frames, config.Width, config.Height, config.FPS, config.OutputPath))

	result := RunResult{
		OutputPath:      config.OutputPath,
		Codec:           config.Codec,
		Width:           config.Width,
		Height:          config.Height,
		FPS:             config.FPS,
		FramesRequested: config.Frames,
	}

	if err := o.session.Configure(o.buildEncodeParams(config)); err != nil {
		o.logger.Error(l10n.F("Failed to set up encoder: %s", err))
		return result, fmt.Errorf("configure: %w", err)
	}
	defer o.session.Close()

	if err := o.session.Open(); err != nil {
		o.logger.Error(l10n.F("Failed to set up encoder: %s", err))
		return result, fmt.Errorf("open: %w", err)
	}

	params := o.session.Params()
	result.GOPSize = params.GOPSize
	o.saveParams(config, params)

	streamErr := o.loop(ctx, config, params, &result)

	if err := o.session.Finalize(); err != nil && streamErr == nil {
		streamErr = fmt.Errorf("finalize: %w", err)
	}

	stats := o.session.Stats()
	result.FramesSubmitted = stats.FramesSubmitted
	result.PacketsWritten = stats.PacketsWritten
	result.Keyframes = stats.Keyframes
	result.BytesWritten = stats.BytesWritten

	if streamErr != nil {
		result.Truncated = true
		result.StreamError = streamErr.Error()
		o.logger.Error(l10n.F("Stream ended early after %d frames: %s", result.FramesSubmitted, streamErr))
		if config.FailOnEncoderError {
			return result, fmt.Errorf("%w: %w", ErrStreamTruncated, streamErr)
		}
	} else if result.Interrupted {
		result.Truncated = true
		o.logger.Warn(l10n.F("Interrupted after %d frames, output finalized", result.FramesSubmitted))
	}

	o.logger.Info(l10n.F("Output saved to %s (%d frames, %d bytes)",
		config.OutputPath, result.PacketsWritten, result.BytesWritten))
	return result, nil
}

// loop runs the bounded frame loop and returns the error that ended it early.
func (o *Orchestrator) loop(ctx context.Context, config Config, params ports.CodecParams, result *RunResult) error {
	renderInput := o.buildRenderInput(config)
	convertInput := pipeline.ConvertInput{
		Format:    params.PixelFormat,
		Size:      pipeline.Dimension{Width: params.Width, Height: params.Height},
		Alignment: config.Alignment,
	}

	for i := 0; i < config.Frames; i++ {
		if ctx.Err() != nil {
			result.Interrupted = true
			return nil
		}

		ns, text := o.clock.Next()
		renderInput.Text = text

		raster, err := o.renderStage.Execute(ctx, renderInput)
		if err != nil {
			return fmt.Errorf("render frame %d: %w", i, err)
		}
		o.saveFrame(config, i, raster)

		convertInput.Raster = raster
		converted, err := o.convertStage.Execute(ctx, convertInput)
		if err != nil {
			return fmt.Errorf("convert frame %d: %w", i, err)
		}

		frame := converted.Frame
		frame.PTS = int64(i)
		err = o.session.Submit(frame)
		frame.Release()
		if err != nil {
			return fmt.Errorf("submit frame %d: %w", i, err)
		}

		if i == 0 {
			result.FirstTimestampNs = ns
			result.FirstText = text
		}
		result.LastTimestampNs = ns
		result.LastText = text
	}
	return nil
}

func (o *Orchestrator) buildEncodeParams(config Config) pipeline.EncodeParams {
	return pipeline.EncodeParams{
		OutputPath: config.OutputPath,
		Codec:      config.Codec,
		Size:       pipeline.Dimension{Width: config.Width, Height: config.Height},
		FPS:        config.FPS,
		GOPSize:    config.GOPSize,
		Options:    config.Encoder,
	}
}

func (o *Orchestrator) buildRenderInput(config Config) pipeline.RenderInput {
	input := pipeline.DefaultRenderInput()
	input.Size = pipeline.Dimension{Width: config.Width, Height: config.Height}
	if config.Background != nil {
		input.Background = config.Background
	}
	if config.Foreground != nil {
		input.Overlay.Color = config.Foreground
	}
	if config.FontSize > 0 {
		input.Overlay.FontSize = config.FontSize
	}
	input.Overlay.FontPath = config.FontPath
	input.Overlay.Position = pipeline.Point{X: config.TextX, Y: config.TextY}
	return input
}

// streamParams is the params.json document written to the debug sink.
type streamParams struct {
	Output      string `json:"output"`
	Codec       string `json:"codec"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	PixelFormat string `json:"pixel_format"`
	TimeBase    string `json:"time_base"`
	FrameRate   int    `json:"frame_rate"`
	GOPSize     int    `json:"gop_size"`
	MaxBFrames  int    `json:"max_b_frames"`
	Global      bool   `json:"global_header"`
	CRF         int    `json:"crf,omitempty"`
	Preset      string `json:"preset,omitempty"`
	BitrateKbps int    `json:"bitrate_kbps,omitempty"`
	Frames      int    `json:"frames"`
	Alignment   int    `json:"alignment"`
}

func (o *Orchestrator) saveParams(config Config, params ports.CodecParams) {
	if !o.sink.Enabled() {
		return
	}
	doc := streamParams{
		Output:      config.OutputPath,
		Codec:       params.Codec,
		Width:       params.Width,
		Height:      params.Height,
		PixelFormat: params.PixelFormat.String(),
		TimeBase:    fmt.Sprintf("%d/%d", params.TimeBase.Num, params.TimeBase.Den),
		FrameRate:   params.FrameRate.Num / params.FrameRate.Den,
		GOPSize:     params.GOPSize,
		MaxBFrames:  params.MaxBFrames,
		Global:      params.GlobalHeader,
		CRF:         params.Options.CRF,
		Preset:      params.Options.Preset,
		BitrateKbps: params.Options.Bitrate,
		Frames:      config.Frames,
		Alignment:   config.Alignment,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err == nil {
		err = o.sink.SaveParamsJSON(data)
	}
	if err != nil {
		o.logger.Warn(l10n.F("Failed to save debug output: %s", err))
	}
}

func (o *Orchestrator) saveFrame(config Config, index int, raster pipeline.Raster) {
	if !o.sink.Enabled() || config.DebugEvery <= 0 || index%config.DebugEvery != 0 {
		return
	}
	if err := o.sink.SaveFrame(index, raster.ToImage()); err != nil {
		o.logger.Warn(l10n.F("Failed to save debug output: %s", err))
	}
}

// RunResult contains the results of a run for summary generation.
type RunResult struct {
	// Settings
	OutputPath string
	Codec      string
	Width      int
	Height     int
	FPS        int
	GOPSize    int

	// Frames
	FramesRequested int
	FramesSubmitted int
	PacketsWritten  int
	Keyframes       int
	BytesWritten    int64

	// Clock readings of the first and last submitted frame
	FirstTimestampNs int64
	LastTimestampNs  int64
	FirstText        string
	LastText         string

	// Early termination
	Truncated   bool
	Interrupted bool
	StreamError string
}
