// Package h264decoder decodes generated transport streams with an external
// ffmpeg process. It is the independent check that a produced file plays.
package h264decoder

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os/exec"
	"strings"

	"github.com/user/tickclip/pkg/adapters/h264encoder"
)

// ErrDecodeFailed is returned when ffmpeg cannot decode the input.
var ErrDecodeFailed = errors.New("h264decoder: decode failed")

// Decoder runs ffmpeg to decode the first video stream of a file.
type Decoder struct {
	ffmpegPath string
}

// New creates a decoder using the ffmpeg found by h264encoder.FindFFmpeg.
func New() (*Decoder, error) {
	path, err := h264encoder.FindFFmpeg()
	if err != nil {
		return nil, err
	}
	return NewWithPath(path), nil
}

// NewWithPath creates a decoder for the given ffmpeg binary.
func NewWithPath(ffmpegPath string) *Decoder {
	return &Decoder{ffmpegPath: ffmpegPath}
}

// CountFrames decodes every frame of the video stream and returns the count.
func (d *Decoder) CountFrames(ctx context.Context, path string) (int, error) {
	out, err := d.run(ctx,
		"-i", path,
		"-map", "0:v:0",
		"-f", "framemd5",
		"pipe:1",
	)
	if err != nil {
		return 0, err
	}
	return countFrameLines(out), nil
}

// DecodeFrame decodes the frame at index (decode order) into an image.
func (d *Decoder) DecodeFrame(ctx context.Context, path string, index int) (image.Image, error) {
	out, err := d.run(ctx,
		"-i", path,
		"-map", "0:v:0",
		"-vf", fmt.Sprintf("select=eq(n\\,%d)", index),
		"-frames:v", "1",
		"-f", "image2pipe",
		"-c:v", "png",
		"pipe:1",
	)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no frame %d", ErrDecodeFailed, index)
	}

	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		return nil, fmt.Errorf("%w: decode png: %w", ErrDecodeFailed, err)
	}
	return img, nil
}

func (d *Decoder) run(ctx context.Context, args ...string) ([]byte, error) {
	full := append([]string{"-hide_banner", "-loglevel", "error", "-nostdin"}, args...)
	cmd := exec.CommandContext(ctx, d.ffmpegPath, full...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: %w: %s", ErrDecodeFailed, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// countFrameLines counts the per-frame lines of framemd5 output.
func countFrameLines(out []byte) int {
	n := 0
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		n++
	}
	return n
}
