package h264encoder

import (
	"fmt"

	"github.com/user/tickclip/pkg/ports"
)

// EncoderName is the ffmpeg encoder this package drives.
const EncoderName = "libx264"

// Finder implements ports.EncoderFinder for H.264.
type Finder struct {
	// hasEncoder is replaced in tests.
	hasEncoder func(ffmpegPath, name string) (bool, error)
}

// NewFinder creates a Finder that probes the local ffmpeg installation.
func NewFinder() *Finder {
	return &Finder{hasEncoder: HasEncoder}
}

// FindEncoder returns an unopened FFmpegEncoder for "h264".
func (f *Finder) FindEncoder(codec string) (ports.VideoEncoder, error) {
	if codec != "h264" {
		return nil, fmt.Errorf("%w: %s", ports.ErrCodecNotFound, codec)
	}

	path, err := FindFFmpeg()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ports.ErrCodecNotFound, err)
	}

	ok, err := f.hasEncoder(path, EncoderName)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ports.ErrCodecNotFound, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s does not provide %s", ports.ErrCodecNotFound, path, EncoderName)
	}

	return NewFFmpegEncoder(path), nil
}

var _ ports.EncoderFinder = (*Finder)(nil)
