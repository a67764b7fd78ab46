package ports

import (
	"image"
)

// DebugSink abstracts debug output for intermediate results.
type DebugSink interface {
	// Enabled returns true if debug output is enabled.
	Enabled() bool

	// SaveParamsJSON saves the effective codec parameters as JSON.
	SaveParamsJSON(data []byte) error

	// SaveFrame saves a rendered frame.
	SaveFrame(index int, img image.Image) error
}
