package mocks

import (
	"image"
	"sync"

	"github.com/user/tickclip/pkg/ports"
)

// DebugSink is a mock implementation of ports.DebugSink.
type DebugSink struct {
	mu sync.RWMutex

	enabled bool

	ParamsJSON []byte
	Frames     map[int]image.Image

	SaveFrameErr error
}

// NewDebugSink creates a new mock DebugSink.
func NewDebugSink(enabled bool) *DebugSink {
	return &DebugSink{
		enabled: enabled,
		Frames:  make(map[int]image.Image),
	}
}

func (m *DebugSink) Enabled() bool {
	return m.enabled
}

func (m *DebugSink) SaveParamsJSON(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ParamsJSON = data
	return nil
}

func (m *DebugSink) SaveFrame(index int, img image.Image) error {
	if m.SaveFrameErr != nil {
		return m.SaveFrameErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Frames[index] = img
	return nil
}

// FrameIndices returns the indices of the saved frames.
func (m *DebugSink) FrameIndices() []int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	indices := make([]int, 0, len(m.Frames))
	for i := range m.Frames {
		indices = append(indices, i)
	}
	return indices
}

var _ ports.DebugSink = (*DebugSink)(nil)

// NullSink is a no-op implementation of ports.DebugSink.
type NullSink struct{}

func (m *NullSink) Enabled() bool                              { return false }
func (m *NullSink) SaveParamsJSON(data []byte) error           { return nil }
func (m *NullSink) SaveFrame(index int, img image.Image) error { return nil }

var _ ports.DebugSink = (*NullSink)(nil)
