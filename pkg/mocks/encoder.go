// Package mocks provides mock implementations for testing.
package mocks

import (
	"github.com/user/tickclip/pkg/ports"
)

// VideoEncoder is a mock implementation of ports.VideoEncoder.
//
// By default every submitted frame yields one packet whose PTS equals the
// frame's PTS. Latency holds packets back to emulate encoder lookahead until
// the flush drains them.
type VideoEncoder struct {
	OpenFunc      func(params ports.CodecParams) error
	SendFrameFunc func(frame *ports.EncoderFrame) error
	CloseFunc     func() error

	Latency int

	// SPS is emitted with PPS in front of every keyframe when set.
	SPS []byte

	// Recorded calls for verification
	OpenParams   *ports.CodecParams
	SentPTS      []int64
	FlushCalled  bool
	ReceiveCalls int
	CloseCalls   int

	pending []ports.Packet
	flushed bool
	drained bool
	gopSize int
}

func (m *VideoEncoder) Open(params ports.CodecParams) error {
	p := params
	m.OpenParams = &p
	m.gopSize = params.GOPSize
	if m.OpenFunc != nil {
		return m.OpenFunc(params)
	}
	return nil
}

func (m *VideoEncoder) SendFrame(frame *ports.EncoderFrame) error {
	if frame == nil {
		m.FlushCalled = true
		m.flushed = true
		if m.SendFrameFunc != nil {
			return m.SendFrameFunc(nil)
		}
		return nil
	}
	m.SentPTS = append(m.SentPTS, frame.PTS)
	if m.SendFrameFunc != nil {
		if err := m.SendFrameFunc(frame); err != nil {
			return err
		}
	}
	key := m.gopSize <= 0 || frame.PTS%int64(m.gopSize) == 0
	m.pending = append(m.pending, ports.Packet{
		Data:     AccessUnit(m.SPS, frame.PTS, key),
		PTS:      frame.PTS,
		DTS:      frame.PTS,
		Keyframe: key,
	})
	return nil
}

func (m *VideoEncoder) ReceivePacket() (ports.Packet, error) {
	m.ReceiveCalls++
	if len(m.pending) > m.Latency || (m.flushed && len(m.pending) > 0) {
		pkt := m.pending[0]
		m.pending = m.pending[1:]
		return pkt, nil
	}
	if m.flushed {
		m.drained = true
		return ports.Packet{}, ports.ErrEndOfStream
	}
	return ports.Packet{}, ports.ErrNeedMoreInput
}

func (m *VideoEncoder) Close() error {
	m.CloseCalls++
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Drained reports whether ReceivePacket has returned ErrEndOfStream.
func (m *VideoEncoder) Drained() bool {
	return m.drained
}

var _ ports.VideoEncoder = (*VideoEncoder)(nil)

// EncoderFinder is a mock implementation of ports.EncoderFinder.
type EncoderFinder struct {
	Encoder        ports.VideoEncoder
	FindEncoderErr error

	RequestedCodec string
}

func (m *EncoderFinder) FindEncoder(codec string) (ports.VideoEncoder, error) {
	m.RequestedCodec = codec
	if m.FindEncoderErr != nil {
		return nil, m.FindEncoderErr
	}
	if m.Encoder == nil {
		m.Encoder = &VideoEncoder{}
	}
	return m.Encoder, nil
}

var _ ports.EncoderFinder = (*EncoderFinder)(nil)
