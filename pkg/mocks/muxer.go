package mocks

import (
	"github.com/user/tickclip/pkg/ports"
)

// Muxer is a mock implementation of ports.Muxer.
type Muxer struct {
	Format       string
	GlobalHeader bool

	AddVideoStreamErr error
	WriteHeaderErr    error
	WritePacketErr    error
	WriteTrailerErr   error
	CloseErr          error

	// Recorded calls for verification
	Streams        []ports.CodecParams
	HeaderWritten  bool
	Packets        []ports.Packet
	TrailerWritten bool
	CloseCalls     int

	bytes int64
}

func (m *Muxer) FormatName() string {
	if m.Format == "" {
		return "mpegts"
	}
	return m.Format
}

func (m *Muxer) RequiresGlobalHeader() bool {
	return m.GlobalHeader
}

func (m *Muxer) AddVideoStream(params ports.CodecParams) (int, error) {
	if m.AddVideoStreamErr != nil {
		return 0, m.AddVideoStreamErr
	}
	m.Streams = append(m.Streams, params)
	return len(m.Streams) - 1, nil
}

func (m *Muxer) WriteHeader() error {
	if m.WriteHeaderErr != nil {
		return m.WriteHeaderErr
	}
	m.HeaderWritten = true
	return nil
}

func (m *Muxer) WritePacket(pkt ports.Packet) error {
	if m.WritePacketErr != nil {
		return m.WritePacketErr
	}
	m.Packets = append(m.Packets, pkt)
	m.bytes += int64(len(pkt.Data))
	return nil
}

func (m *Muxer) WriteTrailer() error {
	if m.WriteTrailerErr != nil {
		return m.WriteTrailerErr
	}
	m.TrailerWritten = true
	return nil
}

func (m *Muxer) BytesWritten() int64 {
	return m.bytes
}

func (m *Muxer) Close() error {
	m.CloseCalls++
	return m.CloseErr
}

var _ ports.Muxer = (*Muxer)(nil)

// MuxerFactory is a mock implementation of ports.MuxerFactory.
type MuxerFactory struct {
	Muxer         *Muxer
	NewMuxerErr   error
	RequestedPath string
}

func (m *MuxerFactory) NewMuxer(path string) (ports.Muxer, error) {
	m.RequestedPath = path
	if m.NewMuxerErr != nil {
		return nil, m.NewMuxerErr
	}
	if m.Muxer == nil {
		m.Muxer = &Muxer{}
	}
	return m.Muxer, nil
}

var _ ports.MuxerFactory = (*MuxerFactory)(nil)
