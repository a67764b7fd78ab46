// Package tsmuxer writes H.264 access units into an MPEG transport stream
// using mediacommon's mpegts writer.
package tsmuxer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/asticode/go-astits"
	"github.com/bluenviron/mediacommon/pkg/codecs/h264"
	"github.com/bluenviron/mediacommon/pkg/formats/mpegts"
	"go.uber.org/multierr"

	"github.com/user/tickclip/pkg/ports"
)

// FormatName is the short name of the container.
const FormatName = "mpegts"

// ClockRate is the transport stream timestamp rate.
const ClockRate = 90000

// VideoPID carries the H.264 elementary stream.
const VideoPID = 256

// Extensions lists the file extensions mapped to MPEG-TS.
var Extensions = []string{".ts", ".m2ts", ".mts"}

var (
	// ErrInvalidState is returned when muxer calls arrive out of order.
	ErrInvalidState = errors.New("tsmuxer: invalid state")

	// ErrTimestampOrder is returned for packets whose DTS does not increase.
	ErrTimestampOrder = errors.New("tsmuxer: packets out of timestamp order")
)

// audNALU is an access unit delimiter allowing any slice type.
var audNALU = []byte{byte(h264.NALUTypeAccessUnitDelimiter), 0xf0}

// Factory implements ports.MuxerFactory for transport stream files.
type Factory struct {
	fs ports.FileSystem
}

// NewFactory creates a factory that opens outputs through fs.
func NewFactory(fs ports.FileSystem) *Factory {
	return &Factory{fs: fs}
}

// NewMuxer returns a muxer for path, chosen by its extension.
func (f *Factory) NewMuxer(path string) (ports.Muxer, error) {
	if !IsSupported(path) {
		return nil, fmt.Errorf("%w: %q (want %s)", ports.ErrUnsupportedContainer,
			filepath.Ext(path), strings.Join(Extensions, ", "))
	}
	return NewMuxer(f.fs, path), nil
}

// IsSupported reports whether path has a transport stream extension.
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

var _ ports.MuxerFactory = (*Factory)(nil)

// Muxer implements ports.Muxer for a single H.264 stream.
type Muxer struct {
	fs   ports.FileSystem
	path string

	params *ports.CodecParams
	track  *mpegts.Track

	file    io.WriteCloser
	counter *countingWriter
	bw      *bufio.Writer
	w       *mpegts.Writer

	sps []byte
	pps []byte

	lastDTS int64
	packets int

	headerWritten  bool
	trailerWritten bool
	closed         bool
}

// NewMuxer creates a muxer that will write to path once the header is written.
func NewMuxer(fs ports.FileSystem, path string) *Muxer {
	return &Muxer{fs: fs, path: path}
}

func (m *Muxer) FormatName() string {
	return FormatName
}

// RequiresGlobalHeader is false: parameter sets travel in-band in a transport stream.
func (m *Muxer) RequiresGlobalHeader() bool {
	return false
}

func (m *Muxer) AddVideoStream(params ports.CodecParams) (int, error) {
	if m.params != nil || m.headerWritten || m.closed {
		return 0, fmt.Errorf("%w: video stream already added", ErrInvalidState)
	}
	if params.Codec != "h264" {
		return 0, fmt.Errorf("%w: codec %q cannot be carried", ports.ErrUnsupportedContainer, params.Codec)
	}
	if params.TimeBase.Num <= 0 || params.TimeBase.Den <= 0 {
		return 0, fmt.Errorf("tsmuxer: invalid time base %d/%d", params.TimeBase.Num, params.TimeBase.Den)
	}

	p := params
	m.params = &p
	m.track = &mpegts.Track{PID: VideoPID, Codec: &mpegts.CodecH264{}}
	return 0, nil
}

// WriteHeader creates the output file and writes the program tables, so a
// stream without packets is still a valid transport stream. The writer
// repeats the tables in front of every keyframe.
func (m *Muxer) WriteHeader() error {
	if m.params == nil || m.headerWritten || m.closed {
		return fmt.Errorf("%w: header requires exactly one stream", ErrInvalidState)
	}

	file, err := m.fs.Create(m.path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ports.ErrOutputUnavailable, m.path, err)
	}

	m.file = file
	m.counter = &countingWriter{w: file}
	m.bw = bufio.NewWriter(m.counter)
	m.w = mpegts.NewWriter(m.bw, []*mpegts.Track{m.track})
	if err := writeTables(m.bw, m.track.PID); err != nil {
		return fmt.Errorf("tsmuxer: write tables: %w", err)
	}
	m.lastDTS = -1
	m.headerWritten = true
	return nil
}

func (m *Muxer) WritePacket(pkt ports.Packet) error {
	if !m.headerWritten || m.trailerWritten || m.closed {
		return fmt.Errorf("%w: packet outside header/trailer", ErrInvalidState)
	}
	if pkt.StreamIndex != 0 {
		return fmt.Errorf("tsmuxer: unknown stream index %d", pkt.StreamIndex)
	}
	if pkt.DTS <= m.lastDTS {
		return fmt.Errorf("%w: dts %d after %d", ErrTimestampOrder, pkt.DTS, m.lastDTS)
	}

	nalus, err := h264.AnnexBUnmarshal(pkt.Data)
	if err != nil {
		return fmt.Errorf("tsmuxer: packet %d: %w", pkt.PTS, err)
	}

	au := m.prepareAccessUnit(nalus)
	randomAccess := h264.IDRPresent(au)

	err = m.w.WriteH26x(m.track, m.toTicks(pkt.PTS), m.toTicks(pkt.DTS), randomAccess, au)
	if err != nil {
		return fmt.Errorf("tsmuxer: write packet %d: %w", pkt.PTS, err)
	}

	m.lastDTS = pkt.DTS
	m.packets++
	return nil
}

// prepareAccessUnit drops delimiters, remembers parameter sets and makes
// every IDR access unit self-contained.
func (m *Muxer) prepareAccessUnit(nalus [][]byte) [][]byte {
	au := [][]byte{audNALU}
	hasSPS, hasPPS, idr := false, false, false

	for _, nalu := range nalus {
		if len(nalu) == 0 {
			continue
		}
		switch h264.NALUType(nalu[0] & 0x1f) {
		case h264.NALUTypeAccessUnitDelimiter:
			continue
		case h264.NALUTypeSPS:
			m.sps = append(m.sps[:0], nalu...)
			hasSPS = true
		case h264.NALUTypePPS:
			m.pps = append(m.pps[:0], nalu...)
			hasPPS = true
		case h264.NALUTypeIDR:
			if !idr {
				idr = true
				if !hasSPS && m.sps != nil {
					au = append(au, m.sps)
				}
				if !hasPPS && m.pps != nil {
					au = append(au, m.pps)
				}
			}
		}
		au = append(au, nalu)
	}
	return au
}

// toTicks converts a stream timestamp to the 90 kHz clock, rounding to
// the nearest tick.
func (m *Muxer) toTicks(ts int64) int64 {
	num := ts * ClockRate * int64(m.params.TimeBase.Num)
	den := int64(m.params.TimeBase.Den)
	return (num + den/2) / den
}

// writeTables writes PAT and PMT for a single H.264 program on pid, laid
// out the way the mediacommon writer lays out its own tables.
func writeTables(w io.Writer, pid uint16) error {
	mux := astits.NewMuxer(context.Background(), w)
	err := mux.AddElementaryStream(astits.PMTElementaryStream{
		ElementaryPID: pid,
		StreamType:    astits.StreamTypeH264Video,
	})
	if err != nil {
		return err
	}
	mux.SetPCRPID(pid)
	_, err = mux.WriteTables()
	return err
}

// WriteTrailer flushes buffered output. Transport streams have no trailer.
func (m *Muxer) WriteTrailer() error {
	if !m.headerWritten || m.trailerWritten || m.closed {
		return fmt.Errorf("%w: trailer without header", ErrInvalidState)
	}
	m.trailerWritten = true
	if err := m.bw.Flush(); err != nil {
		return fmt.Errorf("tsmuxer: flush: %w", err)
	}
	return nil
}

func (m *Muxer) BytesWritten() int64 {
	if m.counter == nil {
		return 0
	}
	return m.counter.n
}

// PacketsWritten returns the number of access units written.
func (m *Muxer) PacketsWritten() int {
	return m.packets
}

// Close flushes whatever is buffered and closes the file. Output that never
// got a trailer is kept as a truncated stream.
func (m *Muxer) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	if m.file == nil {
		return nil
	}

	var err error
	if !m.trailerWritten {
		err = multierr.Append(err, m.bw.Flush())
	}
	err = multierr.Append(err, m.file.Close())
	if err != nil {
		return fmt.Errorf("tsmuxer: close %s: %w", m.path, err)
	}
	return nil
}

var _ ports.Muxer = (*Muxer)(nil)

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
