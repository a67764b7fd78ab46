// Package tsprobe inspects transport stream files: streams, codec,
// resolution and per-frame timestamps.
package tsprobe

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Eyevinn/mp4ff/avc"
	"github.com/asticode/go-astits"
	"github.com/bluenviron/mediacommon/pkg/formats/mpegts"
)

// Codec represents a video codec type.
type Codec string

const (
	CodecH264    Codec = "h264"
	CodecUnknown Codec = "unknown"
)

// ClockRate is the MPEG-TS timestamp rate.
const ClockRate = 90000

var (
	// ErrNotTransportStream is returned when no program tables can be read.
	ErrNotTransportStream = errors.New("tsprobe: not a transport stream")

	// ErrNoVideoStream is returned when the stream carries no H.264 track.
	ErrNoVideoStream = errors.New("tsprobe: no H.264 stream")

	// ErrVerification is returned by Report.Verify.
	ErrVerification = errors.New("tsprobe: verification failed")
)

// Report describes a probed transport stream.
type Report struct {
	Streams      int
	Codec        Codec
	Width        int
	Height       int
	Frames       int
	Keyframes    int
	PTS          []int64 // 90 kHz, in file order
	DecodeErrors int
}

// ProbeFile probes the transport stream at path.
func ProbeFile(path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	return Probe(f)
}

// Probe reads a whole transport stream from r.
func Probe(r io.Reader) (*Report, error) {
	reader, err := mpegts.NewReader(bufio.NewReader(r))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotTransportStream, err)
	}

	rep := &Report{Codec: CodecUnknown}
	tracks := reader.Tracks()
	rep.Streams = len(tracks)

	var video *mpegts.Track
	for _, t := range tracks {
		if _, ok := t.Codec.(*mpegts.CodecH264); ok {
			video = t
			break
		}
	}
	if video == nil {
		return rep, ErrNoVideoStream
	}
	rep.Codec = CodecH264

	reader.OnDecodeError(func(error) {
		rep.DecodeErrors++
	})
	reader.OnDataH26x(video, func(pts int64, _ int64, au [][]byte) error {
		rep.addAccessUnit(pts, au)
		return nil
	})

	for {
		if err := reader.Read(); err != nil {
			if errors.Is(err, astits.ErrNoMorePackets) || errors.Is(err, io.EOF) {
				break
			}
			return rep, fmt.Errorf("tsprobe: read: %w", err)
		}
	}

	return rep, nil
}

func (r *Report) addAccessUnit(pts int64, au [][]byte) {
	r.Frames++
	r.PTS = append(r.PTS, pts)

	key := false
	for _, nalu := range au {
		if len(nalu) == 0 {
			continue
		}
		switch avc.GetNaluType(nalu[0]) {
		case avc.NALU_SPS:
			if r.Width == 0 {
				if sps, err := avc.ParseSPSNALUnit(nalu, false); err == nil {
					r.Width = int(sps.Width)
					r.Height = int(sps.Height)
				}
			}
		case avc.NALU_IDR:
			key = true
		}
	}
	if key {
		r.Keyframes++
	}
}

// RelativePTS returns the timestamps relative to the first one.
func (r *Report) RelativePTS() []int64 {
	if len(r.PTS) == 0 {
		return nil
	}
	out := make([]int64, len(r.PTS))
	for i, p := range r.PTS {
		out[i] = p - r.PTS[0]
	}
	return out
}

// Duration returns the span between the first and last timestamp in seconds.
func (r *Report) Duration() float64 {
	if len(r.PTS) < 2 {
		return 0
	}
	return float64(r.PTS[len(r.PTS)-1]-r.PTS[0]) / ClockRate
}

// Verify checks the report against the generator's guarantees: exactly one
// H.264 stream, at most maxFrames frames and strictly increasing timestamps.
// A negative maxFrames skips the frame bound.
func (r *Report) Verify(maxFrames int) error {
	if r.Streams != 1 {
		return fmt.Errorf("%w: %d streams, want 1", ErrVerification, r.Streams)
	}
	if r.Codec != CodecH264 {
		return fmt.Errorf("%w: codec %s", ErrVerification, r.Codec)
	}
	if maxFrames >= 0 && r.Frames > maxFrames {
		return fmt.Errorf("%w: %d frames exceed bound %d", ErrVerification, r.Frames, maxFrames)
	}
	for i := 1; i < len(r.PTS); i++ {
		if r.PTS[i] <= r.PTS[i-1] {
			return fmt.Errorf("%w: pts %d at frame %d not after %d", ErrVerification, r.PTS[i], i, r.PTS[i-1])
		}
	}
	return nil
}
