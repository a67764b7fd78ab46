// Package encode implements the encoder/muxer session: it owns the video
// encoder and the output container from configuration to teardown.
package encode

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/user/tickclip/pkg/pipeline"
	"github.com/user/tickclip/pkg/ports"
)

// State is a step of the session lifecycle.
type State int

const (
	StateUnopened State = iota
	StateConfigured
	StateOpened
	StateStreaming
	StateFinalized
)

func (s State) String() string {
	switch s {
	case StateUnopened:
		return "unopened"
	case StateConfigured:
		return "configured"
	case StateOpened:
		return "opened"
	case StateStreaming:
		return "streaming"
	case StateFinalized:
		return "finalized"
	default:
		return "unknown"
	}
}

// Session moves frames through the encoder and writes the resulting packets
// to the container. It is not safe for concurrent use.
type Session struct {
	finder  ports.EncoderFinder
	factory ports.MuxerFactory
	logger  ports.Logger

	state  State
	params ports.CodecParams

	encoder ports.VideoEncoder
	muxer   ports.Muxer
	stream  int

	nextPTS int64
	failed  bool
	closed  bool
	stats   pipeline.EncodeStats
}

// NewSession creates an unopened session.
func NewSession(finder ports.EncoderFinder, factory ports.MuxerFactory, logger ports.Logger) *Session {
	return &Session{
		finder:  finder,
		factory: factory,
		logger:  logger.WithComponent("encode"),
		stats:   pipeline.EncodeStats{LastPTS: -1},
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Params returns the codec parameters recorded by Configure.
func (s *Session) Params() ports.CodecParams {
	return s.params
}

// Configure selects the container, declares the video stream and finds the encoder.
func (s *Session) Configure(p pipeline.EncodeParams) error {
	if s.state != StateUnopened || s.closed {
		return s.stateError("configure")
	}
	if p.Size.Width <= 0 || p.Size.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalidParams, p.Size.Width, p.Size.Height)
	}
	if p.FPS <= 0 {
		return fmt.Errorf("%w: fps %d", ErrInvalidParams, p.FPS)
	}
	if p.GOPSize < 0 {
		return fmt.Errorf("%w: gop size %d", ErrInvalidParams, p.GOPSize)
	}

	muxer, err := s.factory.NewMuxer(p.OutputPath)
	if err != nil {
		return fmt.Errorf("select container for %s: %w", p.OutputPath, err)
	}

	gop := p.GOPSize
	if gop == 0 {
		gop = p.FPS
	}
	params := ports.CodecParams{
		Codec:        p.Codec,
		Width:        p.Size.Width,
		Height:       p.Size.Height,
		PixelFormat:  ports.PixelFormatYUV420P,
		TimeBase:     ports.Rational{Num: 1, Den: p.FPS},
		FrameRate:    ports.Rational{Num: p.FPS, Den: 1},
		GOPSize:      gop,
		MaxBFrames:   0,
		GlobalHeader: muxer.RequiresGlobalHeader(),
		Options:      p.Options,
	}

	stream, err := muxer.AddVideoStream(params)
	if err != nil {
		return multierr.Append(fmt.Errorf("add video stream: %w", err), muxer.Close())
	}

	encoder, err := s.finder.FindEncoder(p.Codec)
	if err != nil {
		return multierr.Append(fmt.Errorf("find encoder: %w", err), muxer.Close())
	}

	s.params = params
	s.muxer = muxer
	s.stream = stream
	s.encoder = encoder
	s.state = StateConfigured

	s.logger.Debug("Configured %s %dx%d@%d fps, gop %d, container %s",
		params.Codec, params.Width, params.Height, p.FPS, gop, muxer.FormatName())
	return nil
}

// Open starts the encoder and writes the container header.
func (s *Session) Open() error {
	if s.state != StateConfigured || s.closed {
		return s.stateError("open")
	}

	if err := s.encoder.Open(s.params); err != nil {
		return fmt.Errorf("open encoder: %w", err)
	}
	if err := s.muxer.WriteHeader(); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	s.state = StateOpened
	s.logger.Debug("Encoder opened, %s header written", s.muxer.FormatName())
	return nil
}

// Submit encodes one frame and writes every packet the encoder has ready.
// Frames must carry PTS 0, 1, 2, ... in order. After a failure the session
// only accepts Finalize or Close.
func (s *Session) Submit(frame *ports.EncoderFrame) error {
	if (s.state != StateOpened && s.state != StateStreaming) || s.closed || s.failed {
		return s.stateError("submit")
	}
	if frame == nil {
		return fmt.Errorf("%w: nil frame", ErrInvalidParams)
	}
	if frame.PTS != s.nextPTS {
		return fmt.Errorf("%w: got %d, want %d", ErrNonMonotonicPTS, frame.PTS, s.nextPTS)
	}

	s.state = StateStreaming
	if err := s.encoder.SendFrame(frame); err != nil {
		s.failed = true
		return fmt.Errorf("send frame %d: %w", frame.PTS, err)
	}
	s.nextPTS++
	s.stats.FramesSubmitted++

	if err := s.drain(false); err != nil {
		s.failed = true
		return err
	}
	return nil
}

// Finalize flushes the encoder, writes the remaining packets and the trailer,
// then releases everything. After a failed Submit the flush is skipped and
// the container is closed with what it already holds.
func (s *Session) Finalize() error {
	if (s.state != StateOpened && s.state != StateStreaming) || s.closed {
		return s.stateError("finalize")
	}

	var err error
	if !s.failed {
		s.logger.Debug("Flushing encoder")
		if ferr := s.encoder.SendFrame(nil); ferr != nil {
			err = multierr.Append(err, fmt.Errorf("flush encoder: %w", ferr))
		} else {
			err = multierr.Append(err, s.drain(true))
		}
	}
	if terr := s.muxer.WriteTrailer(); terr != nil {
		err = multierr.Append(err, fmt.Errorf("write trailer: %w", terr))
	}

	s.state = StateFinalized
	err = multierr.Append(err, s.Close())

	s.logger.Debug("Finalized: %d frames, %d packets, %d bytes",
		s.stats.FramesSubmitted, s.stats.PacketsWritten, s.stats.BytesWritten)
	return err
}

// Close releases the encoder and the container. It is safe to call in any
// state and more than once.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var err error
	if s.encoder != nil {
		if cerr := s.encoder.Close(); cerr != nil {
			err = multierr.Append(err, fmt.Errorf("close encoder: %w", cerr))
		}
	}
	if s.muxer != nil {
		if cerr := s.muxer.Close(); cerr != nil {
			err = multierr.Append(err, fmt.Errorf("close container: %w", cerr))
		}
		s.stats.BytesWritten = s.muxer.BytesWritten()
	}
	return err
}

// Stats returns counters for the packets written so far.
func (s *Session) Stats() pipeline.EncodeStats {
	stats := s.stats
	if s.muxer != nil {
		stats.BytesWritten = s.muxer.BytesWritten()
	}
	return stats
}

// drain moves ready packets from the encoder to the container. When
// flushing it runs until the encoder reports end of stream.
func (s *Session) drain(flushing bool) error {
	for {
		pkt, err := s.encoder.ReceivePacket()
		switch {
		case errors.Is(err, ports.ErrNeedMoreInput):
			if flushing {
				return fmt.Errorf("receive packet: encoder wants input after flush")
			}
			return nil
		case errors.Is(err, ports.ErrEndOfStream):
			return nil
		case err != nil:
			return fmt.Errorf("receive packet: %w", err)
		}

		pkt.StreamIndex = s.stream
		if err := s.muxer.WritePacket(pkt); err != nil {
			return fmt.Errorf("write packet %d: %w", pkt.PTS, err)
		}

		s.stats.PacketsWritten++
		s.stats.LastPTS = pkt.PTS
		if pkt.Keyframe {
			s.stats.Keyframes++
		}
	}
}

func (s *Session) stateError(op string) error {
	state := s.state.String()
	if s.closed && s.state != StateFinalized {
		state = "closed"
	}
	return fmt.Errorf("%w: cannot %s in state %s", ErrInvalidState, op, state)
}
