package h264encoder

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"sync"

	"go.uber.org/multierr"

	"github.com/user/tickclip/pkg/ports"
)

const (
	// DefaultPreset is the libx264 preset used when none is configured.
	DefaultPreset = "veryfast"

	// DefaultCRF is the constant rate factor used when neither CRF nor bitrate is set.
	DefaultCRF = 23

	readChunkSize = 64 * 1024
	stderrLimit   = 4 * 1024
)

var errOutputEnded = errors.New("ffmpeg output ended before flush")

// FFmpegEncoder implements ports.VideoEncoder by streaming raw planar frames
// into ffmpeg and reading the H.264 elementary stream back.
//
// A background goroutine drains ffmpeg's stdout into a queue. All other
// state belongs to the caller's goroutine.
type FFmpegEncoder struct {
	ffmpegPath string

	mu     sync.Mutex
	params ports.CodecParams
	buf    []byte

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr *tailBuffer
	queue  *packetQueue

	opened  bool
	flushed bool
	closed  bool
	waited  bool
	waitErr error
	sent    int
}

// NewFFmpegEncoder creates an encoder that runs the ffmpeg binary at ffmpegPath.
func NewFFmpegEncoder(ffmpegPath string) *FFmpegEncoder {
	return &FFmpegEncoder{ffmpegPath: ffmpegPath}
}

// Open validates params and starts ffmpeg.
func (e *FFmpegEncoder) Open(params ports.CodecParams) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.opened || e.closed {
		return fmt.Errorf("%w: encoder already opened", ErrInvalidParams)
	}
	if err := validateParams(params); err != nil {
		return err
	}

	e.params = params
	cw, ch := (params.Width+1)/2, (params.Height+1)/2
	e.buf = make([]byte, 0, params.Width*params.Height+2*cw*ch)

	cmd := exec.Command(e.ffmpegPath, buildArgs(params)...)
	e.stderr = newTailBuffer(stderrLimit)
	cmd.Stderr = e.stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to get stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to get stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	e.cmd = cmd
	e.stdin = stdin
	e.queue = newPacketQueue()
	go readPackets(stdout, e.queue)

	e.opened = true
	return nil
}

// SendFrame writes one frame to ffmpeg. A nil frame closes ffmpeg's input.
func (e *FFmpegEncoder) SendFrame(frame *ports.EncoderFrame) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.opened || e.closed {
		return ErrNotOpened
	}
	if e.flushed {
		return ErrAlreadyFlushed
	}

	if frame == nil {
		e.flushed = true
		if err := e.stdin.Close(); err != nil {
			return e.failure("close input", err)
		}
		return nil
	}

	if err := e.checkFrame(frame); err != nil {
		return err
	}

	// rawvideo input has no row padding
	e.buf = e.buf[:0]
	for _, p := range frame.Planes {
		for y := 0; y < p.Height; y++ {
			e.buf = append(e.buf, p.Row(y)...)
		}
	}

	if _, err := e.stdin.Write(e.buf); err != nil {
		return e.failure("write frame", err)
	}
	e.sent++
	return nil
}

// ReceivePacket returns the next access unit. Before the flush it never
// blocks; after the flush it waits for ffmpeg to produce the remaining output.
func (e *FFmpegEncoder) ReceivePacket() (ports.Packet, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.opened || e.closed {
		return ports.Packet{}, ErrNotOpened
	}

	if !e.flushed {
		pkt, ok, done, err := e.queue.tryPop()
		switch {
		case ok:
			return pkt, nil
		case done:
			werr := e.wait(err)
			if werr == nil {
				werr = errOutputEnded
			}
			return ports.Packet{}, e.failure("encode", werr)
		default:
			return ports.Packet{}, ports.ErrNeedMoreInput
		}
	}

	pkt, ok, err := e.queue.pop()
	if ok {
		return pkt, nil
	}
	// ffmpeg may refuse to finish an empty stream
	if werr := e.wait(err); werr != nil && e.sent > 0 {
		return ports.Packet{}, e.failure("finish", werr)
	}
	return ports.Packet{}, ports.ErrEndOfStream
}

// Close stops ffmpeg and releases the pipes. An unflushed stream is abandoned.
func (e *FFmpegEncoder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true
	if !e.opened {
		return nil
	}

	var err error
	if !e.flushed {
		e.flushed = true
		_ = e.stdin.Close()
		if kerr := e.cmd.Process.Kill(); kerr != nil && !errors.Is(kerr, os.ErrProcessDone) {
			err = multierr.Append(err, fmt.Errorf("kill ffmpeg: %w", kerr))
		}
		_ = e.wait(e.queue.wait())
		return err
	}

	_ = e.wait(e.queue.wait())
	return err
}

// FramesSent returns the number of frames written to ffmpeg.
func (e *FFmpegEncoder) FramesSent() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sent
}

func (e *FFmpegEncoder) wait(readErr error) error {
	if !e.waited {
		e.waited = true
		e.waitErr = multierr.Append(readErr, e.cmd.Wait())
	}
	return e.waitErr
}

func (e *FFmpegEncoder) failure(op string, err error) error {
	if log := e.stderr.String(); log != "" {
		return fmt.Errorf("%w: %s: %v\nstderr: %s", ErrEncodingFailed, op, err, log)
	}
	return fmt.Errorf("%w: %s: %v", ErrEncodingFailed, op, err)
}

func (e *FFmpegEncoder) checkFrame(f *ports.EncoderFrame) error {
	if f.Released() {
		return fmt.Errorf("%w: frame %d already released", ErrFrameMismatch, f.PTS)
	}
	if f.Format != e.params.PixelFormat || f.Width != e.params.Width || f.Height != e.params.Height {
		return fmt.Errorf("%w: got %s %dx%d, want %s %dx%d", ErrFrameMismatch,
			f.Format, f.Width, f.Height, e.params.PixelFormat, e.params.Width, e.params.Height)
	}
	if len(f.Planes) != 3 {
		return fmt.Errorf("%w: expected 3 planes, got %d", ErrFrameMismatch, len(f.Planes))
	}
	cw, ch := (f.Width+1)/2, (f.Height+1)/2
	want := [3][2]int{{f.Width, f.Height}, {cw, ch}, {cw, ch}}
	for i, p := range f.Planes {
		if p.Width != want[i][0] || p.Height != want[i][1] || p.Stride < p.Width || len(p.Data) < p.Stride*p.Height {
			return fmt.Errorf("%w: plane %d layout %dx%d stride %d", ErrFrameMismatch, i, p.Width, p.Height, p.Stride)
		}
	}
	return nil
}

// readPackets splits ffmpeg's output into access units. Packet timestamps
// are the output order, which equals input order without B-frames.
func readPackets(r io.Reader, q *packetQueue) {
	var split auSplitter
	var index int64
	emit := func(aus [][][]byte) {
		for _, au := range aus {
			q.push(ports.Packet{
				Data:     marshalAnnexB(au),
				PTS:      index,
				DTS:      index,
				Keyframe: containsIDR(au),
			})
			index++
		}
	}

	chunk := make([]byte, readChunkSize)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			emit(split.push(chunk[:n]))
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = nil
			}
			emit(split.flush())
			q.finish(err)
			return
		}
	}
}

func validateParams(p ports.CodecParams) error {
	switch {
	case p.Codec != "h264":
		return fmt.Errorf("%w: codec %q", ErrInvalidParams, p.Codec)
	case p.Width <= 0 || p.Height <= 0 || p.Width%2 != 0 || p.Height%2 != 0:
		return fmt.Errorf("%w: size %dx%d must be positive and even", ErrInvalidParams, p.Width, p.Height)
	case p.PixelFormat != ports.PixelFormatYUV420P:
		return fmt.Errorf("%w: pixel format %s", ErrInvalidParams, p.PixelFormat)
	case p.FrameRate.Num <= 0 || p.FrameRate.Den <= 0:
		return fmt.Errorf("%w: frame rate %d/%d", ErrInvalidParams, p.FrameRate.Num, p.FrameRate.Den)
	case p.MaxBFrames != 0:
		return fmt.Errorf("%w: B-frames are not supported", ErrInvalidParams)
	case p.GOPSize < 0:
		return fmt.Errorf("%w: gop size %d", ErrInvalidParams, p.GOPSize)
	case p.Options.CRF < 0 || p.Options.CRF > 51:
		return fmt.Errorf("%w: crf %d out of range 0-51", ErrInvalidParams, p.Options.CRF)
	case p.Options.Bitrate < 0:
		return fmt.Errorf("%w: bitrate %d", ErrInvalidParams, p.Options.Bitrate)
	}
	return nil
}

func buildArgs(p ports.CodecParams) []string {
	preset := p.Options.Preset
	if preset == "" {
		preset = DefaultPreset
	}

	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-f", "rawvideo",
		"-pix_fmt", p.PixelFormat.String(),
		"-s", fmt.Sprintf("%dx%d", p.Width, p.Height),
		"-r", fmt.Sprintf("%d/%d", p.FrameRate.Num, p.FrameRate.Den),
		"-i", "pipe:0",
		"-c:v", "libx264",
		"-preset", preset,
		"-bf", strconv.Itoa(p.MaxBFrames),
	}

	if p.GOPSize > 0 {
		args = append(args, "-g", strconv.Itoa(p.GOPSize))
	}

	if p.Options.Bitrate > 0 {
		args = append(args, "-b:v", fmt.Sprintf("%dk", p.Options.Bitrate))
	} else {
		crf := p.Options.CRF
		if crf == 0 {
			crf = DefaultCRF
		}
		args = append(args, "-crf", strconv.Itoa(crf))
	}

	if p.GlobalHeader {
		args = append(args, "-flags", "+global_header")
	}

	return append(args,
		"-pix_fmt", "yuv420p",
		"-f", "h264",
		"pipe:1",
	)
}

var _ ports.VideoEncoder = (*FFmpegEncoder)(nil)
