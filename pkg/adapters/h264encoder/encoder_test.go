package h264encoder

import (
	"errors"
	"strings"
	"testing"

	"github.com/user/tickclip/pkg/ports"
)

func testParams(width, height int) ports.CodecParams {
	return ports.CodecParams{
		Codec:       "h264",
		Width:       width,
		Height:      height,
		PixelFormat: ports.PixelFormatYUV420P,
		TimeBase:    ports.Rational{Num: 1, Den: 10},
		FrameRate:   ports.Rational{Num: 10, Den: 1},
		GOPSize:     10,
	}
}

// testFrame builds a grey frame with a moving bright bar.
func testFrame(width, height int, pts int64) *ports.EncoderFrame {
	planes := make([]ports.Plane, 3)
	for i := range planes {
		w, h := width, height
		if i > 0 {
			w, h = (width+1)/2, (height+1)/2
		}
		stride := (w + 31) / 32 * 32
		p := ports.Plane{Data: make([]byte, stride*h), Stride: stride, Width: w, Height: h}
		for y := 0; y < h; y++ {
			row := p.Row(y)
			for x := range row {
				row[x] = 128
				if i == 0 && (x+int(pts)*4)%width < 8 {
					row[x] = 235
				}
			}
		}
		planes[i] = p
	}
	return &ports.EncoderFrame{
		Format: ports.PixelFormatYUV420P,
		Width:  width,
		Height: height,
		Planes: planes,
		PTS:    pts,
	}
}

func requireLibx264(t *testing.T) string {
	t.Helper()
	path, err := FindFFmpeg()
	if err != nil {
		t.Skip("ffmpeg not available")
	}
	ok, err := HasEncoder(path, EncoderName)
	if err != nil || !ok {
		t.Skip("ffmpeg built without libx264")
	}
	return path
}

func TestEncoder_Stream(t *testing.T) {
	path := requireLibx264(t)

	enc := NewFFmpegEncoder(path)
	if err := enc.Open(testParams(64, 48)); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer enc.Close()

	var packets []ports.Packet
	drain := func() {
		for {
			pkt, err := enc.ReceivePacket()
			if errors.Is(err, ports.ErrNeedMoreInput) || errors.Is(err, ports.ErrEndOfStream) {
				return
			}
			if err != nil {
				t.Fatalf("ReceivePacket failed: %v", err)
			}
			packets = append(packets, pkt)
		}
	}

	const numFrames = 25
	for i := 0; i < numFrames; i++ {
		if err := enc.SendFrame(testFrame(64, 48, int64(i))); err != nil {
			t.Fatalf("SendFrame %d failed: %v", i, err)
		}
		drain()
	}
	if err := enc.SendFrame(nil); err != nil {
		t.Fatalf("flush failed: %v", err)
	}
	drain()

	if _, err := enc.ReceivePacket(); !errors.Is(err, ports.ErrEndOfStream) {
		t.Errorf("expected ErrEndOfStream after drain, got %v", err)
	}

	if len(packets) != numFrames {
		t.Fatalf("expected %d packets, got %d", numFrames, len(packets))
	}

	lastKey := int64(-1)
	for i, pkt := range packets {
		if pkt.PTS != int64(i) || pkt.DTS != pkt.PTS {
			t.Errorf("packet %d: PTS %d DTS %d", i, pkt.PTS, pkt.DTS)
		}
		if len(pkt.Data) < 5 || string(pkt.Data[:4]) != "\x00\x00\x00\x01" {
			t.Errorf("packet %d is not Annex-B", i)
		}
		if pkt.Keyframe {
			lastKey = pkt.PTS
		}
		if pkt.PTS-lastKey >= 10 {
			t.Errorf("packet %d: no keyframe within GOP", i)
		}
	}
	if !packets[0].Keyframe {
		t.Error("first packet must be a keyframe")
	}

	if enc.FramesSent() != numFrames {
		t.Errorf("expected %d frames sent, got %d", numFrames, enc.FramesSent())
	}
}

func TestEncoder_ZeroFrames(t *testing.T) {
	path := requireLibx264(t)

	enc := NewFFmpegEncoder(path)
	if err := enc.Open(testParams(64, 48)); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer enc.Close()

	if err := enc.SendFrame(nil); err != nil {
		t.Fatalf("flush failed: %v", err)
	}
	if _, err := enc.ReceivePacket(); !errors.Is(err, ports.ErrEndOfStream) {
		t.Errorf("expected ErrEndOfStream, got %v", err)
	}
}

func TestEncoder_CloseWithoutFlush(t *testing.T) {
	path := requireLibx264(t)

	enc := NewFFmpegEncoder(path)
	if err := enc.Open(testParams(64, 48)); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := enc.SendFrame(testFrame(64, 48, 0)); err != nil {
		t.Fatalf("SendFrame failed: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
	if err := enc.SendFrame(testFrame(64, 48, 1)); !errors.Is(err, ErrNotOpened) {
		t.Errorf("expected ErrNotOpened after Close, got %v", err)
	}
}

func TestEncoder_NotOpened(t *testing.T) {
	enc := NewFFmpegEncoder("/nonexistent/ffmpeg")

	if err := enc.SendFrame(testFrame(64, 48, 0)); !errors.Is(err, ErrNotOpened) {
		t.Errorf("SendFrame: expected ErrNotOpened, got %v", err)
	}
	if _, err := enc.ReceivePacket(); !errors.Is(err, ErrNotOpened) {
		t.Errorf("ReceivePacket: expected ErrNotOpened, got %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Errorf("Close on unopened encoder: %v", err)
	}
}

func TestEncoder_OpenMissingBinary(t *testing.T) {
	enc := NewFFmpegEncoder("/nonexistent/ffmpeg")
	if err := enc.Open(testParams(64, 48)); err == nil {
		t.Error("expected error starting a missing binary")
	}
}

func TestValidateParams(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*ports.CodecParams)
	}{
		{"wrong codec", func(p *ports.CodecParams) { p.Codec = "vp9" }},
		{"odd width", func(p *ports.CodecParams) { p.Width = 63 }},
		{"zero height", func(p *ports.CodecParams) { p.Height = 0 }},
		{"zero frame rate", func(p *ports.CodecParams) { p.FrameRate = ports.Rational{} }},
		{"b-frames", func(p *ports.CodecParams) { p.MaxBFrames = 2 }},
		{"negative gop", func(p *ports.CodecParams) { p.GOPSize = -1 }},
		{"crf too high", func(p *ports.CodecParams) { p.Options.CRF = 52 }},
		{"negative bitrate", func(p *ports.CodecParams) { p.Options.Bitrate = -1 }},
	}

	if err := validateParams(testParams(640, 240)); err != nil {
		t.Fatalf("valid params rejected: %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testParams(640, 240)
			tt.modify(&p)
			if err := validateParams(p); !errors.Is(err, ErrInvalidParams) {
				t.Errorf("expected ErrInvalidParams, got %v", err)
			}
		})
	}
}

func TestBuildArgs(t *testing.T) {
	args := strings.Join(buildArgs(testParams(640, 240)), " ")

	for _, want := range []string{
		"-f rawvideo -pix_fmt yuv420p -s 640x240 -r 10/1 -i pipe:0",
		"-c:v libx264",
		"-preset veryfast",
		"-bf 0",
		"-g 10",
		"-crf 23",
		"-f h264 pipe:1",
	} {
		if !strings.Contains(args, want) {
			t.Errorf("args %q missing %q", args, want)
		}
	}
	if strings.Contains(args, "global_header") {
		t.Error("global header requested without GlobalHeader")
	}
}

func TestBuildArgs_Options(t *testing.T) {
	p := testParams(640, 240)
	p.Options = ports.EncoderOptions{Bitrate: 500, Preset: "medium"}
	p.GlobalHeader = true
	args := strings.Join(buildArgs(p), " ")

	for _, want := range []string{"-b:v 500k", "-preset medium", "-flags +global_header"} {
		if !strings.Contains(args, want) {
			t.Errorf("args %q missing %q", args, want)
		}
	}
	if strings.Contains(args, "-crf") {
		t.Error("crf set alongside bitrate")
	}
}

func TestParseEncoderList(t *testing.T) {
	out := []byte(`Encoders:
 V..... = Video
 A..... = Audio
 ------
 V....D libx264              libx264 H.264 / AVC / MPEG-4 AVC / MPEG-4 part 10 (codec h264)
 V....D mpeg4                MPEG-4 part 2
 A....D aac                  AAC (Advanced Audio Coding)
`)

	if !parseEncoderList(out, "libx264") {
		t.Error("expected libx264 to be listed")
	}
	if parseEncoderList(out, "libx265") {
		t.Error("libx265 reported but not listed")
	}
	if parseEncoderList(out, "Video") {
		t.Error("legend line matched as encoder")
	}
}

func TestFinder_UnknownCodec(t *testing.T) {
	f := NewFinder()
	if _, err := f.FindEncoder("vp9"); !errors.Is(err, ports.ErrCodecNotFound) {
		t.Errorf("expected ErrCodecNotFound, got %v", err)
	}
}

func TestFinder_MissingFFmpeg(t *testing.T) {
	SetFFmpegPath("/nonexistent/ffmpeg")
	defer SetFFmpegPath("")

	_, err := NewFinder().FindEncoder("h264")
	if !errors.Is(err, ports.ErrCodecNotFound) {
		t.Errorf("expected ErrCodecNotFound, got %v", err)
	}
	if !errors.Is(err, ErrFFmpegNotFound) {
		t.Errorf("expected ErrFFmpegNotFound in chain, got %v", err)
	}
}

func TestFinder_MissingLibx264(t *testing.T) {
	path, err := FindFFmpeg()
	if err != nil {
		t.Skip("ffmpeg not available")
	}
	SetFFmpegPath(path)
	defer SetFFmpegPath("")

	f := &Finder{hasEncoder: func(string, string) (bool, error) { return false, nil }}
	if _, err := f.FindEncoder("h264"); !errors.Is(err, ports.ErrCodecNotFound) {
		t.Errorf("expected ErrCodecNotFound, got %v", err)
	}
}

func TestTailBuffer(t *testing.T) {
	b := newTailBuffer(8)
	b.Write([]byte("0123456789"))
	b.Write([]byte("ab"))
	if got := b.String(); got != "456789ab" {
		t.Errorf("got %q, want %q", got, "456789ab")
	}
}
