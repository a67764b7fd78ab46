package tsmuxer

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/user/tickclip/pkg/adapters/tsprobe"
	"github.com/user/tickclip/pkg/mocks"
	"github.com/user/tickclip/pkg/ports"
)

func streamParams(fps int) ports.CodecParams {
	return ports.CodecParams{
		Codec:       "h264",
		Width:       640,
		Height:      240,
		PixelFormat: ports.PixelFormatYUV420P,
		TimeBase:    ports.Rational{Num: 1, Den: fps},
		FrameRate:   ports.Rational{Num: fps, Den: 1},
		GOPSize:     fps,
	}
}

func openMuxer(t *testing.T, fs *mocks.FileSystem, path string, fps int) *Muxer {
	t.Helper()
	m := NewMuxer(fs, path)
	idx, err := m.AddVideoStream(streamParams(fps))
	if err != nil {
		t.Fatalf("AddVideoStream failed: %v", err)
	}
	if idx != 0 {
		t.Fatalf("expected stream index 0, got %d", idx)
	}
	if err := m.WriteHeader(); err != nil {
		t.Fatalf("WriteHeader failed: %v", err)
	}
	return m
}

func writeFrames(t *testing.T, m *Muxer, n, gop int) {
	t.Helper()
	for i := 0; i < n; i++ {
		key := i%gop == 0
		pkt := ports.Packet{
			Data:     mocks.AccessUnit(mocks.SPS640x240, int64(i), key),
			PTS:      int64(i),
			DTS:      int64(i),
			Keyframe: key,
		}
		if err := m.WritePacket(pkt); err != nil {
			t.Fatalf("WritePacket %d failed: %v", i, err)
		}
	}
}

func TestFactory_Extensions(t *testing.T) {
	f := NewFactory(mocks.NewFileSystem())

	for _, path := range []string{"output.ts", "clip.M2TS", "dir/a.mts"} {
		m, err := f.NewMuxer(path)
		if err != nil {
			t.Errorf("%s: unexpected error %v", path, err)
			continue
		}
		if m.FormatName() != "mpegts" {
			t.Errorf("%s: expected mpegts, got %s", path, m.FormatName())
		}
		if m.RequiresGlobalHeader() {
			t.Errorf("%s: transport stream must not require global header", path)
		}
	}

	for _, path := range []string{"output.mp4", "output", "output.ts.bak"} {
		if _, err := f.NewMuxer(path); !errors.Is(err, ports.ErrUnsupportedContainer) {
			t.Errorf("%s: expected ErrUnsupportedContainer, got %v", path, err)
		}
	}
}

func TestMuxer_RoundTrip(t *testing.T) {
	fs := mocks.NewFileSystem()
	m := openMuxer(t, fs, "out.ts", 60)

	writeFrames(t, m, 60, 60)
	if err := m.WriteTrailer(); err != nil {
		t.Fatalf("WriteTrailer failed: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, ok := fs.GetFile("out.ts")
	if !ok || len(data) == 0 {
		t.Fatal("expected output file")
	}
	if len(data)%188 != 0 || data[0] != 0x47 {
		t.Errorf("output is not aligned transport stream packets (%d bytes)", len(data))
	}
	if m.BytesWritten() != int64(len(data)) {
		t.Errorf("BytesWritten %d, file has %d bytes", m.BytesWritten(), len(data))
	}
	if m.PacketsWritten() != 60 {
		t.Errorf("expected 60 packets written, got %d", m.PacketsWritten())
	}

	rep, err := tsprobe.Probe(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if err := rep.Verify(60); err != nil {
		t.Error(err)
	}
	if rep.Width != 640 || rep.Height != 240 {
		t.Errorf("expected 640x240, got %dx%d", rep.Width, rep.Height)
	}
	if rep.Frames != 60 {
		t.Fatalf("expected 60 frames, got %d", rep.Frames)
	}
	for i, pts := range rep.RelativePTS() {
		if pts != int64(i)*1500 {
			t.Errorf("frame %d: pts %d, want %d", i, pts, i*1500)
		}
	}
	if rep.Keyframes != 1 {
		t.Errorf("expected 1 keyframe, got %d", rep.Keyframes)
	}
}

func TestMuxer_NoPackets(t *testing.T) {
	fs := mocks.NewFileSystem()
	m := openMuxer(t, fs, "empty.ts", 60)

	if err := m.WriteTrailer(); err != nil {
		t.Fatalf("WriteTrailer failed: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, ok := fs.GetFile("empty.ts")
	if !ok {
		t.Fatal("expected output file to exist")
	}
	if len(data) == 0 || len(data)%188 != 0 || data[0] != 0x47 {
		t.Fatalf("expected program tables, got %d bytes", len(data))
	}

	rep, err := tsprobe.Probe(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if rep.Streams != 1 || rep.Codec != tsprobe.CodecH264 {
		t.Errorf("expected one h264 stream, got %d %s", rep.Streams, rep.Codec)
	}
	if rep.Frames != 0 {
		t.Errorf("expected no frames, got %d", rep.Frames)
	}
	if err := rep.Verify(0); err != nil {
		t.Error(err)
	}
}

func TestMuxer_CloseWithoutTrailerKeepsData(t *testing.T) {
	fs := mocks.NewFileSystem()
	m := openMuxer(t, fs, "cut.ts", 10)

	writeFrames(t, m, 5, 10)
	if err := m.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}

	data, _ := fs.GetFile("cut.ts")
	rep, err := tsprobe.Probe(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if rep.Frames != 5 {
		t.Errorf("expected 5 frames, got %d", rep.Frames)
	}
}

func TestMuxer_OutputUnavailable(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.CreateFunc = func(path string) (io.WriteCloser, error) {
		return nil, errors.New("permission denied")
	}

	m := NewMuxer(fs, "/readonly/out.ts")
	if _, err := m.AddVideoStream(streamParams(60)); err != nil {
		t.Fatal(err)
	}
	if err := m.WriteHeader(); !errors.Is(err, ports.ErrOutputUnavailable) {
		t.Errorf("expected ErrOutputUnavailable, got %v", err)
	}
	if err := m.Close(); err != nil {
		t.Errorf("Close after failed header: %v", err)
	}
}

func TestMuxer_StateErrors(t *testing.T) {
	fs := mocks.NewFileSystem()

	m := NewMuxer(fs, "a.ts")
	if err := m.WriteHeader(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("WriteHeader without stream: expected ErrInvalidState, got %v", err)
	}
	if err := m.WritePacket(ports.Packet{}); !errors.Is(err, ErrInvalidState) {
		t.Errorf("WritePacket before header: expected ErrInvalidState, got %v", err)
	}
	if err := m.WriteTrailer(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("WriteTrailer before header: expected ErrInvalidState, got %v", err)
	}

	if _, err := m.AddVideoStream(streamParams(60)); err != nil {
		t.Fatal(err)
	}
	if _, err := m.AddVideoStream(streamParams(60)); !errors.Is(err, ErrInvalidState) {
		t.Errorf("second stream: expected ErrInvalidState, got %v", err)
	}

	other := NewMuxer(fs, "b.ts")
	p := streamParams(60)
	p.Codec = "vp9"
	if _, err := other.AddVideoStream(p); !errors.Is(err, ports.ErrUnsupportedContainer) {
		t.Errorf("vp9 stream: expected ErrUnsupportedContainer, got %v", err)
	}
}

func TestMuxer_TimestampOrder(t *testing.T) {
	m := openMuxer(t, mocks.NewFileSystem(), "o.ts", 60)
	defer m.Close()

	first := ports.Packet{Data: mocks.AccessUnit(mocks.SPS640x240, 0, true), PTS: 0, DTS: 0, Keyframe: true}
	if err := m.WritePacket(first); err != nil {
		t.Fatal(err)
	}
	if err := m.WritePacket(first); !errors.Is(err, ErrTimestampOrder) {
		t.Errorf("expected ErrTimestampOrder, got %v", err)
	}
}

func TestMuxer_PrepareAccessUnit(t *testing.T) {
	m := NewMuxer(mocks.NewFileSystem(), "x.ts")

	sps := mocks.SPS640x240
	idr := []byte{0x65, 0x88, 0x84, 0x01}

	au := m.prepareAccessUnit([][]byte{{0x09, 0x10}, sps, mocks.PPS, idr})
	if len(au) != 4 || au[0][0] != 0x09 || au[0][1] != 0xf0 {
		t.Fatalf("expected own delimiter then 3 NAL units, got %x", au)
	}

	// A later IDR without parameter sets gets the cached ones
	au = m.prepareAccessUnit([][]byte{idr})
	if len(au) != 4 {
		t.Fatalf("expected AUD, SPS, PPS, IDR; got %d NAL units", len(au))
	}
	if !bytes.Equal(au[1], sps) || !bytes.Equal(au[2], mocks.PPS) || !bytes.Equal(au[3], idr) {
		t.Errorf("unexpected access unit %x", au)
	}

	au = m.prepareAccessUnit([][]byte{{0x41, 0x9a, 0x01}})
	if len(au) != 2 {
		t.Errorf("P access unit must not carry parameter sets, got %d NAL units", len(au))
	}
}

func TestMuxer_ToTicks(t *testing.T) {
	tests := []struct {
		name     string
		timeBase ports.Rational
		ts       int64
		want     int64
	}{
		{"first frame", ports.Rational{Num: 1, Den: 60}, 0, 0},
		{"60 fps", ports.Rational{Num: 1, Den: 60}, 1, 1500},
		{"60 fps one second", ports.Rational{Num: 1, Den: 60}, 60, 90000},
		{"25 fps", ports.Rational{Num: 1, Den: 25}, 3, 10800},
		{"ntsc", ports.Rational{Num: 1001, Den: 30000}, 1, 3003},
		{"rounds to nearest", ports.Rational{Num: 1, Den: 7}, 1, 12857},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMuxer(mocks.NewFileSystem(), "x.ts")
			p := streamParams(60)
			p.TimeBase = tt.timeBase
			if _, err := m.AddVideoStream(p); err != nil {
				t.Fatal(err)
			}
			if got := m.toTicks(tt.ts); got != tt.want {
				t.Errorf("toTicks(%d) = %d, want %d", tt.ts, got, tt.want)
			}
		})
	}
}
