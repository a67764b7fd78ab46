package mocks

// H.264 fixtures for tests that push packets through a real muxer or probe.
// The parameter sets are minimal but valid baseline profile headers.
var (
	// SPS640x240 is a baseline SPS for a 640x240 picture.
	SPS640x240 = []byte{0x67, 0x42, 0xc0, 0x1e, 0xda, 0x02, 0x81, 0xf9}

	// SPS64x48 is a baseline SPS for a 64x48 picture.
	SPS64x48 = []byte{0x67, 0x42, 0xc0, 0x1e, 0xda, 0x11, 0xe4}

	// PPS is a baseline PPS referencing SPS 0.
	PPS = []byte{0x68, 0xce, 0x3c, 0x80}
)

// AccessUnit returns an Annex-B access unit holding one slice. Keyframes
// are IDR slices preceded by sps and PPS when sps is non-nil.
func AccessUnit(sps []byte, index int64, keyframe bool) []byte {
	sc := []byte{0, 0, 0, 1}
	var out []byte
	if keyframe && sps != nil {
		out = append(out, sc...)
		out = append(out, sps...)
		out = append(out, sc...)
		out = append(out, PPS...)
	}
	out = append(out, sc...)
	if keyframe {
		out = append(out, 0x65, 0x88, 0x84)
	} else {
		out = append(out, 0x41, 0x9a, 0x02)
	}
	// Payload byte varies per frame and is never zero
	return append(out, byte(index%255)+1)
}
