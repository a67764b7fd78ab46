package h264encoder

import (
	"github.com/Eyevinn/mp4ff/avc"
)

var startCode = []byte{0, 0, 0, 1}

// auSplitter groups an Annex-B byte stream into access units.
//
// Bytes after the last start code seen so far are held back because the
// NAL unit they belong to may continue in the next chunk.
type auSplitter struct {
	pending []byte
	current [][]byte
	hasVCL  bool
}

// push appends a chunk of the stream and returns the access units it completes.
func (s *auSplitter) push(chunk []byte) [][][]byte {
	s.pending = append(s.pending, chunk...)

	cut := lastStartCode(s.pending)
	if cut <= 0 {
		return nil
	}

	aus := s.addAll(avc.ExtractNalusFromByteStream(s.pending[:cut]))
	s.pending = append([]byte(nil), s.pending[cut:]...)
	return aus
}

// flush returns everything still buffered once the stream has ended.
func (s *auSplitter) flush() [][][]byte {
	var aus [][][]byte
	if len(s.pending) > 0 {
		aus = s.addAll(avc.ExtractNalusFromByteStream(s.pending))
		s.pending = nil
	}
	if len(s.current) > 0 {
		aus = append(aus, s.current)
		s.current = nil
		s.hasVCL = false
	}
	return aus
}

func (s *auSplitter) addAll(nalus [][]byte) [][][]byte {
	var aus [][][]byte
	for _, nalu := range nalus {
		if len(nalu) == 0 {
			continue
		}
		if s.hasVCL && startsAccessUnit(nalu) {
			aus = append(aus, s.current)
			s.current = nil
			s.hasVCL = false
		}
		s.current = append(s.current, nalu)
		if isVCL(nalu) {
			s.hasVCL = true
		}
	}
	return aus
}

func isVCL(nalu []byte) bool {
	t := avc.GetNaluType(nalu[0])
	return t == avc.NALU_NON_IDR || t == avc.NALU_IDR
}

// startsAccessUnit reports whether nalu cannot belong to an access unit that
// already holds a slice.
func startsAccessUnit(nalu []byte) bool {
	switch avc.GetNaluType(nalu[0]) {
	case avc.NALU_AUD, avc.NALU_SPS, avc.NALU_PPS, avc.NALU_SEI:
		return true
	case avc.NALU_NON_IDR, avc.NALU_IDR:
		// first_mb_in_slice == 0 is coded as a single set bit
		return len(nalu) > 1 && nalu[1]&0x80 != 0
	default:
		return false
	}
}

func containsIDR(au [][]byte) bool {
	for _, nalu := range au {
		if avc.GetNaluType(nalu[0]) == avc.NALU_IDR {
			return true
		}
	}
	return false
}

// lastStartCode returns the offset of the last start code in b, or -1.
// A zero byte in front of a three-byte start code is treated as part of it.
func lastStartCode(b []byte) int {
	for i := len(b) - 3; i >= 0; i-- {
		if b[i] == 0 && b[i+1] == 0 && b[i+2] == 1 {
			if i > 0 && b[i-1] == 0 {
				return i - 1
			}
			return i
		}
	}
	return -1
}

// marshalAnnexB joins NAL units with four-byte start codes.
func marshalAnnexB(au [][]byte) []byte {
	n := 0
	for _, nalu := range au {
		n += len(startCode) + len(nalu)
	}
	out := make([]byte, 0, n)
	for _, nalu := range au {
		out = append(out, startCode...)
		out = append(out, nalu...)
	}
	return out
}
