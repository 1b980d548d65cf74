package codecs

import (
	"encoding/binary"

	"github.com/zaf/g711"

	"github.com/Vocalocity/rtpproxy-pre-2-0/rtp"
)

// Law selects the G.711 companding table.
type Law int

const (
	ULaw Law = iota
	ALaw
)

// LawFor maps a payload type to its companding law.
func LawFor(payloadType int) (Law, bool) {
	switch payloadType {
	case rtp.PCMU:
		return ULaw, true
	case rtp.PCMA:
		return ALaw, true
	}
	return 0, false
}

// DecodeWaveform appends one linear sample per payload octet to dst.
func DecodeWaveform(law Law, payload []byte, dst []int16) []int16 {
	var lpcm []byte
	if law == ALaw {
		lpcm = g711.DecodeAlaw(payload)
	} else {
		lpcm = g711.DecodeUlaw(payload)
	}
	for i := 0; i+1 < len(lpcm); i += 2 {
		dst = append(dst, int16(binary.LittleEndian.Uint16(lpcm[i:])))
	}
	return dst
}
