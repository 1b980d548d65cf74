package codecs

import (
	"github.com/Vocalocity/rtpproxy-pre-2-0/rtp"
)

var g729FrameSizes = [...]int{10, 8, 15, 2}

// G729FrameSizes returns the frame sizes tried when splitting a G.729
// payload, in order: plain 10 byte frames first, then Annex D (8), Annex E
// (15) and finally Annex B SID frames (2). G.729 payloads carry no frame
// length, so the size is guessed from the payload length.
func G729FrameSizes() []int {
	return append([]int(nil), g729FrameSizes[:]...)
}

var audioCodecs = []CodecMetadata{
	{PayloadType: rtp.PCMU, Name: "PCMU", LongName: "G.711 mu-law", Kind: Waveform},
	{PayloadType: rtp.PCMA, Name: "PCMA", LongName: "G.711 A-law", Kind: Waveform},
	{PayloadType: rtp.G729, Name: "G729", LongName: "G.729 CS-ACELP (approximate, not bit-exact)", Kind: Speech, FrameBytes: g729FrameSizes[:]},
	{PayloadType: rtp.CN, Name: "CN", LongName: "Comfort Noise", Kind: Signalling},
	{PayloadType: rtp.TSE_CISCO, Name: "telephone-event", LongName: "Telephony events (Cisco NSE)", Kind: Signalling},
	{PayloadType: rtp.TSE, Name: "telephone-event", LongName: "Telephony events (RFC 4733)", Kind: Signalling},
}

func GetAudioCodecs() []CodecMetadata {
	out := make([]CodecMetadata, len(audioCodecs))
	for i, c := range audioCodecs {
		out[i] = c.clone()
	}
	return out
}

// Lookup returns the metadata for a supported payload type.
func Lookup(payloadType int) (CodecMetadata, bool) {
	for _, c := range audioCodecs {
		if c.PayloadType == payloadType {
			return c.clone(), true
		}
	}
	return CodecMetadata{}, false
}

func (m CodecMetadata) clone() CodecMetadata {
	if m.FrameBytes != nil {
		m.FrameBytes = append([]int(nil), m.FrameBytes...)
	}
	return m
}

// Name returns a printable name for any payload type.
func Name(payloadType int) string {
	if c, ok := Lookup(payloadType); ok {
		return c.Name
	}
	switch payloadType {
	case rtp.GSM:
		return "GSM"
	case rtp.G723:
		return "G723"
	case rtp.G722:
		return "G722"
	}
	return "unknown"
}
