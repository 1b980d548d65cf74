package codecs

import (
	"fmt"
)

// Kind groups payload types by how the decoder treats them.
type Kind int

const (
	// Waveform codecs map every input octet to one sample and keep no state.
	Waveform Kind = iota
	// Speech codecs carry compressed frames through a stateful predictor.
	Speech
	// Signalling payloads (comfort noise, telephone events) carry no samples.
	Signalling
)

func (k Kind) String() string {
	switch k {
	case Waveform:
		return "waveform"
	case Speech:
		return "speech"
	case Signalling:
		return "signalling"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

type CodecMetadata struct {
	PayloadType int
	Name        string
	LongName    string
	Kind        Kind
	// FrameBytes lists the accepted frame sizes for speech codecs, in the
	// order they are tried against a payload length.
	FrameBytes []int
}

func (m CodecMetadata) Describe() string {
	frames := ""
	if len(m.FrameBytes) > 0 {
		frames = fmt.Sprintf("\n\tFrame sizes: %v bytes -> %d samples each", m.FrameBytes, SpeechFrameSamples)
	}
	return fmt.Sprintf(
		"(%3d) %s\n\t%s (%s)%s",
		m.PayloadType, m.Name, m.LongName, m.Kind, frames)
}
