package codecs

import (
	"errors"

	"github.com/Vocalocity/rtpproxy-pre-2-0/codecs/g729"
)

// SpeechFrameSamples is the PCM block every speech frame expands to.
const SpeechFrameSamples = 80

var ErrCodecUnavailable = errors.New("speech codec unavailable")

// SpeechDecoder is a stateful frame decoder. A nil frame asks for
// concealment output that follows the decoder's internal model.
type SpeechDecoder interface {
	DecodeFrame(frame []byte) ([SpeechFrameSamples]int16, error)
	Close() error
}

// SpeechCodecFactory allocates decoder state for one stream.
type SpeechCodecFactory func() (SpeechDecoder, error)

// NewG729Decoder is the default SpeechCodecFactory.
func NewG729Decoder() (SpeechDecoder, error) {
	return g729.NewDecoder(), nil
}
