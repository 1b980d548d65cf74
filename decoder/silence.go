package decoder

import (
	"fmt"
	"slices"

	"github.com/Vocalocity/rtpproxy-pre-2-0/codecs"
	"github.com/Vocalocity/rtpproxy-pre-2-0/rtp"
)

// generateSilence appends ticks samples of silence shaped for the last
// decoded payload type. Memoryless codecs get zeros; the speech codec is
// asked for concealment frames so its state follows the gap, with zeros
// for a trailing partial frame or when no codec state can be created.
func (s *Stream) generateSilence(ticks int) error {
	switch s.lpt {
	case rtp.PCMU, rtp.PCMA, rtp.G723:
		s.zeros(ticks)
		return nil
	case rtp.G729:
		dec, err := s.speechCodec()
		if err != nil {
			s.log.WithError(err).Debug("Zero filling silence")
			s.zeros(ticks)
			return nil
		}
		for ; ticks >= codecs.SpeechFrameSamples; ticks -= codecs.SpeechFrameSamples {
			pcm, err := dec.DecodeFrame(nil)
			if err != nil {
				s.zeros(codecs.SpeechFrameSamples)
				continue
			}
			s.buf = append(s.buf, pcm[:]...)
		}
		s.zeros(ticks)
		return nil
	}
	return fmt.Errorf("%w: payload type %d", ErrDecoder, s.lpt)
}

func (s *Stream) zeros(n int) {
	if n <= 0 {
		return
	}
	start := len(s.buf)
	s.buf = slices.Grow(s.buf, n)[:start+n]
	clear(s.buf[start:])
}
