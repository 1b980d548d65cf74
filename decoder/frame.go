package decoder

import (
	"fmt"

	"github.com/Vocalocity/rtpproxy-pre-2-0/codecs"
	"github.com/Vocalocity/rtpproxy-pre-2-0/rtp"
)

// decodeFrame appends the samples of one packet to the buffer and advances
// both clocks by one tick per sample. Signalling payloads produce nothing
// without an error.
func (s *Stream) decodeFrame(pkt *rtp.RtpPacket) (int, error) {
	pt := pkt.PayloadType
	if law, ok := codecs.LawFor(pt); ok {
		s.buf = codecs.DecodeWaveform(law, pkt.Payload, s.buf)
		n := len(pkt.Payload)
		s.nticks += uint32(n)
		s.emit(uint64(n), false)
		return n, nil
	}
	switch {
	case pt == rtp.G729:
		return s.decodeSpeech(pkt.Payload)
	case isSignalling(pt):
		return 0, nil
	}
	return 0, fmt.Errorf("%w: %d", ErrUnsupportedPayload, pt)
}

func (s *Stream) decodeSpeech(payload []byte) (int, error) {
	size, err := inferFrameSize(len(payload))
	if err != nil {
		return 0, err
	}
	dec, err := s.speechCodec()
	if err != nil {
		return 0, err
	}
	start := len(s.buf)
	for off := 0; off < len(payload); off += size {
		pcm, err := dec.DecodeFrame(payload[off : off+size])
		if err != nil {
			s.buf = s.buf[:start]
			return 0, fmt.Errorf("frame at offset %d: %w", off, err)
		}
		s.buf = append(s.buf, pcm[:]...)
	}
	n := len(s.buf) - start
	s.nticks += uint32(n)
	s.emit(uint64(n), false)
	return n, nil
}

// inferFrameSize picks the first G.729 frame size that evenly divides
// the payload.
func inferFrameSize(length int) (int, error) {
	for _, size := range codecs.G729FrameSizes() {
		if length%size == 0 {
			return size, nil
		}
	}
	return 0, fmt.Errorf("%w: %d bytes", ErrFrameSize, length)
}

// speechCodec returns the stream's codec state, creating it on first use.
// A failed allocation is retried on the next call.
func (s *Stream) speechCodec() (codecs.SpeechDecoder, error) {
	if s.speech != nil {
		return s.speech, nil
	}
	if s.factory == nil {
		return nil, codecs.ErrCodecUnavailable
	}
	dec, err := s.factory()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", codecs.ErrCodecUnavailable, err)
	}
	if dec == nil {
		return nil, codecs.ErrCodecUnavailable
	}
	s.speech = dec
	return dec, nil
}
