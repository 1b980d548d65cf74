// Package decoder turns the packets of one RTP stream into a continuous
// 8 kHz 16-bit PCM signal.
//
// A Stream is pulled one sample at a time. Every pull is served from a small
// buffer; an empty buffer is refilled with exactly one unit of work: a block
// of silence covering a timestamp gap, a block of silence catching up with
// wall-clock time, or the decoded frames of one packet. Three clocks drive
// that choice: packet arrival time, the RTP media timestamp and the number
// of ticks already emitted.
//
// A Stream is owned by a single caller and is not safe for concurrent use.
package decoder

import (
	"encoding/binary"
	"errors"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Vocalocity/rtpproxy-pre-2-0/codecs"
	"github.com/Vocalocity/rtpproxy-pre-2-0/log"
	"github.com/Vocalocity/rtpproxy-pre-2-0/rtp"
)

const (
	ClockRate = 8000

	// DefaultMaxSilenceTicks bounds a single block of synthesized silence.
	DefaultMaxSilenceTicks = 4000
	// MaxSilenceTicksLimit is the largest accepted silence cap, one minute.
	MaxSilenceTicksLimit = 60 * ClockRate

	driftTolerance     = 1.0
	wallClockTolerance = 0.2

	// SampleEOF and SampleError are the out-of-range values Get returns
	// instead of a sample.
	SampleEOF   int32 = 0x10000
	SampleError int32 = -0x10001
)

var (
	ErrDecoder            = errors.New("decoder: silence synthesis failed")
	ErrFrameSize          = errors.New("decoder: cannot infer frame size")
	ErrUnsupportedPayload = errors.New("decoder: unsupported payload type")
	ErrClosed             = errors.New("decoder: stream closed")
)

// Stats is a snapshot of the stream counters.
type Stats struct {
	EmittedTicks   uint64
	ExpectedTicks  uint32
	SilenceTicks   uint64
	Refills        uint64
	PacketsDecoded uint64
	PacketsSkipped uint64
	Reanchors      uint64
}

type Stream struct {
	session *rtp.RtpStream
	packets []*rtp.RtpPacket
	pos     int

	buf []int16
	off int

	stime  time.Time
	nticks uint32
	sticks uint32
	dticks uint64
	lpt    int

	speech     codecs.SpeechDecoder
	factory    codecs.SpeechCodecFactory
	maxSilence uint32

	stats  Stats
	log    *logrus.Entry
	err    error
	closed bool
}

type Option func(*Stream)

// WithMaxSilenceTicks changes the cap on a single silence block. Zero keeps
// the default and values above MaxSilenceTicksLimit are clamped to it.
func WithMaxSilenceTicks(n uint32) Option {
	return func(s *Stream) {
		switch {
		case n == 0:
		case n > MaxSilenceTicksLimit:
			s.maxSilence = MaxSilenceTicksLimit
		default:
			s.maxSilence = n
		}
	}
}

// WithSpeechCodec replaces the G.729 engine used for speech payloads.
func WithSpeechCodec(factory codecs.SpeechCodecFactory) Option {
	return func(s *Stream) {
		s.factory = factory
	}
}

func WithLogger(entry *logrus.Entry) Option {
	return func(s *Stream) {
		if entry != nil {
			s.log = entry
		}
	}
}

// New creates a decode stream over the packets of session. An empty
// session yields a stream that reports EOF on the first pull and keeps no
// reference to the session.
func New(session *rtp.RtpStream, opts ...Option) *Stream {
	var packets []*rtp.RtpPacket
	if session != nil {
		packets = session.RtpPackets
	}
	s := NewFromPackets(packets, opts...)
	if len(packets) > 0 {
		s.session = session
		s.log = s.log.WithField("ssrc", session.Ssrc)
	}
	return s
}

// NewFromPackets creates a decode stream over an ordered packet sequence
// that does not belong to a session.
func NewFromPackets(packets []*rtp.RtpPacket, opts ...Option) *Stream {
	s := &Stream{
		packets:    packets,
		lpt:        rtp.PCMU,
		factory:    codecs.NewG729Decoder,
		maxSilence: DefaultMaxSilenceTicks,
		log:        log.WithFields(log.Fields{"function": "decoder"}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if len(packets) == 0 {
		return s
	}
	first := packets[0]
	s.buf = make([]int16, 0, s.maxSilence)
	s.stime = first.ReceivedAt
	s.nticks = first.Timestamp
	s.sticks = first.Timestamp
	return s
}

// Session returns the stream the packets came from, or nil when the
// decoder was created without one or over an empty sequence.
func (s *Stream) Session() *rtp.RtpStream {
	return s.session
}

// Next returns the next sample. It returns io.EOF once every packet has
// been consumed and ErrDecoder when silence could not be synthesized for
// the last seen codec. Both are terminal.
func (s *Stream) Next() (int16, error) {
	if s.off >= len(s.buf) {
		if err := s.fill(); err != nil {
			return 0, err
		}
	}
	v := s.buf[s.off]
	s.off++
	return v, nil
}

// Get is Next with the errors folded into out-of-range sentinel values.
func (s *Stream) Get() int32 {
	v, err := s.Next()
	switch {
	case err == nil:
		return int32(v)
	case errors.Is(err, io.EOF):
		return SampleEOF
	default:
		return SampleError
	}
}

// Read fills p with little-endian 16-bit samples.
func (s *Stream) Read(p []byte) (int, error) {
	if len(p) < 2 {
		return 0, io.ErrShortBuffer
	}
	n := 0
	for n+2 <= len(p) {
		if s.off >= len(s.buf) {
			if err := s.fill(); err != nil {
				return n, err
			}
		}
		for s.off < len(s.buf) && n+2 <= len(p) {
			binary.LittleEndian.PutUint16(p[n:], uint16(s.buf[s.off]))
			s.off++
			n += 2
		}
	}
	return n, nil
}

// Buffered is the number of decoded samples not yet pulled.
func (s *Stream) Buffered() int {
	return len(s.buf) - s.off
}

func (s *Stream) Stats() Stats {
	st := s.stats
	st.EmittedTicks = s.dticks
	st.ExpectedTicks = s.nticks
	return st
}

// Close releases the speech codec state. It is safe to call more than once.
func (s *Stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.err = ErrClosed
	s.buf, s.off = nil, 0
	if s.speech == nil {
		return nil
	}
	err := s.speech.Close()
	s.speech = nil
	return err
}

func (s *Stream) fill() error {
	if s.err != nil {
		return s.err
	}
	if err := s.refill(); err != nil {
		s.err = err
		return err
	}
	return nil
}
