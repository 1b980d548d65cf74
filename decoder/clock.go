package decoder

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/Vocalocity/rtpproxy-pre-2-0/rtp"
)

// refill performs one unit of work on the packet at the cursor. Packets
// that contribute no samples are passed over in a loop, so a call returns
// with a non-empty buffer, io.EOF or ErrDecoder.
func (s *Stream) refill() error {
	for {
		if s.pos >= len(s.packets) {
			return io.EOF
		}
		pkt := s.packets[s.pos]
		cticks := pkt.Timestamp
		elapsed := pkt.ReceivedAt.Sub(s.stime).Seconds()

		s.buf, s.off = s.buf[:0], 0
		s.reanchor(cticks, elapsed)

		if gap := int32(cticks - s.nticks); gap > 0 {
			t := s.capSilence(uint64(gap))
			if err := s.generateSilence(int(t)); err != nil {
				return err
			}
			s.log.WithFields(logrus.Fields{"ticks": t, "reason": "timestamp"}).Debug("Filling gap")
			s.nticks += uint32(t)
			s.emit(t, true)
			s.stats.Refills++
			return nil
		}

		if behind := elapsed - float64(s.dticks)/ClockRate; behind > wallClockTolerance {
			t := s.capSilence(uint64((elapsed*ClockRate - float64(s.dticks)) / 2))
			if err := s.generateSilence(int(t)); err != nil {
				return err
			}
			s.log.WithFields(logrus.Fields{"ticks": t, "reason": "wall-clock"}).Debug("Filling gap")
			s.emit(t, true)
			s.stats.Refills++
			return nil
		}

		n, err := s.decodeFrame(pkt)
		if n > 0 {
			s.lpt = pkt.PayloadType
		}
		s.pos++
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"payload_type": pkt.PayloadType,
				"seq":          pkt.SequenceNumber,
				"bytes":        len(pkt.Payload),
			}).WithError(err).Warn("Skipping packet")
		}
		if n == 0 {
			s.stats.PacketsSkipped++
			continue
		}
		s.stats.PacketsDecoded++
		s.stats.Refills++
		return nil
	}
}

// reanchor trusts wall-clock time over the media clock when the two
// disagree by more than driftTolerance seconds in either direction, or when
// the timestamp falls behind the media baseline.
func (s *Stream) reanchor(cticks uint32, elapsed float64) {
	diff := int64(int32(cticks - s.sticks))
	whole := float64(diff / ClockRate)
	exact := float64(diff) / ClockRate
	if diff >= 0 && whole <= elapsed+driftTolerance && elapsed <= exact+driftTolerance {
		return
	}
	s.log.WithFields(logrus.Fields{
		"timestamp": cticks,
		"expected":  s.nticks,
		"elapsed":   elapsed,
	}).Debug("Media clock drifted, re-anchoring")
	s.nticks = cticks
	s.sticks = cticks - uint32(int64(elapsed*ClockRate))
	s.stats.Reanchors++
}

func (s *Stream) capSilence(t uint64) uint64 {
	if t > uint64(s.maxSilence) {
		return uint64(s.maxSilence)
	}
	return t
}

func (s *Stream) emit(ticks uint64, silence bool) {
	s.dticks += ticks
	if silence {
		s.stats.SilenceTicks += ticks
	}
}

func isSignalling(pt int) bool {
	return pt == rtp.CN || pt == rtp.TSE || pt == rtp.TSE_CISCO
}
