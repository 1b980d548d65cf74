package rtp

import (
	"fmt"
	"time"

	"github.com/Vocalocity/rtpproxy-pre-2-0/util"
)

// RtpStream holds the packets of one SSRC in capture order. Packets are kept
// strictly increasing in (extended) sequence number, which is the order the
// decoder walks them in.
type RtpStream struct {

	// Public
	Ssrc               uint32
	PayloadType        int
	SrcIP, DstIP       string
	SrcPort, DstPort   uint
	StartTime, EndTime time.Time

	// Internal
	FirstTimestamp uint32
	FirstSeq       uint16
	Cycle          uint
	CurSeq         uint16

	// Calculated
	TotalExpectedPackets uint
	LostPackets          uint
	DiscardedPackets     uint

	RtpPackets []*RtpPacket
}

func (r RtpStream) String() string {
	return fmt.Sprintf("%s - %s   0x%08X   %3d   %5d   %s:%d -> %s:%d",
		util.TimeToStr(r.StartTime),
		util.TimeToStr(r.EndTime),
		r.Ssrc,
		r.PayloadType,
		len(r.RtpPackets),
		r.SrcIP,
		r.SrcPort,
		r.DstIP,
		r.DstPort,
	)
}

// Duration is the wall-clock span between the first and last packet.
func (r *RtpStream) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}

// AddPacket appends rtp unless it is a duplicate or arrives behind the
// highest sequence number seen so far. Sequence numbers compare with serial
// number arithmetic so a 65535 -> 0 wrap keeps the stream going.
func (r *RtpStream) AddPacket(rtp *RtpPacket) {
	if len(r.RtpPackets) == 0 {
		r.FirstSeq = rtp.SequenceNumber
		r.FirstTimestamp = rtp.Timestamp
		r.StartTime = rtp.ReceivedAt
	} else {
		delta := int16(rtp.SequenceNumber - r.CurSeq)
		if delta <= 0 {
			r.DiscardedPackets++
			return
		}
		if rtp.SequenceNumber < r.CurSeq {
			r.Cycle++
		}
	}

	r.EndTime = rtp.ReceivedAt
	r.CurSeq = rtp.SequenceNumber
	r.RtpPackets = append(r.RtpPackets, rtp)

	extended := r.Cycle<<16 + uint(r.CurSeq)
	r.TotalExpectedPackets = extended - uint(r.FirstSeq) + 1
	r.LostPackets = 0
	if r.TotalExpectedPackets > uint(len(r.RtpPackets)) {
		r.LostPackets = r.TotalExpectedPackets - uint(len(r.RtpPackets))
	}
}
