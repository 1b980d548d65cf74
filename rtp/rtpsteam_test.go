package rtp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func packetAt(seq uint16, ts uint32, at time.Duration) *RtpPacket {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return &RtpPacket{
		ReceivedAt:     base.Add(at),
		SequenceNumber: seq,
		Timestamp:      ts,
		Payload:        make([]byte, 160),
	}
}

func TestRtpStreamAddPacketOrdering(t *testing.T) {
	s := &RtpStream{}
	s.AddPacket(packetAt(10, 0, 0))
	s.AddPacket(packetAt(11, 160, 20*time.Millisecond))
	s.AddPacket(packetAt(11, 160, 21*time.Millisecond)) // duplicate
	s.AddPacket(packetAt(9, 0, 22*time.Millisecond))    // late
	s.AddPacket(packetAt(14, 640, 80*time.Millisecond)) // two lost

	assert.Len(t, s.RtpPackets, 3)
	assert.Equal(t, uint(2), s.DiscardedPackets)
	assert.Equal(t, uint16(10), s.FirstSeq)
	assert.Equal(t, uint16(14), s.CurSeq)
	assert.Equal(t, uint(5), s.TotalExpectedPackets)
	assert.Equal(t, uint(2), s.LostPackets)
	assert.Equal(t, 80*time.Millisecond, s.Duration())
}

func TestRtpStreamFirstPacketSequenceZero(t *testing.T) {
	s := &RtpStream{}
	s.AddPacket(packetAt(0, 0, 0))
	s.AddPacket(packetAt(1, 160, 20*time.Millisecond))
	assert.Len(t, s.RtpPackets, 2)
	assert.Equal(t, uint(0), s.LostPackets)
}

func TestRtpStreamSequenceWrap(t *testing.T) {
	s := &RtpStream{}
	s.AddPacket(packetAt(65534, 0, 0))
	s.AddPacket(packetAt(65535, 160, 20*time.Millisecond))
	s.AddPacket(packetAt(0, 320, 40*time.Millisecond))
	s.AddPacket(packetAt(1, 480, 60*time.Millisecond))

	assert.Len(t, s.RtpPackets, 4)
	assert.Equal(t, uint(1), s.Cycle)
	assert.Equal(t, uint(4), s.TotalExpectedPackets)
	assert.Equal(t, uint(0), s.LostPackets)
}

func TestRtpStreamString(t *testing.T) {
	s := &RtpStream{Ssrc: 0xabc, PayloadType: PCMU, SrcIP: "10.0.0.1", SrcPort: 4000, DstIP: "10.0.0.2", DstPort: 4002}
	s.AddPacket(packetAt(1, 0, 0))
	assert.Contains(t, s.String(), "0x00000ABC")
	assert.Contains(t, s.String(), "10.0.0.1:4000 -> 10.0.0.2:4002")
}
