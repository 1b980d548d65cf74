package rtp

import (
	"fmt"
	"time"

	"github.com/Vocalocity/rtpproxy-pre-2-0/util"
)

// Static and commonly negotiated payload types seen on call legs.
const (
	PCMU      = 0
	GSM       = 3
	G723      = 4
	PCMA      = 8
	G722      = 9
	CN        = 13
	G729      = 18
	TSE_CISCO = 100
	TSE       = 101
)

type RtpPacket struct {
	ReceivedAt            time.Time
	Version               int
	Padding               bool
	Extension             bool
	CC                    int
	Marker                bool
	PayloadType           int
	SequenceNumber        uint16
	Timestamp             uint32
	Ssrc                  uint32
	Csrc                  []uint32
	ExtensionHeaderId     uint16
	ExtensionHeaderLength uint16
	ExtensionHeader       []byte
	Payload               []byte
}

func (r RtpPacket) String() string {
	return fmt.Sprintf("%s - %d - %d - pt:%d - %d bytes",
		util.TimeMsToStr(r.ReceivedAt),
		r.SequenceNumber,
		r.Timestamp,
		r.PayloadType,
		len(r.Payload),
	)
}
