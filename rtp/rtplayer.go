package rtp

import (
	"errors"
	"fmt"

	"github.com/google/gopacket"
	pionrtp "github.com/pion/rtp"

	"github.com/Vocalocity/rtpproxy-pre-2-0/util"
)

const rtpFixedHeaderSize = 12

var RtpLayerType = gopacket.RegisterLayerType(
	2001,
	gopacket.LayerTypeMetadata{
		Name:    "RtpLayerType",
		Decoder: gopacket.DecodeFunc(decodeRtpLayer),
	},
)

// RtpLayer is the gopacket layer for one RTP datagram. The decoded fields
// live in the embedded RtpPacket; Header keeps the raw header octets.
type RtpLayer struct {
	RtpPacket
	Header []byte
}

func (l *RtpLayer) String() string {
	return fmt.Sprintf("received:%s,v:%d,pad:%t,ext:%t,cc:%d,mark:%t,type:%d,seq:%d,ts:%d,ssrc:0x%x(%d)",
		util.TimeToStr(l.ReceivedAt), l.Version, l.Padding, l.Extension, l.CC, l.Marker,
		l.PayloadType, l.SequenceNumber, l.Timestamp, l.Ssrc, l.Ssrc)
}

// Packet returns a copy of the decoded fields, detached from the layer.
func (l *RtpLayer) Packet() *RtpPacket {
	p := l.RtpPacket
	return &p
}

func (l *RtpLayer) LayerType() gopacket.LayerType { return RtpLayerType }
func (l *RtpLayer) LayerContents() []byte         { return l.Header }
func (l *RtpLayer) LayerPayload() []byte          { return l.Payload }

func decodeRtpLayer(data []byte, p gopacket.PacketBuilder) error {
	l, err := parseRtp(data)
	if err != nil {
		return err
	}
	p.AddLayer(l)
	return p.NextDecoder(gopacket.LayerTypePayload)
}

func parseRtp(data []byte) (*RtpLayer, error) {
	var h pionrtp.Header
	offset, err := h.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("invalid RTP header: %w", err)
	}
	if h.Version != 2 {
		return nil, errors.New("Indicated RTP version != 2")
	}

	l := &RtpLayer{Header: data[:offset]}
	l.Version = int(h.Version)
	l.Padding = h.Padding
	l.Extension = h.Extension
	l.CC = len(h.CSRC)
	l.Marker = h.Marker
	l.PayloadType = int(h.PayloadType)
	l.SequenceNumber = h.SequenceNumber
	l.Timestamp = h.Timestamp
	l.Ssrc = h.SSRC
	l.Csrc = h.CSRC

	if h.Extension {
		// profile(2) + length(2) follow the CSRC list, then length*4 octets
		extStart := rtpFixedHeaderSize + 4*l.CC
		l.ExtensionHeaderId = h.ExtensionProfile
		l.ExtensionHeader = data[extStart+4 : offset]
		l.ExtensionHeaderLength = uint16(len(l.ExtensionHeader) / 4)
	}

	body := data[offset:]
	if len(body) == 0 {
		return nil, errors.New("No payload contained in RTP")
	}
	if l.Padding {
		padLen := int(body[len(body)-1])
		if padLen == 0 || padLen > len(body) {
			return nil, errors.New("Invalid padding length")
		}
		body = body[:len(body)-padLen]
	}
	l.Payload = body
	return l, nil
}
