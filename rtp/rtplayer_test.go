package rtp

import (
	"testing"

	"github.com/google/gopacket"
	pionrtp "github.com/pion/rtp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func marshalRtp(t *testing.T, h pionrtp.Header, payload []byte) []byte {
	t.Helper()
	h.Version = 2
	p := &pionrtp.Packet{Header: h, Payload: payload}
	b, err := p.Marshal()
	require.NoError(t, err)
	return b
}

func TestParseRtpBasic(t *testing.T) {
	data := marshalRtp(t, pionrtp.Header{
		Marker:         true,
		PayloadType:    18,
		SequenceNumber: 4321,
		Timestamp:      160000,
		SSRC:           0xdeadbeef,
	}, []byte{1, 2, 3, 4})

	l, err := parseRtp(data)
	require.NoError(t, err)
	assert.Equal(t, 2, l.Version)
	assert.True(t, l.Marker)
	assert.Equal(t, G729, l.PayloadType)
	assert.Equal(t, uint16(4321), l.SequenceNumber)
	assert.Equal(t, uint32(160000), l.Timestamp)
	assert.Equal(t, uint32(0xdeadbeef), l.Ssrc)
	assert.Equal(t, []byte{1, 2, 3, 4}, l.Payload)
	assert.Len(t, l.Header, 12)
}

func TestParseRtpCsrcAndExtension(t *testing.T) {
	h := pionrtp.Header{
		PayloadType:    0,
		SequenceNumber: 1,
		Timestamp:      2,
		SSRC:           3,
		CSRC:           []uint32{7, 8},
	}
	require.NoError(t, h.SetExtension(1, []byte{0xaa}))
	data := marshalRtp(t, h, []byte{0xff, 0xfe})

	l, err := parseRtp(data)
	require.NoError(t, err)
	assert.Equal(t, 2, l.CC)
	assert.Equal(t, []uint32{7, 8}, l.Csrc)
	assert.True(t, l.Extension)
	assert.Equal(t, uint16(0xbede), l.ExtensionHeaderId)
	assert.Equal(t, uint16(1), l.ExtensionHeaderLength)
	assert.Equal(t, []byte{0xff, 0xfe}, l.Payload)
}

func TestParseRtpPadding(t *testing.T) {
	data := marshalRtp(t, pionrtp.Header{SSRC: 1}, []byte{9, 9, 9})
	data[0] |= 0x20
	data = append(data, 0, 0, 3)

	l, err := parseRtp(data)
	require.NoError(t, err)
	assert.True(t, l.Padding)
	assert.Equal(t, []byte{9, 9, 9}, l.Payload)

	data[len(data)-1] = 200
	_, err = parseRtp(data)
	assert.Error(t, err)
}

func TestParseRtpErrors(t *testing.T) {
	_, err := parseRtp([]byte{0x80, 0x00})
	assert.Error(t, err, "short header")

	data := marshalRtp(t, pionrtp.Header{SSRC: 1}, []byte{1})
	data[0] = 0x40 | (data[0] & 0x3f)
	_, err = parseRtp(data)
	assert.Error(t, err, "version 1")

	data = marshalRtp(t, pionrtp.Header{SSRC: 1}, nil)
	_, err = parseRtp(data)
	assert.Error(t, err, "empty payload")
}

func TestRtpLayerType(t *testing.T) {
	data := marshalRtp(t, pionrtp.Header{PayloadType: 8, SSRC: 5, Timestamp: 80}, []byte{0xd5})
	p := gopacket.NewPacket(data, RtpLayerType, gopacket.Default)
	require.Nil(t, p.ErrorLayer())

	l, ok := p.Layer(RtpLayerType).(*RtpLayer)
	require.True(t, ok)
	pkt := l.Packet()
	assert.Equal(t, PCMA, pkt.PayloadType)
	assert.Equal(t, uint32(80), pkt.Timestamp)
	assert.Equal(t, []byte{0xd5}, pkt.Payload)
	assert.Contains(t, l.String(), "ssrc:0x5")
}
