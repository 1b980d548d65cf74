package codecs

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vocalocity/rtpproxy-pre-2-0/rtp"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		pt   int
		name string
		kind Kind
	}{
		{rtp.PCMU, "PCMU", Waveform},
		{rtp.PCMA, "PCMA", Waveform},
		{rtp.G729, "G729", Speech},
		{rtp.CN, "CN", Signalling},
		{rtp.TSE, "telephone-event", Signalling},
		{rtp.TSE_CISCO, "telephone-event", Signalling},
	}
	for _, tt := range tests {
		c, ok := Lookup(tt.pt)
		require.True(t, ok, "pt %d", tt.pt)
		assert.Equal(t, tt.name, c.Name)
		assert.Equal(t, tt.kind, c.Kind)
	}

	_, ok := Lookup(rtp.GSM)
	assert.False(t, ok)
	assert.Equal(t, "GSM", Name(rtp.GSM))
	assert.Equal(t, "unknown", Name(77))
}

func TestGetAudioCodecsIsACopy(t *testing.T) {
	list := GetAudioCodecs()
	list[0].Name = "changed"
	c, _ := Lookup(rtp.PCMU)
	assert.Equal(t, "PCMU", c.Name)
}

func TestG729FrameSizesCannotBeChanged(t *testing.T) {
	sizes := G729FrameSizes()
	sizes[0] = 3

	for _, c := range GetAudioCodecs() {
		if c.PayloadType == rtp.G729 {
			c.FrameBytes[1] = 3
		}
	}
	c, _ := Lookup(rtp.G729)
	c.FrameBytes[2] = 3

	assert.Equal(t, []int{10, 8, 15, 2}, G729FrameSizes())
	c, _ = Lookup(rtp.G729)
	assert.Equal(t, []int{10, 8, 15, 2}, c.FrameBytes)
}

func TestDescribe(t *testing.T) {
	c, _ := Lookup(rtp.G729)
	out := c.Describe()
	assert.True(t, strings.HasPrefix(out, "( 18) G729"))
	assert.Contains(t, out, "[10 8 15 2]")
	assert.Contains(t, out, "speech")
}

func TestDecodeWaveform(t *testing.T) {
	law, ok := LawFor(rtp.PCMU)
	require.True(t, ok)
	assert.Equal(t, ULaw, law)

	// 0xff and 0x7f are the two mu-law zero codes
	out := DecodeWaveform(ULaw, []byte{0xff, 0x7f, 0x00, 0x80}, nil)
	require.Len(t, out, 4)
	assert.Equal(t, int16(0), out[0])
	assert.Equal(t, int16(0), out[1])
	assert.Less(t, out[2], int16(-30000))
	assert.Greater(t, out[3], int16(30000))

	law, ok = LawFor(rtp.PCMA)
	require.True(t, ok)
	out = DecodeWaveform(law, []byte{0xd5, 0x55}, []int16{7})
	require.Len(t, out, 3)
	assert.Equal(t, int16(7), out[0])
	assert.Equal(t, -out[1], out[2])

	_, ok = LawFor(rtp.G729)
	assert.False(t, ok)
}

func TestNewG729Decoder(t *testing.T) {
	dec, err := NewG729Decoder()
	require.NoError(t, err)
	pcm, err := dec.DecodeFrame(nil)
	require.NoError(t, err)
	assert.Len(t, pcm, SpeechFrameSamples)
	assert.NoError(t, dec.Close())
}
