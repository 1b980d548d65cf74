package main

import (
	"bytes"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	pionrtp "github.com/pion/rtp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vocalocity/rtpproxy-pre-2-0/wav"
)

type mediaPacket struct {
	at   time.Duration
	ssrc uint32
	seq  uint16
	ts   uint32
	pt   uint8
}

func writeCapture(t *testing.T, packets []mediaPacket) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "call.pcap")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := pcapgo.NewWriter(f)
	require.NoError(t, w.WriteFileHeader(65535, layers.LinkTypeEthernet))
	start := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	for _, p := range packets {
		pkt := &pionrtp.Packet{
			Header: pionrtp.Header{
				Version:        2,
				PayloadType:    p.pt,
				SequenceNumber: p.seq,
				Timestamp:      p.ts,
				SSRC:           p.ssrc,
			},
			Payload: bytes.Repeat([]byte{0x55}, 160),
		}
		payload, err := pkt.Marshal()
		require.NoError(t, err)

		eth := &layers.Ethernet{
			SrcMAC:       net.HardwareAddr{0, 1, 2, 3, 4, 5},
			DstMAC:       net.HardwareAddr{0, 1, 2, 3, 4, 6},
			EthernetType: layers.EthernetTypeIPv4,
		}
		ip := &layers.IPv4{
			Version:  4,
			IHL:      5,
			TTL:      64,
			Protocol: layers.IPProtocolUDP,
			SrcIP:    net.IP{192, 168, 1, 10},
			DstIP:    net.IP{192, 168, 1, 20},
		}
		udp := &layers.UDP{SrcPort: 20000, DstPort: 20002}
		require.NoError(t, udp.SetNetworkLayerForChecksum(ip))

		buf := gopacket.NewSerializeBuffer()
		opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
		require.NoError(t, gopacket.SerializeLayers(buf, opts, eth, ip, udp, gopacket.Payload(payload)))

		data := buf.Bytes()
		ci := gopacket.CaptureInfo{Timestamp: start.Add(p.at), CaptureLength: len(data), Length: len(data)}
		require.NoError(t, w.WritePacket(ci, data))
	}
	return path
}

func twoStreams(t *testing.T) string {
	return writeCapture(t, []mediaPacket{
		{0, 0x1111, 1, 0, 0},
		{5 * time.Millisecond, 0x2222, 7, 8000, 8},
		{20 * time.Millisecond, 0x1111, 2, 160, 0},
		{25 * time.Millisecond, 0x2222, 8, 8160, 8},
		{40 * time.Millisecond, 0x1111, 3, 320, 0},
	})
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func wavSamples(t *testing.T, path string) int {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	return int(info.Size()-wav.HeaderSize) / 2
}

func TestCodecsCommand(t *testing.T) {
	out, err := run(t, "", "codecs")
	require.NoError(t, err)
	assert.Contains(t, out, "PCMU")
	assert.Contains(t, out, "G729")
	assert.Contains(t, out, "telephone-event")
	assert.Contains(t, out, "not bit-exact")
}

func TestHelpMentionsApproximateG729(t *testing.T) {
	out, err := run(t, "", "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "not bit-exact")
}

func TestStreamsCommand(t *testing.T) {
	out, err := run(t, "", "streams", twoStreams(t))
	require.NoError(t, err)
	assert.Contains(t, out, "0x00001111")
	assert.Contains(t, out, "0x00002222")
	assert.Contains(t, out, "PCMA")
}

func TestExtractBySsrc(t *testing.T) {
	output := filepath.Join(t.TempDir(), "leg.wav")
	out, err := run(t, "", "--log-level", "debug", "extract", twoStreams(t), "--ssrc", "0x1111", "-o", output)
	require.NoError(t, err)
	assert.Contains(t, out, "480 samples")
	assert.Equal(t, 480, wavSamples(t, output))
}

func TestExtractInteractive(t *testing.T) {
	output := filepath.Join(t.TempDir(), "leg.wav")
	out, err := run(t, "7\n2\n"+output+"\n", "extract", twoStreams(t))
	require.NoError(t, err)
	assert.Contains(t, out, "Choose RTP stream")
	assert.Equal(t, 320, wavSamples(t, output))
}

func TestExtractOverwrite(t *testing.T) {
	capture := twoStreams(t)
	output := filepath.Join(t.TempDir(), "leg.wav")
	require.NoError(t, os.WriteFile(output, []byte("old"), 0o644))

	_, err := run(t, "n\n", "extract", capture, "--ssrc", "4369", "-o", output)
	require.Error(t, err)
	data, _ := os.ReadFile(output)
	assert.Equal(t, "old", string(data))

	_, err = run(t, "y\n", "extract", capture, "--ssrc", "4369", "-o", output)
	require.NoError(t, err)
	assert.Equal(t, 480, wavSamples(t, output))

	_, err = run(t, "", "extract", capture, "--ssrc", "0x2222", "-o", output, "--force")
	require.NoError(t, err)
	assert.Equal(t, 320, wavSamples(t, output))
}

func TestExtractErrors(t *testing.T) {
	capture := twoStreams(t)
	output := filepath.Join(t.TempDir(), "leg.wav")

	_, err := run(t, "", "extract", capture, "--ssrc", "0x9999", "-o", output)
	assert.ErrorContains(t, err, "no stream with SSRC")

	_, err = run(t, "", "extract", capture, "--ssrc", "nope", "-o", output)
	assert.ErrorContains(t, err, "invalid SSRC")

	_, err = run(t, "", "extract", filepath.Join(t.TempDir(), "missing.pcap"), "-o", output)
	assert.Error(t, err)

	_, err = run(t, "", "extract", capture, "--ssrc", "0x1111", "-o", output, "--max-silence", "4294967295")
	assert.ErrorContains(t, err, "--max-silence must be between")
	assert.NoFileExists(t, output)

	_, err = run(t, "", "--log-level", "loud", "codecs")
	assert.ErrorContains(t, err, "unknown log level")

	_, err = run(t, "", "--esp-keys", filepath.Join(t.TempDir(), "none.txt"), "streams", capture)
	assert.Error(t, err)
}
