package rtp

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"github.com/Vocalocity/rtpproxy-pre-2-0/esp"
	"github.com/Vocalocity/rtpproxy-pre-2-0/log"
)

// UDP ports that never carry the media we are after.
var ignoredPorts = map[layers.UDPPort]bool{
	53:   true, // DNS
	138:  true, // NETBIOS
	67:   true, // BOOTSTRAP
	68:   true, // BOOTSTRAP
	1900: true, // SSDP
	500:  true, // IKE
	123:  true, // NTP
	5060: true, // SIP
}

var pcapngMagic = []byte{0x0a, 0x0d, 0x0d, 0x0a}

var errLikelyRtcp = errors.New("Likely RTCP packet")

// RtpReader reads a capture file and sorts the RTP it finds into streams.
type RtpReader struct {
	file             *os.File
	source           gopacket.PacketDataSource
	linkType         layers.LinkType
	keyring          *esp.Keyring
	rtpStreamsMap    map[uint32]*RtpStream
	rtpStreamsSorted []*RtpStream
	filePath         string
}

type ReaderOption func(*RtpReader)

// WithKeyring lets the reader open ESP-wrapped media.
func WithKeyring(k *esp.Keyring) ReaderOption {
	return func(r *RtpReader) {
		r.keyring = k
	}
}

//NewRtpReader creates new reader over a pcap or pcapng file
func NewRtpReader(path string, opts ...ReaderOption) (*RtpReader, error) {
	reader := &RtpReader{}
	reader.rtpStreamsMap = make(map[uint32]*RtpStream)
	for _, opt := range opts {
		opt(reader)
	}
	if err := reader.openPcapFile(path); err != nil {
		return nil, err
	}
	return reader, nil
}

func (r *RtpReader) openPcapFile(path string) error {
	r.filePath = path
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open capture %s: %w", path, err)
	}

	br := bufio.NewReader(f)
	magic, err := br.Peek(4)
	if err != nil {
		f.Close()
		return fmt.Errorf("read capture header %s: %w", path, err)
	}

	if bytes.Equal(magic, pcapngMagic) {
		ng, err := pcapgo.NewNgReader(br, pcapgo.DefaultNgReaderOptions)
		if err != nil {
			f.Close()
			return fmt.Errorf("open pcapng %s: %w", path, err)
		}
		r.source, r.linkType = ng, ng.LinkType()
	} else {
		pr, err := pcapgo.NewReader(br)
		if err != nil {
			f.Close()
			log.Error("Failed to open capture file, expected pcap or pcapng format")
			return fmt.Errorf("open pcap %s: %w", path, err)
		}
		r.source, r.linkType = pr, pr.LinkType()
	}
	r.file = f
	return nil
}

func (r *RtpReader) reOpenPcapFile() error {
	r.Close()
	return r.openPcapFile(r.filePath)
}

//Close rtp reader
func (r *RtpReader) Close() {
	if r.file != nil {
		r.file.Close()
		r.file = nil
	}
}

//GetStreams returns rtp streams identified
func (r *RtpReader) GetStreams() []*RtpStream {
	if r.rtpStreamsSorted != nil {
		return r.rtpStreamsSorted
	}
	r.readAll(r.linkType)

	/* if no packets were found, try raw link layer */
	if len(r.rtpStreamsSorted) <= 0 && r.linkType != layers.LinkTypeRaw {
		if err := r.reOpenPcapFile(); err != nil {
			log.Swarn("reopen %s for raw decoding: %v", r.filePath, err)
			return r.rtpStreamsSorted
		}
		r.readAll(layers.LinkTypeRaw)
	}
	return r.rtpStreamsSorted
}

func (r *RtpReader) readAll(decoder gopacket.Decoder) {
	packetSource := gopacket.NewPacketSource(r.source, decoder)
	count := 0
	for {
		packet, err := packetSource.NextPacket()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Swarn("stopped reading %s after %d packets: %v", r.filePath, count, err)
			break
		}
		count++
		if err := r.parsePacket(packet); err != nil {
			log.Strace("packet %d skipped: %v", count, err)
		}
	}
	log.WithFields(log.Fields{
		"file":    r.filePath,
		"packets": count,
		"streams": len(r.rtpStreamsSorted),
	}).Debug("capture read")
}

func (r *RtpReader) parsePacket(packet gopacket.Packet) error {
	receivedAt := packet.Metadata().CaptureInfo.Timestamp

	if espLayer := packet.Layer(layers.LayerTypeIPSecESP); espLayer != nil && r.keyring != nil {
		inner, err := r.keyring.Decrypt(espLayer.(*layers.IPSecESP))
		if err != nil {
			return err
		}
		src, dst, ok := endpoints(inner)
		if !ok {
			// transport mode: addresses come from the outer header
			if src, dst, ok = endpoints(packet); !ok {
				return errors.New("Not able to decode Network layer around ESP")
			}
		}
		return r.parseUdp(receivedAt, src, dst, inner)
	}

	src, dst, ok := endpoints(packet)
	if !ok {
		return errors.New("Not able to decode Network/Transport layers")
	}
	return r.parseUdp(receivedAt, src, dst, packet)
}

func endpoints(packet gopacket.Packet) (src string, dst string, ok bool) {
	if ipv4, isV4 := packet.Layer(layers.LayerTypeIPv4).(*layers.IPv4); isV4 {
		return ipv4.SrcIP.String(), ipv4.DstIP.String(), true
	}
	if ipv6, isV6 := packet.Layer(layers.LayerTypeIPv6).(*layers.IPv6); isV6 {
		return ipv6.SrcIP.String(), ipv6.DstIP.String(), true
	}
	return "", "", false
}

func (r *RtpReader) parseUdp(receivedAt time.Time, src string, dst string, packet gopacket.Packet) error {
	udp, ok := packet.Layer(layers.LayerTypeUDP).(*layers.UDP)
	if !ok {
		return errors.New("Not able to decode Transport layer")
	}

	if ignoredPorts[udp.SrcPort] || ignoredPorts[udp.DstPort] {
		return fmt.Errorf("ignored port %d -> %d", udp.SrcPort, udp.DstPort)
	}
	if udp.SrcPort%2 != 0 || udp.DstPort%2 != 0 {
		return errLikelyRtcp
	}

	rtpPacket := gopacket.NewPacket(udp.Payload, RtpLayerType, gopacket.NoCopy)
	if errLayer := rtpPacket.ErrorLayer(); errLayer != nil {
		return fmt.Errorf("Not able to decode RTP layer: %w", errLayer.Error())
	}
	rtp, ok := rtpPacket.Layer(RtpLayerType).(*RtpLayer)
	if !ok {
		return errors.New("Not able to decode RTP layer")
	}
	r.processRtpPacket(receivedAt, src, dst, udp, rtp)
	return nil
}

func (r *RtpReader) processRtpPacket(receivedAt time.Time, src string, dst string, udp *layers.UDP, rtp *RtpLayer) {
	rtp.ReceivedAt = receivedAt

	s, ok := r.rtpStreamsMap[rtp.Ssrc]
	if !ok {
		s = &RtpStream{
			SrcIP:       src,
			SrcPort:     uint(udp.SrcPort),
			DstIP:       dst,
			DstPort:     uint(udp.DstPort),
			Ssrc:        rtp.Ssrc,
			PayloadType: rtp.PayloadType,
		}
		r.rtpStreamsMap[rtp.Ssrc] = s
		r.rtpStreamsSorted = append(r.rtpStreamsSorted, s)
	}
	s.AddPacket(rtp.Packet())
}
