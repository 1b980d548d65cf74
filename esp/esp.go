package esp

import (
	"bufio"
	"crypto/aes"
	"crypto/cipher"
	"crypto/des"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"github.com/Vocalocity/rtpproxy-pre-2-0/log"
)

var (
	ErrNoKey                = errors.New("esp: no key for SPI")
	ErrUnsupportedAlgorithm = errors.New("esp: unsupported algorithm")
	ErrShortPayload         = errors.New("esp: encrypted payload too short")
)

// Next header values found in the ESP trailer.
const (
	nextHeaderIPv4 = 4
	nextHeaderUDP  = 17
	nextHeaderIPv6 = 41
)

//EncKey describes IPSec Enc keys
type EncKey struct {
	algorithm string
	spi       uint32
	key       []byte
	icvLen    int
}

// Keyring maps SPIs to the keys needed to open ESP payloads.
type Keyring struct {
	keys map[uint32]*EncKey
}

func NewKeyring() *Keyring {
	return &Keyring{keys: make(map[uint32]*EncKey)}
}

//LoadKeyFile load key file
func LoadKeyFile(path string) (*Keyring, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open key file %s: %w", path, err)
	}
	defer file.Close()

	k := NewKeyring()
	if err := k.Load(file); err != nil {
		return nil, fmt.Errorf("read key file %s: %w", path, err)
	}
	return k, nil
}

// Load reads "<spi> <algorithm> <key> [icv-length]" lines. Lines that don't
// parse are skipped.
func (k *Keyring) Load(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		spi, err := spiHexToInt(fields[0])
		if err != nil {
			log.Sdebug("skipping key line, bad spi %q", fields[0])
			continue
		}
		key := bytesFromHex(fields[2])
		if key == nil {
			continue
		}
		icvLen := 0
		if len(fields) > 3 {
			icvLen, err = strconv.Atoi(fields[3])
			if err != nil || icvLen < 0 {
				log.Sdebug("skipping key line, bad icv length %q", fields[3])
				continue
			}
		}
		if err := k.Add(spi, fields[1], key, icvLen); err != nil {
			log.Sdebug("skipping key line for spi 0x%x: %v", spi, err)
		}
	}
	return scanner.Err()
}

// Add registers a key, checking that it fits the algorithm.
func (k *Keyring) Add(spi uint32, algorithm string, key []byte, icvLen int) error {
	switch algorithm {
	case "des3_cbc":
		if len(key) != 24 {
			return fmt.Errorf("des3_cbc key must be 24 bytes, got %d", len(key))
		}
	case "aes_cbc":
		if len(key) != 16 && len(key) != 24 && len(key) != 32 {
			return fmt.Errorf("aes_cbc key must be 16, 24 or 32 bytes, got %d", len(key))
		}
	case "null":
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, algorithm)
	}
	k.keys[spi] = &EncKey{
		algorithm: algorithm,
		spi:       spi,
		key:       key,
		icvLen:    icvLen,
	}
	return nil
}

func (k *Keyring) Len() int {
	return len(k.keys)
}

//Decrypt opens an ESP payload and decodes what it carried: an IPv4 or IPv6
//packet in tunnel mode, or a bare UDP datagram in transport mode.
func (k *Keyring) Decrypt(esp *layers.IPSecESP) (gopacket.Packet, error) {
	entry := k.keys[esp.SPI]
	if entry == nil {
		return nil, fmt.Errorf("%w 0x%x", ErrNoKey, esp.SPI)
	}

	data := esp.Encrypted
	if len(data) < entry.icvLen {
		return nil, ErrShortPayload
	}
	data = data[:len(data)-entry.icvLen]

	var clearData []byte
	switch entry.algorithm {
	case "des3_cbc":
		blockCipher, err := des.NewTripleDESCipher(entry.key)
		if err != nil {
			return nil, err
		}
		clearData, err = decryptCBC(blockCipher, data)
		if err != nil {
			return nil, err
		}
	case "aes_cbc":
		blockCipher, err := aes.NewCipher(entry.key)
		if err != nil {
			return nil, err
		}
		clearData, err = decryptCBC(blockCipher, data)
		if err != nil {
			return nil, err
		}
	case "null":
		clearData = data
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, entry.algorithm)
	}

	payload, nextHeader, err := stripTrailer(clearData)
	if err != nil {
		return nil, err
	}
	return makePacket(payload, nextHeader), nil
}

// decryptCBC expects the IV in the first block of data.
func decryptCBC(block cipher.Block, data []byte) ([]byte, error) {
	bs := block.BlockSize()
	if len(data) < 2*bs || len(data)%bs != 0 {
		return nil, ErrShortPayload
	}
	iv := data[:bs]
	cipherData := data[bs:]
	clearData := make([]byte, len(cipherData))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(clearData, cipherData)
	return clearData, nil
}

// stripTrailer removes padding, pad length and next header.
func stripTrailer(d []byte) ([]byte, byte, error) {
	if len(d) < 2 {
		return nil, 0, ErrShortPayload
	}
	padLen := int(d[len(d)-2])
	nextHeader := d[len(d)-1]
	end := len(d) - 2 - padLen
	if end < 0 {
		return nil, 0, fmt.Errorf("esp: pad length %d exceeds payload", padLen)
	}
	return d[:end], nextHeader, nil
}

func makePacket(d []byte, nextHeader byte) gopacket.Packet {
	switch nextHeader {
	case nextHeaderUDP:
		return gopacket.NewPacket(d, layers.LayerTypeUDP, gopacket.Default)
	case nextHeaderIPv6:
		return gopacket.NewPacket(d, layers.LayerTypeIPv6, gopacket.Default)
	case nextHeaderIPv4:
		return gopacket.NewPacket(d, layers.LayerTypeIPv4, gopacket.Default)
	}
	espPacket := gopacket.NewPacket(d, layers.LayerTypeIPv4, gopacket.Default)
	if espPacket.ErrorLayer() != nil {
		espPacket = gopacket.NewPacket(d, layers.LayerTypeIPv6, gopacket.Default)
	}
	return espPacket
}

func bytesFromHex(s string) []byte {
	hexString := strings.TrimPrefix(s, "0x")
	b, err := hex.DecodeString(hexString)
	if err != nil {
		log.Debug("failed to convert hex string")
		return nil
	}
	return b
}

func spiHexToInt(s string) (uint32, error) {
	n, err := strconv.ParseUint(strings.TrimPrefix(s, "0x"), 16, 32)
	return uint32(n), err
}
