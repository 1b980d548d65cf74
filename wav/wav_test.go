package wav

import (
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w, err := NewWriter(f)
	require.NoError(t, err)
	require.NoError(t, w.WriteSample(1))
	require.NoError(t, w.WriteSample(-2))
	n, err := w.Write([]byte{0x34, 0x12})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, uint32(3), w.Samples())
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	_, err = w.Write([]byte{0, 0})
	assert.Equal(t, ErrClosed, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, data, HeaderSize+6)

	assert.Equal(t, "RIFF", string(data[0:4]))
	assert.Equal(t, uint32(HeaderSize-8+6), binary.LittleEndian.Uint32(data[4:8]))
	assert.Equal(t, "WAVE", string(data[8:12]))
	assert.Equal(t, "fmt ", string(data[12:16]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(data[20:22]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(data[22:24]))
	assert.Equal(t, uint32(8000), binary.LittleEndian.Uint32(data[24:28]))
	assert.Equal(t, uint32(16000), binary.LittleEndian.Uint32(data[28:32]))
	assert.Equal(t, uint16(2), binary.LittleEndian.Uint16(data[32:34]))
	assert.Equal(t, uint16(16), binary.LittleEndian.Uint16(data[34:36]))
	assert.Equal(t, "data", string(data[36:40]))
	assert.Equal(t, uint32(6), binary.LittleEndian.Uint32(data[40:44]))

	assert.Equal(t, []byte{0x01, 0x00, 0xfe, 0xff, 0x34, 0x12}, data[HeaderSize:])
}

func TestEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	w, err := NewWriter(f)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	pos, err := f.Seek(0, io.SeekCurrent)
	require.NoError(t, err)
	assert.Equal(t, int64(HeaderSize), pos)
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, data, HeaderSize)
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(data[40:44]))
}
