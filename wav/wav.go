// Package wav writes 16-bit mono PCM at 8 kHz as a RIFF/WAVE file.
package wav

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	HeaderSize    = 44
	SampleRate    = 8000
	BitsPerSample = 16
	Channels      = 1

	formatPCM = 1
)

var ErrClosed = errors.New("wav: writer closed")

// Writer streams samples after a placeholder header and patches the
// chunk sizes on Close.
type Writer struct {
	out     io.WriteSeeker
	written uint32
	closed  bool
	sample  [2]byte
}

func NewWriter(out io.WriteSeeker) (*Writer, error) {
	w := &Writer{out: out}
	if err := w.writeHeader(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Writer) writeHeader() error {
	var hdr [HeaderSize]byte
	copy(hdr[0:4], "RIFF")
	binary.LittleEndian.PutUint32(hdr[4:8], HeaderSize-8+w.written)
	copy(hdr[8:12], "WAVE")

	copy(hdr[12:16], "fmt ")
	binary.LittleEndian.PutUint32(hdr[16:20], 16)
	binary.LittleEndian.PutUint16(hdr[20:22], formatPCM)
	binary.LittleEndian.PutUint16(hdr[22:24], Channels)
	binary.LittleEndian.PutUint32(hdr[24:28], SampleRate)
	binary.LittleEndian.PutUint32(hdr[28:32], SampleRate*Channels*BitsPerSample/8)
	binary.LittleEndian.PutUint16(hdr[32:34], Channels*BitsPerSample/8)
	binary.LittleEndian.PutUint16(hdr[34:36], BitsPerSample)

	copy(hdr[36:40], "data")
	binary.LittleEndian.PutUint32(hdr[40:44], w.written)

	if _, err := w.out.Write(hdr[:]); err != nil {
		return fmt.Errorf("writing wav header: %w", err)
	}
	return nil
}

// Write appends little-endian 16-bit PCM bytes.
func (w *Writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, ErrClosed
	}
	n, err := w.out.Write(p)
	w.written += uint32(n)
	return n, err
}

func (w *Writer) WriteSample(v int16) error {
	binary.LittleEndian.PutUint16(w.sample[:], uint16(v))
	_, err := w.Write(w.sample[:])
	return err
}

// Samples is the number of whole samples written so far.
func (w *Writer) Samples() uint32 {
	return w.written / 2
}

// Close rewrites the header with the final sizes. It does not close the
// underlying writer.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if _, err := w.out.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewinding wav file: %w", err)
	}
	if err := w.writeHeader(); err != nil {
		return err
	}
	_, err := w.out.Seek(0, io.SeekEnd)
	return err
}
