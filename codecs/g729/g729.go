// Package g729 implements a CS-ACELP speech decoder for 8 kbit/s frames.
//
// The decoder follows the G.729 frame structure: LSP quantizer indices,
// adaptive and algebraic codebooks and MA gain prediction, with frame
// erasure concealment and Annex B comfort noise. Its quantizer tables are
// generated rather than taken from the ITU reference, so output is not
// bit-exact with ITU test vectors.
package g729

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrClosed      = errors.New("g729: decoder closed")
	ErrFrameLength = errors.New("g729: invalid frame length")
)

// Decoder keeps the state carried between frames of one stream.
// It is not safe for concurrent use.
type Decoder struct {
	lsp     [order]float64
	lsfHist [4][order]float64
	mem     [order]float64
	exc     [histLen + SubframeSize]float64
	energy  [4]float64

	lag    int
	gp, gc float64
	sharp  float64
	seed   uint16

	cng     bool
	cngGain float64
	closed  bool
}

func NewDecoder() *Decoder {
	d := &Decoder{
		lag:   60,
		sharp: sharpMin,
		seed:  21845,
	}
	for k := range d.lsfHist {
		d.lsfHist[k] = lsfMean
	}
	for k := range d.energy {
		d.energy[k] = minEnergy
	}
	d.lsp = toCos(lsfMean)
	return d
}

// DecodeFrame decodes one frame into 80 samples. An empty frame is an
// erasure and yields concealment output, or comfort noise while the
// stream is in a silence period. SID frames (2 bytes) start or refresh
// comfort noise. Annex D and E frames (8 and 15 bytes) are concealed.
func (d *Decoder) DecodeFrame(frame []byte) ([FrameSamples]int16, error) {
	var out [FrameSamples]int16
	if d.closed {
		return out, ErrClosed
	}
	switch len(frame) {
	case 0:
		if d.cng {
			d.comfortNoise(&out)
		} else {
			d.conceal(&out)
		}
	case FrameBytes:
		d.cng = false
		p := parseFrame(frame)
		d.decode(&p, &out)
	case SIDBytes:
		d.sid(frame)
		d.comfortNoise(&out)
	case 8, 15:
		d.cng = false
		d.conceal(&out)
	default:
		return out, fmt.Errorf("%w: %d bytes", ErrFrameLength, len(frame))
	}
	return out, nil
}

// Close releases the decoder; later calls to DecodeFrame fail.
func (d *Decoder) Close() error {
	if d.closed {
		return ErrClosed
	}
	d.closed = true
	return nil
}

func (d *Decoder) decode(p *frameParams, out *[FrameSamples]int16) {
	cur := d.decodeLSF(p.mode, p.l1, p.l2, p.l3)
	lpc := [2][order + 1]float64{
		lpcFromLSP(interpolateLSP(d.lsp, cur)),
		lpcFromLSP(cur),
	}
	d.lsp = cur

	t1 := d.lag
	for sf := 0; sf < 2; sf++ {
		sp := &p.sub[sf]
		var t0, frac int
		switch {
		case sf == 1:
			t0, frac = decodeLag2(sp.lag, t1)
		case parityOK(sp.lag, sp.parity):
			t0, frac = decodeLag1(sp.lag)
			t1 = t0
		default:
			t0 = d.lag
		}

		d.adaptiveVector(t0, frac)
		c := fixedVector(sp.code, sp.signs)
		d.sharpen(&c, t0)
		gp, gc := d.decodeGains(sp.gainA, sp.gainB, &c)
		d.excite(gp, gc, &c)
		d.synthesize(lpc[sf], out[sf*SubframeSize:(sf+1)*SubframeSize])
		d.lag = t0
	}
}

// conceal repeats the last LP filter with attenuated gains, the previous
// integer lag and a random innovation.
func (d *Decoder) conceal(out *[FrameSamples]int16) {
	a := lpcFromLSP(d.lsp)
	d.pushLSF(d.lsfHist[0])

	for sf := 0; sf < 2; sf++ {
		gp := 0.9 * d.gp
		if gp > 0.9 {
			gp = 0.9
		}
		gc := 0.98 * d.gc

		d.adaptiveVector(d.lag, 0)
		c := d.randomVector()
		d.excite(gp, gc, &c)
		d.synthesize(a, out[sf*SubframeSize:(sf+1)*SubframeSize])

		var avg float64
		for _, e := range d.energy {
			avg += e
		}
		d.pushEnergy(math.Max(avg/float64(len(d.energy))-4, minEnergy))
	}
	if d.lag < maxLag {
		d.lag++
	}
}

// sid reads an Annex B silence descriptor: 1 bit predictor mode, 5 and 4
// bit LSF indices and a 5 bit energy index.
func (d *Decoder) sid(frame []byte) {
	r := &bitReader{data: frame}
	mode := r.read(1)
	i1 := r.read(5)
	i2 := r.read(4)
	e := r.read(5)

	var l [order]float64
	for j := range l {
		l[j] = lsfStage1[(i1<<2|mode<<1)&127][j] + lsfStage2[i2][j]
	}
	stabilize(l[:], lsfGap)
	for k := range d.lsfHist {
		d.lsfHist[k] = l
	}
	d.lsp = toCos(l)

	gain := math.Pow(10, (2*float64(e)-8)/20)
	if d.cng {
		gain = 0.5 * (d.cngGain + gain)
	}
	d.cngGain = gain
	d.cng = true
}

func (d *Decoder) comfortNoise(out *[FrameSamples]int16) {
	a := lpcFromLSP(d.lsp)
	for sf := 0; sf < 2; sf++ {
		for n := 0; n < SubframeSize; n++ {
			var v float64
			for k := 0; k < 4; k++ {
				v += float64(int16(d.random())) / 32768
			}
			d.exc[histLen+n] = d.cngGain * v
		}
		d.synthesize(a, out[sf*SubframeSize:(sf+1)*SubframeSize])
	}
	d.gp, d.gc = 0, d.cngGain
}
