package g729

import (
	"math"
)

// decodeLag1 returns the integer lag and the fraction (-1, 0, 1 thirds)
// of the first subframe.
func decodeLag1(index int) (int, int) {
	if index < 197 {
		t := (index+2)/3 + 19
		return t, index - 3*t + 58
	}
	return index - 112, 0
}

// decodeLag2 decodes the second subframe lag relative to the integer lag
// of the first subframe.
func decodeLag2(index, t1 int) (int, int) {
	tmin := t1 - 5
	if tmin < minLag {
		tmin = minLag
	}
	if tmin+9 > maxLag {
		tmin = maxLag - 9
	}
	i := (index+2)/3 - 1
	return tmin + i, index - 2 - 3*i
}

// adaptiveVector writes the interpolated past excitation at the given
// fractional delay into the current subframe slot of the history.
func (d *Decoder) adaptiveVector(t0, frac int) {
	m, f := t0, 0
	switch frac {
	case -1:
		m, f = t0-1, 2
	case 1:
		f = 1
	}
	h := &interpFilter[f]
	for n := 0; n < SubframeSize; n++ {
		var v float64
		base := histLen + n - m
		for k := 0; k < interpTaps; k++ {
			v += d.exc[base-(k-9)] * h[k]
		}
		d.exc[histLen+n] = v
	}
}

// fixedVector places the four signed pulses of the algebraic codebook.
func fixedVector(index, signs int) [SubframeSize]float64 {
	var c [SubframeSize]float64
	pos := [4]int{
		5 * (index & 7),
		5*((index>>3)&7) + 1,
		5*((index>>6)&7) + 2,
		5*((index>>10)&7) + 3 + (index>>9)&1,
	}
	for i, p := range pos {
		if (signs>>uint(i))&1 == 1 {
			c[p] += 1
		} else {
			c[p] -= 1
		}
	}
	return c
}

func (d *Decoder) randomVector() [SubframeSize]float64 {
	return fixedVector(int(d.random())&0x1fff, int(d.random())&0xf)
}

// sharpen applies the pitch pre-filter for lags shorter than a subframe.
func (d *Decoder) sharpen(c *[SubframeSize]float64, t0 int) {
	for n := t0; n < SubframeSize; n++ {
		c[n] += d.sharp * c[n-t0]
	}
}

// decodeGains returns the adaptive and fixed codebook gains, updating the
// MA energy prediction memory.
func (d *Decoder) decodeGains(ga, gb int, c *[SubframeSize]float64) (float64, float64) {
	gp := gainStage1[ga][0] + gainStage2[gb][0]
	if gp > gainMax {
		gp = gainMax
	}
	gamma := gainStage1[ga][1] + gainStage2[gb][1]

	gc := gamma * d.predictedGain(c)
	d.pushEnergy(20 * math.Log10(gamma))
	return gp, gc
}

// predictedGain estimates the fixed codebook gain from the energy of
// the previous subframes and the energy of the current innovation.
func (d *Decoder) predictedGain(c *[SubframeSize]float64) float64 {
	var e float64
	for _, v := range c {
		e += v * v
	}
	if e <= 0 {
		return 0
	}
	inno := 10 * math.Log10(e/SubframeSize)
	var pred float64
	for k, b := range gainPredictor {
		pred += b * d.energy[k]
	}
	return math.Pow(10, (pred+meanEnergy-inno)/20)
}

func (d *Decoder) pushEnergy(u float64) {
	copy(d.energy[1:], d.energy[:len(d.energy)-1])
	d.energy[0] = u
}

// excite mixes both codebook contributions into the current subframe slot.
func (d *Decoder) excite(gp, gc float64, c *[SubframeSize]float64) {
	for n := 0; n < SubframeSize; n++ {
		v := gp*d.exc[histLen+n] + gc*c[n]
		d.exc[histLen+n] = clamp(v, excLimit)
	}
	s := gp
	if s < sharpMin {
		s = sharpMin
	} else if s > sharpMax {
		s = sharpMax
	}
	d.sharp = s
	d.gp, d.gc = gp, gc
}

// synthesize runs the current subframe excitation through 1/A(z) and
// shifts the excitation history.
func (d *Decoder) synthesize(a [order + 1]float64, out []int16) {
	for n := 0; n < SubframeSize; n++ {
		s := d.exc[histLen+n]
		for i := 1; i <= order; i++ {
			s -= a[i] * d.mem[i-1]
		}
		s = clamp(s, 2*excLimit)
		copy(d.mem[1:], d.mem[:order-1])
		d.mem[0] = s
		out[n] = toPCM(s)
	}
	copy(d.exc[:], d.exc[SubframeSize:])
}

func (d *Decoder) random() uint16 {
	d.seed = d.seed*31821 + 13849
	return d.seed
}

func clamp(v, limit float64) float64 {
	if v > limit {
		return limit
	}
	if v < -limit {
		return -limit
	}
	return v
}

func toPCM(v float64) int16 {
	v = math.Round(v)
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}
