package g729

import (
	"math"
)

// decodeLSF rebuilds the quantized line spectral frequencies from the
// codebook indices and the MA predictor memory, and returns them in the
// cosine domain.
func (d *Decoder) decodeLSF(mode, i1, i2, i3 int) [order]float64 {
	var l [order]float64
	for j := 0; j < order; j++ {
		l[j] = lsfStage1[i1][j]
		if j < order/2 {
			l[j] += lsfStage2[i2][j]
		} else {
			l[j] += lsfStage2[i3][j]
		}
	}
	stabilize(l[:], lsfGap/4)

	pred := lsfPredictor[mode]
	rest := 1.0
	for _, p := range pred {
		rest -= p
	}
	var w [order]float64
	for j := 0; j < order; j++ {
		w[j] = rest * l[j]
		for k, p := range pred {
			w[j] += p * d.lsfHist[k][j]
		}
	}
	d.pushLSF(l)

	stabilize(w[:], lsfGap)
	return toCos(w)
}

func (d *Decoder) pushLSF(l [order]float64) {
	copy(d.lsfHist[1:], d.lsfHist[:len(d.lsfHist)-1])
	d.lsfHist[0] = l
}

// stabilize sorts the frequencies and enforces a minimum distance between
// neighbours inside (lsfLow, lsfHigh).
func stabilize(w []float64, gap float64) {
	for i := 1; i < len(w); i++ {
		for j := i; j > 0 && w[j] < w[j-1]; j-- {
			w[j], w[j-1] = w[j-1], w[j]
		}
	}
	if w[0] < lsfLow {
		w[0] = lsfLow
	}
	for i := 1; i < len(w); i++ {
		if w[i] < w[i-1]+gap {
			w[i] = w[i-1] + gap
		}
	}
	last := len(w) - 1
	if w[last] > lsfHigh {
		w[last] = lsfHigh
		for i := last - 1; i >= 0; i-- {
			if w[i] > w[i+1]-gap {
				w[i] = w[i+1] - gap
			}
		}
	}
}

func toCos(w [order]float64) [order]float64 {
	var q [order]float64
	for i, v := range w {
		q[i] = math.Cos(v)
	}
	return q
}

// lpcFromLSP converts cosine-domain LSPs to the coefficients a[1..10] of
// A(z) = 1 + sum a[i] z^-i. a[0] is always 1.
func lpcFromLSP(q [order]float64) [order + 1]float64 {
	f1 := sumPolynomial(q, 0)
	f2 := sumPolynomial(q, 1)

	var a [order + 1]float64
	a[0] = 1
	for i := 1; i <= order; i++ {
		// F1(z)(1+z^-1) and F2(z)(1-z^-1)
		p := f1[i] + f1[i-1]
		m := f2[i] - f2[i-1]
		a[i] = 0.5 * (p + m)
	}
	return a
}

// sumPolynomial multiplies out the product of (1 - 2 q z^-1 + z^-2) over
// every other LSP starting at first.
func sumPolynomial(q [order]float64, first int) [order + 1]float64 {
	var f [order + 1]float64
	f[0] = 1
	deg := 0
	for i := first; i < order; i += 2 {
		c := -2 * q[i]
		for j := deg + 2; j >= 1; j-- {
			f[j] += c * f[j-1]
			if j >= 2 {
				f[j] += f[j-2]
			}
		}
		deg += 2
	}
	return f
}

func interpolateLSP(prev, cur [order]float64) [order]float64 {
	var q [order]float64
	for i := range q {
		q[i] = 0.5 * (prev[i] + cur[i])
	}
	return q
}
