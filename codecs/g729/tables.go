package g729

import (
	"math"
)

const (
	order        = 10
	SubframeSize = 40
	FrameSamples = 2 * SubframeSize

	FrameBytes = 10
	SIDBytes   = 2

	minLag = 20
	maxLag = 143

	// past excitation kept for the adaptive codebook: max lag plus
	// the interpolation filter reach
	histLen = 170

	interpTaps = 20

	lsfGap     = 0.0392
	lsfLow     = 0.005
	lsfHigh    = 3.135
	meanEnergy = 30.0
	minEnergy  = -14.0

	sharpMin = 0.2
	sharpMax = 0.8
	gainMax  = 1.2

	excLimit = 1 << 16
)

var (
	lsfStage1 [128][order]float64
	lsfStage2 [32][order]float64

	// MA predictor weights per mode, applied to the four previous
	// quantizer outputs
	lsfPredictor = [2][4]float64{
		{0.24, 0.18, 0.12, 0.08},
		{0.12, 0.08, 0.05, 0.03},
	}

	gainPredictor = [4]float64{0.68, 0.58, 0.34, 0.19}

	gainStage1 [8][2]float64
	gainStage2 [16][2]float64

	interpFilter [3][interpTaps]float64

	lsfMean [order]float64
)

func init() {
	for j := 0; j < order; j++ {
		lsfMean[j] = float64(j+1) * math.Pi / (order + 1)
	}
	for i := range lsfStage1 {
		for j := 0; j < order; j++ {
			lsfStage1[i][j] = lsfMean[j] + 0.06*math.Sin(float64((i+1)*(j+3)))
		}
	}
	for i := range lsfStage2 {
		for j := 0; j < order; j++ {
			lsfStage2[i][j] = 0.02 * math.Sin(0.7*float64((i+2)*(j+1)))
		}
	}

	for i := range gainStage1 {
		gainStage1[i] = [2]float64{0.1 * float64(i), 0.2 + 0.15*float64(i)}
	}
	for i := range gainStage2 {
		gainStage2[i] = [2]float64{0.5 * float64(i) / 15, 0.07 * float64(i)}
	}

	// windowed sinc for delays of 0, 1/3 and 2/3 sample
	for f := 0; f < 3; f++ {
		a := float64(f) / 3
		for k := 0; k < interpTaps; k++ {
			x := float64(k-9) - a
			h := 1.0
			if x != 0 {
				h = math.Sin(math.Pi*x) / (math.Pi * x)
			}
			interpFilter[f][k] = h * (0.54 + 0.46*math.Cos(math.Pi*x/10))
		}
	}
}
