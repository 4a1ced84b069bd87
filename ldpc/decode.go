package ldpc

import "math"

// DecoderConfig holds the tunables §4.5 of the spec names: whether to
// run min-sum instead of sum-product, the min-sum offset, the
// variable-node scale factor, and the symmetric clamp applied to
// sum-product bit messages before each check-node update.
type DecoderConfig struct {
	MinSum       bool
	MinSumOffset float64
	BitNodeScale float64
	MinLLR       float64
	MaxLLR       float64
}

// DefaultDecoderConfig returns the reference clamp bounds and offset:
// sum-product bit messages are held in [0.001, 15.0] in magnitude (the
// bounds the original decoder uses), min-sum subtracts a 0.3 offset,
// and the variable-node scale is unity.
func DefaultDecoderConfig() DecoderConfig {
	return DecoderConfig{
		MinSum:       false,
		MinSumOffset: 0.3,
		BitNodeScale: 1.0,
		MinLLR:       0.001,
		MaxLLR:       15.0,
	}
}

// Decode runs iterative message passing on the code's Tanner graph
// for up to nIter iterations, selecting sum-product or min-sum per
// cfg.MinSum, with early termination once a tentative codeword
// satisfies every parity check. It returns the posterior LLRs and
// whether the returned codeword was detected as valid.
//
// nIter == 0 returns the clamped input as the posterior with
// satisfied == false, performing no message passing at all.
func (c *Code) Decode(llrIn []float64, nIter int, cfg DecoderConfig) ([]float64, bool, error) {
	if len(llrIn) != c.NCols {
		return nil, false, &DimensionMismatch{Field: "llrIn", Want: c.NCols, Got: len(llrIn)}
	}
	if cfg.BitNodeScale == 0 {
		cfg.BitNodeScale = 1.0
	}

	llrOut := make([]float64, c.NCols)
	if nIter <= 0 {
		for v, x := range llrIn {
			llrOut[v] = clampSigned(x, cfg.MinLLR, cfg.MaxLLR)
		}
		return llrOut, false, nil
	}

	m := c.NEdges
	bitMessage := make([]float64, m)
	checkMessage := make([]float64, m)
	bitAccum := make([]float64, c.NCols)
	tanhVal := make([]float64, m)
	checkAccum := make([]float64, c.NRows)
	smallest := make([]float64, c.NRows)
	second := make([]float64, c.NRows)
	signXor := make([]bool, c.NRows)

	for e := 0; e < m; e++ {
		bitMessage[e] = llrIn[c.Col[e]]
	}

	satisfied := false
	for iter := 0; iter < nIter; iter++ {
		if !cfg.MinSum {
			for e := range bitMessage {
				bitMessage[e] = clampSigned(bitMessage[e], cfg.MinLLR, cfg.MaxLLR)
			}
		}

		if cfg.MinSum {
			for i := range smallest {
				smallest[i] = cfg.MaxLLR
				second[i] = cfg.MaxLLR
				signXor[i] = false
			}
			for e := 0; e < m; e++ {
				row := c.Row[e]
				mag := math.Abs(bitMessage[e])
				if bitMessage[e] < 0 {
					signXor[row] = !signXor[row]
				}
				if mag < smallest[row] {
					second[row] = smallest[row]
					smallest[row] = mag
				} else if mag < second[row] {
					second[row] = mag
				}
			}
			for e := 0; e < m; e++ {
				row := c.Row[e]
				mag := math.Abs(bitMessage[e])
				var other float64
				if mag == smallest[row] {
					other = second[row]
				} else {
					other = smallest[row]
				}
				other -= cfg.MinSumOffset
				if other < 0 {
					other = 0
				}
				negative := signXor[row] != (bitMessage[e] < 0)
				if negative {
					checkMessage[e] = -other
				} else {
					checkMessage[e] = other
				}
			}
		} else {
			for i := range checkAccum {
				checkAccum[i] = 1.0
			}
			for e := 0; e < m; e++ {
				tanhVal[e] = math.Tanh(bitMessage[e] / 2)
				checkAccum[c.Row[e]] *= tanhVal[e]
			}
			for e := 0; e < m; e++ {
				checkMessage[e] = 2 * math.Atanh(checkAccum[c.Row[e]]/tanhVal[e])
			}
		}

		if iter > 0 {
			if cfg.MinSum {
				satisfied = true
				for i := range signXor {
					if signXor[i] {
						satisfied = false
						break
					}
				}
			} else {
				satisfied = true
				for i := range checkAccum {
					if checkAccum[i] <= 0 {
						satisfied = false
						break
					}
				}
			}
			if satisfied {
				break
			}
		}

		for v := range bitAccum {
			bitAccum[v] = llrIn[v] / cfg.BitNodeScale
		}
		for e := 0; e < m; e++ {
			bitAccum[c.Col[e]] += checkMessage[e]
		}
		for e := 0; e < m; e++ {
			bitMessage[e] = cfg.BitNodeScale * (bitAccum[c.Col[e]] - checkMessage[e])
		}
	}

	copy(llrOut, bitAccum)
	return llrOut, satisfied, nil
}

// HardDecision converts posterior LLRs into a hard bit decision per
// variable: llr <= 0 maps to 1, llr > 0 maps to 0.
func HardDecision(llrOut []float64) []byte {
	cw := make([]byte, len(llrOut))
	for i, x := range llrOut {
		if x <= 0 {
			cw[i] = 1
		}
	}
	return cw
}

func clampSigned(x, lo, hi float64) float64 {
	sign := 1.0
	if x < 0 {
		sign = -1.0
	}
	mag := math.Abs(x)
	if mag < lo {
		mag = lo
	}
	if mag > hi {
		mag = hi
	}
	return sign * mag
}
