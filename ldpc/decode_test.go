package ldpc

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildEncoderCode(t *testing.T, r, n, dv, dc int, seed int64) *Code {
	t.Helper()
	rd := make([]int, r)
	for i := range rd {
		rd[i] = dc
	}
	cd := make([]int, n)
	for i := range cd {
		cd[i] = dv
	}
	c := NewCode(0, 0)
	rng := rand.New(rand.NewSource(seed))
	if err := c.Random(r, n, rd, cd, rng); err != nil {
		t.Fatalf("Random: %v", err)
	}
	if err := c.CreateEncoder(); err != nil {
		t.Fatalf("CreateEncoder: %v", err)
	}
	return c
}

// TestAllZeroCleanChannel is scenario C: a clean channel on the
// all-zero codeword must satisfy with strictly positive posteriors.
func TestAllZeroCleanChannel(t *testing.T) {
	c := buildEncoderCode(t, 45, 90, 3, 6, 100)

	llrIn := make([]float64, c.NCols)
	for i := range llrIn {
		llrIn[i] = 1.0
	}
	cfg := DefaultDecoderConfig()
	llrOut, satisfied, err := c.Decode(llrIn, 20, cfg)
	require.NoError(t, err)
	require.True(t, satisfied, "expected satisfied decode on a clean all-zero channel")
	for v, x := range llrOut {
		require.Greaterf(t, x, 0.0, "llrOut[%d]", v)
	}
}

// TestSingleFlippedLLR is scenario D.
func TestSingleFlippedLLR(t *testing.T) {
	c := buildEncoderCode(t, 45, 90, 3, 6, 101)

	llrIn := make([]float64, c.NCols)
	for i := range llrIn {
		llrIn[i] = 3.0
	}
	llrIn[0] = -3.0

	cfg := DefaultDecoderConfig()
	llrOut, satisfied, err := c.Decode(llrIn, 20, cfg)
	require.NoError(t, err)
	require.True(t, satisfied, "expected satisfied decode with a single flipped LLR")
	require.Greater(t, llrOut[0], 0.0, "expected the flipped bit to be corrected")
}

// TestDecoderIdempotenceOnCleanInput is property 7.
func TestDecoderIdempotenceOnCleanInput(t *testing.T) {
	c := buildEncoderCode(t, 20, 40, 3, 6, 102)
	info := make([]byte, c.K())
	for j := range info {
		info[j] = byte((j * 7) % 2)
	}
	cw, err := c.Encode(info)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	const L = 5.0
	llrIn := make([]float64, c.NCols)
	for v, b := range cw {
		if b == 0 {
			llrIn[v] = L
		} else {
			llrIn[v] = -L
		}
	}

	for _, minSum := range []bool{false, true} {
		cfg := DefaultDecoderConfig()
		cfg.MinSum = minSum
		llrOut, satisfied, err := c.Decode(llrIn, 20, cfg)
		if err != nil {
			t.Fatalf("Decode (minSum=%v): %v", minSum, err)
		}
		if !satisfied {
			t.Fatalf("Decode (minSum=%v): expected satisfied", minSum)
		}
		for v, b := range cw {
			want := llrOut[v] > 0
			gotZero := b == 0
			if want != gotZero {
				t.Fatalf("Decode (minSum=%v): sign(llrOut[%d])=%v, want bit %d", minSum, v, llrOut[v], b)
			}
		}
	}
}

// TestSumProductSymmetry is property 8: negating all inputs negates
// the posteriors elementwise, for sum-product.
func TestSumProductSymmetry(t *testing.T) {
	c := buildEncoderCode(t, 20, 40, 3, 6, 103)

	rng := rand.New(rand.NewSource(9))
	llrIn := make([]float64, c.NCols)
	for i := range llrIn {
		llrIn[i] = (rng.Float64()*2 - 1) * 4
	}
	neg := make([]float64, c.NCols)
	for i, x := range llrIn {
		neg[i] = -x
	}

	cfg := DefaultDecoderConfig()
	out1, _, err := c.Decode(llrIn, 10, cfg)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	out2, _, err := c.Decode(neg, 10, cfg)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	for i := range out1 {
		if math.Abs(out1[i]+out2[i]) > 1e-6 {
			t.Fatalf("symmetry broken at %d: %v vs %v", i, out1[i], out2[i])
		}
	}
}

// TestNoPanicOnExtremeLLRs is property 9.
func TestNoPanicOnExtremeLLRs(t *testing.T) {
	c := buildEncoderCode(t, 20, 40, 3, 6, 104)
	cfg := DefaultDecoderConfig()

	for _, minSum := range []bool{false, true} {
		cfg.MinSum = minSum
		llrIn := make([]float64, c.NCols)
		for i := range llrIn {
			if i%2 == 0 {
				llrIn[i] = cfg.MaxLLR - 1e-6
			} else {
				llrIn[i] = -(cfg.MaxLLR - 1e-6)
			}
		}
		llrOut, _, err := c.Decode(llrIn, 20, cfg)
		if err != nil {
			t.Fatalf("Decode (minSum=%v): %v", minSum, err)
		}
		for i, x := range llrOut {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				t.Fatalf("Decode (minSum=%v): llrOut[%d] = %v, want finite", minSum, i, x)
			}
		}
	}
}

func TestDecodeZeroIterations(t *testing.T) {
	c := buildEncoderCode(t, 10, 20, 3, 6, 105)
	llrIn := make([]float64, c.NCols)
	for i := range llrIn {
		llrIn[i] = 2.0
	}
	cfg := DefaultDecoderConfig()
	llrOut, satisfied, err := c.Decode(llrIn, 0, cfg)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if satisfied {
		t.Fatal("zero iterations must report unsatisfied")
	}
	for i, x := range llrOut {
		if x != 2.0 {
			t.Fatalf("llrOut[%d] = %v, want clamped input 2.0", i, x)
		}
	}
}

func TestDecodeDimensionMismatch(t *testing.T) {
	c := buildEncoderCode(t, 10, 20, 3, 6, 106)
	_, _, err := c.Decode(make([]float64, 3), 10, DefaultDecoderConfig())
	if _, ok := err.(*DimensionMismatch); !ok {
		t.Fatalf("expected *DimensionMismatch, got %T: %v", err, err)
	}
}

func TestMinSumMildAWGN(t *testing.T) {
	c := buildEncoderCode(t, 45, 90, 3, 6, 107)
	info := make([]byte, c.K())
	cw, err := c.Encode(info)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	const esNoLinear = 0.72
	esNo := esNoLinear
	mean := 4 * esNo
	stddev := math.Sqrt(8 * esNo)
	rng := rand.New(rand.NewSource(55))

	cfg := DefaultDecoderConfig()
	cfg.MinSum = true
	cfg.MinSumOffset = 0.3

	const trials = 100
	failures := 0
	for trial := 0; trial < trials; trial++ {
		llrIn := make([]float64, c.NCols)
		for v, b := range cw {
			sign := 1.0
			if b != 0 {
				sign = -1.0
			}
			noise := mean + stddev*rng.NormFloat64()
			llrIn[v] = sign * noise
		}
		_, satisfied, err := c.Decode(llrIn, 20, cfg)
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if !satisfied {
			failures++
		}
	}
	if float64(failures)/trials > 0.10 {
		t.Fatalf("min-sum failure rate %v/%d exceeds 10%%", failures, trials)
	}
}
