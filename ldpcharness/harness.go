// Package ldpcharness adapts the single-threaded ldpc core to the
// thin init/llr2int/encode/decode surface an external calling harness
// expects, without reimplementing any of that harness's own concerns
// (channel simulation, CLI argument parsing, stats collection).
package ldpcharness

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/oblrl/ldpcbench/ldpc"
)

// RateSpec names one of the three supported code families by their
// design rate and the (d_v, d_c) regular degree pair used to build a
// fresh random code for that rate when none is on disk yet.
type RateSpec struct {
	Rate float64
	Dv   int
	Dc   int
}

// RateDefaults lists the three rate points in ascending order.
var RateDefaults = []RateSpec{
	{Rate: 0.25, Dv: 3, Dc: 4},
	{Rate: 0.5, Dv: 3, Dc: 6},
	{Rate: 0.8, Dv: 4, Dc: 20},
}

func nearestRateSpec(k, n int) RateSpec {
	target := float64(k) / float64(n)
	best := RateDefaults[0]
	bestDist := math.Abs(best.Rate - target)
	for _, rs := range RateDefaults[1:] {
		d := math.Abs(rs.Rate - target)
		if d < bestDist {
			best = rs
			bestDist = d
		}
	}
	return best
}

// CodeStore loads and persists a code keyed by its (n, k) dimensions.
// Load's second return reports whether a code was found; it is not an
// error for no code to exist yet.
type CodeStore interface {
	Load(n, k int) (*ldpc.Code, bool, error)
	Save(n, k int, c *ldpc.Code) error
}

// FileCodeStore persists codes as alist files under Dir, one
// subdirectory per (n, k) pair, following the ldpc_{n}_{k}/code.alist
// convention.
type FileCodeStore struct {
	Dir string
}

// NewFileCodeStore roots a FileCodeStore at dir, or at the
// LDPC_CODES_DIR environment variable when dir is empty, falling back
// to "codes" when neither is set.
func NewFileCodeStore(dir string) *FileCodeStore {
	if dir == "" {
		dir = os.Getenv("LDPC_CODES_DIR")
	}
	if dir == "" {
		dir = "codes"
	}
	return &FileCodeStore{Dir: dir}
}

func (s *FileCodeStore) codePath(n, k int) string {
	return filepath.Join(s.Dir, fmt.Sprintf("ldpc_%d_%d", n, k), "code.alist")
}

func (s *FileCodeStore) Load(n, k int) (*ldpc.Code, bool, error) {
	path := s.codePath(n, k)
	if _, err := os.Stat(path); err != nil {
		return nil, false, nil
	}
	c := ldpc.NewCode(0, 0)
	if err := c.ReadAlist(path, false); err != nil {
		return nil, false, err
	}
	return c, true, nil
}

func (s *FileCodeStore) Save(n, k int, c *ldpc.Code) error {
	path := s.codePath(n, k)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &ldpc.IoFailure{Op: "mkdir", Path: filepath.Dir(path), Err: err}
	}
	return c.WriteAlist(path, false)
}

// llr2intScale and its inverse match the harness-side quantization:
// an LLR of ±25.0 maps to ±32768 (2^15).
const llr2intScale = 32768.0 / 25.0
const int2llrScale = 25.0 / 32768.0

// Adapter is the thin object a calling harness holds: one code,
// loaded or built on Init, then reused across every Encode/Decode call
// for that (k, n).
type Adapter struct {
	store       CodeStore
	code        *ldpc.Code
	n, k        int
	avgLatency  time.Duration
	decoderConf ldpc.DecoderConfig
}

// NewAdapter wires an Adapter to store; store is typically a
// *FileCodeStore but tests may substitute an in-memory implementation.
func NewAdapter(store CodeStore) *Adapter {
	return &Adapter{store: store, decoderConf: ldpc.DefaultDecoderConfig()}
}

// Init resolves the code for (k, n): an existing one is loaded from
// store, otherwise a new regular random code is constructed from the
// nearest rate default and persisted back so the next Init for the
// same dimensions is reproducible. optAvgLatency is recorded for the
// caller's own scheduling but never changes which code is built or
// loaded — selecting a different code family by latency budget belongs
// to the calling harness, not to this adapter.
func (a *Adapter) Init(k, n int, optAvgLatency time.Duration) error {
	if k <= 0 || n <= 0 || k >= n {
		return &ldpc.DimensionMismatch{Field: "k,n", Want: n, Got: k}
	}
	a.avgLatency = optAvgLatency

	c, found, err := a.store.Load(n, k)
	if err != nil {
		return err
	}
	if !found {
		r := n - k
		rs := nearestRateSpec(k, n)
		rowDeg := make([]int, r)
		for i := range rowDeg {
			rowDeg[i] = rs.Dc
		}
		colDeg := make([]int, n)
		for i := range colDeg {
			colDeg[i] = rs.Dv
		}
		c = ldpc.NewCode(0, 0)
		if err := c.Random(r, n, rowDeg, colDeg, nil); err != nil {
			return err
		}
		if err := c.CreateEncoder(); err != nil {
			return err
		}
		if err := a.store.Save(n, k, c); err != nil {
			return err
		}
	} else if !c.HasEncoder() {
		if err := c.CreateEncoder(); err != nil {
			return err
		}
	}

	a.code = c
	a.n, a.k = n, k
	return nil
}

// LLR2Int quantizes a float LLR into the fixed point a calling harness
// exchanges with this adapter, at 32768/25 steps per unit LLR. The
// result is not saturated: |x| >= 25.0 falls outside the int16 range.
func (a *Adapter) LLR2Int(x float64) int32 {
	return int32(math.Round(llr2intScale * x))
}

// Encode systematically encodes info, a k-bit payload, into an n-bit
// codeword using the code resolved by the most recent Init.
func (a *Adapter) Encode(info []byte) ([]byte, error) {
	if a.code == nil {
		return nil, &ldpc.EncoderNotBuilt{}
	}
	return a.code.Encode(info)
}

// Decode runs the iterative decoder on quantized integer LLRs,
// descaling them before calling ldpc.Code.Decode, and returns the hard
// codeword, its systematic info prefix, and whether it satisfied every
// parity check.
func (a *Adapter) Decode(llr []int32, nIter int) (cw []byte, info []byte, satisfied bool) {
	if a.code == nil {
		return nil, nil, false
	}
	llrIn := make([]float64, len(llr))
	for i, x := range llr {
		llrIn[i] = float64(x) * int2llrScale
	}
	llrOut, ok, err := a.code.Decode(llrIn, nIter, a.decoderConf)
	if err != nil {
		return nil, nil, false
	}
	cw = ldpc.HardDecision(llrOut)
	k := a.code.K()
	if k <= len(cw) {
		info = cw[:k]
	}
	return cw, info, ok
}
