package ldpc

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand"
	"time"
)

// maxConstructionAttempts bounds the configuration-model rejection
// loop in Random. Exceeding it returns *ConstructionExhausted rather
// than looping forever or returning a corrupt (non-simple) graph.
const maxConstructionAttempts = 10000

// newSeededRand returns a math/rand source seeded from the operating
// system's CSPRNG, the package's stand-in for a "hardware-seeded
// deterministic PRNG": deterministic once seeded (so a run can be
// reproduced by recording the seed), but not predictable run to run.
func newSeededRand() *mrand.Rand {
	var seed [8]byte
	if _, err := rand.Read(seed[:]); err != nil {
		// crypto/rand failing is effectively unrecoverable on any
		// real platform; fall back to a time-derived seed rather
		// than panic so Random stays usable in a degraded sandbox.
		return mrand.New(mrand.NewSource(time.Now().UnixNano()))
	}
	return mrand.New(mrand.NewSource(int64(binary.LittleEndian.Uint64(seed[:]))))
}

// Random builds a simple bipartite graph (H's edge list) from the
// configuration model: expand degree sequences into stubs, shuffle
// both independently, pair them positionally, and reject the pairing
// if it produced a parallel edge, retrying with a fresh shuffle.
//
// rng, when non-nil, is used in place of a fresh hardware-seeded
// generator, letting tests pin the shuffle for reproducibility.
func (c *Code) Random(r, n int, rowDeg, colDeg []int, rng *mrand.Rand) error {
	if len(rowDeg) != r {
		return &DimensionMismatch{Field: "rowDeg", Want: r, Got: len(rowDeg)}
	}
	if len(colDeg) != n {
		return &DimensionMismatch{Field: "colDeg", Want: n, Got: len(colDeg)}
	}

	sumRow, sumCol := 0, 0
	for _, d := range rowDeg {
		sumRow += d
	}
	for _, d := range colDeg {
		sumCol += d
	}
	if sumRow != sumCol {
		return &DegreeSumMismatch{SumRow: sumRow, SumCol: sumCol}
	}

	if rng == nil {
		rng = newSeededRand()
	}

	rowStubs := make([]int, 0, sumRow)
	for i, d := range rowDeg {
		for k := 0; k < d; k++ {
			rowStubs = append(rowStubs, i)
		}
	}
	colStubs := make([]int, 0, sumCol)
	for j, d := range colDeg {
		for k := 0; k < d; k++ {
			colStubs = append(colStubs, j)
		}
	}

	m := len(rowStubs)
	row := make([]int, m)
	col := make([]int, m)

	simple := false
	for attempt := 1; attempt <= maxConstructionAttempts; attempt++ {
		rng.Shuffle(len(rowStubs), func(i, j int) { rowStubs[i], rowStubs[j] = rowStubs[j], rowStubs[i] })
		rng.Shuffle(len(colStubs), func(i, j int) { colStubs[i], colStubs[j] = colStubs[j], colStubs[i] })
		copy(row, rowStubs)
		copy(col, colStubs)

		if simpleGraph(row, col) {
			simple = true
			break
		}
	}

	// Retain the last attempt regardless of outcome: a non-simple
	// pairing is still the best diagnostic state for the caller to
	// inspect, and a caller retrying with different degrees expects
	// the code to reflect what was actually tried.
	c.reset()
	c.NRows, c.NCols = r, n
	c.Row, c.Col, c.NEdges = row, col, m

	if simple {
		return nil
	}
	return &ConstructionExhausted{Attempts: maxConstructionAttempts}
}

// simpleGraph reports whether the (row, col) pairing contains no
// duplicate edge (the bipartite notion of a parallel edge; there are
// no self-loops in a bipartite graph, only repeats of a pair).
func simpleGraph(row, col []int) bool {
	seen := make(map[[2]int]struct{}, len(row))
	for i := range row {
		key := [2]int{row[i], col[i]}
		if _, dup := seen[key]; dup {
			return false
		}
		seen[key] = struct{}{}
	}
	return true
}
