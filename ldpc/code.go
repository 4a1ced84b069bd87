// Package ldpc implements the core of a binary low-density
// parity-check (LDPC) error-correcting-code toolkit: the sparse
// edge-list model of a parity-check matrix H, alist persistence, a
// random-graph constructor, a GF(2) systematic encoder builder, and
// an iterative (sum-product / min-sum) belief-propagation decoder.
//
// The package is purely computational and single-threaded per call:
// a Code value is immutable after CreateEncoder has run, and Encode
// and Decode read Code fields while writing only their own output
// buffers and private scratch space.
package ldpc

import "sort"

// Code is the edge-list representation of a sparse binary
// parity-check matrix H, of size n_rows x n_cols with n_edges ones.
//
// Row[e] and Col[e] give, for edge e, the check-node and
// variable-node index of a single 1 entry in H. The pair (Row[e],
// Col[e]) is unique across e: H is a simple bipartite graph.
//
// ParityGenerator is empty until CreateEncoder has run. Afterwards
// ParityGenerator[j][i] == 1 iff info bit j contributes to parity bit
// i, i.e. ParityGenerator is the transpose of the A block of H =
// [A | I_r] under the column order CreateEncoder leaves the edge
// list in.
type Code struct {
	NRows, NCols, NEdges int

	Row, Col []int

	// ParityGenerator[j][i], j in [0,k), i in [0,NRows).
	ParityGenerator [][]byte

	// Rank is the number of independent parity checks found by the
	// most recent CreateEncoder call (<= NRows; less only when H is
	// rank-deficient on the requested number of rows).
	Rank int
}

// NewCode returns an empty code with the given dimensions and no
// edges. Random and ReadAlist both populate a Code's edges from this
// starting point (or an equivalent zeroed state).
func NewCode(nRows, nCols int) *Code {
	return &Code{NRows: nRows, NCols: nCols}
}

// K returns the number of information bits, n_cols - n_rows.
func (c *Code) K() int { return c.NCols - c.NRows }

// HasEncoder reports whether CreateEncoder has produced a non-empty
// parity generator.
func (c *Code) HasEncoder() bool { return len(c.ParityGenerator) > 0 }

// reset clears the edge list and any built encoder, leaving NRows and
// NCols untouched. Used before populating a Code from Random or
// ReadAlist, matching the reference decoder's "clear row/col vectors"
// step at the start of a load.
func (c *Code) reset() {
	c.Row = nil
	c.Col = nil
	c.NEdges = 0
	c.ParityGenerator = nil
}

// SortEdges reorders the edge list lexicographically by (Row[e],
// Col[e]). It is used only to make two code objects comparable for
// equality (e.g. round-trip tests); no other operation may assume
// edges are in this order, since message passing's canonical order
// is whatever order the edges were built or read in.
func (c *Code) SortEdges() {
	idx := make([]int, c.NEdges)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool {
		ia, ib := idx[a], idx[b]
		if c.Row[ia] != c.Row[ib] {
			return c.Row[ia] < c.Row[ib]
		}
		return c.Col[ia] < c.Col[ib]
	})
	row := make([]int, c.NEdges)
	col := make([]int, c.NEdges)
	for i, j := range idx {
		row[i] = c.Row[j]
		col[i] = c.Col[j]
	}
	c.Row, c.Col = row, col
}

// rowWeights returns the per-row (check-node) degree sequence derived
// from the current edge list.
func (c *Code) rowWeights() []int {
	w := make([]int, c.NRows)
	for _, r := range c.Row {
		w[r]++
	}
	return w
}

// colWeights returns the per-column (variable-node) degree sequence
// derived from the current edge list.
func (c *Code) colWeights() []int {
	w := make([]int, c.NCols)
	for _, col := range c.Col {
		w[col]++
	}
	return w
}
