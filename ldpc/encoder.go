package ldpc

// CreateEncoder builds a systematic encoder from the code's current
// edge list by GF(2) Gauss-Jordan elimination with column pivoting.
//
// The elimination loop below follows the same dense-augmented-matrix
// shape as a GF(256) Gauss-Jordan inverse (pivot search, row swap,
// XOR-elimination pass over every other row) generalized to GF(2) and
// given column pivoting: instead of requiring a pivot on the diagonal
// column, any remaining column may supply it, and the chosen column
// order is recorded in perm so it can be undone later.
//
// On return, ParityGenerator holds the transpose of H's parity block
// and the edge list has been relabeled so columns [0,k) are
// information positions and [k,n) are parity positions. CreateEncoder
// is idempotent: calling it again on an already-systematic code
// re-derives an equivalent (not necessarily identical) systematic
// form without error.
func (c *Code) CreateEncoder() error {
	r, n := c.NRows, c.NCols
	k := n - r

	d := make([][]byte, r)
	for i := range d {
		d[i] = make([]byte, n)
	}
	for e := 0; e < c.NEdges; e++ {
		d[c.Row[e]][c.Col[e]] = 1
	}

	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}

	rank := 0
	for i := 0; i < r; i++ {
		pivotRow, pivotK := -1, -1
	search:
		for j := i; j < r; j++ {
			for k2 := i; k2 < n; k2++ {
				if d[j][perm[k2]] == 1 {
					pivotRow, pivotK = j, k2
					break search
				}
			}
		}
		if pivotRow == -1 {
			// H has rank < r on the remaining submatrix; stop early.
			break
		}

		perm[i], perm[pivotK] = perm[pivotK], perm[i]
		d[i], d[pivotRow] = d[pivotRow], d[i]

		pivotCol := perm[i]
		for row := 0; row < r; row++ {
			if row == i {
				continue
			}
			if d[row][pivotCol] == 1 {
				xorRow(d[row], d[i])
			}
		}
		rank++
	}
	c.Rank = rank

	parityGen := make([][]byte, k)
	for j := 0; j < k; j++ {
		parityGen[j] = make([]byte, r)
		for i := 0; i < rank; i++ {
			parityGen[j][i] = d[i][perm[r+j]]
		}
	}
	c.ParityGenerator = parityGen

	// Rotate perm so info columns (currently at [r,n)) come first and
	// parity columns (currently at [0,r)) follow, then invert it to
	// get the relabeling of existing column indices.
	newPerm := make([]int, n)
	copy(newPerm[:k], perm[r:n])
	copy(newPerm[k:], perm[:r])

	invPerm := make([]int, n)
	for newPos, oldCol := range newPerm {
		invPerm[oldCol] = newPos
	}
	for e := 0; e < c.NEdges; e++ {
		c.Col[e] = invPerm[c.Col[e]]
	}

	return nil
}

func xorRow(dst, src []byte) {
	for i := range dst {
		dst[i] ^= src[i]
	}
}
