package ldpc

import "testing"

func TestSortEdgesLexicographic(t *testing.T) {
	c := &Code{
		NRows: 2, NCols: 3, NEdges: 4,
		Row: []int{1, 0, 1, 0},
		Col: []int{2, 1, 0, 0},
	}
	c.SortEdges()

	wantRow := []int{0, 0, 1, 1}
	wantCol := []int{0, 1, 0, 2}
	for i := range wantRow {
		if c.Row[i] != wantRow[i] || c.Col[i] != wantCol[i] {
			t.Fatalf("edge %d: got (%d,%d), want (%d,%d)", i, c.Row[i], c.Col[i], wantRow[i], wantCol[i])
		}
	}
}

func TestKAndHasEncoder(t *testing.T) {
	c := NewCode(2, 4)
	if got := c.K(); got != 2 {
		t.Fatalf("K() = %d, want 2", got)
	}
	if c.HasEncoder() {
		t.Fatal("HasEncoder() should be false before CreateEncoder")
	}
}

func TestRowColWeights(t *testing.T) {
	c := &Code{
		NRows: 2, NCols: 3, NEdges: 4,
		Row: []int{0, 0, 1, 1},
		Col: []int{0, 1, 1, 2},
	}
	rw := c.rowWeights()
	cw := c.colWeights()
	if rw[0] != 2 || rw[1] != 2 {
		t.Fatalf("rowWeights = %v, want [2 2]", rw)
	}
	if cw[0] != 1 || cw[1] != 2 || cw[2] != 1 {
		t.Fatalf("colWeights = %v, want [1 2 1]", cw)
	}
}
