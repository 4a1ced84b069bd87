package ldpc

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// alistScanner wraps a bufio.Scanner configured to split on any
// whitespace (spaces, tabs, newlines), matching the way the reference
// decoder reads alist files with operator>> on an ifstream: fields are
// whitespace-separated regardless of how many values share a line.
type alistScanner struct {
	sc   *bufio.Scanner
	line int
}

func newAlistScanner(f *os.File) *alistScanner {
	sc := bufio.NewScanner(f)
	sc.Split(bufio.ScanWords)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return &alistScanner{sc: sc}
}

func (s *alistScanner) nextInt() (int, bool) {
	if !s.sc.Scan() {
		return 0, false
	}
	v, err := strconv.Atoi(s.sc.Text())
	if err != nil {
		return 0, false
	}
	return v, true
}

// ReadAlist reads a code from an alist-format file, replacing any
// edges currently on c. The header convention is n_cols n_rows (see
// spec's resolution of the two competing conventions). Only the
// column section of the file is consumed to build the edge list; the
// row section is redundant on disk and is re-derived from the edge
// list whenever the code is written back out.
//
// zeroPad selects between the variable-length variant (each column's
// row list has exactly ColWeight[j] entries) and the zero-padded
// fixed-width variant (each column's row list is padded with 0 up to
// MaxColWeight entries, a 0 terminating that column's real entries
// early).
//
// On any failure to open the file, an *IoFailure is returned and the
// code's edge list is left cleared (not its pre-call state) per the
// documented read contract.
func (c *Code) ReadAlist(path string, zeroPad bool) error {
	c.reset()

	f, err := os.Open(path)
	if err != nil {
		return &IoFailure{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	s := newAlistScanner(f)

	nCols, ok1 := s.nextInt()
	nRows, ok2 := s.nextInt()
	if !ok1 || !ok2 {
		return &AlistFormatError{Path: path, Line: 1, Msg: "missing n_cols/n_rows header"}
	}
	maxColWeight, ok3 := s.nextInt()
	maxRowWeight, ok4 := s.nextInt()
	if !ok3 || !ok4 {
		return &AlistFormatError{Path: path, Line: 2, Msg: "missing max_col_weight/max_row_weight"}
	}
	_ = maxRowWeight

	c.NCols = nCols
	c.NRows = nRows

	colWeight := make([]int, nCols)
	for j := 0; j < nCols; j++ {
		v, ok := s.nextInt()
		if !ok {
			return &AlistFormatError{Path: path, Line: 3, Msg: "truncated col_weight vector"}
		}
		colWeight[j] = v
	}
	for i := 0; i < nRows; i++ {
		if _, ok := s.nextInt(); !ok {
			return &AlistFormatError{Path: path, Line: 4, Msg: "truncated row_weight vector"}
		}
	}

	for j := 0; j < nCols; j++ {
		entries := colWeight[j]
		if zeroPad {
			entries = maxColWeight
		}
		ended := false
		for i := 0; i < entries; i++ {
			v, ok := s.nextInt()
			if !ok {
				return &AlistFormatError{Path: path, Line: 5, Msg: fmt.Sprintf("truncated column %d", j)}
			}
			if zeroPad && v == 0 {
				ended = true
			}
			if ended {
				continue
			}
			if v <= 0 || v > nRows {
				return &AlistFormatError{Path: path, Line: 5, Msg: fmt.Sprintf("column %d: row index %d out of range [1,%d]", j, v, nRows)}
			}
			c.Row = append(c.Row, v-1)
			c.Col = append(c.Col, j)
			c.NEdges++
		}
	}

	return nil
}

// WriteAlist writes the current edge list to path in alist format,
// overwriting any existing file. Column and row weights are
// recomputed from the edge list; the header always uses the n_cols
// n_rows convention.
func (c *Code) WriteAlist(path string, zeroPad bool) error {
	f, err := os.Create(path)
	if err != nil {
		return &IoFailure{Op: "create", Path: path, Err: err}
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	defer w.Flush()

	colWeight := c.colWeights()
	rowWeight := c.rowWeights()

	maxColWeight := maxInt(colWeight)
	maxRowWeight := maxInt(rowWeight)

	fmt.Fprintf(w, "%d %d\n", c.NCols, c.NRows)
	fmt.Fprintf(w, "%d %d\n", maxColWeight, maxRowWeight)
	writeIntLine(w, colWeight)
	writeIntLine(w, rowWeight)

	for j := 0; j < c.NCols; j++ {
		vals := make([]int, 0, colWeight[j])
		for e := 0; e < c.NEdges; e++ {
			if c.Col[e] == j {
				vals = append(vals, c.Row[e]+1)
			}
		}
		if zeroPad {
			for len(vals) < maxColWeight {
				vals = append(vals, 0)
			}
		}
		writeIntLine(w, vals)
	}
	for i := 0; i < c.NRows; i++ {
		vals := make([]int, 0, rowWeight[i])
		for e := 0; e < c.NEdges; e++ {
			if c.Row[e] == i {
				vals = append(vals, c.Col[e]+1)
			}
		}
		if zeroPad {
			for len(vals) < maxRowWeight {
				vals = append(vals, 0)
			}
		}
		writeIntLine(w, vals)
	}

	return nil
}

func writeIntLine(w *bufio.Writer, vals []int) {
	strs := make([]string, len(vals))
	for i, v := range vals {
		strs[i] = strconv.Itoa(v)
	}
	fmt.Fprintln(w, strings.Join(strs, " "))
}

func maxInt(vals []int) int {
	m := 0
	for _, v := range vals {
		if v > m {
			m = v
		}
	}
	return m
}
