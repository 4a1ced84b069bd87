package ldpc

// Encode produces an n-bit systematic codeword from a k-bit
// information vector: the first k bits of cw equal info, and the
// remaining r = n-k parity bits are computed from ParityGenerator so
// that H * cw == 0 (mod 2) under the column order CreateEncoder left
// the edge list in.
//
// Encode requires CreateEncoder to have already run; otherwise it
// returns *EncoderNotBuilt.
func (c *Code) Encode(info []byte) ([]byte, error) {
	if !c.HasEncoder() {
		return nil, &EncoderNotBuilt{}
	}
	k := c.K()
	if len(info) != k {
		return nil, &DimensionMismatch{Field: "info", Want: k, Got: len(info)}
	}

	cw := make([]byte, c.NCols)
	copy(cw, info)

	for i := 0; i < c.NRows; i++ {
		var parity byte
		for j := 0; j < k; j++ {
			parity ^= info[j] & c.ParityGenerator[j][i]
		}
		cw[k+i] = parity
	}
	return cw, nil
}
