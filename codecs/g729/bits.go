package g729

// bitReader reads MSB-first fields from a frame.
type bitReader struct {
	data []byte
	pos  int
}

func (r *bitReader) read(n int) int {
	v := 0
	for i := 0; i < n; i++ {
		p := r.pos + i
		v = v<<1 | int(r.data[p>>3]>>(7-uint(p&7)))&1
	}
	r.pos += n
	return v
}

type subframeParams struct {
	lag    int
	code   int
	signs  int
	gainA  int
	gainB  int
	parity int
}

type frameParams struct {
	mode       int
	l1, l2, l3 int
	sub        [2]subframeParams
}

// parseFrame unpacks the 80 bit frame:
// L0 1, L1 7, L2 5, L3 5, P1 8, P0 1, C1 13, S1 4, GA1 3, GB1 4,
// P2 5, C2 13, S2 4, GA2 3, GB2 4.
func parseFrame(frame []byte) frameParams {
	r := &bitReader{data: frame}
	var p frameParams
	p.mode = r.read(1)
	p.l1 = r.read(7)
	p.l2 = r.read(5)
	p.l3 = r.read(5)

	p.sub[0].lag = r.read(8)
	p.sub[0].parity = r.read(1)
	p.sub[0].code = r.read(13)
	p.sub[0].signs = r.read(4)
	p.sub[0].gainA = r.read(3)
	p.sub[0].gainB = r.read(4)

	p.sub[1].lag = r.read(5)
	p.sub[1].code = r.read(13)
	p.sub[1].signs = r.read(4)
	p.sub[1].gainA = r.read(3)
	p.sub[1].gainB = r.read(4)
	return p
}

// parityOK checks P0 against the six most significant bits of P1.
func parityOK(lag, parity int) bool {
	sum := 1
	for b := lag >> 2; b != 0; b >>= 1 {
		sum += b & 1
	}
	return sum&1 == parity
}
