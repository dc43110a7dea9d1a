package compression

// bitWriter packs bits the way a DEFLATE encoder does, for building
// hand-made streams in tests.
type bitWriter struct {
	buf   []byte
	nbits uint
}

// bits appends the low n bits of v, least significant first.
func (w *bitWriter) bits(v uint32, n uint) *bitWriter {
	for i := uint(0); i < n; i++ {
		if w.nbits%8 == 0 {
			w.buf = append(w.buf, 0)
		}
		if v>>i&1 == 1 {
			w.buf[len(w.buf)-1] |= 1 << (w.nbits % 8)
		}
		w.nbits++
	}
	return w
}

// code appends an n-bit Huffman code, most significant bit first.
func (w *bitWriter) code(c uint32, n uint) *bitWriter {
	for i := n; i > 0; i-- {
		w.bits(c>>(i-1)&1, 1)
	}
	return w
}

// align pads to the next byte boundary with zero bits.
func (w *bitWriter) align() *bitWriter {
	w.nbits = (w.nbits + 7) &^ 7
	return w
}

func (w *bitWriter) raw(p ...byte) *bitWriter {
	w.align()
	w.buf = append(w.buf, p...)
	w.nbits += uint(len(p)) * 8
	return w
}

// fixedLit appends the fixed Huffman code of a literal/length symbol.
func (w *bitWriter) fixedLit(sym uint32) *bitWriter {
	switch {
	case sym < 144:
		return w.code(0x30+sym, 8)
	case sym < 256:
		return w.code(0x190+sym-144, 9)
	case sym < 280:
		return w.code(sym-256, 7)
	default:
		return w.code(0xC0+sym-280, 8)
	}
}

// fixedDist appends the fixed 5-bit code of a distance symbol.
func (w *bitWriter) fixedDist(sym uint32) *bitWriter {
	return w.code(sym, 5)
}

func (w *bitWriter) bytes() []byte {
	return w.buf
}

// storedBlock returns a one-block stream holding payload verbatim.
func storedBlock(payload []byte) []byte {
	n := uint16(len(payload))
	w := &bitWriter{}
	w.bits(1, 1).bits(0, 2)
	w.raw(byte(n), byte(n>>8), byte(^n), byte(^n>>8))
	w.raw(payload...)
	return w.bytes()
}
