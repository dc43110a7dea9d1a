package compression

import (
	"fmt"

	"github.com/shoccho/pnGo/pngerr"
)

// BitReader walks a byte slice bit by bit, least significant bit of each
// byte first, the way DEFLATE packs its fields.
type BitReader struct {
	data []byte
	pos  int // in bits
	base int64
}

// NewBitReader returns a reader positioned at the first bit of data. base is
// added to reported offsets so errors point into the enclosing file.
func NewBitReader(data []byte, base int64) *BitReader {
	return &BitReader{data: data, base: base}
}

func (br *BitReader) remaining() int {
	return len(br.data)*8 - br.pos
}

// Offset returns the input offset of the byte holding the next bit.
func (br *BitReader) Offset() int64 {
	return br.base + int64(br.pos/8)
}

// Get returns the next n bits with the first bit read in the lowest
// position. n above 16 is a programming error and panics.
func (br *BitReader) Get(n uint) (uint32, error) {
	if n > 16 {
		panic(fmt.Sprintf("compression: BitReader.Get(%d) exceeds 16 bits", n))
	}
	if int(n) > br.remaining() {
		return 0, pngerr.At(pngerr.TruncatedStream, br.Offset(), "need %d bits, have %d", n, br.remaining())
	}
	var v uint32
	for i := uint(0); i < n; i++ {
		bit := uint32(br.data[br.pos>>3]>>(br.pos&7)) & 1
		v |= bit << i
		br.pos++
	}
	return v, nil
}

// GetHuffman reads n bits and returns them with the first bit read in the
// most significant position, the order Huffman codes are defined in.
func (br *BitReader) GetHuffman(n uint) (uint32, error) {
	v, err := br.Get(n)
	if err != nil {
		return 0, err
	}
	return ReverseBits(v, n), nil
}

// AlignToByte drops what is left of the current byte.
func (br *BitReader) AlignToByte() {
	br.pos = (br.pos + 7) &^ 7
}

// ReadBytes returns the next n whole bytes. The reader must be byte aligned.
func (br *BitReader) ReadBytes(n int) ([]byte, error) {
	if br.pos&7 != 0 {
		br.AlignToByte()
	}
	start := br.pos >> 3
	if n > len(br.data)-start {
		return nil, pngerr.At(pngerr.TruncatedStream, br.Offset(), "need %d bytes, have %d", n, len(br.data)-start)
	}
	br.pos += n * 8
	return br.data[start : start+n], nil
}

// ReverseBits reverses the low n bits of v.
func ReverseBits(v uint32, n uint) uint32 {
	var r uint32
	for i := uint(0); i < n; i++ {
		r = r<<1 | v&1
		v >>= 1
	}
	return r
}
