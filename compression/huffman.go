package compression

import "github.com/shoccho/pnGo/pngerr"

// Longest code DEFLATE allows in any of its alphabets.
const maxCodeLen = 15

// HuffmanTable decodes a canonical Huffman code given only the code length
// of every symbol.
//
// counts[l] is the number of codes of length l and symbols lists the used
// symbols ordered by code value, so the codes of length l occupy a
// contiguous run of symbols starting right after the shorter ones.
type HuffmanTable struct {
	counts  [maxCodeLen + 1]uint16
	symbols []uint16
	codes   []uint16
	lengths []uint8
	maxLen  int
}

// NewHuffmanTable builds a table from per-symbol code lengths, 0 meaning
// the symbol is unused. An over-subscribed set of lengths (more codes than
// the lengths allow) is rejected; an incomplete one is accepted and any
// unassigned code fails at decode time.
func NewHuffmanTable(lengths []uint8) (*HuffmanTable, error) {
	t := &HuffmanTable{
		codes:   make([]uint16, len(lengths)),
		lengths: append([]uint8(nil), lengths...),
	}

	for sym, l := range lengths {
		if l > maxCodeLen {
			return nil, pngerr.New(pngerr.HuffmanDecodeError, "symbol %d has code length %d", sym, l)
		}
		t.counts[l]++
		if int(l) > t.maxLen {
			t.maxLen = int(l)
		}
	}
	t.counts[0] = 0

	// Smallest code of each length; left-shift of the running total of
	// shorter codes.
	var next [maxCodeLen + 2]uint32
	var offsets [maxCodeLen + 2]uint16
	code := uint32(0)
	for l := 1; l <= maxCodeLen; l++ {
		code = (code + uint32(t.counts[l-1])) << 1
		next[l] = code
		if code+uint32(t.counts[l]) > 1<<uint(l) {
			return nil, pngerr.New(pngerr.HuffmanDecodeError, "over-subscribed code lengths at length %d", l)
		}
		offsets[l+1] = offsets[l] + t.counts[l]
	}

	t.symbols = make([]uint16, offsets[maxCodeLen+1])
	for sym, l := range lengths {
		if l == 0 {
			continue
		}
		t.codes[sym] = uint16(next[l])
		next[l]++
		t.symbols[offsets[l]] = uint16(sym)
		offsets[l]++
	}
	return t, nil
}

// Code returns the code value and length assigned to sym. Length 0 means
// the symbol is unused.
func (t *HuffmanTable) Code(sym int) (code uint16, length uint8) {
	if sym < 0 || sym >= len(t.lengths) {
		return 0, 0
	}
	return t.codes[sym], t.lengths[sym]
}

// Decode reads one symbol, a bit at a time, probing the table after each
// bit.
func (t *HuffmanTable) Decode(br *BitReader) (int, error) {
	start := br.Offset()
	code := 0  // bits read so far, first bit most significant
	first := 0 // first code of the current length
	index := 0 // index in symbols of that first code
	for l := 1; l <= t.maxLen; l++ {
		bit, err := br.GetHuffman(1)
		if err != nil {
			return 0, err
		}
		code |= int(bit)
		count := int(t.counts[l])
		if code-first < count {
			return int(t.symbols[index+code-first]), nil
		}
		index += count
		first += count
		first <<= 1
		code <<= 1
	}
	return 0, pngerr.At(pngerr.HuffmanDecodeError, start, "no code matches within %d bits", t.maxLen)
}
