package compression

import (
	"go.uber.org/zap"

	"github.com/shoccho/pnGo/pngerr"
)

// BlockType is the BTYPE field of a DEFLATE block header.
type BlockType uint8

const (
	BlockStored BlockType = iota
	BlockFixed
	BlockDynamic
	BlockReserved
)

func (b BlockType) String() string {
	switch b {
	case BlockStored:
		return "stored"
	case BlockFixed:
		return "fixed"
	case BlockDynamic:
		return "dynamic"
	}
	return "reserved"
}

// BlockStats counts the blocks of each type a stream was made of.
type BlockStats struct {
	Stored  int
	Fixed   int
	Dynamic int
}

// Total returns the number of blocks decoded.
func (s BlockStats) Total() int {
	return s.Stored + s.Fixed + s.Dynamic
}

// inflater holds the state of one decode pass. It is never shared.
type inflater struct {
	br     *BitReader
	out    []byte
	stats  BlockStats
	logger *zap.Logger
}

// Inflate decodes a raw DEFLATE stream. opts.Base is the input offset of
// data[0], used in error messages. Bytes after the final block are ignored.
func Inflate(data []byte, opts Options) ([]byte, BlockStats, error) {
	f := &inflater{
		br:     NewBitReader(data, opts.Base),
		out:    make([]byte, 0, opts.SizeHint),
		logger: opts.logger(),
	}
	if err := f.run(); err != nil {
		return nil, f.stats, err
	}
	return f.out, f.stats, nil
}

func (f *inflater) run() error {
	for {
		final, err := f.br.Get(1)
		if err != nil {
			return err
		}
		btype, err := f.br.Get(2)
		if err != nil {
			return err
		}
		before := len(f.out)

		switch BlockType(btype) {
		case BlockStored:
			f.stats.Stored++
			err = f.storedBlock()
		case BlockFixed:
			f.stats.Fixed++
			err = f.decodeSymbols(fixedLitLenTable, fixedDistTable)
		case BlockDynamic:
			f.stats.Dynamic++
			err = f.dynamicBlock()
		default:
			err = pngerr.At(pngerr.ReservedBlockType, f.br.Offset(), "BTYPE=11")
		}
		if err != nil {
			return err
		}

		f.logger.Debug("deflate block",
			zap.Stringer("type", BlockType(btype)),
			zap.Bool("final", final == 1),
			zap.Int("bytes", len(f.out)-before))

		if final == 1 {
			return nil
		}
	}
}

func (f *inflater) storedBlock() error {
	f.br.AlignToByte()
	hdr, err := f.br.ReadBytes(4)
	if err != nil {
		return err
	}
	n := uint16(hdr[0]) | uint16(hdr[1])<<8
	nn := uint16(hdr[2]) | uint16(hdr[3])<<8
	if nn != ^n {
		return pngerr.At(pngerr.StoredBlockLengthMismatch, f.br.Offset()-4, "LEN=%#04x NLEN=%#04x", n, nn)
	}
	raw, err := f.br.ReadBytes(int(n))
	if err != nil {
		return err
	}
	f.out = append(f.out, raw...)
	return nil
}

func (f *inflater) dynamicBlock() error {
	hlit, err := f.br.Get(5)
	if err != nil {
		return err
	}
	hdist, err := f.br.Get(5)
	if err != nil {
		return err
	}
	hclen, err := f.br.Get(4)
	if err != nil {
		return err
	}
	nlit := int(hlit) + 257
	ndist := int(hdist) + 1
	nclen := int(hclen) + 4
	if nlit > numLitLen || ndist > numDist {
		return pngerr.At(pngerr.HuffmanDecodeError, f.br.Offset(), "HLIT=%d HDIST=%d out of range", nlit, ndist)
	}

	var clens [numCodeLen]uint8
	for i := 0; i < nclen; i++ {
		v, err := f.br.Get(3)
		if err != nil {
			return err
		}
		clens[codeLengthOrder[i]] = uint8(v)
	}
	clTable, err := NewHuffmanTable(clens[:])
	if err != nil {
		return err
	}

	lengths := make([]uint8, nlit+ndist)
	for i := 0; i < len(lengths); {
		start := f.br.Offset()
		sym, err := clTable.Decode(f.br)
		if err != nil {
			return err
		}
		if sym < 16 {
			lengths[i] = uint8(sym)
			i++
			continue
		}

		var value uint8
		var repeat uint32
		switch sym {
		case 16:
			if i == 0 {
				return pngerr.At(pngerr.HuffmanDecodeError, start, "repeat with no previous length")
			}
			value = lengths[i-1]
			repeat, err = f.br.Get(2)
			repeat += 3
		case 17:
			repeat, err = f.br.Get(3)
			repeat += 3
		default:
			repeat, err = f.br.Get(7)
			repeat += 11
		}
		if err != nil {
			return err
		}
		if i+int(repeat) > len(lengths) {
			return pngerr.At(pngerr.HuffmanDecodeError, start, "repeat of %d overruns %d code lengths", repeat, len(lengths))
		}
		for ; repeat > 0; repeat-- {
			lengths[i] = value
			i++
		}
	}

	if lengths[endOfBlock] == 0 {
		return pngerr.At(pngerr.HuffmanDecodeError, f.br.Offset(), "no code for end-of-block")
	}

	litTable, err := NewHuffmanTable(lengths[:nlit])
	if err != nil {
		return err
	}
	distTable, err := NewHuffmanTable(lengths[nlit:])
	if err != nil {
		return err
	}
	return f.decodeSymbols(litTable, distTable)
}

// decodeSymbols runs the literal/length loop shared by fixed and dynamic
// blocks until end-of-block.
func (f *inflater) decodeSymbols(lit, dist *HuffmanTable) error {
	for {
		start := f.br.Offset()
		sym, err := lit.Decode(f.br)
		if err != nil {
			return err
		}
		switch {
		case sym < endOfBlock:
			f.out = append(f.out, byte(sym))
			continue
		case sym == endOfBlock:
			return nil
		case sym > 285:
			return pngerr.At(pngerr.HuffmanDecodeError, start, "invalid length symbol %d", sym)
		}

		i := sym - 257
		extra, err := f.br.Get(uint(lengthExtra[i]))
		if err != nil {
			return err
		}
		length := int(lengthBase[i]) + int(extra)

		dsym, err := dist.Decode(f.br)
		if err != nil {
			return err
		}
		if dsym >= numDist {
			return pngerr.At(pngerr.HuffmanDecodeError, start, "invalid distance symbol %d", dsym)
		}
		extra, err = f.br.Get(uint(distExtra[dsym]))
		if err != nil {
			return err
		}
		distance := int(distBase[dsym]) + int(extra)

		if err := f.copyBack(distance, length, start); err != nil {
			return err
		}
	}
}

// copyBack appends length bytes, each taken distance bytes behind the
// current end of the output. When length > distance the copy reads bytes it
// wrote itself, so it has to go one byte at a time.
func (f *inflater) copyBack(distance, length int, offset int64) error {
	out, ok := copyBack(f.out, distance, length)
	if !ok {
		return pngerr.At(pngerr.InvalidBackReference, offset, "distance %d with %d bytes produced", distance, len(f.out))
	}
	f.out = out
	return nil
}

func copyBack(out []byte, distance, length int) ([]byte, bool) {
	if distance <= 0 || distance > maxDistance || distance > len(out) {
		return out, false
	}
	start := len(out) - distance
	for i := 0; i < length; i++ {
		out = append(out, out[start+i])
	}
	return out, true
}
