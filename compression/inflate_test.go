package compression

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"

	"github.com/klauspost/compress/flate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoccho/pnGo/pngerr"
)

func inflate(t *testing.T, data []byte) ([]byte, BlockStats, error) {
	t.Helper()
	out, stats, err := Inflate(data, Options{})
	return out, stats, err
}

func TestInflateStored(t *testing.T) {
	t.Run("five bytes", func(t *testing.T) {
		payload := []byte{0x00, 0x7F, 0x80, 0xFE, 0xFF}
		out, stats, err := inflate(t, storedBlock(payload))
		require.NoError(t, err)
		assert.Equal(t, payload, out)
		assert.Equal(t, 1, stats.Stored)
	})
	t.Run("empty", func(t *testing.T) {
		out, _, err := inflate(t, storedBlock(nil))
		require.NoError(t, err)
		assert.Empty(t, out)
	})
	t.Run("NLEN mismatch", func(t *testing.T) {
		w := &bitWriter{}
		w.bits(1, 1).bits(0, 2).raw(5, 0, 0xFA, 0xFE).raw(1, 2, 3, 4, 5)
		_, _, err := inflate(t, w.bytes())
		assert.Equal(t, pngerr.StoredBlockLengthMismatch, pngerr.KindOf(err))
	})
	t.Run("payload cut short", func(t *testing.T) {
		data := storedBlock([]byte("hello"))
		_, _, err := inflate(t, data[:len(data)-2])
		assert.Equal(t, pngerr.TruncatedStream, pngerr.KindOf(err))
	})
}

func TestInflateFixed(t *testing.T) {
	t.Run("literals", func(t *testing.T) {
		w := &bitWriter{}
		w.bits(1, 1).bits(1, 2)
		for _, c := range []byte("aaaa") {
			w.fixedLit(uint32(c))
		}
		w.fixedLit(endOfBlock)

		out, stats, err := inflate(t, w.bytes())
		require.NoError(t, err)
		assert.Equal(t, "aaaa", string(out))
		assert.Equal(t, 1, stats.Fixed)
	})
	t.Run("overlapping back-reference", func(t *testing.T) {
		w := &bitWriter{}
		w.bits(1, 1).bits(1, 2)
		w.fixedLit('x').fixedLit('A')
		w.fixedLit(259).fixedDist(0) // length 5, distance 1
		w.fixedLit(endOfBlock)

		out, _, err := inflate(t, w.bytes())
		require.NoError(t, err)
		assert.Equal(t, "xAAAAAA", string(out))
	})
	t.Run("length and distance extra bits", func(t *testing.T) {
		w := &bitWriter{}
		w.bits(1, 1).bits(1, 2)
		for _, c := range []byte("abcdef") {
			w.fixedLit(uint32(c))
		}
		// Length symbol 266 is base 13 with 1 extra bit; distance symbol 4
		// is base 5 with 1 extra bit. 13+1 bytes from 5+1 back.
		w.fixedLit(266).bits(1, 1)
		w.fixedDist(4).bits(1, 1)
		w.fixedLit(endOfBlock)

		out, _, err := inflate(t, w.bytes())
		require.NoError(t, err)
		assert.Equal(t, "abcdef"+"abcdefabcdefab", string(out))
	})
	t.Run("distance past the start of output", func(t *testing.T) {
		w := &bitWriter{}
		w.bits(1, 1).bits(1, 2)
		w.fixedLit('A')
		w.fixedLit(257).fixedDist(1) // length 3, distance 2
		w.fixedLit(endOfBlock)

		_, _, err := inflate(t, w.bytes())
		assert.Equal(t, pngerr.InvalidBackReference, pngerr.KindOf(err))
	})
	t.Run("invalid length symbol", func(t *testing.T) {
		w := &bitWriter{}
		w.bits(1, 1).bits(1, 2).fixedLit(286)
		_, _, err := inflate(t, w.bytes())
		assert.Equal(t, pngerr.HuffmanDecodeError, pngerr.KindOf(err))
	})
	t.Run("invalid distance symbol", func(t *testing.T) {
		w := &bitWriter{}
		w.bits(1, 1).bits(1, 2).fixedLit('A').fixedLit(257).fixedDist(30)
		_, _, err := inflate(t, w.bytes())
		assert.Equal(t, pngerr.HuffmanDecodeError, pngerr.KindOf(err))
	})
	t.Run("missing end of block", func(t *testing.T) {
		w := &bitWriter{}
		w.bits(1, 1).bits(1, 2).fixedLit('A')
		_, _, err := inflate(t, w.bytes())
		assert.Equal(t, pngerr.TruncatedStream, pngerr.KindOf(err))
	})
}

func TestInflateReservedBlockType(t *testing.T) {
	w := (&bitWriter{}).bits(1, 1).bits(3, 2)
	_, _, err := inflate(t, w.bytes())
	assert.Equal(t, pngerr.ReservedBlockType, pngerr.KindOf(err))
}

func TestInflateMultipleBlocks(t *testing.T) {
	w := &bitWriter{}
	// Non-final stored block, then a final fixed block that refers back
	// into the stored one.
	w.bits(0, 1).bits(0, 2).raw(3, 0, 0xFC, 0xFF).raw('a', 'b', 'c')
	w.bits(1, 1).bits(1, 2)
	w.fixedLit(258).fixedDist(2) // length 4, distance 3
	w.fixedLit(endOfBlock)

	out, stats, err := inflate(t, w.bytes())
	require.NoError(t, err)
	assert.Equal(t, "abcabca", string(out))
	assert.Equal(t, BlockStats{Stored: 1, Fixed: 1}, stats)
	assert.Equal(t, 2, stats.Total())
}

func TestInflateDynamic(t *testing.T) {
	t.Run("hand-built", func(t *testing.T) {
		// Literal/length alphabet: 'a' and 256 get 1-bit codes.
		// Distance alphabet: one unused entry.
		w := &bitWriter{}
		w.bits(1, 1).bits(2, 2)
		w.bits(0, 5)  // HLIT = 257
		w.bits(0, 5)  // HDIST = 1
		w.bits(14, 4) // HCLEN = 18, up to code-length symbol 1

		// Code-length code: symbols 0 and 1 length 2, 18 length 1.
		clens := map[uint8]uint32{18: 1, 0: 2, 1: 2}
		for i := 0; i < 18; i++ {
			w.bits(clens[codeLengthOrder[i]], 3)
		}
		// Canonical codes: 18 -> 0, 0 -> 10, 1 -> 11.
		w.code(0, 1).bits(97-11, 7) // symbols 0..96 unused
		w.code(0b11, 2)             // 'a' has length 1
		w.code(0, 1).bits(138-11, 7)
		w.code(0, 1).bits(20-11, 7) // symbols 98..255 unused
		w.code(0b11, 2)             // end-of-block has length 1
		w.code(0b10, 2)             // the only distance code is unused

		// 'a' -> 0, end-of-block -> 1.
		w.code(0, 1).code(0, 1).code(0, 1).code(1, 1)

		out, stats, err := inflate(t, w.bytes())
		require.NoError(t, err)
		assert.Equal(t, "aaa", string(out))
		assert.Equal(t, 1, stats.Dynamic)
	})

	t.Run("round-trip against flate encoder", func(t *testing.T) {
		rng := rand.New(rand.NewSource(7))
		inputs := map[string][]byte{
			"text":     []byte(strings.Repeat("the quick brown fox jumps over the lazy dog. ", 200)),
			"zeros":    make([]byte, 70000),
			"random":   randomBytes(rng, 40000),
			"scanline": scanlines(rng, 64, 48, 4),
		}
		levels := map[string]int{
			"stored":  flate.NoCompression,
			"huffman": flate.HuffmanOnly,
			"speed":   flate.BestSpeed,
			"best":    flate.BestCompression,
		}
		for name, input := range inputs {
			for levelName, level := range levels {
				t.Run(name+"/"+levelName, func(t *testing.T) {
					var buf bytes.Buffer
					fw, err := flate.NewWriter(&buf, level)
					require.NoError(t, err)
					_, err = fw.Write(input)
					require.NoError(t, err)
					require.NoError(t, fw.Close())

					out, stats, err := inflate(t, buf.Bytes())
					require.NoError(t, err)
					assert.True(t, bytes.Equal(input, out), "output differs")
					assert.Greater(t, stats.Total(), 0)
				})
			}
		}
	})
}

func TestDynamicBlockErrors(t *testing.T) {
	header := func(hlit, hdist, hclen uint32) *bitWriter {
		w := &bitWriter{}
		return w.bits(1, 1).bits(2, 2).bits(hlit, 5).bits(hdist, 5).bits(hclen, 4)
	}

	t.Run("too many literal codes", func(t *testing.T) {
		w := header(30, 0, 0)
		_, _, err := inflate(t, w.bytes())
		assert.Equal(t, pngerr.HuffmanDecodeError, pngerr.KindOf(err))
	})
	t.Run("repeat with no previous length", func(t *testing.T) {
		// HCLEN = 4 covers symbols 16, 17, 18, 0. Give 16 and 0 one-bit
		// codes: 0 -> "0", 16 -> "1".
		w := header(0, 0, 0)
		w.bits(1, 3).bits(0, 3).bits(0, 3).bits(1, 3)
		w.code(1, 1).bits(0, 2)
		_, _, err := inflate(t, w.bytes())
		assert.Equal(t, pngerr.HuffmanDecodeError, pngerr.KindOf(err))
	})
	t.Run("repeat overruns the lengths", func(t *testing.T) {
		// 18 -> "1", 0 -> "0"; 138 zeros twice is more than 257+1.
		w := header(0, 0, 0)
		w.bits(0, 3).bits(0, 3).bits(1, 3).bits(1, 3)
		w.code(1, 1).bits(127, 7)
		w.code(1, 1).bits(127, 7)
		_, _, err := inflate(t, w.bytes())
		assert.Equal(t, pngerr.HuffmanDecodeError, pngerr.KindOf(err))
	})
	t.Run("no end-of-block code", func(t *testing.T) {
		// All 258 lengths zero: 138 + 120 zeros.
		w := header(0, 0, 0)
		w.bits(0, 3).bits(0, 3).bits(1, 3).bits(1, 3)
		w.code(1, 1).bits(127, 7)
		w.code(1, 1).bits(109, 7)
		_, _, err := inflate(t, w.bytes())
		assert.Equal(t, pngerr.HuffmanDecodeError, pngerr.KindOf(err))
	})
	t.Run("over-subscribed code-length code", func(t *testing.T) {
		w := header(0, 0, 0)
		w.bits(1, 3).bits(1, 3).bits(1, 3).bits(1, 3)
		_, _, err := inflate(t, w.bytes())
		assert.Equal(t, pngerr.HuffmanDecodeError, pngerr.KindOf(err))
	})
}

func TestCopyBack(t *testing.T) {
	t.Run("distance one repeats the last byte", func(t *testing.T) {
		out, ok := copyBack([]byte("xyA"), 1, 5)
		require.True(t, ok)
		assert.Equal(t, "xyAAAAAA", string(out))
	})
	t.Run("length longer than distance", func(t *testing.T) {
		out, ok := copyBack([]byte("ab"), 2, 7)
		require.True(t, ok)
		assert.Equal(t, "ababababa", string(out))
	})
	t.Run("distance beyond output", func(t *testing.T) {
		in := []byte("abc")
		out, ok := copyBack(in, 4, 1)
		assert.False(t, ok)
		assert.Equal(t, in, out)
	})
	t.Run("distance beyond window", func(t *testing.T) {
		_, ok := copyBack(make([]byte, maxDistance+10), maxDistance+1, 3)
		assert.False(t, ok)

		_, ok = copyBack(make([]byte, maxDistance+10), maxDistance, 3)
		assert.True(t, ok)
	})
}

func randomBytes(rng *rand.Rand, n int) []byte {
	p := make([]byte, n)
	rng.Read(p)
	return p
}

// scanlines mimics filtered PNG rows: a filter byte then mostly smooth
// pixel data.
func scanlines(rng *rand.Rand, width, height, bpp int) []byte {
	var p []byte
	for y := 0; y < height; y++ {
		p = append(p, byte(y%5))
		for x := 0; x < width*bpp; x++ {
			p = append(p, byte(x/bpp+y)+byte(rng.Intn(3)))
		}
	}
	return p
}
