package pngDecoder

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"testing"

	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/require"
)

// pngBuilder assembles PNG files chunk by chunk for tests.
type pngBuilder struct {
	buf bytes.Buffer
}

func newPNG() *pngBuilder {
	b := &pngBuilder{}
	b.buf.WriteString(pngHeader)
	return b
}

func (b *pngBuilder) chunk(typ string, data []byte) *pngBuilder {
	var n [4]byte
	binary.BigEndian.PutUint32(n[:], uint32(len(data)))
	b.buf.Write(n[:])
	b.buf.WriteString(typ)
	b.buf.Write(data)
	crc := crc32.NewIEEE()
	crc.Write([]byte(typ))
	crc.Write(data)
	binary.BigEndian.PutUint32(n[:], crc.Sum32())
	b.buf.Write(n[:])
	return b
}

func (b *pngBuilder) ihdr(width, height uint32, depth byte, ct ColorType, interlace byte) *pngBuilder {
	data := make([]byte, 13)
	binary.BigEndian.PutUint32(data[0:], width)
	binary.BigEndian.PutUint32(data[4:], height)
	data[8] = depth
	data[9] = byte(ct)
	data[12] = interlace
	return b.chunk("IHDR", data)
}

func (b *pngBuilder) idat(data []byte) *pngBuilder {
	return b.chunk("IDAT", data)
}

func (b *pngBuilder) iend() *pngBuilder {
	return b.chunk("IEND", nil)
}

func (b *pngBuilder) bytes() []byte {
	return b.buf.Bytes()
}

func zlibCompress(t *testing.T, raw []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	require.NoError(t, err)
	_, err = zw.Write(raw)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// greyPixel is a 1x1 8-bit greyscale image with a single 0x7F sample.
func greyPixel(t *testing.T) []byte {
	return newPNG().
		ihdr(1, 1, 8, Greyscale, 0).
		idat(zlibCompress(t, []byte{0, 0x7F})).
		iend().
		bytes()
}
