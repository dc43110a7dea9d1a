package compression

import (
	"encoding/binary"
	"hash/adler32"

	"github.com/shoccho/pnGo/pngerr"
)

const (
	zlibDeflate   = 8
	zlibHeaderLen = 2
	adler32Len    = 4
)

// ZlibHeader is the two-byte header in front of a zlib stream.
type ZlibHeader struct {
	CMF byte
	FLG byte
}

// Method returns the compression method, CM.
func (h ZlibHeader) Method() byte {
	return h.CMF & 0x0F
}

// WindowSize returns the LZ77 window size implied by CINFO.
func (h ZlibHeader) WindowSize() int {
	return 1 << (uint(h.CMF>>4) + 8)
}

// HasDictionary reports whether FDICT is set.
func (h ZlibHeader) HasDictionary() bool {
	return h.FLG&0x20 != 0
}

// Level returns FLEVEL, the compressor's speed/size hint.
func (h ZlibHeader) Level() byte {
	return h.FLG >> 6
}

// ParseZlibHeader validates the first two bytes of data. base is the input
// offset of data[0].
func ParseZlibHeader(data []byte, base int64) (ZlibHeader, error) {
	if len(data) < 2 {
		return ZlibHeader{}, pngerr.At(pngerr.TruncatedStream, base, "zlib header needs 2 bytes, have %d", len(data))
	}
	h := ZlibHeader{CMF: data[0], FLG: data[1]}

	switch {
	case (uint16(h.CMF)<<8|uint16(h.FLG))%31 != 0:
		return h, pngerr.At(pngerr.UnsupportedCompression, base, "header check failed for CMF=%#02x FLG=%#02x", h.CMF, h.FLG)
	case h.Method() != zlibDeflate:
		return h, pngerr.At(pngerr.UnsupportedCompression, base, "compression method %d", h.Method())
	case h.CMF>>4 > 7:
		return h, pngerr.At(pngerr.UnsupportedCompression, base, "window size %d", h.WindowSize())
	case h.HasDictionary():
		return h, pngerr.At(pngerr.UnsupportedCompression, base, "preset dictionary")
	}
	return h, nil
}

// verifyAdler32 checks the big-endian Adler-32 trailer, found at input
// offset at, against the decompressed bytes.
func verifyAdler32(trailer []byte, at int64, out []byte) error {
	want := binary.BigEndian.Uint32(trailer)
	if got := adler32.Checksum(out); got != want {
		return pngerr.At(pngerr.ChecksumMismatch, at, "adler-32 %#08x, trailer says %#08x", got, want)
	}
	return nil
}
