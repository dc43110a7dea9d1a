package pngDecoder

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"slices"

	"github.com/shoccho/pnGo/pngerr"
)

type ColorType byte

const (
	Greyscale      ColorType = 0
	TrueColor      ColorType = 2
	Indexed        ColorType = 3
	GreyscaleAlpha ColorType = 4
	TrueColorAlpha ColorType = 6
)

func (c ColorType) String() string {
	switch c {
	case Greyscale:
		return "greyscale"
	case TrueColor:
		return "truecolor"
	case Indexed:
		return "indexed"
	case GreyscaleAlpha:
		return "greyscale+alpha"
	case TrueColorAlpha:
		return "truecolor+alpha"
	}
	return fmt.Sprintf("colortype(%d)", byte(c))
}

// Samples per pixel.
func (c ColorType) channels() int {
	switch c {
	case TrueColor:
		return 3
	case GreyscaleAlpha:
		return 2
	case TrueColorAlpha:
		return 4
	}
	return 1
}

var allowedBitDepths = map[ColorType][]byte{
	Greyscale:      {1, 2, 4, 8, 16},
	TrueColor:      {8, 16},
	Indexed:        {1, 2, 4, 8},
	GreyscaleAlpha: {8, 16},
	TrueColorAlpha: {8, 16},
}

const ihdrLength = 13

// IHDR is the image header. It is parsed once from the first chunk and not
// modified afterwards.
type IHDR struct {
	Width             uint32
	Height            uint32
	BitDepth          byte
	ColorType         ColorType
	CompressionMethod byte
	FilterMethod      byte
	InterlaceMethod   byte
}

// ParseIHDR decodes and validates the 13-byte IHDR payload.
func ParseIHDR(data []byte) (*IHDR, error) {
	if len(data) != ihdrLength {
		return nil, pngerr.New(pngerr.InvalidHeader, "IHDR length %d, want %d", len(data), ihdrLength)
	}
	var ihdr IHDR
	if err := binary.Read(bytes.NewReader(data), binary.BigEndian, &ihdr); err != nil {
		return nil, pngerr.New(pngerr.InvalidHeader, "%v", err)
	}
	if err := ihdr.Validate(); err != nil {
		return nil, err
	}
	return &ihdr, nil
}

// Validate checks every header field against the values PNG allows.
func (ihdr *IHDR) Validate() error {
	if ihdr.Width == 0 || ihdr.Height == 0 {
		return pngerr.New(pngerr.InvalidHeader, "image size %dx%d", ihdr.Width, ihdr.Height)
	}
	if ihdr.Width > 1<<31-1 || ihdr.Height > 1<<31-1 {
		return pngerr.New(pngerr.InvalidHeader, "image size %dx%d exceeds 2^31-1", ihdr.Width, ihdr.Height)
	}
	depths, ok := allowedBitDepths[ihdr.ColorType]
	if !ok {
		return pngerr.New(pngerr.InvalidHeader, "color type %d", byte(ihdr.ColorType))
	}
	if !slices.Contains(depths, ihdr.BitDepth) {
		return pngerr.New(pngerr.InvalidHeader, "bit depth %d not allowed for %s", ihdr.BitDepth, ihdr.ColorType)
	}
	if ihdr.CompressionMethod != 0 {
		return pngerr.New(pngerr.InvalidHeader, "compression method %d", ihdr.CompressionMethod)
	}
	if ihdr.FilterMethod != 0 {
		return pngerr.New(pngerr.InvalidHeader, "filter method %d", ihdr.FilterMethod)
	}
	if ihdr.InterlaceMethod > 1 {
		return pngerr.New(pngerr.InvalidHeader, "interlace method %d", ihdr.InterlaceMethod)
	}
	return nil
}

// Interlaced reports whether the image uses Adam7.
func (ihdr *IHDR) Interlaced() bool {
	return ihdr.InterlaceMethod == 1
}

func (ihdr *IHDR) bitsPerPixel() int {
	return int(ihdr.BitDepth) * ihdr.ColorType.channels()
}

// BytesPerPixel is the filter unit: the byte distance to the corresponding
// byte of the previous pixel, at least 1.
func (ihdr *IHDR) BytesPerPixel() int {
	return max(1, ihdr.bitsPerPixel()/8)
}

// RowBytes is the length of one unfiltered scanline, without the filter
// type byte.
func (ihdr *IHDR) RowBytes() int {
	return int((uint64(ihdr.Width)*uint64(ihdr.bitsPerPixel()) + 7) / 8)
}

// rawSize is the expected decompressed size of a non-interlaced image.
func (ihdr *IHDR) rawSize() uint64 {
	return uint64(ihdr.Height) * (1 + (uint64(ihdr.Width)*uint64(ihdr.bitsPerPixel())+7)/8)
}
