package pngDecoder

import (
	"fmt"
	"image"
	"image/color"

	"github.com/shoccho/pnGo/compression"
)

// Image is the result of a decode: the validated header and the
// decompressed byte stream, each scanline still prefixed by its filter
// type. Palette and Transparency hold the raw PLTE and tRNS payloads when
// the file has them.
type Image struct {
	Header       IHDR
	Data         []byte
	Palette      []byte
	Transparency []byte
	Chunks       []ChunkInfo
	Blocks       compression.BlockStats
}

// NRGBA reconstructs the pixels. 16-bit samples keep their high byte and
// sub-byte greyscale is scaled to the full 0..255 range.
func (img *Image) NRGBA() (*image.NRGBA, error) {
	rows, err := Defilter(&img.Header, img.Data)
	if err != nil {
		return nil, err
	}
	h := &img.Header
	if h.ColorType == Indexed && len(img.Palette) == 0 {
		return nil, fmt.Errorf("png: indexed image without PLTE chunk")
	}

	width := int(h.Width)
	out := image.NewNRGBA(image.Rect(0, 0, width, int(h.Height)))
	channels := h.ColorType.channels()
	for y, row := range rows {
		for x := 0; x < width; x++ {
			var s [4]uint16
			for c := 0; c < channels; c++ {
				s[c] = sample(row, x*channels+c, h.BitDepth)
			}
			px, err := img.pixel(s)
			if err != nil {
				return nil, fmt.Errorf("png: pixel (%d,%d): %w", x, y, err)
			}
			out.SetNRGBA(x, y, px)
		}
	}
	return out, nil
}

func (img *Image) pixel(s [4]uint16) (color.NRGBA, error) {
	depth := img.Header.BitDepth
	trns := img.Transparency

	switch img.Header.ColorType {
	case Greyscale:
		v := scale(s[0], depth)
		a := uint8(0xFF)
		if len(trns) >= 2 && uint16(trns[0])<<8|uint16(trns[1]) == s[0] {
			a = 0
		}
		return color.NRGBA{v, v, v, a}, nil
	case TrueColor:
		a := uint8(0xFF)
		if len(trns) >= 6 &&
			uint16(trns[0])<<8|uint16(trns[1]) == s[0] &&
			uint16(trns[2])<<8|uint16(trns[3]) == s[1] &&
			uint16(trns[4])<<8|uint16(trns[5]) == s[2] {
			a = 0
		}
		return color.NRGBA{scale(s[0], depth), scale(s[1], depth), scale(s[2], depth), a}, nil
	case Indexed:
		i := int(s[0])
		if 3*i+2 >= len(img.Palette) {
			return color.NRGBA{}, fmt.Errorf("palette index %d out of range", i)
		}
		a := uint8(0xFF)
		if i < len(trns) {
			a = trns[i]
		}
		return color.NRGBA{img.Palette[3*i], img.Palette[3*i+1], img.Palette[3*i+2], a}, nil
	case GreyscaleAlpha:
		v := scale(s[0], depth)
		return color.NRGBA{v, v, v, scale(s[1], depth)}, nil
	default:
		return color.NRGBA{scale(s[0], depth), scale(s[1], depth), scale(s[2], depth), scale(s[3], depth)}, nil
	}
}

// sample returns the i-th sample of a row at the given bit depth. Samples
// narrower than a byte are packed most significant bits first.
func sample(row []byte, i int, depth byte) uint16 {
	switch depth {
	case 16:
		return uint16(row[2*i])<<8 | uint16(row[2*i+1])
	case 8:
		return uint16(row[i])
	}
	bit := i * int(depth)
	shift := 8 - int(depth) - bit%8
	return uint16(row[bit/8]>>shift) & (1<<depth - 1)
}

func scale(v uint16, depth byte) uint8 {
	switch depth {
	case 16:
		return uint8(v >> 8)
	case 8:
		return uint8(v)
	}
	return uint8(uint32(v) * 255 / (1<<depth - 1))
}
