package pngDecoder

import (
	"errors"
	"fmt"
)

type FilterMethod byte

const (
	NONE FilterMethod = iota
	LEFT
	UP
	AVG
	PAETH
)

var ErrInterlaceUnsupported = errors.New("png: Adam7 interlaced images are not reconstructed")

// Defilter reverses the per-scanline filters of a non-interlaced image and
// returns one slice per row, filter byte removed. data is not modified.
func Defilter(ihdr *IHDR, data []byte) ([][]byte, error) {
	if ihdr.Interlaced() {
		return nil, ErrInterlaceUnsupported
	}
	rowBytes := ihdr.RowBytes()
	stride := rowBytes + 1
	height := int(ihdr.Height)
	if uint64(len(data)) < uint64(stride)*uint64(height) {
		return nil, fmt.Errorf("png: %d bytes of image data, need %d", len(data), stride*height)
	}

	bytesPerPixel := ihdr.BytesPerPixel()
	pixels := make([]byte, rowBytes*height)
	rows := make([][]byte, height)
	var previousLine []byte

	for i := 0; i < height; i++ {
		raw := data[i*stride : (i+1)*stride]
		scanline := pixels[i*rowBytes : (i+1)*rowBytes]
		copy(scanline, raw[1:])

		switch FilterMethod(raw[0]) {
		case NONE:
		case LEFT:
			processLeftFilter(scanline, bytesPerPixel)
		case UP:
			processUpFilter(previousLine, scanline)
		case AVG:
			processAvgFilter(previousLine, scanline, bytesPerPixel)
		case PAETH:
			processPaethFilter(previousLine, scanline, bytesPerPixel)
		default:
			return nil, fmt.Errorf("png: unsupported filter type %d on row %d", raw[0], i)
		}
		rows[i] = scanline
		previousLine = scanline
	}
	return rows, nil
}

func processLeftFilter(scanline []byte, bytesPerPixel int) {
	for i := bytesPerPixel; i < len(scanline); i++ {
		scanline[i] += scanline[i-bytesPerPixel]
	}
}

func processUpFilter(previousLine []byte, scanline []byte) {
	if previousLine == nil {
		return
	}
	for i := range scanline {
		scanline[i] += previousLine[i]
	}
}

func processAvgFilter(previousLine []byte, scanline []byte, bytesPerPixel int) {
	for i := range scanline {
		var left, above int
		if i >= bytesPerPixel {
			left = int(scanline[i-bytesPerPixel])
		}
		if previousLine != nil {
			above = int(previousLine[i])
		}
		scanline[i] += byte((left + above) / 2)
	}
}

func processPaethFilter(previousLine []byte, scanline []byte, bytesPerPixel int) {
	for i := range scanline {
		var left, above, upperLeft int
		if i >= bytesPerPixel {
			left = int(scanline[i-bytesPerPixel])
		}
		if previousLine != nil {
			above = int(previousLine[i])
			if i >= bytesPerPixel {
				upperLeft = int(previousLine[i-bytesPerPixel])
			}
		}
		scanline[i] += byte(paeth(left, above, upperLeft))
	}
}

// paeth picks whichever of left, above and upper-left is closest to
// left+above-upperLeft, preferring them in that order on ties.
func paeth(left, above, upperLeft int) int {
	estimate := left + above - upperLeft
	dLeft := distance(estimate, left)
	dAbove := distance(estimate, above)
	dUpperLeft := distance(estimate, upperLeft)

	switch {
	case dLeft <= dAbove && dLeft <= dUpperLeft:
		return left
	case dAbove <= dUpperLeft:
		return above
	default:
		return upperLeft
	}
}

func distance(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
