package utils

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"image"
	"io"
	"os"

	"golang.org/x/image/bmp"
)

// BytesToLength reads a big-endian uint32 from the first 4 bytes of data.
func BytesToLength(data []byte) uint32 {
	return binary.BigEndian.Uint32(data)
}

// WritePPM writes img as a binary (P6) PPM, composited onto black.
func WritePPM(w io.Writer, img image.Image) error {
	b := img.Bounds()
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "P6\n%d %d\n255\n", b.Dx(), b.Dy()); err != nil {
		return err
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			if _, err := bw.Write([]byte{byte(r >> 8), byte(g >> 8), byte(bl >> 8)}); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// WriteBMP writes img as a BMP.
func WriteBMP(w io.Writer, img image.Image) error {
	return bmp.Encode(w, img)
}

// CreateImageFile writes img to name in the given format, "ppm" or "bmp".
func CreateImageFile(name, format string, img image.Image) error {
	var write func(io.Writer, image.Image) error
	switch format {
	case "ppm":
		write = WritePPM
	case "bmp":
		write = WriteBMP
	default:
		return fmt.Errorf("unknown image format %q", format)
	}

	file, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := write(file, img); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
