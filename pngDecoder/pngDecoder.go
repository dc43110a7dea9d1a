package pngDecoder

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/shoccho/pnGo/compression"
	"github.com/shoccho/pnGo/pngerr"
)

// Largest output buffer preallocated from header dimensions. Bigger images
// still decode, the buffer just grows as it goes.
const maxSizeHint = 64 << 20

type Options struct {
	// StrictAdler32 verifies the zlib trailer of the IDAT stream.
	StrictAdler32 bool
	Logger        *zap.Logger
}

type PngDecoder struct {
	data   []uint8
	idx    uint
	opts   Options
	logger *zap.Logger
}

// NewDecoder checks the signature and returns a decoder positioned at the
// first chunk. data must hold the whole file.
func NewDecoder(data []byte, opts Options) (*PngDecoder, error) {
	if !isPNG(data) {
		return nil, pngerr.At(pngerr.NotAPngFile, 0, "signature mismatch")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PngDecoder{
		data:   data,
		idx:    uint(len(pngHeader)),
		opts:   opts,
		logger: logger,
	}, nil
}

// Decode decodes a complete PNG held in memory.
func Decode(data []byte, opts Options) (*Image, error) {
	pd, err := NewDecoder(data, opts)
	if err != nil {
		return nil, err
	}
	return pd.Decode()
}

// Open reads and decodes the file at path.
func Open(path string, opts Options) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	img, err := Decode(data, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// Decode walks the chunks, checks every CRC, and inflates the IDAT stream.
// It returns the header with the decompressed, still filtered, scanlines.
func (pd *PngDecoder) Decode() (*Image, error) {
	img := &Image{}

	ihdr, err := pd.readHeader(img)
	if err != nil {
		return nil, err
	}
	img.Header = *ihdr
	pd.logger.Debug("header",
		zap.Uint32("width", ihdr.Width),
		zap.Uint32("height", ihdr.Height),
		zap.Uint8("bit_depth", ihdr.BitDepth),
		zap.Stringer("color_type", ihdr.ColorType),
		zap.Uint8("interlace", ihdr.InterlaceMethod))

	var compressedData []byte
	seenIDAT, seenIEND := false, false

	for !seenIEND && pd.idx < uint(len(pd.data)) {
		chunk, err := pd.nextChunk()
		if err != nil {
			return nil, err
		}
		if err := chunk.verify(); err != nil {
			return nil, err
		}
		img.Chunks = append(img.Chunks, chunk.info())
		pd.logger.Debug("chunk",
			zap.Stringer("type", chunk.Type()),
			zap.Uint32("length", chunk.length),
			zap.Int64("offset", chunk.offset))

		switch chunk.Type() {
		case IDATChunk:
			seenIDAT = true
			compressedData = append(compressedData, chunk.data...)
		case IENDChunk:
			if chunk.length != 0 {
				return nil, pngerr.At(pngerr.InvalidChunk, chunk.offset, "IEND carries %d bytes", chunk.length)
			}
			seenIEND = true
		case IHDRChunk:
			return nil, pngerr.At(pngerr.InvalidChunk, chunk.offset, "second IHDR chunk")
		case PLTEChunk:
			img.Palette = chunk.data
		case TRNSChunk:
			img.Transparency = chunk.data
		default:
			if chunk.Type().IsCritical() && !chunk.Type().Known() {
				pd.logger.Warn("skipping unknown critical chunk", zap.Stringer("type", chunk.Type()))
			}
		}
	}

	if !seenIDAT {
		return nil, pngerr.New(pngerr.MissingIDAT, "")
	}
	if !seenIEND {
		return nil, pngerr.At(pngerr.MissingIEND, int64(pd.idx), "input ended after %d chunks", len(img.Chunks))
	}
	if rest := uint(len(pd.data)) - pd.idx; rest > 0 {
		return nil, pngerr.At(pngerr.TrailingData, int64(pd.idx), "%d bytes after IEND", rest)
	}

	res, err := compression.InflateData(compressedData, compression.Options{
		VerifyAdler32: pd.opts.StrictAdler32,
		SizeHint:      sizeHint(ihdr),
		Logger:        pd.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("IDAT stream: %w", err)
	}
	img.Data = res.Data
	img.Blocks = res.Blocks
	pd.logger.Debug("decoded",
		zap.Int("compressed", len(compressedData)),
		zap.Int("decompressed", len(res.Data)),
		zap.Int("blocks", res.Blocks.Total()))
	return img, nil
}

func (pd *PngDecoder) readHeader(img *Image) (*IHDR, error) {
	chunk, err := pd.nextChunk()
	if err != nil {
		return nil, err
	}
	if chunk.Type() != IHDRChunk {
		return nil, pngerr.At(pngerr.InvalidHeader, chunk.offset, "first chunk is %s", chunk.Type())
	}
	if chunk.length != ihdrLength {
		return nil, pngerr.At(pngerr.InvalidHeader, chunk.offset, "IHDR length %d, want %d", chunk.length, ihdrLength)
	}
	if err := chunk.verify(); err != nil {
		return nil, err
	}
	img.Chunks = append(img.Chunks, chunk.info())
	return ParseIHDR(chunk.data)
}

func sizeHint(ihdr *IHDR) int {
	if ihdr.Interlaced() {
		return 0
	}
	return int(min(ihdr.rawSize(), maxSizeHint))
}
