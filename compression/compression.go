// Package compression inflates the zlib-wrapped DEFLATE stream carried by
// PNG IDAT chunks.
package compression

import (
	"go.uber.org/zap"

	"github.com/shoccho/pnGo/pngerr"
)

// Options tunes a single InflateData call.
type Options struct {
	// VerifyAdler32 requires the zlib trailer and checks it against the
	// output. Off by default.
	VerifyAdler32 bool
	// SizeHint preallocates the output buffer.
	SizeHint int
	// Base is the offset of the compressed data within the enclosing file,
	// used only to make error offsets meaningful.
	Base int64
	// Logger receives debug events; nil disables logging.
	Logger *zap.Logger
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// Result is the output of InflateData.
type Result struct {
	Header ZlibHeader
	Data   []byte
	Blocks BlockStats
}

// InflateData decompresses a complete zlib stream.
func InflateData(compressedData []byte, opts Options) (*Result, error) {
	logger := opts.logger()

	header, err := ParseZlibHeader(compressedData, opts.Base)
	if err != nil {
		return nil, err
	}
	logger.Debug("zlib header",
		zap.Uint8("method", header.Method()),
		zap.Int("window", header.WindowSize()),
		zap.Uint8("level", header.Level()))

	// The trailer is required even when it is not checked.
	if len(compressedData) < zlibHeaderLen+adler32Len {
		return nil, pngerr.At(pngerr.TruncatedStream, opts.Base+int64(len(compressedData)),
			"zlib stream of %d bytes has no room for the Adler-32 trailer", len(compressedData))
	}
	end := len(compressedData) - adler32Len

	inner := opts
	inner.Base = opts.Base + zlibHeaderLen
	data, blocks, err := Inflate(compressedData[zlibHeaderLen:end], inner)
	if err != nil {
		return nil, err
	}

	if opts.VerifyAdler32 {
		if err := verifyAdler32(compressedData[end:], opts.Base+int64(end), data); err != nil {
			return nil, err
		}
	}

	return &Result{
		Header: header,
		Data:   data,
		Blocks: blocks,
	}, nil
}
