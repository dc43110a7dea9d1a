// Package pngerr defines the failure kinds a PNG decode can end with.
//
// Every component of the decoder returns an *Error carrying one of these
// kinds. Callers inspect the kind with KindOf or errors.Is against the
// sentinel values:
//
//	if errors.Is(err, pngerr.ErrChecksumMismatch) { ... }
package pngerr

import (
	"errors"
	"fmt"
)

// Kind classifies a decode failure.
type Kind int

const (
	Unknown Kind = iota
	NotAPngFile
	InvalidHeader
	InvalidChunk
	ChecksumMismatch
	MissingIDAT
	MissingIEND
	TrailingData
	UnsupportedCompression
	ReservedBlockType
	StoredBlockLengthMismatch
	InvalidBackReference
	HuffmanDecodeError
	TruncatedStream
)

var kindNames = map[Kind]string{
	Unknown:                   "unknown",
	NotAPngFile:               "not a png file",
	InvalidHeader:             "invalid header",
	InvalidChunk:              "invalid chunk",
	ChecksumMismatch:          "checksum mismatch",
	MissingIDAT:               "missing IDAT",
	MissingIEND:               "missing IEND",
	TrailingData:              "trailing data",
	UnsupportedCompression:    "unsupported compression",
	ReservedBlockType:         "reserved block type",
	StoredBlockLengthMismatch: "stored block length mismatch",
	InvalidBackReference:      "invalid back-reference",
	HuffmanDecodeError:        "huffman decode error",
	TruncatedStream:           "truncated stream",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Sentinels for errors.Is. They carry no message or offset.
var (
	ErrNotAPngFile               = &Error{Kind: NotAPngFile}
	ErrInvalidHeader             = &Error{Kind: InvalidHeader}
	ErrInvalidChunk              = &Error{Kind: InvalidChunk}
	ErrChecksumMismatch          = &Error{Kind: ChecksumMismatch}
	ErrMissingIDAT               = &Error{Kind: MissingIDAT}
	ErrMissingIEND               = &Error{Kind: MissingIEND}
	ErrTrailingData              = &Error{Kind: TrailingData}
	ErrUnsupportedCompression    = &Error{Kind: UnsupportedCompression}
	ErrReservedBlockType         = &Error{Kind: ReservedBlockType}
	ErrStoredBlockLengthMismatch = &Error{Kind: StoredBlockLengthMismatch}
	ErrInvalidBackReference      = &Error{Kind: InvalidBackReference}
	ErrHuffmanDecode             = &Error{Kind: HuffmanDecodeError}
	ErrTruncatedStream           = &Error{Kind: TruncatedStream}
)

// Error is a decode failure. Offset is the byte position in the input the
// failing component was looking at, or -1 when it does not apply.
type Error struct {
	Kind    Kind
	Message string
	Offset  int64
}

// New returns an *Error of the given kind with no offset.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Offset:  -1,
	}
}

// At returns an *Error of the given kind located at a byte offset.
func At(kind Kind, offset int64, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Offset:  offset,
	}
}

func (e *Error) Error() string {
	msg := "png: " + e.Kind.String()
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Offset >= 0 && e.Message != "" {
		msg += fmt.Sprintf(" (offset %d)", e.Offset)
	}
	return msg
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain, or Unknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}
