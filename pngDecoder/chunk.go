package pngDecoder

import (
	"github.com/shoccho/pnGo/checksum"
	"github.com/shoccho/pnGo/pngerr"
	"github.com/shoccho/pnGo/utils"
)

// ChunkType is a chunk's 4-byte type code read as a big-endian integer.
type ChunkType uint32

const (
	IHDRChunk ChunkType = 0x49484452
	PLTEChunk ChunkType = 0x504c5445
	IDATChunk ChunkType = 0x49444154
	IENDChunk ChunkType = 0x49454e44

	TRNSChunk ChunkType = 0x74524e53

	CHRMChunk ChunkType = 0x6348524d
	GAMAChunk ChunkType = 0x67414d41
	ICCPChunk ChunkType = 0x69434350
	SBITChunk ChunkType = 0x73424954
	SRGBChunk ChunkType = 0x73524742

	ITXTChunk ChunkType = 0x69545874
	TEXTChunk ChunkType = 0x74455874
	ZTXTChunk ChunkType = 0x7a545874

	BKGDChunk ChunkType = 0x624b4744
	HISTChunk ChunkType = 0x68495354
	PHYSChunk ChunkType = 0x70485973
	SPLTChunk ChunkType = 0x73504c54
	TIMEChunk ChunkType = 0x74494d45
)

var knownChunkTypes = map[ChunkType]bool{
	IHDRChunk: true, PLTEChunk: true, IDATChunk: true, IENDChunk: true,
	TRNSChunk: true, CHRMChunk: true, GAMAChunk: true, ICCPChunk: true,
	SBITChunk: true, SRGBChunk: true, ITXTChunk: true, TEXTChunk: true,
	ZTXTChunk: true, BKGDChunk: true, HISTChunk: true, PHYSChunk: true,
	SPLTChunk: true, TIMEChunk: true,
}

func (c ChunkType) String() string {
	return string([]byte{byte(c >> 24), byte(c >> 16), byte(c >> 8), byte(c)})
}

// IsCritical reports whether bit 5 of the first byte is clear, that is the
// first letter is uppercase.
func (c ChunkType) IsCritical() bool {
	return byte(c>>24)&0x20 == 0
}

// Known reports whether the type is one this package has a name for.
func (c ChunkType) Known() bool {
	return knownChunkTypes[c]
}

// maxChunkLength is the largest length PNG allows, 2^31-1.
const maxChunkLength = 1<<31 - 1

type Chunk struct {
	offset int64 // of the length field
	length uint32
	typ    []byte
	data   []byte
	crc    uint32
}

func (c *Chunk) Type() ChunkType {
	return ChunkType(utils.BytesToLength(c.typ))
}

// verify compares the stored CRC with one computed over type and data.
func (c *Chunk) verify() error {
	if got := checksum.ChunkCRC(c.typ, c.data); got != c.crc {
		return pngerr.At(pngerr.ChecksumMismatch, c.offset, "%s chunk CRC %#08x, stored %#08x", c.Type(), got, c.crc)
	}
	return nil
}

// ChunkInfo is what Image keeps about every chunk it read.
type ChunkInfo struct {
	Type   ChunkType
	Length uint32
	CRC    uint32
	Offset int64
}

func (c *Chunk) info() ChunkInfo {
	return ChunkInfo{Type: c.Type(), Length: c.length, CRC: c.crc, Offset: c.offset}
}

func (p *PngDecoder) nextChunk() (*Chunk, error) {
	start := int64(p.idx)
	length, err := p.tryAdvance(4)
	if err != nil {
		return nil, err
	}
	chunkLength := utils.BytesToLength(length)
	if chunkLength > maxChunkLength {
		return nil, pngerr.At(pngerr.InvalidChunk, start, "chunk length %d exceeds 2^31-1", chunkLength)
	}
	chunkType, err := p.tryAdvance(4)
	if err != nil {
		return nil, err
	}
	chunkData, err := p.tryAdvance(uint(chunkLength))
	if err != nil {
		return nil, err
	}
	crc, err := p.tryAdvance(4)
	if err != nil {
		return nil, err
	}
	return &Chunk{
		offset: start,
		length: chunkLength,
		typ:    chunkType,
		data:   chunkData,
		crc:    utils.BytesToLength(crc),
	}, nil
}

func (p *PngDecoder) tryAdvance(length uint) ([]uint8, error) {
	if length > uint(len(p.data))-p.idx {
		return nil, pngerr.At(pngerr.TruncatedStream, int64(p.idx), "need %d bytes, have %d", length, uint(len(p.data))-p.idx)
	}
	p.idx += length
	return p.data[p.idx-length : p.idx], nil
}
