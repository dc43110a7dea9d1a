// Package checksum implements the CRC-32 used to protect PNG chunks.
package checksum

// Reflected form of the IEEE 802.3 polynomial.
const crcPolynomial = 0xEDB88320

var crcTable = makeCRCTable()

func makeCRCTable() (table [256]uint32) {
	for n := range table {
		c := uint32(n)
		for k := 0; k < 8; k++ {
			if c&1 != 0 {
				c = crcPolynomial ^ (c >> 1)
			} else {
				c >>= 1
			}
		}
		table[n] = c
	}
	return table
}

// CRC32 is an incremental CRC-32 accumulator. The zero value is not ready
// for use; call NewCRC32 or Reset first.
type CRC32 struct {
	crc uint32
}

// NewCRC32 returns a reset accumulator.
func NewCRC32() *CRC32 {
	c := &CRC32{}
	c.Reset()
	return c
}

// Reset starts a new checksum.
func (c *CRC32) Reset() {
	c.crc = 0xFFFFFFFF
}

// Update feeds a single byte.
func (c *CRC32) Update(b byte) {
	c.crc = crcTable[byte(c.crc)^b] ^ (c.crc >> 8)
}

// Write feeds p and never fails, so a CRC32 can sit behind an io.Writer.
func (c *CRC32) Write(p []byte) (int, error) {
	for _, b := range p {
		c.Update(b)
	}
	return len(p), nil
}

// Sum32 returns the finalized checksum without disturbing the accumulator.
func (c *CRC32) Sum32() uint32 {
	return c.crc ^ 0xFFFFFFFF
}

// ChunkCRC returns the CRC of a chunk's type code followed by its data.
func ChunkCRC(typ, data []byte) uint32 {
	c := NewCRC32()
	c.Write(typ)
	c.Write(data)
	return c.Sum32()
}
