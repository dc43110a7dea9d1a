package compression

const (
	endOfBlock     = 256
	numLitLen      = 286 // usable literal/length symbols
	numDist        = 30  // usable distance symbols
	numCodeLen     = 19
	maxDistance    = 32768
	numFixedLitLen = 288
	numFixedDist   = 32
)

// Base value and extra-bit count for length symbols 257..285.
var (
	lengthBase = [29]uint16{
		3, 4, 5, 6, 7, 8, 9, 10, 11, 13,
		15, 17, 19, 23, 27, 31, 35, 43, 51, 59,
		67, 83, 99, 115, 131, 163, 195, 227, 258,
	}
	lengthExtra = [29]uint8{
		0, 0, 0, 0, 0, 0, 0, 0, 1, 1,
		1, 1, 2, 2, 2, 2, 3, 3, 3, 3,
		4, 4, 4, 4, 5, 5, 5, 5, 0,
	}
)

// Base value and extra-bit count for distance symbols 0..29.
var (
	distBase = [numDist]uint16{
		1, 2, 3, 4, 5, 7, 9, 13, 17, 25,
		33, 49, 65, 97, 129, 193, 257, 385, 513, 769,
		1025, 1537, 2049, 3073, 4097, 6145, 8193, 12289, 16385, 24577,
	}
	distExtra = [numDist]uint8{
		0, 0, 0, 0, 1, 1, 2, 2, 3, 3,
		4, 4, 5, 5, 6, 6, 7, 7, 8, 8,
		9, 9, 10, 10, 11, 11, 12, 12, 13, 13,
	}
)

// Order in which the code-length code lengths are transmitted.
var codeLengthOrder = [numCodeLen]uint8{
	16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15,
}

// Fixed Huffman codes of BTYPE=01 blocks, built once at package init and
// never modified.
var fixedLitLenTable, fixedDistTable = buildFixedTables()

func buildFixedTables() (*HuffmanTable, *HuffmanTable) {
	lit := make([]uint8, numFixedLitLen)
	for i := range lit {
		switch {
		case i < 144:
			lit[i] = 8
		case i < 256:
			lit[i] = 9
		case i < 280:
			lit[i] = 7
		default:
			lit[i] = 8
		}
	}
	dist := make([]uint8, numFixedDist)
	for i := range dist {
		dist[i] = 5
	}

	litTable, err := NewHuffmanTable(lit)
	if err != nil {
		panic("compression: fixed literal/length table: " + err.Error())
	}
	distTable, err := NewHuffmanTable(dist)
	if err != nil {
		panic("compression: fixed distance table: " + err.Error())
	}
	return litTable, distTable
}
