package pngDecoder

import "bytes"

const pngHeader = "\x89PNG\r\n\x1a\n"

func isPNG(data []byte) bool {
	n := len(pngHeader)
	if len(data) < n {
		return false
	}
	return bytes.Equal([]byte(pngHeader), data[0:n])
}
