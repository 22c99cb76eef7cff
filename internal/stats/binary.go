package stats

import (
	"bytes"
	"unicode/utf8"
)

// IsBinary reports whether the provided chunk appears to contain binary data: a NUL byte or
// invalid UTF-8. An incomplete rune at the end of the chunk is tolerated because the chunk
// boundary may split it.
func IsBinary(chunk []byte) bool {
	if len(chunk) == 0 {
		return false
	}
	if bytes.IndexByte(chunk, 0) >= 0 {
		return true
	}
	return !utf8.Valid(trimIncompleteRune(chunk))
}

func trimIncompleteRune(chunk []byte) []byte {
	for backOffset := 1; backOffset <= utf8.UTFMax && backOffset <= len(chunk); backOffset++ {
		runeStartIndex := len(chunk) - backOffset
		if !utf8.RuneStart(chunk[runeStartIndex]) {
			continue
		}
		if utf8.FullRune(chunk[runeStartIndex:]) {
			return chunk
		}
		return chunk[:runeStartIndex]
	}
	return chunk
}
