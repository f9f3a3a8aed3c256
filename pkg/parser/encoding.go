package parser

import (
	"bytes"
	"encoding/binary"
	"unicode/utf8"
)

// BOM constants
var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// DecodePayload strips any BOM from a raw payload and converts it to UTF-8,
// returning the decoded bytes and the detected encoding name. Directory
// exports occasionally arrive as UTF-16 or Latin-1; json.Unmarshal requires
// UTF-8, so decoding happens before any parsing.
func DecodePayload(data []byte) ([]byte, string, error) {
	switch {
	case len(data) == 0:
		return data, "utf-8", nil
	case bytes.HasPrefix(data, bomUTF8):
		return data[3:], "utf-8-bom", nil
	case bytes.HasPrefix(data, bomUTF16LE):
		return decodeUTF16(data[2:], binary.LittleEndian), "utf-16le", nil
	case bytes.HasPrefix(data, bomUTF16BE):
		return decodeUTF16(data[2:], binary.BigEndian), "utf-16be", nil
	case utf8.Valid(data):
		return data, "utf-8", nil
	}

	// Fallback: Latin-1 maps bytes 0x00-0xFF directly to code points U+0000-U+00FF.
	var buf bytes.Buffer
	buf.Grow(len(data) * 2)
	for _, b := range data {
		buf.WriteRune(rune(b))
	}
	return buf.Bytes(), "latin-1", nil
}

// decodeUTF16 converts UTF-16 bytes in the given byte order to UTF-8.
// Invalid surrogates become U+FFFD; a trailing odd byte is dropped.
func decodeUTF16(data []byte, order binary.ByteOrder) []byte {
	if len(data)%2 != 0 {
		data = data[:len(data)-1]
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for i := 0; i < len(data); i += 2 {
		unit := order.Uint16(data[i : i+2])

		if unit >= 0xD800 && unit <= 0xDBFF {
			// High surrogate: consume the low surrogate if present and valid.
			if i+3 < len(data) {
				low := order.Uint16(data[i+2 : i+4])
				if low >= 0xDC00 && low <= 0xDFFF {
					buf.WriteRune(0x10000 + (rune(unit-0xD800)<<10 | rune(low-0xDC00)))
					i += 2
					continue
				}
			}
			buf.WriteRune(0xFFFD)
			continue
		}
		if unit >= 0xDC00 && unit <= 0xDFFF {
			// Lone low surrogate.
			buf.WriteRune(0xFFFD)
			continue
		}
		buf.WriteRune(rune(unit))
	}

	return buf.Bytes()
}
