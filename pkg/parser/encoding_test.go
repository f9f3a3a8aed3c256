package parser

import (
	"bytes"
	"encoding/binary"
	"testing"
	"unicode/utf16"
)

func utf16Bytes(s string, order binary.ByteOrder, bom []byte) []byte {
	var buf bytes.Buffer
	buf.Write(bom)
	for _, unit := range utf16.Encode([]rune(s)) {
		b := make([]byte, 2)
		order.PutUint16(b, unit)
		buf.Write(b)
	}
	return buf.Bytes()
}

func TestDecodePayload(t *testing.T) {
	tests := []struct {
		name         string
		data         []byte
		want         string
		wantEncoding string
	}{
		{"plain utf-8", []byte(`[{"a":1}]`), `[{"a":1}]`, "utf-8"},
		{"utf-8 bom", append([]byte{0xEF, 0xBB, 0xBF}, []byte(`[]`)...), `[]`, "utf-8-bom"},
		{"utf-16le", utf16Bytes(`["é"]`, binary.LittleEndian, []byte{0xFF, 0xFE}), `["é"]`, "utf-16le"},
		{"utf-16be", utf16Bytes(`["é"]`, binary.BigEndian, []byte{0xFE, 0xFF}), `["é"]`, "utf-16be"},
		{"latin-1 fallback", []byte{'[', '"', 0xE9, '"', ']'}, `["é"]`, "latin-1"},
		{"empty", nil, "", "utf-8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded, encoding, err := DecodePayload(tt.data)
			if err != nil {
				t.Fatalf("DecodePayload returned error: %v", err)
			}
			if string(decoded) != tt.want {
				t.Errorf("decoded = %q, want %q", decoded, tt.want)
			}
			if encoding != tt.wantEncoding {
				t.Errorf("encoding = %q, want %q", encoding, tt.wantEncoding)
			}
		})
	}
}

func TestDecodeUTF16SurrogatePair(t *testing.T) {
	decoded, _, err := DecodePayload(utf16Bytes("𝄞", binary.LittleEndian, []byte{0xFF, 0xFE}))
	if err != nil {
		t.Fatalf("DecodePayload returned error: %v", err)
	}
	if string(decoded) != "𝄞" {
		t.Errorf("decoded = %q, want %q", decoded, "𝄞")
	}
}
