package codec

import (
	"encoding/base64"
	"strings"
)

// alphabet maps a 6-bit value to its PlantUML symbol.
const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz-_"

// stdAlphabet is the standard base64 alphabet, index-aligned with alphabet.
const stdAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// translator rewrites standard base64 output into the PlantUML alphabet.
// Padding becomes '0' because padded positions carry zero bits.
var translator = newTranslator()

func newTranslator() *strings.Replacer {
	pairs := make([]string, 0, 2*len(stdAlphabet)+2)
	for i := 0; i < len(stdAlphabet); i++ {
		pairs = append(pairs, stdAlphabet[i:i+1], alphabet[i:i+1])
	}
	return strings.NewReplacer(append(pairs, "=", "0")...)
}

// encode6bit returns the PlantUML symbol for the low 6 bits of b.
func encode6bit(b byte) byte {
	return alphabet[b&0x3F]
}

// decode6bit returns the 6-bit value of symbol c, or false if c is not part
// of the alphabet.
func decode6bit(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'A' && c <= 'Z':
		return c - 'A' + 10, true
	case c >= 'a' && c <= 'z':
		return c - 'a' + 36, true
	case c == '-':
		return 62, true
	case c == '_':
		return 63, true
	}
	return 0, false
}

// Encode packs data into PlantUML symbols, four per 3-byte group. A trailing
// partial group is zero-filled, so the result length is always a multiple of 4.
func Encode(data []byte) string {
	var sb strings.Builder
	sb.Grow(EncodedLen(len(data)))
	for i := 0; i < len(data); i += 3 {
		var b1, b2, b3 byte
		b1 = data[i]
		if i+1 < len(data) {
			b2 = data[i+1]
		}
		if i+2 < len(data) {
			b3 = data[i+2]
		}
		encode3bytes(&sb, b1, b2, b3)
	}
	return sb.String()
}

func encode3bytes(sb *strings.Builder, b1, b2, b3 byte) {
	c1 := b1 >> 2
	c2 := (b1&0x3)<<4 | b2>>4
	c3 := (b2&0xF)<<2 | b3>>6
	c4 := b3 & 0x3F
	sb.WriteByte(encode6bit(c1))
	sb.WriteByte(encode6bit(c2))
	sb.WriteByte(encode6bit(c3))
	sb.WriteByte(encode6bit(c4))
}

// EncodeTranslate produces the same output as [Encode] by running standard
// base64 and translating its alphabet.
func EncodeTranslate(data []byte) string {
	return translator.Replace(base64.StdEncoding.EncodeToString(data))
}

// EncodedLen returns the token length for n payload bytes.
func EncodedLen(n int) int {
	return (n + 2) / 3 * 4
}
