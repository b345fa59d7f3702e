package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zlib"
)

const (
	zlibHeaderLen  = 2 // CMF and FLG bytes
	zlibTrailerLen = 4 // Adler-32 checksum
)

// Compress deflates the UTF-8 bytes of text at the default level and returns
// the raw deflate stream with the zlib header and trailer removed.
func Compress(text string) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, zlib.DefaultCompression)
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(w, text); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	wrapped := buf.Bytes()
	if len(wrapped) < zlibHeaderLen+zlibTrailerLen {
		return nil, fmt.Errorf("zlib stream too short: %d bytes", len(wrapped))
	}
	return wrapped[zlibHeaderLen : len(wrapped)-zlibTrailerLen], nil
}

// Token returns the URL token for text.
func Token(text string) (string, error) {
	payload, err := Compress(text)
	if err != nil {
		return "", fmt.Errorf("compress diagram: %w", err)
	}
	return Encode(payload), nil
}

// URL appends the token for text to baseURL. The base URL is expected to end
// with the image endpoint path, e.g. "http://www.plantuml.com/plantuml/img/".
func URL(baseURL, text string) (string, error) {
	token, err := Token(text)
	if err != nil {
		return "", err
	}
	return baseURL + token, nil
}

// Inflate decompresses a raw deflate stream. Trailing zero bytes left over
// from token padding are ignored.
func Inflate(payload []byte) (string, error) {
	r := flate.NewReader(bytes.NewReader(payload))
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("inflate: %w", err)
	}
	return string(data), nil
}

// DecodeText recovers the diagram source from a token.
func DecodeText(token string) (string, error) {
	payload, err := Decode(token)
	if err != nil {
		return "", err
	}
	return Inflate(payload)
}
