package codec

import (
	"errors"
	"fmt"
)

// ErrInvalidToken is returned by [Decode] for malformed tokens.
var ErrInvalidToken = errors.New("invalid token")

// Decode unpacks a token into bytes. It is the inverse of [Encode] except
// that zero padding from a partial final group is kept.
func Decode(token string) ([]byte, error) {
	if len(token)%4 != 0 {
		return nil, fmt.Errorf("%w: length %d is not a multiple of 4", ErrInvalidToken, len(token))
	}

	out := make([]byte, 0, len(token)/4*3)
	var c [4]byte
	for i := 0; i < len(token); i += 4 {
		for j := range c {
			v, ok := decode6bit(token[i+j])
			if !ok {
				return nil, fmt.Errorf("%w: unexpected character %q at offset %d", ErrInvalidToken, token[i+j], i+j)
			}
			c[j] = v
		}
		out = append(out,
			c[0]<<2|c[1]>>4,
			(c[1]&0xF)<<4|c[2]>>2,
			(c[2]&0x3)<<6|c[3],
		)
	}
	return out, nil
}
