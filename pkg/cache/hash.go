package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// ImageKey returns the cache key for the image a server renders for token.
// The server URL is part of the key because different servers (or endpoints
// such as /img/ and /svg/) answer the same token differently.
func ImageKey(serverURL, token string) string {
	return fmt.Sprintf("image:%s", Hash([]byte(serverURL+token)))
}
