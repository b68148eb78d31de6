package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// GenerateKey derives a deterministic cache key from the request content.
// Model and maxTokens are part of the key: the same prompt against a
// different model or token limit is a different request.
func GenerateKey(model, prompt string, maxTokens int) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%d\x00%s", model, maxTokens, prompt)
	return hex.EncodeToString(h.Sum(nil))
}
