package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// RequestCacheKey derives a deterministic content-address for an HTTP GET.
// The key is the SHA-256 of a canonical JSON document holding the URL and
// the (sorted) query parameters, so the same logical request always maps to
// the same cache entry regardless of caller-side map ordering.
func RequestCacheKey(url string, params map[string]string) string {
	payload := struct {
		Params map[string]string `json:"params"`
		URL    string            `json:"url"`
	}{Params: params, URL: url}

	// encoding/json sorts map keys, which is what makes this canonical.
	data, err := json.Marshal(payload)
	if err != nil {
		// Marshaling a string map cannot fail; guard anyway.
		data = []byte(url)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
