package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashStrings hashes an ordered list of strings, such as the digests of
// every document that went into an index. Part boundaries are kept, so
// ("a", "b") and ("ab") differ.
func HashStrings(parts ...string) string {
	data, _ := json.Marshal(parts)
	return Hash(data)
}

// hashKey builds "prefix:<sha256 of the JSON-encoded parts>".
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return prefix + ":" + Hash(data)
}
