package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// KeyPrefix starts every key the store writes to a provider.
const KeyPrefix = "amp"

// StorageKey isolates key by namespace: "amp:<ns>:<key>".
func StorageKey(ns, key string) string {
	return KeyPrefix + ":" + ns + ":" + key
}

// ShortHash returns the first 16 hex chars of the key's SHA-256, for logs
// that must not carry raw keys.
func ShortHash(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:8])
}
