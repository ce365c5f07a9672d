// Package cryptox holds the hashing helpers used to fingerprint records.
package cryptox

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Fingerprint serializes v to JSON and returns the hex-encoded SHA-256 of
// the result. Struct fields are encoded in declaration order, so equal
// records always produce equal fingerprints.
//
// Example:
//
//	h, err := cryptox.Fingerprint(syncapi.Owner{Name: "Ana", Document: "123"})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(len(h)) // 64
func Fingerprint(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return Sum(data), nil
}

// Sum returns the hex-encoded SHA-256 of data.
func Sum(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
