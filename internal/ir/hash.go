package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainArgs is the domain prefix for argument identity.
// Version suffix enables future algorithm migration.
const DomainArgs = "vanilla/args/v1"

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ArgsID computes a content-addressed identity for a built argument object.
// Two argument objects with the same members produce the same ID regardless
// of insertion order.
func ArgsID(args *Object) (string, error) {
	if args == nil {
		args = NewObject()
	}
	canonical, err := MarshalCanonical(args)
	if err != nil {
		return "", fmt.Errorf("ArgsID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainArgs, canonical), nil
}
