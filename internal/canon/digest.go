package canon

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes keep digests of different record kinds from colliding.
const (
	DomainStep    = "devsel/step/v1"
	DomainCatalog = "devsel/catalog/v1"
)

// Digest hashes the canonical form of v under a domain prefix.
// Format: SHA256(domain + 0x00 + canonical(v)).
func Digest(domain string, v any) (string, error) {
	data, err := Marshal(v)
	if err != nil {
		return "", fmt.Errorf("digest %s: %w", domain, err)
	}
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil)), nil
}
