package store

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/vitaminmoo/gattx/internal/explore"
)

const hashPrefix = "sha256:"

// ContentHash computes a content-addressable hash for a GATT layout.
// The hash only covers the structure of the table: service, characteristic
// and descriptor UUIDs in discovery order plus characteristic properties.
// Values are left out, so two walks of the same firmware hash the same even
// when the readings differ. Services that were never explored contribute
// only their UUID.
func ContentHash(t *explore.Topology) (string, error) {
	if t == nil || len(t.Services) == 0 {
		return "", fmt.Errorf("topology has no services")
	}

	var b strings.Builder
	for _, s := range t.Services {
		fmt.Fprintf(&b, "S %s %t\n", s.UUID.Full(), s.Discovered)
		for _, c := range s.Characteristics {
			fmt.Fprintf(&b, "C %s %02x\n", c.UUID.Full(), uint8(c.Properties))
			for _, d := range c.Descriptors {
				fmt.Fprintf(&b, "D %s\n", d.UUID.Full())
			}
		}
	}

	hash := sha256.Sum256([]byte(b.String()))
	return hashPrefix + hex.EncodeToString(hash[:]), nil
}

// ShortHash returns a shortened version of the hash for display purposes.
func ShortHash(fullHash string) string {
	h := strings.TrimPrefix(fullHash, hashPrefix)
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

// hashToFilename converts a full hash to a safe filename.
func hashToFilename(hash string) string {
	return strings.TrimPrefix(hash, hashPrefix)
}
