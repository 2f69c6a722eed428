// Package fingerprint computes idempotency digests for report orders and
// defines the store contract that guarantees at most one artifact per digest.
package fingerprint

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Digest returns a deterministic hex digest identifying one customer order:
// the customer identity, the service the report belongs to, and the content
// configuration version active at generation time. It is used purely for
// equality checks, never for security.
func Digest(identity, serviceID, contentVersion string) string {
	canonical := strings.Join([]string{identity, serviceID, contentVersion}, "\x1f")
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// Store records which digests already have a generated artifact.
//
// MarkGenerated must be atomic per digest: when two workers race on the same
// digest, exactly one observes claimed == true and may persist an artifact.
type Store interface {
	// IsGenerated reports whether an artifact already exists for digest.
	IsGenerated(ctx context.Context, digest string) (bool, error)
	// MarkGenerated records digest -> artifactRef. It returns false when the
	// digest was already marked by another caller.
	MarkGenerated(ctx context.Context, digest, artifactRef string) (bool, error)
}
