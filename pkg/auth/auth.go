// Package auth implements the header-based credential check and
// per-algorithm access filtering, grounded on the source's Authenticator
// and JSONAuthenticator, and on the teacher's sha256 token hashing in
// internal/server/api_tokens.go.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

// idAlphabet mirrors the source's ascii_letters + digits sample space
// for generated credential IDs.
const idAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// AccessSet names the algorithm IDs a credential may invoke. All means
// unrestricted access, mirroring the source's `access[0] == '*'` sentinel.
type AccessSet struct {
	All bool
	IDs map[string]struct{}
}

// NewAccessSet builds a restricted AccessSet from an explicit ID list.
func NewAccessSet(ids ...string) AccessSet {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return AccessSet{IDs: set}
}

// AllAccess is the unrestricted AccessSet.
func AllAccess() AccessSet { return AccessSet{All: true} }

// Allows reports whether algorithmID is permitted.
func (a AccessSet) Allows(algorithmID string) bool {
	if a.All {
		return true
	}
	_, ok := a.IDs[algorithmID]
	return ok
}

// Filter keeps only the entries this access set allows, preserving order.
func (a AccessSet) Filter(entries []string) []string {
	if a.All {
		return entries
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if a.Allows(e) {
			out = append(out, e)
		}
	}
	return out
}

// Credential is one registered caller identity. KeyHash is a sha256
// digest of the secret key; the raw key is never stored at rest, only
// ever returned once at creation time, mirroring the teacher's API
// token hashing.
type Credential struct {
	ID      string
	KeyHash []byte
	Access  AccessSet
}

func hashKey(key string) []byte {
	sum := sha256.Sum256([]byte(key))
	return sum[:]
}

// Authenticator checks easyapi-id/easyapi-key header pairs and filters
// entry listings by the caller's granted access.
type Authenticator interface {
	// Authenticate reports whether id/key is a valid credential pair.
	Authenticate(ctx context.Context, id, key string) (bool, error)
	// AccessFor returns the AccessSet for id, or ok=false if id is unknown.
	AccessFor(ctx context.Context, id string) (AccessSet, bool, error)
	// Create generates a new random ID and UUIDv4 key, stores the
	// credential with the given access, and returns the raw key (only
	// time it is ever returned).
	Create(ctx context.Context, access AccessSet) (id, key string, err error)
	// Revoke removes a credential.
	Revoke(ctx context.Context, id string) error
}

func randomID(n int) (string, error) {
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(idAlphabet))))
		if err != nil {
			return "", fmt.Errorf("auth: generate random id: %w", err)
		}
		b[i] = idAlphabet[idx.Int64()]
	}
	return string(b), nil
}

func newCredentialKey() string {
	return uuid.NewString()
}

func constantTimeEqual(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

func encodeHash(h []byte) string { return hex.EncodeToString(h) }
