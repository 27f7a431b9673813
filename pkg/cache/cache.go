// Package cache implements the content-addressed result cache: once an
// algorithm has been run for a given set of inputs, the output is stored
// under a signature derived from those inputs so a repeat request can
// skip re-execution. Grounded on the source's AlgorithmCachePool.
package cache

import (
	"context"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"hash"
)

// HashAlg selects the digest used to turn canonicalized inputs into a
// cache signature.
type HashAlg string

const (
	HashMD5    HashAlg = "md5"
	HashSHA1   HashAlg = "sha1"
	HashSHA224 HashAlg = "sha224"
	HashSHA256 HashAlg = "sha256"
	HashSHA512 HashAlg = "sha512"
)

var hashFactories = map[HashAlg]func() hash.Hash{
	HashMD5:    md5.New,
	HashSHA1:   sha1.New,
	HashSHA224: sha256.New224,
	HashSHA256: sha256.New,
	HashSHA512: sha512.New,
}

// DefaultHashAlg mirrors AlgorithmCachePool's default hash method.
const DefaultHashAlg = HashMD5

// excludedSignatureKey is never part of a signature: resource requests
// don't change what an algorithm computes, only how fast it runs,
// mirroring the source's signature() stripping a `resources` kwarg
// before hashing.
const excludedSignatureKey = "resources"

// Signature computes the content-address for algorithmID run with inputs
// under hashAlg. inputs is canonicalized by dropping the resources key
// and relying on encoding/json's deterministic alphabetical key order
// for maps, mirroring the source's json.dumps(sorted kwargs).
func Signature(algorithmID string, inputs map[string]any, hashAlg HashAlg) (string, error) {
	factory, ok := hashFactories[hashAlg]
	if !ok {
		return "", fmt.Errorf("cache: unknown hash algorithm %q", hashAlg)
	}

	canonical := make(map[string]any, len(inputs))
	for k, v := range inputs {
		if k == excludedSignatureKey {
			continue
		}
		canonical[k] = v
	}

	payload, err := json.Marshal(canonical)
	if err != nil {
		return "", fmt.Errorf("cache: marshal signature payload: %w", err)
	}

	h := factory()
	h.Write(payload)
	sum := hex.EncodeToString(h.Sum(nil))
	return algorithmID + ":" + sum, nil
}

// Cache is the pluggable result-storage backend.
type Cache interface {
	// Fetch returns a previously recorded output for signature, if any.
	Fetch(ctx context.Context, algorithmID, signature string) (map[string]any, bool, error)
	// Record stores output under signature, overwriting any prior entry.
	Record(ctx context.Context, algorithmID, signature string, output map[string]any) error
}
