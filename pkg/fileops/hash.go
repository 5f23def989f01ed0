package fileops

import (
	"crypto/md5"  //nolint:gosec // content fingerprint, not a security boundary
	"crypto/sha1" //nolint:gosec // content fingerprint, not a security boundary
	"crypto/sha256"
	"errors"
	"fmt"
	"hash"
	"strings"

	"github.com/zeebo/blake3"
)

// Exported constants.
const (
	SHA256 HashAlgorithm = "sha256"
	SHA1   HashAlgorithm = "sha1"
	MD5    HashAlgorithm = "md5"
	BLAKE3 HashAlgorithm = "blake3"
)

// ErrUnknownAlgorithm is returned when parsing an unsupported hash name.
var ErrUnknownAlgorithm = errors.New("unknown hash algorithm")

// HashAlgorithm names a content digest.
type HashAlgorithm string

// ParseHashAlgorithm parses a case-insensitive algorithm name. Empty means SHA256.
func ParseHashAlgorithm(name string) (HashAlgorithm, error) {
	switch algo := HashAlgorithm(strings.ToLower(strings.TrimSpace(name))); algo {
	case "":
		return SHA256, nil
	case SHA256, SHA1, MD5, BLAKE3:
		return algo, nil
	default:
		return "", fmt.Errorf("%w: %q (valid: sha256, sha1, md5, blake3)", ErrUnknownAlgorithm, name)
	}
}

// New returns a fresh hasher for the algorithm. The zero value hashes with SHA256.
func (a HashAlgorithm) New() hash.Hash {
	switch a {
	case SHA1:
		return sha1.New() //nolint:gosec // content fingerprint
	case MD5:
		return md5.New() //nolint:gosec // content fingerprint
	case BLAKE3:
		return blake3.New()
	case SHA256:
		return sha256.New()
	default:
		return sha256.New()
	}
}

// String returns the algorithm name.
func (a HashAlgorithm) String() string {
	if a == "" {
		return string(SHA256)
	}

	return string(a)
}

// UnmarshalText lets go-arg and yaml parse the algorithm directly.
func (a *HashAlgorithm) UnmarshalText(text []byte) error {
	parsed, err := ParseHashAlgorithm(string(text))
	if err != nil {
		return err
	}

	*a = parsed

	return nil
}
