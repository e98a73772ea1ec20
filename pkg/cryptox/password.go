package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Configuration for Argon2id hashing.
const (
	memory      = 19 * 1024 // Memory usage in KiB (19 MiB)
	iterations  = 2         // Iteration count
	parallelism = 1         // Number of threads
	keyLength   = 32        // Length of the generated hash
	saltLength  = 16        // Length of the salt
)

// MinPasswordLength is enforced at account creation, not at verify time.
const MinPasswordLength = 8

// ErrPasswordTooShort is returned by HashPassword for passwords under the
// minimum length.
var ErrPasswordTooShort = fmt.Errorf("cryptox: password must be at least %d characters", MinPasswordLength)

// HashPassword generates a PHC-format Argon2id hash string including salt and
// parameters. It rejects passwords shorter than MinPasswordLength.
func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", ErrPasswordTooShort
	}

	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey(
		[]byte(password+GetPepper()),
		salt,
		iterations,
		memory,
		parallelism,
		keyLength,
	)

	return fmt.Sprintf(
		"$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		memory,
		iterations,
		parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// MatchesPassword reports whether a plaintext password matches a PHC-style
// Argon2id hash. Malformed digests never match.
func MatchesPassword(password, encodedHash string) bool {
	salt, expected, params, err := decodeHash(encodedHash)
	if err != nil {
		return false
	}

	computed := argon2.IDKey(
		[]byte(password+GetPepper()),
		salt,
		params.iterations,
		params.memory,
		params.parallelism,
		uint32(len(expected)), // #nosec G115 - hash lengths are tiny
	)

	return subtle.ConstantTimeCompare(computed, expected) == 1
}

type hashParams struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
}

// decodeHash parses a PHC string: $argon2id$v=19$m=X,t=Y,p=Z$salt$hash
func decodeHash(encoded string) ([]byte, []byte, hashParams, error) {
	var params hashParams

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return nil, nil, params, errors.New("cryptox: invalid hash format")
	}
	if parts[1] != "argon2id" {
		return nil, nil, params, errors.New("cryptox: not an argon2id hash")
	}
	if parts[2] != "v=19" {
		return nil, nil, params, errors.New("cryptox: unsupported argon2 version")
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d",
		&params.memory, &params.iterations, &params.parallelism); err != nil {
		return nil, nil, params, fmt.Errorf("cryptox: parse parameters: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, nil, params, fmt.Errorf("cryptox: decode salt: %w", err)
	}

	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, nil, params, fmt.Errorf("cryptox: decode hash: %w", err)
	}

	return salt, hash, params, nil
}
