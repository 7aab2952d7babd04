package usecase

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base32"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// keyPrefix marks keys issued by this service.
const keyPrefix = "pf_"

// maxArgon2Memory bounds the memory a stored hash may ask for (4 GiB in KiB).
const maxArgon2Memory = 4 * 1024 * 1024

var errMalformedHash = errors.New("malformed argon2id hash")

// Argon2Params はargon2idのコストパラメータです。
type Argon2Params struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	SaltLen uint32
	KeyLen  uint32
}

// DefaultArgon2Params は既存の保存済みハッシュと同じパラメータを返します。
func DefaultArgon2Params() Argon2Params {
	return Argon2Params{Time: 2, Memory: 102400, Threads: 8, SaltLen: 16, KeyLen: 32}
}

// Argon2Verifier はAPIキーをargon2idで検証します。
// 新規ハッシュはプロセスのパラメータ、検証は保存済みハッシュに埋め込まれたパラメータを使います。
type Argon2Verifier struct {
	params    Argon2Params
	dummySalt []byte
}

// NewArgon2Verifier はArgon2Verifierを生成します。SaltLen/KeyLenが0ならデフォルト値を使います。
func NewArgon2Verifier(p Argon2Params) *Argon2Verifier {
	if p.SaltLen == 0 {
		p.SaltLen = 16
	}
	if p.KeyLen == 0 {
		p.KeyLen = 32
	}
	return &Argon2Verifier{params: p, dummySalt: make([]byte, p.SaltLen)}
}

// Hash returns a PHC encoded argon2id hash of key with a fresh random salt.
func (v *Argon2Verifier) Hash(key string) (string, error) {
	salt := make([]byte, v.params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to read salt: %w", err)
	}
	sum := argon2.IDKey([]byte(key), salt, v.params.Time, v.params.Memory, v.params.Threads, v.params.KeyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		v.params.Memory, v.params.Time, v.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(sum),
	), nil
}

// Verify reports whether candidate is the preimage of stored.
// A malformed stored hash costs one derivation and verifies as false.
func (v *Argon2Verifier) Verify(candidate, stored string) bool {
	p, salt, want, err := decodeHash(stored)
	if err != nil {
		argon2.IDKey([]byte(candidate), v.dummySalt, v.params.Time, v.params.Memory, v.params.Threads, v.params.KeyLen)
		return false
	}
	got := argon2.IDKey([]byte(candidate), salt, p.Time, p.Memory, p.Threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1
}

// decodeHash parses $argon2id$v=19$m=..,t=..,p=..$salt$hash.
func decodeHash(encoded string) (Argon2Params, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return Argon2Params{}, nil, nil, errMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return Argon2Params{}, nil, nil, errMalformedHash
	}

	var p Argon2Params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Threads); err != nil {
		return Argon2Params{}, nil, nil, errMalformedHash
	}
	if p.Time == 0 || p.Threads == 0 || p.Memory < 8*uint32(p.Threads) || p.Memory > maxArgon2Memory {
		return Argon2Params{}, nil, nil, errMalformedHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return Argon2Params{}, nil, nil, errMalformedHash
	}
	sum, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(sum) == 0 {
		return Argon2Params{}, nil, nil, errMalformedHash
	}
	return p, salt, sum, nil
}

// Fingerprint returns the first 8 bytes of SHA-256(key) as hex.
// It only narrows the candidate set and grants nothing on its own.
func Fingerprint(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:8])
}

// GenerateKey returns a new random API key.
func GenerateKey() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	// base32 without padding so it's shell-friendly.
	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	return keyPrefix + strings.ToLower(enc.EncodeToString(b)), nil
}
