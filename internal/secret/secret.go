// Package secret generates the short, human-speakable shared secrets attached
// to verification records.
//
// The secret is not a credential: it only needs to be unguessable for the few
// minutes a record stays alive, and short enough for a person to read aloud.
// A key-stretched digest of a per-transaction primer provides the entropy; a
// random slice of that digest provides the secret.
package secret

import (
	"crypto/rand"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strconv"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// saltAlphabet matches the character classes allowed in the salt.
	saltAlphabet = "abcdefghijklmnopqrstuvwxyz" +
		"ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
		"0123456789+-*/!@#$%&?"

	iterations = 100_000
	digestSize = 64 // SHA-512 output; 128 hex characters

	// MinLength is the shortest secret worth speaking aloud.
	MinLength = 5

	// MaxLength is bounded by the hex digest the secret is sliced from.
	MaxLength = digestSize * 2
)

// ErrInvalidLength reports a requested length outside [MinLength, MaxLength].
var ErrInvalidLength = errors.New("secret length out of range")

// ErrEntropy reports that the platform random source failed. This is fatal:
// there is no acceptable weaker fallback.
var ErrEntropy = errors.New("entropy source unavailable")

// Generate derives a secret of exactly length hexadecimal characters from the
// primer. When variable is set, the realized length is drawn uniformly from
// [max(MinLength, length-3), length] for this call only.
//
// The primer should be unique per transaction (e.g. source + expiry + dest);
// a salted PBKDF2-HMAC-SHA512 digest and the process ID keep concurrent
// processes from colliding on identical primers.
func Generate(primer string, length int, variable bool) (string, error) {
	if length < MinLength || length > MaxLength {
		return "", fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidLength, length, MinLength, MaxLength)
	}

	salt, err := newSalt()
	if err != nil {
		return "", err
	}
	digest := hex.EncodeToString(
		pbkdf2.Key([]byte(primer), salt, iterations, digestSize, sha512.New),
	)

	if variable {
		low := length - 3
		if low < MinLength {
			low = MinLength
		}
		n, err := randInt(length - low + 1)
		if err != nil {
			return "", err
		}
		length = low + n
	}

	start, err := randInt(len(digest) - length + 1)
	if err != nil {
		return "", err
	}
	return digest[start : start+length], nil
}

// newSalt concatenates 3 to 5 distinct random alphabet characters with the
// process ID.
func newSalt() ([]byte, error) {
	n, err := randInt(3)
	if err != nil {
		return nil, err
	}
	count := 3 + n

	alphabet := []byte(saltAlphabet)
	salt := make([]byte, 0, count+8)
	for i := 0; i < count; i++ {
		j, err := randInt(len(alphabet) - i)
		if err != nil {
			return nil, err
		}
		salt = append(salt, alphabet[j])
		// Swap the used character out of the candidate range so draws are
		// without replacement.
		alphabet[j], alphabet[len(alphabet)-1-i] = alphabet[len(alphabet)-1-i], alphabet[j]
	}
	return strconv.AppendInt(salt, int64(os.Getpid()), 10), nil
}

// randInt draws uniformly from [0, n) using the platform random source.
func randInt(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrEntropy, err)
	}
	return int(v.Int64()), nil
}
