package secret

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isHex(s string) bool {
	for _, ch := range s {
		if (ch < '0' || ch > '9') && (ch < 'a' || ch > 'f') {
			return false
		}
	}
	return true
}

func TestGenerate(t *testing.T) {
	t.Run("fixed length yields exactly that many hex characters", func(t *testing.T) {
		for _, length := range []int{5, 8, 16, 128} {
			got, err := Generate("alice300 secondsbob", length, false)
			require.NoError(t, err)
			assert.Len(t, got, length)
			assert.True(t, isHex(got), "secret %q is not hexadecimal", got)
		}
	})

	t.Run("variable length stays within [max(5, n-3), n]", func(t *testing.T) {
		for i := 0; i < 50; i++ {
			got, err := Generate("primer", 8, true)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, len(got), 5)
			assert.LessOrEqual(t, len(got), 8)
			assert.True(t, isHex(got))
		}
	})

	t.Run("variable length never drops below the minimum", func(t *testing.T) {
		for i := 0; i < 20; i++ {
			got, err := Generate("primer", 5, true)
			require.NoError(t, err)
			assert.Len(t, got, 5)
		}
	})

	t.Run("length below minimum is rejected", func(t *testing.T) {
		_, err := Generate("primer", 4, false)
		assert.ErrorIs(t, err, ErrInvalidLength)
	})

	t.Run("length beyond the digest is rejected", func(t *testing.T) {
		_, err := Generate("primer", MaxLength+1, false)
		assert.ErrorIs(t, err, ErrInvalidLength)
	})

	t.Run("successive calls differ", func(t *testing.T) {
		// The salt and offset are random, so identical primers must not
		// produce identical secrets in practice.
		seen := map[string]bool{}
		for i := 0; i < 10; i++ {
			got, err := Generate("same primer", 16, false)
			require.NoError(t, err)
			seen[got] = true
		}
		assert.Greater(t, len(seen), 1)
	})
}
