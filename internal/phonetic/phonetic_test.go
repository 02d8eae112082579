package phonetic

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncode(t *testing.T) {
	t.Run("maps known characters to spoken words", func(t *testing.T) {
		assert.Equal(t, "Alpha-Bravo-Charlie", Encode("abc"))
		assert.Equal(t, "Zero-One-Nine", Encode("019"))
		assert.Equal(t, "Decimal-Dash", Encode(".-"))
	})

	t.Run("is case insensitive", func(t *testing.T) {
		assert.Equal(t, Encode("abc"), Encode("ABC"))
		assert.Equal(t, "Xray", Encode("X"))
	})

	t.Run("unmapped characters pass through verbatim", func(t *testing.T) {
		assert.Equal(t, "Alpha-!-Bravo", Encode("a!b"))
		assert.Equal(t, "@", Encode("@"))
	})

	t.Run("empty input yields empty output", func(t *testing.T) {
		assert.Equal(t, "", Encode(""))
	})

	t.Run("never produces fewer words than input characters", func(t *testing.T) {
		for _, input := range []string{"abc123", "zz.9", "!?*", "MiXeD-4"} {
			got := Encode(input)
			assert.GreaterOrEqual(t, len(strings.Split(got, "-")), len(input))
		}
	})
}

func TestDecodeWord(t *testing.T) {
	t.Run("is the left inverse of the table", func(t *testing.T) {
		for _, ch := range "abcdefghijklmnopqrstuvwxyz0123456789" {
			assert.Equal(t, string(ch), DecodeWord(EncodeChar(ch)))
		}
		assert.Equal(t, ".", DecodeWord("Decimal"))
	})

	t.Run("is case insensitive", func(t *testing.T) {
		assert.Equal(t, "a", DecodeWord("ALPHA"))
		assert.Equal(t, "9", DecodeWord("nine"))
	})

	t.Run("unknown words are returned verbatim", func(t *testing.T) {
		assert.Equal(t, "blah", DecodeWord("blah"))
	})
}
