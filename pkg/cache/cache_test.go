package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprint(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		a := Fingerprint("classify", "hello", "gpt-4")
		b := Fingerprint("classify", "hello", "gpt-4")
		assert.Equal(t, a, b)
	})

	t.Run("order matters", func(t *testing.T) {
		assert.NotEqual(t,
			Fingerprint("a", "b"),
			Fingerprint("b", "a"),
		)
	})

	t.Run("boundary matters", func(t *testing.T) {
		// "ab"+"c" and "a"+"bc" must not collide.
		assert.NotEqual(t,
			Fingerprint("ab", "c"),
			Fingerprint("a", "bc"),
		)
	})

	t.Run("model changes the key", func(t *testing.T) {
		assert.NotEqual(t,
			Fingerprint("classify", "hello", "gpt-4"),
			Fingerprint("classify", "hello", "gpt-3.5-turbo"),
		)
	})
}

func TestStats_HitRate(t *testing.T) {
	tests := []struct {
		name  string
		stats Stats
		want  float64
	}{
		{"no lookups", Stats{}, 0},
		{"all hits", Stats{Hits: 10}, 1},
		{"half", Stats{Hits: 5, Misses: 5}, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.stats.HitRate(), 0.001)
		})
	}
}
