package agents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestIDFromContext(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		ctx := WithRequestID(context.Background(), "req-42")
		assert.Equal(t, "req-42", RequestIDFromContext(ctx))
	})

	t.Run("missing id generated", func(t *testing.T) {
		id := RequestIDFromContext(context.Background())
		assert.NotEmpty(t, id)
	})

	t.Run("generated ids differ", func(t *testing.T) {
		a := RequestIDFromContext(context.Background())
		b := RequestIDFromContext(context.Background())
		assert.NotEqual(t, a, b)
	})
}
