package rand_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tablero-app/tablero/internal/rand"
)

func TestNewRequestIDLength(t *testing.T) {
	for _, n := range []int{1, 16, 64} {
		assert.Len(t, rand.NewRequestID(n), n)
	}
}

func TestNewRequestIDAlphanumeric(t *testing.T) {
	id := rand.NewRequestID(128)
	for _, r := range id {
		ok := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		assert.True(t, ok, "unexpected character %q", r)
	}
}

func TestNewRequestIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for range 1000 {
		id := rand.NewRequestID(16)
		assert.False(t, seen[id], "duplicate ID %s", id)
		seen[id] = true
	}
}
