package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUUIDint64(t *testing.T) {
	a := UUIDint64()
	b := UUIDint64()
	assert.NotZero(t, a)
	assert.NotEqual(t, a, b)
}

func TestSha256HashWithSalt(t *testing.T) {
	h1 := Sha256HashWithSalt("secret", "salt1")
	h2 := Sha256HashWithSalt("secret", "salt2")
	assert.Len(t, h1, 64)
	assert.NotEqual(t, h1, h2)
	assert.Equal(t, h1, Sha256HashWithSalt("secret", "salt1"))
}

func TestRandomHex(t *testing.T) {
	tok := RandomHex(16)
	assert.Len(t, tok, 32)
	assert.NotEqual(t, tok, RandomHex(16))
}

func TestRoundCents(t *testing.T) {
	assert.Equal(t, 10.56, RoundCents(10.555))
	assert.Equal(t, 0.0, RoundCents(0))
	assert.Equal(t, 99.99, RoundCents(99.99))
}

func TestInSlice(t *testing.T) {
	assert.True(t, InSlice("pending", []string{"pending", "confirmed"}))
	assert.False(t, InSlice("unknown", []string{"pending", "confirmed"}))
}
