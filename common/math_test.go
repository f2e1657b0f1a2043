package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLerp(t *testing.T) {
	assert.Equal(t, float32(0), Lerp(0, 10, 0))
	assert.Equal(t, float32(5), Lerp(0, 10, 0.5))
	assert.Equal(t, float32(10), Lerp(0, 10, 1))
}

func TestFraction(t *testing.T) {
	cases := []struct {
		v, limit float64
		want     float32
	}{
		{50, 100, 0.5},
		{150, 100, 1},
		{-5, 100, 0},
		{5, 0, 0},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Fraction(c.v, c.limit))
	}
}
