package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLikePatternEscapesWildcards(t *testing.T) {
	cases := map[string]string{
		"go":     `%go%`,
		"_":      `%\_%`,
		"100%":   `%100\%%`,
		`a\b`:    `%a\\b%`,
		"snake_": `%snake\_%`,
	}
	for term, want := range cases {
		assert.Equal(t, want, likePattern(term), term)
	}
}
