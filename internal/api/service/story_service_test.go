package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeGenres(t *testing.T) {
	t.Run("TrimsAndLowercases", func(t *testing.T) {
		got := NormalizeGenres([]string{" Horror ", "THRILLER"})
		assert.Equal(t, []string{"horror", "thriller"}, got)
	})

	t.Run("DropsDuplicatesKeepingFirstSeenOrder", func(t *testing.T) {
		got := NormalizeGenres([]string{"Horror", "mystery", " horror ", "HORROR", "Mystery"})
		assert.Equal(t, []string{"horror", "mystery"}, got)
	})

	t.Run("DropsEmpties", func(t *testing.T) {
		got := NormalizeGenres([]string{"", "  ", "horror"})
		assert.Equal(t, []string{"horror"}, got)
	})

	t.Run("EmptyInput", func(t *testing.T) {
		assert.Empty(t, NormalizeGenres(nil))
	})
}
