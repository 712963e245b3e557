package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"collapses whitespace", "  mitu   \n\t sõna  ", "mitu sõna"},
		{"empty", "", ""},
		{"only whitespace", " \n\t ", ""},
		{"already clean", "juba korras", "juba korras"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.in))
		})
	}
}

func TestSplitAuthors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"single author", "Mari Maasikas", []string{"Mari Maasikas"}},
		{"estonian conjunction", "Mari Maasikas ja Jaan Tamm", []string{"Mari Maasikas", "Jaan Tamm"}},
		{"comma separated", "Mari Maasikas, Jaan Tamm, Peeter Piir", []string{"Mari Maasikas", "Jaan Tamm", "Peeter Piir"}},
		{"russian conjunction", "Иван Петров и Анна Сидорова", []string{"Иван Петров", "Анна Сидорова"}},
		{"empty byline", "   ", nil},
		{"trailing period", "Jaan Tamm.", []string{"Jaan Tamm"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitAuthors(tt.in))
		})
	}
}

func TestParsePublishedTime(t *testing.T) {
	t.Run("rfc3339", func(t *testing.T) {
		got, err := ParsePublishedTime("2024-05-01T10:30:00+03:00")
		require.NoError(t, err)
		want := time.Date(2024, 5, 1, 10, 30, 0, 0, time.FixedZone("", 3*3600))
		assert.True(t, got.Equal(want))
	})

	t.Run("loose format", func(t *testing.T) {
		got, err := ParsePublishedTime("2024-05-01 10:30")
		require.NoError(t, err)
		assert.Equal(t, 2024, got.Year())
		assert.Equal(t, time.May, got.Month())
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := ParsePublishedTime("eile õhtul")
		assert.Error(t, err)
	})
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "teine", FirstNonEmpty("", "  ", " teine ", "kolmas"))
	assert.Equal(t, "", FirstNonEmpty("", "   "))
}
