package styles

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTruncateString(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		width    int
		expected string
	}{
		{"fits", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"ellipsis", "hello world", 8, "hello..."},
		{"tiny", "hello", 2, "he"},
		{"zero", "hello", 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, TruncateString(tt.in, tt.width))
		})
	}
}

func TestTruncateLeft(t *testing.T) {
	require.Equal(t, "/a/b", TruncateLeft("/a/b", 10))
	require.Equal(t, "...c/d.png", TruncateLeft("/a/b/c/d.png", 10))
	require.Equal(t, "png", TruncateLeft("d.png", 3))
}

func TestPadRight(t *testing.T) {
	require.Equal(t, "ab   ", PadRight("ab", 5))
	require.Equal(t, "abcdef", PadRight("abcdef", 3))
}
