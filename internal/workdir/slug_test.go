package workdir_test

import (
	"path/filepath"
	"testing"

	"github.com/alkime/sonify/internal/workdir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "image file name",
			input:    "Linear Graph.png",
			expected: "linear-graph",
		},
		{
			name:     "special characters",
			input:    "y = x^2 (concave up!).jpeg",
			expected: "y-x2-concave-up",
		},
		{
			name:     "underscores and repeated spaces",
			input:    "sonified_line   graph.wav",
			expected: "sonified-line-graph",
		},
		{
			name:     "leading and trailing junk",
			input:    "  --Trimmed--  ",
			expected: "trimmed",
		},
		{
			name:     "nothing usable",
			input:    "!!!",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, workdir.Slug(tt.input))
		})
	}
}

func TestExportPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv(workdir.HomeEnv, home)

	p, err := workdir.ExportPath("Line Graph.png")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "exports", "line-graph.mp3"), p)

	p, err = workdir.ExportPath("???")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "exports", "graph.mp3"), p)
}
