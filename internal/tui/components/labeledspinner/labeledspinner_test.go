package labeledspinner_test

import (
	"testing"

	"github.com/alkime/sonify/internal/tui/components/labeledspinner"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//nolint:gochecknoinits // recommend for CI by bubbletea folks
func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func TestLabeledSpinner(t *testing.T) {
	m := labeledspinner.New(spinner.Dot, "Uploading line.png", "Sending to the sonification service", "Press q to quit")
	t.Run("initial state", func(t *testing.T) {
		assert.Equal(t, "Uploading line.png", m.Title)
		assert.Equal(t, "Sending to the sonification service", m.Subtitle)
		assert.Equal(t, "Press q to quit", m.Help)
		assert.Equal(t, spinner.Dot, m.Spinner.Spinner)
		assert.False(t, m.Elapsed.Running())
	})

	v0 := m.View()
	t.Run("view output", func(t *testing.T) {
		assert.Contains(t, v0, "Uploading line.png")
		assert.Contains(t, v0, "Sending to the sonification service")
		assert.Contains(t, v0, "Press q to quit")
		assert.Contains(t, v0, spinner.Dot.Frames[0])
		assert.NotContains(t, v0, "0s")
	})

	t.Run("check updates", func(t *testing.T) {
		m, _ = m.Update(spinner.TickMsg{})
		assert.Contains(t, m.View(), spinner.Dot.Frames[1])
		m, _ = m.Update(spinner.TickMsg{})
		assert.Contains(t, m.View(), spinner.Dot.Frames[2])
	})

	t.Run("elapsed shows once started", func(t *testing.T) {
		start := m.Elapsed.Start()
		require.NotNil(t, start)
		m, _ = m.Update(start())
		assert.True(t, m.Elapsed.Running())
		assert.Contains(t, m.View(), "0s")
	})

	t.Run("dynamic help", func(t *testing.T) {
		assert.Contains(t, m.ViewWithHelp("still working"), "still working")
	})
}
