// Package waveform draws a level meter of recently played audio with an
// optional playhead row.
package waveform

import (
	"math"
	"strings"
	"time"

	"github.com/alkime/sonify/internal/tui/style"
	"github.com/alkime/sonify/pkg/uictl"
	tea "github.com/charmbracelet/bubbletea"
)

// Eight fill levels per row, index 0 is empty.
const blockChars = " ▁▂▃▄▅▆▇█"

const (
	frameInterval = 50 * time.Millisecond
	maxSample     = 32767.0
	playheadRune  = '●'
	timelineRune  = '─'
)

// TickMsg triggers a redraw.
type TickMsg struct{}

// Model renders samples as vertical bars, oldest on the left.
type Model struct {
	levels   uictl.Levels[int16]
	playhead uictl.Dial[float64]
	width    int
	height   int
}

// Option configures a Model.
type Option func(*Model)

// WithPlayhead adds a timeline row below the bars. The dial reports the
// playback position in [0, 1].
func WithPlayhead(position uictl.Dial[float64]) Option {
	return func(m *Model) {
		m.playhead = position
	}
}

// New creates a waveform width columns wide and height rows tall.
func New(levels uictl.Levels[int16], width, height int, opts ...Option) Model {
	m := Model{
		levels: levels,
		width:  max(width, 1),
		height: max(height, 1),
	}
	for _, opt := range opts {
		opt(&m)
	}

	return m
}

// Init returns the initial tick command.
func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update keeps the animation running.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if _, ok := msg.(TickMsg); ok {
		return m, m.tick()
	}

	return m, nil
}

// SetWidth resizes the meter, e.g. after a terminal resize.
func (m *Model) SetWidth(width int) {
	m.width = max(width, 1)
}

// View renders the bars and, when configured, the playhead row.
func (m Model) View() string {
	var samples []int16
	if m.levels != nil {
		samples = m.levels.Read()
	}

	var bars string
	if len(samples) == 0 {
		bars = m.renderBaseline()
	} else {
		bars = m.renderBars(columnLevels(samples, m.width, m.height*8))
	}

	if m.playhead == nil {
		return bars
	}

	return bars + "\n" + m.renderPlayhead(m.playhead.Read())
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(frameInterval, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

func (m Model) renderBars(levels []int) string {
	runes := []rune(blockChars)
	rows := make([]string, 0, m.height)

	for row := range m.height {
		floor := (m.height - 1 - row) * 8
		line := make([]rune, m.width)
		for col, level := range levels {
			line[col] = runes[min(max(level-floor, 0), 8)]
		}
		rows = append(rows, style.Progress.Render(string(line)))
	}

	return strings.Join(rows, "\n")
}

func (m Model) renderBaseline() string {
	rows := make([]string, 0, m.height)
	for row := range m.height {
		fill := " "
		if row == m.height-1 {
			fill = "▁"
		}
		rows = append(rows, style.Muted.Render(strings.Repeat(fill, m.width)))
	}

	return strings.Join(rows, "\n")
}

func (m Model) renderPlayhead(position float64) string {
	position = min(max(position, 0), 1)
	at := int(math.Round(position * float64(m.width-1)))

	line := []rune(strings.Repeat(string(timelineRune), m.width))
	line[at] = playheadRune

	return style.Muted.Render(string(line[:at])) +
		style.Key.Render(string(line[at])) +
		style.Muted.Render(string(line[at+1:]))
}

// columnLevels buckets samples into width columns and maps each bucket's
// peak to 0..maxLevel.
func columnLevels(samples []int16, width, maxLevel int) []int {
	levels := make([]int, width)
	bucket := max(1, len(samples)/width)

	for col := range levels {
		start := col * bucket
		if start >= len(samples) {
			break
		}
		end := min(start+bucket, len(samples))
		levels[col] = scaleLevel(peak(samples[start:end]), maxLevel)
	}

	return levels
}

func peak(samples []int16) int {
	var p int
	for _, s := range samples {
		v := int(s)
		if v < 0 {
			v = -v
		}
		p = max(p, v)
	}

	return min(p, int(maxSample))
}

// scaleLevel uses a square-root curve so quiet passages stay visible.
func scaleLevel(amp, maxLevel int) int {
	if amp == 0 {
		return 0
	}

	scaled := math.Sqrt(float64(amp)/maxSample) * float64(maxLevel)

	return min(int(scaled), maxLevel)
}
