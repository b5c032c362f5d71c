package screens_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/alkime/sonify/internal/tui/components/screens"
	"github.com/alkime/sonify/pkg/collections"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//nolint:gochecknoinits // recommend for CI by bubbletea folks
func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

type screenKey int

const (
	keyPick screenKey = iota
	keyWait
	keyDone
	keyBroken
	keyMissing
)

func TestScreens(t *testing.T) {
	checker := outputChecker{
		intervl: 100 * time.Millisecond,
		timeout: 1 * time.Second,
	}

	pick := &modelMock{t: t, name: "pick-screen"}
	wait := &modelMock{t: t, name: "wait-screen"}
	done := &modelMock{t: t, name: "done-screen"}

	sc := screens.New(keyPick,
		screens.Entry[screenKey]{Key: keyPick, Screen: screens.NewScreen("pick", pick)},
		screens.Entry[screenKey]{Key: keyWait, Screen: screens.NewScreen("wait", wait)},
		screens.Entry[screenKey]{Key: keyDone, Screen: screens.NewScreen("done", done)},
		// same model behind a second key
		screens.Entry[screenKey]{Key: keyBroken, Screen: screens.NewScreen("pick", pick)},
	)

	tm := teatest.NewTestModel(t, sc, teatest.WithInitialTermSize(300, 100))

	inits := func() []bool {
		return collections.ApplyVariadic(func(m *modelMock) bool {
			return m.initCalled
		}, pick, wait, done)
	}

	t.Run("initial screen is pick", func(t *testing.T) {
		checker.CheckString(t, tm, "pick-screen")
		require.Equal(t, []bool{true, false, false}, inits())
	})

	t.Run("show jumps directly to a screen", func(t *testing.T) {
		tm.Send(screens.ShowMsg[screenKey]{Key: keyDone})
		checker.CheckString(t, tm, "done-screen")
		require.Equal(t, []bool{true, false, true}, inits())
	})

	t.Run("screen commands can switch screens", func(t *testing.T) {
		tm.Send(mockMsg{show: keyWait})
		checker.CheckString(t, tm, "wait-screen")
		require.True(t, done.updated)
		require.Equal(t, []bool{true, true, true}, inits())
	})

	t.Run("keys may share a model", func(t *testing.T) {
		tm.Send(screens.ShowMsg[screenKey]{Key: keyBroken})
		checker.CheckString(t, tm, "pick-screen")
	})

	require.NoError(t, tm.Quit())
}

func TestScreens_UnknownKey(t *testing.T) {
	sc := screens.New(keyPick,
		screens.Entry[screenKey]{Key: keyPick, Screen: screens.NewScreen("pick", &modelMock{t: t, name: "pick-screen"})},
	)

	updated, cmd := sc.Update(screens.ShowMsg[screenKey]{Key: keyMissing})
	assert.Nil(t, cmd)

	m, ok := updated.(screens.Model[screenKey])
	require.True(t, ok)
	assert.Equal(t, keyPick, m.Current())
	assert.Equal(t, "pick", m.CurrentName())
	assert.Equal(t, "pick-screen", m.View())

	empty := screens.New[screenKey](keyMissing)
	assert.Nil(t, empty.Init())
	assert.Empty(t, empty.View())
}

type modelMock struct {
	t          *testing.T
	name       string
	updated    bool
	initCalled bool
}

func (m *modelMock) Init() tea.Cmd {
	m.initCalled = true
	return nil
}

func (m *modelMock) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m.t.Logf("modelMock Update called: %s, msg: %#v\n", m.name, msg)

	if msg, ok := msg.(mockMsg); ok {
		m.updated = true
		return m, screens.ShowCmd(msg.show)
	}

	return m, nil
}

func (m *modelMock) View() string { return m.name }

type outputChecker struct {
	intervl, timeout time.Duration
}

func (o outputChecker) Check(t *testing.T, tm *teatest.TestModel, check func(buf []byte) bool) {
	teatest.WaitFor(t, tm.Output(), check,
		teatest.WithCheckInterval(o.intervl),
		teatest.WithDuration(o.timeout))
}

func (o outputChecker) CheckString(t *testing.T, tm *teatest.TestModel, substr string) {
	o.Check(t, tm, func(buf []byte) bool {
		return bytes.Contains(buf, []byte(substr))
	})
}

type mockMsg struct {
	show screenKey
}
