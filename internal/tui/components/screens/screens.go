// Package screens switches between full-screen models keyed by an
// application state.
package screens

import (
	tea "github.com/charmbracelet/bubbletea"
)

// ShowMsg asks the container to display the screen registered for Key.
type ShowMsg[K comparable] struct {
	Key K
}

// ShowCmd returns a command that shows the screen for key.
func ShowCmd[K comparable](key K) tea.Cmd {
	return func() tea.Msg {
		return ShowMsg[K]{Key: key}
	}
}

type Screen struct {
	Name string
	mdl  tea.Model
}

func (s Screen) Init() tea.Cmd {
	return s.mdl.Init()
}

func (s Screen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	updatedMdl, cmd := s.mdl.Update(msg)
	s.mdl = updatedMdl
	return s, cmd
}

func (s Screen) View() string {
	return s.mdl.View()
}

func NewScreen(name string, mdl tea.Model) Screen {
	return Screen{
		Name: name,
		mdl:  mdl,
	}
}

// Entry binds a screen to a key.
type Entry[K comparable] struct {
	Key    K
	Screen Screen
}

// Model shows one screen at a time. Several keys may share a screen by
// registering the same underlying model; pointer models then keep one state.
type Model[K comparable] struct {
	screens map[K]Screen
	curr    K
}

// New creates a container showing initial. Keys without a screen are
// ignored by ShowMsg.
func New[K comparable](initial K, entries ...Entry[K]) Model[K] {
	screens := make(map[K]Screen, len(entries))
	for _, e := range entries {
		screens[e.Key] = e.Screen
	}

	return Model[K]{
		screens: screens,
		curr:    initial,
	}
}

func (m Model[K]) Init() tea.Cmd {
	s, ok := m.screens[m.curr]
	if !ok {
		return nil
	}

	return s.Init()
}

func (m Model[K]) Update(teaMsg tea.Msg) (tea.Model, tea.Cmd) {
	if show, ok := teaMsg.(ShowMsg[K]); ok {
		s, found := m.screens[show.Key]
		if !found {
			return m, nil
		}
		m.curr = show.Key
		return m, s.Init()
	}

	s, ok := m.screens[m.curr]
	if !ok {
		return m, nil
	}

	s, cmd := s.Update(teaMsg)
	m.screens[m.curr] = s

	return m, cmd
}

func (m Model[K]) View() string {
	s, ok := m.screens[m.curr]
	if !ok {
		return ""
	}

	return s.View()
}

// Current returns the key of the visible screen.
func (m Model[K]) Current() K {
	return m.curr
}

// CurrentName returns the name of the visible screen.
func (m Model[K]) CurrentName() string {
	return m.screens[m.curr].Name
}
