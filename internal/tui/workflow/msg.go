package workflow

import (
	"github.com/alkime/sonify/internal/session"
	tea "github.com/charmbracelet/bubbletea"
)

// SelectedMsg reports the image the user picked.
type SelectedMsg struct {
	Path string
}

// DismissMsg acknowledges a failure alert.
type DismissMsg struct{}

// BrowseMsg asks to go back to the file picker without changing the
// workflow state.
type BrowseMsg struct{}

// NoticeMsg carries a notice raised by a screen for the app to dispatch.
type NoticeMsg struct {
	Notice session.Notice
}

func noticeCmd(text string, interrupt bool) tea.Cmd {
	return func() tea.Msg {
		return NoticeMsg{Notice: session.Notice{Text: text, Interrupt: interrupt}}
	}
}

func msgCmd(msg tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return msg
	}
}
