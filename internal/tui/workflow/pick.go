package workflow

import (
	"strings"

	"github.com/alkime/sonify/internal/backend"
	"github.com/alkime/sonify/internal/session"
	"github.com/alkime/sonify/internal/tui/style"
	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type pickKeyMap struct {
	Select  key.Binding
	Dismiss key.Binding
}

func defaultPickKeyMap() pickKeyMap {
	return pickKeyMap{
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "sonify image"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "dismiss alert"),
		),
	}
}

type pickScreen struct {
	picker   filepicker.Model
	snapshot SnapshotFunc
	keys     pickKeyMap
}

// NewPickScreen lists images under dir. When the workflow has failed the
// error is shown as an alert above the list.
func NewPickScreen(dir string, snapshot SnapshotFunc) tea.Model {
	fp := filepicker.New()
	fp.CurrentDirectory = dir
	fp.AllowedTypes = backend.AllowedExtensions
	fp.AutoHeight = true
	fp.ShowPermissions = false

	return &pickScreen{
		picker:   fp,
		snapshot: snapshot,
		keys:     defaultPickKeyMap(),
	}
}

func (ps *pickScreen) Init() tea.Cmd {
	return ps.picker.Init()
}

func (ps *pickScreen) Update(teaMsg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := teaMsg.(tea.KeyMsg); ok && key.Matches(keyMsg, ps.keys.Dismiss) {
		if ps.snapshot().State == session.StateFailed {
			return ps, msgCmd(DismissMsg{})
		}

		return ps, nil
	}

	var cmd tea.Cmd
	ps.picker, cmd = ps.picker.Update(teaMsg)

	if ok, path := ps.picker.DidSelectFile(teaMsg); ok {
		return ps, tea.Batch(cmd, msgCmd(SelectedMsg{Path: path}))
	}

	if ok, path := ps.picker.DidSelectDisabledFile(teaMsg); ok {
		return ps, tea.Batch(cmd, noticeCmd("Only PNG and JPEG images can be sonified: "+displayName(path), true))
	}

	return ps, cmd
}

func (ps *pickScreen) View() string {
	var sb strings.Builder

	snap := ps.snapshot()
	if snap.State == session.StateFailed {
		sb.WriteString(style.Alert.Render(failureText(snap)))
		sb.WriteString("\n")
		sb.WriteString(renderKeyHelp(ps.keys.Dismiss, "\n\n"))
	}

	sb.WriteString(style.Title.Render("Choose a graph image"))
	sb.WriteString("\n")
	sb.WriteString(style.Muted.Render(ps.picker.CurrentDirectory))
	sb.WriteString("\n\n")

	sb.WriteString(ps.picker.View())
	sb.WriteString("\n")

	sb.WriteString(renderKeysHelp(ps.keys.Select))

	return sb.String()
}

func failureText(snap session.Snapshot) string {
	text := session.MsgUploadFailed
	if snap.FileName != "" {
		text = "Upload of " + snap.FileName + " failed."
	}
	if snap.Err != nil {
		text += " " + snap.Err.Error()
	}

	return text
}
