package workflow

import (
	"path/filepath"

	"github.com/alkime/sonify/internal/tui/components/labeledspinner"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

type uploadingKeyMap struct {
	Back key.Binding
}

func defaultUploadingKeyMap() uploadingKeyMap {
	return uploadingKeyMap{
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "pick another image"),
		),
	}
}

type uploadingScreen struct {
	spinner  labeledspinner.Model
	snapshot SnapshotFunc
	keys     uploadingKeyMap
}

// NewUploadingScreen shows progress while the service analyzes the image.
// Picking another image from here supersedes the running upload.
func NewUploadingScreen(snapshot SnapshotFunc) tea.Model {
	return &uploadingScreen{
		spinner: labeledspinner.New(
			spinner.Dot,
			"Sonifying...",
			"Analyzing your graph and synthesizing audio",
			"",
		),
		snapshot: snapshot,
		keys:     defaultUploadingKeyMap(),
	}
}

func (us *uploadingScreen) Init() tea.Cmd {
	if name := us.snapshot().FileName; name != "" {
		us.spinner.Title = "Sonifying " + name + "..."
	}

	return us.spinner.Init()
}

func (us *uploadingScreen) Update(teaMsg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := teaMsg.(tea.KeyMsg); ok && key.Matches(keyMsg, us.keys.Back) {
		return us, msgCmd(BrowseMsg{})
	}

	var cmd tea.Cmd
	us.spinner, cmd = us.spinner.Update(teaMsg)

	return us, cmd
}

func (us *uploadingScreen) View() string {
	return us.spinner.ViewWithHelp(renderKeyHelp(us.keys.Back))
}

func displayName(path string) string {
	return filepath.Base(path)
}
