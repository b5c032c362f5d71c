// Package tui is the interactive front end of the sonification workflow.
package tui

import (
	"context"
	"log/slog"
	"strings"

	"github.com/alkime/sonify/internal/backend"
	"github.com/alkime/sonify/internal/session"
	"github.com/alkime/sonify/internal/tui/components/screens"
	"github.com/alkime/sonify/internal/tui/style"
	"github.com/alkime/sonify/internal/tui/workflow"
	"github.com/alkime/sonify/internal/tutor"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Voice is the guidance the TUI drives with its global keys.
type Voice interface {
	Speaker
	Toggle() bool
	Stop()
	Repeat() bool
	Enabled() bool
}

// Config wires the TUI to the workflow and its collaborators. Only Workflow
// and Uploader are required.
type Config struct {
	Workflow  *session.Workflow
	Uploader  session.Uploader
	Voice     Voice
	Library   workflow.AudioLibrary
	Player    workflow.Player
	Explainer tutor.Explainer
	// StartDir is where the file picker opens.
	StartDir string
	// ExportPath overrides where MP3 exports go.
	ExportPath func(graphName string) (string, error)
	Cancel     context.CancelFunc
}

type uploadDoneMsg struct {
	notice session.Notice
	ok     bool
}

type model struct {
	ctx     context.Context
	config  Config
	keys    KeyMap
	notices *noticeHub
	screens screens.Model[session.State]

	status       string
	windowWidth  int
	windowHeight int
}

// New creates the TUI model. Notices keep flowing until ctx is done.
func New(ctx context.Context, config Config) (tea.Model, error) {
	var speaker Speaker
	if config.Voice != nil {
		speaker = config.Voice
	}

	hub, err := startNoticeHub(ctx, speaker)
	if err != nil {
		return nil, err
	}

	snapshot := config.Workflow.Snapshot
	pick := screens.NewScreen("Pick an image", workflow.NewPickScreen(config.StartDir, snapshot))

	return &model{
		ctx:     ctx,
		config:  config,
		keys:    DefaultKeyMap(),
		notices: hub,
		screens: screens.New(session.StateIdle,
			screens.Entry[session.State]{Key: session.StateIdle, Screen: pick},
			screens.Entry[session.State]{Key: session.StateFailed, Screen: pick},
			screens.Entry[session.State]{
				Key:    session.StateUploading,
				Screen: screens.NewScreen("Uploading", workflow.NewUploadingScreen(snapshot)),
			},
			screens.Entry[session.State]{
				Key: session.StateSucceeded,
				Screen: screens.NewScreen("Results", workflow.NewResultsScreen(ctx, snapshot, workflow.ResultsDeps{
					Library:    config.Library,
					Player:     config.Player,
					Explainer:  config.Explainer,
					ExportPath: config.ExportPath,
				})),
			},
		),
		windowWidth:  80,
		windowHeight: 24,
	}, nil
}

// Init returns the initial command.
func (m *model) Init() tea.Cmd {
	return tea.Batch(m.screens.Init(), m.notices.next())
}

// Update handles all messages.
func (m *model) Update(teaMsg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := teaMsg.(type) {
	case tea.WindowSizeMsg:
		m.windowWidth = msg.Width
		m.windowHeight = msg.Height

	case tea.KeyMsg:
		if cmd, handled := m.handleGlobalKey(msg); handled {
			return m, cmd
		}

	case workflow.SelectedMsg:
		return m, m.selectImage(msg.Path)

	case uploadDoneMsg:
		if !msg.ok {
			return m, nil
		}
		m.notices.Dispatch(msg.notice)
		return m, m.show(m.config.Workflow.Snapshot().State)

	case workflow.DismissMsg:
		m.config.Workflow.Acknowledge()
		return m, nil

	case workflow.BrowseMsg:
		return m, m.show(session.StateIdle)

	case workflow.NoticeMsg:
		m.notices.Dispatch(msg.Notice)
		return m, nil

	case noticeMsg:
		m.status = msg.Text
		return m, m.notices.next()
	}

	updated, cmd := m.screens.Update(teaMsg)
	m.screens = updated.(screens.Model[session.State]) //nolint:forcetypeassert // screens.Model always returns screens.Model

	return m, cmd
}

func (m *model) handleGlobalKey(km tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(km, m.keys.ForceQuit), key.Matches(km, m.keys.Quit):
		m.shutdown()
		return tea.Quit, true

	case key.Matches(km, m.keys.ToggleVoice):
		if m.config.Voice != nil {
			m.config.Voice.Toggle()
		}
		return nil, true

	case key.Matches(km, m.keys.StopSpeech):
		if m.config.Voice != nil {
			m.config.Voice.Stop()
		}
		return nil, true

	case key.Matches(km, m.keys.Repeat):
		if m.config.Voice == nil || !m.config.Voice.Repeat() {
			m.status = session.MsgNothingToSay
		}
		return nil, true
	}

	return nil, false
}

func (m *model) selectImage(path string) tea.Cmd {
	img, err := backend.LoadImage(path)
	if err != nil {
		slog.Error("Failed to load image", "path", path, "error", err)
		m.notices.Dispatch(session.Notice{Text: "Could not open that image.", Interrupt: true})
		return nil
	}

	ticket, notice, ok := m.config.Workflow.Select(m.ctx, img)
	if !ok {
		return nil
	}

	m.notices.Dispatch(notice)

	wf, uploader := m.config.Workflow, m.config.Uploader
	upload := func() tea.Msg {
		notice, ok := session.Run(wf, uploader, ticket)
		return uploadDoneMsg{notice: notice, ok: ok}
	}

	return tea.Batch(m.show(session.StateUploading), upload)
}

func (m *model) show(state session.State) tea.Cmd {
	return screens.ShowCmd(state)
}

func (m *model) shutdown() {
	m.config.Workflow.Close()

	if m.config.Player != nil && m.config.Player.IsPlaying() {
		if err := m.config.Player.Stop(context.WithoutCancel(m.ctx)); err != nil {
			slog.Error("Failed to stop playback", "error", err)
		}
	}

	if m.config.Voice != nil {
		m.config.Voice.Stop()
	}

	if m.config.Cancel != nil {
		m.config.Cancel()
	}
}

// View renders the current screen and the status line.
func (m *model) View() string {
	var sb strings.Builder

	sb.WriteString(style.Subtitle.Render("sonify › " + m.screens.CurrentName()))
	sb.WriteString("\n\n")

	sb.WriteString(m.screens.View())
	sb.WriteString("\n\n")

	sb.WriteString(m.statusLine())
	sb.WriteString("\n")
	sb.WriteString(m.globalHelp())

	return sb.String()
}

func (m *model) statusLine() string {
	voice := "Voice guidance is OFF"
	if m.config.Voice != nil && m.config.Voice.Enabled() {
		voice = "Voice guidance is ON"
	}

	line := voice
	if m.status != "" {
		line += "  " + style.Bullet.Render("›") + " " + m.status
	}

	return style.Status.Render(line)
}

func (m *model) globalHelp() string {
	parts := make([]string, 0, len(m.keys.ShortHelp()))
	for _, b := range m.keys.ShortHelp() {
		parts = append(parts, style.Help.Render("[")+style.Key.Render(b.Help().Key)+
			style.Help.Render("] "+b.Help().Desc))
	}

	return strings.Join(parts, "  ")
}
