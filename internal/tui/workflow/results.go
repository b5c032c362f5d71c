package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/alkime/sonify/internal/analysis"
	"github.com/alkime/sonify/internal/session"
	"github.com/alkime/sonify/internal/tui/components/waveform"
	"github.com/alkime/sonify/internal/tui/style"
	"github.com/alkime/sonify/internal/tutor"
	"github.com/alkime/sonify/internal/workdir"
	"github.com/alkime/sonify/pkg/uictl"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	meterWidth  = 48
	meterHeight = 3
	// levelWindow is how many recent samples the meter spreads over its width.
	levelWindow = 4096
)

type resultsKeyMap struct {
	Play    key.Binding
	Explain key.Binding
	Save    key.Binding
	Another key.Binding
}

func defaultResultsKeyMap() resultsKeyMap {
	return resultsKeyMap{
		Play: key.NewBinding(
			key.WithKeys("p", " "),
			key.WithHelp("p/space", "play/stop"),
		),
		Explain: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "explain"),
		),
		Save: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "save mp3"),
		),
		Another: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new image"),
		),
	}
}

// ResultsDeps are the collaborators of the results screen.
type ResultsDeps struct {
	Library   AudioLibrary
	Player    Player
	Explainer tutor.Explainer
	// ExportPath picks the MP3 destination for a graph. Defaults to
	// workdir.ExportPath.
	ExportPath func(graphName string) (string, error)
}

type playbackMsg struct {
	playing bool
	err     error
}

type explainedMsg struct {
	text string
	err  error
}

type savedMsg struct {
	path string
	err  error
}

type resultsScreen struct {
	ctx      context.Context
	deps     ResultsDeps
	snapshot SnapshotFunc
	keys     resultsKeyMap
	meter    waveform.Model

	snap        session.Snapshot
	explanation string
	busy        string
	info        string
	err         error
}

// NewResultsScreen shows the analysis of the latest upload and controls for
// its audio.
func NewResultsScreen(ctx context.Context, snapshot SnapshotFunc, deps ResultsDeps) tea.Model {
	if deps.ExportPath == nil {
		deps.ExportPath = workdir.ExportPath
	}

	rs := &resultsScreen{
		ctx:      ctx,
		deps:     deps,
		snapshot: snapshot,
		keys:     defaultResultsKeyMap(),
	}

	var levels uictl.Levels[int16]
	var opts []waveform.Option
	if deps.Player != nil {
		levels = uictl.LevelsFunc[int16](func() []int16 { return deps.Player.ReadSamples(levelWindow) })
		opts = append(opts, waveform.WithPlayhead(uictl.DialFunc[float64](deps.Player.Progress)))
	}
	rs.meter = waveform.New(levels, meterWidth, meterHeight, opts...)

	return rs
}

func (rs *resultsScreen) Init() tea.Cmd {
	rs.snap = rs.snapshot()
	rs.explanation = ""
	rs.busy = ""
	rs.info = ""
	rs.err = nil

	hasAudio := !rs.snap.Audio.IsZero() && rs.deps.Library != nil
	rs.keys.Play.SetEnabled(hasAudio && rs.deps.Player != nil)
	rs.keys.Save.SetEnabled(hasAudio)
	rs.keys.Explain.SetEnabled(rs.snap.Result != nil && rs.deps.Explainer != nil)

	return rs.meter.Init()
}

func (rs *resultsScreen) Update(teaMsg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := teaMsg.(type) {
	case tea.KeyMsg:
		return rs, rs.handleKey(msg)

	case playbackMsg:
		rs.busy = ""
		if msg.err != nil {
			rs.err = msg.err
			return rs, noticeCmd("Playback failed.", true)
		}
		if msg.playing {
			rs.info = "Playing."
		} else {
			rs.info = "Stopped."
		}
		return rs, nil

	case explainedMsg:
		rs.busy = ""
		if msg.err != nil {
			rs.err = msg.err
			return rs, noticeCmd("Could not explain this graph.", true)
		}
		rs.explanation = msg.text
		return rs, noticeCmd(msg.text, false)

	case savedMsg:
		rs.busy = ""
		if msg.err != nil {
			rs.err = msg.err
			return rs, noticeCmd("Saving the audio failed.", true)
		}
		rs.info = "Saved to " + msg.path
		return rs, noticeCmd("Audio saved.", false)

	case tea.WindowSizeMsg:
		rs.meter.SetWidth(min(meterWidth, msg.Width-4))
		return rs, nil
	}

	var cmd tea.Cmd
	rs.meter, cmd = rs.meter.Update(teaMsg)

	return rs, cmd
}

func (rs *resultsScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	if rs.busy != "" {
		return nil
	}

	switch {
	case key.Matches(msg, rs.keys.Play):
		rs.err = nil
		if rs.deps.Player.IsPlaying() {
			rs.busy = "Stopping..."
			return rs.stopCmd()
		}
		rs.busy = "Loading audio..."
		return tea.Sequence(noticeCmd(session.MsgPlaybackStart, true), rs.playCmd())

	case key.Matches(msg, rs.keys.Explain):
		rs.err = nil
		rs.busy = "Thinking..."
		return rs.explainCmd()

	case key.Matches(msg, rs.keys.Save):
		rs.err = nil
		rs.busy = "Saving..."
		return rs.saveCmd()

	case key.Matches(msg, rs.keys.Another):
		return tea.Batch(rs.stopCmd(), msgCmd(BrowseMsg{}))
	}

	return nil
}

func (rs *resultsScreen) playCmd() tea.Cmd {
	upload, ref := rs.snap.UploadID, rs.snap.Audio

	return func() tea.Msg {
		clip, err := rs.deps.Library.Load(rs.ctx, upload, ref)
		if err != nil {
			slog.Error("Failed to load audio", "audio", ref, "error", err)
			return playbackMsg{err: err}
		}

		if err := rs.deps.Player.Start(rs.ctx, clip); err != nil {
			slog.Error("Failed to start playback", "audio", ref, "error", err)
			return playbackMsg{err: err}
		}

		return playbackMsg{playing: true}
	}
}

func (rs *resultsScreen) stopCmd() tea.Cmd {
	player := rs.deps.Player
	if player == nil {
		return nil
	}

	return func() tea.Msg {
		if err := player.Stop(rs.ctx); err != nil {
			return playbackMsg{err: err}
		}

		return playbackMsg{playing: false}
	}
}

func (rs *resultsScreen) explainCmd() tea.Cmd {
	result := *rs.snap.Result

	return func() tea.Msg {
		text, err := rs.deps.Explainer.Explain(rs.ctx, result)
		if err != nil {
			slog.Error("Failed to explain result", "error", err)
		}

		return explainedMsg{text: text, err: err}
	}
}

func (rs *resultsScreen) saveCmd() tea.Cmd {
	upload, ref := rs.snap.UploadID, rs.snap.Audio
	name := strings.TrimSuffix(rs.snap.FileName, filepath.Ext(rs.snap.FileName))

	return func() tea.Msg {
		dest, err := rs.deps.ExportPath(name)
		if err != nil {
			return savedMsg{err: err}
		}

		if err := rs.deps.Library.Export(rs.ctx, upload, ref, dest); err != nil {
			return savedMsg{err: err}
		}

		return savedMsg{path: dest}
	}
}

func (rs *resultsScreen) View() string {
	var sb strings.Builder

	title := "Sonification complete"
	if rs.snap.FileName != "" {
		title += ": " + rs.snap.FileName
	}
	sb.WriteString(style.Title.Render(title))
	sb.WriteString("\n\n")

	sb.WriteString(style.Viewport.Render(renderAnalysis(rs.snap.Result)))
	sb.WriteString("\n")

	sb.WriteString(style.Label.Render("Audio: "))
	if rs.snap.Audio.IsZero() {
		sb.WriteString(style.Muted.Render("none"))
	} else {
		sb.WriteString(style.Muted.Render(rs.snap.Audio.String()))
	}
	sb.WriteString("\n\n")

	sb.WriteString(rs.meter.View())
	sb.WriteString("\n\n")

	if rs.explanation != "" {
		sb.WriteString(lipgloss.NewStyle().Width(meterWidth + 20).Render(rs.explanation))
		sb.WriteString("\n\n")
	}

	switch {
	case rs.busy != "":
		sb.WriteString(style.Warning.Render(rs.busy))
		sb.WriteString("\n\n")
	case rs.err != nil:
		sb.WriteString(style.Error.Render(rs.err.Error()))
		sb.WriteString("\n\n")
	case rs.info != "":
		sb.WriteString(style.Success.Render(rs.info))
		sb.WriteString("\n\n")
	}

	sb.WriteString(renderKeysHelp(rs.keys.Play, rs.keys.Explain, rs.keys.Save, rs.keys.Another))

	return sb.String()
}

func renderAnalysis(r *analysis.Result) string {
	if r == nil {
		return style.Muted.Render("No analysis was returned for this image.")
	}

	rows := [][2]string{
		{"Graph type", orUnknown(analysis.Humanize(r.GraphType))},
		{"Trend", orUnknown(r.Trend)},
		{"X-intercept", r.XIntercept.String()},
		{"Y-intercept", r.YIntercept.String()},
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, fmt.Sprintf("%s %s", style.Label.Render(row[0]+":"), row[1]))
	}

	return strings.Join(lines, "\n")
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}

	return s
}
