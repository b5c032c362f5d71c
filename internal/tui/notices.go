package tui

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alkime/sonify/internal/session"
	"github.com/alkime/sonify/pkg/channels"
	tea "github.com/charmbracelet/bubbletea"
)

const noticeBuffer = 16

// Speaker receives notices as speech.
type Speaker interface {
	Speak(text string, interrupt bool)
}

// noticeMsg delivers a notice to the status line.
type noticeMsg session.Notice

// noticeHub fans notices out to the speaker and the status line, in the
// order they were dispatched.
type noticeHub struct {
	broadcaster *channels.Broadcaster[session.Notice]
	status      chan session.Notice
}

func startNoticeHub(ctx context.Context, speaker Speaker) (*noticeHub, error) {
	b := channels.NewBroadcaster[session.Notice]()

	status := make(chan session.Notice, noticeBuffer)
	if err := b.Subscribe(status); err != nil {
		return nil, fmt.Errorf("failed to subscribe status line: %w", err)
	}

	var speech chan session.Notice
	if speaker != nil {
		speech = make(chan session.Notice, noticeBuffer)
		if err := b.Subscribe(speech); err != nil {
			return nil, fmt.Errorf("failed to subscribe speaker: %w", err)
		}
	}

	if _, err := b.Run(ctx); err != nil {
		return nil, fmt.Errorf("failed to start notice broadcaster: %w", err)
	}

	if speech != nil {
		go func() {
			for {
				select {
				case n := <-speech:
					speaker.Speak(n.Text, n.Interrupt)
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	return &noticeHub{broadcaster: b, status: status}, nil
}

// Dispatch publishes n. Empty notices are dropped.
func (h *noticeHub) Dispatch(n session.Notice) {
	if n.IsZero() {
		return
	}

	if err := h.broadcaster.Publish(n); err != nil {
		slog.Warn("notice dropped", "text", n.Text, "error", err)
	}
}

// next waits for the next notice bound for the status line.
func (h *noticeHub) next() tea.Cmd {
	return func() tea.Msg {
		n, ok := <-h.status
		if !ok {
			return nil
		}

		return noticeMsg(n)
	}
}
