package session

import (
	"context"
	"errors"
	"log/slog"

	"github.com/alkime/sonify/internal/backend"
)

// Uploader transmits an image to the sonification service.
type Uploader interface {
	Upload(ctx context.Context, img *backend.Image) (*backend.Response, error)
}

// Dispatcher delivers notices, e.g. to a voice service.
type Dispatcher func(Notice)

// Run performs the network call for a ticket and applies the outcome. It
// returns the resulting notice; ok is false when the ticket was superseded
// while in flight.
func Run(w *Workflow, uploader Uploader, ticket Ticket) (Notice, bool) {
	resp, err := uploader.Upload(ticket.Ctx, ticket.Image)
	if err != nil {
		if errors.Is(err, context.Canceled) && ticket.Ctx.Err() != nil {
			slog.Debug("upload cancelled", "id", ticket.ID, "file", ticket.Image.Name)
			err = errors.Join(ErrSuperseded, err)
		} else {
			slog.Error("upload failed", "id", ticket.ID, "file", ticket.Image.Name, "error", err)
		}

		return w.Fail(ticket.ID, err)
	}

	slog.Info("upload complete", "id", ticket.ID, "file", ticket.Image.Name,
		"audio", resp.AudioFile, "analysis", resp.Analysis != nil)

	return w.Complete(ticket.ID, resp)
}

// Process selects img, uploads it, and dispatches each notice after the
// corresponding transition. It returns the final snapshot.
func Process(ctx context.Context, w *Workflow, uploader Uploader, img *backend.Image, dispatch Dispatcher) Snapshot {
	ticket, notice, ok := w.Select(ctx, img)
	if !ok {
		return w.Snapshot()
	}

	if dispatch != nil {
		dispatch(notice)
	}

	if notice, ok = Run(w, uploader, ticket); ok && dispatch != nil {
		dispatch(notice)
	}

	return w.Snapshot()
}
