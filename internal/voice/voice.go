// Package voice turns short status messages into speech.
//
// A Service holds the speech policy (enabled flag, interruption, voice
// selection). The speech itself is produced by an Engine; a Service without
// an engine stays silent.
package voice

import "context"

// Voice identifies one speech voice offered by an engine.
type Voice struct {
	// ID is what the engine expects when asked to use this voice.
	ID   string
	Name string
	// Lang is a locale tag such as "en-us".
	Lang string
}

// Utterance is one message to speak with its prosody.
type Utterance struct {
	Text   string
	Voice  Voice
	Rate   float64
	Pitch  float64
	Volume float64
}

// Engine produces speech. Speak enqueues and returns without waiting for
// the audio to finish; Cancel drops the queue and interrupts the current
// utterance.
type Engine interface {
	Speak(ctx context.Context, u Utterance) error
	Cancel() error
	Voices(ctx context.Context) ([]Voice, error)
}
