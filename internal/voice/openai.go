package voice

import (
	"context"
	"fmt"
	"io"

	"github.com/alkime/sonify/internal/audio"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAI TTS returns raw PCM at this rate, mono, signed 16-bit little endian.
const openAIPCMRate = 24000

// OpenAIVoices are the voices offered by the speech endpoint.
var OpenAIVoices = []string{
	"alloy", "ash", "coral", "echo", "fable", "nova", "onyx", "sage", "shimmer",
}

// Speaker plays synthesized audio.
type Speaker interface {
	Play(ctx context.Context, clip audio.Clip) error
}

// OpenAI speaks through the OpenAI text-to-speech API.
type OpenAI struct {
	*Queue
	client       openai.Client
	speaker      Speaker
	defaultVoice string
}

// NewOpenAI creates an engine. defaultVoice is used until a voice is picked.
func NewOpenAI(apiKey, defaultVoice string, speaker Speaker, opts ...option.RequestOption) *OpenAI {
	if defaultVoice == "" {
		defaultVoice = OpenAIVoices[0]
	}

	o := &OpenAI{
		client:       openai.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...),
		speaker:      speaker,
		defaultVoice: defaultVoice,
	}
	o.Queue = NewQueue(o.say, DefaultQueueSize)

	return o
}

// Voices returns the fixed voice list, the preferred one first.
func (o *OpenAI) Voices(context.Context) ([]Voice, error) {
	voices := []Voice{{ID: o.defaultVoice, Name: o.defaultVoice, Lang: "en"}}
	for _, name := range OpenAIVoices {
		if name != o.defaultVoice {
			voices = append(voices, Voice{ID: name, Name: name, Lang: "en"})
		}
	}

	return voices, nil
}

// Synthesize returns the speech for u as a playable clip.
func (o *OpenAI) Synthesize(ctx context.Context, u Utterance) (audio.Clip, error) {
	voiceID := u.Voice.ID
	if voiceID == "" {
		voiceID = o.defaultVoice
	}

	params := openai.AudioSpeechNewParams{
		Input:          u.Text,
		Model:          openai.SpeechModelTTS1,
		Voice:          openai.AudioSpeechNewParamsVoice(voiceID),
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatPCM,
		Speed:          openai.Float(max(0.25, min(4.0, u.Rate))),
	}

	resp, err := o.client.Audio.Speech.New(ctx, params)
	if err != nil {
		return audio.Clip{}, fmt.Errorf("failed to synthesize speech via OpenAI API: %w", err)
	}
	defer resp.Body.Close()

	pcm, err := io.ReadAll(resp.Body)
	if err != nil {
		return audio.Clip{}, fmt.Errorf("failed to read synthesized speech: %w", err)
	}

	samples := audio.BytesToInt16(pcm)
	if u.Volume < 1 {
		for i, s := range samples {
			samples[i] = int16(float64(s) * max(0, u.Volume))
		}
	}

	return audio.Clip{Samples: samples, SampleRate: openAIPCMRate, Channels: 1}, nil
}

func (o *OpenAI) say(ctx context.Context, u Utterance) error {
	clip, err := o.Synthesize(ctx, u)
	if err != nil {
		return err
	}

	if len(clip.Samples) == 0 {
		return nil
	}

	return o.speaker.Play(ctx, clip)
}
