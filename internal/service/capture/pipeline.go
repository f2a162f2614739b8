// Package capture converts provider recording references into transcript
// text, absorbing the unreliability of both the download and the
// transcription steps.
package capture

import (
	"context"
	"errors"
	"fmt"
	"log"
)

var (
	// ErrAudioUnavailable means every fetch attempt was exhausted.
	ErrAudioUnavailable = errors.New("audio unavailable")
	// ErrNoTranscriber means no transcription collaborator is configured.
	ErrNoTranscriber = errors.New("transcriber not configured")
)

// Transcriber submits audio bytes for speech-to-text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// Pipeline orchestrates fetch-then-transcribe for one recording.
type Pipeline struct {
	fetcher     Fetcher
	transcriber Transcriber
	policy      RetryPolicy
}

// NewPipeline wires a capture pipeline. policy controls the fetch retries.
func NewPipeline(fetcher Fetcher, transcriber Transcriber, policy RetryPolicy) *Pipeline {
	return &Pipeline{fetcher: fetcher, transcriber: transcriber, policy: policy}
}

// Capture downloads the referenced recording and transcribes it. Failures
// never panic the call: they come back as errors the caller converts into a
// spoken re-prompt.
func (p *Pipeline) Capture(ctx context.Context, recordingURL, callID string) (string, error) {
	var audio []byte
	err := p.policy.Do(ctx, "recording fetch", func(ctx context.Context) error {
		bytes, fetchErr := p.fetcher.Fetch(ctx, recordingURL)
		if fetchErr != nil {
			return fetchErr
		}
		audio = bytes
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w for call %s: %v", ErrAudioUnavailable, callID, err)
	}

	if p.transcriber == nil {
		return "", ErrNoTranscriber
	}

	transcript, err := p.transcriber.Transcribe(ctx, audio)
	if err != nil {
		return "", fmt.Errorf("transcribe recording for call %s: %w", callID, err)
	}

	log.Printf("[capture] transcribed %d bytes for call %s", len(audio), callID)
	return transcript, nil
}
