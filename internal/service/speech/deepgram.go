// Package speech provides the speech-to-text provider client for recorded
// call audio.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ErrEmptyTranscript means the provider answered but produced no transcript
// field at all, as opposed to transcribing silence.
var ErrEmptyTranscript = errors.New("transcription result missing transcript")

// Config describes the Deepgram prerecorded transcription client.
type Config struct {
	APIKey   string
	BaseURL  string
	Model    string
	Language string
	Timeout  time.Duration
}

// Enabled reports whether transcription credentials were provided.
func (c Config) Enabled() bool {
	return c.APIKey != ""
}

// DeepgramClient transcribes prerecorded audio through Deepgram's listen
// API.
type DeepgramClient struct {
	config     Config
	httpClient *http.Client
}

// NewDeepgramClient builds a transcription client from config, applying the
// provider defaults for anything unset.
func NewDeepgramClient(config Config) *DeepgramClient {
	if config.BaseURL == "" {
		config.BaseURL = "https://api.deepgram.com"
	}
	if config.Model == "" {
		config.Model = "nova-2"
	}
	if config.Language == "" {
		config.Language = "en-US"
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	return &DeepgramClient{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}
}

type deepgramResponse struct {
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string `json:"transcript"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

// Transcribe submits one recording and returns its transcript. Decoding
// parameters are fixed: target language, smart formatting and punctuation
// on, because the text is fed straight back into the dialogue.
func (c *DeepgramClient) Transcribe(ctx context.Context, audio []byte) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("no audio to transcribe")
	}

	query := url.Values{}
	query.Set("model", c.config.Model)
	query.Set("language", c.config.Language)
	query.Set("smart_format", "true")
	query.Set("punctuate", "true")

	endpoint := fmt.Sprintf("%s/v1/listen?%s", c.config.BaseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(audio))
	if err != nil {
		return "", fmt.Errorf("build transcription request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+c.config.APIKey)
	req.Header.Set("Content-Type", "audio/mpeg")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("transcription failed with status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var parsed deepgramResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode transcription response: %w", err)
	}

	if len(parsed.Results.Channels) == 0 || len(parsed.Results.Channels[0].Alternatives) == 0 {
		return "", ErrEmptyTranscript
	}
	return parsed.Results.Channels[0].Alternatives[0].Transcript, nil
}
