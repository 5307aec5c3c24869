// Package whisperserver adapts a whisper ASR webservice endpoint as a
// transcription model. One deployment per language, addressed by base URL.
package whisperserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Afnanksalal/meditech-backend/internal/audio"
	"github.com/Afnanksalal/meditech-backend/internal/observability/logging"
)

// DefaultTimeout bounds a single transcription request.
const DefaultTimeout = 120 * time.Second

// Model implements speech.Model against a whisper ASR webservice.
type Model struct {
	baseURL  string
	language string // ISO 639-1 code passed to the service
	client   *http.Client
	logger   zerolog.Logger
}

// New creates a Model for one webservice deployment.
func New(baseURL, language string) *Model {
	return &Model{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		language: language,
		client:   &http.Client{Timeout: DefaultTimeout},
		logger:   logging.WithComponent("whisperserver"),
	}
}

// asrResponse mirrors the service's output=json shape.
type asrResponse struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// Transcribe encodes the sample as WAV and posts it to the /asr endpoint.
func (m *Model) Transcribe(ctx context.Context, sample audio.Sample) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("audio_file", "sample.wav")
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(audio.EncodeWAV(sample)); err != nil {
		return "", fmt.Errorf("write audio data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close multipart body: %w", err)
	}

	query := url.Values{}
	query.Set("task", "transcribe")
	query.Set("language", m.language)
	query.Set("output", "json")
	endpoint := m.baseURL + "/asr?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	start := time.Now()
	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("asr request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("asr http %d: %s", resp.StatusCode, truncate(respBody, 200))
	}

	var parsed asrResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	m.logger.Debug().
		Str("language", m.language).
		Dur("duration", time.Since(start)).
		Int("textLen", len(parsed.Text)).
		Msg("Whisper transcription completed")
	return parsed.Text, nil
}

// truncate returns the first n bytes of body as a string.
func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
