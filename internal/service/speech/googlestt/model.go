// Package googlestt adapts Google Cloud Speech-to-Text synchronous
// recognition as a transcription model.
package googlestt

import (
	"context"
	"fmt"
	"strings"

	gspeech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"

	"github.com/Afnanksalal/meditech-backend/internal/audio"
)

// Model implements speech.Model using the synchronous Recognize API.
type Model struct {
	client       *gspeech.Client
	languageCode string // BCP-47, e.g. "en-IN", "ml-IN"
}

// New creates a Model for one recognition language.
// Requires GOOGLE_APPLICATION_CREDENTIALS to be set.
func New(ctx context.Context, languageCode string) (*Model, error) {
	c, err := gspeech.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return &Model{client: c, languageCode: languageCode}, nil
}

// Transcribe runs synchronous recognition over the sample and joins the
// result alternatives into one transcript.
func (m *Model) Transcribe(ctx context.Context, sample audio.Sample) (string, error) {
	resp, err := m.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:        speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz: int32(sample.Rate),
			LanguageCode:    m.languageCode,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{
				Content: audio.EncodePCM16(sample),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("recognize: %w", err)
	}

	var sb strings.Builder
	for _, result := range resp.Results {
		if len(result.Alternatives) == 0 {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(result.Alternatives[0].Transcript)
	}
	return sb.String(), nil
}

// Close releases the underlying API client.
func (m *Model) Close() error {
	return m.client.Close()
}
