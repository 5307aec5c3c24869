package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Afnanksalal/meditech-backend/internal/audio"
	"github.com/Afnanksalal/meditech-backend/internal/models"
	"github.com/Afnanksalal/meditech-backend/internal/service/pipeline"
)

// multipartMemory is how much of a parsed upload stays in memory before
// spilling to disk.
const multipartMemory = 4 << 20

// Upload allowlists. Both the filename extension and the declared MIME type
// must pass.
var (
	allowedAudioExtensions = []string{".mp3", ".mpeg", ".wav", ".webm"}
	allowedAudioMimetypes  = []string{"audio/mp3", "audio/mpeg", "audio/wav", "audio/webm"}
	allowedLanguages       = []string{"en", "ml"}
)

const (
	msgNoAudioFile     = "No audio file provided in the 'audio' field."
	msgNoFilename      = "Audio file has no filename."
	msgInvalidLanguage = "Invalid language specified. Allowed values are: en, ml"
	msgInvalidAudio    = "Invalid audio data: Could not load or data is empty after conversion."
	msgConvertFailed   = "Audio processing failed during conversion."
	msgUploadTooLarge  = "Uploaded audio exceeds the size limit."
)

func unsupportedAudioMessage() string {
	return fmt.Sprintf(
		"Unsupported audio type. Allowed extensions: %s. Allowed MIME types: %s",
		strings.Join(allowedAudioExtensions, ", "),
		strings.Join(allowedAudioMimetypes, ", "),
	)
}

// consultReply is the success body of the consult endpoint. EMR and
// Suggestions hold either the extracted record or an info payload explaining
// why there is none.
type consultReply struct {
	Status            string `json:"status"`
	DetectionMethod   string `json:"detection_method"`
	EffectiveLanguage string `json:"effective_language"`
	RawTranscription  string `json:"raw_transcription"`
	ProcessedText     string `json:"processed_text"`
	EMR               any    `json:"emr"`
	Suggestions       any    `json:"suggestions"`
}

type infoPayload struct {
	Info string `json:"info"`
}

// handleConsult accepts a recorded consult, runs the speech pipeline and
// returns the structured result.
func (a *api) handleConsult(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.maxUpload)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, msgUploadTooLarge)
			return
		}
		writeError(w, http.StatusBadRequest, msgNoAudioFile)
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		writeError(w, http.StatusBadRequest, msgNoAudioFile)
		return
	}
	defer file.Close()

	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, msgNoFilename)
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	mimetype := strings.ToLower(strings.TrimSpace(header.Header.Get("Content-Type")))
	if !slices.Contains(allowedAudioExtensions, ext) || !slices.Contains(allowedAudioMimetypes, mimetype) {
		writeError(w, http.StatusUnsupportedMediaType, unsupportedAudioMessage())
		return
	}

	language := strings.ToLower(strings.TrimSpace(r.FormValue("language")))
	if language != "" && !slices.Contains(allowedLanguages, language) {
		writeError(w, http.StatusBadRequest, msgInvalidLanguage)
		return
	}

	sample, err := a.deps.Ingestor.FromUpload(r.Context(), header.Filename, file)
	if err != nil {
		if errors.Is(err, audio.ErrInvalidData) {
			writeError(w, http.StatusBadRequest, msgInvalidAudio)
			return
		}
		a.logger.Error().Err(err).Str("filename", header.Filename).Msg("Audio conversion failed")
		writeError(w, http.StatusInternalServerError, msgConvertFailed)
		return
	}

	consultID := uuid.NewString()
	resp, err := a.deps.Processor.Process(r.Context(), pipeline.Request{
		ConsultId: consultID,
		Sample:    sample,
		Language:  language,
	})
	if err != nil {
		a.writeConsultError(w, consultID, err)
		return
	}

	a.publishConsult(r.Context(), consultID, resp)
	writeJSON(w, http.StatusOK, buildConsultReply(resp))
}

// writeConsultError maps pipeline failures onto the wire. Transcription is
// the only stage allowed to fail a request; later stages degrade inside the
// response instead.
func (a *api) writeConsultError(w http.ResponseWriter, consultID string, err error) {
	var terr *pipeline.TranscriptionError
	switch {
	case errors.Is(err, pipeline.ErrEmptySample):
		writeError(w, http.StatusBadRequest, msgInvalidAudio)
	case errors.Is(err, pipeline.ErrUnsupportedLanguage):
		writeError(w, http.StatusBadRequest, msgInvalidLanguage)
	case errors.As(err, &terr):
		a.logger.Error().Err(err).Str("consultId", consultID).Msg("Transcription failed")
		writeError(w, http.StatusInternalServerError, "Transcription failed: "+terr.Err.Error())
	default:
		a.logger.Error().Err(err).Str("consultId", consultID).Msg("Consult processing failed")
		writeError(w, http.StatusInternalServerError, genericServerError)
	}
}

func buildConsultReply(resp *pipeline.Response) consultReply {
	reply := consultReply{
		Status:            "success",
		DetectionMethod:   resp.DetectionMethod,
		EffectiveLanguage: resp.EffectiveLanguage,
		RawTranscription:  resp.RawTranscription,
		ProcessedText:     resp.CanonicalText,
		EMR:               resp.Record,
		Suggestions:       resp.Suggestions,
	}
	if resp.RecordFlag != "" {
		reply.EMR = infoPayload{Info: resp.RecordFlag}
	}
	if resp.SuggestionsFlag != "" {
		reply.Suggestions = infoPayload{Info: resp.SuggestionsFlag}
	}
	return reply
}

// publishConsult emits the completed-consult event. Publish failures are
// logged, never surfaced to the caller.
func (a *api) publishConsult(ctx context.Context, consultID string, resp *pipeline.Response) {
	if a.deps.Publisher == nil {
		return
	}
	event := models.ConsultCompleted{
		EventType:         models.EventTypeConsultRecord,
		RequestID:         consultID,
		Timestamp:         time.Now().UnixMilli(),
		DetectionMethod:   resp.DetectionMethod,
		EffectiveLanguage: resp.EffectiveLanguage,
		RawTranscription:  resp.RawTranscription,
		ProcessedText:     resp.CanonicalText,
		EMR:               resp.Record,
		Suggestions:       resp.Suggestions,
		Degraded:          resp.Degraded,
	}
	if err := a.deps.Publisher.PublishConsult(ctx, consultID, event); err != nil {
		a.logger.Error().Err(err).Str("consultId", consultID).Msg("Failed to publish consult event")
	}
}
