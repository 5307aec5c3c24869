package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Afnanksalal/meditech-backend/internal/observability/logging"
	"github.com/Afnanksalal/meditech-backend/internal/observability/metrics"
)

// ErrInvalidData marks uploads that carried no usable audio, as opposed to
// conversion tooling failures.
var ErrInvalidData = errors.New("invalid audio data")

// Ingestor turns an uploaded audio stream into a pipeline-ready Sample.
type Ingestor struct {
	converter *Converter
	logger    zerolog.Logger
}

// NewIngestor creates an Ingestor around a Converter.
func NewIngestor(converter *Converter) *Ingestor {
	return &Ingestor{
		converter: converter,
		logger:    logging.WithComponent("audio.ingestor"),
	}
}

// FromUpload stores the upload in a scratch directory, converts it to the
// canonical format and decodes it. Scratch files are removed on return.
func (i *Ingestor) FromUpload(ctx context.Context, filename string, r io.Reader) (Sample, error) {
	dir, err := os.MkdirTemp("", "consult-audio-*")
	if err != nil {
		return Sample{}, fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	inPath := filepath.Join(dir, "upload"+sanitizeExt(filename))
	in, err := os.Create(inPath)
	if err != nil {
		return Sample{}, fmt.Errorf("create scratch file: %w", err)
	}
	written, err := io.Copy(in, r)
	if closeErr := in.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return Sample{}, fmt.Errorf("store upload: %w", err)
	}
	if written == 0 {
		return Sample{}, fmt.Errorf("%w: empty upload", ErrInvalidData)
	}

	outPath := filepath.Join(dir, "converted.wav")
	if err := i.converter.ToWAV(ctx, inPath, outPath); err != nil {
		return Sample{}, err
	}

	out, err := os.Open(outPath)
	if err != nil {
		return Sample{}, fmt.Errorf("open converted audio: %w", err)
	}
	defer out.Close()

	sample, err := DecodeWAV(out)
	if err != nil {
		return Sample{}, fmt.Errorf("%w: decode converted audio: %w", ErrInvalidData, err)
	}

	metrics.DefaultMetrics.RecordAudioReceived(int(written))
	i.logger.Debug().
		Str("filename", filename).
		Int64("uploadBytes", written).
		Dur("audio", sample.Duration()).
		Msg("Upload ingested")
	return sample, nil
}

// sanitizeExt keeps a plausible extension from the client filename so ffmpeg
// can sniff the container, and drops anything else.
func sanitizeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if len(ext) < 2 || len(ext) > 8 {
		return ".bin"
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ".bin"
		}
	}
	return ext
}
