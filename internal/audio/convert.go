package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/Afnanksalal/meditech-backend/internal/observability/logging"
	"github.com/Afnanksalal/meditech-backend/internal/observability/metrics"
)

// DefaultTargetRate is the pipeline's canonical sample rate.
const DefaultTargetRate = 16000

// Converter shells out to ffmpeg to normalize uploads to mono WAV at the
// target sample rate.
type Converter struct {
	ffmpegPath string
	targetRate int
	logger     zerolog.Logger
}

// NewConverter creates a Converter. Empty path means "ffmpeg" on PATH.
func NewConverter(ffmpegPath string, targetRate int) *Converter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if targetRate <= 0 {
		targetRate = DefaultTargetRate
	}
	return &Converter{
		ffmpegPath: ffmpegPath,
		targetRate: targetRate,
		logger:     logging.WithComponent("audio.converter"),
	}
}

// TargetRate returns the configured canonical sample rate.
func (c *Converter) TargetRate() int {
	return c.targetRate
}

// ToWAV converts inputPath to a mono WAV at the target rate. A non-zero
// exit, a missing output file or an empty one all fail.
func (c *Converter) ToWAV(ctx context.Context, inputPath, outputPath string) error {
	args := []string{
		"-y", "-i", inputPath,
		"-ar", strconv.Itoa(c.targetRate),
		"-ac", "1",
		"-f", "wav",
		outputPath,
	}
	cmd := exec.CommandContext(ctx, c.ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		metrics.DefaultMetrics.RecordConvertError()
		c.logger.Error().
			Err(err).
			Str("input", inputPath).
			Str("stderr", tail(stderr.String(), 500)).
			Msg("FFmpeg conversion failed")
		return fmt.Errorf("ffmpeg: %w: %s", err, tail(stderr.String(), 200))
	}

	info, err := os.Stat(outputPath)
	if err != nil || info.Size() == 0 {
		metrics.DefaultMetrics.RecordConvertError()
		c.logger.Error().Str("output", outputPath).Msg("FFmpeg reported success but output is missing or empty")
		return errors.New("ffmpeg produced no output")
	}

	c.logger.Debug().
		Str("input", inputPath).
		Dur("duration", time.Since(start)).
		Int64("outputBytes", info.Size()).
		Msg("Audio conversion successful")
	return nil
}

// tail returns the last n bytes of s.
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
