package speech

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/Afnanksalal/meditech-backend/internal/audio"
	"github.com/Afnanksalal/meditech-backend/internal/observability/logging"
	"github.com/Afnanksalal/meditech-backend/internal/observability/metrics"
)

// Runner executes registry models with bounded concurrency. Admission is
// blocking and context-aware; a model panic is isolated to its own run.
type Runner struct {
	registry *Registry
	sem      *semaphore.Weighted
	logger   zerolog.Logger
}

// NewRunner creates a Runner allowing at most workers concurrent inferences.
func NewRunner(registry *Registry, workers int) *Runner {
	if workers <= 0 {
		workers = 1
	}
	return &Runner{
		registry: registry,
		sem:      semaphore.NewWeighted(int64(workers)),
		logger:   logging.WithComponent("speech.runner"),
	}
}

// Run transcribes sample through the model registered under key. The result
// text is trimmed. A missing key returns ErrModelNotFound.
func (r *Runner) Run(ctx context.Context, key string, sample audio.Sample) (Result, error) {
	model, ok := r.registry.Get(key)
	if !ok {
		r.logger.Error().Str("modelKey", key).Msg("Requested model is not registered")
		return Result{ModelKey: key}, fmt.Errorf("%w: %s", ErrModelNotFound, key)
	}

	if err := r.sem.Acquire(ctx, 1); err != nil {
		return Result{ModelKey: key}, fmt.Errorf("acquire inference slot: %w", err)
	}
	defer r.sem.Release(1)

	start := time.Now()
	text, err := r.invoke(ctx, model, sample)
	duration := time.Since(start)

	if err != nil {
		metrics.DefaultMetrics.RecordInference(key, "error", duration.Seconds())
		r.logger.Error().
			Str("modelKey", key).
			Dur("duration", duration).
			Err(err).
			Msg("Inference failed")
		return Result{ModelKey: key}, err
	}

	text = strings.TrimSpace(text)
	metrics.DefaultMetrics.RecordInference(key, "success", duration.Seconds())
	r.logger.Debug().
		Str("modelKey", key).
		Dur("duration", duration).
		Int("textLen", len(text)).
		Msg("Inference completed")
	return Result{Text: text, ModelKey: key}, nil
}

// invoke converts a panicking model into an error return.
func (r *Runner) invoke(ctx context.Context, model Model, sample audio.Sample) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("model panic: %v", rec)
		}
	}()
	return model.Transcribe(ctx, sample)
}
