package speech

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Afnanksalal/meditech-backend/internal/audio"
	"github.com/Afnanksalal/meditech-backend/internal/observability/logging"
)

const (
	// DefaultWindow is the leading audio window used for detection.
	DefaultWindow = 30 * time.Second
	// DefaultMinTextLen is the minimum output length worth classifying.
	DefaultMinTextLen = 10
)

// TextClassifier assigns an ISO 639-1 code to text.
type TextClassifier interface {
	Classify(text string) (string, bool)
}

// Detector resolves the spoken language of a sample by transcribing its
// leading window with both language models and classifying the outputs.
type Detector struct {
	runner     *Runner
	classifier TextClassifier
	window     time.Duration
	minTextLen int
	logger     zerolog.Logger
}

// NewDetector creates a Detector. Non-positive window or minTextLen fall
// back to the defaults.
func NewDetector(runner *Runner, classifier TextClassifier, window time.Duration, minTextLen int) *Detector {
	if window <= 0 {
		window = DefaultWindow
	}
	if minTextLen <= 0 {
		minTextLen = DefaultMinTextLen
	}
	return &Detector{
		runner:     runner,
		classifier: classifier,
		window:     window,
		minTextLen: minTextLen,
		logger:     logging.WithComponent("speech.detector"),
	}
}

// Detect returns the resolved language for sample. It is total: any
// combination of model or classifier failures resolves to a member of the
// language set, defaulting to English.
func (d *Detector) Detect(ctx context.Context, sample audio.Sample) Language {
	segment := sample.Leading(d.window)
	d.logger.Debug().
		Dur("window", d.window).
		Dur("segment", segment.Duration()).
		Msg("Starting automatic language detection")

	// Both models run to completion; one failing must not cancel the other.
	var wg sync.WaitGroup
	var mlResult, enResult Result
	var mlErr, enErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		mlResult, mlErr = d.runner.Run(ctx, ModelKeyMalayalam, segment)
	}()
	go func() {
		defer wg.Done()
		enResult, enErr = d.runner.Run(ctx, ModelKeyEnglish, segment)
	}()
	wg.Wait()

	mlGuess := d.classify(mlResult, mlErr)
	enGuess := d.classify(enResult, enErr)

	lang := resolve(mlGuess, enGuess)
	d.logger.Info().
		Str("mlGuess", mlGuess).
		Str("enGuess", enGuess).
		Str("language", lang.String()).
		Msg("Language detection resolved")
	return lang
}

// classify returns the guess for one model's output, or "" when the run
// failed or produced too little text to classify reliably.
func (d *Detector) classify(res Result, err error) string {
	if err != nil {
		return ""
	}
	if len(res.Text) < d.minTextLen {
		return ""
	}
	code, ok := d.classifier.Classify(res.Text)
	if !ok {
		return ""
	}
	return code
}

// resolve applies the ordered decision table over the two guesses; the empty
// string stands for "no classification". The first matching case wins. The
// table privileges agreement, then a model recognizing its own language;
// every conflict falls back to English.
func resolve(mlGuess, enGuess string) Language {
	switch {
	case mlGuess == "ml" && enGuess != "en":
		return LanguageMalayalam
	case enGuess == "en" && mlGuess != "ml":
		return LanguageEnglish
	case mlGuess == "ml" && enGuess == "ml":
		return LanguageMalayalam
	case mlGuess == "en" && enGuess == "en":
		return LanguageEnglish
	case mlGuess == "ml" && enGuess == "":
		return LanguageMalayalam
	case enGuess == "en" && mlGuess == "":
		return LanguageEnglish
	default:
		return LanguageEnglish
	}
}
