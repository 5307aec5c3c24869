package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/Afnanksalal/meditech-backend/internal/app"
	"github.com/Afnanksalal/meditech-backend/internal/audio"
	"github.com/Afnanksalal/meditech-backend/internal/config"
	"github.com/Afnanksalal/meditech-backend/internal/events"
	"github.com/Afnanksalal/meditech-backend/internal/gemini"
	"github.com/Afnanksalal/meditech-backend/internal/httpapi"
	"github.com/Afnanksalal/meditech-backend/internal/observability"
	"github.com/Afnanksalal/meditech-backend/internal/rooms"
	"github.com/Afnanksalal/meditech-backend/internal/service/advisory"
	"github.com/Afnanksalal/meditech-backend/internal/service/emr"
	"github.com/Afnanksalal/meditech-backend/internal/service/pipeline"
	"github.com/Afnanksalal/meditech-backend/internal/service/speech"
	"github.com/Afnanksalal/meditech-backend/internal/service/speech/googlestt"
	"github.com/Afnanksalal/meditech-backend/internal/service/speech/mock"
	"github.com/Afnanksalal/meditech-backend/internal/service/speech/whisperserver"
)

func main() {
	cfg := config.Load()

	application := app.New(cfg)
	if err := application.Start(); err != nil {
		application.Logger.Fatal().Err(err).Msg("Startup failed")
	}
	logger := application.Logger

	metricsServer := observability.NewServer(":" + cfg.Observability.MetricsPort)
	metricsServer.Start()

	ctx := context.Background()

	registry, speechCleanup, err := buildSpeechRegistry(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Speech model setup failed")
	}
	defer speechCleanup()

	runner := speech.NewRunner(registry, cfg.Speech.Workers)
	detector := speech.NewDetector(runner, speech.NewClassifier(), cfg.Detect.Window, cfg.Detect.MinTextLen)

	genClient := gemini.New(cfg.Gemini.APIKey,
		gemini.WithModel(cfg.Gemini.Model),
		gemini.WithBaseURL(cfg.Gemini.BaseURL),
		gemini.WithTimeout(cfg.Gemini.Timeout),
		gemini.WithRetries(cfg.Gemini.Retries),
		gemini.WithRetryDelay(cfg.Gemini.RetryDelay),
	)

	pipe := pipeline.New(detector, runner, emr.NewTranslator(genClient), emr.NewExtractor(genClient))
	advisor := advisory.NewAdvisor(genClient)

	ingestor := audio.NewIngestor(audio.NewConverter(cfg.Audio.FFmpegPath, cfg.Audio.TargetSampleRate))

	publisher := events.New(&events.Config{
		Enabled:   cfg.Kafka.Enabled,
		Brokers:   cfg.Kafka.Brokers,
		Topic:     cfg.Kafka.Topic,
		Principal: cfg.Kafka.Principal,
	})
	defer publisher.Close()

	store, err := buildRoomStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Room store setup failed")
	}
	defer store.Close(context.Background())

	hub := rooms.NewHub(rooms.DefaultICEConfig())
	manager := rooms.NewManager(store, hub)

	router := httpapi.NewRouter(httpapi.Deps{
		Ingestor:       ingestor,
		Processor:      pipe,
		Advisor:        advisor,
		Rooms:          manager,
		Publisher:      publisher,
		Hub:            hub,
		MaxUploadBytes: cfg.HTTP.MaxUploadBytes,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.HTTP.Port,
		Handler: router,
		// Websocket sessions are long-lived, so only header reads and idle
		// keep-alives get deadlines.
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		logger.Info().Str("port", cfg.HTTP.Port).Msg("Meditech backend listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("HTTP serve failed")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info().Msg("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP shutdown failed")
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Metrics server shutdown failed")
	}
	application.Shutdown()
}

// buildSpeechRegistry assembles one transcription model per language for the
// configured provider. The returned cleanup releases any remote clients.
func buildSpeechRegistry(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*speech.Registry, func(), error) {
	cleanup := func() {}

	switch cfg.Speech.Provider {
	case "mock":
		logger.Warn().Msg("Using mock speech models; transcripts are canned")
		return speech.NewRegistry(map[string]speech.Model{
			speech.ModelKeyEnglish:   mock.New(speech.LanguageEnglish),
			speech.ModelKeyMalayalam: mock.New(speech.LanguageMalayalam),
		}), cleanup, nil

	case "whisper":
		return speech.NewRegistry(map[string]speech.Model{
			speech.ModelKeyEnglish:   whisperserver.New(cfg.Speech.WhisperEnglish, "en"),
			speech.ModelKeyMalayalam: whisperserver.New(cfg.Speech.WhisperMalayalam, "ml"),
		}), cleanup, nil

	case "google":
		en, err := googlestt.New(ctx, cfg.Speech.GoogleLangEN)
		if err != nil {
			return nil, cleanup, fmt.Errorf("google stt (en): %w", err)
		}
		ml, err := googlestt.New(ctx, cfg.Speech.GoogleLangML)
		if err != nil {
			_ = en.Close()
			return nil, cleanup, fmt.Errorf("google stt (ml): %w", err)
		}
		cleanup = func() {
			_ = en.Close()
			_ = ml.Close()
		}
		return speech.NewRegistry(map[string]speech.Model{
			speech.ModelKeyEnglish:   en,
			speech.ModelKeyMalayalam: ml,
		}), cleanup, nil
	}

	return nil, cleanup, fmt.Errorf("unknown speech provider %q", cfg.Speech.Provider)
}

// buildRoomStore picks the persistent store when a database is configured
// and the in-memory one otherwise.
func buildRoomStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (rooms.Store, error) {
	if cfg.Database.URL == "" {
		logger.Warn().Msg("DATABASE_URL not set; room codes are stored in memory only")
		return rooms.NewMemoryStore(), nil
	}
	store, err := rooms.NewPGStore(ctx, cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	logger.Info().Msg("Postgres room store ready")
	return store, nil
}
