// Package httpapi exposes the service over HTTP: consult ingestion, the
// standalone advisory endpoints, room management and the realtime websocket
// entry point.
package httpapi

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/Afnanksalal/meditech-backend/internal/audio"
	"github.com/Afnanksalal/meditech-backend/internal/observability/logging"
	"github.com/Afnanksalal/meditech-backend/internal/service/advisory"
	"github.com/Afnanksalal/meditech-backend/internal/service/pipeline"
)

// DefaultMaxUploadBytes caps consult uploads when Deps does not say
// otherwise.
const DefaultMaxUploadBytes = 10 << 20

// Ingestor turns an uploaded audio stream into a pipeline-ready sample.
type Ingestor interface {
	FromUpload(ctx context.Context, filename string, r io.Reader) (audio.Sample, error)
}

// Processor runs a consult through the speech pipeline.
type Processor interface {
	Process(ctx context.Context, req pipeline.Request) (*pipeline.Response, error)
}

// Advisor generates the standalone advisory texts.
type Advisor interface {
	SuggestSpecialty(ctx context.Context, in advisory.SpecialtyInput) (string, error)
	SuggestDietPlan(ctx context.Context, in advisory.DietInput) (string, error)
}

// RoomService allocates and checks consult room codes.
type RoomService interface {
	Create(ctx context.Context) (string, error)
	Exists(ctx context.Context, code string) (bool, error)
}

// Publisher emits the completed-consult event.
type Publisher interface {
	PublishConsult(ctx context.Context, key string, event any) error
}

// Realtime serves the websocket signaling endpoint.
type Realtime interface {
	ServeWS(w http.ResponseWriter, r *http.Request)
}

// Deps carries the collaborators behind the HTTP surface. Publisher and Hub
// are optional; the rest must be set.
type Deps struct {
	Ingestor  Ingestor
	Processor Processor
	Advisor   Advisor
	Rooms     RoomService
	Publisher Publisher
	Hub       Realtime
	// MaxUploadBytes caps consult uploads. Zero means DefaultMaxUploadBytes.
	MaxUploadBytes int64
}

type api struct {
	deps      Deps
	maxUpload int64
	logger    zerolog.Logger
}

// NewRouter constructs the HTTP router for the service.
func NewRouter(deps Deps) http.Handler {
	a := &api{
		deps:      deps,
		maxUpload: deps.MaxUploadBytes,
		logger:    logging.WithComponent("httpapi"),
	}
	if a.maxUpload <= 0 {
		a.maxUpload = DefaultMaxUploadBytes
	}

	r := chi.NewRouter()

	// Basic middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger)
	r.Use(Recover)

	r.Get("/", a.handleRoot)

	// Health endpoints
	r.Get("/v1/liveness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/v1/readiness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Post("/asr", a.handleConsult)
		r.Post("/generate_doctor_suggestion", a.handleDoctorSuggestion)
		r.Post("/generate_diet_plan", a.handleDietPlan)
		r.Post("/create_room", a.handleCreateRoom)
		r.Get("/check_room/{roomID}", a.handleCheckRoom)
	})

	if deps.Hub != nil {
		r.Get("/ws", deps.Hub.ServeWS)
	}

	return r
}

// handleRoot reports the service banner.
func (a *api) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Welcome to the Integrated Medical API",
		"status":  "OK",
	})
}
