package rooms

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/Afnanksalal/meditech-backend/internal/observability/logging"
	"github.com/Afnanksalal/meditech-backend/internal/observability/metrics"
)

// createAttempts bounds code generation retries on collision or store
// failure.
const createAttempts = 5

// ErrNoFreeCode is returned when every create attempt collided or failed.
var ErrNoFreeCode = errors.New("no free room code after retries")

// Presence exposes the live room state, normally the websocket hub. Rooms
// opened over the socket layer never reach the store, so code allocation
// must consult both sides.
type Presence interface {
	Active(code string) bool
	Register(code string)
}

// Manager allocates room codes against the store while keeping the live
// hub state in sync.
type Manager struct {
	store    Store
	presence Presence
	generate func() (string, error)
	logger   zerolog.Logger
}

// NewManager creates a Manager. presence may be nil when no socket hub is
// running.
func NewManager(store Store, presence Presence) *Manager {
	return &Manager{
		store:    store,
		presence: presence,
		generate: func() (string, error) { return GenerateCode(CodeLength) },
		logger:   logging.WithComponent("rooms"),
	}
}

// Create allocates a fresh room code. Codes colliding with a live room are
// regenerated, and any store failure counts against the attempt budget.
// The new room is registered with the live hub on success.
func (m *Manager) Create(ctx context.Context) (string, error) {
	for attempt := 0; attempt < createAttempts; attempt++ {
		code, err := m.generate()
		if err != nil {
			return "", err
		}
		if m.presence != nil && m.presence.Active(code) {
			continue
		}
		if err := m.store.CreateRoom(ctx, code); err != nil {
			m.logger.Warn().Err(err).Str("roomCode", code).Msg("Room insert failed, retrying")
			continue
		}
		if m.presence != nil {
			m.presence.Register(code)
		}
		metrics.DefaultMetrics.RecordRoomCreated()
		m.logger.Info().Str("roomCode", code).Msg("Room created")
		return code, nil
	}
	return "", ErrNoFreeCode
}

// Exists reports whether a room code is stored.
func (m *Manager) Exists(ctx context.Context, code string) (bool, error) {
	return m.store.RoomExists(ctx, code)
}
