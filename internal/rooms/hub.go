package rooms

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Afnanksalal/meditech-backend/internal/observability/logging"
	"github.com/Afnanksalal/meditech-backend/internal/observability/metrics"
)

// ICEServer is a single STUN/TURN entry in the WebRTC bootstrap.
type ICEServer struct {
	URLs string `json:"urls"`
}

// ICEConfig is the WebRTC configuration pushed to joining clients.
type ICEConfig struct {
	ICEServers []ICEServer `json:"iceServers"`
}

// DefaultICEConfig returns the public STUN servers used when no TURN
// infrastructure is configured.
func DefaultICEConfig() ICEConfig {
	return ICEConfig{ICEServers: []ICEServer{
		{URLs: "stun:stun.l.google.com:19302"},
		{URLs: "stun:stun1.l.google.com:19302"},
		{URLs: "stun:stun2.l.google.com:19302"},
	}}
}

// Envelope frames every inbound socket event.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// push is the outbound counterpart of Envelope.
type push struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// session is the write side of a connected socket. *websocket.Conn
// satisfies it.
type session interface {
	WriteJSON(v any) error
	Close() error
}

// client is one connected socket. Writes go through mu; the underlying
// connection allows a single concurrent writer.
type client struct {
	id   string
	sess session
	mu   sync.Mutex
}

type member struct {
	client   *client
	username string
	seq      int
}

// room tracks its members in join order.
type room struct {
	members map[string]*member
	nextSeq int
}

func newRoom() *room {
	return &room{members: make(map[string]*member)}
}

func (r *room) add(c *client, username string) {
	r.nextSeq++
	r.members[c.id] = &member{client: c, username: username, seq: r.nextSeq}
}

func (r *room) ordered() []*member {
	ms := make([]*member, 0, len(r.members))
	for _, m := range r.members {
		ms = append(ms, m)
	}
	sort.Slice(ms, func(i, j int) bool { return ms[i].seq < ms[j].seq })
	return ms
}

// usernames lists member names in join order.
func (r *room) usernames() []string {
	ms := r.ordered()
	names := make([]string, len(ms))
	for i, m := range ms {
		names[i] = m.username
	}
	return names
}

// clients lists every member's client in join order.
func (r *room) clients() []*client {
	ms := r.ordered()
	cs := make([]*client, len(ms))
	for i, m := range ms {
		cs[i] = m.client
	}
	return cs
}

// clientsExcept lists every member's client but the given one.
func (r *room) clientsExcept(id string) []*client {
	var cs []*client
	for _, m := range r.ordered() {
		if m.client.id == id {
			continue
		}
		cs = append(cs, m.client)
	}
	return cs
}

// Hub relays socket events between consult room members.
type Hub struct {
	ice    ICEConfig
	mu     sync.RWMutex
	rooms  map[string]*room
	logger zerolog.Logger
}

// NewHub creates an empty Hub pushing the given WebRTC config to joiners.
func NewHub(ice ICEConfig) *Hub {
	return &Hub{
		ice:    ice,
		rooms:  make(map[string]*room),
		logger: logging.WithComponent("rooms.hub"),
	}
}

// Active reports whether a room has live state.
func (h *Hub) Active(code string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.rooms[code]
	return ok
}

// Register pre-creates an empty room so freshly allocated codes show up in
// live-collision checks before anyone joins.
func (h *Hub) Register(code string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[code]; !ok {
		h.rooms[code] = newRoom()
	}
}

// connect registers a socket session under a fresh client id.
func (h *Hub) connect(sess session) *client {
	c := &client{id: uuid.NewString(), sess: sess}
	metrics.DefaultMetrics.RecordWSConnect()
	h.logger.Debug().Str("clientId", c.id).Msg("Socket connected")
	return c
}

// disconnect removes the client from every room, notifies the remaining
// members and closes the session. Emptied rooms are dropped.
func (h *Hub) disconnect(c *client) {
	type departure struct {
		username string
		peers    []*client
	}
	var left []departure

	h.mu.Lock()
	for code, r := range h.rooms {
		m, ok := r.members[c.id]
		if !ok {
			continue
		}
		delete(r.members, c.id)
		left = append(left, departure{username: m.username, peers: r.clients()})
		if len(r.members) == 0 {
			delete(h.rooms, code)
		}
	}
	h.mu.Unlock()

	for _, d := range left {
		for _, peer := range d.peers {
			h.send(peer, "user_left", userLeftPayload{UserID: c.id, Username: d.username})
		}
	}
	_ = c.sess.Close()
	metrics.DefaultMetrics.RecordWSDisconnect()
	h.logger.Debug().Str("clientId", c.id).Msg("Socket disconnected")
}

// dispatch routes one inbound envelope to its event handler.
func (h *Hub) dispatch(c *client, env Envelope) {
	metrics.DefaultMetrics.RecordWSMessage()
	switch env.Event {
	case "join_room":
		h.handleJoin(c, env.Data)
	case "leave_room":
		h.handleLeave(c, env.Data)
	case "signal":
		h.handleSignal(c, env.Data)
	case "message":
		h.handleMessage(c, env.Data)
	case "ai_results":
		h.handleAIResults(c, env.Data)
	default:
		h.logger.Debug().Str("event", env.Event).Str("clientId", c.id).Msg("Unknown socket event")
	}
}

type errorPayload struct {
	Message string `json:"message"`
}

type configPayload struct {
	Config ICEConfig `json:"config"`
}

type joinPayload struct {
	RoomID   string `json:"room_id"`
	Username string `json:"username"`
}

type joinedRoomPayload struct {
	RoomID   string   `json:"room_id"`
	Username string   `json:"username"`
	YourSID  string   `json:"your_sid"`
	Users    []string `json:"users"`
}

type alreadyJoinedPayload struct {
	RoomID   string `json:"room_id"`
	Username string `json:"username"`
}

type userJoinedPayload struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

type userLeftPayload struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// handleJoin adds the client to the room, creating unknown rooms on the
// fly. The joiner gets the WebRTC config and the room roster; everyone
// else learns about the new member. Rejoining resends the config and the
// stored username instead of duplicating membership.
func (h *Hub) handleJoin(c *client, raw json.RawMessage) {
	var p joinPayload
	if err := json.Unmarshal(raw, &p); err != nil || p.RoomID == "" {
		h.send(c, "error", errorPayload{Message: "Room ID is required to join."})
		return
	}
	username := p.Username
	if username == "" {
		username = "User_" + c.id[:4]
	}

	h.mu.Lock()
	r, ok := h.rooms[p.RoomID]
	if !ok {
		h.logger.Info().Str("roomCode", p.RoomID).Msg("Room not found, creating it")
		r = newRoom()
		h.rooms[p.RoomID] = r
	}
	if m, joined := r.members[c.id]; joined {
		stored := m.username
		h.mu.Unlock()
		h.logger.Warn().Str("clientId", c.id).Str("roomCode", p.RoomID).Msg("Client already in room")
		h.send(c, "webrtc_config", configPayload{Config: h.ice})
		h.send(c, "already_joined", alreadyJoinedPayload{RoomID: p.RoomID, Username: stored})
		return
	}
	r.add(c, username)
	users := r.usernames()
	peers := r.clientsExcept(c.id)
	h.mu.Unlock()

	h.send(c, "webrtc_config", configPayload{Config: h.ice})
	h.send(c, "joined_room", joinedRoomPayload{
		RoomID:   p.RoomID,
		Username: username,
		YourSID:  c.id,
		Users:    users,
	})
	for _, peer := range peers {
		h.send(peer, "user_joined", userJoinedPayload{UserID: c.id, Username: username})
	}
	h.logger.Info().Str("clientId", c.id).Str("username", username).Str("roomCode", p.RoomID).Msg("Client joined room")
}

// handleLeave removes the client from the room and tells the remaining
// members. Emptied rooms are dropped.
func (h *Hub) handleLeave(c *client, raw json.RawMessage) {
	var p struct {
		RoomID string `json:"room_id"`
	}
	if err := json.Unmarshal(raw, &p); err != nil || p.RoomID == "" {
		return
	}

	h.mu.Lock()
	r, ok := h.rooms[p.RoomID]
	if !ok {
		h.mu.Unlock()
		return
	}
	m, ok := r.members[c.id]
	if !ok {
		h.mu.Unlock()
		return
	}
	delete(r.members, c.id)
	peers := r.clients()
	if len(r.members) == 0 {
		delete(h.rooms, p.RoomID)
	}
	h.mu.Unlock()

	for _, peer := range peers {
		h.send(peer, "user_left", userLeftPayload{UserID: c.id, Username: m.username})
	}
	h.logger.Info().Str("clientId", c.id).Str("roomCode", p.RoomID).Msg("Client left room")
}

type signalInbound struct {
	RoomID string          `json:"room_id"`
	Signal json.RawMessage `json:"signal"`
}

type signalOutbound struct {
	UserID string          `json:"user_id"`
	Signal json.RawMessage `json:"signal"`
}

// handleSignal relays a WebRTC signalling payload (offer, answer or ICE
// candidate) to every other room member, tagged with the sender's id.
// Requires membership; invalid frames are dropped without a reply.
func (h *Hub) handleSignal(c *client, raw json.RawMessage) {
	var p signalInbound
	if err := json.Unmarshal(raw, &p); err != nil || p.RoomID == "" || emptyJSON(p.Signal) {
		h.logger.Warn().Str("clientId", c.id).Msg("Signal missing room or payload")
		return
	}

	h.mu.RLock()
	r, ok := h.rooms[p.RoomID]
	var peers []*client
	if ok {
		if _, joined := r.members[c.id]; joined {
			peers = r.clientsExcept(c.id)
		} else {
			ok = false
		}
	}
	h.mu.RUnlock()
	if !ok {
		h.logger.Warn().Str("clientId", c.id).Str("roomCode", p.RoomID).Msg("Signal for unknown room or non-member")
		return
	}

	out := signalOutbound{UserID: c.id, Signal: p.Signal}
	for _, peer := range peers {
		h.send(peer, "signal", out)
	}
}

type messageInbound struct {
	RoomID    string `json:"room_id"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type messageOutbound struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// handleMessage broadcasts a chat message to the whole room, sender
// included, under the sender's stored username. A client-supplied
// timestamp is kept; otherwise the server stamps the message.
func (h *Hub) handleMessage(c *client, raw json.RawMessage) {
	var p messageInbound
	if err := json.Unmarshal(raw, &p); err != nil || p.RoomID == "" || p.Message == "" {
		return
	}
	if p.Timestamp == "" {
		p.Timestamp = nowISO()
	}

	h.mu.RLock()
	r, ok := h.rooms[p.RoomID]
	var username string
	var targets []*client
	if ok {
		if m, joined := r.members[c.id]; joined {
			username = m.username
			targets = r.clients()
		} else {
			ok = false
		}
	}
	h.mu.RUnlock()
	if !ok {
		h.logger.Warn().Str("clientId", c.id).Str("roomCode", p.RoomID).Msg("Message for unknown room or non-member")
		return
	}

	out := messageOutbound{UserID: c.id, Username: username, Message: p.Message, Timestamp: p.Timestamp}
	for _, t := range targets {
		h.send(t, "message", out)
	}
}

type aiResultsInbound struct {
	RoomID  string          `json:"room_id"`
	Results json.RawMessage `json:"results"`
}

type aiResultsOutbound struct {
	RoomID      string          `json:"room_id"`
	Results     json.RawMessage `json:"results"`
	ProcessedBy string          `json:"processed_by"`
	Timestamp   string          `json:"timestamp"`
}

// handleAIResults broadcasts consult analysis output to the whole room.
// The room must exist but the sender need not be a member; non-members
// are attributed as Unknown.
func (h *Hub) handleAIResults(c *client, raw json.RawMessage) {
	var p aiResultsInbound
	if err := json.Unmarshal(raw, &p); err != nil || p.RoomID == "" || emptyJSON(p.Results) {
		return
	}

	h.mu.RLock()
	r, ok := h.rooms[p.RoomID]
	username := "Unknown"
	var targets []*client
	if ok {
		if m, joined := r.members[c.id]; joined {
			username = m.username
		}
		targets = r.clients()
	}
	h.mu.RUnlock()
	if !ok {
		h.logger.Warn().Str("clientId", c.id).Str("roomCode", p.RoomID).Msg("Analysis results for unknown room")
		return
	}

	out := aiResultsOutbound{
		RoomID:      p.RoomID,
		Results:     p.Results,
		ProcessedBy: username,
		Timestamp:   nowISO(),
	}
	for _, t := range targets {
		h.send(t, "ai_results", out)
	}
	h.logger.Info().Str("roomCode", p.RoomID).Str("processedBy", username).Msg("Broadcasting analysis results")
}

// send writes one event to a client, serialized per connection. Write
// failures are logged only; the dead peer is reaped by its own reader.
func (h *Hub) send(c *client, event string, data any) {
	c.mu.Lock()
	err := c.sess.WriteJSON(push{Event: event, Data: data})
	c.mu.Unlock()
	if err != nil {
		h.logger.Debug().Err(err).Str("clientId", c.id).Str("event", event).Msg("Socket write failed")
	}
}

// emptyJSON reports whether a raw field was absent or null.
func emptyJSON(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

func nowISO() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
