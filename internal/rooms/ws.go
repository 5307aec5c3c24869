package rooms

import (
	"net/http"

	"github.com/gorilla/websocket"
)

// Cross-origin browser clients are allowed, matching the open CORS policy
// of the HTTP surface.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// ServeWS upgrades the request and pumps inbound events until the peer
// disconnects. Room membership is cleaned up on exit.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("Websocket upgrade failed")
		return
	}

	c := h.connect(conn)
	defer h.disconnect(c)
	for {
		var env Envelope
		if err := conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Debug().Err(err).Str("clientId", c.id).Msg("Socket read failed")
			}
			return
		}
		h.dispatch(c, env)
	}
}
