package istream

import (
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades r and feeds every binary message it receives
// into reassembler, one Consume call per WebSocket frame, until the
// client disconnects; text messages are skipped. Any io source can drive
// a Reassembler, and a WebSocket connection is the one this runtime
// ships a handler for.
func ServeWebSocket(reassembler *Reassembler, w http.ResponseWriter, r *http.Request) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return nil
		}
		if msgType != websocket.BinaryMessage {
			continue
		}
		if err := reassembler.Consume(data); err != nil {
			return err
		}
	}
}
