package webserver

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/agusx1211/promptarena/internal/battle"
)

const wsSubscriberBuffer = 64

type wsEnvelope struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// handleRoundsWebSocket streams the session's round events. A client that
// falls behind loses events rather than stalling the round; every envelope
// carries the full timer state, so the next one resynchronizes it.
func (srv *Server) handleRoundsWebSocket(w http.ResponseWriter, r *http.Request) {
	// Subscribe before the handshake completes so a client sees every event
	// published after Dial returns.
	events, unsubscribe := srv.session.Events.Subscribe(wsSubscriberBuffer)
	defer unsubscribe()

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		return
	}
	defer ws.CloseNow()

	// Clients never send; CloseRead handles their close frame and cancels
	// ctx when the peer goes away.
	ctx := ws.CloseRead(r.Context())

	if rd := srv.session.Round(); rd != nil {
		if err := writeEnvelope(ctx, ws, wsEnvelope{Type: "snapshot", Data: srv.roundResponse(rd)}); err != nil {
			return
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-srv.runCtx.Done():
			ws.Close(websocket.StatusGoingAway, "server shutting down")
			return
		case ev, ok := <-events:
			if !ok {
				ws.Close(websocket.StatusNormalClosure, "session closed")
				return
			}
			if err := writeEnvelope(ctx, ws, toWSEnvelope(ev)); err != nil {
				return
			}
		}
	}
}

func writeEnvelope(ctx context.Context, ws *websocket.Conn, msg wsEnvelope) error {
	writeCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	return wsjson.Write(writeCtx, ws, msg)
}

func toWSEnvelope(ev battle.Event) wsEnvelope {
	return wsEnvelope{Type: string(ev.Kind), Data: ev}
}
