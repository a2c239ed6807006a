package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	suggestWSWriteWait = 10 * time.Second
	suggestWSPongWait  = 60 * time.Second
	suggestWSPingEvery = (suggestWSPongWait * 9) / 10
)

var suggestWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type suggestWSInbound struct {
	Prefix string `json:"prefix"`
	Limit  *int   `json:"limit,omitempty"`
}

type suggestWSOutbound struct {
	Prefix      string   `json:"prefix"`
	Suggestions []string `json:"suggestions"`
	Error       string   `json:"error,omitempty"`
}

// HandleSuggestWS answers one suggestion list per prefix the client sends,
// for as-you-type completion without a request per keystroke.
func (h *Handler) HandleSuggestWS(w http.ResponseWriter, r *http.Request) {
	conn, err := suggestWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(suggestWSPongWait)); err != nil {
		h.logger().Warn("suggest ws set read deadline", "err", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(suggestWSPongWait))
	})

	writeCh := make(chan suggestWSOutbound, 16)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(suggestWSPingEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case out := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(suggestWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(suggestWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()
	defer func() {
		cancel()
		<-writerDone
	}()

	def, hi := h.bounds()
	for {
		var in suggestWSInbound
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger().Debug("suggest ws closed", "err", err)
			}
			return
		}
		limit := def
		if in.Limit != nil {
			if *in.Limit < 0 {
				pushSuggestWS(writeCh, suggestWSOutbound{
					Prefix:      in.Prefix,
					Suggestions: []string{},
					Error:       "invalid limit",
				})
				continue
			}
			limit = min(*in.Limit, hi)
		}
		pushSuggestWS(writeCh, suggestWSOutbound{
			Prefix:      in.Prefix,
			Suggestions: h.suggest(in.Prefix, limit),
		})
	}
}

// pushSuggestWS never blocks the reader; when the client falls behind the
// oldest pending answer is dropped.
func pushSuggestWS(writeCh chan suggestWSOutbound, out suggestWSOutbound) {
	select {
	case writeCh <- out:
		return
	default:
	}
	select {
	case <-writeCh:
	default:
	}
	select {
	case writeCh <- out:
	default:
	}
}
