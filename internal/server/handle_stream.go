package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"nhooyr.io/websocket"

	"github.com/playperu/trivia/internal/output"
)

// handleStream sends the community's messages over a WebSocket. Anything
// the client sends is ignored.
func handleStream(logger *slog.Logger, broker *output.Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accept := channelFilter(output.ChannelID(r.URL.Query().Get("channel")))

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			logger.Error("websocket accept failed", "error", err)
			return
		}
		defer conn.CloseNow()

		community := communityFrom(r)
		ch := broker.Subscribe(community)
		defer broker.Unsubscribe(community, ch)

		ctx := conn.CloseRead(r.Context())
		ping := time.NewTicker(30 * time.Second)
		defer ping.Stop()

		for {
			select {
			case <-ctx.Done():
				logger.Debug("websocket stream ended", "community", string(community), "error", ctx.Err())
				return
			case data := <-ch:
				if !accept(data) {
					continue
				}
				wctx, cancel := context.WithTimeout(ctx, 5*time.Second)
				err := conn.Write(wctx, websocket.MessageText, data)
				cancel()
				if err != nil {
					logger.Debug("websocket write failed", "error", err)
					return
				}
			case <-ping.C:
				pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
				err := conn.Ping(pctx)
				cancel()
				if err != nil {
					logger.Debug("websocket ping failed", "error", err)
					return
				}
			}
		}
	}
}
