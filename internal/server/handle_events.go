package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/playperu/trivia/internal/output"
)

// channelFilter returns whether a broker message should be forwarded to a
// subscriber that asked for channel. An empty channel accepts everything.
func channelFilter(channel output.ChannelID) func(data []byte) bool {
	if channel == "" {
		return func([]byte) bool { return true }
	}
	return func(data []byte) bool {
		var msg output.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			return false
		}
		return msg.Channel == channel
	}
}

func eventName(data []byte) string {
	var msg struct {
		Payload *struct {
			Kind string `json:"kind"`
		} `json:"payload"`
	}
	if json.Unmarshal(data, &msg) == nil && msg.Payload != nil {
		return msg.Payload.Kind
	}
	return "message"
}

func handleEvents(broker *output.Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming not supported")
			return
		}
		accept := channelFilter(output.ChannelID(r.URL.Query().Get("channel")))

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		flusher.Flush()

		community := communityFrom(r)
		ch := broker.Subscribe(community)
		defer broker.Unsubscribe(community, ch)

		ping := time.NewTicker(30 * time.Second)
		defer ping.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case data := <-ch:
				if !accept(data) {
					continue
				}
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventName(data), data)
				flusher.Flush()
			case <-ping.C:
				fmt.Fprintf(w, ": ping\n\n")
				flusher.Flush()
			}
		}
	}
}
