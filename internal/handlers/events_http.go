package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/Mbalsss/ServiceDesk-sub001/internal/realtime"
	"github.com/Mbalsss/ServiceDesk-sub001/internal/utils"
)

// Events streams hub events as server-sent events. The subscription lives
// for exactly as long as the request: client disconnect cancels the request
// context, which tears the handle down.
//
// GET /api/events?topics=tickets,notifications
func Events(hub *realtime.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			utils.Error(w, http.StatusInternalServerError, "streaming unsupported")
			return
		}

		var topics []string
		if s := strings.TrimSpace(r.URL.Query().Get("topics")); s != "" {
			for _, tp := range strings.Split(s, ",") {
				if tp = strings.TrimSpace(tp); tp != "" {
					topics = append(topics, tp)
				}
			}
		}

		sub := hub.Subscribe(topics...)
		defer sub.Close()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		for {
			select {
			case <-r.Context().Done():
				return
			case ev, open := <-sub.C:
				if !open {
					return
				}
				data, err := json.Marshal(ev)
				if err != nil {
					continue
				}
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Topic, data)
				flusher.Flush()
			}
		}
	}
}
