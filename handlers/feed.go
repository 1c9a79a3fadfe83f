package handlers

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"deepessays.dev/deep-essays/posts"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// GetFeed returns a one-shot snapshot of the requested feed.
func GetFeed(svc *posts.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := SessionFromContext(r)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		mode, err := posts.ParseFeedMode(r.URL.Query().Get("mode"))
		if err != nil {
			writeServiceError(w, err)
			return
		}

		feed, err := svc.ListFeed(r.Context(), session.UserID, mode)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, feed)
	}
}

// LiveFeed upgrades to a websocket and pushes the full ordered feed on
// every change until the client disconnects.
func LiveFeed(svc *posts.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := SessionFromContext(r)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		mode, err := posts.ParseFeedMode(r.URL.Query().Get("mode"))
		if err != nil {
			writeServiceError(w, err)
			return
		}

		feedCh, err := svc.WatchFeed(r.Context(), session.UserID, mode)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("[FEED] websocket upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		// Reader goroutine: its only job is to notice the client going
		// away, which cancels r.Context() when the handler returns.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case feed, ok := <-feedCh:
				if !ok {
					return
				}
				if err := conn.WriteJSON(feed); err != nil {
					log.Printf("[FEED] websocket write failed: %v", err)
					return
				}
			case <-done:
				return
			}
		}
	}
}
