package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/ai-tutor/internal/retrieval"
	"github.com/ziadkadry99/ai-tutor/internal/tutor"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// chatRequest is the incoming websocket message.
type chatRequest struct {
	Content string `json:"content"`
}

// chatMessage is the outgoing websocket message. Type is "response" or
// "error"; errors carry only Content.
type chatMessage struct {
	Type       string                  `json:"type"`
	ID         string                  `json:"id,omitempty"`
	Role       string                  `json:"role,omitempty"`
	Content    string                  `json:"content"`
	HasContext bool                    `json:"hasContext,omitempty"`
	Results    []retrieval.SearchMatch `json:"results,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("server: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	client := clientID(r)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("server: websocket read: %v", err)
			}
			return
		}

		var req chatRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			sendChat(conn, chatMessage{Type: "error", Content: "invalid message format"})
			continue
		}

		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		resp, err := s.tutor.Ask(ctx, client, req.Content)
		cancel()
		if err != nil {
			te := tutor.AsError(err)
			if te.Kind == tutor.KindInternal {
				log.Printf("server: chat: %v", err)
			}
			sendChat(conn, chatMessage{Type: "error", Content: te.Message})
			continue
		}

		sendChat(conn, chatMessage{
			Type:       "response",
			ID:         uuid.NewString(),
			Role:       "assistant",
			Content:    resp.AIResponse,
			HasContext: resp.HasContext,
			Results:    resp.Results,
		})
	}
}

func sendChat(conn *websocket.Conn, m chatMessage) {
	if err := conn.WriteJSON(m); err != nil {
		log.Printf("server: websocket write: %v", err)
	}
}
