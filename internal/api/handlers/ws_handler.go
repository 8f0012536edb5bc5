package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

type WSHandler struct {
	redis    *redis.Client
	stream   string
	upgrader websocket.Upgrader
}

func NewWSHandler(rdb *redis.Client, stream string) *WSHandler {
	if stream == "" {
		stream = "audio:stream"
	}
	return &WSHandler{
		redis:  rdb,
		stream: stream,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true }, // TODO: restrict origin in prod
		},
	}
}

type wsClientMsg struct {
	Type        string `json:"type"`
	ChunkIndex  int64  `json:"chunk_index"`
	AudioBase64 string `json:"audio_base64"`
	Language    string `json:"language"`
}

type wsConn struct {
	c  *websocket.Conn
	mu sync.Mutex
}

func (w *wsConn) writeText(b []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.c.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return w.c.WriteMessage(websocket.TextMessage, b)
}

// VoiceWS streams spoken turns: the client sends audio_chunk frames, a
// worker pool transcribes and answers them, and results flow back over
// the same socket via Redis pub/sub.
func (h *WSHandler) VoiceWS(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	sessionID, ok := requireSessionID(c)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// upgrade already wrote response in most cases
		return
	}
	defer conn.Close()

	wc := &wsConn{c: conn}
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	respCh := "session:" + sessionID + ":response"
	statusCh := "session:" + sessionID + ":status"

	pubsub := h.redis.Subscribe(ctx, respCh, statusCh)
	defer pubsub.Close()

	// reader: WS -> Redis Stream
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		conn.SetPongHandler(func(string) error {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			return nil
		})

		for {
			_, data, rerr := conn.ReadMessage()
			if rerr != nil {
				return
			}

			var msg wsClientMsg
			if err := json.Unmarshal(data, &msg); err != nil {
				_ = wc.writeText([]byte(`{"type":"error","code":"INVALID_ARGUMENT","message":"invalid json"}`))
				continue
			}

			switch msg.Type {
			case "audio_chunk":
				if msg.ChunkIndex <= 0 {
					_ = wc.writeText([]byte(`{"type":"error","code":"INVALID_ARGUMENT","message":"chunk_index must be > 0"}`))
					continue
				}
				if msg.AudioBase64 == "" {
					_ = wc.writeText([]byte(`{"type":"error","code":"INVALID_ARGUMENT","message":"audio_base64 required"}`))
					continue
				}

				fields := map[string]any{
					"user_id":      userID,
					"session_id":   sessionID,
					"chunk_index":  strconv.FormatInt(msg.ChunkIndex, 10),
					"language":     msg.Language,
					"audio_base64": msg.AudioBase64,
					"ts_unix":      strconv.FormatInt(time.Now().UTC().Unix(), 10),
				}

				if err := h.redis.XAdd(ctx, &redis.XAddArgs{
					Stream: h.stream,
					Values: fields,
				}).Err(); err != nil {
					_ = wc.writeText([]byte(`{"type":"error","code":"UNAVAILABLE","message":"failed to enqueue audio"}`))
					continue
				}

				_ = h.redis.Publish(ctx, statusCh, `{"type":"status","status":"processing","message":"audio chunk queued","chunk_index":`+strconv.FormatInt(msg.ChunkIndex, 10)+`}`).Err()

			default:
				_ = wc.writeText([]byte(`{"type":"error","code":"INVALID_ARGUMENT","message":"unknown message type"}`))
			}
		}
	}()

	// writer: Redis Pub/Sub -> WS
	for {
		select {
		case <-readDone:
			return
		case <-ctx.Done():
			return
		default:
			m, err := pubsub.ReceiveMessage(ctx)
			if err != nil {
				return
			}
			if werr := wc.writeText([]byte(m.Payload)); werr != nil {
				return
			}
		}
	}
}
