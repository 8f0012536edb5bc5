package workers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/twissamodiofficial/MediQuery-Assist/internal/models"
	"github.com/twissamodiofficial/MediQuery-Assist/internal/providers/stt"
	"github.com/twissamodiofficial/MediQuery-Assist/internal/services"
)

// VoiceWorkerPool drains queued audio chunks from a Redis stream,
// transcribes them, runs the text through a chat turn, and publishes the
// results on the session's pub/sub channels.
type VoiceWorkerPool struct {
	Redis      *redis.Client
	STT        stt.Provider
	Chat       *services.ChatService
	NumWorkers int

	Logger *logrus.Logger

	Stream         string
	Group          string
	ConsumerPrefix string
}

func (p *VoiceWorkerPool) Start(ctx context.Context) error {
	if p.Redis == nil || p.STT == nil || p.Chat == nil {
		return errors.New("VoiceWorkerPool missing dependency: Redis/STT/Chat must be set")
	}
	if p.Stream == "" {
		p.Stream = "audio:stream"
	}
	if p.Group == "" {
		p.Group = "voice-workers"
	}
	if p.ConsumerPrefix == "" {
		p.ConsumerPrefix = "c"
	}
	if p.NumWorkers <= 0 {
		p.NumWorkers = 5
	}
	if p.Logger == nil {
		p.Logger = logrus.New()
	}

	_ = p.Redis.XGroupCreateMkStream(ctx, p.Stream, p.Group, "0").Err() // ignore BUSYGROUP

	for i := 0; i < p.NumWorkers; i++ {
		consumer := p.ConsumerPrefix + "-" + strconv.Itoa(i+1)
		go p.runConsumer(ctx, consumer)
	}
	return nil
}

func (p *VoiceWorkerPool) runConsumer(ctx context.Context, consumer string) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := p.Redis.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    p.Group,
			Consumer: consumer,
			Streams:  []string{p.Stream, ">"},
			Count:    10,
			Block:    5 * time.Second,
		}).Result()

		if err != nil {
			if err == redis.Nil {
				continue
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		for _, stream := range res {
			for _, msg := range stream.Messages {
				p.handleMsg(ctx, msg)
				_ = p.Redis.XAck(ctx, p.Stream, p.Group, msg.ID).Err()
			}
		}
	}
}

func normalizeLanguage(v string) string {
	v = strings.TrimSpace(v)
	switch v {
	case "id", "id-ID":
		return "id-ID"
	case "en", "en-US":
		return "en-US"
	default:
		if v == "" {
			return "en-US"
		}
		return v
	}
}

func (p *VoiceWorkerPool) handleMsg(ctx context.Context, msg redis.XMessage) {
	getStr := func(k string) string {
		v, ok := msg.Values[k]
		if !ok || v == nil {
			return ""
		}
		s, _ := v.(string)
		return s
	}

	userID := getStr("user_id")
	sessionID := getStr("session_id")
	chunkIndexStr := getStr("chunk_index")
	if userID == "" || sessionID == "" || chunkIndexStr == "" {
		return
	}
	chunkIndex, _ := strconv.ParseInt(chunkIndexStr, 10, 64)

	log := p.Logger.WithFields(logrus.Fields{
		"redis_id":    msg.ID,
		"session_id":  sessionID,
		"chunk_index": chunkIndex,
	})

	respCh := "session:" + sessionID + ":response"
	statusCh := "session:" + sessionID + ":status"

	language := normalizeLanguage(getStr("language"))

	raw := getStr("audio_base64")
	if raw == "" {
		return
	}
	if i := strings.Index(raw, ","); i >= 0 {
		raw = raw[i+1:] // strip data:...;base64,
	}
	audioBytes, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		log.WithError(err).Warn("base64 decode failed")
		_ = p.Redis.Publish(ctx, statusCh, `{"type":"status","status":"failed","message":"invalid audio_base64","chunk_index":`+strconv.FormatInt(chunkIndex, 10)+`}`).Err()
		return
	}

	// STT
	_ = p.Redis.Publish(ctx, statusCh, `{"type":"status","status":"processing","message":"stt processing","chunk_index":`+strconv.FormatInt(chunkIndex, 10)+`}`).Err()

	text, conf, err := p.STT.Transcribe(ctx, audioBytes, language)
	if err != nil {
		log.WithError(err).Error("stt failed")
		_ = p.Redis.Publish(ctx, statusCh, `{"type":"status","status":"failed","message":"stt failed","chunk_index":`+strconv.FormatInt(chunkIndex, 10)+`}`).Err()
		return
	}
	if strings.TrimSpace(text) == "" {
		_ = p.Redis.Publish(ctx, statusCh, `{"type":"status","status":"failed","message":"no speech recognized","chunk_index":`+strconv.FormatInt(chunkIndex, 10)+`}`).Err()
		return
	}

	sttPayload, _ := json.Marshal(map[string]any{
		"type":        "stt_result",
		"chunk_index": chunkIndex,
		"text":        text,
		"confidence":  conf,
	})
	_ = p.Redis.Publish(ctx, respCh, string(sttPayload)).Err()

	// Chat turn
	start := time.Now()
	_ = p.Redis.Publish(ctx, statusCh, `{"type":"status","status":"processing","message":"reasoning","chunk_index":`+strconv.FormatInt(chunkIndex, 10)+`}`).Err()

	out := p.Chat.Chat(ctx, services.ChatInput{
		Text:      text,
		UserID:    userID,
		SessionID: sessionID,
	})

	reply := ""
	if n := len(out.History); n > 0 && out.History[n-1].Role == models.RoleAssistant {
		reply = out.History[n-1].Content
	}

	donePayload, _ := json.Marshal(map[string]any{
		"type":               "chat_reply",
		"chunk_index":        chunkIndex,
		"reply":              reply,
		"processing_time_ms": time.Since(start).Milliseconds(),
	})
	_ = p.Redis.Publish(ctx, respCh, string(donePayload)).Err()
	_ = p.Redis.Publish(ctx, statusCh, `{"type":"status","status":"done","message":"chunk processed","chunk_index":`+strconv.FormatInt(chunkIndex, 10)+`}`).Err()
}
