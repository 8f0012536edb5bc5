package services

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/twissamodiofficial/MediQuery-Assist/internal/providers/stt"
	"github.com/twissamodiofficial/MediQuery-Assist/internal/utils"
)

// VoiceService turns recorded audio into a chat turn: transcribe first,
// then hand the text to the conversation orchestrator.
type VoiceService struct {
	stt  stt.Provider
	chat *ChatService
	log  *logrus.Logger
}

// VoiceResult carries the recognized text alongside the resulting chat
// output so callers can echo what was heard.
type VoiceResult struct {
	Transcript string
	Confidence float64
	Output     ChatOutput
}

func NewVoiceService(provider stt.Provider, chat *ChatService, log *logrus.Logger) *VoiceService {
	if log == nil {
		log = logrus.New()
	}
	return &VoiceService{stt: provider, chat: chat, log: log}
}

// Chat transcribes audio and runs the text through a normal chat turn.
// Empty audio or a missing session short-circuits without calling the
// recognizer.
func (s *VoiceService) Chat(ctx context.Context, in ChatInput, audio []byte, language string) (VoiceResult, error) {
	const op = "VoiceService.Chat"

	if in.UserID == "" || in.SessionID == "" {
		return VoiceResult{Output: s.chat.Chat(ctx, in)}, nil
	}
	if len(audio) == 0 {
		return VoiceResult{}, utils.E(utils.CodeInvalidArgument, op, "audio is empty", nil)
	}

	text, confidence, err := s.stt.Transcribe(ctx, audio, language)
	if err != nil {
		return VoiceResult{}, utils.E(utils.CodeUnavailable, op, "transcription failed", err)
	}
	if strings.TrimSpace(text) == "" {
		return VoiceResult{}, utils.E(utils.CodeInvalidArgument, op, "no speech recognized", nil)
	}

	s.log.WithFields(logrus.Fields{
		"session_id": in.SessionID,
		"confidence": confidence,
	}).Info("voice transcribed")

	in.Text = text
	return VoiceResult{
		Transcript: text,
		Confidence: confidence,
		Output:     s.chat.Chat(ctx, in),
	}, nil
}
