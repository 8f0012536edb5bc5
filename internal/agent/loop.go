package agent

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/twissamodiofficial/MediQuery-Assist/internal/models"
	"github.com/twissamodiofficial/MediQuery-Assist/internal/providers/llm"
)

// ErrTooComplex signals that a run burned through the step budget without
// the model settling on an answer.
var ErrTooComplex = errors.New("reasoning step budget exceeded")

const defaultMaxSteps = 25

// CheckpointStore persists the full message history per session so a later
// turn resumes the same conversation.
type CheckpointStore interface {
	// Load returns the stored history, or an empty slice when the session
	// has no checkpoint yet.
	Load(ctx context.Context, sessionID string) ([]models.ChatMessage, error)
	Save(ctx context.Context, sessionID, userID string, messages []models.ChatMessage) error
}

// Loop alternates between a model decision step and tool execution until
// the model answers or the step budget runs out.
type Loop struct {
	llm         llm.Provider
	tools       *Registry
	checkpoints CheckpointStore
	log         *logrus.Logger
	maxSteps    int
}

func NewLoop(provider llm.Provider, tools *Registry, checkpoints CheckpointStore, log *logrus.Logger) *Loop {
	if log == nil {
		log = logrus.New()
	}
	return &Loop{
		llm:         provider,
		tools:       tools,
		checkpoints: checkpoints,
		log:         log,
		maxSteps:    defaultMaxSteps,
	}
}

// SetMaxSteps overrides the step budget. Intended for tests.
func (l *Loop) SetMaxSteps(n int) {
	if n > 0 {
		l.maxSteps = n
	}
}

// Run appends the user query to the session's history (seeding the system
// prompt on the first turn), drives the decision/tool cycle, checkpoints
// the final history, and returns the assistant's answer.
func (l *Loop) Run(ctx context.Context, userID, sessionID, query string) (string, error) {
	messages, err := l.checkpoints.Load(ctx, sessionID)
	if err != nil {
		return "", err
	}

	if len(messages) == 0 {
		messages = []models.ChatMessage{
			{Role: models.RoleSystem, Content: ReactSystemPrompt},
			{Role: models.RoleUser, Content: query},
		}
	} else {
		messages = append(messages, models.ChatMessage{Role: models.RoleUser, Content: query})
	}

	log := l.log.WithFields(logrus.Fields{"session_id": sessionID, "user_id": userID})

	steps := 0
	for {
		steps++
		if steps > l.maxSteps {
			if err := l.checkpoints.Save(ctx, sessionID, userID, messages); err != nil {
				log.WithError(err).Warn("checkpoint save failed after budget breach")
			}
			return "", ErrTooComplex
		}

		reply, err := l.llm.Chat(ctx, messages, l.tools.Defs())
		if err != nil {
			return "", err
		}
		messages = append(messages, reply)

		if len(reply.ToolCalls) == 0 {
			if err := l.checkpoints.Save(ctx, sessionID, userID, messages); err != nil {
				return "", err
			}
			log.WithField("steps", steps).Debug("reasoning loop completed")
			return reply.Content, nil
		}

		steps++
		if steps > l.maxSteps {
			if err := l.checkpoints.Save(ctx, sessionID, userID, messages); err != nil {
				log.WithError(err).Warn("checkpoint save failed after budget breach")
			}
			return "", ErrTooComplex
		}

		for _, call := range reply.ToolCalls {
			log.WithFields(logrus.Fields{"tool": call.Name, "query": call.Query}).Debug("executing tool")
			messages = append(messages, l.tools.Execute(ctx, userID, call))
		}
	}
}
