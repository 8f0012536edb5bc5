package services

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/twissamodiofficial/MediQuery-Assist/internal/models"
	pgrepo "github.com/twissamodiofficial/MediQuery-Assist/internal/repositories/postgres"
	"github.com/twissamodiofficial/MediQuery-Assist/internal/utils"
)

// AuthService is the user/session registry. Login upserts the user record
// and opens a fresh session; the returned token gates every chat route.
type AuthService interface {
	Login(ctx context.Context, userID, name string) (*LoginResult, error)
}

type LoginResult struct {
	User    *models.User    `json:"user"`
	Session *models.Session `json:"session"`
	Token   string          `json:"token"`
}

type authService struct {
	users    pgrepo.UserRepository
	sessions pgrepo.SessionRepository

	jwtSecret []byte
	tokenTTL  time.Duration
}

func NewAuthService(users pgrepo.UserRepository, sessions pgrepo.SessionRepository, jwtSecret string, tokenTTL time.Duration) AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &authService{
		users:     users,
		sessions:  sessions,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}
}

// SessionClaims binds a token to one user and one conversation session.
type SessionClaims struct {
	jwt.RegisteredClaims
	SessionID string `json:"session_id"`
}

func (s *authService) Login(ctx context.Context, userID, name string) (*LoginResult, error) {
	const op = "AuthService.Login"

	userID = strings.ToLower(strings.TrimSpace(userID))
	name = strings.TrimSpace(name)
	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	if name == "" {
		name = userID
	}

	now := time.Now().UTC()
	user := &models.User{ID: userID, Name: name, CreatedAt: now}
	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to upsert user", err)
	}

	session := &models.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create session", err)
	}

	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
		SessionID: session.ID,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to sign token", err)
	}

	return &LoginResult{User: user, Session: session, Token: token}, nil
}
