package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twissamodiofficial/MediQuery-Assist/internal/models"
	"github.com/twissamodiofficial/MediQuery-Assist/internal/utils"
)

type fakeUserRepo struct {
	upserts []*models.User
}

func (f *fakeUserRepo) Upsert(_ context.Context, u *models.User) error {
	f.upserts = append(f.upserts, u)
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	for _, u := range f.upserts {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (f *fakeUserRepo) Exists(_ context.Context, id string) (bool, error) {
	_, err := f.GetByID(context.Background(), id)
	return err == nil, nil
}

type fakeSessionRepo struct {
	created []*models.Session
}

func (f *fakeSessionRepo) Create(_ context.Context, s *models.Session) error {
	f.created = append(f.created, s)
	return nil
}

func (f *fakeSessionRepo) GetByID(_ context.Context, id string) (*models.Session, error) {
	for _, s := range f.created {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (f *fakeSessionRepo) ListByUser(_ context.Context, userID string, _ int) ([]models.Session, error) {
	var out []models.Session
	for _, s := range f.created {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func TestLoginCreatesUserAndSession(t *testing.T) {
	users := &fakeUserRepo{}
	sessions := &fakeSessionRepo{}
	svc := NewAuthService(users, sessions, "test-secret", time.Hour)

	res, err := svc.Login(context.Background(), "  Alice ", "Alice Smith")
	require.NoError(t, err)

	assert.Equal(t, "alice", res.User.ID)
	assert.Equal(t, "Alice Smith", res.User.Name)
	require.Len(t, sessions.created, 1)
	assert.Equal(t, "alice", res.Session.UserID)
	assert.NotEmpty(t, res.Session.ID)

	claims := &SessionClaims{}
	tok, err := jwt.ParseWithClaims(res.Token, claims, func(*jwt.Token) (any, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, tok.Valid)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, res.Session.ID, claims.SessionID)
}

func TestLoginDefaultsNameToUserID(t *testing.T) {
	svc := NewAuthService(&fakeUserRepo{}, &fakeSessionRepo{}, "test-secret", time.Hour)

	res, err := svc.Login(context.Background(), "bob", "")
	require.NoError(t, err)
	assert.Equal(t, "bob", res.User.Name)
}

func TestLoginRequiresUserID(t *testing.T) {
	svc := NewAuthService(&fakeUserRepo{}, &fakeSessionRepo{}, "test-secret", time.Hour)

	_, err := svc.Login(context.Background(), "   ", "x")
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
}

func TestLoginEachCallOpensNewSession(t *testing.T) {
	sessions := &fakeSessionRepo{}
	svc := NewAuthService(&fakeUserRepo{}, sessions, "test-secret", time.Hour)

	first, err := svc.Login(context.Background(), "alice", "")
	require.NoError(t, err)
	second, err := svc.Login(context.Background(), "alice", "")
	require.NoError(t, err)

	assert.NotEqual(t, first.Session.ID, second.Session.ID)
	assert.Len(t, sessions.created, 2)
}
