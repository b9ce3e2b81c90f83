package service

import (
	"context"
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/roksva123/go-wrike-export/internal/model"
)

type memAdmins struct {
	admins map[string]*model.Admin
}

func (m *memAdmins) GetAdminByUsername(ctx context.Context, username string) (*model.Admin, error) {
	a, ok := m.admins[username]
	if !ok {
		return nil, errors.New("not found")
	}
	return a, nil
}

func (m *memAdmins) UpsertAdmin(ctx context.Context, username, passwordHash string) error {
	m.admins[username] = &model.Admin{ID: "id-" + username, Username: username, PasswordHash: passwordHash}
	return nil
}

func (m *memAdmins) CreateAdmin(ctx context.Context, username, passwordHash string) (bool, error) {
	if _, ok := m.admins[username]; ok {
		return false, nil
	}
	return true, m.UpsertAdmin(ctx, username, passwordHash)
}

func TestLogin(t *testing.T) {
	store := &memAdmins{admins: map[string]*model.Admin{}}
	svc := NewAuthService(store, "secret")
	require.NoError(t, svc.SeedAdmin(context.Background(), "admin", "pw"))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(store.admins["admin"].PasswordHash), []byte("pw")))

	tokenStr, err := svc.Login(context.Background(), "admin", "pw")
	require.NoError(t, err)

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, "id-admin", claims["sub"])
}

func TestLoginRejects(t *testing.T) {
	store := &memAdmins{admins: map[string]*model.Admin{}}
	svc := NewAuthService(store, "secret")
	require.NoError(t, svc.SeedAdmin(context.Background(), "admin", "pw"))

	_, err := svc.Login(context.Background(), "admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "nobody", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestEnsureAdminKeepsExistingPassword(t *testing.T) {
	store := &memAdmins{admins: map[string]*model.Admin{}}
	svc := NewAuthService(store, "secret")

	created, err := svc.EnsureAdmin(context.Background(), "admin", "first")
	require.NoError(t, err)
	assert.True(t, created)

	require.NoError(t, svc.SeedAdmin(context.Background(), "admin", "changed"))

	created, err = svc.EnsureAdmin(context.Background(), "admin", "first")
	require.NoError(t, err)
	assert.False(t, created)

	_, err = svc.Login(context.Background(), "admin", "changed")
	assert.NoError(t, err)
	_, err = svc.Login(context.Background(), "admin", "first")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
