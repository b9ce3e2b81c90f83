package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/roksva123/go-wrike-export/internal/model"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

const tokenTTL = 12 * time.Hour

// AdminStore looks up and seeds API administrators.
type AdminStore interface {
	GetAdminByUsername(ctx context.Context, username string) (*model.Admin, error)
	UpsertAdmin(ctx context.Context, username, passwordHash string) error
	CreateAdmin(ctx context.Context, username, passwordHash string) (bool, error)
}

type AuthService struct {
	repo   AdminStore
	jwtKey []byte
	now    func() time.Time
}

func NewAuthService(repo AdminStore, jwtKey string) *AuthService {
	return &AuthService{repo: repo, jwtKey: []byte(jwtKey), now: time.Now}
}

// Login checks the password and returns a signed HS256 token.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	admin, err := s.repo.GetAdminByUsername(ctx, username)
	if err != nil {
		return "", ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}

	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": admin.ID,
		"iat": now.Unix(),
		"exp": now.Add(tokenTTL).Unix(),
	})
	return token.SignedString(s.jwtKey)
}

// EnsureAdmin creates the admin account only when it does not exist yet, so
// a password changed after the first start is kept.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}
	return s.repo.CreateAdmin(ctx, username, string(hashed))
}

// SeedAdmin creates or resets the admin account.
func (s *AuthService) SeedAdmin(ctx context.Context, username, password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.UpsertAdmin(ctx, username, string(hashed))
}
