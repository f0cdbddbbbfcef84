package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/oscardel13/calorie-tracker/models"
	"github.com/oscardel13/calorie-tracker/repository"
	"github.com/oscardel13/calorie-tracker/utils"
)

var (
	ErrUserName   = errors.New("user name is required")
	ErrUserExists = errors.New("user already exists")
	ErrInvalidPIN = errors.New("invalid PIN")
)

// AuthService handles PIN signup and login and issues session tokens.
type AuthService struct {
	store  repository.Store
	secret []byte
	ttl    time.Duration
	log    *zap.Logger
}

func NewAuthService(store repository.Store, secret []byte, ttl time.Duration, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{store: store, secret: secret, ttl: ttl, log: log}
}

// Signup creates a user with no weeks. The PIN is optional.
func (s *AuthService) Signup(ctx context.Context, name, pin string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrUserName
	}
	_, err := s.store.GetUser(ctx, name)
	if err == nil {
		return "", ErrUserExists
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return "", err
	}

	hash, err := utils.HashPIN(strings.TrimSpace(pin))
	if err != nil {
		return "", err
	}
	if err := s.store.UpsertUser(ctx, models.User{Name: name, PIN: hash, Weeks: []models.Week{}}); err != nil {
		return "", err
	}
	s.log.Info("User created", zap.String("user", name), zap.Bool("pin", hash != ""))
	return utils.GenerateJWT(name, s.secret, s.ttl)
}

func (s *AuthService) Login(ctx context.Context, name, pin string) (string, error) {
	u, err := s.store.GetUser(ctx, strings.TrimSpace(name))
	if err != nil {
		return "", err
	}
	if !utils.CheckPIN(u.PIN, strings.TrimSpace(pin)) {
		s.log.Warn("Login rejected", zap.String("user", u.Name))
		return "", ErrInvalidPIN
	}
	return utils.GenerateJWT(u.Name, s.secret, s.ttl)
}
