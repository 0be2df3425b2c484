// services/user_service.go
package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/AI-Template-SDK/trakkr/internal/models"
)

// userService keeps signed-up emails in memory; they are lost on restart.
type userService struct {
	mu    sync.RWMutex
	users map[string]*models.User
}

func NewUserService() UserService {
	return &userService{users: make(map[string]*models.User)}
}

func (s *userService) Signup(ctx context.Context, email string) (*models.User, error) {
	key, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[key]; ok {
		return nil, ErrUserExists
	}
	user := &models.User{Email: key, CreatedAt: time.Now().UTC()}
	s.users[key] = user
	return user, nil
}

func (s *userService) Login(ctx context.Context, email string) (*models.User, error) {
	key, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[key]
	if !ok {
		return nil, ErrNotFound
	}
	return user, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return "", fmt.Errorf("%w: a valid email is required", ErrInvalidInput)
	}
	return email, nil
}
