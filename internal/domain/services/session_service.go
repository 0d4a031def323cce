package services

import (
	"context"
	"fmt"

	"gbr-security-service/internal/domain/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InterfaceSessionService defines the session store
type InterfaceSessionService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Logout(ctx context.Context, sessionID string) error
	Restore(ctx context.Context, sessionID string) (*models.User, error)
	Authenticate(ctx context.Context, token string) (*Session, error)
}

// LoginResult 表示登录结果
type LoginResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Session is an authenticated request identity
type Session struct {
	ID   string
	User *models.User
}

// SessionService is the demo session store: any email logs in as the fixed demo identity
type SessionService struct {
	repo   SessionRepository
	jwt    InterfaceJWTService
	logger *zap.Logger
	newID  func() string
}

// NewSessionService 创建会话服务
func NewSessionService(repo SessionRepository, jwt InterfaceJWTService, logger *zap.Logger) *SessionService {
	return &SessionService{
		repo:   repo,
		jwt:    jwt,
		logger: logger,
		newID:  func() string { return uuid.New().String() },
	}
}

// demoUser fabricates the fixed identity bound to email
func demoUser(email string) *models.User {
	return &models.User{
		ID:    "1",
		Email: email,
		Name:  "Иван Петров",
		Phone: "+7 (999) 123-45-67",
		Role:  models.UserRoleClient,
	}
}

// 1 Login persists the demo identity bound to email and returns a bearer token for it.
// Neither the email nor the password is checked.
func (s *SessionService) Login(ctx context.Context, email, _ string) (*LoginResult, error) {
	user := demoUser(email)
	sessionID := s.newID()

	if err := s.repo.Save(ctx, sessionID, user); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	token, err := s.jwt.GenerateToken(sessionID, user.ID, string(user.Role))
	if err != nil {
		_ = s.repo.Clear(ctx, sessionID)
		return nil, fmt.Errorf("generate token: %w", err)
	}

	s.logger.Info("user logged in", zap.String("session_id", sessionID), zap.String("email", email))
	return &LoginResult{Token: token, User: user}, nil
}

// 2 Logout removes the persisted identity
func (s *SessionService) Logout(ctx context.Context, sessionID string) error {
	if err := s.repo.Clear(ctx, sessionID); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}

	s.logger.Info("user logged out", zap.String("session_id", sessionID))
	return nil
}

// 3 Restore rehydrates the identity from durable storage
func (s *SessionService) Restore(ctx context.Context, sessionID string) (*models.User, error) {
	return s.repo.Load(ctx, sessionID)
}

// 4 Authenticate validates a bearer token and restores its session
func (s *SessionService) Authenticate(ctx context.Context, token string) (*Session, error) {
	claims, err := s.jwt.ParseToken(token)
	if err != nil {
		return nil, err
	}

	user, err := s.Restore(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}

	return &Session{ID: claims.SessionID, User: user}, nil
}
