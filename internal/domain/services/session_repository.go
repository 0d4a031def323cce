package services

import (
	"context"
	"errors"
	"sync"

	"gbr-security-service/internal/domain/models"
)

// SessionKeyPrefix is the durable storage key of a persisted user
const SessionKeyPrefix = "securityUser"

// SessionRepository persists the identity bound to a session
type SessionRepository interface {
	Load(ctx context.Context, sessionID string) (*models.User, error)
	Save(ctx context.Context, sessionID string, user *models.User) error
	Clear(ctx context.Context, sessionID string) error
}

func sessionKey(sessionID string) string {
	return SessionKeyPrefix + ":" + sessionID
}

// RedisSessionRepository stores sessions in Redis without expiry
type RedisSessionRepository struct {
	redis InterfaceRedisService
}

// NewRedisSessionRepository creates a Redis backed session repository
func NewRedisSessionRepository(redis InterfaceRedisService) *RedisSessionRepository {
	return &RedisSessionRepository{redis: redis}
}

// Load returns ErrSessionNotFound when nothing is stored for sessionID
func (r *RedisSessionRepository) Load(ctx context.Context, sessionID string) (*models.User, error) {
	var user models.User
	if err := r.redis.Get(ctx, sessionKey(sessionID), &user); err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *RedisSessionRepository) Save(ctx context.Context, sessionID string, user *models.User) error {
	return r.redis.Set(ctx, sessionKey(sessionID), user, 0)
}

func (r *RedisSessionRepository) Clear(ctx context.Context, sessionID string) error {
	return r.redis.Delete(ctx, sessionKey(sessionID))
}

// MemorySessionRepository keeps sessions for the lifetime of the process
type MemorySessionRepository struct {
	mu    sync.RWMutex
	users map[string]models.User
}

// NewMemorySessionRepository creates an in-process session repository
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{users: make(map[string]models.User)}
}

func (r *MemorySessionRepository) Load(_ context.Context, sessionID string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[sessionKey(sessionID)]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return &user, nil
}

func (r *MemorySessionRepository) Save(_ context.Context, sessionID string, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.users[sessionKey(sessionID)] = *user
	return nil
}

func (r *MemorySessionRepository) Clear(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.users, sessionKey(sessionID))
	return nil
}
