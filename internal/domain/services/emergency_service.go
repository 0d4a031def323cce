package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"gbr-security-service/internal/domain/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DemoPropertyID is the property every new emergency call is attached to
const DemoPropertyID = "1"

// InterfaceEmergencyService defines the emergency-call dispatcher
type InterfaceEmergencyService interface {
	Categories() []models.EmergencyCategory
	CreateCall(ctx context.Context, category models.EmergencyType, description, userID string) (*models.EmergencyCall, error)
	ListCalls() []models.EmergencyCall
	GetCall(id string) (*models.EmergencyCall, error)
	RemoveCall(id string) error
	Close()
}

// callEntry owns the dispatch timer of one call
type callEntry struct {
	call  models.EmergencyCall
	timer *time.Timer
}

// EmergencyService 紧急呼叫调度，新呼叫在延迟后自动变为已派出
type EmergencyService struct {
	registry InterfacePropertyService
	notifier InterfaceNotifyService
	delay    time.Duration
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string

	mu     sync.Mutex
	calls  []*callEntry // newest first
	closed bool
}

// NewEmergencyService creates the dispatcher seeded with one dispatched call
func NewEmergencyService(registry InterfacePropertyService, notifier InterfaceNotifyService, delay time.Duration, logger *zap.Logger) *EmergencyService {
	s := &EmergencyService{
		registry: registry,
		notifier: notifier,
		delay:    delay,
		logger:   logger,
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
	s.calls = []*callEntry{{call: seedCall(s.now())}}
	return s
}

func seedCall(now time.Time) models.EmergencyCall {
	return models.EmergencyCall{
		ID:          "1",
		PropertyID:  DemoPropertyID,
		UserID:      "user123",
		Type:        models.EmergencyTypeSecurity,
		Status:      models.EmergencyCallStatusDispatched,
		Timestamp:   now.Add(-10 * time.Minute),
		Location:    "ул. Ленина, 15, кв. 42",
		Description: "Сработал датчик движения",
	}
}

// 1 Categories returns the selectable emergency types
func (s *EmergencyService) Categories() []models.EmergencyCategory {
	out := make([]models.EmergencyCategory, len(models.EmergencyCategories))
	copy(out, models.EmergencyCategories)
	return out
}

// 2 CreateCall registers a pending call and schedules its dispatch
func (s *EmergencyService) CreateCall(ctx context.Context, category models.EmergencyType, description, userID string) (*models.EmergencyCall, error) {
	if !category.IsValid() {
		return nil, ErrInvalidCategory
	}

	call := models.EmergencyCall{
		ID:          s.newID(),
		PropertyID:  DemoPropertyID,
		UserID:      userID,
		Type:        category,
		Status:      models.EmergencyCallStatusPending,
		Timestamp:   s.now(),
		Description: description,
	}

	property, err := s.registry.Get(ctx, DemoPropertyID)
	switch {
	case err == nil:
		call.Location = property.Address
	case errors.Is(err, ErrPropertyNotFound):
	default:
		s.logger.Warn("emergency call location unavailable", zap.Error(err))
	}

	entry := &callEntry{call: call}

	s.mu.Lock()
	if !s.closed {
		id := call.ID
		entry.timer = time.AfterFunc(s.delay, func() { s.markDispatched(id) })
	}
	s.calls = append([]*callEntry{entry}, s.calls...)
	s.mu.Unlock()

	s.logger.Info("emergency call created",
		zap.String("call_id", call.ID),
		zap.String("type", string(category)),
		zap.String("user_id", userID),
	)

	if err := s.notifier.Enqueue(NotificationJob{Kind: NotificationEmergencyCall, Key: call.ID, Payload: call}); err != nil {
		s.logger.Warn("emergency call not queued", zap.String("call_id", call.ID), zap.Error(err))
	}

	return &call, nil
}

// markDispatched is a no-op when the call was removed meanwhile
func (s *EmergencyService) markDispatched(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entry := range s.calls {
		if entry.call.ID == id {
			if entry.call.Status == models.EmergencyCallStatusPending {
				entry.call.Status = models.EmergencyCallStatusDispatched
				s.logger.Info("emergency call dispatched", zap.String("call_id", id))
			}
			entry.timer = nil
			return
		}
	}
}

// 3 ListCalls returns a snapshot, most recent first
func (s *EmergencyService) ListCalls() []models.EmergencyCall {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.EmergencyCall, 0, len(s.calls))
	for _, entry := range s.calls {
		out = append(out, entry.call)
	}
	return out
}

// 4 GetCall returns ErrCallNotFound for unknown ids
func (s *EmergencyService) GetCall(id string) (*models.EmergencyCall, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entry := range s.calls {
		if entry.call.ID == id {
			call := entry.call
			return &call, nil
		}
	}
	return nil, ErrCallNotFound
}

// 5 RemoveCall drops a call and stops its pending dispatch
func (s *EmergencyService) RemoveCall(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, entry := range s.calls {
		if entry.call.ID != id {
			continue
		}
		if entry.timer != nil {
			entry.timer.Stop()
		}
		s.calls = append(s.calls[:i], s.calls[i+1:]...)
		return nil
	}
	return ErrCallNotFound
}

// 6 Close stops every pending dispatch timer
func (s *EmergencyService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	for _, entry := range s.calls {
		if entry.timer != nil {
			entry.timer.Stop()
			entry.timer = nil
		}
	}
}
