package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"gbr-security-service/internal/domain/models"

	"go.uber.org/zap"
)

// InterfaceSecurityService defines the arm/disarm engine
type InterfaceSecurityService interface {
	SetStatus(ctx context.Context, propertyID string, target models.PropertyStatus, userID string) (*models.Property, error)
	InFlight() []string
}

// SecurityService 布防/撤防状态切换，同一物业同一时间只允许一个切换
type SecurityService struct {
	registry InterfacePropertyService
	notifier InterfaceNotifyService
	latency  time.Duration
	logger   *zap.Logger
	now      func() time.Time

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewSecurityService creates the engine; latency simulates the remote round trip
func NewSecurityService(registry InterfacePropertyService, notifier InterfaceNotifyService, latency time.Duration, logger *zap.Logger) *SecurityService {
	return &SecurityService{
		registry: registry,
		notifier: notifier,
		latency:  latency,
		logger:   logger,
		now:      time.Now,
		inFlight: make(map[string]struct{}),
	}
}

func (s *SecurityService) acquire(propertyID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.inFlight[propertyID]; busy {
		return false
	}
	s.inFlight[propertyID] = struct{}{}
	return true
}

func (s *SecurityService) release(propertyID string) {
	s.mu.Lock()
	delete(s.inFlight, propertyID)
	s.mu.Unlock()
}

// 1 SetStatus arms or disarms a property and cascades the sensor states
func (s *SecurityService) SetStatus(ctx context.Context, propertyID string, target models.PropertyStatus, userID string) (*models.Property, error) {
	if !target.IsUserSettable() {
		return nil, ErrInvalidTargetStatus
	}
	if !s.acquire(propertyID) {
		return nil, ErrTransitionInProgress
	}
	defer s.release(propertyID)

	if s.latency > 0 {
		timer := time.NewTimer(s.latency)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("status change cancelled: %w", ctx.Err())
		}
	}

	property, err := s.registry.Get(ctx, propertyID)
	if errors.Is(err, ErrPropertyNotFound) {
		return nil, err
	}
	if err != nil {
		s.logger.Error("load property failed", zap.String("property_id", propertyID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrStatusChangeFailed, err)
	}

	now := s.now()
	property.Status = target
	property.LastStatusChange = now
	sensorStatus := models.SensorStatusFor(target)
	for i := range property.Sensors {
		property.Sensors[i].Status = sensorStatus
	}

	if err := s.registry.Save(ctx, property); err != nil {
		if errors.Is(err, ErrPropertyNotFound) {
			return nil, err
		}
		s.logger.Error("save property failed", zap.String("property_id", propertyID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrStatusChangeFailed, err)
	}

	s.logger.Info("property status changed",
		zap.String("property_id", propertyID),
		zap.String("status", string(target)),
		zap.String("user_id", userID),
	)

	action := models.SecurityAction{
		PropertyID: propertyID,
		Action:     target,
		Timestamp:  now,
		UserID:     userID,
	}
	if err := s.notifier.Enqueue(NotificationJob{Kind: NotificationSecurityAction, Key: propertyID, Payload: action}); err != nil {
		s.logger.Warn("security action not queued", zap.String("property_id", propertyID), zap.Error(err))
	}

	return property, nil
}

// 2 InFlight returns the ids of properties with a pending transition
func (s *SecurityService) InFlight() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.inFlight))
	for id := range s.inFlight {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
