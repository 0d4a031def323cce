package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gbr-security-service/internal/domain/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// InterfacePropertyService defines the property registry
type InterfacePropertyService interface {
	List(ctx context.Context) ([]models.Property, error)
	Get(ctx context.Context, id string) (*models.Property, error)
	Save(ctx context.Context, property *models.Property) error
	Overview(ctx context.Context) (*models.DashboardOverview, error)
	SeedIfEmpty(ctx context.Context) error
}

// PropertyService 物业登记表，所有视图共享同一份数据
type PropertyService struct {
	DB     *gorm.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewPropertyService 创建物业服务
func NewPropertyService(db *gorm.DB, logger *zap.Logger) *PropertyService {
	return &PropertyService{
		DB:     db,
		logger: logger,
		now:    time.Now,
	}
}

// DemoProperties returns the seed registry relative to now
func DemoProperties(now time.Time) []models.Property {
	return []models.Property{
		{
			ID:               "1",
			Address:          "ул. Ленина, 15, кв. 42",
			Number:           "1547",
			Status:           models.PropertyStatusArmed,
			LastStatusChange: now.Add(-2 * time.Hour),
			Sensors: []models.Sensor{
				{ID: "1", Position: 0, Type: models.SensorTypeMotion, Status: models.SensorStatusActive, Location: "Гостиная"},
				{ID: "2", Position: 1, Type: models.SensorTypeDoor, Status: models.SensorStatusActive, Location: "Входная дверь"},
				{ID: "3", Position: 2, Type: models.SensorTypeWindow, Status: models.SensorStatusActive, Location: "Окно спальни"},
			},
		},
		{
			ID:               "2",
			Address:          "пр. Мира, 45А",
			Number:           "2103",
			Status:           models.PropertyStatusDisarmed,
			LastStatusChange: now.Add(-30 * time.Minute),
			Sensors: []models.Sensor{
				{ID: "4", Position: 0, Type: models.SensorTypeMotion, Status: models.SensorStatusInactive, Location: "Спальня"},
				{ID: "5", Position: 1, Type: models.SensorTypeWindow, Status: models.SensorStatusInactive, Location: "Окно кухни"},
				{ID: "6", Position: 2, Type: models.SensorTypeSmoke, Status: models.SensorStatusInactive, Location: "Кухня"},
			},
		},
	}
}

func orderedSensors(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// 1 List returns every property ordered by id with ordered sensors
func (s *PropertyService) List(ctx context.Context) ([]models.Property, error) {
	var properties []models.Property
	if err := s.DB.WithContext(ctx).Preload("Sensors", orderedSensors).Order("id ASC").Find(&properties).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRegistryUnavailable, err)
	}
	return properties, nil
}

// 2 Get returns ErrPropertyNotFound for unknown ids
func (s *PropertyService) Get(ctx context.Context, id string) (*models.Property, error) {
	var property models.Property
	err := s.DB.WithContext(ctx).Preload("Sensors", orderedSensors).Where("id = ?", id).First(&property).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPropertyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRegistryUnavailable, err)
	}
	return &property, nil
}

// 3 Save writes the property status and every sensor status in one transaction
func (s *PropertyService) Save(ctx context.Context, property *models.Property) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Property{}).
			Where("id = ?", property.ID).
			Updates(map[string]interface{}{
				"status":             property.Status,
				"last_status_change": property.LastStatusChange,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrPropertyNotFound
		}

		for _, sensor := range property.Sensors {
			if err := tx.Model(&models.Sensor{}).
				Where("id = ? AND property_id = ?", sensor.ID, property.ID).
				Update("status", sensor.Status).Error; err != nil {
				return fmt.Errorf("update sensor %s: %w", sensor.ID, err)
			}
		}
		return nil
	})
}

// 4 Overview counts armed properties for the dashboard panel
func (s *PropertyService) Overview(ctx context.Context) (*models.DashboardOverview, error) {
	properties, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	overview := &models.DashboardOverview{
		TotalCount: len(properties),
		Properties: properties,
	}
	for _, p := range properties {
		if p.Status == models.PropertyStatusArmed {
			overview.ArmedCount++
		}
	}
	return overview, nil
}

// 5 SeedIfEmpty inserts the demo properties into an empty registry
func (s *PropertyService) SeedIfEmpty(ctx context.Context) error {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Property{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	properties := DemoProperties(s.now())
	if err := s.DB.WithContext(ctx).Create(&properties).Error; err != nil {
		return fmt.Errorf("seed properties: %w", err)
	}

	s.logger.Info("property registry seeded", zap.Int("count", len(properties)))
	return nil
}
