package models

import (
	"time"
)

// PropertyStatus represents the security status of a monitored property
type PropertyStatus string

const (
	PropertyStatusArmed       PropertyStatus = "armed"
	PropertyStatusDisarmed    PropertyStatus = "disarmed"
	PropertyStatusAlarm       PropertyStatus = "alarm"
	PropertyStatusMaintenance PropertyStatus = "maintenance"
)

// SensorType represents the kind of a sensor
type SensorType string

const (
	SensorTypeMotion SensorType = "motion"
	SensorTypeDoor   SensorType = "door"
	SensorTypeWindow SensorType = "window"
	SensorTypeSmoke  SensorType = "smoke"
	SensorTypeGlass  SensorType = "glass"
)

// SensorStatus represents the activation state of a sensor
type SensorStatus string

const (
	SensorStatusActive    SensorStatus = "active"
	SensorStatusInactive  SensorStatus = "inactive"
	SensorStatusTriggered SensorStatus = "triggered"
	SensorStatusOffline   SensorStatus = "offline"
)

// Property represents a monitored physical location
type Property struct {
	ID               string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Address          string         `gorm:"type:varchar(200);not null" json:"address"`
	Number           string         `gorm:"type:varchar(20);not null" json:"number"`
	Status           PropertyStatus `gorm:"type:varchar(20);default:'disarmed'" json:"status"`
	LastStatusChange time.Time      `json:"lastStatusChange"`
	CreatedAt        time.Time      `json:"-"`
	UpdatedAt        time.Time      `json:"-"`

	// Relations - 传感器随物业一起删除
	Sensors []Sensor `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE" json:"sensors"`
}

// Sensor represents a device attached to a property
type Sensor struct {
	ID         string       `gorm:"primaryKey;type:varchar(36)" json:"id"`
	PropertyID string       `gorm:"type:varchar(36);index;not null" json:"-"`
	Position   int          `gorm:"not null;default:0" json:"-"` // order within the property
	Type       SensorType   `gorm:"type:varchar(20);not null" json:"type"`
	Status     SensorStatus `gorm:"type:varchar(20);default:'inactive'" json:"status"`
	Location   string       `gorm:"type:varchar(100)" json:"location"`
}

// IsUserSettable reports whether the status can be reached through arm/disarm
func (s PropertyStatus) IsUserSettable() bool {
	return s == PropertyStatusArmed || s == PropertyStatusDisarmed
}

// SensorStatusFor returns the sensor activation state implied by a property status
func SensorStatusFor(status PropertyStatus) SensorStatus {
	if status == PropertyStatusArmed {
		return SensorStatusActive
	}
	return SensorStatusInactive
}
