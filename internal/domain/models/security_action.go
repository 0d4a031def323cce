package models

import (
	"time"
)

// SecurityAction is the notification sent after an arm/disarm transition
type SecurityAction struct {
	PropertyID string         `json:"propertyId"`
	Action     PropertyStatus `json:"action"`
	Timestamp  time.Time      `json:"timestamp"`
	UserID     string         `json:"userId"`
}
