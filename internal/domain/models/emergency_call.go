package models

import (
	"time"
)

// EmergencyType represents the service requested by an emergency call
type EmergencyType string

const (
	EmergencyTypePolice   EmergencyType = "police"
	EmergencyTypeFire     EmergencyType = "fire"
	EmergencyTypeMedical  EmergencyType = "medical"
	EmergencyTypeSecurity EmergencyType = "security"
)

// EmergencyCallStatus represents the lifecycle state of an emergency call
type EmergencyCallStatus string

const (
	EmergencyCallStatusPending    EmergencyCallStatus = "pending"
	EmergencyCallStatusDispatched EmergencyCallStatus = "dispatched"
	EmergencyCallStatusResolved   EmergencyCallStatus = "resolved"
)

// EmergencyCall represents a user-initiated request for external dispatch
type EmergencyCall struct {
	ID          string              `json:"id"`
	PropertyID  string              `json:"propertyId"`
	UserID      string              `json:"userId"`
	Type        EmergencyType       `json:"type"`
	Status      EmergencyCallStatus `json:"status"`
	Timestamp   time.Time           `json:"timestamp"`
	Location    string              `json:"location,omitempty"`
	Description string              `json:"description,omitempty"`
}

// EmergencyCategory describes a selectable emergency type
type EmergencyCategory struct {
	Value EmergencyType `json:"value"`
	Label string        `json:"label"`
	Icon  string        `json:"icon"`
}

// EmergencyCategories lists the selectable emergency types in display order
var EmergencyCategories = []EmergencyCategory{
	{Value: EmergencyTypeSecurity, Label: "Охранная тревога", Icon: "Shield"},
	{Value: EmergencyTypePolice, Label: "Полиция", Icon: "BadgeCheck"},
	{Value: EmergencyTypeFire, Label: "Пожарная служба", Icon: "Flame"},
	{Value: EmergencyTypeMedical, Label: "Скорая помощь", Icon: "Heart"},
}

// IsValid reports whether t is one of the known emergency types
func (t EmergencyType) IsValid() bool {
	for _, c := range EmergencyCategories {
		if c.Value == t {
			return true
		}
	}
	return false
}
