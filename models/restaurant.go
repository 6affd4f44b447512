package models

import (
	"strings"
	"time"
)

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

type OperationalStatus string

const (
	OperationalActive  OperationalStatus = "active"
	OperationalWarned  OperationalStatus = "warned"
	OperationalBlocked OperationalStatus = "blocked"
)

type Restaurant struct {
	ID                 uint               `gorm:"primaryKey" json:"id"`
	OwnerID            uint               `gorm:"not null;index" json:"owner_id"`
	Owner              User               `gorm:"foreignKey:OwnerID" json:"-"`
	Name               string             `gorm:"type:varchar(255);not null" json:"name"`
	Phone              string             `gorm:"type:varchar(15);not null" json:"phone"`
	Address            string             `gorm:"type:varchar(500);not null" json:"address"`
	Logo               string             `gorm:"type:varchar(255)" json:"logo"`
	License            string             `gorm:"type:varchar(255)" json:"license"`
	VerificationStatus VerificationStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"verification_status"`
	OperationalStatus  OperationalStatus  `gorm:"type:varchar(20);not null;default:'active'" json:"operational_status"`
	Cuisine            string             `gorm:"type:varchar(255)" json:"cuisine"` // comma-separated
	Description        string             `gorm:"type:varchar(500)" json:"description"`
	OpeningHours       string             `gorm:"type:varchar(100)" json:"opening_hours"`
	DeliveryAvailable  bool               `gorm:"not null;default:true" json:"delivery_available"`
	DeliveryTime       string             `gorm:"type:varchar(50)" json:"delivery_time"`
	Menu               []MenuItem         `gorm:"foreignKey:RestaurantID" json:"menu,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// Cuisines splits the stored comma-separated cuisine list.
func (r *Restaurant) Cuisines() []string {
	if r.Cuisine == "" {
		return nil
	}
	parts := strings.Split(r.Cuisine, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
