package models

import "time"

// Role is the closed set of actor roles. Authorization checks compare against
// these constants only, never free-form strings.
type Role string

const (
	RoleCustomer         Role = "customer"
	RoleRestaurantOwner  Role = "restaurantOwner"
	RoleAdmin            Role = "admin"
	RoleComplaintManager Role = "complaintManager"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleRestaurantOwner, RoleAdmin, RoleComplaintManager:
		return true
	}
	return false
}

type UserStatus string

const (
	UserActive  UserStatus = "active"
	UserWarned  UserStatus = "warned"
	UserBlocked UserStatus = "blocked"
)

func (s UserStatus) Valid() bool {
	switch s {
	case UserActive, UserWarned, UserBlocked:
		return true
	}
	return false
}

type User struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Name        string     `gorm:"type:varchar(100);not null" json:"name"`
	Email       string     `gorm:"type:varchar(255);unique;not null" json:"email"`
	Password    string     `gorm:"type:varchar(255);not null" json:"-"`
	Phone       string     `gorm:"type:varchar(15)" json:"phone"`
	ProfilePic  string     `gorm:"type:varchar(255)" json:"profile_pic"`
	Role        Role       `gorm:"type:varchar(32);not null" json:"role"`
	Status      UserStatus `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	IsOnboarded bool       `gorm:"not null;default:false" json:"is_onboarded"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
