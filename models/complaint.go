package models

import "time"

type ComplaintOrigin string

const (
	ComplaintFromCustomer   ComplaintOrigin = "Customer"
	ComplaintFromRestaurant ComplaintOrigin = "Restaurant"
)

type ComplaintStatus string

const (
	ComplaintPending   ComplaintStatus = "Pending"
	ComplaintReviewing ComplaintStatus = "Reviewing"
	ComplaintResolved  ComplaintStatus = "Resolved"
)

// ManagerAction is the sanction a complaint manager applies to the party the
// complaint was raised against.
type ManagerAction string

const (
	ActionWarned  ManagerAction = "Warned"
	ActionBlocked ManagerAction = "Blocked"
	ActionActive  ManagerAction = "Active"
	ActionNone    ManagerAction = "None"
)

func (a ManagerAction) Valid() bool {
	switch a {
	case ActionWarned, ActionBlocked, ActionActive, ActionNone:
		return true
	}
	return false
}

type Complaint struct {
	ID                   uint            `gorm:"primaryKey" json:"id"`
	RaisedBy             uint            `gorm:"not null;index" json:"raised_by"`
	AgainstUser          *uint           `gorm:"index" json:"against_user,omitempty"`
	AgainstRestaurant    *uint           `gorm:"index" json:"against_restaurant,omitempty"`
	OrderID              uint            `gorm:"not null;index" json:"order_id"`
	Reason               string          `gorm:"type:text;not null" json:"reason"`
	Origin               ComplaintOrigin `gorm:"type:varchar(20);not null" json:"origin"`
	Status               ComplaintStatus `gorm:"type:varchar(20);not null;default:'Pending'" json:"status"`
	ManagerAction        ManagerAction   `gorm:"type:varchar(20);not null;default:'None'" json:"manager_action"`
	ResponseToCustomer   string          `gorm:"type:text" json:"response_to_customer"`
	ResponseToRestaurant string          `gorm:"type:text" json:"response_to_restaurant"`
	HandledBy            *uint           `json:"handled_by,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}
