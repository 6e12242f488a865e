package models

import (
	"time"

	"gorm.io/gorm"
)

// SubscriptionStatus enum values
const (
	SubscriptionActive    = "ACTIVE"
	SubscriptionExpired   = "EXPIRED"
	SubscriptionCancelled = "CANCELLED"
)

// SubscriptionPeriod enum values
const (
	PeriodMonthly = "MONTHLY"
	PeriodYearly  = "YEARLY"
)

// Subscription tracks a user's paid plan on the platform
type Subscription struct {
	gorm.Model
	UserID       uint       `gorm:"not null;index" json:"userId"`
	Plan         string     `gorm:"type:varchar(20);default:'MONTHLY'" json:"plan"` // MONTHLY or YEARLY
	Price        float64    `gorm:"not null;default:0" json:"price"`
	Status       string     `gorm:"not null;type:varchar(20);default:'ACTIVE'" json:"status"`
	SubscribedAt time.Time  `gorm:"not null" json:"subscribedAt"`
	ExpiresAt    *time.Time `json:"expiresAt"`
	ReminderSent bool       `gorm:"default:false" json:"reminderSent"` // Track if expiry reminder was sent
	PaymentID    string     `json:"paymentId"`
	IsDeleted    bool       `gorm:"default:false" json:"isDeleted"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}
