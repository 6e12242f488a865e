package models

import (
	"time"

	"gorm.io/gorm"
)

type LoginTracking struct {
	gorm.Model
	UserID    uint      `json:"user_id"`
	IPAddress string    `json:"ip_address"`
	Device    string    `json:"device"`
	Method    string    `gorm:"default:'PASSWORD'" json:"method"` // PASSWORD, GITHUB, GOOGLE
	Timestamp time.Time `json:"timestamp"`
	IsDeleted bool      `gorm:"default:false"`
}
