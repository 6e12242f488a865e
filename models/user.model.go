package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	ProfileImage        string    `gorm:"default:''"`
	Name                string    `gorm:"default:''"`
	Email               string    `gorm:"unique;not null"`
	Role                string    `gorm:"default:'USER'"` // USER, AUTHOR, ADMIN
	Password            string    // empty for OAuth-only accounts
	Bio                 string    `gorm:"type:text"`
	IsEmailVerified     bool      `gorm:"default:false"`
	LastLogin           time.Time `gorm:"default:NULL"`
	FailedLoginAttempts int       `gorm:"default:0"`
	LastFailedLogin     *time.Time `json:"last_failed_login"`
	IsBlocked           bool       `gorm:"default:false"`
	BlockedUntil        *time.Time `json:"blocked_until"`
	IsDeleted           bool       `gorm:"default:false"`
}

// OAuthAccount links an external identity (GitHub, Google) to a local user.
// The (provider, provider_uid) pair is unique across the table.
type OAuthAccount struct {
	gorm.Model
	UserID      uint   `gorm:"index;not null" json:"user_id"`
	Provider    string `gorm:"size:20;not null;uniqueIndex:idx_provider_uid" json:"provider"` // GITHUB, GOOGLE
	ProviderUID string `gorm:"size:100;not null;uniqueIndex:idx_provider_uid" json:"provider_uid"`
	Email       string `gorm:"size:100" json:"email"`
	IsDeleted   bool   `gorm:"default:false"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
