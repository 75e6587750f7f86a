package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Email               string  `gorm:"uniqueIndex;not null"`
	Password            string  `gorm:"not null" json:"-"`
	Name                string  `gorm:"not null"`
	Phone               string  `gorm:"index"`
	Role                string  `gorm:"default:'user'"`
	WalletID            *uint   `gorm:"unique;default:null"`
	Wallet              *Wallet `gorm:"foreignKey:WalletID"`
	Status              string  `gorm:"default:'active'"`
	KYCStatus           string  `gorm:"default:'pending'"`
	LastLoginAt         time.Time
	FailedLoginAttempts int `gorm:"default:0"`
	TokenVersion        int `gorm:"default:1"`
}

// User account statuses.
const (
	UserStatusActive    = "active"
	UserStatusSuspended = "suspended"
)
