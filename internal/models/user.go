package models

import "gorm.io/gorm"

// User represents a professional on the platform.
type User struct {
	gorm.Model
	Username     string `gorm:"size:255;unique;not null"`
	Email        string `gorm:"size:255;unique;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	FullName     string `gorm:"size:255;not null"`
	Profession   string `gorm:"size:255;not null;index"`
	Bio          string
	Location     string `gorm:"size:255"`
	AvatarURL    *string
}
