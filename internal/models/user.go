package models

import (
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Username     string `gorm:"uniqueIndex;size:100"`
	Email        string `gorm:"uniqueIndex;size:255"`
	PasswordHash string
	FullName     string
	DiscordID    *string `gorm:"uniqueIndex"`
	Avatar       string
	IsActive     bool `gorm:"default:true"`
}
