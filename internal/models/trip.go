package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	TripStatusPlanning  = "planning"
	TripStatusOngoing   = "ongoing"
	TripStatusCompleted = "completed"
	TripStatusCancelled = "cancelled"
)

// ValidTripStatus reports whether status is one of the trip lifecycle states.
func ValidTripStatus(status string) bool {
	switch status {
	case TripStatusPlanning, TripStatusOngoing, TripStatusCompleted, TripStatusCancelled:
		return true
	}
	return false
}

type Trip struct {
	gorm.Model
	UserID        uint      `gorm:"index;not null"`
	User          User      `gorm:"foreignKey:UserID"`
	Title         string    `gorm:"size:255;not null"`
	Destination   string    `gorm:"size:255;not null"`
	StartDate     time.Time `gorm:"not null"`
	EndDate       time.Time `gorm:"not null"`
	Budget        *float64
	TravelerCount int `gorm:"default:1"`
	Preferences   datatypes.JSONMap
	Description   string
	Status        string         `gorm:"size:50;default:planning"`
	AIGenerated   datatypes.JSON // raw plan the itinerary was built from, kept for audit
	Days          []TripDay      `gorm:"constraint:OnDelete:CASCADE"`
}

type TripDay struct {
	gorm.Model
	TripID      uint      `gorm:"not null;uniqueIndex:idx_trip_day_number"`
	DayNumber   int       `gorm:"not null;uniqueIndex:idx_trip_day_number"`
	Date        time.Time `gorm:"not null"`
	Title       string    `gorm:"size:255"`
	Description string
	Activities  []TripActivity `gorm:"foreignKey:DayID;constraint:OnDelete:CASCADE"`
}

type TripActivity struct {
	gorm.Model
	DayID        uint   `gorm:"index;not null"`
	ActivityType string `gorm:"size:50;not null"`
	Name         string `gorm:"size:255;not null"`
	Location     string `gorm:"size:500"`
	StartTime    *time.Time
	EndTime      *time.Time
	Duration     *int // minutes
	Cost         *float64
	Description  string
	Notes        string
	OrderIndex   int `gorm:"default:0"`
}
