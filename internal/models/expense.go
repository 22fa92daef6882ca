package models

import (
	"time"

	"gorm.io/gorm"
)

const DefaultCurrency = "CNY"

type Expense struct {
	gorm.Model
	UserID        uint    `gorm:"index;not null"`
	TripID        *uint   `gorm:"index"`
	Category      string  `gorm:"size:50;not null"`
	Amount        float64 `gorm:"not null"`
	Currency      string  `gorm:"size:10;default:CNY"`
	Description   string
	ExpenseDate   time.Time `gorm:"index"`
	PaymentMethod string    `gorm:"size:50"`
	Notes         string
}
