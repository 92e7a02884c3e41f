package model

import "time"

// Bid records the latest amount a user has offered on a product. A user holds
// at most one bid per product; re-bidding replaces the amount.
type Bid struct {
	ID        uint      `json:"-" gorm:"primaryKey"`
	UserID    uint      `json:"-" gorm:"uniqueIndex:idx_user_product;not null"`
	ProductID string    `json:"productId" gorm:"uniqueIndex:idx_user_product;size:64;not null"`
	Amount    float64   `json:"amount" gorm:"not null"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
