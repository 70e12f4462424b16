package models

import "time"

type Restaurant struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     uint      `json:"user_id"`
	AddressID  uint      `json:"address_id"`
	Address    Address   `json:"address,omitempty" gorm:"foreignKey:AddressID"`
	Name       string    `json:"name" gorm:"not null"`
	Phone      string    `json:"phone"`
	Email      string    `json:"email"`
	PriceRange int       `json:"price_range" gorm:"not null;default:1"` // 1..3
	Rating     int       `json:"rating" gorm:"not null;default:0"`      // 0..5 stars
	Active     bool      `json:"active" gorm:"not null"`
	Products   []Product `json:"products,omitempty" gorm:"foreignKey:RestaurantID"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Product struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	RestaurantID uint      `json:"restaurant_id" gorm:"not null;index"`
	Name         string    `json:"name" gorm:"not null"`
	Description  string    `json:"description"`
	Cost         int       `json:"cost" gorm:"not null"` // cents
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
