package models

import (
	"time"
)

// UserRole names the two roles a login can hold. A user may hold both.
type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleCourier  UserRole = "courier"
)

// ParseRole accepts the account "type" query value used by the app.
func ParseRole(s string) (UserRole, bool) {
	switch UserRole(s) {
	case RoleCustomer, RoleCourier:
		return UserRole(s), true
	}
	return "", false
}

type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Customer     *Customer `json:"customer,omitempty" gorm:"foreignKey:UserID"`
	Courier      *Courier  `json:"courier,omitempty" gorm:"foreignKey:UserID"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Address struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	StreetAddress string    `json:"street_address" gorm:"not null"`
	City          string    `json:"city" gorm:"not null"`
	PostalCode    string    `json:"postal_code"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// String renders the address the way order listings show it.
func (a Address) String() string {
	if a.ID == 0 {
		return ""
	}
	s := a.StreetAddress + ", " + a.City
	if a.PostalCode != "" {
		s += " " + a.PostalCode
	}
	return s
}

type Customer struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"uniqueIndex;not null"`
	User      User      `json:"-" gorm:"foreignKey:UserID"`
	AddressID uint      `json:"address_id"`
	Address   Address   `json:"address,omitempty" gorm:"foreignKey:AddressID"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Active    bool      `json:"active" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CourierStatus is the courier's availability, not an order status.
type CourierStatus string

const (
	CourierFree    CourierStatus = "free"
	CourierBusy    CourierStatus = "busy"
	CourierFull    CourierStatus = "full"
	CourierOffline CourierStatus = "offline"
)

type Courier struct {
	ID        uint          `json:"id" gorm:"primaryKey"`
	UserID    uint          `json:"user_id" gorm:"uniqueIndex;not null"`
	User      User          `json:"-" gorm:"foreignKey:UserID"`
	AddressID uint          `json:"address_id"`
	Address   Address       `json:"address,omitempty" gorm:"foreignKey:AddressID"`
	Status    CourierStatus `json:"status" gorm:"not null;default:'free'"`
	Phone     string        `json:"phone"`
	Email     string        `json:"email"`
	Active    bool          `json:"active" gorm:"not null"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}
