package client

import (
	"time"

	"rocket-food-delivery/models"
	"rocket-food-delivery/session"
)

// Restaurant is one entry of the restaurant list.
type Restaurant struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	PriceRange int    `json:"price_range"`
	Rating     int    `json:"rating"`
}

// RestaurantFilter narrows the restaurant list. Zero fields are not sent.
type RestaurantFilter struct {
	Rating     int // minimum stars, 1..5
	PriceRange int // price tier, 1..3
}

type Product struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Cost        int    `json:"cost"` // cents
}

type OrderLine struct {
	ID       int64 `json:"id"`
	Quantity int   `json:"quantity"`
}

type NewOrder struct {
	RestaurantID int64       `json:"restaurant_id"`
	CustomerID   session.ID  `json:"customer_id"`
	Products     []OrderLine `json:"products"`
}

type OrderProduct struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	UnitCost    int    `json:"unit_cost"`
}

type Order struct {
	ID                int64              `json:"id"`
	CustomerID        int64              `json:"customer_id"`
	RestaurantID      int64              `json:"restaurant_id"`
	CourierID         *int64             `json:"courier_id"`
	RestaurantName    string             `json:"restaurant_name"`
	RestaurantAddress string             `json:"restaurant_address"`
	CustomerName      string             `json:"customer_name"`
	CustomerAddress   string             `json:"customer_address"`
	CourierName       string             `json:"courier_name"`
	Status            models.OrderStatus `json:"status"`
	Products          []OrderProduct     `json:"products"`
	TotalCost         int                `json:"total_cost"`
	CreatedAt         time.Time          `json:"created_at"`
}

type Account struct {
	PrimaryEmail string `json:"primary_email"`
	AccountEmail string `json:"account_email"`
	AccountPhone string `json:"account_phone"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success    bool       `json:"success"`
	UserID     session.ID `json:"user_id"`
	CustomerID session.ID `json:"customer_id"`
	CourierID  session.ID `json:"courier_id"`
	Token      string     `json:"token"`
}

type statusRequest struct {
	Status models.OrderStatus `json:"status"`
}

type accountRequest struct {
	AccountEmail string `json:"account_email"`
	AccountPhone string `json:"account_phone"`
	AccountType  string `json:"account_type"`
}

type errorResponse struct {
	Error string `json:"error"`
}
