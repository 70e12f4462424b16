package models

import "time"

// OrderStatus is the delivery progress of an order.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusInProgress OrderStatus = "in progress"
	StatusDelivered  OrderStatus = "delivered"
)

type Order struct {
	ID           uint                 `json:"id" gorm:"primaryKey"`
	RestaurantID uint                 `json:"restaurant_id" gorm:"not null;index"`
	Restaurant   Restaurant           `json:"restaurant,omitempty" gorm:"foreignKey:RestaurantID"`
	CustomerID   uint                 `json:"customer_id" gorm:"not null;index"`
	Customer     Customer             `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	CourierID    *uint                `json:"courier_id" gorm:"index"`
	Courier      *Courier             `json:"courier,omitempty" gorm:"foreignKey:CourierID"`
	Status       OrderStatus          `json:"status" gorm:"not null;default:'pending'"`
	Items        []ProductOrder       `json:"items,omitempty" gorm:"foreignKey:OrderID"`
	History      []OrderStatusHistory `json:"history,omitempty" gorm:"foreignKey:OrderID"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// TotalCost sums the line items in cents.
func (o Order) TotalCost() int {
	total := 0
	for _, it := range o.Items {
		total += it.UnitCost * it.Quantity
	}
	return total
}

// ProductOrder is one order line. UnitCost is a snapshot taken when the
// order is placed.
type ProductOrder struct {
	ID        uint    `json:"id" gorm:"primaryKey"`
	OrderID   uint    `json:"order_id" gorm:"not null;index"`
	ProductID uint    `json:"product_id" gorm:"not null"`
	Product   Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Quantity  int     `json:"quantity" gorm:"not null"`
	UnitCost  int     `json:"unit_cost" gorm:"not null"`
}

// OrderStatusHistory records every applied status change.
type OrderStatusHistory struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	OrderID    uint        `json:"order_id" gorm:"not null;index"`
	FromStatus OrderStatus `json:"from_status"`
	ToStatus   OrderStatus `json:"to_status" gorm:"not null"`
	CourierID  *uint       `json:"courier_id"`
	CreatedAt  time.Time   `json:"created_at"`
}
