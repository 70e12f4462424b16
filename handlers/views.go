package handlers

import (
	"time"

	"rocket-food-delivery/models"
)

// OrderLineView is one product line of an order listing.
type OrderLineView struct {
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	UnitCost    int    `json:"unit_cost"`
}

// OrderView is the flattened order shape the app's history and delivery
// screens display.
type OrderView struct {
	ID                uint               `json:"id"`
	CustomerID        uint               `json:"customer_id"`
	RestaurantID      uint               `json:"restaurant_id"`
	CourierID         *uint              `json:"courier_id"`
	RestaurantName    string             `json:"restaurant_name"`
	RestaurantAddress string             `json:"restaurant_address"`
	CustomerName      string             `json:"customer_name"`
	CustomerAddress   string             `json:"customer_address"`
	CourierName       string             `json:"courier_name"`
	Status            models.OrderStatus `json:"status"`
	Products          []OrderLineView    `json:"products"`
	TotalCost         int                `json:"total_cost"`
	CreatedAt         time.Time          `json:"created_at"`
}

func newOrderView(o models.Order) OrderView {
	v := OrderView{
		ID:                o.ID,
		CustomerID:        o.CustomerID,
		RestaurantID:      o.RestaurantID,
		CourierID:         o.CourierID,
		RestaurantName:    o.Restaurant.Name,
		RestaurantAddress: o.Restaurant.Address.String(),
		CustomerName:      o.Customer.User.Name,
		CustomerAddress:   o.Customer.Address.String(),
		Status:            o.Status,
		Products:          make([]OrderLineView, 0, len(o.Items)),
		TotalCost:         o.TotalCost(),
		CreatedAt:         o.CreatedAt,
	}
	if o.Courier != nil {
		v.CourierName = o.Courier.User.Name
	}
	for _, it := range o.Items {
		v.Products = append(v.Products, OrderLineView{
			ProductID:   it.ProductID,
			ProductName: it.Product.Name,
			Quantity:    it.Quantity,
			UnitCost:    it.UnitCost,
		})
	}
	return v
}
