package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"rocket-food-delivery/config"
	"rocket-food-delivery/middleware"
	"rocket-food-delivery/models"
	"rocket-food-delivery/statemachine"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type OrderLineRequest struct {
	ID       uint `json:"id" binding:"required"`
	Quantity int  `json:"quantity" binding:"min=0"`
}

type CreateOrderRequest struct {
	RestaurantID uint               `json:"restaurant_id" binding:"required"`
	CustomerID   uint               `json:"customer_id" binding:"required"`
	Products     []OrderLineRequest `json:"products" binding:"required,min=1,dive"`
}

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
}

// errConflict marks a status update that lost a race with another update.
var errConflict = errors.New("order status changed concurrently")

// preloadOrder loads everything newOrderView reads.
func preloadOrder(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Restaurant.Address").
		Preload("Customer.User").
		Preload("Customer.Address").
		Preload("Courier.User").
		Preload("Items.Product")
}

// CreateOrder places an order for a customer. Lines with a zero quantity are
// ignored; the first free courier, if any, is assigned.
func CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !middleware.OwnsRole(c, models.RoleCustomer, req.CustomerID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Token does not belong to this customer"})
		return
	}

	var restaurant models.Restaurant
	if err := config.DB.Where("active = ?", true).First(&restaurant, req.RestaurantID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Restaurant not found"})
		return
	}
	var customer models.Customer
	if err := config.DB.First(&customer, req.CustomerID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
		return
	}

	var items []models.ProductOrder
	for _, line := range req.Products {
		if line.Quantity == 0 {
			continue
		}
		var product models.Product
		if err := config.DB.First(&product, line.ID).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Product not found: " + strconv.FormatUint(uint64(line.ID), 10)})
			return
		}
		if product.RestaurantID != restaurant.ID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Product '" + product.Name + "' does not belong to this restaurant"})
			return
		}
		items = append(items, models.ProductOrder{
			ProductID: product.ID,
			Quantity:  line.Quantity,
			UnitCost:  product.Cost,
		})
	}
	if len(items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Order must contain at least one product"})
		return
	}

	order := models.Order{
		RestaurantID: restaurant.ID,
		CustomerID:   customer.ID,
		Status:       models.StatusPending,
		Items:        items,
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var courier models.Courier
		err := tx.Where("active = ? AND status = ?", true, models.CourierFree).Order("id asc").First(&courier).Error
		switch {
		case err == nil:
			order.CourierID = &courier.ID
			if err := tx.Model(&courier).Update("status", models.CourierBusy).Error; err != nil {
				return err
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		return tx.Create(&models.OrderStatusHistory{
			OrderID:  order.ID,
			ToStatus: models.StatusPending,
		}).Error
	})
	if err != nil {
		slog.Error("create order failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to place order"})
		return
	}

	preloadOrder(config.DB).First(&order, order.ID)
	c.JSON(http.StatusCreated, newOrderView(order))
}

// ListOrders returns the orders of a customer or a courier, newest first.
func ListOrders(c *gin.Context) {
	id, err := strconv.ParseUint(c.Query("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id query parameter is required"})
		return
	}
	role, ok := models.ParseRole(c.Query("type"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be customer or courier"})
		return
	}
	if !middleware.OwnsRole(c, role, uint(id)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Token does not belong to this " + string(role)})
		return
	}

	column := "customer_id"
	if role == models.RoleCourier {
		column = "courier_id"
	}

	var orders []models.Order
	if err := preloadOrder(config.DB).
		Where(column+" = ?", id).
		Order("created_at desc, id desc").
		Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list orders"})
		return
	}

	views := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, newOrderView(o))
	}
	c.JSON(http.StatusOK, views)
}

// UpdateOrderStatus moves an order one step forward. Asking for the status
// the order already has succeeds without change.
func UpdateOrderStatus(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !statemachine.Known(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status: " + string(req.Status)})
		return
	}

	var order models.Order
	if err := config.DB.First(&order, orderID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	if _, hasToken := middleware.GetClaims(c); hasToken {
		if order.CourierID == nil || !middleware.OwnsRole(c, models.RoleCourier, *order.CourierID) {
			c.JSON(http.StatusForbidden, gin.H{"error": "You are not the assigned courier for this order"})
			return
		}
	}

	if order.Status != req.Status {
		if err := statemachine.CanTransition(order.Status, req.Status); err != nil {
			next, _ := statemachine.Next(order.Status)
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":            "Invalid state transition",
				"current_status":   order.Status,
				"requested":        req.Status,
				"reason":           err.Error(),
				"valid_next_state": next,
			})
			return
		}

		prev := order.Status
		err := config.DB.Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&models.Order{}).
				Where("id = ? AND status = ?", order.ID, prev).
				Update("status", req.Status)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return errConflict
			}
			if err := tx.Create(&models.OrderStatusHistory{
				OrderID:    order.ID,
				FromStatus: prev,
				ToStatus:   req.Status,
				CourierID:  order.CourierID,
			}).Error; err != nil {
				return err
			}
			if req.Status == models.StatusDelivered && order.CourierID != nil {
				return releaseCourier(tx, *order.CourierID)
			}
			return nil
		})
		if errors.Is(err, errConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": "Order status changed, reload and retry"})
			return
		}
		if err != nil {
			slog.Error("update order status failed", "order_id", order.ID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order status"})
			return
		}
	}

	preloadOrder(config.DB).First(&order, order.ID)
	c.JSON(http.StatusOK, newOrderView(order))
}

// releaseCourier frees a busy courier once none of their orders is still
// open.
func releaseCourier(tx *gorm.DB, courierID uint) error {
	var open int64
	if err := tx.Model(&models.Order{}).
		Where("courier_id = ? AND status <> ?", courierID, models.StatusDelivered).
		Count(&open).Error; err != nil {
		return err
	}
	if open > 0 {
		return nil
	}
	return tx.Model(&models.Courier{}).
		Where("id = ? AND status = ?", courierID, models.CourierBusy).
		Update("status", models.CourierFree).Error
}
