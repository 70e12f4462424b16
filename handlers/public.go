package handlers

import (
	"net/http"
	"strconv"

	"rocket-food-delivery/config"
	"rocket-food-delivery/models"
	"rocket-food-delivery/statemachine"

	"github.com/gin-gonic/gin"
)

// ListRestaurants returns active restaurants. rating is a minimum star
// count, price_range an exact tier; either may be omitted.
func ListRestaurants(c *gin.Context) {
	query := config.DB.Preload("Address").Where("active = ?", true)

	if v := c.Query("rating"); v != "" {
		rating, err := strconv.Atoi(v)
		if err != nil || rating < 1 || rating > 5 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "rating must be between 1 and 5"})
			return
		}
		query = query.Where("rating >= ?", rating)
	}
	if v := c.Query("price_range"); v != "" {
		pr, err := strconv.Atoi(v)
		if err != nil || pr < 1 || pr > 3 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "price_range must be between 1 and 3"})
			return
		}
		query = query.Where("price_range = ?", pr)
	}

	restaurants := []models.Restaurant{}
	if err := query.Order("id asc").Find(&restaurants).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list restaurants"})
		return
	}
	c.JSON(http.StatusOK, restaurants)
}

// ListProducts returns the menu of one restaurant.
func ListProducts(c *gin.Context) {
	restaurantID, err := strconv.ParseUint(c.Query("restaurant"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "restaurant query parameter is required"})
		return
	}

	var restaurant models.Restaurant
	if err := config.DB.First(&restaurant, restaurantID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Restaurant not found"})
		return
	}

	products := []models.Product{}
	config.DB.Where("restaurant_id = ?", restaurant.ID).Order("id asc").Find(&products)
	c.JSON(http.StatusOK, products)
}

// GetStateMachineInfo documents the order lifecycle.
func GetStateMachineInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"state_machine":   statemachine.GetAllTransitions(),
		"terminal_states": []models.OrderStatus{models.StatusDelivered},
		"description":     statemachine.Describe(),
	})
}
