package handlers

import (
	"net/http"
	"strconv"

	"rocket-food-delivery/config"
	"rocket-food-delivery/middleware"
	"rocket-food-delivery/models"

	"github.com/gin-gonic/gin"
)

// AccountView is the contact information shown on the account screens.
// PrimaryEmail is the login email and is read-only.
type AccountView struct {
	PrimaryEmail string `json:"primary_email"`
	AccountEmail string `json:"account_email"`
	AccountPhone string `json:"account_phone"`
}

type UpdateAccountRequest struct {
	AccountEmail string `json:"account_email" binding:"omitempty,email"`
	AccountPhone string `json:"account_phone" binding:"omitempty,max=32"`
	AccountType  string `json:"account_type"`
}

// accountTarget resolves the :id path parameter and the role, taken from
// the type query parameter or, for updates, the account_type field.
func accountTarget(c *gin.Context, bodyType string) (models.UserRole, uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid account id"})
		return "", 0, false
	}
	t := c.Query("type")
	if t == "" {
		t = bodyType
	}
	role, ok := models.ParseRole(t)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be customer or courier"})
		return "", 0, false
	}
	if !middleware.OwnsRole(c, role, uint(id)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Token does not belong to this " + string(role)})
		return "", 0, false
	}
	return role, uint(id), true
}

// GetAccount returns contact details for a customer or courier.
func GetAccount(c *gin.Context) {
	role, id, ok := accountTarget(c, "")
	if !ok {
		return
	}
	view, found := loadAccount(role, id)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		return
	}
	c.JSON(http.StatusOK, view)
}

// UpdateAccount replaces the role's contact email and phone.
func UpdateAccount(c *gin.Context) {
	var req UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	role, id, ok := accountTarget(c, req.AccountType)
	if !ok {
		return
	}

	var model any = &models.Customer{}
	if role == models.RoleCourier {
		model = &models.Courier{}
	}
	res := config.DB.Model(model).Where("id = ?", id).Updates(map[string]interface{}{
		"email": req.AccountEmail,
		"phone": req.AccountPhone,
	})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update account"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		return
	}

	view, _ := loadAccount(role, id)
	c.JSON(http.StatusOK, view)
}

func loadAccount(role models.UserRole, id uint) (AccountView, bool) {
	switch role {
	case models.RoleCourier:
		var courier models.Courier
		if err := config.DB.Preload("User").First(&courier, id).Error; err != nil {
			return AccountView{}, false
		}
		return AccountView{PrimaryEmail: courier.User.Email, AccountEmail: courier.Email, AccountPhone: courier.Phone}, true
	default:
		var customer models.Customer
		if err := config.DB.Preload("User").First(&customer, id).Error; err != nil {
			return AccountView{}, false
		}
		return AccountView{PrimaryEmail: customer.User.Email, AccountEmail: customer.Email, AccountPhone: customer.Phone}, true
	}
}
