package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"rocket-food-delivery/config"
	"rocket-food-delivery/middleware"
	"rocket-food-delivery/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// InvalidCredentials is the message the app shows inline on a failed login.
const InvalidCredentials = "Invalid email or password"

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the role ids the app derives its mode from. A role
// id is null when the user does not hold that role.
type LoginResponse struct {
	Success    bool   `json:"success"`
	UserID     uint   `json:"user_id,omitempty"`
	CustomerID *uint  `json:"customer_id"`
	CourierID  *uint  `json:"courier_id"`
	Token      string `json:"token,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Login checks credentials and returns the user's customer and courier ids.
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, LoginResponse{Error: err.Error()})
		return
	}

	var user models.User
	err := config.DB.Preload("Customer").Preload("Courier").
		Where("email = ?", req.Email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusUnauthorized, LoginResponse{Error: InvalidCredentials})
		return
	}
	if err != nil {
		slog.Error("login lookup failed", "error", err)
		c.JSON(http.StatusInternalServerError, LoginResponse{Error: "Failed to look up user"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, LoginResponse{Error: InvalidCredentials})
		return
	}

	var customerID, courierID *uint
	if user.Customer != nil && user.Customer.Active {
		customerID = &user.Customer.ID
	}
	if user.Courier != nil && user.Courier.Active {
		courierID = &user.Courier.ID
	}

	token, err := middleware.GenerateToken(user.ID, customerID, courierID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, LoginResponse{Error: "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Success:    true,
		UserID:     user.ID,
		CustomerID: customerID,
		CourierID:  courierID,
		Token:      token,
	})
}

// HashPassword is used when provisioning users.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
