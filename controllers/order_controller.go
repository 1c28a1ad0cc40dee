package controllers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"shop-backend/models"
	"shop-backend/repositories"
)

type OrderController struct {
	orders *repositories.OrderRepository
}

func NewOrderController(orders *repositories.OrderRepository) *OrderController {
	return &OrderController{orders: orders}
}

// CreateOrder godoc
// @Summary Create order
// @Description Create an order directly from an item list, decrementing stock
// @Tags Orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.CreateOrderRequest true "Order Request"
// @Success 201 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /orders [post]
func (ctrl *OrderController) CreateOrder(c *gin.Context) {
	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"success": false, "message": "At least one item with a positive quantity is required"})
		return
	}

	userID := c.GetInt("user_id")

	order, err := ctrl.orders.CreateOrder(c.Request.Context(), userID, req.Items)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			c.JSON(404, gin.H{"success": false, "message": "Product not found"})
		case errors.Is(err, repositories.ErrConflict):
			c.JSON(400, gin.H{"success": false, "message": "Insufficient stock"})
		default:
			c.JSON(500, gin.H{"success": false, "message": "Failed to create order"})
		}
		return
	}

	c.JSON(201, gin.H{"success": true, "message": "Order created successfully", "data": order})
}
