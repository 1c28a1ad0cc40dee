package controllers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"shop-backend/models"
	"shop-backend/services"
	"shop-backend/utils"
)

type CartController struct {
	carts *services.CartService
}

func NewCartController(carts *services.CartService) *CartController {
	return &CartController{carts: carts}
}

// AddItem godoc
// @Summary Add product to cart
// @Description Add a product to the user's cart, merging quantity if already present
// @Tags Cart
// @Accept json
// @Produce json
// @Param request body models.CartAddRequest true "Add Request"
// @Success 200 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /cart/add [post]
func (ctrl *CartController) AddItem(c *gin.Context) {
	var req models.CartAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"success": false, "message": "userId, productId and quantity are required"})
		return
	}

	items, err := ctrl.carts.AddItem(c.Request.Context(), req.UserID.String(), req.ProductID, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidQuantity):
			c.JSON(400, gin.H{"success": false, "message": err.Error()})
		case errors.Is(err, services.ErrProductNotFound):
			c.JSON(404, gin.H{"success": false, "message": "Product not found"})
		default:
			c.JSON(500, gin.H{"success": false, "message": "Failed to add product to cart"})
		}
		return
	}

	c.JSON(200, gin.H{"success": true, "message": "Product added to cart", "data": items})
}

// GetCart godoc
// @Summary Get cart
// @Description Get the cart snapshot for a user or guest key
// @Tags Cart
// @Produce json
// @Param userId path string true "User ID or guest token"
// @Success 200 {object} models.Response
// @Router /cart/{userId} [get]
func (ctrl *CartController) GetCart(c *gin.Context) {
	userKey := c.Param("userId")

	items, err := ctrl.carts.GetCart(c.Request.Context(), userKey)
	if err != nil {
		c.JSON(500, gin.H{"success": false, "message": "Failed to fetch cart"})
		return
	}

	c.JSON(200, gin.H{"success": true, "message": "Cart retrieved", "data": items})
}

// UpdateQuantity godoc
// @Summary Update item quantity
// @Description Overwrite the quantity of an item already in the cart
// @Tags Cart
// @Accept json
// @Produce json
// @Param request body models.CartUpdateRequest true "Update Request"
// @Success 200 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /cart/update [put]
func (ctrl *CartController) UpdateQuantity(c *gin.Context) {
	var req models.CartUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"success": false, "message": "userId, productId and quantity are required"})
		return
	}

	items, err := ctrl.carts.UpdateQuantity(c.Request.Context(), req.UserID.String(), req.ProductID, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidQuantity):
			c.JSON(400, gin.H{"success": false, "message": err.Error()})
		case errors.Is(err, services.ErrCartNotFound):
			c.JSON(404, gin.H{"success": false, "message": "Cart not found"})
		case errors.Is(err, services.ErrItemNotFound):
			c.JSON(404, gin.H{"success": false, "message": "Item not found in cart"})
		default:
			c.JSON(500, gin.H{"success": false, "message": "Failed to update quantity"})
		}
		return
	}

	c.JSON(200, gin.H{"success": true, "message": "Quantity updated", "data": items})
}

// RemoveItem godoc
// @Summary Remove item from cart
// @Description Remove a product from the cart; removing an absent item is a no-op
// @Tags Cart
// @Produce json
// @Param userId path string true "User ID or guest token"
// @Param productId path int true "Product ID"
// @Success 200 {object} models.Response
// @Router /cart/remove/{userId}/{productId} [delete]
func (ctrl *CartController) RemoveItem(c *gin.Context) {
	userKey := c.Param("userId")
	productID, err := strconv.Atoi(c.Param("productId"))
	if err != nil {
		c.JSON(400, gin.H{"success": false, "message": "Invalid product ID"})
		return
	}

	if err := ctrl.carts.RemoveItem(c.Request.Context(), userKey, productID); err != nil {
		c.JSON(500, gin.H{"success": false, "message": "Failed to remove item"})
		return
	}

	c.JSON(200, gin.H{"success": true, "message": "Item removed from cart"})
}

// Checkout godoc
// @Summary Checkout cart
// @Description Convert the cart snapshot into a checkout record and clear the cart
// @Tags Cart
// @Accept json
// @Produce json
// @Param request body models.CartCheckoutRequest true "Checkout Request"
// @Success 200 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Router /cart/checkout [post]
func (ctrl *CartController) Checkout(c *gin.Context) {
	var req models.CartCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"success": false, "message": "Invalid request"})
		return
	}

	userID, err := strconv.Atoi(req.UserID.String())
	if err != nil {
		c.JSON(400, gin.H{"success": false, "message": services.ErrMissingUser.Error()})
		return
	}

	// The snapshot is read from the guest key when one is supplied; the
	// checkout itself is always attributed to the registered user.
	cartKey := req.UserID.String()
	if req.GuestID != "" {
		cartKey = req.GuestID.String()
	}

	checkoutID, totalAmount, err := ctrl.carts.Checkout(c.Request.Context(), cartKey, userID)
	if err != nil {
		if errors.Is(err, services.ErrEmptyCart) {
			c.JSON(400, gin.H{"success": false, "message": "Cart is empty"})
			return
		}
		c.JSON(500, gin.H{"success": false, "message": "Checkout failed"})
		return
	}

	c.JSON(200, gin.H{
		"success":    true,
		"message":    "Checkout successful",
		"checkoutId": checkoutID,
		"data":       gin.H{"total_amount": totalAmount},
	})
}

// CreateGuestSession godoc
// @Summary Create guest session
// @Description Mint a guest cart token with no durable identity
// @Tags Cart
// @Produce json
// @Success 201 {object} models.Response
// @Router /cart/guest [post]
func (ctrl *CartController) CreateGuestSession(c *gin.Context) {
	c.JSON(201, gin.H{
		"success": true,
		"message": "Guest session created",
		"data":    gin.H{"guestId": utils.NewGuestToken()},
	})
}
