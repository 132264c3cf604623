package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type cartLineRequest struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

// addToCartRequest accepts the line flat or nested under "product".
type addToCartRequest struct {
	cartLineRequest
	Product *cartLineRequest `json:"product"`
}

type updateCartRequest struct {
	ProductID   string `json:"productId" binding:"required"`
	NewQuantity *int   `json:"newQuantity" binding:"required,min=0"`
}

func getCartHandler(carts cartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := resolveUserID(c, "")
		if !ok {
			return
		}
		cart, err := carts.Get(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "success", "cart": cart})
	}
}

func addToCartHandler(carts cartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := resolveUserID(c, "")
		if !ok {
			return
		}
		var req addToCartRequest
		if err := bindJSON(c, &req); err != nil {
			respondError(c, err)
			return
		}
		line := req.cartLineRequest
		if req.Product != nil {
			line = *req.Product
		}
		if _, err := carts.AddLine(c.Request.Context(), userID, line.ID, line.Quantity); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"status": "success"})
	}
}

func updateCartHandler(carts cartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := resolveUserID(c, "")
		if !ok {
			return
		}
		var req updateCartRequest
		if err := bindJSON(c, &req); err != nil {
			respondError(c, err)
			return
		}
		if err := carts.UpdateLine(c.Request.Context(), userID, req.ProductID, *req.NewQuantity); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
