package httpserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	checkoutsvc "storefront-api/internal/service/checkout"
)

const idempotencyHeader = "Idempotency-Key"

type checkoutRequest struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email" binding:"omitempty,email"`
}

type userIDRequest struct {
	UserID string `json:"userId"`
}

func checkoutHandler(checkout checkoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req checkoutRequest
		if c.Request.ContentLength != 0 {
			if err := bindJSON(c, &req); err != nil {
				respondError(c, err)
				return
			}
		}
		userID, ok := resolveUserID(c, req.UserID)
		if !ok {
			return
		}

		// The confirmation goes to the account holder unless the body says otherwise.
		u := currentUser(c)
		name := strings.TrimSpace(req.Name)
		if name == "" {
			name = u.Name
		}
		email := strings.TrimSpace(req.Email)
		if email == "" {
			email = u.Email
		}

		res, err := checkout.Checkout(c.Request.Context(), checkoutsvc.Input{
			UserID:         userID,
			Name:           name,
			Email:          email,
			IdempotencyKey: strings.TrimSpace(c.GetHeader(idempotencyHeader)),
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":            "success",
			"order":             res.Order,
			"productsPurchased": res.Items,
			"totalPrice":        res.TotalPrice,
		})
	}
}

func listOrdersHandler(orders orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req userIDRequest
		if c.Request.ContentLength != 0 {
			if err := bindJSON(c, &req); err != nil {
				respondError(c, err)
				return
			}
		}
		userID, ok := resolveUserID(c, req.UserID)
		if !ok {
			return
		}
		list, err := orders.ListForUser(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "success", "orders": list})
	}
}
