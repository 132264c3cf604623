package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-api/internal/domain"
)

func listProductsHandler(products productService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := products.List(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "success", "products": list})
	}
}

func getProductHandler(products productService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := products.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				fail(c, http.StatusNotFound, "product not found")
				return
			}
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "success", "product": p})
	}
}
