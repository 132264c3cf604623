package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-api/internal/domain"
	usersvc "storefront-api/internal/service/user"
)

const genericErrorMessage = "something went wrong"

var errorStatus = []struct {
	err    error
	status int
}{
	{domain.ErrNotFound, http.StatusNotFound},
	{domain.ErrAlreadyExists, http.StatusConflict},
	{domain.ErrInvalidProduct, http.StatusBadRequest},
	{domain.ErrDuplicateLine, http.StatusBadRequest},
	{domain.ErrNoActiveCart, http.StatusBadRequest},
	{domain.ErrInvalidLine, http.StatusBadRequest},
	{domain.ErrExceedsStock, http.StatusBadRequest},
	{domain.ErrNoChange, http.StatusBadRequest},
	{domain.ErrOutOfStock, http.StatusBadRequest},
	{domain.ErrEmptyCart, http.StatusBadRequest},
	{domain.ErrStockConflict, http.StatusConflict},
	{domain.ErrDuplicateRequest, http.StatusConflict},
	{usersvc.ErrInvalidCredentials, http.StatusUnauthorized},
	{usersvc.ErrInvalidToken, http.StatusUnauthorized},
}

// statusFor maps known errors to a client status. Unknown errors are not
// exposed.
func statusFor(err error) (int, bool) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, true
	}
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			return e.status, true
		}
	}
	return 0, false
}

func fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"status": "fail", "message": msg})
}

func respondError(c *gin.Context, err error) {
	if status, ok := statusFor(err); ok {
		fail(c, status, err.Error())
		return
	}
	loggerFrom(c).WithError(err).Error("request failed")
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"status": "error", "message": genericErrorMessage})
}
