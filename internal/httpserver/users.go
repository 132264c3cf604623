package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	usersvc "storefront-api/internal/service/user"
)

type signupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func signupHandler(users userService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req signupRequest
		if err := bindJSON(c, &req); err != nil {
			respondError(c, err)
			return
		}
		u, err := users.Signup(c.Request.Context(), usersvc.SignupInput{
			Name:     req.Name,
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"status": "success", "user": u})
	}
}

func loginHandler(users userService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := bindJSON(c, &req); err != nil {
			respondError(c, err)
			return
		}
		session, err := users.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":       "success",
			"token":        session.AccessToken,
			"refreshToken": session.RefreshToken,
			"expiresIn":    session.ExpiresIn,
			"user":         session.User,
		})
	}
}

func meHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "success", "user": currentUser(c)})
}
