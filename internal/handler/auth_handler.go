package handler

import (
	"errors"
	"log"
	"net/http"

	"minicrm/internal/service"
	"minicrm/internal/session"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles the registration, login and logout pages
type AuthHandler struct {
	service  service.AuthService
	sessions *session.Manager
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(s service.AuthService, sessions *session.Manager) *AuthHandler {
	return &AuthHandler{service: s, sessions: sessions}
}

// ShowRegister renders the registration page
func (h *AuthHandler) ShowRegister(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"page": "register", "flash": session.PopFlash(c)})
}

// Register handles the registration form. A duplicate email creates no row
// and sends the user back to the form with a flash message.
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		FullName string `form:"full_name" binding:"required"`
		Email    string `form:"email" binding:"required"`
		Password string `form:"password" binding:"required"`
	}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if _, err := h.service.Register(c.Request.Context(), req.FullName, req.Email, req.Password); err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			session.SetFlash(c, "Email already registered", "error")
			c.Redirect(http.StatusFound, "/register")
			return
		}
		log.Printf("Error during registration: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
		return
	}

	session.SetFlash(c, "Registration successful! Please login.", "success")
	c.Redirect(http.StatusFound, "/login")
}

// ShowLogin renders the login page
func (h *AuthHandler) ShowLogin(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"page": "login", "flash": session.PopFlash(c)})
}

// Login handles the login form. Bad credentials re-render the login page
// with a flash message and establish no session.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `form:"email" binding:"required"`
		Password string `form:"password" binding:"required"`
	}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	user, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusOK, gin.H{
				"page":  "login",
				"flash": session.Flash{Message: "Invalid credentials", Category: "error"},
			})
			return
		}
		log.Printf("Error during login: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to login"})
		return
	}

	if err := h.sessions.SetCookie(c, user.ID); err != nil {
		log.Printf("Error establishing session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to login"})
		return
	}

	session.SetFlash(c, "Welcome back!", "success")
	c.Redirect(http.StatusFound, "/")
}

// Logout clears the session and sends the user to the login page
func (h *AuthHandler) Logout(c *gin.Context) {
	h.sessions.ClearCookie(c)
	session.SetFlash(c, "You have been logged out", "info")
	c.Redirect(http.StatusFound, "/login")
}

// RegisterAuthRoutes registers the public auth routes
func (h *AuthHandler) RegisterAuthRoutes(r *gin.Engine) {
	r.GET("/register", h.ShowRegister)
	r.POST("/register", h.Register)
	r.GET("/login", h.ShowLogin)
	r.POST("/login", h.Login)
	r.GET("/logout", h.Logout)
}
