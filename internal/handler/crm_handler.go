package handler

import (
	"errors"
	"log"
	"net/http"

	"minicrm/internal/middleware"
	"minicrm/internal/model"
	"minicrm/internal/service"
	"minicrm/internal/session"

	"github.com/gin-gonic/gin"
)

// CRMHandler handles the dashboard and the customer/task creation forms
type CRMHandler struct {
	service  service.CRMService
	sessions *session.Manager
}

// NewCRMHandler creates a new CRMHandler
func NewCRMHandler(s service.CRMService, sessions *session.Manager) *CRMHandler {
	return &CRMHandler{service: s, sessions: sessions}
}

// Helper to get the authenticated user ID set by the session middleware
func getAuthUserID(c *gin.Context) (int, error) {
	userIDVal, exists := c.Get(middleware.AuthUserKey)
	if !exists {
		return 0, errors.New("user ID not found in context")
	}
	userID, ok := userIDVal.(int)
	if !ok {
		return 0, errors.New("invalid user ID type in context")
	}
	return userID, nil
}

// Dashboard renders the home page aggregation
func (h *CRMHandler) Dashboard(c *gin.Context) {
	userID, err := getAuthUserID(c)
	if err != nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	dashboard, err := h.service.Dashboard(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			// Session references a deleted user; treat as logged out
			h.sessions.ClearCookie(c)
			c.Redirect(http.StatusFound, "/login")
			return
		}
		log.Printf("Error loading dashboard: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"page":            "dashboard",
		"flash":           session.PopFlash(c),
		"user":            dashboard.User,
		"customers":       dashboard.Customers,
		"tasks":           dashboard.Tasks,
		"total_customers": dashboard.TotalCustomers,
		"total_tasks":     dashboard.TotalTasks,
		"pending_tasks":   dashboard.PendingTasks,
	})
}

// AddCustomer handles the add-customer form
func (h *CRMHandler) AddCustomer(c *gin.Context) {
	userID, err := getAuthUserID(c)
	if err != nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	var req model.CreateCustomerRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if _, err := h.service.AddCustomer(c.Request.Context(), userID, req); err != nil {
		log.Printf("Error creating customer: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add customer"})
		return
	}

	session.SetFlash(c, "Customer added successfully!", "success")
	c.Redirect(http.StatusFound, "/")
}

// AddTask handles the add-task form. A malformed due_date surfaces as a
// server error rather than a validation message.
func (h *CRMHandler) AddTask(c *gin.Context) {
	userID, err := getAuthUserID(c)
	if err != nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	var req model.CreateTaskRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if _, err := h.service.AddTask(c.Request.Context(), userID, req); err != nil {
		log.Printf("Error creating task: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add task"})
		return
	}

	session.SetFlash(c, "Task added successfully!", "success")
	c.Redirect(http.StatusFound, "/")
}

// HealthCheck responds with a fixed OK regardless of session state
func (h *CRMHandler) HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// RegisterCRMRoutes registers the dashboard and form routes behind the
// session gate, plus the unauthenticated health check
func (h *CRMHandler) RegisterCRMRoutes(r *gin.Engine, authMW gin.HandlerFunc) {
	gated := r.Group("/")
	gated.Use(authMW)
	{
		gated.GET("", h.Dashboard)
		gated.POST("/customer/add", h.AddCustomer)
		gated.POST("/task/add", h.AddTask)
	}

	r.GET("/healthz", h.HealthCheck)
}
