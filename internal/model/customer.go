package model

import "time"

// Customer is a CRM contact owned by exactly one user
type Customer struct {
	ID          int        `json:"id"`
	Name        string     `json:"name"`
	Email       *string    `json:"email,omitempty"` // Pointers for optional fields
	Phone       *string    `json:"phone,omitempty"`
	Company     *string    `json:"company,omitempty"`
	Status      *string    `json:"status,omitempty"` // Free-form, e.g. "Active"/"Prospect"
	Notes       *string    `json:"notes,omitempty"`
	UserID      int        `json:"user_id"`
	CreatedAt   time.Time  `json:"created_at"`
	LastContact *time.Time `json:"last_contact,omitempty"`
}

// CreateCustomerRequest carries the add-customer form fields
type CreateCustomerRequest struct {
	Name    string `form:"name" binding:"required"`
	Email   string `form:"email"`
	Phone   string `form:"phone"`
	Company string `form:"company"`
	Status  string `form:"status"`
	Notes   string `form:"notes"`
}
