package repository

import (
	"context"
	"database/sql"
	"fmt"

	"minicrm/internal/model"
)

// CustomerRepository defines operations for customer data
type CustomerRepository interface {
	Create(ctx context.Context, customer *model.Customer) error
	FindByUser(ctx context.Context, userID int) ([]model.Customer, error)
}

type customerRepository struct {
	db *sql.DB
}

// NewCustomerRepository creates a new CustomerRepository
func NewCustomerRepository(db *sql.DB) CustomerRepository {
	return &customerRepository{db: db}
}

// Create inserts a new customer into the database
func (r *customerRepository) Create(ctx context.Context, c *model.Customer) error {
	query := `INSERT INTO customers (name, email, phone, company, status, notes, user_id, created_at, last_contact)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		c.Name, c.Email, c.Phone, c.Company, c.Status, c.Notes, c.UserID, c.CreatedAt, c.LastContact,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}
	return nil
}

// FindByUser retrieves all customers owned by the given user
func (r *customerRepository) FindByUser(ctx context.Context, userID int) ([]model.Customer, error) {
	query := `SELECT id, name, email, phone, company, status, notes, user_id, created_at, last_contact
              FROM customers WHERE user_id = $1 ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query customers by user: %w", err)
	}
	defer rows.Close()

	var customers []model.Customer
	for rows.Next() {
		var c model.Customer
		if err := rows.Scan(
			&c.ID, &c.Name, &c.Email, &c.Phone, &c.Company, &c.Status, &c.Notes,
			&c.UserID, &c.CreatedAt, &c.LastContact,
		); err != nil {
			return nil, fmt.Errorf("failed to scan customer row: %w", err)
		}
		customers = append(customers, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating customer rows: %w", err)
	}
	return customers, nil
}
