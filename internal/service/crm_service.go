package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"minicrm/internal/model"
	"minicrm/internal/repository"
)

// DashboardTaskLimit caps the upcoming-task list on the dashboard
const DashboardTaskLimit = 5

// ErrUserNotFound is returned when a session references a user that no
// longer exists
var ErrUserNotFound = errors.New("user not found")

const dueDateLayout = "2006-01-02"

// CRMService backs the dashboard and the customer/task creation forms
type CRMService interface {
	Dashboard(ctx context.Context, userID int) (*model.Dashboard, error)
	AddCustomer(ctx context.Context, userID int, req model.CreateCustomerRequest) (*model.Customer, error)
	AddTask(ctx context.Context, userID int, req model.CreateTaskRequest) (*model.Task, error)
}

type crmService struct {
	userRepo     repository.UserRepository
	customerRepo repository.CustomerRepository
	taskRepo     repository.TaskRepository
}

// NewCRMService creates a new CRMService
func NewCRMService(userRepo repository.UserRepository, customerRepo repository.CustomerRepository, taskRepo repository.TaskRepository) CRMService {
	return &crmService{
		userRepo:     userRepo,
		customerRepo: customerRepo,
		taskRepo:     taskRepo,
	}
}

// Dashboard aggregates everything the home page shows: the user, all owned
// customers, the 5 soonest-due tasks, and the counters. TotalTasks counts
// the fetched (capped) task list, not every task the user owns.
func (s *crmService) Dashboard(ctx context.Context, userID int) (*model.Dashboard, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load dashboard user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	customers, err := s.customerRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load dashboard customers: %w", err)
	}

	tasks, err := s.taskRepo.FindUpcomingByUser(ctx, userID, DashboardTaskLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load dashboard tasks: %w", err)
	}

	pending, err := s.taskRepo.CountByUserAndStatus(ctx, userID, model.TaskStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending tasks: %w", err)
	}

	return &model.Dashboard{
		User:           user,
		Customers:      customers,
		Tasks:          tasks,
		TotalCustomers: len(customers),
		TotalTasks:     len(tasks),
		PendingTasks:   pending,
	}, nil
}

// AddCustomer creates a customer owned by the given user with last_contact
// stamped to now
func (s *crmService) AddCustomer(ctx context.Context, userID int, req model.CreateCustomerRequest) (*model.Customer, error) {
	now := time.Now().UTC()
	customer := &model.Customer{
		Name:        req.Name,
		Email:       optional(req.Email),
		Phone:       optional(req.Phone),
		Company:     optional(req.Company),
		Status:      optional(req.Status),
		Notes:       optional(req.Notes),
		UserID:      userID,
		CreatedAt:   now,
		LastContact: &now,
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return customer, nil
}

// AddTask creates a task owned by the given user. The due date is always
// parsed from the form value; a malformed or empty value propagates as an
// error and surfaces to the client as a server error. Known gap, kept on
// purpose to match the existing form contract.
func (s *crmService) AddTask(ctx context.Context, userID int, req model.CreateTaskRequest) (*model.Task, error) {
	dueDate, err := time.Parse(dueDateLayout, req.DueDate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse due date %q: %w", req.DueDate, err)
	}

	var customerID *int
	if req.CustomerID != "" {
		id, err := strconv.Atoi(req.CustomerID)
		if err != nil {
			return nil, fmt.Errorf("failed to parse customer id %q: %w", req.CustomerID, err)
		}
		customerID = &id
	}

	priority := req.Priority
	if priority == "" {
		priority = model.TaskPriorityMedium
	}

	task := &model.Task{
		Title:       req.Title,
		Description: optional(req.Description),
		DueDate:     &dueDate,
		Status:      model.TaskStatusPending,
		Priority:    priority,
		UserID:      userID,
		CustomerID:  customerID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return task, nil
}

// optional maps an empty form value to a NULL column
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
