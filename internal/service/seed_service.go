package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"minicrm/internal/model"
	"minicrm/internal/repository"
	"minicrm/internal/utils"
)

const (
	// SeedAdminEmail gates the whole seeding pass: if a user with this
	// email exists, seeding is a no-op
	SeedAdminEmail = "admin@example.com"

	seedAdminName     = "Admin User"
	seedAdminPassword = "admin123"
)

// Seeder bootstraps a baseline dataset on first run
type Seeder struct {
	userRepo     repository.UserRepository
	customerRepo repository.CustomerRepository
	taskRepo     repository.TaskRepository
}

// NewSeeder creates a new Seeder
func NewSeeder(userRepo repository.UserRepository, customerRepo repository.CustomerRepository, taskRepo repository.TaskRepository) *Seeder {
	return &Seeder{
		userRepo:     userRepo,
		customerRepo: customerRepo,
		taskRepo:     taskRepo,
	}
}

// EnsureSeedData idempotently creates the admin user plus two sample
// customers and two sample tasks. It is gated solely on the admin email
// existing, so re-running against a seeded database does nothing.
func (s *Seeder) EnsureSeedData(ctx context.Context) error {
	existing, err := s.userRepo.FindByEmail(ctx, SeedAdminEmail)
	if err != nil {
		return fmt.Errorf("failed to check for seeded admin: %w", err)
	}
	if existing != nil {
		return nil
	}

	hashed, err := utils.HashPassword(seedAdminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash seed admin password: %w", err)
	}

	admin := &model.User{
		FullName:     seedAdminName,
		Email:        SeedAdminEmail,
		PasswordHash: hashed,
		Role:         model.RoleAdmin,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.userRepo.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create seed admin: %w", err)
	}

	customers := []*model.Customer{
		{
			Name:      "John Doe",
			Email:     ptr("john.doe@example.com"),
			Phone:     ptr("1234567890"),
			Company:   ptr("Example Corp"),
			Status:    ptr("Active"),
			UserID:    admin.ID,
			CreatedAt: time.Now().UTC(),
		},
		{
			Name:      "Jane Smith",
			Email:     ptr("jane.smith@example.com"),
			Phone:     ptr("0987654321"),
			Company:   ptr("Tech Solutions"),
			Status:    ptr("Prospect"),
			UserID:    admin.ID,
			CreatedAt: time.Now().UTC(),
		},
	}
	for _, c := range customers {
		if err := s.customerRepo.Create(ctx, c); err != nil {
			return fmt.Errorf("failed to create seed customer %q: %w", c.Name, err)
		}
	}

	tasks := []*model.Task{
		{
			Title:       "Follow-up with John Doe",
			Description: ptr("Discuss project updates"),
			DueDate:     ptr(time.Date(2025, time.January, 20, 0, 0, 0, 0, time.UTC)),
			Status:      model.TaskStatusPending,
			Priority:    model.TaskPriorityHigh,
			UserID:      admin.ID,
			CustomerID:  &customers[0].ID,
			CreatedAt:   time.Now().UTC(),
		},
		{
			Title:       "Send proposal to Jane Smith",
			Description: ptr("Proposal for new CRM system"),
			DueDate:     ptr(time.Date(2025, time.January, 25, 0, 0, 0, 0, time.UTC)),
			Status:      model.TaskStatusPending,
			Priority:    model.TaskPriorityMedium,
			UserID:      admin.ID,
			CustomerID:  &customers[1].ID,
			CreatedAt:   time.Now().UTC(),
		},
	}
	for _, t := range tasks {
		if err := s.taskRepo.Create(ctx, t); err != nil {
			return fmt.Errorf("failed to create seed task %q: %w", t.Title, err)
		}
	}

	log.Println("Database seeded successfully")
	return nil
}

func ptr[T any](v T) *T {
	return &v
}
