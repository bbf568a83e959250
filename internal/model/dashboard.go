package model

// Dashboard aggregates everything the home page shows for one user
type Dashboard struct {
	User           *User      `json:"user"`
	Customers      []Customer `json:"customers"`
	Tasks          []Task     `json:"tasks"` // 5 soonest-due, ascending
	TotalCustomers int        `json:"total_customers"`
	TotalTasks     int        `json:"total_tasks"` // Counts the fetched tasks, not all rows
	PendingTasks   int        `json:"pending_tasks"`
}
