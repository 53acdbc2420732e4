package domain

import (
	"errors"
	"time"
)

// Enquiry statuses
const (
	StatusNew      = "new"
	StatusRead     = "read"
	StatusArchived = "archived"
)

var (
	// ErrSpam marks a submission dropped by the honeypot check.
	ErrSpam = errors.New("submission rejected")
	// ErrTooMany is returned once an address exceeds its hourly quota.
	ErrTooMany = errors.New("too many enquiries, please try again later")
)

// Enquiry is a message sent through the public contact form.
type Enquiry struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Company     string    `json:"company"`
	Subject     string    `json:"subject"`
	Message     string    `json:"message"`
	ProjectType string    `json:"project_type"`
	Budget      string    `json:"budget"`
	Status      string    `json:"status"`
	IPAddress   string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// Submission is the public form payload.
type Submission struct {
	Name        string `json:"name" binding:"required,max=200"`
	Email       string `json:"email" binding:"required,email,max=254"`
	Phone       string `json:"phone" binding:"max=50"`
	Company     string `json:"company" binding:"max=200"`
	Subject     string `json:"subject" binding:"max=200"`
	Message     string `json:"message" binding:"required,min=10,max=5000"`
	ProjectType string `json:"project_type" binding:"max=100"`
	Budget      string `json:"budget" binding:"max=100"`
	// Website is a hidden field real visitors leave empty.
	Website string `json:"website"`
}
