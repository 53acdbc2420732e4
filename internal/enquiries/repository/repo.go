package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/studio-atelier/site-backend/internal/enquiries/domain"
)

type EnquiryRepository struct {
	db *sql.DB
}

func NewEnquiryRepository(db *sql.DB) *EnquiryRepository {
	return &EnquiryRepository{db: db}
}

// Insert stores e and fills in CreatedAt.
func (r *EnquiryRepository) Insert(ctx context.Context, e *domain.Enquiry) error {
	const q = `
INSERT INTO contact_enquiries (id, name, email, phone, company, subject, message, project_type, budget, status, ip_address)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING created_at`

	err := r.db.QueryRowContext(ctx, q,
		e.ID, e.Name, e.Email, e.Phone, e.Company, e.Subject, e.Message, e.ProjectType, e.Budget, e.Status, e.IPAddress,
	).Scan(&e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert enquiry: %w", err)
	}
	return nil
}

// CountSince returns the enquiries sent from ip at or after the cutoff, used
// to cap submissions across restarts and instances.
func (r *EnquiryRepository) CountSince(ctx context.Context, ip string, minutes int) (int, error) {
	const q = `SELECT COUNT(*) FROM contact_enquiries WHERE ip_address = $1 AND created_at >= now() - make_interval(mins => $2)`

	var n int
	if err := r.db.QueryRowContext(ctx, q, ip, minutes).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count enquiries: %w", err)
	}
	return n, nil
}
