package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/studio-atelier/site-backend/internal/enquiries/domain"
	"github.com/studio-atelier/site-backend/internal/logging"
	"github.com/studio-atelier/site-backend/internal/metrics"
)

// Repository stores enquiries.
type Repository interface {
	Insert(ctx context.Context, e *domain.Enquiry) error
	CountSince(ctx context.Context, ip string, minutes int) (int, error)
}

type EnquiryService struct {
	repo       Repository
	maxPerHour int
}

// NewEnquiryService creates the service. maxPerHour of 0 disables the
// per-address quota.
func NewEnquiryService(repo Repository, maxPerHour int) *EnquiryService {
	return &EnquiryService{repo: repo, maxPerHour: maxPerHour}
}

// Submit stores a contact form submission sent from ip.
func (s *EnquiryService) Submit(ctx context.Context, sub domain.Submission, ip string) (*domain.Enquiry, error) {
	logger := logging.NewLogger(ctx)

	if strings.TrimSpace(sub.Website) != "" {
		metrics.EnquiriesTotal.WithLabelValues("spam").Inc()
		logger.LogWarnf("enquiries.submit", "honeypot filled, dropping submission from %s", ip)
		return nil, domain.ErrSpam
	}

	if s.maxPerHour > 0 {
		n, err := s.repo.CountSince(ctx, ip, 60)
		if err != nil {
			return nil, err
		}
		if n >= s.maxPerHour {
			metrics.EnquiriesTotal.WithLabelValues("quota").Inc()
			return nil, domain.ErrTooMany
		}
	}

	e := &domain.Enquiry{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(sub.Name),
		Email:       strings.ToLower(strings.TrimSpace(sub.Email)),
		Phone:       strings.TrimSpace(sub.Phone),
		Company:     strings.TrimSpace(sub.Company),
		Subject:     strings.TrimSpace(sub.Subject),
		Message:     strings.TrimSpace(sub.Message),
		ProjectType: strings.TrimSpace(sub.ProjectType),
		Budget:      strings.TrimSpace(sub.Budget),
		Status:      domain.StatusNew,
		IPAddress:   ip,
	}

	if err := s.repo.Insert(ctx, e); err != nil {
		metrics.EnquiriesTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.EnquiriesTotal.WithLabelValues("accepted").Inc()
	logger.LogInfof("enquiries.submit", "stored enquiry id=%s", e.ID)
	return e, nil
}
