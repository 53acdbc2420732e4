package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studio-atelier/site-backend/internal/enquiries/domain"
)

func TestEnquiryRepository_Insert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewEnquiryRepository(db)
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	e := &domain.Enquiry{
		ID: "5f0c3f3e-8c4e-4bd1-9d42-1f6f0e0a1b2c", Name: "Rui", Email: "rui@example.com",
		Message: "Hello there, studio", Status: domain.StatusNew, IPAddress: "10.0.0.1",
	}

	mock.ExpectQuery(`INSERT INTO contact_enquiries`).
		WithArgs(e.ID, "Rui", "rui@example.com", "", "", "", "Hello there, studio", "", "", "new", "10.0.0.1").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))

	require.NoError(t, repo.Insert(context.Background(), e))
	assert.Equal(t, created, e.CreatedAt)

	mock.ExpectQuery(`INSERT INTO contact_enquiries`).WillReturnError(errors.New("connection reset"))
	assert.Error(t, repo.Insert(context.Background(), &domain.Enquiry{}))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnquiryRepository_CountSince(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM contact_enquiries WHERE ip_address = \$1`).
		WithArgs("10.0.0.1", 60).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	n, err := NewEnquiryRepository(db).CountSince(context.Background(), "10.0.0.1", 60)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	require.NoError(t, mock.ExpectationsWereMet())
}
