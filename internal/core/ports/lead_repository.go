package ports

import (
	"context"

	"github.com/marketprime/marketplace-api/internal/core/domain"
)

// LeadRepository defines persistence operations for contact-form leads.
type LeadRepository interface {
	Create(ctx context.Context, l *domain.Lead) (*domain.Lead, error)
	FindByID(ctx context.Context, id string) (*domain.Lead, error)
	// List returns all leads, newest first.
	List(ctx context.Context) ([]*domain.Lead, error)
	UpdateStatus(ctx context.Context, id string, status domain.LeadStatus) (*domain.Lead, error)
}
