package ports

import (
	"context"

	"github.com/marketprime/marketplace-api/internal/core/domain"
)

// CreateLeadInput carries a contact-form submission. Reporter identity comes
// from the acting principal, not the payload.
type CreateLeadInput struct {
	Name     string
	Message  string
	PhoneNo  string
	Location string
	City     string
	State    string
}

// LeadService defines the lead-capture use-cases. Status updates require an
// authenticated principal but are not role-gated beyond that.
type LeadService interface {
	Create(ctx context.Context, p *domain.Principal, in CreateLeadInput) (*domain.Lead, error)
	GetByID(ctx context.Context, id string) (*domain.Lead, error)
	List(ctx context.Context) ([]*domain.Lead, error)
	UpdateStatus(ctx context.Context, p *domain.Principal, id string, status domain.LeadStatus) (*domain.Lead, error)
}
