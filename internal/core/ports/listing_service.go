package ports

import (
	"context"

	"github.com/marketprime/marketplace-api/internal/core/domain"
)

// CreateListingInput carries everything needed to create a listing. Images
// are the stable relative references returned by the image store.
type CreateListingInput struct {
	Name         string
	Description  string
	Age          string
	City         string
	State        string
	PhoneNo      string
	WhatsappNo   string
	HourlyRate   float64
	NightRate    float64
	Services     []string
	Availability string
	Images       []string
}

// UpdateListingInput is an allow-list merge payload: only non-nil fields are
// applied. Status, Verified and Featured are admin-only; for any other
// principal they are stripped from the merge and the rest of the update still
// proceeds.
type UpdateListingInput struct {
	Name         *string
	Description  *string
	Age          *string
	City         *string
	State        *string
	PhoneNo      *string
	WhatsappNo   *string
	HourlyRate   *float64
	NightRate    *float64
	Services     *[]string
	Availability *string

	Status   *domain.ListingStatus
	Verified *bool
	Featured *bool
}

// ListingService defines the listing use-cases. Every mutating operation
// receives the acting principal and enforces the ownership/role policy:
// permitted iff owner or admin, with status escalation admin-only.
type ListingService interface {
	Create(ctx context.Context, p *domain.Principal, in CreateListingInput) (*domain.Listing, error)
	GetByID(ctx context.Context, id string) (*domain.Listing, error)
	// ListApproved is the public catalogue: Approved listings only.
	ListApproved(ctx context.Context) ([]*domain.Listing, error)
	// ListAll returns every listing regardless of status (admin view).
	ListAll(ctx context.Context) ([]*domain.Listing, error)
	// ListPending returns the moderation backlog, oldest first (admin view).
	ListPending(ctx context.Context) ([]*domain.Listing, error)
	Update(ctx context.Context, p *domain.Principal, id string, in UpdateListingInput) (*domain.Listing, error)
	Delete(ctx context.Context, p *domain.Principal, id string) error
	// Transition applies a moderation decision. Admin-only, validated against
	// the moderation state machine.
	Transition(ctx context.Context, p *domain.Principal, id string, next domain.ListingStatus) (*domain.Listing, error)
}
