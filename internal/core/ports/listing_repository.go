package ports

import (
	"context"

	"github.com/marketprime/marketplace-api/internal/core/domain"
)

// ListingFilter narrows and orders a listing query.
type ListingFilter struct {
	// Status limits results to one moderation state; empty means all states.
	Status domain.ListingStatus
	// OldestFirst orders by creation time ascending so the review backlog
	// surfaces its oldest item first. Default is newest first.
	OldestFirst bool
}

// ListingRepository defines persistence operations for listings. Update
// replaces the stored document wholesale; a concurrent writer between the
// service's read and this write is overwritten (accepted last-write-wins).
type ListingRepository interface {
	Create(ctx context.Context, l *domain.Listing) (*domain.Listing, error)
	FindByID(ctx context.Context, id string) (*domain.Listing, error)
	List(ctx context.Context, filter ListingFilter) ([]*domain.Listing, error)
	Update(ctx context.Context, l *domain.Listing) error
	Delete(ctx context.Context, id string) error
}
