package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/marketprime/marketplace-api/internal/core/domain"
	"github.com/marketprime/marketplace-api/internal/core/ports"
)

// ImageRemover deletes stored image files by their relative references.
// Removal is best-effort: the listing record is authoritative and a leaked
// file is preferable to a failed delete.
type ImageRemover interface {
	Remove(refs []string)
}

// ListingService implements the listing use-cases: creation with role-derived
// initial status, audience-partitioned reads, allow-list updates, moderation
// transitions, and deletion.
type ListingService struct {
	repo   ports.ListingRepository
	images ImageRemover
	logger zerolog.Logger
}

func NewListingService(repo ports.ListingRepository, images ImageRemover, logger zerolog.Logger) *ListingService {
	return &ListingService{repo: repo, images: images, logger: logger}
}

// authorize applies the ownership/role policy shared by every mutating
// operation: permitted iff the principal owns the resource or is an admin.
func authorize(p *domain.Principal, ownerID string) error {
	if p.ID == ownerID || p.IsAdmin() {
		return nil
	}
	return domain.ErrForbidden
}

func (s *ListingService) Create(ctx context.Context, p *domain.Principal, in ports.CreateListingInput) (*domain.Listing, error) {
	role := domain.CreatedByUser
	if p.IsAdmin() {
		role = domain.CreatedByAdmin
	}

	now := time.Now().UTC()
	listing := &domain.Listing{
		Name:          in.Name,
		Description:   in.Description,
		Age:           in.Age,
		City:          in.City,
		State:         in.State,
		PhoneNo:       in.PhoneNo,
		WhatsappNo:    in.WhatsappNo,
		HourlyRate:    in.HourlyRate,
		NightRate:     in.NightRate,
		Services:      in.Services,
		Availability:  in.Availability,
		Images:        in.Images,
		OwnerID:       p.ID,
		OwnerName:     p.Name,
		OwnerEmail:    p.Email,
		CreatedByRole: role,
		Status:        role.InitialStatus(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	created, err := s.repo.Create(ctx, listing)
	if err != nil {
		return nil, fmt.Errorf("create listing: %w", err)
	}

	s.logger.Info().
		Str("listing_id", created.ID).
		Str("owner_id", p.ID).
		Str("status", string(created.Status)).
		Msg("listing created")
	return created, nil
}

func (s *ListingService) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *ListingService) ListApproved(ctx context.Context) ([]*domain.Listing, error) {
	return s.repo.List(ctx, ports.ListingFilter{Status: domain.StatusApproved})
}

func (s *ListingService) ListAll(ctx context.Context) ([]*domain.Listing, error) {
	return s.repo.List(ctx, ports.ListingFilter{})
}

func (s *ListingService) ListPending(ctx context.Context) ([]*domain.Listing, error) {
	return s.repo.List(ctx, ports.ListingFilter{Status: domain.StatusPending, OldestFirst: true})
}

// Update applies an allow-list merge. Status, Verified and Featured are
// admin-only fields: a non-admin payload carrying them is stripped of them
// and the rest of the update still proceeds. Read-then-save is not atomic; a
// concurrent writer loses (last-write-wins).
func (s *ListingService) Update(ctx context.Context, p *domain.Principal, id string, in ports.UpdateListingInput) (*domain.Listing, error) {
	listing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(p, listing.OwnerID); err != nil {
		return nil, err
	}

	applyListingUpdate(listing, in, p.IsAdmin())
	listing.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, listing); err != nil {
		return nil, fmt.Errorf("update listing: %w", err)
	}
	return listing, nil
}

// applyListingUpdate merges non-nil fields into the listing. Admin-only
// fields are ignored when isAdmin is false. CreatedByRole and ownership never
// change through an update.
func applyListingUpdate(l *domain.Listing, in ports.UpdateListingInput, isAdmin bool) {
	if in.Name != nil {
		l.Name = *in.Name
	}
	if in.Description != nil {
		l.Description = *in.Description
	}
	if in.Age != nil {
		l.Age = *in.Age
	}
	if in.City != nil {
		l.City = *in.City
	}
	if in.State != nil {
		l.State = *in.State
	}
	if in.PhoneNo != nil {
		l.PhoneNo = *in.PhoneNo
	}
	if in.WhatsappNo != nil {
		l.WhatsappNo = *in.WhatsappNo
	}
	if in.HourlyRate != nil {
		l.HourlyRate = *in.HourlyRate
	}
	if in.NightRate != nil {
		l.NightRate = *in.NightRate
	}
	if in.Services != nil {
		l.Services = *in.Services
	}
	if in.Availability != nil {
		l.Availability = *in.Availability
	}

	if !isAdmin {
		return
	}
	if in.Status != nil {
		l.Status = *in.Status
	}
	if in.Verified != nil {
		l.Verified = *in.Verified
	}
	if in.Featured != nil {
		l.Featured = *in.Featured
	}
}

func (s *ListingService) Delete(ctx context.Context, p *domain.Principal, id string) error {
	listing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authorize(p, listing.OwnerID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}

	if len(listing.Images) > 0 {
		s.images.Remove(listing.Images)
	}

	s.logger.Info().Str("listing_id", id).Str("deleted_by", p.ID).Msg("listing deleted")
	return nil
}

// Transition applies a moderation decision. Only admins may move a listing
// through the state machine; ownership grants no say here.
func (s *ListingService) Transition(ctx context.Context, p *domain.Principal, id string, next domain.ListingStatus) (*domain.Listing, error) {
	if !p.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	listing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !listing.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w (from %s to %s)", domain.ErrInvalidTransition, listing.Status, next)
	}

	listing.Status = next
	listing.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, listing); err != nil {
		return nil, fmt.Errorf("transition listing: %w", err)
	}

	s.logger.Info().
		Str("listing_id", id).
		Str("status", string(next)).
		Str("moderator", p.ID).
		Msg("moderation decision applied")
	return listing, nil
}
