package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/marketprime/marketplace-api/internal/core/domain"
	"github.com/marketprime/marketplace-api/internal/core/ports"
)

// LeadService implements the contact-form lead-capture workflow.
type LeadService struct {
	repo   ports.LeadRepository
	logger zerolog.Logger
}

func NewLeadService(repo ports.LeadRepository, logger zerolog.Logger) *LeadService {
	return &LeadService{repo: repo, logger: logger}
}

func (s *LeadService) Create(ctx context.Context, p *domain.Principal, in ports.CreateLeadInput) (*domain.Lead, error) {
	now := time.Now().UTC()
	lead, err := s.repo.Create(ctx, &domain.Lead{
		Name:      in.Name,
		Message:   in.Message,
		PhoneNo:   in.PhoneNo,
		Location:  in.Location,
		City:      in.City,
		State:     in.State,
		OwnerID:   p.ID,
		UserName:  p.Name,
		UserEmail: p.Email,
		Status:    domain.LeadPending,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("create lead: %w", err)
	}

	s.logger.Info().Str("lead_id", lead.ID).Str("owner_id", p.ID).Msg("lead captured")
	return lead, nil
}

func (s *LeadService) GetByID(ctx context.Context, id string) (*domain.Lead, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *LeadService) List(ctx context.Context) ([]*domain.Lead, error) {
	return s.repo.List(ctx)
}

// UpdateStatus moves a lead between its working states. Any authenticated
// principal may do this; the status graph is deliberately not linear, so no
// transition validation is applied beyond enum membership.
func (s *LeadService) UpdateStatus(ctx context.Context, p *domain.Principal, id string, status domain.LeadStatus) (*domain.Lead, error) {
	lead, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("lead_id", id).
		Str("status", string(status)).
		Str("updated_by", p.ID).
		Msg("lead status updated")
	return lead, nil
}
