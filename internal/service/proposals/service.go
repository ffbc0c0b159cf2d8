// Package proposals implements proposal CRUD plus body drafting from a
// short brief via the drafting provider.
package proposals

import (
	"context"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"atelier/internal/config"
	"atelier/internal/domain"
	"atelier/internal/domain/models"
	"atelier/internal/domain/repositories"
	"atelier/internal/drafting"
)

// Service coordinates proposal persistence and drafting.
type Service struct {
	repo     repositories.ProposalRepository
	drafting *drafting.Service
	logger   *slog.Logger
}

// NewService creates the proposal service.
func NewService(
	repo repositories.ProposalRepository,
	draftingService *drafting.Service,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:     repo,
		drafting: draftingService,
		logger:   logger,
	}
}

// CreateProposalRequest is the client payload for a new proposal.
type CreateProposalRequest struct {
	Title      string `json:"title"`
	ClientName string `json:"client_name"`
	Brief      string `json:"brief"`
	Body       string `json:"body"`
}

// UpdateProposalRequest carries the editable proposal fields. Nil
// fields are left unchanged.
type UpdateProposalRequest struct {
	Title      *string `json:"title"`
	ClientName *string `json:"client_name"`
	Brief      *string `json:"brief"`
	Body       *string `json:"body"`
	Status     *string `json:"status"`
}

// Create persists a new draft proposal.
func (s *Service) Create(ctx context.Context, userID string, req *CreateProposalRequest) (*models.Proposal, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&req.ClientName, validation.Length(0, 200)),
		validation.Field(&req.Brief, validation.Length(0, config.MaxProposalBriefLength)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	proposal := &models.Proposal{
		UserID:     userID,
		Title:      req.Title,
		ClientName: req.ClientName,
		Brief:      req.Brief,
		Body:       req.Body,
		Status:     models.ProposalDraft,
	}
	if err := s.repo.Create(ctx, proposal); err != nil {
		return nil, err
	}

	s.logger.Info("proposal created", "id", proposal.ID, "title", proposal.Title, "user_id", userID)
	return proposal, nil
}

// Get retrieves one proposal.
func (s *Service) Get(ctx context.Context, userID, id string) (*models.Proposal, error) {
	return s.repo.GetByID(ctx, id, userID)
}

// List returns the user's proposals, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]models.Proposal, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Update applies edits to a proposal.
func (s *Service) Update(ctx context.Context, userID, id string, req *UpdateProposalRequest) (*models.Proposal, error) {
	if req.Title == nil && req.ClientName == nil && req.Brief == nil &&
		req.Body == nil && req.Status == nil {
		return nil, fmt.Errorf("%w: at least one field must be provided", domain.ErrValidation)
	}

	proposal, err := s.repo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		if err := validation.Validate(*req.Title, validation.Required, validation.Length(1, 200)); err != nil {
			return nil, fmt.Errorf("%w: title: %v", domain.ErrValidation, err)
		}
		proposal.Title = *req.Title
	}
	if req.ClientName != nil {
		proposal.ClientName = *req.ClientName
	}
	if req.Brief != nil {
		if len(*req.Brief) > config.MaxProposalBriefLength {
			return nil, fmt.Errorf("%w: brief exceeds maximum length of %d", domain.ErrValidation, config.MaxProposalBriefLength)
		}
		proposal.Brief = *req.Brief
	}
	if req.Body != nil {
		proposal.Body = *req.Body
	}
	if req.Status != nil {
		next := models.ProposalStatus(*req.Status)
		switch next {
		case models.ProposalDraft, models.ProposalSent, models.ProposalAccepted, models.ProposalDeclined:
			proposal.Status = next
		default:
			return nil, fmt.Errorf("%w: unknown status '%s'", domain.ErrValidation, *req.Status)
		}
	}

	if err := s.repo.Update(ctx, proposal); err != nil {
		return nil, err
	}

	s.logger.Info("proposal updated", "id", proposal.ID, "status", proposal.Status, "user_id", userID)
	return proposal, nil
}

// Delete removes a proposal.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.repo.GetByID(ctx, id, userID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return err
	}
	s.logger.Info("proposal deleted", "id", id, "user_id", userID)
	return nil
}

// Draft generates body copy for a proposal from its brief and persists
// it. Provider failures fall back to a deterministic body, so drafting
// never fails on the provider's account. The second return value
// reports whether the fallback was used.
func (s *Service) Draft(ctx context.Context, userID, id string) (*models.Proposal, bool, error) {
	proposal, err := s.repo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, false, err
	}
	if proposal.Brief == "" {
		return nil, false, fmt.Errorf("%w: proposal has no brief to draft from", domain.ErrValidation)
	}

	body, fellBack := s.drafting.Draft(ctx, drafting.Request{
		Title:      proposal.Title,
		ClientName: proposal.ClientName,
		Brief:      proposal.Brief,
	})

	proposal.Body = body
	if err := s.repo.Update(ctx, proposal); err != nil {
		return nil, false, err
	}

	s.logger.Info("proposal drafted",
		"id", proposal.ID,
		"user_id", userID,
		"fallback", fellBack,
	)

	return proposal, fellBack, nil
}
