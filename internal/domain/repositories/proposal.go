package repositories

import (
	"context"

	"atelier/internal/domain/models"
)

// ProposalRepository defines data access operations for proposals
type ProposalRepository interface {
	Create(ctx context.Context, proposal *models.Proposal) error
	GetByID(ctx context.Context, id, userID string) (*models.Proposal, error)
	Update(ctx context.Context, proposal *models.Proposal) error
	Delete(ctx context.Context, id, userID string) error
	ListByUser(ctx context.Context, userID string) ([]models.Proposal, error)
}
