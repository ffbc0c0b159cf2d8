package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"atelier/internal/domain"
	"atelier/internal/domain/models"
	"atelier/internal/domain/repositories"
)

// PostgresProposalRepository implements the ProposalRepository interface
type PostgresProposalRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewProposalRepository creates a new proposal repository
func NewProposalRepository(config *RepositoryConfig) repositories.ProposalRepository {
	return &PostgresProposalRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const proposalColumns = `id, user_id, title, client_name, brief, body, status, created_at, updated_at`

// Create creates a new proposal
func (r *PostgresProposalRepository) Create(ctx context.Context, proposal *models.Proposal) error {
	executor := GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, title, client_name, brief, body, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, r.tables.Proposals)

	now := time.Now()
	if proposal.CreatedAt.IsZero() {
		proposal.CreatedAt = now
	}
	if proposal.UpdatedAt.IsZero() {
		proposal.UpdatedAt = now
	}

	err := executor.QueryRow(ctx, query,
		proposal.UserID,
		proposal.Title,
		proposal.ClientName,
		proposal.Brief,
		proposal.Body,
		proposal.Status,
		proposal.CreatedAt,
		proposal.UpdatedAt,
	).Scan(&proposal.ID, &proposal.CreatedAt, &proposal.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create proposal: %w", err)
	}

	return nil
}

// GetByID retrieves a proposal by ID
func (r *PostgresProposalRepository) GetByID(ctx context.Context, id, userID string) (*models.Proposal, error) {
	executor := GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE id = $1 AND user_id = $2
	`, proposalColumns, r.tables.Proposals)

	proposal, err := scanProposal(executor.QueryRow(ctx, query, id, userID))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("proposal %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get proposal: %w", err)
	}

	return proposal, nil
}

// Update updates a proposal
func (r *PostgresProposalRepository) Update(ctx context.Context, proposal *models.Proposal) error {
	executor := GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $1, client_name = $2, brief = $3, body = $4, status = $5, updated_at = $6
		WHERE id = $7 AND user_id = $8
	`, r.tables.Proposals)

	proposal.UpdatedAt = time.Now()

	result, err := executor.Exec(ctx, query,
		proposal.Title,
		proposal.ClientName,
		proposal.Brief,
		proposal.Body,
		proposal.Status,
		proposal.UpdatedAt,
		proposal.ID,
		proposal.UserID,
	)
	if err != nil {
		return fmt.Errorf("update proposal: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("proposal %s: %w", proposal.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete removes a proposal
func (r *PostgresProposalRepository) Delete(ctx context.Context, id, userID string) error {
	executor := GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1 AND user_id = $2
	`, r.tables.Proposals)

	result, err := executor.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete proposal: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("proposal %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// ListByUser lists all proposals for a user, newest first
func (r *PostgresProposalRepository) ListByUser(ctx context.Context, userID string) ([]models.Proposal, error) {
	executor := GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, proposalColumns, r.tables.Proposals)

	rows, err := executor.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}
	defer rows.Close()

	var proposals []models.Proposal
	for rows.Next() {
		proposal, err := scanProposal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan proposal: %w", err)
		}
		proposals = append(proposals, *proposal)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate proposals: %w", err)
	}

	return proposals, nil
}

func scanProposal(row rowScanner) (*models.Proposal, error) {
	var proposal models.Proposal
	err := row.Scan(
		&proposal.ID,
		&proposal.UserID,
		&proposal.Title,
		&proposal.ClientName,
		&proposal.Brief,
		&proposal.Body,
		&proposal.Status,
		&proposal.CreatedAt,
		&proposal.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &proposal, nil
}
