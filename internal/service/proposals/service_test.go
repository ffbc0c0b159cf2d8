package proposals

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"atelier/internal/domain"
	"atelier/internal/domain/models"
	"atelier/internal/drafting"
)

type memoryProposalRepo struct {
	mu        sync.Mutex
	proposals map[string]*models.Proposal
	seq       int
}

func newMemoryProposalRepo() *memoryProposalRepo {
	return &memoryProposalRepo{proposals: make(map[string]*models.Proposal)}
}

func (m *memoryProposalRepo) Create(ctx context.Context, proposal *models.Proposal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	proposal.ID = fmt.Sprintf("prop-%d", m.seq)
	copied := *proposal
	m.proposals[proposal.ID] = &copied
	return nil
}

func (m *memoryProposalRepo) GetByID(ctx context.Context, id, userID string) (*models.Proposal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.proposals[id]
	if !ok || p.UserID != userID {
		return nil, fmt.Errorf("%w: proposal %s", domain.ErrNotFound, id)
	}
	copied := *p
	return &copied, nil
}

func (m *memoryProposalRepo) Update(ctx context.Context, proposal *models.Proposal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.proposals[proposal.ID]; !ok {
		return fmt.Errorf("%w: proposal %s", domain.ErrNotFound, proposal.ID)
	}
	copied := *proposal
	m.proposals[proposal.ID] = &copied
	return nil
}

func (m *memoryProposalRepo) Delete(ctx context.Context, id, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.proposals[id]
	if !ok || p.UserID != userID {
		return fmt.Errorf("%w: proposal %s", domain.ErrNotFound, id)
	}
	delete(m.proposals, id)
	return nil
}

func (m *memoryProposalRepo) ListByUser(ctx context.Context, userID string) ([]models.Proposal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Proposal
	for _, p := range m.proposals {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

type failingProvider struct{}

func (failingProvider) Draft(ctx context.Context, req drafting.Request) (string, error) {
	return "", errors.New("provider unavailable")
}
func (failingProvider) Name() string { return "failing" }

type staticProvider struct{ body string }

func (p staticProvider) Draft(ctx context.Context, req drafting.Request) (string, error) {
	return p.body, nil
}
func (staticProvider) Name() string { return "static" }

func newTestService(provider drafting.Provider) (*Service, *memoryProposalRepo) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := newMemoryProposalRepo()
	return NewService(repo, drafting.NewService(provider, logger), logger), repo
}

func TestCreate(t *testing.T) {
	svc, _ := newTestService(nil)

	p, err := svc.Create(context.Background(), "user-1", &CreateProposalRequest{
		Title:      "Website redesign",
		ClientName: "Acme BV",
		Brief:      "Modernize the marketing site.",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if p.Status != models.ProposalDraft {
		t.Errorf("new proposals must be drafts, got %s", p.Status)
	}
}

func TestCreate_RequiresTitle(t *testing.T) {
	svc, _ := newTestService(nil)

	_, err := svc.Create(context.Background(), "user-1", &CreateProposalRequest{Brief: "no title"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestDraft_UsesProviderBody(t *testing.T) {
	svc, _ := newTestService(staticProvider{body: "## Generated proposal"})
	ctx := context.Background()

	p, _ := svc.Create(ctx, "user-1", &CreateProposalRequest{
		Title: "Rebrand",
		Brief: "Full rebrand for Q2.",
	})

	drafted, fellBack, err := svc.Draft(ctx, "user-1", p.ID)
	if err != nil {
		t.Fatalf("Draft failed: %v", err)
	}
	if fellBack {
		t.Error("expected provider body, not fallback")
	}
	if drafted.Body != "## Generated proposal" {
		t.Errorf("unexpected body %q", drafted.Body)
	}

	// the drafted body is persisted
	stored, _ := svc.Get(ctx, "user-1", p.ID)
	if stored.Body != drafted.Body {
		t.Error("drafted body should be persisted")
	}
}

func TestDraft_ProviderFailureFallsBack(t *testing.T) {
	svc, _ := newTestService(failingProvider{})
	ctx := context.Background()

	p, _ := svc.Create(ctx, "user-1", &CreateProposalRequest{
		Title: "Rebrand",
		Brief: "Full rebrand for Q2.",
	})

	drafted, fellBack, err := svc.Draft(ctx, "user-1", p.ID)
	if err != nil {
		t.Fatalf("Draft must not fail on provider errors: %v", err)
	}
	if !fellBack {
		t.Error("expected fallback to be reported")
	}
	if drafted.Body == "" {
		t.Error("fallback body must not be empty")
	}
}

func TestDraft_RequiresBrief(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()

	p, _ := svc.Create(ctx, "user-1", &CreateProposalRequest{Title: "No brief"})

	if _, _, err := svc.Draft(ctx, "user-1", p.ID); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error for missing brief, got %v", err)
	}
}

func TestUpdate_StatusValidation(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()

	p, _ := svc.Create(ctx, "user-1", &CreateProposalRequest{Title: "T", Brief: "B"})

	bad := "archived"
	if _, err := svc.Update(ctx, "user-1", p.ID, &UpdateProposalRequest{Status: &bad}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error for unknown status, got %v", err)
	}

	good := string(models.ProposalAccepted)
	updated, err := svc.Update(ctx, "user-1", p.ID, &UpdateProposalRequest{Status: &good})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Status != models.ProposalAccepted {
		t.Errorf("expected accepted, got %s", updated.Status)
	}
}

func TestDelete(t *testing.T) {
	svc, repo := newTestService(nil)
	ctx := context.Background()

	p, _ := svc.Create(ctx, "user-1", &CreateProposalRequest{Title: "T"})
	if err := svc.Delete(ctx, "user-1", p.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if len(repo.proposals) != 0 {
		t.Error("proposal should be gone")
	}

	if err := svc.Delete(ctx, "user-1", p.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found on second delete, got %v", err)
	}
}
