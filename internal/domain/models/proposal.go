package models

import (
	"time"
)

// ProposalStatus is the lifecycle state of a proposal.
type ProposalStatus string

const (
	ProposalDraft    ProposalStatus = "draft"
	ProposalSent     ProposalStatus = "sent"
	ProposalAccepted ProposalStatus = "accepted"
	ProposalDeclined ProposalStatus = "declined"
)

// Proposal is a persisted client proposal. Body may be filled by the
// drafting provider from a brief.
type Proposal struct {
	ID         string         `json:"id" db:"id"`
	UserID     string         `json:"-" db:"user_id"`
	Title      string         `json:"title" db:"title"`
	ClientName string         `json:"client_name" db:"client_name"`
	Brief      string         `json:"brief" db:"brief"`
	Body       string         `json:"body" db:"body"`
	Status     ProposalStatus `json:"status" db:"status"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at" db:"updated_at"`
}
