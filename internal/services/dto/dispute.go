package dto

import "time"

type OpenDisputeRequest struct {
	Description string `json:"description" validate:"required,max=2000"`
}

type DisputeResponse struct {
	ID               string    `json:"id"`
	ChosenProposalID string    `json:"chosen_proposal_id"`
	OpenedByUsername string    `json:"opened_by_username"`
	Description      string    `json:"description"`
	IsResolved       bool      `json:"is_resolved"`
	CreatedAt        time.Time `json:"created_at"`
}
