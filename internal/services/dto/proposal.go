package dto

import "time"

type SubmitProposalRequest struct {
	ProposalText    string `json:"proposal_text" validate:"required"`
	ProposedPrice   int    `json:"proposed_price" validate:"required,min=10"`
	SubmissionDate  string `json:"submission_date" validate:"required,datetime=2006-01-02"`
	IsPriceAdjusted bool   `json:"is_price_adjusted"`
	IsDateAdjusted  bool   `json:"is_date_adjusted"`
}

type UpdateProposalRequest struct {
	ProposalText    *string `json:"proposal_text" validate:"omitempty"`
	ProposedPrice   *int    `json:"proposed_price" validate:"omitempty,min=10"`
	SubmissionDate  *string `json:"submission_date" validate:"omitempty,datetime=2006-01-02"`
	IsPriceAdjusted *bool   `json:"is_price_adjusted"`
	IsDateAdjusted  *bool   `json:"is_date_adjusted"`
}

type ProposalResponse struct {
	ID               string    `json:"id"`
	ProjectID        string    `json:"project_id"`
	ProposerUsername string    `json:"proposer_username"`
	ProposalText     string    `json:"proposal_text"`
	ProposedPrice    int       `json:"proposed_price"`
	SubmissionDate   string    `json:"submission_date"`
	IsPriceAdjusted  bool      `json:"is_price_adjusted"`
	IsDateAdjusted   bool      `json:"is_date_adjusted"`
	IsAccepted       bool      `json:"is_accepted"`
	IsCanceled       bool      `json:"is_canceled"`
	CreatedAt        time.Time `json:"created_at"`
}

type ChosenProposalResponse struct {
	ID         string            `json:"id"`
	ProjectID  string            `json:"project_id,omitempty"`
	Proposal   *ProposalResponse `json:"proposal,omitempty"`
	IsCanceled bool              `json:"is_canceled"`
}
