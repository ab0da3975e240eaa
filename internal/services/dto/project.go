package dto

import "time"

// Даты приходят строками формата YYYY-MM-DD и парсятся в сервисе.
type CreateProjectRequest struct {
	Title           string   `json:"title" validate:"required,max=200,project_title"`
	Description     string   `json:"description" validate:"required"`
	AdditionalNotes string   `json:"additional_notes" validate:"max=200"`
	SkillsNeeded    []string `json:"skills_needed" validate:"required,min=1,dive,max=50"`
	MinPrice        int      `json:"min_price" validate:"required,min=10"`
	MaxPrice        int      `json:"max_price" validate:"required,gtefield=MinPrice"`
	DueDate         string   `json:"due_date" validate:"required,datetime=2006-01-02"`
	ProposalTimeEnd string   `json:"proposal_time_end" validate:"required,datetime=2006-01-02"`
}

type UpdateProjectRequest struct {
	Title           *string  `json:"title" validate:"omitempty,max=200,project_title"`
	Description     *string  `json:"description" validate:"omitempty"`
	AdditionalNotes *string  `json:"additional_notes" validate:"omitempty,max=200"`
	SkillsNeeded    []string `json:"skills_needed" validate:"omitempty,min=1,dive,max=50"`
	DueDate         *string  `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	ProposalTimeEnd *string  `json:"proposal_time_end" validate:"omitempty,datetime=2006-01-02"`
}

type ProjectResponse struct {
	ID                string    `json:"id"`
	PublishedUsername string    `json:"published_username"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	AdditionalNotes   string    `json:"additional_notes,omitempty"`
	SkillsNeeded      []string  `json:"skills_needed"`
	MinPrice          int       `json:"min_price"`
	MaxPrice          int       `json:"max_price"`
	DueDate           string    `json:"due_date"`
	ProposalTimeEnd   string    `json:"proposal_time_end"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
}
