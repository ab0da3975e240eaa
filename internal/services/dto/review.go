package dto

import "time"

type SubmitReviewRequest struct {
	Rating   float64 `json:"rating" validate:"required,min=0,max=5"`
	Feedback string  `json:"feedback" validate:"max=2000"`
}

type ReviewResponse struct {
	ID                string    `json:"id"`
	ProjectID         string    `json:"project_id,omitempty"`
	ProjectTitle      string    `json:"project_title,omitempty"`
	ReviewedUserTitle string    `json:"reviewed_user_title"`
	Rating            *float64  `json:"rating"`
	Feedback          string    `json:"feedback,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}
