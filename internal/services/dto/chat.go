package dto

type ChatRoomResponse struct {
	ID           string         `json:"id"`
	ProjectID    string         `json:"project_id,omitempty"`
	Slug         string         `json:"slug"`
	Status       string         `json:"status"`
	Participants []UserResponse `json:"participants"`
}
