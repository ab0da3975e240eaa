package models

// UserReview создается парой при завершении проекта: клиент и фрилансер
// оценивают друг друга. Rating пуст, пока отзыв не отправлен.
type UserReview struct {
	BaseModel
	ProjectID         *string           `gorm:"type:uuid;index"`
	ReviewerID        *string           `gorm:"type:uuid;index"`
	ReviewedUserTitle ReviewedUserTitle `gorm:"type:varchar(30);not null"`
	ReviewedUserID    *string           `gorm:"type:uuid;index"`
	Rating            *float64
	Feedback          string `gorm:"type:text"`

	Project *Project `gorm:"foreignKey:ProjectID"`
}

type UserSavedProject struct {
	BaseModel
	UserID    string `gorm:"type:uuid;not null;uniqueIndex:idx_user_saved_project"`
	ProjectID string `gorm:"type:uuid;not null;uniqueIndex:idx_user_saved_project"`

	Project *Project `gorm:"foreignKey:ProjectID"`
}
