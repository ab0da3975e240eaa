package models

type User struct {
	BaseModel
	Username     string     `gorm:"uniqueIndex;not null"`
	Email        string     `gorm:"uniqueIndex;not null"`
	PasswordHash string     `gorm:"not null"`
	Status       UserStatus `gorm:"type:varchar(20);default:'active'"`
	IsAdmin      bool       `gorm:"default:false"`
	// IsSuperuser выделяет единственный платформенный аккаунт —
	// контрагента каждой парной транзакции.
	IsSuperuser bool `gorm:"default:false"`

	// Relations
	Point *Point `gorm:"foreignKey:UserID"`
	Bid   *Bid   `gorm:"foreignKey:UserID"`
}
