package models

// ChatRoom — комната проекта. Сам транспорт сообщений живет во внешнем
// сервисе; здесь только жизненный цикл комнаты и участники.
type ChatRoom struct {
	BaseModel
	ProjectID *string        `gorm:"type:uuid;uniqueIndex"`
	Slug      string         `gorm:"uniqueIndex;not null"`
	Status    ChatRoomStatus `gorm:"type:varchar(20);default:'active'"`

	Participants []User    `gorm:"many2many:chat_room_participants"`
	Messages     []Message `gorm:"foreignKey:ChatRoomID"`
}

type Message struct {
	BaseModel
	ChatRoomID string  `gorm:"type:uuid;not null;index"`
	SenderID   *string `gorm:"type:uuid;index"`
	Content    string  `gorm:"type:text"`
}
