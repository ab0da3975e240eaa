package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Point — баланс внутренних баллов пользователя.
type Point struct {
	BaseModel
	UserID  string `gorm:"type:uuid;uniqueIndex;not null"`
	Balance int    `gorm:"not null;default:0"`
}

// Bid — счетчик ставок. Тратится по одной на каждое предложение,
// еженедельно пополняется до потолка в 5.
type Bid struct {
	BaseModel
	UserID string `gorm:"type:uuid;uniqueIndex;not null"`
	NbBid  int    `gorm:"not null;default:5"`
}

const BidCeiling = 5

// TransactionLog — неизменяемая запись журнала. После создания
// обновляется только Username (снимок при удалении владельца).
type TransactionLog struct {
	ID              string          `gorm:"type:uuid;primaryKey"`
	UserID          *string         `gorm:"type:uuid;index"`
	Username        string          `gorm:"size:200"`
	TransactionType TransactionType `gorm:"type:varchar(25);not null"`
	Amount          int             `gorm:"not null;default:0"`
	Description     string          `gorm:"size:200;not null"`
	CreatedAt       time.Time
}

func (t *TransactionLog) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
