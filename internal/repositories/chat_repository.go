package repositories

import (
	"errors"

	"gorm.io/gorm"

	"fls_backend/internal/models"
)

var ErrChatRoomNotFound = errors.New("chat room not found")

type ChatRepository interface {
	Create(db *gorm.DB, room *models.ChatRoom) error
	FindByProject(db *gorm.DB, projectID string) (*models.ChatRoom, error)
	FindBySlug(db *gorm.DB, slug string) (*models.ChatRoom, error)
	UpdateStatus(db *gorm.DB, id string, status models.ChatRoomStatus) error
	AddParticipants(db *gorm.DB, room *models.ChatRoom, users []models.User) error
	ListByParticipant(db *gorm.DB, userID string) ([]models.ChatRoom, error)
	CountMessages(db *gorm.DB, roomID string) (int64, error)
	Delete(db *gorm.DB, id string) error
}

type ChatRepositoryImpl struct{}

func NewChatRepository() ChatRepository {
	return &ChatRepositoryImpl{}
}

func (r *ChatRepositoryImpl) Create(db *gorm.DB, room *models.ChatRoom) error {
	return db.Create(room).Error
}

func (r *ChatRepositoryImpl) FindByProject(db *gorm.DB, projectID string) (*models.ChatRoom, error) {
	var room models.ChatRoom
	err := db.Preload("Participants").First(&room, "project_id = ?", projectID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChatRoomNotFound
		}
		return nil, err
	}
	return &room, nil
}

func (r *ChatRepositoryImpl) FindBySlug(db *gorm.DB, slug string) (*models.ChatRoom, error) {
	var room models.ChatRoom
	err := db.Preload("Participants").First(&room, "slug = ?", slug).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChatRoomNotFound
		}
		return nil, err
	}
	return &room, nil
}

func (r *ChatRepositoryImpl) UpdateStatus(db *gorm.DB, id string, status models.ChatRoomStatus) error {
	return db.Model(&models.ChatRoom{}).
		Where("id = ?", id).
		UpdateColumn("status", status).Error
}

func (r *ChatRepositoryImpl) AddParticipants(db *gorm.DB, room *models.ChatRoom, users []models.User) error {
	return db.Model(room).Association("Participants").Append(users)
}

func (r *ChatRepositoryImpl) ListByParticipant(db *gorm.DB, userID string) ([]models.ChatRoom, error) {
	var rooms []models.ChatRoom
	err := db.Joins("JOIN chat_room_participants crp ON crp.chat_room_id = chat_rooms.id").
		Where("crp.user_id = ?", userID).
		Find(&rooms).Error
	if err != nil {
		return nil, err
	}
	return rooms, nil
}

func (r *ChatRepositoryImpl) CountMessages(db *gorm.DB, roomID string) (int64, error) {
	var count int64
	err := db.Model(&models.Message{}).Where("chat_room_id = ?", roomID).Count(&count).Error
	return count, err
}

func (r *ChatRepositoryImpl) Delete(db *gorm.DB, id string) error {
	if err := db.Exec("DELETE FROM chat_room_participants WHERE chat_room_id = ?", id).Error; err != nil {
		return err
	}
	return db.Delete(&models.ChatRoom{}, "id = ?", id).Error
}
