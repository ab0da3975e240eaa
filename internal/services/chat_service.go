package services

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"fls_backend/internal/appErrors"
	"fls_backend/internal/models"
	"fls_backend/internal/repositories"
	"fls_backend/internal/services/dto"
)

// ChatService ведет жизненный цикл комнаты проекта. Комната создается
// при выборе исполнителя, закрывается при завершении и закрывается или
// удаляется (если пустая) при удалении проекта или участника.
type ChatService interface {
	EnsureActiveWithParticipants(db *gorm.DB, projectID string, participants []models.User) (*models.ChatRoom, error)
	CloseForProject(db *gorm.DB, projectID string) error
	CloseOrDeleteForProject(db *gorm.DB, projectID string) error
	CloseOrDeleteForUser(db *gorm.DB, userID string) error
	ListRooms(db *gorm.DB, userID string) ([]dto.ChatRoomResponse, error)
}

type chatServiceImpl struct {
	chatRepo repositories.ChatRepository
}

func NewChatService(chatRepo repositories.ChatRepository) ChatService {
	return &chatServiceImpl{chatRepo: chatRepo}
}

func (s *chatServiceImpl) EnsureActiveWithParticipants(db *gorm.DB, projectID string, participants []models.User) (*models.ChatRoom, error) {
	room, err := s.chatRepo.FindByProject(db, projectID)
	if err != nil {
		if !appErrors.Is(err, repositories.ErrChatRoomNotFound) {
			return nil, appErrors.InternalError(err)
		}
		room = &models.ChatRoom{
			ProjectID: &projectID,
			Slug:      uuid.NewString(),
			Status:    models.ChatRoomStatusActive,
		}
		if err := s.chatRepo.Create(db, room); err != nil {
			return nil, appErrors.InternalError(err)
		}
	}
	if room.Status == models.ChatRoomStatusClosed {
		if err := s.chatRepo.UpdateStatus(db, room.ID, models.ChatRoomStatusActive); err != nil {
			return nil, appErrors.InternalError(err)
		}
		room.Status = models.ChatRoomStatusActive
	}
	if err := s.chatRepo.AddParticipants(db, room, participants); err != nil {
		return nil, appErrors.InternalError(err)
	}
	return room, nil
}

func (s *chatServiceImpl) CloseForProject(db *gorm.DB, projectID string) error {
	room, err := s.chatRepo.FindByProject(db, projectID)
	if err != nil {
		if appErrors.Is(err, repositories.ErrChatRoomNotFound) {
			return nil
		}
		return appErrors.InternalError(err)
	}
	if room.Status == models.ChatRoomStatusClosed {
		return nil
	}
	if err := s.chatRepo.UpdateStatus(db, room.ID, models.ChatRoomStatusClosed); err != nil {
		return appErrors.InternalError(err)
	}
	return nil
}

func (s *chatServiceImpl) CloseOrDeleteForProject(db *gorm.DB, projectID string) error {
	room, err := s.chatRepo.FindByProject(db, projectID)
	if err != nil {
		if appErrors.Is(err, repositories.ErrChatRoomNotFound) {
			return nil
		}
		return appErrors.InternalError(err)
	}
	return s.closeOrDelete(db, room)
}

func (s *chatServiceImpl) CloseOrDeleteForUser(db *gorm.DB, userID string) error {
	rooms, err := s.chatRepo.ListByParticipant(db, userID)
	if err != nil {
		return appErrors.InternalError(err)
	}
	for i := range rooms {
		if rooms[i].Status != models.ChatRoomStatusActive {
			continue
		}
		if err := s.closeOrDelete(db, &rooms[i]); err != nil {
			return err
		}
	}
	return nil
}

// closeOrDelete удаляет пустую комнату, непустую закрывает.
func (s *chatServiceImpl) closeOrDelete(db *gorm.DB, room *models.ChatRoom) error {
	count, err := s.chatRepo.CountMessages(db, room.ID)
	if err != nil {
		return appErrors.InternalError(err)
	}
	if count == 0 {
		if err := s.chatRepo.Delete(db, room.ID); err != nil {
			return appErrors.InternalError(err)
		}
		return nil
	}
	if room.Status != models.ChatRoomStatusClosed {
		if err := s.chatRepo.UpdateStatus(db, room.ID, models.ChatRoomStatusClosed); err != nil {
			return appErrors.InternalError(err)
		}
	}
	return nil
}

func (s *chatServiceImpl) ListRooms(db *gorm.DB, userID string) ([]dto.ChatRoomResponse, error) {
	rooms, err := s.chatRepo.ListByParticipant(db, userID)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	out := make([]dto.ChatRoomResponse, 0, len(rooms))
	for i := range rooms {
		out = append(out, toChatRoomResponse(&rooms[i]))
	}
	return out, nil
}

func toChatRoomResponse(room *models.ChatRoom) dto.ChatRoomResponse {
	resp := dto.ChatRoomResponse{
		ID:     room.ID,
		Slug:   room.Slug,
		Status: string(room.Status),
	}
	if room.ProjectID != nil {
		resp.ProjectID = *room.ProjectID
	}
	resp.Participants = make([]dto.UserResponse, 0, len(room.Participants))
	for i := range room.Participants {
		resp.Participants = append(resp.Participants, toUserResponse(&room.Participants[i]))
	}
	return resp
}
