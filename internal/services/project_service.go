package services

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"fls_backend/internal/appErrors"
	"fls_backend/internal/logger"
	"fls_backend/internal/metrics"
	"fls_backend/internal/models"
	"fls_backend/internal/repositories"
	"fls_backend/internal/services/dto"
)

const dateLayout = "2006-01-02"

// today возвращает начало текущих суток: даты доменных правил
// сравниваются с точностью до дня.
func today() time.Time {
	return time.Now().Truncate(24 * time.Hour)
}

type ProjectService interface {
	CreateProject(db *gorm.DB, user *models.User, req *dto.CreateProjectRequest) (*dto.ProjectResponse, error)
	GetProject(db *gorm.DB, id string) (*dto.ProjectResponse, error)
	// ListAvailable возвращает активные проекты других пользователей.
	ListAvailable(db *gorm.DB, userID string) ([]dto.ProjectResponse, error)
	ListOwned(db *gorm.DB, userID string, status models.ProjectStatus) ([]dto.ProjectResponse, error)
	UpdateProject(db *gorm.DB, user *models.User, id string, req *dto.UpdateProjectRequest) (*dto.ProjectResponse, error)
	// DeleteProject удаляет активный проект владельца и возвращает
	// эскроу-резерв с площадки обратно владельцу.
	DeleteProject(db *gorm.DB, user *models.User, id string) error
	// ExpireDueProjects — плановый обход: активные проекты с истекшим
	// дедлайном предложений переводятся в expired с возвратом резерва.
	// Ошибки отдельных проектов логируются, обход продолжается.
	ExpireDueProjects(db *gorm.DB, now time.Time) (int, error)

	// SetSaved добавляет или убирает закладку. Идемпотентен.
	SetSaved(db *gorm.DB, user *models.User, projectID string, save bool) error
	ListSaved(db *gorm.DB, userID string) ([]dto.ProjectResponse, error)
}

type projectServiceImpl struct {
	projectRepo  repositories.ProjectRepository
	proposalRepo repositories.ProposalRepository
	reviewRepo   repositories.ReviewRepository
	userRepo     repositories.UserRepository
	ledger       LedgerService
	chat         ChatService
}

func NewProjectService(
	projectRepo repositories.ProjectRepository,
	proposalRepo repositories.ProposalRepository,
	reviewRepo repositories.ReviewRepository,
	userRepo repositories.UserRepository,
	ledger LedgerService,
	chat ChatService,
) ProjectService {
	return &projectServiceImpl{
		projectRepo:  projectRepo,
		proposalRepo: proposalRepo,
		reviewRepo:   reviewRepo,
		userRepo:     userRepo,
		ledger:       ledger,
		chat:         chat,
	}
}

func (s *projectServiceImpl) CreateProject(db *gorm.DB, user *models.User, req *dto.CreateProjectRequest) (*dto.ProjectResponse, error) {
	dueDate, err := time.Parse(dateLayout, req.DueDate)
	if err != nil {
		return nil, appErrors.NewBadRequestError("Invalid due date")
	}
	proposalTimeEnd, err := time.Parse(dateLayout, req.ProposalTimeEnd)
	if err != nil {
		return nil, appErrors.NewBadRequestError("Invalid proposal deadline")
	}
	if dueDate.Before(today()) {
		return nil, appErrors.NewBadRequestError("Due date cannot be in the past")
	}
	if proposalTimeEnd.After(dueDate) {
		return nil, appErrors.NewBadRequestError("Proposal deadline must not be after the due date")
	}

	skills, err := json.Marshal(req.SkillsNeeded)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}

	project := &models.Project{
		PublishedUserID:   &user.ID,
		PublishedUsername: user.Username,
		Title:             req.Title,
		Description:       req.Description,
		AdditionalNotes:   req.AdditionalNotes,
		SkillsNeeded:      datatypes.JSON(skills),
		MinPrice:          req.MinPrice,
		MaxPrice:          req.MaxPrice,
		DueDate:           dueDate,
		ProposalTimeEnd:   proposalTimeEnd,
		Status:            models.ProjectStatusActive,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := s.ledger.HoldFromUser(tx, user, req.MaxPrice,
			fmt.Sprintf("Spent %d to create '%s' project.", req.MaxPrice, req.Title),
			fmt.Sprintf("Received %d form '%s' to create '%s' project.", req.MaxPrice, user.Username, req.Title),
		); err != nil {
			return err
		}
		if err := s.projectRepo.Create(tx, project); err != nil {
			return appErrors.InternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toProjectResponse(project), nil
}

func (s *projectServiceImpl) GetProject(db *gorm.DB, id string) (*dto.ProjectResponse, error) {
	project, err := s.projectRepo.FindByID(db, id)
	if err != nil {
		if appErrors.Is(err, repositories.ErrProjectNotFound) {
			return nil, appErrors.ErrProjectNotFound
		}
		return nil, appErrors.InternalError(err)
	}
	return toProjectResponse(project), nil
}

func (s *projectServiceImpl) ListAvailable(db *gorm.DB, userID string) ([]dto.ProjectResponse, error) {
	projects, err := s.projectRepo.ListActiveExcluding(db, userID)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	return toProjectResponses(projects), nil
}

func (s *projectServiceImpl) ListOwned(db *gorm.DB, userID string, status models.ProjectStatus) ([]dto.ProjectResponse, error) {
	projects, err := s.projectRepo.ListByOwner(db, userID, status)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	return toProjectResponses(projects), nil
}

func (s *projectServiceImpl) UpdateProject(db *gorm.DB, user *models.User, id string, req *dto.UpdateProjectRequest) (*dto.ProjectResponse, error) {
	project, err := s.projectRepo.FindByID(db, id)
	if err != nil {
		if appErrors.Is(err, repositories.ErrProjectNotFound) {
			return nil, appErrors.ErrProjectNotFound
		}
		return nil, appErrors.InternalError(err)
	}
	if project.PublishedUserID == nil || *project.PublishedUserID != user.ID {
		return nil, appErrors.ErrForbidden
	}
	if project.Status != models.ProjectStatusActive {
		return nil, appErrors.ErrInvalidState.WithMessage("Only active projects can be updated")
	}

	if req.Title != nil {
		project.Title = *req.Title
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.AdditionalNotes != nil {
		project.AdditionalNotes = *req.AdditionalNotes
	}
	if req.SkillsNeeded != nil {
		skills, err := json.Marshal(req.SkillsNeeded)
		if err != nil {
			return nil, appErrors.InternalError(err)
		}
		project.SkillsNeeded = datatypes.JSON(skills)
	}
	if req.DueDate != nil {
		dueDate, err := time.Parse(dateLayout, *req.DueDate)
		if err != nil {
			return nil, appErrors.NewBadRequestError("Invalid due date")
		}
		project.DueDate = dueDate
	}
	if req.ProposalTimeEnd != nil {
		proposalTimeEnd, err := time.Parse(dateLayout, *req.ProposalTimeEnd)
		if err != nil {
			return nil, appErrors.NewBadRequestError("Invalid proposal deadline")
		}
		project.ProposalTimeEnd = proposalTimeEnd
	}
	if project.DueDate.Before(today()) {
		return nil, appErrors.NewBadRequestError("Due date cannot be in the past")
	}
	if project.ProposalTimeEnd.After(project.DueDate) {
		return nil, appErrors.NewBadRequestError("Proposal deadline must not be after the due date")
	}

	if err := s.projectRepo.Update(db, project); err != nil {
		return nil, appErrors.InternalError(err)
	}
	return toProjectResponse(project), nil
}

func (s *projectServiceImpl) DeleteProject(db *gorm.DB, user *models.User, id string) error {
	project, err := s.projectRepo.FindByID(db, id)
	if err != nil {
		if appErrors.Is(err, repositories.ErrProjectNotFound) {
			return appErrors.ErrProjectNotFound
		}
		return appErrors.InternalError(err)
	}
	if project.PublishedUserID == nil || *project.PublishedUserID != user.ID {
		return appErrors.ErrForbidden
	}
	if project.Status != models.ProjectStatusActive {
		return appErrors.ErrInvalidState.WithMessage("Only active projects can be deleted")
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := s.ledger.ReleaseToUser(tx, user.ID, user.Username, project.MaxPrice,
			fmt.Sprintf("Restored %d points to '%s' for deleting '%s' project.", project.MaxPrice, user.Username, project.Title),
			fmt.Sprintf("Restored %d points for deleting '%s' project.", project.MaxPrice, project.Title),
		); err != nil {
			return err
		}
		if err := s.proposalRepo.CancelAllForProject(tx, project.ID); err != nil {
			return appErrors.InternalError(err)
		}
		if err := s.chat.CloseOrDeleteForProject(tx, project.ID); err != nil {
			return err
		}
		if err := s.projectRepo.Delete(tx, project.ID); err != nil {
			return appErrors.InternalError(err)
		}
		return nil
	})
}

func (s *projectServiceImpl) ExpireDueProjects(db *gorm.DB, now time.Time) (int, error) {
	due, err := s.projectRepo.ListExpirable(db, now)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, project := range due {
		p := project
		applied := false
		err := db.Transaction(func(tx *gorm.DB) error {
			ok, err := s.projectRepo.UpdateStatusGuarded(tx, p.ID, models.ProjectStatusActive, models.ProjectStatusExpired)
			if err != nil {
				return err
			}
			if !ok {
				// проект перешел в другой статус между выборкой и обновлением
				return nil
			}
			applied = true
			if p.PublishedUserID == nil {
				return nil
			}
			owner, err := s.userRepo.FindByID(tx, *p.PublishedUserID)
			if err != nil {
				return err
			}
			return s.ledger.ReleaseToUser(tx, owner.ID, owner.Username, p.MaxPrice,
				fmt.Sprintf("Spent %d points for '%s' due to the expiry of '%s' project.", p.MaxPrice, owner.Username, p.Title),
				fmt.Sprintf("Received %d points due to the expiry of '%s' project.", p.MaxPrice, p.Title),
			)
		})
		if err != nil {
			logger.WorkerLog("project_expiry", "expire "+p.ID, err)
			continue
		}
		if !applied {
			continue
		}
		expired++
		metrics.ProjectsExpired.Inc()
	}
	return expired, nil
}

func (s *projectServiceImpl) SetSaved(db *gorm.DB, user *models.User, projectID string, save bool) error {
	if _, err := s.projectRepo.FindByID(db, projectID); err != nil {
		if appErrors.Is(err, repositories.ErrProjectNotFound) {
			return appErrors.ErrProjectNotFound
		}
		return appErrors.InternalError(err)
	}

	_, err := s.reviewRepo.FindSaved(db, user.ID, projectID)
	switch {
	case err == nil:
		if save {
			return nil
		}
		if err := s.reviewRepo.DeleteSaved(db, user.ID, projectID); err != nil {
			return appErrors.InternalError(err)
		}
		return nil
	case appErrors.Is(err, repositories.ErrSavedProjectNotFound):
		if !save {
			return nil
		}
		saved := &models.UserSavedProject{UserID: user.ID, ProjectID: projectID}
		if err := s.reviewRepo.SaveProject(db, saved); err != nil {
			return appErrors.InternalError(err)
		}
		return nil
	default:
		return appErrors.InternalError(err)
	}
}

func (s *projectServiceImpl) ListSaved(db *gorm.DB, userID string) ([]dto.ProjectResponse, error) {
	saved, err := s.reviewRepo.ListSavedByUser(db, userID)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	out := make([]dto.ProjectResponse, 0, len(saved))
	for i := range saved {
		if saved[i].Project == nil {
			continue
		}
		out = append(out, *toProjectResponse(saved[i].Project))
	}
	return out, nil
}

func toProjectResponse(p *models.Project) *dto.ProjectResponse {
	var skills []string
	if len(p.SkillsNeeded) > 0 {
		_ = json.Unmarshal(p.SkillsNeeded, &skills)
	}
	return &dto.ProjectResponse{
		ID:                p.ID,
		PublishedUsername: p.PublishedUsername,
		Title:             p.Title,
		Description:       p.Description,
		AdditionalNotes:   p.AdditionalNotes,
		SkillsNeeded:      skills,
		MinPrice:          p.MinPrice,
		MaxPrice:          p.MaxPrice,
		DueDate:           p.DueDate.Format(dateLayout),
		ProposalTimeEnd:   p.ProposalTimeEnd.Format(dateLayout),
		Status:            string(p.Status),
		CreatedAt:         p.CreatedAt,
	}
}

func toProjectResponses(projects []models.Project) []dto.ProjectResponse {
	out := make([]dto.ProjectResponse, 0, len(projects))
	for i := range projects {
		out = append(out, *toProjectResponse(&projects[i]))
	}
	return out
}
