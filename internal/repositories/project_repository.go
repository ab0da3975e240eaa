package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"fls_backend/internal/models"
)

var ErrProjectNotFound = errors.New("project not found")

type ProjectRepository interface {
	Create(db *gorm.DB, project *models.Project) error
	FindByID(db *gorm.DB, id string) (*models.Project, error)
	// ListActiveExcluding возвращает активные проекты чужих пользователей.
	ListActiveExcluding(db *gorm.DB, userID string) ([]models.Project, error)
	ListByOwner(db *gorm.DB, userID string, status models.ProjectStatus) ([]models.Project, error)
	Update(db *gorm.DB, project *models.Project) error
	Delete(db *gorm.DB, id string) error

	// UpdateStatusGuarded переводит проект из from в to одним UPDATE.
	// false означает, что проект уже не в статусе from (конкурентный переход).
	UpdateStatusGuarded(db *gorm.DB, id string, from, to models.ProjectStatus) (bool, error)
	// SetCanceledWithSnapshot - шаг каскада удаления владельца: статус canceled,
	// владелец обнуляется, username сохраняется снимком.
	SetCanceledWithSnapshot(db *gorm.DB, id, snapshot string) error

	ListOwnedInStatuses(db *gorm.DB, userID string, statuses []models.ProjectStatus) ([]models.Project, error)
	// ListExpirable возвращает активные проекты с истекшим дедлайном предложений.
	ListExpirable(db *gorm.DB, today time.Time) ([]models.Project, error)
}

type ProjectRepositoryImpl struct{}

func NewProjectRepository() ProjectRepository {
	return &ProjectRepositoryImpl{}
}

func (r *ProjectRepositoryImpl) Create(db *gorm.DB, project *models.Project) error {
	return db.Create(project).Error
}

func (r *ProjectRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Project, error) {
	var project models.Project
	if err := db.First(&project, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return &project, nil
}

func (r *ProjectRepositoryImpl) ListActiveExcluding(db *gorm.DB, userID string) ([]models.Project, error) {
	var projects []models.Project
	err := db.Where("status = ? AND published_user_id IS NOT NULL AND published_user_id <> ?",
		models.ProjectStatusActive, userID).
		Order("created_at DESC").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *ProjectRepositoryImpl) ListByOwner(db *gorm.DB, userID string, status models.ProjectStatus) ([]models.Project, error) {
	var projects []models.Project
	q := db.Where("published_user_id = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Order("created_at DESC").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *ProjectRepositoryImpl) Update(db *gorm.DB, project *models.Project) error {
	return db.Save(project).Error
}

func (r *ProjectRepositoryImpl) Delete(db *gorm.DB, id string) error {
	return db.Delete(&models.Project{}, "id = ?", id).Error
}

func (r *ProjectRepositoryImpl) UpdateStatusGuarded(db *gorm.DB, id string, from, to models.ProjectStatus) (bool, error) {
	res := db.Model(&models.Project{}).
		Where("id = ? AND status = ?", id, from).
		UpdateColumn("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *ProjectRepositoryImpl) SetCanceledWithSnapshot(db *gorm.DB, id, snapshot string) error {
	return db.Model(&models.Project{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":             models.ProjectStatusCanceled,
			"published_username": snapshot,
			"published_user_id":  nil,
		}).Error
}

func (r *ProjectRepositoryImpl) ListOwnedInStatuses(db *gorm.DB, userID string, statuses []models.ProjectStatus) ([]models.Project, error) {
	var projects []models.Project
	if err := db.Where("published_user_id = ? AND status IN ?", userID, statuses).Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *ProjectRepositoryImpl) ListExpirable(db *gorm.DB, today time.Time) ([]models.Project, error) {
	var projects []models.Project
	err := db.Where("status = ? AND proposal_time_end < ?", models.ProjectStatusActive, today).
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}
