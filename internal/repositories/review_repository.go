package repositories

import (
	"errors"

	"gorm.io/gorm"

	"fls_backend/internal/models"
)

var (
	ErrReviewNotFound       = errors.New("review not found")
	ErrSavedProjectNotFound = errors.New("saved project not found")
)

type ReviewRepository interface {
	Create(db *gorm.DB, review *models.UserReview) error
	FindByID(db *gorm.DB, id string) (*models.UserReview, error)
	// Exists проверяет, что пара (проект, рецензент, оцениваемый) уже создана -
	// создание плейсхолдеров при завершении идемпотентно.
	Exists(db *gorm.DB, projectID, reviewerID, reviewedUserID string) (bool, error)
	ListPendingByReviewer(db *gorm.DB, reviewerID string) ([]models.UserReview, error)
	ListByProject(db *gorm.DB, projectID string) ([]models.UserReview, error)
	Update(db *gorm.DB, review *models.UserReview) error

	SaveProject(db *gorm.DB, saved *models.UserSavedProject) error
	FindSaved(db *gorm.DB, userID, projectID string) (*models.UserSavedProject, error)
	DeleteSaved(db *gorm.DB, userID, projectID string) error
	ListSavedByUser(db *gorm.DB, userID string) ([]models.UserSavedProject, error)
}

type ReviewRepositoryImpl struct{}

func NewReviewRepository() ReviewRepository {
	return &ReviewRepositoryImpl{}
}

func (r *ReviewRepositoryImpl) Create(db *gorm.DB, review *models.UserReview) error {
	return db.Create(review).Error
}

func (r *ReviewRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.UserReview, error) {
	var review models.UserReview
	if err := db.Preload("Project").First(&review, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return &review, nil
}

func (r *ReviewRepositoryImpl) Exists(db *gorm.DB, projectID, reviewerID, reviewedUserID string) (bool, error) {
	var count int64
	err := db.Model(&models.UserReview{}).
		Where("project_id = ? AND reviewer_id = ? AND reviewed_user_id = ?", projectID, reviewerID, reviewedUserID).
		Count(&count).Error
	return count > 0, err
}

func (r *ReviewRepositoryImpl) ListPendingByReviewer(db *gorm.DB, reviewerID string) ([]models.UserReview, error) {
	var reviews []models.UserReview
	err := db.Preload("Project").
		Where("reviewer_id = ? AND rating IS NULL", reviewerID).
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *ReviewRepositoryImpl) ListByProject(db *gorm.DB, projectID string) ([]models.UserReview, error) {
	var reviews []models.UserReview
	if err := db.Where("project_id = ?", projectID).Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *ReviewRepositoryImpl) Update(db *gorm.DB, review *models.UserReview) error {
	return db.Save(review).Error
}

func (r *ReviewRepositoryImpl) SaveProject(db *gorm.DB, saved *models.UserSavedProject) error {
	return db.Create(saved).Error
}

func (r *ReviewRepositoryImpl) FindSaved(db *gorm.DB, userID, projectID string) (*models.UserSavedProject, error) {
	var saved models.UserSavedProject
	err := db.First(&saved, "user_id = ? AND project_id = ?", userID, projectID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSavedProjectNotFound
		}
		return nil, err
	}
	return &saved, nil
}

func (r *ReviewRepositoryImpl) DeleteSaved(db *gorm.DB, userID, projectID string) error {
	return db.Delete(&models.UserSavedProject{}, "user_id = ? AND project_id = ?", userID, projectID).Error
}

func (r *ReviewRepositoryImpl) ListSavedByUser(db *gorm.DB, userID string) ([]models.UserSavedProject, error) {
	var saved []models.UserSavedProject
	err := db.Preload("Project").Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&saved).Error
	if err != nil {
		return nil, err
	}
	return saved, nil
}
