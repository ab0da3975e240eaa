package repositories

import (
	"errors"

	"gorm.io/gorm"

	"fls_backend/internal/models"
)

var (
	ErrProposalNotFound = errors.New("proposal not found")
	ErrChosenNotFound   = errors.New("chosen proposal not found")
)

type ProposalRepository interface {
	Create(db *gorm.DB, proposal *models.ProjectProposal) error
	FindByID(db *gorm.DB, id string) (*models.ProjectProposal, error)
	// FindForProject находит предложение внутри проекта с живым автором.
	FindForProject(db *gorm.DB, projectID, proposalID string) (*models.ProjectProposal, error)
	ExistsByProjectAndProposer(db *gorm.DB, projectID, proposerID string) (bool, error)
	ListByProject(db *gorm.DB, projectID string) ([]models.ProjectProposal, error)
	ListByProposer(db *gorm.DB, proposerID string) ([]models.ProjectProposal, error)
	ListByProposerAndProjectStatus(db *gorm.DB, proposerID string, status models.ProjectStatus) ([]models.ProjectProposal, error)
	Update(db *gorm.DB, proposal *models.ProjectProposal) error
	Delete(db *gorm.DB, id string) error

	CancelAllForProject(db *gorm.DB, projectID string) error
	MarkAccepted(db *gorm.DB, id string) error
	MarkCanceled(db *gorm.DB, id string) error
	// SnapshotProposerUsernames - шаг каскада: автор обнуляется,
	// username сохраняется снимком на каждом его предложении.
	SnapshotProposerUsernames(db *gorm.DB, proposerID, snapshot string) ([]models.ProjectProposal, error)

	CreateChosen(db *gorm.DB, chosen *models.ChosenProposal) error
	FindChosenByProject(db *gorm.DB, projectID string) (*models.ChosenProposal, error)
	MarkChosenCanceled(db *gorm.DB, id string) error
}

type ProposalRepositoryImpl struct{}

func NewProposalRepository() ProposalRepository {
	return &ProposalRepositoryImpl{}
}

func (r *ProposalRepositoryImpl) Create(db *gorm.DB, proposal *models.ProjectProposal) error {
	return db.Create(proposal).Error
}

func (r *ProposalRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.ProjectProposal, error) {
	var proposal models.ProjectProposal
	if err := db.Preload("Project").First(&proposal, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProposalNotFound
		}
		return nil, err
	}
	return &proposal, nil
}

func (r *ProposalRepositoryImpl) FindForProject(db *gorm.DB, projectID, proposalID string) (*models.ProjectProposal, error) {
	var proposal models.ProjectProposal
	err := db.Where("id = ? AND project_id = ? AND proposer_id IS NOT NULL", proposalID, projectID).
		First(&proposal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProposalNotFound
		}
		return nil, err
	}
	return &proposal, nil
}

func (r *ProposalRepositoryImpl) ExistsByProjectAndProposer(db *gorm.DB, projectID, proposerID string) (bool, error) {
	var count int64
	err := db.Model(&models.ProjectProposal{}).
		Where("project_id = ? AND proposer_id = ?", projectID, proposerID).
		Count(&count).Error
	return count > 0, err
}

func (r *ProposalRepositoryImpl) ListByProject(db *gorm.DB, projectID string) ([]models.ProjectProposal, error) {
	var proposals []models.ProjectProposal
	err := db.Where("project_id = ? AND proposer_id IS NOT NULL", projectID).
		Order("created_at DESC").
		Find(&proposals).Error
	if err != nil {
		return nil, err
	}
	return proposals, nil
}

func (r *ProposalRepositoryImpl) ListByProposer(db *gorm.DB, proposerID string) ([]models.ProjectProposal, error) {
	var proposals []models.ProjectProposal
	err := db.Preload("Project").Where("proposer_id = ?", proposerID).
		Order("created_at DESC").
		Find(&proposals).Error
	if err != nil {
		return nil, err
	}
	return proposals, nil
}

func (r *ProposalRepositoryImpl) ListByProposerAndProjectStatus(db *gorm.DB, proposerID string, status models.ProjectStatus) ([]models.ProjectProposal, error) {
	var proposals []models.ProjectProposal
	err := db.Preload("Project").
		Joins("JOIN projects ON projects.id = project_proposals.project_id").
		Where("project_proposals.proposer_id = ? AND projects.status = ?", proposerID, status).
		Order("project_proposals.created_at DESC").
		Find(&proposals).Error
	if err != nil {
		return nil, err
	}
	return proposals, nil
}

func (r *ProposalRepositoryImpl) Update(db *gorm.DB, proposal *models.ProjectProposal) error {
	return db.Save(proposal).Error
}

func (r *ProposalRepositoryImpl) Delete(db *gorm.DB, id string) error {
	return db.Delete(&models.ProjectProposal{}, "id = ?", id).Error
}

func (r *ProposalRepositoryImpl) CancelAllForProject(db *gorm.DB, projectID string) error {
	return db.Model(&models.ProjectProposal{}).
		Where("project_id = ?", projectID).
		UpdateColumn("is_canceled", true).Error
}

func (r *ProposalRepositoryImpl) MarkAccepted(db *gorm.DB, id string) error {
	return db.Model(&models.ProjectProposal{}).
		Where("id = ?", id).
		UpdateColumn("is_accepted", true).Error
}

func (r *ProposalRepositoryImpl) MarkCanceled(db *gorm.DB, id string) error {
	return db.Model(&models.ProjectProposal{}).
		Where("id = ?", id).
		UpdateColumn("is_canceled", true).Error
}

func (r *ProposalRepositoryImpl) SnapshotProposerUsernames(db *gorm.DB, proposerID, snapshot string) ([]models.ProjectProposal, error) {
	var proposals []models.ProjectProposal
	if err := db.Preload("Project").Where("proposer_id = ?", proposerID).Find(&proposals).Error; err != nil {
		return nil, err
	}
	err := db.Model(&models.ProjectProposal{}).
		Where("proposer_id = ?", proposerID).
		Updates(map[string]interface{}{"proposer_username": snapshot, "proposer_id": nil}).Error
	if err != nil {
		return nil, err
	}
	return proposals, nil
}

func (r *ProposalRepositoryImpl) CreateChosen(db *gorm.DB, chosen *models.ChosenProposal) error {
	return db.Create(chosen).Error
}

func (r *ProposalRepositoryImpl) FindChosenByProject(db *gorm.DB, projectID string) (*models.ChosenProposal, error) {
	var chosen models.ChosenProposal
	err := db.Preload("SelectedProposal").First(&chosen, "project_id = ?", projectID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChosenNotFound
		}
		return nil, err
	}
	return &chosen, nil
}

func (r *ProposalRepositoryImpl) MarkChosenCanceled(db *gorm.DB, id string) error {
	return db.Model(&models.ChosenProposal{}).
		Where("id = ?", id).
		UpdateColumn("is_canceled", true).Error
}
