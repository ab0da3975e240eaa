package repositories

import (
	"errors"

	"gorm.io/gorm"

	"fls_backend/internal/models"
)

var ErrDisputeNotFound = errors.New("dispute not found")

type DisputeRepository interface {
	Create(db *gorm.DB, dispute *models.Dispute) error
	FindByID(db *gorm.DB, id string) (*models.Dispute, error)
	ExistsByOpener(db *gorm.DB, chosenProposalID, openerID string) (bool, error)
	CountUnresolved(db *gorm.DB, chosenProposalID string) (int64, error)
	ListByChosenProposal(db *gorm.DB, chosenProposalID string) ([]models.Dispute, error)
	Resolve(db *gorm.DB, id string) error
	SnapshotOpenerUsernames(db *gorm.DB, openerID, snapshot string) error
}

type DisputeRepositoryImpl struct{}

func NewDisputeRepository() DisputeRepository {
	return &DisputeRepositoryImpl{}
}

func (r *DisputeRepositoryImpl) Create(db *gorm.DB, dispute *models.Dispute) error {
	return db.Create(dispute).Error
}

func (r *DisputeRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Dispute, error) {
	var dispute models.Dispute
	if err := db.First(&dispute, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDisputeNotFound
		}
		return nil, err
	}
	return &dispute, nil
}

func (r *DisputeRepositoryImpl) ExistsByOpener(db *gorm.DB, chosenProposalID, openerID string) (bool, error) {
	var count int64
	err := db.Model(&models.Dispute{}).
		Where("chosen_proposal_id = ? AND opened_by_id = ?", chosenProposalID, openerID).
		Count(&count).Error
	return count > 0, err
}

func (r *DisputeRepositoryImpl) CountUnresolved(db *gorm.DB, chosenProposalID string) (int64, error) {
	var count int64
	err := db.Model(&models.Dispute{}).
		Where("chosen_proposal_id = ? AND is_resolved = ?", chosenProposalID, false).
		Count(&count).Error
	return count, err
}

func (r *DisputeRepositoryImpl) ListByChosenProposal(db *gorm.DB, chosenProposalID string) ([]models.Dispute, error) {
	var disputes []models.Dispute
	err := db.Where("chosen_proposal_id = ?", chosenProposalID).
		Order("created_at DESC").
		Find(&disputes).Error
	if err != nil {
		return nil, err
	}
	return disputes, nil
}

func (r *DisputeRepositoryImpl) Resolve(db *gorm.DB, id string) error {
	res := db.Model(&models.Dispute{}).
		Where("id = ?", id).
		UpdateColumn("is_resolved", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrDisputeNotFound
	}
	return nil
}

func (r *DisputeRepositoryImpl) SnapshotOpenerUsernames(db *gorm.DB, openerID, snapshot string) error {
	return db.Model(&models.Dispute{}).
		Where("opened_by_id = ?", openerID).
		Updates(map[string]interface{}{"opened_by_username": snapshot, "opened_by_id": nil}).Error
}
