package services

import (
	"gorm.io/gorm"

	"fls_backend/internal/appErrors"
	"fls_backend/internal/models"
	"fls_backend/internal/repositories"
	"fls_backend/internal/services/dto"
)

type DisputeService interface {
	// OpenDispute доступен владельцу проекта и выбранному исполнителю,
	// по одному спору на каждого. Пока спор не решен, проект нельзя
	// пометить завершенным.
	OpenDispute(db *gorm.DB, user *models.User, projectID string, req *dto.OpenDisputeRequest) (*dto.DisputeResponse, error)
	// ResolveDispute доступен только администратору.
	ResolveDispute(db *gorm.DB, user *models.User, disputeID string) error
	ListForProject(db *gorm.DB, user *models.User, projectID string) ([]dto.DisputeResponse, error)
}

type disputeServiceImpl struct {
	disputeRepo  repositories.DisputeRepository
	projectRepo  repositories.ProjectRepository
	proposalRepo repositories.ProposalRepository
}

func NewDisputeService(
	disputeRepo repositories.DisputeRepository,
	projectRepo repositories.ProjectRepository,
	proposalRepo repositories.ProposalRepository,
) DisputeService {
	return &disputeServiceImpl{
		disputeRepo:  disputeRepo,
		projectRepo:  projectRepo,
		proposalRepo: proposalRepo,
	}
}

// findChosen возвращает выбранное предложение in_progress проекта и
// признак, что пользователь - сторона сделки (владелец или исполнитель).
func (s *disputeServiceImpl) findChosen(db *gorm.DB, user *models.User, projectID string) (*models.ChosenProposal, bool, error) {
	project, err := s.projectRepo.FindByID(db, projectID)
	if err != nil {
		if appErrors.Is(err, repositories.ErrProjectNotFound) {
			return nil, false, appErrors.ErrProjectNotFound
		}
		return nil, false, appErrors.InternalError(err)
	}
	if project.Status != models.ProjectStatusInProgress {
		return nil, false, appErrors.ErrInvalidState.WithMessage("Disputes can only be opened for in progress projects")
	}

	chosen, err := s.proposalRepo.FindChosenByProject(db, project.ID)
	if err != nil {
		if appErrors.Is(err, repositories.ErrChosenNotFound) {
			return nil, false, appErrors.ErrInvalidState.WithMessage("No proposal has been selected for this project")
		}
		return nil, false, appErrors.InternalError(err)
	}

	isOwner := project.PublishedUserID != nil && *project.PublishedUserID == user.ID
	isProposer := chosen.SelectedProposal != nil &&
		chosen.SelectedProposal.ProposerID != nil &&
		*chosen.SelectedProposal.ProposerID == user.ID
	return chosen, isOwner || isProposer, nil
}

func (s *disputeServiceImpl) OpenDispute(db *gorm.DB, user *models.User, projectID string, req *dto.OpenDisputeRequest) (*dto.DisputeResponse, error) {
	chosen, isParty, err := s.findChosen(db, user, projectID)
	if err != nil {
		return nil, err
	}
	if !isParty {
		return nil, appErrors.ErrForbidden
	}

	exists, err := s.disputeRepo.ExistsByOpener(db, chosen.ID, user.ID)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	if exists {
		return nil, appErrors.ErrDuplicateDispute
	}

	dispute := &models.Dispute{
		ChosenProposalID: chosen.ID,
		OpenedByID:       &user.ID,
		OpenedByUsername: user.Username,
		Description:      req.Description,
	}
	if err := s.disputeRepo.Create(db, dispute); err != nil {
		return nil, appErrors.InternalError(err)
	}
	return toDisputeResponse(dispute), nil
}

func (s *disputeServiceImpl) ResolveDispute(db *gorm.DB, user *models.User, disputeID string) error {
	if !user.IsAdmin {
		return appErrors.ErrForbidden
	}
	if err := s.disputeRepo.Resolve(db, disputeID); err != nil {
		if appErrors.Is(err, repositories.ErrDisputeNotFound) {
			return appErrors.ErrDisputeNotFound
		}
		return appErrors.InternalError(err)
	}
	return nil
}

func (s *disputeServiceImpl) ListForProject(db *gorm.DB, user *models.User, projectID string) ([]dto.DisputeResponse, error) {
	chosen, isParty, err := s.findChosen(db, user, projectID)
	if err != nil {
		return nil, err
	}
	if !isParty && !user.IsAdmin {
		return nil, appErrors.ErrForbidden
	}
	disputes, err := s.disputeRepo.ListByChosenProposal(db, chosen.ID)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	out := make([]dto.DisputeResponse, 0, len(disputes))
	for i := range disputes {
		out = append(out, *toDisputeResponse(&disputes[i]))
	}
	return out, nil
}

func toDisputeResponse(d *models.Dispute) *dto.DisputeResponse {
	return &dto.DisputeResponse{
		ID:               d.ID,
		ChosenProposalID: d.ChosenProposalID,
		OpenedByUsername: d.OpenedByUsername,
		Description:      d.Description,
		IsResolved:       d.IsResolved,
		CreatedAt:        d.CreatedAt,
	}
}
