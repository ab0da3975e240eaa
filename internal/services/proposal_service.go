package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"fls_backend/internal/appErrors"
	"fls_backend/internal/models"
	"fls_backend/internal/repositories"
	"fls_backend/internal/services/dto"
)

type ProposalService interface {
	// SubmitProposal создает предложение на чужой активный проект,
	// тратя одну ставку автора.
	SubmitProposal(db *gorm.DB, user *models.User, projectID string, req *dto.SubmitProposalRequest) (*dto.ProposalResponse, error)
	// ChooseProposal — выбор исполнителя владельцем: доплата или возврат
	// разницы с maxPrice, перевод проекта в in_progress, открытие чата.
	ChooseProposal(db *gorm.DB, user *models.User, projectID, proposalID string) (*dto.ChosenProposalResponse, error)
	GetChosen(db *gorm.DB, projectID string) (*dto.ChosenProposalResponse, error)
	UpdateProposal(db *gorm.DB, user *models.User, proposalID string, req *dto.UpdateProposalRequest) (*dto.ProposalResponse, error)
	WithdrawProposal(db *gorm.DB, user *models.User, proposalID string) error
	// ListForProject доступен только владельцу проекта.
	ListForProject(db *gorm.DB, user *models.User, projectID string) ([]dto.ProposalResponse, error)
	ListMine(db *gorm.DB, userID string) ([]dto.ProposalResponse, error)
	ListMineByProjectStatus(db *gorm.DB, userID string, status models.ProjectStatus) ([]dto.ProposalResponse, error)
}

type proposalServiceImpl struct {
	proposalRepo repositories.ProposalRepository
	projectRepo  repositories.ProjectRepository
	userRepo     repositories.UserRepository
	ledger       LedgerService
	chat         ChatService
}

func NewProposalService(
	proposalRepo repositories.ProposalRepository,
	projectRepo repositories.ProjectRepository,
	userRepo repositories.UserRepository,
	ledger LedgerService,
	chat ChatService,
) ProposalService {
	return &proposalServiceImpl{
		proposalRepo: proposalRepo,
		projectRepo:  projectRepo,
		userRepo:     userRepo,
		ledger:       ledger,
		chat:         chat,
	}
}

// validateProposalTerms повторяет доменные правила цены и даты: без флага
// значение обязано попадать в рамки проекта, с флагом - выходить за них.
func validateProposalTerms(project *models.Project, price int, submission time.Time, priceAdjusted, dateAdjusted bool) error {
	if !priceAdjusted {
		if price < project.MinPrice || price > project.MaxPrice {
			return appErrors.ErrPriceOutOfRange
		}
	} else {
		if price >= project.MinPrice && price <= project.MaxPrice {
			return appErrors.NewBadRequestError("Adjusted price should be outside the project's price range")
		}
	}

	if submission.Before(today()) {
		return appErrors.NewBadRequestError("Submission date cannot be in the past")
	}
	if !dateAdjusted {
		if submission.After(project.DueDate) {
			return appErrors.ErrDateOutOfRange
		}
	} else {
		if !submission.After(project.DueDate) {
			return appErrors.NewBadRequestError("Adjusted date should be after the project due date")
		}
	}
	return nil
}

func (s *proposalServiceImpl) SubmitProposal(db *gorm.DB, user *models.User, projectID string, req *dto.SubmitProposalRequest) (*dto.ProposalResponse, error) {
	project, err := s.findProject(db, projectID)
	if err != nil {
		return nil, err
	}
	if project.Status != models.ProjectStatusActive {
		return nil, appErrors.ErrInvalidState.WithMessage("Project is not accepting proposals")
	}
	if project.PublishedUserID != nil && *project.PublishedUserID == user.ID {
		return nil, appErrors.NewForbiddenError("The proposer cannot be the owner of the project")
	}

	exists, err := s.proposalRepo.ExistsByProjectAndProposer(db, project.ID, user.ID)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	if exists {
		return nil, appErrors.ErrNotEligible
	}

	submission, err := time.Parse(dateLayout, req.SubmissionDate)
	if err != nil {
		return nil, appErrors.NewBadRequestError("Invalid submission date")
	}
	if err := validateProposalTerms(project, req.ProposedPrice, submission, req.IsPriceAdjusted, req.IsDateAdjusted); err != nil {
		return nil, err
	}

	proposal := &models.ProjectProposal{
		ProjectID:        project.ID,
		ProposerID:       &user.ID,
		ProposerUsername: user.Username,
		ProposalText:     req.ProposalText,
		ProposedPrice:    req.ProposedPrice,
		SubmissionDate:   submission,
		IsPriceAdjusted:  req.IsPriceAdjusted,
		IsDateAdjusted:   req.IsDateAdjusted,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := s.ledger.SpendBid(tx, user,
			fmt.Sprintf("Spent 1 bid to propose on '%s' project.", project.Title)); err != nil {
			return err
		}
		if err := s.proposalRepo.Create(tx, proposal); err != nil {
			return appErrors.InternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toProposalResponse(proposal), nil
}

func (s *proposalServiceImpl) ChooseProposal(db *gorm.DB, user *models.User, projectID, proposalID string) (*dto.ChosenProposalResponse, error) {
	project, err := s.findProject(db, projectID)
	if err != nil {
		return nil, err
	}
	if project.PublishedUserID == nil || *project.PublishedUserID != user.ID {
		return nil, appErrors.ErrForbidden
	}

	proposal, err := s.proposalRepo.FindForProject(db, project.ID, proposalID)
	if err != nil {
		if appErrors.Is(err, repositories.ErrProposalNotFound) {
			return nil, appErrors.ErrProposalNotFound
		}
		return nil, appErrors.InternalError(err)
	}

	proposer, err := s.userRepo.FindByID(db, *proposal.ProposerID)
	if err != nil {
		return nil, appErrors.ErrProposalNotFound
	}

	chosen := &models.ChosenProposal{
		ProjectID:          &project.ID,
		SelectedProposalID: &proposal.ID,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		ok, err := s.projectRepo.UpdateStatusGuarded(tx, project.ID, models.ProjectStatusActive, models.ProjectStatusInProgress)
		if err != nil {
			return appErrors.InternalError(err)
		}
		if !ok {
			if _, err := s.proposalRepo.FindChosenByProject(tx, project.ID); err == nil {
				return appErrors.ErrProposalChosen
			}
			return appErrors.ErrInvalidState
		}

		delta := proposal.ProposedPrice - project.MaxPrice
		if delta > 0 {
			if err := s.ledger.HoldFromUser(tx, user, delta,
				fmt.Sprintf("Spent extra %d points to choose '%s' proposal for '%s' project.", delta, proposer.Username, project.Title),
				fmt.Sprintf("Received extra %d points form %s to choose '%s' proposal for '%s' project.", delta, user.Username, proposer.Username, project.Title),
			); err != nil {
				return err
			}
		}

		if err := s.proposalRepo.CreateChosen(tx, chosen); err != nil {
			return appErrors.InternalError(err)
		}
		if err := s.proposalRepo.MarkAccepted(tx, proposal.ID); err != nil {
			return appErrors.InternalError(err)
		}

		if delta < 0 {
			refund := -delta
			if err := s.ledger.ReleaseToUser(tx, user.ID, user.Username, refund,
				fmt.Sprintf("Spent %d points for '%s' - %s bid lower than the expected price for '%s' project.", refund, user.Username, proposer.Username, project.Title),
				fmt.Sprintf("Received %d points - %s bid lower than the expected price for '%s' project.", refund, proposer.Username, project.Title),
			); err != nil {
				return err
			}
		}

		_, err = s.chat.EnsureActiveWithParticipants(tx, project.ID, []models.User{*user, *proposer})
		return err
	})
	if err != nil {
		return nil, err
	}

	proposal.IsAccepted = true
	return &dto.ChosenProposalResponse{
		ID:         chosen.ID,
		ProjectID:  project.ID,
		Proposal:   toProposalResponse(proposal),
		IsCanceled: chosen.IsCanceled,
	}, nil
}

func (s *proposalServiceImpl) GetChosen(db *gorm.DB, projectID string) (*dto.ChosenProposalResponse, error) {
	chosen, err := s.proposalRepo.FindChosenByProject(db, projectID)
	if err != nil {
		if appErrors.Is(err, repositories.ErrChosenNotFound) {
			return nil, appErrors.NotFound("Chosen proposal")
		}
		return nil, appErrors.InternalError(err)
	}
	resp := &dto.ChosenProposalResponse{ID: chosen.ID, IsCanceled: chosen.IsCanceled}
	if chosen.ProjectID != nil {
		resp.ProjectID = *chosen.ProjectID
	}
	if chosen.SelectedProposal != nil {
		resp.Proposal = toProposalResponse(chosen.SelectedProposal)
	}
	return resp, nil
}

func (s *proposalServiceImpl) UpdateProposal(db *gorm.DB, user *models.User, proposalID string, req *dto.UpdateProposalRequest) (*dto.ProposalResponse, error) {
	proposal, err := s.findOwnProposal(db, user, proposalID)
	if err != nil {
		return nil, err
	}
	if proposal.IsAccepted || proposal.IsCanceled {
		return nil, appErrors.ErrInvalidState.WithMessage("Accepted or canceled proposals cannot be updated")
	}
	if proposal.Project == nil || proposal.Project.Status != models.ProjectStatusActive {
		return nil, appErrors.ErrInvalidState.WithMessage("Project is not accepting proposals")
	}

	if req.ProposalText != nil {
		proposal.ProposalText = *req.ProposalText
	}
	if req.ProposedPrice != nil {
		proposal.ProposedPrice = *req.ProposedPrice
	}
	if req.SubmissionDate != nil {
		submission, err := time.Parse(dateLayout, *req.SubmissionDate)
		if err != nil {
			return nil, appErrors.NewBadRequestError("Invalid submission date")
		}
		proposal.SubmissionDate = submission
	}
	if req.IsPriceAdjusted != nil {
		proposal.IsPriceAdjusted = *req.IsPriceAdjusted
	}
	if req.IsDateAdjusted != nil {
		proposal.IsDateAdjusted = *req.IsDateAdjusted
	}

	if err := validateProposalTerms(proposal.Project, proposal.ProposedPrice, proposal.SubmissionDate,
		proposal.IsPriceAdjusted, proposal.IsDateAdjusted); err != nil {
		return nil, err
	}

	if err := s.proposalRepo.Update(db, proposal); err != nil {
		return nil, appErrors.InternalError(err)
	}
	return toProposalResponse(proposal), nil
}

// WithdrawProposal удаляет невыбранное предложение. Ставка не возвращается.
func (s *proposalServiceImpl) WithdrawProposal(db *gorm.DB, user *models.User, proposalID string) error {
	proposal, err := s.findOwnProposal(db, user, proposalID)
	if err != nil {
		return err
	}
	if proposal.IsAccepted {
		return appErrors.ErrInvalidState.WithMessage("Accepted proposals cannot be withdrawn")
	}
	if err := s.proposalRepo.Delete(db, proposal.ID); err != nil {
		return appErrors.InternalError(err)
	}
	return nil
}

func (s *proposalServiceImpl) ListForProject(db *gorm.DB, user *models.User, projectID string) ([]dto.ProposalResponse, error) {
	project, err := s.findProject(db, projectID)
	if err != nil {
		return nil, err
	}
	if project.PublishedUserID == nil || *project.PublishedUserID != user.ID {
		return nil, appErrors.ErrForbidden
	}
	proposals, err := s.proposalRepo.ListByProject(db, project.ID)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	return toProposalResponses(proposals), nil
}

func (s *proposalServiceImpl) ListMine(db *gorm.DB, userID string) ([]dto.ProposalResponse, error) {
	proposals, err := s.proposalRepo.ListByProposer(db, userID)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	return toProposalResponses(proposals), nil
}

func (s *proposalServiceImpl) ListMineByProjectStatus(db *gorm.DB, userID string, status models.ProjectStatus) ([]dto.ProposalResponse, error) {
	proposals, err := s.proposalRepo.ListByProposerAndProjectStatus(db, userID, status)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	return toProposalResponses(proposals), nil
}

func (s *proposalServiceImpl) findProject(db *gorm.DB, projectID string) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(db, projectID)
	if err != nil {
		if appErrors.Is(err, repositories.ErrProjectNotFound) {
			return nil, appErrors.ErrProjectNotFound
		}
		return nil, appErrors.InternalError(err)
	}
	return project, nil
}

func (s *proposalServiceImpl) findOwnProposal(db *gorm.DB, user *models.User, proposalID string) (*models.ProjectProposal, error) {
	proposal, err := s.proposalRepo.FindByID(db, proposalID)
	if err != nil {
		if appErrors.Is(err, repositories.ErrProposalNotFound) {
			return nil, appErrors.ErrProposalNotFound
		}
		return nil, appErrors.InternalError(err)
	}
	if proposal.ProposerID == nil || *proposal.ProposerID != user.ID {
		return nil, appErrors.ErrForbidden
	}
	return proposal, nil
}

func toProposalResponse(p *models.ProjectProposal) *dto.ProposalResponse {
	return &dto.ProposalResponse{
		ID:               p.ID,
		ProjectID:        p.ProjectID,
		ProposerUsername: p.ProposerUsername,
		ProposalText:     p.ProposalText,
		ProposedPrice:    p.ProposedPrice,
		SubmissionDate:   p.SubmissionDate.Format(dateLayout),
		IsPriceAdjusted:  p.IsPriceAdjusted,
		IsDateAdjusted:   p.IsDateAdjusted,
		IsAccepted:       p.IsAccepted,
		IsCanceled:       p.IsCanceled,
		CreatedAt:        p.CreatedAt,
	}
}

func toProposalResponses(proposals []models.ProjectProposal) []dto.ProposalResponse {
	out := make([]dto.ProposalResponse, 0, len(proposals))
	for i := range proposals {
		out = append(out, *toProposalResponse(&proposals[i]))
	}
	return out
}
