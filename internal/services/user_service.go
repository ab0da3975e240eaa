package services

import (
	"fmt"

	"gorm.io/gorm"

	"fls_backend/internal/appErrors"
	"fls_backend/internal/metrics"
	"fls_backend/internal/models"
	"fls_backend/internal/repositories"
	"fls_backend/internal/services/dto"
)

type UserService interface {
	GetMe(db *gorm.DB, userID string) (*dto.UserResponse, error)
	// DeleteUser удаляет аккаунт с упорядоченным каскадом: снятие
	// проектов и предложений, обратные проводки, снимки имен в журнале
	// и спорах, закрытие чатов. Повторный вызов - no-op.
	DeleteUser(db *gorm.DB, userID string) error
}

type userServiceImpl struct {
	userRepo     repositories.UserRepository
	projectRepo  repositories.ProjectRepository
	proposalRepo repositories.ProposalRepository
	paymentRepo  repositories.PaymentRepository
	disputeRepo  repositories.DisputeRepository
	ledger       LedgerService
	chat         ChatService
}

func NewUserService(
	userRepo repositories.UserRepository,
	projectRepo repositories.ProjectRepository,
	proposalRepo repositories.ProposalRepository,
	paymentRepo repositories.PaymentRepository,
	disputeRepo repositories.DisputeRepository,
	ledger LedgerService,
	chat ChatService,
) UserService {
	return &userServiceImpl{
		userRepo:     userRepo,
		projectRepo:  projectRepo,
		proposalRepo: proposalRepo,
		paymentRepo:  paymentRepo,
		disputeRepo:  disputeRepo,
		ledger:       ledger,
		chat:         chat,
	}
}

func (s *userServiceImpl) GetMe(db *gorm.DB, userID string) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		if appErrors.Is(err, repositories.ErrUserNotFound) {
			return nil, appErrors.ErrUserNotFound
		}
		return nil, appErrors.InternalError(err)
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *userServiceImpl) DeleteUser(db *gorm.DB, userID string) error {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		if appErrors.Is(err, repositories.ErrUserNotFound) {
			// каскад уже прошел
			return nil
		}
		return appErrors.InternalError(err)
	}
	snapshot := fmt.Sprintf("%s (DELETED)", user.Username)

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := s.cancelOwnedProjects(tx, user, snapshot); err != nil {
			return err
		}
		if err := s.unwindProposals(tx, user); err != nil {
			return err
		}
		if err := s.disputeRepo.SnapshotOpenerUsernames(tx, user.ID, snapshot); err != nil {
			return appErrors.InternalError(err)
		}
		if err := s.paymentRepo.SnapshotUsernames(tx, user.ID, snapshot); err != nil {
			return appErrors.InternalError(err)
		}
		if err := s.chat.CloseOrDeleteForUser(tx, user.ID); err != nil {
			return err
		}
		if err := s.paymentRepo.DeletePoint(tx, user.ID); err != nil {
			return appErrors.InternalError(err)
		}
		if err := s.paymentRepo.DeleteBid(tx, user.ID); err != nil {
			return appErrors.InternalError(err)
		}
		if err := s.userRepo.Delete(tx, user.ID); err != nil {
			return appErrors.InternalError(err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	metrics.UserCascades.Inc()
	return nil
}

// cancelOwnedProjects снимает живые проекты владельца: статус canceled,
// имя владельца остается снимком, предложения и выбор отменяются.
// Эскроу-резерв площадке не возвращается (поведение исходной системы).
func (s *userServiceImpl) cancelOwnedProjects(db *gorm.DB, user *models.User, snapshot string) error {
	projects, err := s.projectRepo.ListOwnedInStatuses(db, user.ID,
		[]models.ProjectStatus{models.ProjectStatusActive, models.ProjectStatusInProgress})
	if err != nil {
		return appErrors.InternalError(err)
	}
	for i := range projects {
		p := &projects[i]
		if err := s.projectRepo.SetCanceledWithSnapshot(db, p.ID, snapshot); err != nil {
			return appErrors.InternalError(err)
		}
		if err := s.proposalRepo.CancelAllForProject(db, p.ID); err != nil {
			return appErrors.InternalError(err)
		}
		chosen, err := s.proposalRepo.FindChosenByProject(db, p.ID)
		if err != nil {
			if appErrors.Is(err, repositories.ErrChosenNotFound) {
				continue
			}
			return appErrors.InternalError(err)
		}
		if err := s.proposalRepo.MarkChosenCanceled(db, chosen.ID); err != nil {
			return appErrors.InternalError(err)
		}
	}
	return nil
}

// unwindProposals снимает предложения удаляемого пользователя. Принятые
// отменяются, их проекты возвращаются в active; для price-adjusted
// предложений разница с maxPrice проводится обратно между владельцем
// и площадкой.
func (s *userServiceImpl) unwindProposals(db *gorm.DB, user *models.User) error {
	snapshot := fmt.Sprintf("%s (DELETED)", user.Username)
	proposals, err := s.proposalRepo.SnapshotProposerUsernames(db, user.ID, snapshot)
	if err != nil {
		return appErrors.InternalError(err)
	}

	for i := range proposals {
		proposal := &proposals[i]
		if !proposal.IsAccepted {
			continue
		}
		if err := s.proposalRepo.MarkCanceled(db, proposal.ID); err != nil {
			return appErrors.InternalError(err)
		}
		project := proposal.Project
		if project == nil {
			continue
		}

		if proposal.IsPriceAdjusted && project.PublishedUserID != nil {
			owner, err := s.userRepo.FindByID(db, *project.PublishedUserID)
			if err != nil {
				return appErrors.InternalError(err)
			}
			delta := proposal.ProposedPrice - project.MaxPrice
			if delta > 0 {
				if err := s.ledger.ReleaseToUser(db, owner.ID, owner.Username, delta,
					fmt.Sprintf("Spent %d points for '%s' due to the deletion of user '%s'.", delta, owner.Username, user.Username),
					fmt.Sprintf("Received %d points due to the deletion of user '%s'.", delta, user.Username),
				); err != nil {
					return err
				}
			} else if delta < 0 {
				reclaim := -delta
				if err := s.ledger.ReclaimFromUser(db, owner.ID, owner.Username, reclaim,
					fmt.Sprintf("Spent %d points due to the deletion of user '%s'.", reclaim, user.Username),
					fmt.Sprintf("Received %d points from '%s' due to the deletion of user '%s'.", reclaim, owner.Username, user.Username),
				); err != nil {
					return err
				}
			}
		}

		chosen, err := s.proposalRepo.FindChosenByProject(db, project.ID)
		if err == nil {
			if err := s.proposalRepo.MarkChosenCanceled(db, chosen.ID); err != nil {
				return appErrors.InternalError(err)
			}
		} else if !appErrors.Is(err, repositories.ErrChosenNotFound) {
			return appErrors.InternalError(err)
		}

		if _, err := s.projectRepo.UpdateStatusGuarded(db, project.ID,
			models.ProjectStatusInProgress, models.ProjectStatusActive); err != nil {
			return appErrors.InternalError(err)
		}
	}
	return nil
}
