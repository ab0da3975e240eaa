package services

import (
	"fmt"
	"math"

	"gorm.io/gorm"

	"fls_backend/internal/appErrors"
	"fls_backend/internal/models"
	"fls_backend/internal/repositories"
	"fls_backend/internal/services/dto"
)

type ReviewService interface {
	// MarkComplete завершает in_progress проект: выплата исполнителю из
	// эскроу плюс одна ставка, закрытие чата и создание пары пустых
	// отзывов. Блокируется нерешенным спором.
	MarkComplete(db *gorm.DB, user *models.User, projectID string) error
	// SubmitReview заполняет отзыв. Оценка ставится только один раз;
	// когда оценены обе стороны, исполнитель получает одну ставку.
	SubmitReview(db *gorm.DB, user *models.User, reviewID string, req *dto.SubmitReviewRequest) (*dto.ReviewResponse, error)
	ListPendingReviews(db *gorm.DB, userID string) ([]dto.ReviewResponse, error)
}

type reviewServiceImpl struct {
	reviewRepo   repositories.ReviewRepository
	projectRepo  repositories.ProjectRepository
	proposalRepo repositories.ProposalRepository
	disputeRepo  repositories.DisputeRepository
	userRepo     repositories.UserRepository
	ledger       LedgerService
	chat         ChatService
}

func NewReviewService(
	reviewRepo repositories.ReviewRepository,
	projectRepo repositories.ProjectRepository,
	proposalRepo repositories.ProposalRepository,
	disputeRepo repositories.DisputeRepository,
	userRepo repositories.UserRepository,
	ledger LedgerService,
	chat ChatService,
) ReviewService {
	return &reviewServiceImpl{
		reviewRepo:   reviewRepo,
		projectRepo:  projectRepo,
		proposalRepo: proposalRepo,
		disputeRepo:  disputeRepo,
		userRepo:     userRepo,
		ledger:       ledger,
		chat:         chat,
	}
}

func (s *reviewServiceImpl) MarkComplete(db *gorm.DB, user *models.User, projectID string) error {
	project, err := s.projectRepo.FindByID(db, projectID)
	if err != nil {
		if appErrors.Is(err, repositories.ErrProjectNotFound) {
			return appErrors.ErrProjectNotFound
		}
		return appErrors.InternalError(err)
	}
	if project.PublishedUserID == nil || *project.PublishedUserID != user.ID {
		return appErrors.ErrForbidden
	}
	if project.Status != models.ProjectStatusInProgress {
		return appErrors.ErrInvalidState.WithMessage("Only in progress projects can be marked as complete")
	}

	chosen, err := s.proposalRepo.FindChosenByProject(db, project.ID)
	if err != nil {
		if appErrors.Is(err, repositories.ErrChosenNotFound) {
			return appErrors.ErrInvalidState.WithMessage("No proposal has been selected for this project")
		}
		return appErrors.InternalError(err)
	}
	if chosen.SelectedProposal == nil || chosen.SelectedProposal.ProposerID == nil {
		return appErrors.ErrProposalNotFound
	}

	unresolved, err := s.disputeRepo.CountUnresolved(db, chosen.ID)
	if err != nil {
		return appErrors.InternalError(err)
	}
	if unresolved > 0 {
		return appErrors.ErrDisputeOpen
	}

	proposer, err := s.userRepo.FindByID(db, *chosen.SelectedProposal.ProposerID)
	if err != nil {
		return appErrors.ErrProposalNotFound
	}
	price := chosen.SelectedProposal.ProposedPrice

	return db.Transaction(func(tx *gorm.DB) error {
		ok, err := s.projectRepo.UpdateStatusGuarded(tx, project.ID, models.ProjectStatusInProgress, models.ProjectStatusCompleted)
		if err != nil {
			return appErrors.InternalError(err)
		}
		if !ok {
			return appErrors.ErrInvalidState
		}

		if err := s.ledger.ReleaseToUser(tx, proposer.ID, proposer.Username, price,
			fmt.Sprintf("Spent %d points to '%s' for completing '%s' project.", price, proposer.Username, project.Title),
			fmt.Sprintf("Received %d points for completing '%s' project.", price, project.Title),
		); err != nil {
			return err
		}

		if err := s.ledger.RewardBid(tx, proposer.ID, proposer.Username,
			fmt.Sprintf("Received 1 bid upon completing '%s' project.", project.Title)); err != nil {
			return err
		}

		if err := s.chat.CloseForProject(tx, project.ID); err != nil {
			return err
		}

		if err := s.ensureReview(tx, project.ID, proposer.ID, user.ID, models.ReviewedUserClient); err != nil {
			return err
		}
		return s.ensureReview(tx, project.ID, user.ID, proposer.ID, models.ReviewedUserFreelancer)
	})
}

// ensureReview создает пустой отзыв, если такого еще нет.
func (s *reviewServiceImpl) ensureReview(db *gorm.DB, projectID, reviewerID, reviewedID string, title models.ReviewedUserTitle) error {
	exists, err := s.reviewRepo.Exists(db, projectID, reviewerID, reviewedID)
	if err != nil {
		return appErrors.InternalError(err)
	}
	if exists {
		return nil
	}
	review := &models.UserReview{
		ProjectID:         &projectID,
		ReviewerID:        &reviewerID,
		ReviewedUserID:    &reviewedID,
		ReviewedUserTitle: title,
	}
	if err := s.reviewRepo.Create(db, review); err != nil {
		return appErrors.InternalError(err)
	}
	return nil
}

func (s *reviewServiceImpl) SubmitReview(db *gorm.DB, user *models.User, reviewID string, req *dto.SubmitReviewRequest) (*dto.ReviewResponse, error) {
	review, err := s.reviewRepo.FindByID(db, reviewID)
	if err != nil {
		if appErrors.Is(err, repositories.ErrReviewNotFound) {
			return nil, appErrors.ErrReviewNotFound
		}
		return nil, appErrors.InternalError(err)
	}
	if review.ReviewerID == nil || *review.ReviewerID != user.ID {
		return nil, appErrors.ErrForbidden
	}
	if review.Rating != nil {
		return nil, appErrors.ErrInvalidState.WithMessage("Review has already been submitted")
	}
	if req.Rating < 0 || req.Rating > 5 || math.Mod(req.Rating*10, 1) != 0 {
		return nil, appErrors.NewBadRequestError("Rating must be between 0 and 5 with at most one decimal place")
	}

	rating := req.Rating
	review.Rating = &rating
	review.Feedback = req.Feedback

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := s.reviewRepo.Update(tx, review); err != nil {
			return appErrors.InternalError(err)
		}
		return s.rewardWhenPairRated(tx, review)
	})
	if err != nil {
		return nil, err
	}
	return toReviewResponse(review), nil
}

// rewardWhenPairRated начисляет исполнителю одну ставку, когда оценены
// обе стороны. Оценка выставляется только один раз, поэтому условие
// становится истинным ровно на одном вызове.
func (s *reviewServiceImpl) rewardWhenPairRated(db *gorm.DB, review *models.UserReview) error {
	if review.ProjectID == nil {
		return nil
	}
	reviews, err := s.reviewRepo.ListByProject(db, *review.ProjectID)
	if err != nil {
		return appErrors.InternalError(err)
	}

	var clientRated bool
	var freelancerReview *models.UserReview
	for i := range reviews {
		if reviews[i].Rating == nil {
			continue
		}
		switch reviews[i].ReviewedUserTitle {
		case models.ReviewedUserClient:
			clientRated = true
		case models.ReviewedUserFreelancer:
			freelancerReview = &reviews[i]
		}
	}
	if !clientRated || freelancerReview == nil || freelancerReview.ReviewedUserID == nil {
		return nil
	}

	freelancer, err := s.userRepo.FindByID(db, *freelancerReview.ReviewedUserID)
	if err != nil {
		if appErrors.Is(err, repositories.ErrUserNotFound) {
			return nil
		}
		return appErrors.InternalError(err)
	}

	title := ""
	if review.Project != nil {
		title = review.Project.Title
	}
	return s.ledger.RewardBid(db, freelancer.ID, freelancer.Username,
		fmt.Sprintf("Received 1 bid upon completing the review for the '%s' project.", title))
}

func (s *reviewServiceImpl) ListPendingReviews(db *gorm.DB, userID string) ([]dto.ReviewResponse, error) {
	reviews, err := s.reviewRepo.ListPendingByReviewer(db, userID)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	out := make([]dto.ReviewResponse, 0, len(reviews))
	for i := range reviews {
		out = append(out, *toReviewResponse(&reviews[i]))
	}
	return out, nil
}

func toReviewResponse(r *models.UserReview) *dto.ReviewResponse {
	resp := &dto.ReviewResponse{
		ID:                r.ID,
		ReviewedUserTitle: string(r.ReviewedUserTitle),
		Rating:            r.Rating,
		Feedback:          r.Feedback,
		CreatedAt:         r.CreatedAt,
	}
	if r.ProjectID != nil {
		resp.ProjectID = *r.ProjectID
	}
	if r.Project != nil {
		resp.ProjectTitle = r.Project.Title
	}
	return resp
}
