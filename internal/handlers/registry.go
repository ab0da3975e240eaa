package handlers

import (
	"fls_backend/internal/repositories"
	"fls_backend/internal/services"
	"fls_backend/internal/validator"
)

// AppHandlers содержит все хэндлеры приложения.
type AppHandlers struct {
	AuthHandler     *AuthHandler
	UserHandler     *UserHandler
	ProjectHandler  *ProjectHandler
	ProposalHandler *ProposalHandler
	PaymentHandler  *PaymentHandler
	ReviewHandler   *ReviewHandler
	DisputeHandler  *DisputeHandler
}

func NewAppHandlers(sc *services.ServiceContainer, v *validator.Validator) *AppHandlers {
	base := NewBaseHandler(v, repositories.NewUserRepository())

	return &AppHandlers{
		AuthHandler:     NewAuthHandler(base, sc.AuthService),
		UserHandler:     NewUserHandler(base, sc.UserService, sc.ChatService),
		ProjectHandler:  NewProjectHandler(base, sc.ProjectService, sc.ProposalService, sc.ReviewService, sc.DisputeService),
		ProposalHandler: NewProposalHandler(base, sc.ProposalService),
		PaymentHandler:  NewPaymentHandler(base, sc.LedgerService),
		ReviewHandler:   NewReviewHandler(base, sc.ReviewService),
		DisputeHandler:  NewDisputeHandler(base, sc.DisputeService),
	}
}
