package services

import (
	"fls_backend/internal/repositories"
)

// ServiceContainer содержит все сервисы приложения.
type ServiceContainer struct {
	AuthService     AuthService
	UserService     UserService
	ProjectService  ProjectService
	ProposalService ProposalService
	ReviewService   ReviewService
	DisputeService  DisputeService
	LedgerService   LedgerService
	ChatService     ChatService
}

// NewServiceContainer собирает репозитории и сервисы с их зависимостями.
// platform - платформенный счет, разрешенный один раз при старте.
func NewServiceContainer(platform PlatformAccount, initialBalance int) *ServiceContainer {
	userRepo := repositories.NewUserRepository()
	paymentRepo := repositories.NewPaymentRepository()
	projectRepo := repositories.NewProjectRepository()
	proposalRepo := repositories.NewProposalRepository()
	reviewRepo := repositories.NewReviewRepository()
	disputeRepo := repositories.NewDisputeRepository()
	chatRepo := repositories.NewChatRepository()

	ledger := NewLedgerService(paymentRepo, userRepo, platform)
	chat := NewChatService(chatRepo)

	return &ServiceContainer{
		AuthService:     NewAuthService(userRepo, paymentRepo, initialBalance),
		UserService:     NewUserService(userRepo, projectRepo, proposalRepo, paymentRepo, disputeRepo, ledger, chat),
		ProjectService:  NewProjectService(projectRepo, proposalRepo, reviewRepo, userRepo, ledger, chat),
		ProposalService: NewProposalService(proposalRepo, projectRepo, userRepo, ledger, chat),
		ReviewService:   NewReviewService(reviewRepo, projectRepo, proposalRepo, disputeRepo, userRepo, ledger, chat),
		DisputeService:  NewDisputeService(disputeRepo, projectRepo, proposalRepo),
		LedgerService:   ledger,
		ChatService:     chat,
	}
}
