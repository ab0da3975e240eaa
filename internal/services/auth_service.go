package services

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"fls_backend/internal/appErrors"
	"fls_backend/internal/auth"
	"fls_backend/internal/models"
	"fls_backend/internal/repositories"
	"fls_backend/internal/services/dto"
)

type AuthService interface {
	// Register создает пользователя вместе со стартовыми баллами
	// и пятью ставками.
	Register(db *gorm.DB, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error)
}

type authServiceImpl struct {
	userRepo       repositories.UserRepository
	paymentRepo    repositories.PaymentRepository
	initialBalance int
}

func NewAuthService(
	userRepo repositories.UserRepository,
	paymentRepo repositories.PaymentRepository,
	initialBalance int,
) AuthService {
	return &authServiceImpl{
		userRepo:       userRepo,
		paymentRepo:    paymentRepo,
		initialBalance: initialBalance,
	}
}

func (s *authServiceImpl) Register(db *gorm.DB, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.userRepo.FindByEmail(db, email); err == nil {
		return nil, appErrors.ErrEmailAlreadyExists
	}
	if _, err := s.userRepo.FindByUsername(db, req.Username); err == nil {
		return nil, appErrors.ErrEmailAlreadyExists.WithMessage("Username already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}

	user := &models.User{
		Username:     req.Username,
		Email:        email,
		PasswordHash: string(hashed),
		Status:       models.UserStatusActive,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := s.userRepo.Create(tx, user); err != nil {
			return appErrors.InternalError(err)
		}
		if err := s.paymentRepo.CreatePoint(tx, &models.Point{UserID: user.ID, Balance: s.initialBalance}); err != nil {
			return appErrors.InternalError(err)
		}
		if err := s.paymentRepo.CreateBid(tx, &models.Bid{UserID: user.ID, NbBid: models.BidCeiling}); err != nil {
			return appErrors.InternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	token, err := auth.GenerateToken(user.ID, user.IsAdmin)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	return &dto.AuthResponse{Token: token, User: toUserResponse(user)}, nil
}

func (s *authServiceImpl) Login(db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.userRepo.FindByEmail(db, email)
	if err != nil {
		if appErrors.Is(err, repositories.ErrUserNotFound) {
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, appErrors.InternalError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.ID, user.IsAdmin)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	return &dto.AuthResponse{Token: token, User: toUserResponse(user)}, nil
}

func toUserResponse(u *models.User) dto.UserResponse {
	return dto.UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		IsAdmin:  u.IsAdmin,
	}
}
