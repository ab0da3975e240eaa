package services

import (
	"fls_backend/internal/appErrors"
	"fls_backend/internal/metrics"
	"fls_backend/internal/models"
	"fls_backend/internal/repositories"
	"fls_backend/internal/services/dto"

	"gorm.io/gorm"
)

// PlatformAccount — суперпользовательский счет площадки, разрешенный
// один раз при старте. Контрагент каждой парной транзакции.
type PlatformAccount struct {
	ID       string
	Username string
}

// LedgerService выполняет парные проводки "пользователь <-> площадка".
// Каждый метод пишет обе стороны и обе записи журнала; вызывающий обязан
// передавать транзакционный handle, чтобы пара применялась атомарно.
type LedgerService interface {
	// HoldFromUser списывает с пользователя (с проверкой баланса)
	// и зачисляет площадке. Эскроу-резерв и доплата дельты.
	HoldFromUser(db *gorm.DB, user *models.User, amount int, userDesc, platformDesc string) error
	// ReleaseToUser списывает с площадки (без проверки: счет площадки
	// может уходить в минус) и зачисляет пользователю.
	ReleaseToUser(db *gorm.DB, userID, username string, amount int, platformDesc, userDesc string) error
	// ReclaimFromUser — обратная проводка каскада: списывает с
	// пользователя без проверки баланса и возвращает площадке.
	ReclaimFromUser(db *gorm.DB, userID, username string, amount int, userDesc, platformDesc string) error

	SpendBid(db *gorm.DB, user *models.User, description string) error
	RewardBid(db *gorm.DB, userID, username, description string) error
	// RefillBids поднимает каждый счетчик ниже потолка на 2 (не выше 5)
	// и логирует только фактически примененную дельту.
	RefillBids(db *gorm.DB) (int, error)

	GetBalance(db *gorm.DB, userID string) (*dto.BalanceResponse, error)
	ListTransactions(db *gorm.DB, userID string) ([]dto.TransactionLogResponse, error)
}

type ledgerServiceImpl struct {
	paymentRepo repositories.PaymentRepository
	userRepo    repositories.UserRepository
	platform    PlatformAccount
}

func NewLedgerService(
	paymentRepo repositories.PaymentRepository,
	userRepo repositories.UserRepository,
	platform PlatformAccount,
) LedgerService {
	return &ledgerServiceImpl{
		paymentRepo: paymentRepo,
		userRepo:    userRepo,
		platform:    platform,
	}
}

func (s *ledgerServiceImpl) log(db *gorm.DB, userID, username string, tt models.TransactionType, amount int, description string) error {
	uid := userID
	entry := &models.TransactionLog{
		UserID:          &uid,
		Username:        username,
		TransactionType: tt,
		Amount:          amount,
		Description:     description,
	}
	if err := s.paymentRepo.CreateLog(db, entry); err != nil {
		return err
	}
	metrics.LedgerTransactions.WithLabelValues(string(tt)).Inc()
	return nil
}

func (s *ledgerServiceImpl) HoldFromUser(db *gorm.DB, user *models.User, amount int, userDesc, platformDesc string) error {
	if err := s.paymentRepo.DebitGuarded(db, user.ID, amount); err != nil {
		switch {
		case appErrors.Is(err, repositories.ErrInsufficientBalance):
			return appErrors.ErrInsufficientBalance
		case appErrors.Is(err, repositories.ErrPointsNotFound):
			return appErrors.NotFound("User points")
		}
		return appErrors.InternalError(err)
	}
	if err := s.log(db, user.ID, user.Username, models.TransactionPointsSpent, amount, userDesc); err != nil {
		return appErrors.InternalError(err)
	}
	if err := s.paymentRepo.Credit(db, s.platform.ID, amount); err != nil {
		return appErrors.InternalError(err)
	}
	if err := s.log(db, s.platform.ID, s.platform.Username, models.TransactionSuperPointsReceived, amount, platformDesc); err != nil {
		return appErrors.InternalError(err)
	}
	return nil
}

func (s *ledgerServiceImpl) ReleaseToUser(db *gorm.DB, userID, username string, amount int, platformDesc, userDesc string) error {
	if err := s.paymentRepo.DebitUnguarded(db, s.platform.ID, amount); err != nil {
		return appErrors.InternalError(err)
	}
	if err := s.log(db, s.platform.ID, s.platform.Username, models.TransactionSuperPointsSpent, amount, platformDesc); err != nil {
		return appErrors.InternalError(err)
	}
	if err := s.paymentRepo.Credit(db, userID, amount); err != nil {
		if appErrors.Is(err, repositories.ErrPointsNotFound) {
			return appErrors.NotFound("User points")
		}
		return appErrors.InternalError(err)
	}
	if err := s.log(db, userID, username, models.TransactionPointsReceived, amount, userDesc); err != nil {
		return appErrors.InternalError(err)
	}
	return nil
}

func (s *ledgerServiceImpl) ReclaimFromUser(db *gorm.DB, userID, username string, amount int, userDesc, platformDesc string) error {
	if err := s.paymentRepo.DebitUnguarded(db, userID, amount); err != nil {
		if appErrors.Is(err, repositories.ErrPointsNotFound) {
			return appErrors.NotFound("User points")
		}
		return appErrors.InternalError(err)
	}
	if err := s.log(db, userID, username, models.TransactionPointsSpent, amount, userDesc); err != nil {
		return appErrors.InternalError(err)
	}
	if err := s.paymentRepo.Credit(db, s.platform.ID, amount); err != nil {
		return appErrors.InternalError(err)
	}
	if err := s.log(db, s.platform.ID, s.platform.Username, models.TransactionSuperPointsReceived, amount, platformDesc); err != nil {
		return appErrors.InternalError(err)
	}
	return nil
}

func (s *ledgerServiceImpl) SpendBid(db *gorm.DB, user *models.User, description string) error {
	if err := s.paymentRepo.SpendBidGuarded(db, user.ID); err != nil {
		switch {
		case appErrors.Is(err, repositories.ErrInsufficientBids):
			return appErrors.ErrInsufficientBids
		case appErrors.Is(err, repositories.ErrBidsNotFound):
			return appErrors.NotFound("User bids")
		}
		return appErrors.InternalError(err)
	}
	if err := s.log(db, user.ID, user.Username, models.TransactionBidsSpent, 1, description); err != nil {
		return appErrors.InternalError(err)
	}
	return nil
}

func (s *ledgerServiceImpl) RewardBid(db *gorm.DB, userID, username, description string) error {
	if err := s.paymentRepo.AddBids(db, userID, 1); err != nil {
		return appErrors.InternalError(err)
	}
	if err := s.log(db, userID, username, models.TransactionBidsReceived, 1, description); err != nil {
		return appErrors.InternalError(err)
	}
	return nil
}

func (s *ledgerServiceImpl) RefillBids(db *gorm.DB) (int, error) {
	bids, err := s.paymentRepo.ListRefillableBids(db, models.BidCeiling)
	if err != nil {
		return 0, err
	}

	granted := 0
	for _, bid := range bids {
		target := bid.NbBid + 2
		if target > models.BidCeiling {
			target = models.BidCeiling
		}
		ok, err := s.paymentRepo.UpdateBidCountGuarded(db, bid.UserID, bid.NbBid, target)
		if err != nil {
			return granted, err
		}
		if !ok {
			// счетчик изменился конкурентно, этого пользователя
			// подберет следующий прогон
			continue
		}
		user, err := s.userRepo.FindByID(db, bid.UserID)
		if err != nil {
			return granted, err
		}
		delta := target - bid.NbBid
		if err := s.log(db, user.ID, user.Username, models.TransactionBidsReceived, delta,
			"Received bids as part of weekly allocation."); err != nil {
			return granted, err
		}
		granted += delta
		metrics.BidsRefilled.Add(float64(delta))
	}
	return granted, nil
}

func (s *ledgerServiceImpl) GetBalance(db *gorm.DB, userID string) (*dto.BalanceResponse, error) {
	point, err := s.paymentRepo.GetPoint(db, userID)
	if err != nil {
		if appErrors.Is(err, repositories.ErrPointsNotFound) {
			return nil, appErrors.NotFound("User points")
		}
		return nil, appErrors.InternalError(err)
	}
	bid, err := s.paymentRepo.GetBid(db, userID)
	if err != nil {
		if appErrors.Is(err, repositories.ErrBidsNotFound) {
			return nil, appErrors.NotFound("User bids")
		}
		return nil, appErrors.InternalError(err)
	}
	return &dto.BalanceResponse{Points: point.Balance, Bids: bid.NbBid}, nil
}

func (s *ledgerServiceImpl) ListTransactions(db *gorm.DB, userID string) ([]dto.TransactionLogResponse, error) {
	logs, err := s.paymentRepo.ListLogsByUser(db, userID)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	out := make([]dto.TransactionLogResponse, 0, len(logs))
	for _, l := range logs {
		out = append(out, dto.TransactionLogResponse{
			ID:              l.ID,
			Username:        l.Username,
			TransactionType: string(l.TransactionType),
			Amount:          l.Amount,
			Description:     l.Description,
			CreatedAt:       l.CreatedAt,
		})
	}
	return out, nil
}
