package repositories

import (
	"errors"

	"gorm.io/gorm"

	"fls_backend/internal/models"
)

var (
	ErrPointsNotFound      = errors.New("user points not found")
	ErrBidsNotFound        = errors.New("user bids not found")
	ErrInsufficientBalance = errors.New("insufficient points")
	ErrInsufficientBids    = errors.New("insufficient bids")
)

type PaymentRepository interface {
	CreatePoint(db *gorm.DB, point *models.Point) error
	CreateBid(db *gorm.DB, bid *models.Bid) error
	GetPoint(db *gorm.DB, userID string) (*models.Point, error)
	GetBid(db *gorm.DB, userID string) (*models.Bid, error)

	// DebitGuarded списывает баллы одним UPDATE с предикатом balance >= amount.
	// RowsAffected == 0 означает либо нехватку баллов, либо отсутствие счета.
	DebitGuarded(db *gorm.DB, userID string, amount int) error
	// Credit зачисляет баллы. Знак не проверяется: платформенный счет
	// может уходить в минус (поведение исходной системы).
	Credit(db *gorm.DB, userID string, amount int) error
	// DebitUnguarded списывает без проверки баланса. Только для
	// платформенного счета и обратных проводок каскада.
	DebitUnguarded(db *gorm.DB, userID string, amount int) error

	// SpendBidGuarded тратит одну ставку с предикатом nb_bid > 0.
	SpendBidGuarded(db *gorm.DB, userID string) error
	AddBids(db *gorm.DB, userID string, amount int) error
	// ListRefillableBids возвращает счетчики ниже потолка.
	ListRefillableBids(db *gorm.DB, ceiling int) ([]models.Bid, error)
	// UpdateBidCountGuarded поднимает счетчик с from до to только если он
	// все еще равен from (защита от гонки с тратой ставки).
	UpdateBidCountGuarded(db *gorm.DB, userID string, from, to int) (bool, error)

	CreateLog(db *gorm.DB, entry *models.TransactionLog) error
	ListLogsByUser(db *gorm.DB, userID string) ([]models.TransactionLog, error)
	// SnapshotUsernames помечает записи журнала удаляемого пользователя:
	// user_id обнуляется, username получает снимок. История не удаляется.
	SnapshotUsernames(db *gorm.DB, userID, snapshot string) error

	DeletePoint(db *gorm.DB, userID string) error
	DeleteBid(db *gorm.DB, userID string) error
}

type PaymentRepositoryImpl struct{}

func NewPaymentRepository() PaymentRepository {
	return &PaymentRepositoryImpl{}
}

func (r *PaymentRepositoryImpl) CreatePoint(db *gorm.DB, point *models.Point) error {
	return db.Create(point).Error
}

func (r *PaymentRepositoryImpl) CreateBid(db *gorm.DB, bid *models.Bid) error {
	return db.Create(bid).Error
}

func (r *PaymentRepositoryImpl) GetPoint(db *gorm.DB, userID string) (*models.Point, error) {
	var point models.Point
	if err := db.First(&point, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPointsNotFound
		}
		return nil, err
	}
	return &point, nil
}

func (r *PaymentRepositoryImpl) GetBid(db *gorm.DB, userID string) (*models.Bid, error) {
	var bid models.Bid
	if err := db.First(&bid, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBidsNotFound
		}
		return nil, err
	}
	return &bid, nil
}

func (r *PaymentRepositoryImpl) DebitGuarded(db *gorm.DB, userID string, amount int) error {
	res := db.Model(&models.Point{}).
		Where("user_id = ? AND balance >= ?", userID, amount).
		UpdateColumn("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetPoint(db, userID); err != nil {
			return err
		}
		return ErrInsufficientBalance
	}
	return nil
}

func (r *PaymentRepositoryImpl) Credit(db *gorm.DB, userID string, amount int) error {
	res := db.Model(&models.Point{}).
		Where("user_id = ?", userID).
		UpdateColumn("balance", gorm.Expr("balance + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrPointsNotFound
	}
	return nil
}

func (r *PaymentRepositoryImpl) DebitUnguarded(db *gorm.DB, userID string, amount int) error {
	res := db.Model(&models.Point{}).
		Where("user_id = ?", userID).
		UpdateColumn("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrPointsNotFound
	}
	return nil
}

func (r *PaymentRepositoryImpl) SpendBidGuarded(db *gorm.DB, userID string) error {
	res := db.Model(&models.Bid{}).
		Where("user_id = ? AND nb_bid > 0", userID).
		UpdateColumn("nb_bid", gorm.Expr("nb_bid - 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetBid(db, userID); err != nil {
			return err
		}
		return ErrInsufficientBids
	}
	return nil
}

func (r *PaymentRepositoryImpl) AddBids(db *gorm.DB, userID string, amount int) error {
	res := db.Model(&models.Bid{}).
		Where("user_id = ?", userID).
		UpdateColumn("nb_bid", gorm.Expr("nb_bid + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrBidsNotFound
	}
	return nil
}

func (r *PaymentRepositoryImpl) ListRefillableBids(db *gorm.DB, ceiling int) ([]models.Bid, error) {
	var bids []models.Bid
	if err := db.Where("nb_bid < ?", ceiling).Find(&bids).Error; err != nil {
		return nil, err
	}
	return bids, nil
}

func (r *PaymentRepositoryImpl) UpdateBidCountGuarded(db *gorm.DB, userID string, from, to int) (bool, error) {
	res := db.Model(&models.Bid{}).
		Where("user_id = ? AND nb_bid = ?", userID, from).
		UpdateColumn("nb_bid", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *PaymentRepositoryImpl) CreateLog(db *gorm.DB, entry *models.TransactionLog) error {
	return db.Create(entry).Error
}

func (r *PaymentRepositoryImpl) ListLogsByUser(db *gorm.DB, userID string) ([]models.TransactionLog, error) {
	var logs []models.TransactionLog
	if err := db.Where("user_id = ?", userID).Order("created_at DESC").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *PaymentRepositoryImpl) SnapshotUsernames(db *gorm.DB, userID, snapshot string) error {
	return db.Model(&models.TransactionLog{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{"username": snapshot, "user_id": nil}).Error
}

func (r *PaymentRepositoryImpl) DeletePoint(db *gorm.DB, userID string) error {
	return db.Delete(&models.Point{}, "user_id = ?", userID).Error
}

func (r *PaymentRepositoryImpl) DeleteBid(db *gorm.DB, userID string) error {
	return db.Delete(&models.Bid{}, "user_id = ?", userID).Error
}
