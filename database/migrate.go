package database

import (
	"gorm.io/gorm"

	"fls_backend/internal/models"
)

// Migrate приводит схему к актуальному набору моделей.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Point{},
		&models.Bid{},
		&models.TransactionLog{},
		&models.Project{},
		&models.ProjectProposal{},
		&models.ChosenProposal{},
		&models.Dispute{},
		&models.ChatRoom{},
		&models.Message{},
		&models.UserReview{},
		&models.UserSavedProject{},
	)
}
