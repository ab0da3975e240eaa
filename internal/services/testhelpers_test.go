package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"fls_backend/database"
	"fls_backend/internal/config"
	"fls_backend/internal/models"
	"fls_backend/internal/repositories"
	"fls_backend/internal/services/dto"
)

// setupTestDB поднимает именованную in-memory базу на тест.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

type testEnv struct {
	db       *gorm.DB
	platform *models.User

	auth      AuthService
	users     UserService
	projects  ProjectService
	proposals ProposalService
	reviews   ReviewService
	disputes  DisputeService
	ledger    LedgerService
	chat      ChatService

	paymentRepo  repositories.PaymentRepository
	projectRepo  repositories.ProjectRepository
	proposalRepo repositories.ProposalRepository
	reviewRepo   repositories.ReviewRepository
	disputeRepo  repositories.DisputeRepository
	chatRepo     repositories.ChatRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	config.AppConfig = &config.Config{}
	config.AppConfig.JWT.Secret = "test-secret"
	config.AppConfig.JWT.TTL = 60
	config.AppConfig.Platform.Username = "a"

	db := setupTestDB(t)
	platform := createTestUser(t, db, "a", 0)
	db.Model(&models.User{}).Where("id = ?", platform.ID).Updates(map[string]interface{}{"is_superuser": true, "is_admin": true})
	platform.IsSuperuser = true
	platform.IsAdmin = true

	sc := NewServiceContainer(PlatformAccount{ID: platform.ID, Username: platform.Username}, 100)

	return &testEnv{
		db:       db,
		platform: platform,

		auth:      sc.AuthService,
		users:     sc.UserService,
		projects:  sc.ProjectService,
		proposals: sc.ProposalService,
		reviews:   sc.ReviewService,
		disputes:  sc.DisputeService,
		ledger:    sc.LedgerService,
		chat:      sc.ChatService,

		paymentRepo:  repositories.NewPaymentRepository(),
		projectRepo:  repositories.NewProjectRepository(),
		proposalRepo: repositories.NewProposalRepository(),
		reviewRepo:   repositories.NewReviewRepository(),
		disputeRepo:  repositories.NewDisputeRepository(),
		chatRepo:     repositories.NewChatRepository(),
	}
}

// createTestUser создает пользователя со счетом баллов и пятью ставками.
func createTestUser(t *testing.T, db *gorm.DB, username string, balance int) *models.User {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Username:     username,
		Email:        username + "@test.local",
		PasswordHash: string(hashed),
		Status:       models.UserStatusActive,
	}
	require.NoError(t, db.Create(user).Error)
	require.NoError(t, db.Create(&models.Point{UserID: user.ID, Balance: balance}).Error)
	require.NoError(t, db.Create(&models.Bid{UserID: user.ID, NbBid: models.BidCeiling}).Error)
	return user
}

func (e *testEnv) pointsOf(t *testing.T, userID string) int {
	t.Helper()
	point, err := e.paymentRepo.GetPoint(e.db, userID)
	require.NoError(t, err)
	return point.Balance
}

func (e *testEnv) bidsOf(t *testing.T, userID string) int {
	t.Helper()
	bid, err := e.paymentRepo.GetBid(e.db, userID)
	require.NoError(t, err)
	return bid.NbBid
}

func (e *testEnv) logsOf(t *testing.T, userID string) []models.TransactionLog {
	t.Helper()
	logs, err := e.paymentRepo.ListLogsByUser(e.db, userID)
	require.NoError(t, err)
	return logs
}

func futureDate(days int) string {
	return time.Now().AddDate(0, 0, days).Format("2006-01-02")
}

func pastDate(days int) string {
	return time.Now().AddDate(0, 0, -days).Format("2006-01-02")
}

// createActiveProject создает проект через сервис (с эскроу-резервом).
func (e *testEnv) createActiveProject(t *testing.T, owner *models.User, title string, minPrice, maxPrice int) *models.Project {
	t.Helper()

	resp, err := e.projects.CreateProject(e.db, owner, newProjectRequest(title, minPrice, maxPrice))
	require.NoError(t, err)

	project, err := e.projectRepo.FindByID(e.db, resp.ID)
	require.NoError(t, err)
	return project
}

func newProjectRequest(title string, minPrice, maxPrice int) *dto.CreateProjectRequest {
	return &dto.CreateProjectRequest{
		Title:           title,
		Description:     "Build the thing",
		SkillsNeeded:    []string{"go"},
		MinPrice:        minPrice,
		MaxPrice:        maxPrice,
		DueDate:         futureDate(30),
		ProposalTimeEnd: futureDate(14),
	}
}
