package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"fls_backend/database"
	"fls_backend/internal/appErrors"
	"fls_backend/internal/config"
	"fls_backend/internal/handlers"
	"fls_backend/internal/logger"
	"fls_backend/internal/metrics"
	"fls_backend/internal/middleware"
	"fls_backend/internal/models"
	"fls_backend/internal/repositories"
	"fls_backend/internal/routes"
	"fls_backend/internal/services"
	"fls_backend/internal/validator"
	"fls_backend/internal/workers"
)

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	gormDB, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to GORM", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if err := database.Migrate(gormDB); err != nil {
		logger.Fatal("Failed to migrate database", "error", err)
	}

	metrics.Register()

	// Платформенный счет разрешается один раз; без него финансовые
	// операции невозможны, поэтому старт прерывается.
	platform, err := ResolvePlatformAccount(gormDB, cfg)
	if err != nil {
		logger.Fatal("Failed to resolve platform account", "error", err)
	}
	logger.Info("Platform account resolved", "username", platform.Username)

	serviceContainer := services.NewServiceContainer(platform, cfg.Ledger.InitialBalance)
	ginRouter := SetupRouter(cfg, gormDB, serviceContainer)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	worker := workers.NewProjectWorker(gormDB, serviceContainer.ProjectService, serviceContainer.LedgerService)
	worker.Start(ctx)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info(fmt.Sprintf("Server starting on %s", address))
	if err := ginRouter.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

func SetupRouter(cfg *config.Config, gormDB *gorm.DB, serviceContainer *services.ServiceContainer) *gin.Engine {
	appHandlers := handlers.NewAppHandlers(serviceContainer, validator.New())

	ginRouter := initializeGinRouter(cfg, gormDB)
	routes.RegisterRoutes(ginRouter, appHandlers)
	return ginRouter
}

func initializeGinRouter(cfg *config.Config, gormDB *gorm.DB) *gin.Engine {
	if cfg.Server.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	ginRouter := gin.New()
	ginRouter.Use(gin.Recovery())
	ginRouter.Use(middleware.RequestIDMiddleware())
	ginRouter.Use(middleware.LoggingMiddleware())
	ginRouter.Use(middleware.CORSMiddleware())
	ginRouter.Use(middleware.DBMiddleware(gormDB))
	return ginRouter
}

// ResolvePlatformAccount находит суперпользовательский счет площадки.
// Если его нет и в конфигурации задан пароль, счет создается с нулевым
// балансом. Отсутствие или неоднозначность счета - ошибка конфигурации.
func ResolvePlatformAccount(db *gorm.DB, cfg *config.Config) (services.PlatformAccount, error) {
	userRepo := repositories.NewUserRepository()
	paymentRepo := repositories.NewPaymentRepository()

	user, err := userRepo.FindPlatformUser(db, cfg.Platform.Username)
	if err == nil {
		return services.PlatformAccount{ID: user.ID, Username: user.Username}, nil
	}
	if appErrors.Is(err, repositories.ErrPlatformUserAmbiguous) {
		return services.PlatformAccount{}, appErrors.ErrConfiguration.WithMessage("More than one platform superuser account exists")
	}
	if !appErrors.Is(err, repositories.ErrPlatformUserNotFound) {
		return services.PlatformAccount{}, err
	}

	if cfg.Platform.Password == "" {
		return services.PlatformAccount{}, appErrors.ErrConfiguration
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.Platform.Password), bcrypt.DefaultCost)
	if err != nil {
		return services.PlatformAccount{}, err
	}
	platformUser := &models.User{
		Username:     cfg.Platform.Username,
		Email:        cfg.Platform.Email,
		PasswordHash: string(hashed),
		Status:       models.UserStatusActive,
		IsAdmin:      true,
		IsSuperuser:  true,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := userRepo.Create(tx, platformUser); err != nil {
			return err
		}
		if err := paymentRepo.CreatePoint(tx, &models.Point{UserID: platformUser.ID}); err != nil {
			return err
		}
		return paymentRepo.CreateBid(tx, &models.Bid{UserID: platformUser.ID, NbBid: models.BidCeiling})
	})
	if err != nil {
		return services.PlatformAccount{}, err
	}

	logger.Info("Platform account seeded", "username", platformUser.Username)
	return services.PlatformAccount{ID: platformUser.ID, Username: platformUser.Username}, nil
}
