package workers

import (
	"context"
	"time"

	"gorm.io/gorm"

	"fls_backend/internal/logger"
	"fls_backend/internal/services"
)

// ProjectWorker выполняет плановые обходы: ежедневное устаревание
// проектов с истекшим дедлайном предложений и еженедельное пополнение
// ставок.
type ProjectWorker struct {
	db      *gorm.DB
	project services.ProjectService
	ledger  services.LedgerService
}

func NewProjectWorker(db *gorm.DB, project services.ProjectService, ledger services.LedgerService) *ProjectWorker {
	return &ProjectWorker{db: db, project: project, ledger: ledger}
}

// Start запускает фоновые задачи проектов
func (w *ProjectWorker) Start(ctx context.Context) {
	go w.expireProjects(ctx)
	go w.refillBids(ctx)
}

func (w *ProjectWorker) expireProjects(ctx context.Context) {
	// первый обход сразу при старте, дальше раз в сутки
	w.runExpiry()

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Project expiry worker stopped")
			return
		case <-ticker.C:
			w.runExpiry()
		}
	}
}

func (w *ProjectWorker) runExpiry() {
	expired, err := w.project.ExpireDueProjects(w.db, time.Now())
	if err != nil {
		logger.WorkerLog("project_expiry", "sweep", err)
		return
	}
	if expired > 0 {
		logger.Info("Expired projects past proposal deadline", "count", expired)
	}
}

func (w *ProjectWorker) refillBids(ctx context.Context) {
	ticker := time.NewTicker(7 * 24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Bid refill worker stopped")
			return
		case <-ticker.C:
			granted, err := w.ledger.RefillBids(w.db)
			if err != nil {
				logger.WorkerLog("bid_refill", "weekly allocation", err)
				continue
			}
			logger.Info("Weekly bid allocation finished", "granted", granted)
		}
	}
}
