package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	LedgerTransactions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "fls_ledger_transactions_total", Help: "Total transaction log entries by type"},
		[]string{"type"},
	)
	ProjectsExpired = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "fls_projects_expired_total", Help: "Total projects expired by the sweep"},
	)
	BidsRefilled = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "fls_bids_refilled_total", Help: "Total bids granted by the weekly refill"},
	)
	UserCascades = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "fls_user_cascades_total", Help: "Total user deletion cascades executed"},
	)
)

var registerOnce sync.Once

func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(LedgerTransactions, ProjectsExpired, BidsRefilled, UserCascades)
	})
}
