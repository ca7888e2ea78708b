package backend

import (
	"time"

	"budget/internal/cache"
	"budget/internal/core"
	"budget/internal/services"
)

// AppOptions tunes the services built on top of a backend.
type AppOptions struct {
	ReportCacheSize int
	ReportCacheTTL  time.Duration
}

// App bundles the services shared by the server, the workers and budgetctl.
type App struct {
	Transactions *services.TransactionService
	Recurring    *services.RecurringProcessor
	Reports      *services.ReportService
	Settings     *services.SettingsService
	Transfer     *services.TransferService
	ReportCache  *cache.LRUCache[core.Report]
}

// NewApp wires the services over res. Report caches are invalidated by every
// transaction write.
func NewApp(res *BackendResult, opts AppOptions) *App {
	if opts.ReportCacheSize <= 0 {
		opts.ReportCacheSize = 64
	}
	if opts.ReportCacheTTL <= 0 {
		opts.ReportCacheTTL = 5 * time.Minute
	}

	reportCache := cache.NewLRUCache[core.Report](opts.ReportCacheSize, opts.ReportCacheTTL)
	reports := services.NewReportService(res.Store, reportCache)

	var publisher services.EventPublisher
	if res.Publisher != nil {
		publisher = res.Publisher
	}
	transactions := services.NewTransactionService(res.Store, publisher, reports)

	return &App{
		Transactions: transactions,
		Recurring:    services.NewRecurringProcessor(res.Store, transactions),
		Reports:      reports,
		Settings:     services.NewSettingsService(res.Store),
		Transfer:     services.NewTransferService(res.Store, transactions),
		ReportCache:  reportCache,
	}
}
