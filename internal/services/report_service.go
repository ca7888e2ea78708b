package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"budget/internal/cache"
	"budget/internal/core"
	"budget/internal/storage"
)

// ReportService aggregates transactions into totals, period buckets and
// per-category sums. Results are cached until the next write.
type ReportService struct {
	repo  storage.TransactionRepository
	cache cache.Cache[core.Report]
}

// NewReportService caches reports in c when it is non-nil.
func NewReportService(repo storage.TransactionRepository, c cache.Cache[core.Report]) *ReportService {
	return &ReportService{repo: repo, cache: c}
}

// Invalidate drops every cached report.
func (s *ReportService) Invalidate() {
	if s.cache != nil {
		s.cache.Purge()
	}
}

func (s *ReportService) Summary(ctx context.Context, q core.ReportQuery) (core.Report, error) {
	if q.Period == "" {
		q.Period = core.PeriodMonthly
	}
	if !q.From.IsZero() && !q.To.IsZero() && q.To.Before(q.From) {
		return core.Report{}, fmt.Errorf("%w: report range ends before it starts", core.ErrInvalidDate)
	}

	key := q.Key()
	if s.cache != nil {
		if r, ok := s.cache.Get(key); ok {
			slog.DebugContext(ctx, "Report cache hit", "key", key)
			return r, nil
		}
	}

	txs, err := s.repo.ListTransactions(ctx)
	if err != nil {
		return core.Report{}, fmt.Errorf("list transactions: %w", err)
	}

	report := BuildReport(txs, q)
	if s.cache != nil {
		s.cache.Set(key, report)
	}
	return report, nil
}

// BuildReport aggregates the transactions matching q.
func BuildReport(txs []core.Transaction, q core.ReportQuery) core.Report {
	type catKey struct {
		kind core.Kind
		name string
	}

	report := core.Report{
		Period:     q.Period,
		Buckets:    []core.PeriodBucket{},
		Categories: []core.CategoryAmount{},
	}
	buckets := map[int64]*core.PeriodBucket{}
	cats := map[catKey]*core.CategoryAmount{}

	for _, tx := range txs {
		if !q.Contains(tx.Date) {
			continue
		}

		start := q.Period.BucketStart(tx.Date)
		b, ok := buckets[start.Unix()]
		if !ok {
			b = &core.PeriodBucket{Label: q.Period.Label(start), Start: start}
			buckets[start.Unix()] = b
		}

		k := catKey{tx.Kind, tx.Category}
		c, ok := cats[k]
		if !ok {
			c = &core.CategoryAmount{Name: tx.Category, Kind: tx.Kind}
			cats[k] = c
		}
		c.Amount = c.Amount.Add(tx.Amount)

		switch tx.Kind {
		case core.Income:
			report.Totals.Income = report.Totals.Income.Add(tx.Amount)
			b.Income = b.Income.Add(tx.Amount)
		case core.Expense:
			report.Totals.Expense = report.Totals.Expense.Add(tx.Amount)
			b.Expense = b.Expense.Add(tx.Amount)
		}
	}
	report.Totals.Net = report.Totals.Income.Sub(report.Totals.Expense)

	for _, b := range buckets {
		report.Buckets = append(report.Buckets, *b)
	}
	sort.Slice(report.Buckets, func(i, j int) bool {
		return report.Buckets[i].Start.Before(report.Buckets[j].Start)
	})

	for _, c := range cats {
		report.Categories = append(report.Categories, *c)
	}
	sort.Slice(report.Categories, func(i, j int) bool {
		a, b := report.Categories[i], report.Categories[j]
		if a.Kind != b.Kind {
			return a.Kind == core.Expense
		}
		if a.Amount.Cents != b.Amount.Cents {
			return a.Amount.Cents > b.Amount.Cents
		}
		return a.Name < b.Name
	})
	return report
}
