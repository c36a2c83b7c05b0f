package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pankajredekar/stockroom/internal/logging"
	"github.com/pankajredekar/stockroom/internal/model"
	"github.com/pankajredekar/stockroom/internal/notify"
)

// AlertLister returns the products that need restocking.
type AlertLister interface {
	OutOfStock(ctx context.Context) ([]model.Product, error)
	LowStock(ctx context.Context) ([]model.Product, error)
	LowThreshold() int
}

// ReportService builds the low-stock report and sends it to a Notifier.
type ReportService struct {
	stats    AlertLister
	notifier notify.Notifier
	logger   logging.Logger
}

// NewReportService returns a ReportService. notifier may be nil when alerts are
// not configured; Send then fails.
func NewReportService(stats AlertLister, notifier notify.Notifier, logger logging.Logger) *ReportService {
	if logger == nil {
		logger = logging.NoOp{}
	}
	return &ReportService{stats: stats, notifier: notifier, logger: logger}
}

// LowStockReport renders the out-of-stock and low-stock lists as of now.
// ok is true when nothing needs attention.
func (s *ReportService) LowStockReport(ctx context.Context, now time.Time) (report string, ok bool, err error) {
	out, err := s.stats.OutOfStock(ctx)
	if err != nil {
		return "", false, err
	}
	low, err := s.stats.LowStock(ctx)
	if err != nil {
		return "", false, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Stock report %s\n", now.Format("2006-01-02 15:04"))
	if len(out) == 0 && len(low) == 0 {
		b.WriteString("\nAll products are above the low-stock threshold.\n")
		return b.String(), true, nil
	}

	if len(out) > 0 {
		fmt.Fprintf(&b, "\nOut of stock (%d):\n", len(out))
		for _, p := range out {
			fmt.Fprintf(&b, "- %s [%s]\n", p.Name, p.Barcode)
		}
	}
	if len(low) > 0 {
		fmt.Fprintf(&b, "\nLow stock, %d or less (%d):\n", s.stats.LowThreshold(), len(low))
		for _, p := range low {
			fmt.Fprintf(&b, "- %s [%s]: %d left\n", p.Name, p.Barcode, p.Stock)
		}
	}
	return b.String(), false, nil
}

// Send builds the report and delivers it. Nothing is sent when every product
// is sufficiently stocked unless always is set.
func (s *ReportService) Send(ctx context.Context, now time.Time, always bool) (bool, error) {
	if s.notifier == nil {
		return false, fmt.Errorf("report: no notifier configured")
	}
	report, ok, err := s.LowStockReport(ctx, now)
	if err != nil {
		return false, err
	}
	if ok && !always {
		s.logger.Debug("stock report skipped, nothing to report", nil)
		return false, nil
	}
	if err := s.notifier.Notify(ctx, report); err != nil {
		return false, fmt.Errorf("report: %w", err)
	}
	s.logger.Info("stock report sent", map[string]interface{}{"healthy": ok})
	return true, nil
}
