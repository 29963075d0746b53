package reporting

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mamadbah2/boilerdesk/internal/domain/models"
	repo "github.com/mamadbah2/boilerdesk/internal/repository/sheets"
	"github.com/mamadbah2/boilerdesk/pkg/bangla"
)

const (
	salaryDataRange  = "Salary!A:H"
	salaryHeaderCell = "Salary!A1:H1"
	ratesDataRange   = "Rates!A:H"
	ratesHeaderCell  = "Rates!A1:H1"

	// salaryFanOut bounds concurrent salary reads.
	salaryFanOut = 4
)

// ErrExportDisabled is returned when no spreadsheet is configured.
var ErrExportDisabled = errors.New("google sheets export is not configured")

var (
	salaryHeader = []interface{}{"Month", "Employee", "Present days", "Daily salary", "Total salary", "Total advance", "Payable", "Exported at"}
	ratesHeader  = []interface{}{"Date", "Customer", "Proposal big", "Proposal small", "Actual big", "Actual small", "Piece big", "Piece small"}
)

// Store is the part of the record service reports read.
type Store interface {
	Employees(ctx context.Context) ([]models.Employee, error)
	SalaryReport(ctx context.Context, employeeID, month string) (models.MonthlySalaryReport, error)
	AdvancesByMonth(ctx context.Context, employeeID, month string) ([]models.AdvanceEntry, error)
	RatesByDate(ctx context.Context, date string) (models.PriceRecord, error)
}

// Monthly lists every employee's salary report for a month.
type Monthly struct {
	store  Store
	logger *zap.Logger
}

// NewMonthly creates the monthly report source.
func NewMonthly(store Store, logger *zap.Logger) *Monthly {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monthly{store: store, logger: logger}
}

// List reads employees and then their reports concurrently. Rows keep employee
// order; one failed report fails the whole read.
func (m *Monthly) List(ctx context.Context, month string) ([]models.SalaryRow, error) {
	if _, err := models.ParseMonth(month); err != nil {
		return nil, fmt.Errorf("month %q: %w", month, err)
	}

	employees, err := m.store.Employees(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]models.SalaryRow, len(employees))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(salaryFanOut)
	for i, e := range employees {
		i, e := i, e
		g.Go(func() error {
			report, err := m.store.SalaryReport(gctx, e.ID, month)
			if err != nil {
				return err
			}
			rows[i] = models.SalaryRow{Employee: e, Report: report}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	m.logger.Debug("monthly report loaded", zap.String("month", month), zap.Int("employees", len(rows)))
	return rows, nil
}

// Advances lists one employee's date-wise advances for a month.
type Advances struct {
	store Store
}

// NewAdvances creates the advance breakdown source.
func NewAdvances(store Store) *Advances {
	return &Advances{store: store}
}

// List returns the advances ordered by date. An empty filter reads nothing.
func (a *Advances) List(ctx context.Context, filter models.AdvanceFilter) ([]models.AdvanceEntry, error) {
	if filter.EmployeeID == "" || filter.Month == "" {
		return nil, nil
	}
	entries, err := a.store.AdvancesByMonth(ctx, filter.EmployeeID, filter.Month)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Date < entries[j].Date })
	return entries, nil
}

// MonthTotal sums advance amounts without float drift.
func MonthTotal(entries []models.AdvanceEntry) float64 {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(decimal.NewFromFloat(e.Amount))
	}
	return total.InexactFloat64()
}

// Totals is the footer of the monthly salary table.
type Totals struct {
	Salary  float64
	Advance float64
	Payable float64
}

// SumRows adds up the monthly rows without float drift.
func SumRows(rows []models.SalaryRow) Totals {
	var salary, advance, payable decimal.Decimal
	for _, r := range rows {
		salary = salary.Add(decimal.NewFromFloat(r.Report.TotalSalary))
		advance = advance.Add(decimal.NewFromFloat(r.Report.TotalAdvance))
		payable = payable.Add(decimal.NewFromFloat(r.Report.Payable))
	}
	return Totals{
		Salary:  salary.InexactFloat64(),
		Advance: advance.InexactFloat64(),
		Payable: payable.InexactFloat64(),
	}
}

// Service exports reports to Google Sheets and renders text summaries.
type Service struct {
	store   Store
	repo    repo.Repository
	monthly *Monthly
	now     func() time.Time
	logger  *zap.Logger
}

// NewService wires a new reporting service instance. repository may be nil,
// in which case exports return ErrExportDisabled.
func NewService(store Store, repository repo.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:   store,
		repo:    repository,
		monthly: NewMonthly(store, logger),
		now:     time.Now,
		logger:  logger,
	}
}

// ExportEnabled reports whether a spreadsheet is configured.
func (s *Service) ExportEnabled() bool {
	return s.repo != nil
}

// ExportMonthlyReport appends every employee's report for month and returns the
// number of rows written.
func (s *Service) ExportMonthlyReport(ctx context.Context, month string) (int, error) {
	if s.repo == nil {
		return 0, ErrExportDisabled
	}

	reports, err := s.monthly.List(ctx, month)
	if err != nil {
		return 0, fmt.Errorf("load monthly report: %w", err)
	}

	exportedAt := s.now().Format(time.RFC3339)
	rows := make([][]interface{}, 0, len(reports))
	for _, r := range reports {
		rows = append(rows, []interface{}{
			month,
			r.Employee.Name,
			r.Report.PresentDays,
			r.Report.DailySalary,
			r.Report.TotalSalary,
			r.Report.TotalAdvance,
			r.Report.Payable,
			exportedAt,
		})
	}

	if err := s.appendWithHeader(ctx, salaryHeaderCell, salaryDataRange, salaryHeader, rows); err != nil {
		return 0, err
	}
	s.logger.Info("monthly report exported", zap.String("month", month), zap.Int("rows", len(rows)))
	return len(rows), nil
}

// ExportRates appends the price sheet of date and returns the number of rows
// written.
func (s *Service) ExportRates(ctx context.Context, date string) (int, error) {
	if s.repo == nil {
		return 0, ErrExportDisabled
	}

	record, err := s.store.RatesByDate(ctx, date)
	if err != nil {
		return 0, fmt.Errorf("load rates: %w", err)
	}

	rows := make([][]interface{}, 0, len(record.Entries))
	for _, e := range record.Entries {
		rows = append(rows, []interface{}{
			date,
			e.CustomerName,
			e.Proposal.Big, e.Proposal.Small,
			e.Actual.Big, e.Actual.Small,
			e.Piece.Big, e.Piece.Small,
		})
	}

	if err := s.appendWithHeader(ctx, ratesHeaderCell, ratesDataRange, ratesHeader, rows); err != nil {
		return 0, err
	}
	s.logger.Info("rates exported", zap.String("date", date), zap.Int("rows", len(rows)))
	return len(rows), nil
}

// appendWithHeader writes header first when the sheet is still empty.
func (s *Service) appendWithHeader(ctx context.Context, headerCell, dataRange string, header []interface{}, rows [][]interface{}) error {
	if len(rows) == 0 {
		return nil
	}

	existing, err := s.repo.ReadRange(ctx, headerCell)
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	if len(existing) == 0 {
		rows = append([][]interface{}{header}, rows...)
	}

	if err := s.repo.AppendRows(ctx, dataRange, rows); err != nil {
		return fmt.Errorf("append rows: %w", err)
	}
	return nil
}

// RatesSummary renders the price sheet of date as a short message.
func (s *Service) RatesSummary(ctx context.Context, date string) (string, error) {
	record, err := s.store.RatesByDate(ctx, date)
	if err != nil {
		return "", fmt.Errorf("load rates: %w", err)
	}

	if len(record.Entries) == 0 {
		return fmt.Sprintf("%s: আজকের দাম এখনও দেওয়া হয়নি।", bangla.Digits(date)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s তারিখের দাম (বড় / ছোট)\n", bangla.Digits(date))
	for _, e := range record.Entries {
		fmt.Fprintf(&b, "%s: প্রস্তাব %s / %s, বিক্রয় %s / %s\n",
			e.CustomerName,
			bangla.Money(e.Proposal.Big), bangla.Money(e.Proposal.Small),
			bangla.Money(e.Actual.Big), bangla.Money(e.Actual.Small))
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// PreviousMonth returns the month before t in YYYY-MM form.
func PreviousMonth(t time.Time) string {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return first.AddDate(0, -1, 0).Format(models.MonthLayout)
}
