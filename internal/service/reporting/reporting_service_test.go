package reporting_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/mamadbah2/boilerdesk/internal/config"
	"github.com/mamadbah2/boilerdesk/internal/domain/models"
	"github.com/mamadbah2/boilerdesk/internal/service/reporting"
	"github.com/mamadbah2/boilerdesk/internal/testutil/fakestore"
	"github.com/mamadbah2/boilerdesk/internal/viewstate"
	"github.com/mamadbah2/boilerdesk/pkg/clients/recordstore"
)

type memSheet struct {
	mu     sync.Mutex
	ranges map[string][][]interface{}
	reads  []string
}

func newMemSheet() *memSheet {
	return &memSheet{ranges: make(map[string][][]interface{})}
}

func (m *memSheet) AppendRows(_ context.Context, sheetRange string, rows [][]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ranges[sheetRange] = append(m.ranges[sheetRange], rows...)
	return nil
}

// ReadRange answers header reads from the first appended row of the tab.
func (m *memSheet) ReadRange(_ context.Context, sheetRange string) ([][]interface{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads = append(m.reads, sheetRange)
	tab, _, _ := strings.Cut(sheetRange, "!")
	rows := m.ranges[tab+"!A:H"]
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[:1], nil
}

func setup(t *testing.T) (*recordstore.Client, *fakestore.Store) {
	t.Helper()
	store := fakestore.New()
	t.Cleanup(store.Close)
	client := recordstore.NewClient(config.RecordStoreConfig{BaseURL: store.URL(), Timeout: 5 * time.Second}, zaptest.NewLogger(t))
	return client, store
}

func seedMonth(t *testing.T, client *recordstore.Client, store *fakestore.Store) (string, string) {
	t.Helper()
	ctx := context.Background()
	rahim := store.SeedEmployee("রহিম", 600)
	karim := store.SeedEmployee("করিম", 500)

	for _, d := range []string{"2025-01-05", "2025-01-06", "2025-01-07"} {
		if err := client.MarkAttendance(ctx, models.AttendanceMark{EmployeeID: rahim, Date: d, Status: models.StatusPresent}); err != nil {
			t.Fatalf("mark: %v", err)
		}
	}
	if err := client.MarkAttendance(ctx, models.AttendanceMark{EmployeeID: karim, Date: "2025-01-05", Status: models.StatusAbsent}); err != nil {
		t.Fatalf("mark: %v", err)
	}
	store.SeedAdvance(rahim, "2025-01-06", 200.1)
	store.SeedAdvance(rahim, "2025-01-02", 100.2)
	store.SeedAdvance(rahim, "2025-02-01", 999)
	return rahim, karim
}

func TestMonthlyRows(t *testing.T) {
	client, store := setup(t)
	rahim, karim := seedMonth(t, client, store)

	page := viewstate.NewPage[string, models.SalaryRow]("report", reporting.NewMonthly(client, zaptest.NewLogger(t)))
	if err := page.Load(context.Background(), "2025-01"); err != nil {
		t.Fatalf("load: %v", err)
	}

	rows := page.View().Rows
	if len(rows) != 2 || rows[0].Employee.ID != rahim || rows[1].Employee.ID != karim {
		t.Fatalf("rows out of employee order: %+v", rows)
	}
	r := rows[0].Report
	if r.PresentDays != 3 || r.TotalSalary != 1800 || r.Month != "2025-01" {
		t.Fatalf("unexpected report %+v", r)
	}
	if rows[1].Report.PresentDays != 0 || rows[1].Report.Payable != 0 {
		t.Fatalf("unexpected report %+v", rows[1].Report)
	}
}

func TestMonthlyRejectsBadMonth(t *testing.T) {
	client, store := setup(t)
	store.SeedEmployee("রহিম", 600)

	_, err := reporting.NewMonthly(client, nil).List(context.Background(), "January")
	if err == nil {
		t.Fatal("expected month parse error")
	}
	if n := len(store.Calls()); n != 0 {
		t.Fatalf("bad month issued %d requests", n)
	}
}

func TestMonthlyFailsWhenOneReportFails(t *testing.T) {
	client, store := setup(t)
	seedMonth(t, client, store)
	store.Fail("GET /salary/:id/:month", http.StatusInternalServerError)

	if _, err := reporting.NewMonthly(client, nil).List(context.Background(), "2025-01"); err == nil {
		t.Fatal("expected error")
	}
}

func TestAdvanceBreakdown(t *testing.T) {
	client, store := setup(t)
	rahim, _ := seedMonth(t, client, store)

	src := reporting.NewAdvances(client)
	entries, err := src.List(context.Background(), models.AdvanceFilter{EmployeeID: rahim, Month: "2025-01"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 || entries[0].Date != "2025-01-02" || entries[1].Date != "2025-01-06" {
		t.Fatalf("unexpected breakdown %+v", entries)
	}
	if got := reporting.MonthTotal(entries); got != 300.3 {
		t.Fatalf("MonthTotal = %v, want 300.3", got)
	}

	none, err := src.List(context.Background(), models.AdvanceFilter{Month: "2025-01"})
	if err != nil || none != nil {
		t.Fatalf("empty filter should read nothing, got %v %v", none, err)
	}
}

func TestExportMonthlyReportWritesHeaderOnce(t *testing.T) {
	client, store := setup(t)
	seedMonth(t, client, store)
	sheet := newMemSheet()
	svc := reporting.NewService(client, sheet, zaptest.NewLogger(t))

	for i := 0; i < 2; i++ {
		n, err := svc.ExportMonthlyReport(context.Background(), "2025-01")
		if err != nil {
			t.Fatalf("export: %v", err)
		}
		if n != 2 {
			t.Fatalf("expected two rows, got %d", n)
		}
	}

	rows := sheet.ranges["Salary!A:H"]
	if len(rows) != 5 {
		t.Fatalf("expected header plus four rows, got %d", len(rows))
	}
	if rows[0][0] != "Month" || rows[1][1] != "রহিম" || rows[1][2] != 3 || rows[1][4] != 1800.0 {
		t.Fatalf("unexpected rows %+v", rows[:2])
	}
}

func TestExportRates(t *testing.T) {
	client, store := setup(t)
	store.SeedRates("2025-01-05", models.RateEntry{CustomerName: "করিম", Proposal: models.BoilerPair{Big: 500, Small: 300}})
	sheet := newMemSheet()
	svc := reporting.NewService(client, sheet, nil)

	n, err := svc.ExportRates(context.Background(), "2025-01-05")
	if err != nil || n != 1 {
		t.Fatalf("export: %d %v", n, err)
	}
	rows := sheet.ranges["Rates!A:H"]
	if len(rows) != 2 || rows[1][1] != "করিম" || rows[1][2] != 500.0 {
		t.Fatalf("unexpected rows %+v", rows)
	}

	n, err = svc.ExportRates(context.Background(), "2031-01-01")
	if err != nil || n != 0 {
		t.Fatalf("empty day: %d %v", n, err)
	}
}

func TestExportDisabled(t *testing.T) {
	client, _ := setup(t)
	svc := reporting.NewService(client, nil, nil)
	if svc.ExportEnabled() {
		t.Fatal("export should be disabled without a sheet")
	}
	if _, err := svc.ExportMonthlyReport(context.Background(), "2025-01"); !errors.Is(err, reporting.ErrExportDisabled) {
		t.Fatalf("expected ErrExportDisabled, got %v", err)
	}
}

func TestRatesSummary(t *testing.T) {
	client, store := setup(t)
	store.SeedRates("2025-01-05", models.RateEntry{
		CustomerName: "করিম",
		Proposal:     models.BoilerPair{Big: 500, Small: 300},
		Actual:       models.BoilerPair{Big: 1250, Small: 0},
	})
	svc := reporting.NewService(client, nil, nil)

	text, err := svc.RatesSummary(context.Background(), "2025-01-05")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	for _, want := range []string{"২০২৫-০১-০৫", "করিম", "৳৫০০ / ৳৩০০", "৳১,২৫০ / ৳০"} {
		if !strings.Contains(text, want) {
			t.Fatalf("summary %q missing %q", text, want)
		}
	}

	empty, err := svc.RatesSummary(context.Background(), "2031-01-01")
	if err != nil || !strings.Contains(empty, "এখনও") {
		t.Fatalf("unexpected empty summary %q %v", empty, err)
	}
}

func TestPreviousMonth(t *testing.T) {
	loc, _ := time.LoadLocation("Asia/Dhaka")
	tests := map[time.Time]string{
		time.Date(2025, 3, 1, 6, 0, 0, 0, loc):   "2025-02",
		time.Date(2025, 1, 31, 23, 0, 0, 0, loc): "2024-12",
		time.Date(2024, 3, 31, 0, 0, 0, 0, loc):  "2024-02",
	}
	for in, want := range tests {
		if got := reporting.PreviousMonth(in); got != want {
			t.Errorf("PreviousMonth(%s) = %s, want %s", in, got, want)
		}
	}
}

func TestSumRows(t *testing.T) {
	rows := []models.SalaryRow{
		{Report: models.MonthlySalaryReport{TotalSalary: 1800, TotalAdvance: 100.1, Payable: 1699.9}},
		{Report: models.MonthlySalaryReport{TotalSalary: 900, TotalAdvance: 200.2, Payable: 699.8}},
	}
	got := reporting.SumRows(rows)
	want := reporting.Totals{Salary: 2700, Advance: 300.3, Payable: 2399.7}
	if got != want {
		t.Fatalf("SumRows = %+v, want %+v", got, want)
	}
	if zero := reporting.SumRows(nil); zero != (reporting.Totals{}) {
		t.Fatalf("empty rows should sum to zero, got %+v", zero)
	}
}
