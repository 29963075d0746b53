package recordstore_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/mamadbah2/boilerdesk/internal/config"
	"github.com/mamadbah2/boilerdesk/internal/domain/models"
	"github.com/mamadbah2/boilerdesk/internal/testutil/fakestore"
	"github.com/mamadbah2/boilerdesk/pkg/clients/recordstore"
)

func newClient(t *testing.T) (*recordstore.Client, *fakestore.Store) {
	t.Helper()
	store := fakestore.New()
	t.Cleanup(store.Close)

	client := recordstore.NewClient(config.RecordStoreConfig{
		BaseURL: store.URL() + "/",
		Timeout: 5 * time.Second,
	}, zaptest.NewLogger(t))
	return client, store
}

func TestRatesCreateAndRead(t *testing.T) {
	client, _ := newClient(t)
	ctx := context.Background()

	entry := models.RateEntry{
		CustomerName: "করিম",
		Proposal:     models.BoilerPair{Big: 500, Small: 300},
	}
	if err := client.CreateRates(ctx, "2025-01-05", []models.RateEntry{entry}); err != nil {
		t.Fatalf("create: %v", err)
	}

	record, err := client.RatesByDate(ctx, "2025-01-05")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(record.Entries) != 1 {
		t.Fatalf("expected one entry, got %+v", record.Entries)
	}
	got := record.Entries[0]
	if got.CustomerName != "করিম" || got.Proposal.Big != 500 || got.Proposal.Small != 300 {
		t.Fatalf("unexpected entry %+v", got)
	}
}

func TestRatesByDateMissingRecordIsEmpty(t *testing.T) {
	client, _ := newClient(t)

	record, err := client.RatesByDate(context.Background(), "2030-01-01")
	if err != nil {
		t.Fatalf("expected empty record, got error %v", err)
	}
	if record.Date != "2030-01-01" || len(record.Entries) != 0 {
		t.Fatalf("unexpected record %+v", record)
	}
}

func TestPatchRateLeavesOtherGroups(t *testing.T) {
	client, store := newClient(t)
	ctx := context.Background()
	store.SeedRates("2025-01-05", models.RateEntry{
		CustomerName: "করিম",
		Proposal:     models.BoilerPair{Big: 500, Small: 300},
		Actual:       models.BoilerPair{Big: 480, Small: 290},
		Piece:        models.BoilerPair{Big: 10, Small: 4},
	})

	err := client.PatchRate(ctx, "2025-01-05", "করিম", models.RateGroupActual, models.BoilerPair{Big: 510, Small: 305})
	if err != nil {
		t.Fatalf("patch: %v", err)
	}

	record, err := client.RatesByDate(ctx, "2025-01-05")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	got := record.Entries[0]
	if got.Actual != (models.BoilerPair{Big: 510, Small: 305}) {
		t.Fatalf("actual not updated: %+v", got.Actual)
	}
	if got.Proposal != (models.BoilerPair{Big: 500, Small: 300}) || got.Piece != (models.BoilerPair{Big: 10, Small: 4}) {
		t.Fatalf("other groups changed: %+v", got)
	}
}

func TestDeleteRate(t *testing.T) {
	client, store := newClient(t)
	ctx := context.Background()
	store.SeedRates("2025-01-05",
		models.RateEntry{CustomerName: "করিম"},
		models.RateEntry{CustomerName: "রহিম"},
	)

	if err := client.DeleteRate(ctx, "2025-01-05", "করিম"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	record, err := client.RatesByDate(ctx, "2025-01-05")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(record.Entries) != 1 || record.Entries[0].CustomerName != "রহিম" {
		t.Fatalf("deleted row still present: %+v", record.Entries)
	}

	err = client.DeleteRate(ctx, "2025-01-05", "করিম")
	if !errors.Is(err, recordstore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAPIErrorCarriesStatusAndMessage(t *testing.T) {
	client, store := newClient(t)
	store.Fail("GET /employees", http.StatusServiceUnavailable)

	_, err := client.Employees(context.Background())
	var apiErr *recordstore.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusServiceUnavailable || apiErr.Message != "injected failure" {
		t.Fatalf("unexpected api error %+v", apiErr)
	}
	if errors.Is(err, recordstore.ErrNotFound) {
		t.Fatal("503 must not match ErrNotFound")
	}
	if n := store.CountCalls(http.MethodGet, "/employees"); n != 1 {
		t.Fatalf("expected exactly one request without retries, got %d", n)
	}
}

func TestAttendanceLastMarkWins(t *testing.T) {
	client, store := newClient(t)
	ctx := context.Background()
	id := store.SeedEmployee("Rahim", 600)

	for _, status := range []models.AttendanceStatus{models.StatusPresent, models.StatusAbsent} {
		mark := models.AttendanceMark{EmployeeID: id, Date: "2025-01-05", Status: status}
		if err := client.MarkAttendance(ctx, mark); err != nil {
			t.Fatalf("mark %s: %v", status, err)
		}
	}

	marks, err := client.AttendanceByDate(ctx, "2025-01-05")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(marks) != 1 || marks[0].Status != models.StatusAbsent || marks[0].Date != "2025-01-05" {
		t.Fatalf("unexpected marks %+v", marks)
	}
}

func TestEmployeeLifecycle(t *testing.T) {
	client, _ := newClient(t)
	ctx := context.Background()

	if err := client.CreateEmployee(ctx, "Rahim", 600); err != nil {
		t.Fatalf("create: %v", err)
	}
	employees, err := client.Employees(ctx)
	if err != nil || len(employees) != 1 {
		t.Fatalf("list: %v %+v", err, employees)
	}
	id := employees[0].ID

	if err := client.PatchEmployee(ctx, id, "Rahim Uddin", 650); err != nil {
		t.Fatalf("patch: %v", err)
	}
	employees, _ = client.Employees(ctx)
	if employees[0].Name != "Rahim Uddin" || employees[0].DailySalary != 650 {
		t.Fatalf("patch not applied: %+v", employees[0])
	}

	if err := client.DeleteEmployee(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	employees, _ = client.Employees(ctx)
	if len(employees) != 0 {
		t.Fatalf("employee still listed: %+v", employees)
	}
}

func TestAdvancesAndSalary(t *testing.T) {
	client, store := newClient(t)
	ctx := context.Background()
	id := store.SeedEmployee("Rahim", 600)

	if err := client.CreateAdvance(ctx, models.AdvanceEntry{EmployeeID: id, Date: "2025-01-05", Amount: 200}); err != nil {
		t.Fatalf("create advance: %v", err)
	}
	if err := client.PatchAdvance(ctx, models.AdvanceEntry{EmployeeID: id, Date: "2025-01-05", Amount: 250}); err != nil {
		t.Fatalf("patch advance: %v", err)
	}
	if err := client.MarkAttendance(ctx, models.AttendanceMark{EmployeeID: id, Date: "2025-01-05", Status: models.StatusPresent}); err != nil {
		t.Fatalf("mark: %v", err)
	}

	byMonth, err := client.AdvancesByMonth(ctx, id, "2025-01")
	if err != nil {
		t.Fatalf("advances by month: %v", err)
	}
	if len(byMonth) != 1 || byMonth[0].EmployeeID != id || byMonth[0].Amount != 250 {
		t.Fatalf("unexpected advances %+v", byMonth)
	}

	report, err := client.SalaryReport(ctx, id, "2025-01")
	if err != nil {
		t.Fatalf("salary: %v", err)
	}
	if report.PresentDays != 1 || report.TotalSalary != 600 || report.Payable != 350 || report.Month != "2025-01" {
		t.Fatalf("unexpected report %+v", report)
	}
}
