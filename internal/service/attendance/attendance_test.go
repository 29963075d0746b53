package attendance_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/mamadbah2/boilerdesk/internal/config"
	"github.com/mamadbah2/boilerdesk/internal/domain/models"
	"github.com/mamadbah2/boilerdesk/internal/service/attendance"
	"github.com/mamadbah2/boilerdesk/internal/testutil/fakestore"
	"github.com/mamadbah2/boilerdesk/internal/viewstate"
	"github.com/mamadbah2/boilerdesk/pkg/clients/recordstore"
)

const day = "2025-01-05"

func setup(t *testing.T) (*viewstate.Page[string, models.DailyRow], *attendance.Daily, *fakestore.Store) {
	t.Helper()
	store := fakestore.New()
	t.Cleanup(store.Close)
	client := recordstore.NewClient(config.RecordStoreConfig{BaseURL: store.URL(), Timeout: 5 * time.Second}, zaptest.NewLogger(t))
	daily := attendance.NewDaily(client, zaptest.NewLogger(t))
	return viewstate.NewPage[string, models.DailyRow]("attendance", daily), daily, store
}

func rowOf(t *testing.T, page *viewstate.Page[string, models.DailyRow], id string) models.DailyRow {
	t.Helper()
	for _, row := range page.View().Rows {
		if row.EmployeeID == id {
			return row
		}
	}
	t.Fatalf("employee %s not listed", id)
	return models.DailyRow{}
}

func TestDailyRowsMergeMarksAndAdvances(t *testing.T) {
	page, _, store := setup(t)
	rahim := store.SeedEmployee("রহিম", 600)
	karim := store.SeedEmployee("করিম", 550)
	store.SeedAdvance(karim, day, 200)

	if err := page.Load(context.Background(), day); err != nil {
		t.Fatalf("load: %v", err)
	}

	if row := rowOf(t, page, rahim); row.HasAdvance || row.Status != "" {
		t.Fatalf("unexpected row %+v", row)
	}
	if row := rowOf(t, page, karim); !row.HasAdvance || row.Advance != 200 || row.DailySalary != 550 {
		t.Fatalf("unexpected row %+v", row)
	}
}

func TestMarkPresentThenAbsent(t *testing.T) {
	page, daily, store := setup(t)
	id := store.SeedEmployee("রহিম", 600)
	ctx := context.Background()
	if err := page.Load(ctx, day); err != nil {
		t.Fatalf("load: %v", err)
	}

	for _, status := range []models.AttendanceStatus{models.StatusPresent, models.StatusAbsent} {
		action, err := daily.Mark(id, status)
		if err != nil {
			t.Fatalf("mark %s: %v", status, err)
		}
		if err := page.Act(ctx, action); err != nil {
			t.Fatalf("act %s: %v", status, err)
		}
	}

	if row := rowOf(t, page, id); row.Status != models.StatusAbsent {
		t.Fatalf("expected last mark to win, got %q", row.Status)
	}
	if n := store.CountCalls(http.MethodPost, "/attendance"); n != 2 {
		t.Fatalf("expected two marks, got %d", n)
	}
}

func TestMarkRejectsUnknownStatus(t *testing.T) {
	_, daily, _ := setup(t)
	if _, err := daily.Mark("E1", "late"); !errors.Is(err, attendance.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestAdvanceCreateThenUpdate(t *testing.T) {
	page, _, store := setup(t)
	id := store.SeedEmployee("রহিম", 600)
	ctx := context.Background()
	if err := page.Load(ctx, day); err != nil {
		t.Fatalf("load: %v", err)
	}

	draft, err := page.Open(id, attendance.GroupAdvance)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if draft.Existing {
		t.Fatal("no advance was read, draft should create")
	}
	if err := page.Submit(ctx, map[string]string{attendance.FieldAmount: "৩০০"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if store.CountCalls(http.MethodPost, "/advance") != 1 || store.CountCalls(http.MethodPatch, "/advance") != 0 {
		t.Fatalf("expected create path, calls %+v", store.Calls())
	}

	draft, err = page.Open(id, attendance.GroupAdvance)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if !draft.Existing || draft.Value(attendance.FieldAmount) != "300" {
		t.Fatalf("draft should update the read advance: %+v", draft)
	}
	if err := page.Submit(ctx, map[string]string{attendance.FieldAmount: "350"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if store.CountCalls(http.MethodPatch, "/advance") != 1 {
		t.Fatalf("expected update path, calls %+v", store.Calls())
	}
	if row := rowOf(t, page, id); row.Advance != 350 {
		t.Fatalf("update not re-read: %+v", row)
	}
}

func TestLoadFailsWhenAnyReadFails(t *testing.T) {
	page, _, store := setup(t)
	store.SeedEmployee("রহিম", 600)
	store.Fail("GET /advance/date/:date", http.StatusBadGateway)

	if err := page.Load(context.Background(), day); err == nil {
		t.Fatal("expected load error")
	}
	if v := page.View(); v.Status != viewstate.StatusError || len(v.Rows) != 0 {
		t.Fatalf("unexpected view %+v", v)
	}
}
