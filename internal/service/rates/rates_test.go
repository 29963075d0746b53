package rates_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/mamadbah2/boilerdesk/internal/config"
	"github.com/mamadbah2/boilerdesk/internal/domain/models"
	"github.com/mamadbah2/boilerdesk/internal/service/rates"
	"github.com/mamadbah2/boilerdesk/internal/testutil/fakestore"
	"github.com/mamadbah2/boilerdesk/internal/viewstate"
	"github.com/mamadbah2/boilerdesk/pkg/clients/recordstore"
)

const day = "2025-01-05"

func setup(t *testing.T) (*recordstore.Client, *fakestore.Store) {
	t.Helper()
	store := fakestore.New()
	t.Cleanup(store.Close)
	client := recordstore.NewClient(config.RecordStoreConfig{BaseURL: store.URL(), Timeout: 5 * time.Second}, zaptest.NewLogger(t))
	return client, store
}

func TestProposalEditScenario(t *testing.T) {
	client, store := setup(t)
	store.SeedRates(day, models.RateEntry{
		CustomerName: "করিম",
		Actual:       models.BoilerPair{Big: 480, Small: 280},
		Piece:        models.BoilerPair{Big: 12, Small: 7},
	})

	page := viewstate.NewPage[string, models.RateEntry]("prices", rates.NewPrices(client, zaptest.NewLogger(t)))
	ctx := context.Background()
	if err := page.Load(ctx, day); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := page.Open("করিম", string(models.RateGroupProposal)); err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := page.Submit(ctx, map[string]string{rates.FieldBig: "500", rates.FieldSmall: "300"}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if n := store.CountCalls(http.MethodPatch, "/sellingRate"); n != 1 {
		t.Fatalf("expected one patch, got %d", n)
	}

	v := page.View()
	if len(v.Rows) != 1 {
		t.Fatalf("unexpected rows %+v", v.Rows)
	}
	row := v.Rows[0]
	if row.Proposal != (models.BoilerPair{Big: 500, Small: 300}) {
		t.Fatalf("proposal not re-read: %+v", row.Proposal)
	}
	if row.Actual != (models.BoilerPair{Big: 480, Small: 280}) || row.Piece != (models.BoilerPair{Big: 12, Small: 7}) {
		t.Fatalf("untouched groups changed: %+v", row)
	}
}

func TestMissingPriceIssuesNoRequest(t *testing.T) {
	client, store := setup(t)
	store.SeedRates(day, models.RateEntry{CustomerName: "করিম"})

	page := viewstate.NewPage[string, models.RateEntry]("prices", rates.NewPrices(client, nil))
	ctx := context.Background()
	if err := page.Load(ctx, day); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := page.Open("করিম", string(models.RateGroupPiece)); err != nil {
		t.Fatalf("open: %v", err)
	}
	store.ResetCalls()

	err := page.Submit(ctx, map[string]string{rates.FieldBig: "10", rates.FieldSmall: ""})
	var verr *viewstate.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if calls := store.Calls(); len(calls) != 0 {
		t.Fatalf("expected no requests, got %+v", calls)
	}
}

func TestDeletePrice(t *testing.T) {
	client, store := setup(t)
	store.SeedRates(day,
		models.RateEntry{CustomerName: "করিম"},
		models.RateEntry{CustomerName: "রহিম"},
	)

	page := viewstate.NewPage[string, models.RateEntry]("prices", rates.NewPrices(client, nil))
	ctx := context.Background()
	if err := page.Load(ctx, day); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := page.Delete(ctx, "করিম", false); !errors.Is(err, viewstate.ErrNotConfirmed) {
		t.Fatalf("expected ErrNotConfirmed, got %v", err)
	}
	if n := store.CountCalls(http.MethodDelete, "/sellingRate/customer"); n != 0 {
		t.Fatalf("unconfirmed delete sent %d requests", n)
	}

	if err := page.Delete(ctx, "করিম", true); err != nil {
		t.Fatalf("delete: %v", err)
	}
	for _, row := range page.View().Rows {
		if row.CustomerName == "করিম" {
			t.Fatal("deleted entry still listed after re-read")
		}
	}
}

func TestEmptyDayIsEmptyState(t *testing.T) {
	client, _ := setup(t)
	page := viewstate.NewPage[string, models.RateEntry]("dashboard", rates.NewSheet(client, nil))
	if err := page.Load(context.Background(), "2031-02-03"); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := page.View().Status; got != viewstate.StatusEmpty {
		t.Fatalf("expected empty status, got %s", got)
	}
}

func TestProposalsForSubset(t *testing.T) {
	client, store := setup(t)
	store.SeedCustomers("করিম", "রহিম", "জামাল")

	page := viewstate.NewPage[string, models.Customer]("addPrice", rates.NewProposals(client, nil))
	ctx := context.Background()
	if err := page.Load(ctx, day); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := page.OpenNew(string(models.RateGroupProposal)); err != nil {
		t.Fatalf("open new: %v", err)
	}
	err := page.Submit(ctx, map[string]string{
		rates.FieldBig:       "৫০০",
		rates.FieldSmall:     "৩০০",
		rates.FieldCustomers: rates.JoinCustomers([]string{"করিম", "জামাল", "করিম"}),
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	record, err := client.RatesByDate(ctx, day)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(record.Entries) != 2 {
		t.Fatalf("expected two entries, got %+v", record.Entries)
	}
	for _, e := range record.Entries {
		if e.Proposal != (models.BoilerPair{Big: 500, Small: 300}) || e.Actual != (models.BoilerPair{}) || e.Piece != (models.BoilerPair{}) {
			t.Fatalf("unexpected entry %+v", e)
		}
	}
}

func TestProposalsForAllCustomers(t *testing.T) {
	client, store := setup(t)
	store.SeedCustomers("করিম", "রহিম")

	page := viewstate.NewPage[string, models.Customer]("addPrice", rates.NewProposals(client, nil))
	ctx := context.Background()
	if err := page.Load(ctx, day); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := page.OpenNew(string(models.RateGroupProposal)); err != nil {
		t.Fatalf("open new: %v", err)
	}
	if err := page.Submit(ctx, map[string]string{rates.FieldBig: "1", rates.FieldSmall: "2"}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	record, _ := client.RatesByDate(ctx, day)
	if len(record.Entries) != 2 {
		t.Fatalf("expected every customer, got %+v", record.Entries)
	}
}

func TestProposalsWithoutCustomers(t *testing.T) {
	client, store := setup(t)

	page := viewstate.NewPage[string, models.Customer]("addPrice", rates.NewProposals(client, nil))
	ctx := context.Background()
	if err := page.Load(ctx, day); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := page.OpenNew(string(models.RateGroupProposal)); err != nil {
		t.Fatalf("open new: %v", err)
	}
	err := page.Submit(ctx, map[string]string{rates.FieldBig: "1", rates.FieldSmall: "2"})
	if !errors.Is(err, rates.ErrNoCustomers) {
		t.Fatalf("expected ErrNoCustomers, got %v", err)
	}
	if n := store.CountCalls(http.MethodPost, "/sellingRate"); n != 0 {
		t.Fatalf("empty record was posted %d times", n)
	}
	if page.Phase() != viewstate.PhaseEditing {
		t.Fatalf("draft should stay open, phase %s", page.Phase())
	}
}

func TestSplitCustomers(t *testing.T) {
	got := rates.SplitCustomers(" করিম \n\nরহিম\r\nকরিম\n")
	if len(got) != 2 || got[0] != "করিম" || got[1] != "রহিম" {
		t.Fatalf("unexpected split %q", got)
	}
}
