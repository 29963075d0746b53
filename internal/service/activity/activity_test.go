package activity

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/mamadbah2/boilerdesk/internal/domain/models"
	"github.com/mamadbah2/boilerdesk/internal/viewstate"
)

type memRepo struct {
	saved []models.Activity
	err   error
}

func (m *memRepo) SaveActivity(_ context.Context, a models.Activity) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, a)
	return nil
}

func (m *memRepo) RecentActivities(_ context.Context, limit int64) ([]models.Activity, error) {
	out := make([]models.Activity, 0, limit)
	for i := len(m.saved) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		out = append(out, m.saved[i])
	}
	return out, nil
}

func TestRecordAndRecent(t *testing.T) {
	repo := &memRepo{}
	svc := NewService(repo, zaptest.NewLogger(t))
	at := time.Date(2025, 1, 5, 16, 0, 0, 0, time.FixedZone("BST", 6*3600))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc.Record(ctx, viewstate.Notice{Page: "prices", Level: viewstate.LevelSuccess, Title: "Saved", At: at})
	svc.Record(context.Background(), viewstate.Notice{Page: "employees", Level: viewstate.LevelError, Title: "Delete failed"})

	if len(repo.saved) != 2 {
		t.Fatalf("expected two activities even after request cancellation, got %d", len(repo.saved))
	}
	first := repo.saved[0]
	if first.ID == "" || first.Level != "success" || !first.At.Equal(at) || first.At.Location() != time.UTC {
		t.Fatalf("unexpected activity %+v", first)
	}

	recent, err := svc.Recent(context.Background(), 1)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 1 || recent[0].Page != "employees" {
		t.Fatalf("unexpected recent %+v", recent)
	}
}

func TestRecordFailureIsSwallowed(t *testing.T) {
	svc := NewService(&memRepo{err: errors.New("down")}, zaptest.NewLogger(t))
	svc.Record(context.Background(), viewstate.Notice{Page: "prices"})
}

func TestDisabled(t *testing.T) {
	svc := NewService(nil, nil)
	if svc.Enabled() {
		t.Fatal("service without repository should be disabled")
	}
	svc.Record(context.Background(), viewstate.Notice{})
	recent, err := svc.Recent(context.Background(), 5)
	if err != nil || recent != nil {
		t.Fatalf("unexpected %v %v", recent, err)
	}
}
