// Package attendance binds the daily attendance and advance sheet to the
// generic page state.
package attendance

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mamadbah2/boilerdesk/internal/domain/models"
	"github.com/mamadbah2/boilerdesk/internal/viewstate"
)

// Store is the part of the record service the attendance page uses.
type Store interface {
	Employees(ctx context.Context) ([]models.Employee, error)
	AttendanceByDate(ctx context.Context, date string) ([]models.AttendanceMark, error)
	MarkAttendance(ctx context.Context, mark models.AttendanceMark) error
	AdvancesByDate(ctx context.Context, date string) ([]models.AdvanceEntry, error)
	CreateAdvance(ctx context.Context, entry models.AdvanceEntry) error
	PatchAdvance(ctx context.Context, entry models.AdvanceEntry) error
}

const (
	GroupAdvance = "advance"
	FieldAmount  = "amount"
)

// ErrInvalidStatus is returned for marks other than present or absent.
var ErrInvalidStatus = errors.New("invalid attendance status")

// Daily joins employees with their attendance and advance for one date.
type Daily struct {
	store  Store
	logger *zap.Logger
}

// NewDaily creates the attendance binding.
func NewDaily(store Store, logger *zap.Logger) *Daily {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Daily{store: store, logger: logger}
}

// List reads employees, marks and advances of date concurrently and merges them
// in employee order.
func (d *Daily) List(ctx context.Context, date string) ([]models.DailyRow, error) {
	var (
		employees []models.Employee
		marks     []models.AttendanceMark
		advances  []models.AdvanceEntry
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		employees, err = d.store.Employees(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		marks, err = d.store.AttendanceByDate(gctx, date)
		return err
	})
	g.Go(func() error {
		var err error
		advances, err = d.store.AdvancesByDate(gctx, date)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	status := make(map[string]models.AttendanceStatus, len(marks))
	for _, m := range marks {
		status[m.EmployeeID] = m.Status
	}
	advance := make(map[string]float64, len(advances))
	for _, a := range advances {
		advance[a.EmployeeID] = a.Amount
	}

	rows := make([]models.DailyRow, 0, len(employees))
	for _, e := range employees {
		amount, has := advance[e.ID]
		rows = append(rows, models.DailyRow{
			EmployeeID:  e.ID,
			Name:        e.Name,
			DailySalary: e.DailySalary,
			Status:      status[e.ID],
			Advance:     amount,
			HasAdvance:  has,
		})
	}
	return rows, nil
}

func (d *Daily) Key(row models.DailyRow) string { return row.EmployeeID }

func (d *Daily) Groups() []viewstate.Group {
	return []viewstate.Group{{
		Name:  GroupAdvance,
		Label: "অগ্রিম",
		Fields: []viewstate.Field{
			{Name: FieldAmount, Label: "টাকা", Kind: viewstate.KindNumber, Required: true},
		},
	}}
}

// Draft opens the row's advance. Whether Save creates or updates follows from
// the advance seen in the last read of the date.
func (d *Daily) Draft(row models.DailyRow, _ string) (map[string]string, bool) {
	if !row.HasAdvance {
		return map[string]string{FieldAmount: ""}, false
	}
	return map[string]string{FieldAmount: viewstate.FormatNumber(row.Advance)}, true
}

func (d *Daily) Save(ctx context.Context, date string, draft viewstate.Draft, values viewstate.Values) error {
	entry := models.AdvanceEntry{EmployeeID: draft.Key, Date: date, Amount: values.Number(FieldAmount)}
	if draft.Existing {
		d.logger.Info("updating advance", zap.String("employee", entry.EmployeeID), zap.String("date", date))
		return d.store.PatchAdvance(ctx, entry)
	}
	d.logger.Info("creating advance", zap.String("employee", entry.EmployeeID), zap.String("date", date))
	return d.store.CreateAdvance(ctx, entry)
}

// Mark returns the one-shot action that records status for the employee on the
// page's date.
func (d *Daily) Mark(employeeID string, status models.AttendanceStatus) (viewstate.Action[string], error) {
	if !status.Valid() {
		return viewstate.Action[string]{}, fmt.Errorf("attendance status %q: %w", status, ErrInvalidStatus)
	}
	if employeeID == "" {
		return viewstate.Action[string]{}, fmt.Errorf("employee: %w", viewstate.ErrRowNotFound)
	}

	title := "উপস্থিতি সংরক্ষিত"
	if status == models.StatusAbsent {
		title = "অনুপস্থিতি সংরক্ষিত"
	}
	return viewstate.Action[string]{
		Success: title,
		Failure: "উপস্থিতি সংরক্ষণ ব্যর্থ",
		Message: employeeID,
		Run: func(ctx context.Context, date string) error {
			return d.store.MarkAttendance(ctx, models.AttendanceMark{EmployeeID: employeeID, Date: date, Status: status})
		},
	}, nil
}
