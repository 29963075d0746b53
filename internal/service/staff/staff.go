// Package staff binds employees and customers to the generic page state.
package staff

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/mamadbah2/boilerdesk/internal/domain/models"
	"github.com/mamadbah2/boilerdesk/internal/viewstate"
)

// Store is the part of the record service the staff pages use.
type Store interface {
	Employees(ctx context.Context) ([]models.Employee, error)
	CreateEmployee(ctx context.Context, name string, dailySalary float64) error
	PatchEmployee(ctx context.Context, id, name string, dailySalary float64) error
	DeleteEmployee(ctx context.Context, id string) error
	Customers(ctx context.Context) ([]models.Customer, error)
	CreateCustomer(ctx context.Context, name string) error
}

const (
	GroupProfile  = "profile"
	GroupCustomer = "customer"

	FieldName        = "name"
	FieldDailySalary = "dailySalary"
)

// ErrCustomerRename is returned when an existing customer draft is submitted;
// the record service only creates customers.
var ErrCustomerRename = errors.New("customers cannot be renamed")

// Employees lists, creates, edits and deletes employees.
type Employees struct {
	store  Store
	logger *zap.Logger
}

// NewEmployees creates the employee binding.
func NewEmployees(store Store, logger *zap.Logger) *Employees {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Employees{store: store, logger: logger}
}

func (e *Employees) List(ctx context.Context, _ viewstate.NoFilter) ([]models.Employee, error) {
	return e.store.Employees(ctx)
}

func (e *Employees) Key(row models.Employee) string { return row.ID }

func (e *Employees) Groups() []viewstate.Group {
	return []viewstate.Group{{
		Name:  GroupProfile,
		Label: "কর্মচারী",
		Fields: []viewstate.Field{
			{Name: FieldName, Label: "নাম", Kind: viewstate.KindText, Required: true},
			{Name: FieldDailySalary, Label: "দৈনিক বেতন", Kind: viewstate.KindNumber, Required: true},
		},
	}}
}

func (e *Employees) Draft(row models.Employee, _ string) (map[string]string, bool) {
	return map[string]string{
		FieldName:        row.Name,
		FieldDailySalary: viewstate.FormatNumber(row.DailySalary),
	}, true
}

// Save creates or patches the employee. A negative salary is rejected before
// any request.
func (e *Employees) Save(ctx context.Context, _ viewstate.NoFilter, draft viewstate.Draft, values viewstate.Values) error {
	name, salary := values.Text(FieldName), values.Number(FieldDailySalary)
	if salary < 0 {
		return &viewstate.ValidationError{Invalid: []string{"দৈনিক বেতন"}}
	}

	if draft.Existing {
		e.logger.Info("updating employee", zap.String("id", draft.Key))
		return e.store.PatchEmployee(ctx, draft.Key, name, salary)
	}
	e.logger.Info("creating employee", zap.String("name", name))
	return e.store.CreateEmployee(ctx, name, salary)
}

func (e *Employees) Delete(ctx context.Context, _ viewstate.NoFilter, id string) error {
	e.logger.Info("deleting employee", zap.String("id", id))
	return e.store.DeleteEmployee(ctx, id)
}

// Customers lists and creates customers.
type Customers struct {
	store Store
}

// NewCustomers creates the customer binding.
func NewCustomers(store Store) *Customers {
	return &Customers{store: store}
}

func (c *Customers) List(ctx context.Context, _ viewstate.NoFilter) ([]models.Customer, error) {
	return c.store.Customers(ctx)
}

func (c *Customers) Key(row models.Customer) string { return row.Name }

func (c *Customers) Groups() []viewstate.Group {
	return []viewstate.Group{{
		Name:  GroupCustomer,
		Label: "গ্রাহক",
		Fields: []viewstate.Field{
			{Name: FieldName, Label: "নাম", Kind: viewstate.KindText, Required: true},
		},
	}}
}

func (c *Customers) Draft(row models.Customer, _ string) (map[string]string, bool) {
	return map[string]string{FieldName: row.Name}, true
}

func (c *Customers) Save(ctx context.Context, _ viewstate.NoFilter, draft viewstate.Draft, values viewstate.Values) error {
	if draft.Existing {
		return ErrCustomerRename
	}
	return c.store.CreateCustomer(ctx, values.Text(FieldName))
}
