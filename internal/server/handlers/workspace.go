package handlers

import (
	"github.com/mamadbah2/boilerdesk/internal/domain/models"
	"github.com/mamadbah2/boilerdesk/internal/service/attendance"
	"github.com/mamadbah2/boilerdesk/internal/service/rates"
	"github.com/mamadbah2/boilerdesk/internal/service/reporting"
	"github.com/mamadbah2/boilerdesk/internal/service/staff"
	"github.com/mamadbah2/boilerdesk/internal/viewstate"
)

// Bindings are the stateless sources every workspace reads through.
type Bindings struct {
	Sheet      *rates.Sheet
	Prices     *rates.Prices
	Proposals  *rates.Proposals
	Customers  *staff.Customers
	Employees  *staff.Employees
	Attendance *attendance.Daily
	Monthly    *reporting.Monthly
	Advances   *reporting.Advances
}

// Workspace is the page state of one browser session. All pages share one
// notification sink, so the latest outcome anywhere is the one shown.
type Workspace struct {
	Sink       *viewstate.Sink
	Dashboard  *viewstate.Page[string, models.RateEntry]
	Prices     *viewstate.Page[string, models.RateEntry]
	Proposals  *viewstate.Page[string, models.Customer]
	Customers  *viewstate.Page[viewstate.NoFilter, models.Customer]
	Employees  *viewstate.Page[viewstate.NoFilter, models.Employee]
	Attendance *viewstate.Page[string, models.DailyRow]
	Report     *viewstate.Page[string, models.SalaryRow]
	Advances   *viewstate.Page[models.AdvanceFilter, models.AdvanceEntry]
}

var (
	priceMessages = viewstate.Messages{
		Saved:        "দাম সংরক্ষিত হয়েছে",
		SaveFailed:   "দাম সংরক্ষণ ব্যর্থ",
		Deleted:      "দাম মুছে ফেলা হয়েছে",
		DeleteFailed: "দাম মুছতে ব্যর্থ",
		LoadFailed:   "দাম লোড করা যায়নি",
		Invalid:      "সব ঘর পূরণ করুন",
	}
	staffMessages = viewstate.Messages{
		Saved:        "তথ্য সংরক্ষিত হয়েছে",
		SaveFailed:   "সংরক্ষণ ব্যর্থ",
		Deleted:      "মুছে ফেলা হয়েছে",
		DeleteFailed: "মুছতে ব্যর্থ",
		LoadFailed:   "তথ্য লোড করা যায়নি",
		Invalid:      "সব ঘর পূরণ করুন",
	}
)

// NewWorkspaceFactory returns the constructor used by the session manager.
// opts apply to every page; the shared sink is added last.
func NewWorkspaceFactory(b Bindings, opts ...viewstate.Option) func() *Workspace {
	return func() *Workspace {
		sink := viewstate.NewSink()
		with := func(extra ...viewstate.Option) []viewstate.Option {
			all := append([]viewstate.Option{}, opts...)
			all = append(all, extra...)
			return append(all, viewstate.WithSink(sink))
		}

		return &Workspace{
			Sink:       sink,
			Dashboard:  viewstate.NewPage[string, models.RateEntry]("home", b.Sheet, with(viewstate.WithMessages(priceMessages))...),
			Prices:     viewstate.NewPage[string, models.RateEntry]("updateSellingRate", b.Prices, with(viewstate.WithMessages(priceMessages))...),
			Proposals:  viewstate.NewPage[string, models.Customer]("addPrice", b.Proposals, with(viewstate.WithMessages(priceMessages))...),
			Customers:  viewstate.NewPage[viewstate.NoFilter, models.Customer]("addCustomer", b.Customers, with(viewstate.WithMessages(staffMessages))...),
			Employees:  viewstate.NewPage[viewstate.NoFilter, models.Employee]("employees", b.Employees, with(viewstate.WithMessages(staffMessages))...),
			Attendance: viewstate.NewPage[string, models.DailyRow]("attendance", b.Attendance, with(viewstate.WithMessages(staffMessages))...),
			Report:     viewstate.NewPage[string, models.SalaryRow]("report", b.Monthly, with(viewstate.WithMessages(staffMessages))...),
			Advances:   viewstate.NewPage[models.AdvanceFilter, models.AdvanceEntry]("report", b.Advances, with(viewstate.WithMessages(staffMessages))...),
		}
	}
}
