package handlers

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/boilerdesk/internal/domain/models"
	"github.com/mamadbah2/boilerdesk/internal/service/reporting"
	"github.com/mamadbah2/boilerdesk/internal/viewstate"
	"github.com/mamadbah2/boilerdesk/pkg/bangla"
)

func reportURL(month, employee string) string {
	return withQuery("/report", "month", month, "employee", employee)
}

// Report shows the monthly salary table and, for one employee, the date-wise
// advance breakdown.
func (h *PageHandler) Report(c *gin.Context) {
	ws := h.workspace(c)
	ctx := c.Request.Context()
	month := h.monthParam(ws, "report", c.Query("month"))
	employee := c.Query("employee")

	err := ws.Report.Load(ctx, month)
	report := ws.Report.View()

	if aerr := ws.Advances.Load(ctx, models.AdvanceFilter{EmployeeID: employee, Month: month}); err == nil {
		err = aerr
	}
	advances := ws.Advances.View()

	var name string
	for _, r := range report.Rows {
		if r.Employee.ID == employee {
			name = r.Employee.Name
		}
	}

	h.render(c, ws, statusFor(err), "report", gin.H{
		"Title":        "মাসিক বেতন",
		"Month":        month,
		"Employee":     employee,
		"EmployeeName": name,
		"View":         report,
		"Totals":       reporting.SumRows(report.Rows),
		"Advances":     advances,
		"AdvanceTotal": reporting.MonthTotal(advances.Rows),
		"CanExport":    h.reports.ExportEnabled(),
		"Today":        h.today(),
		"Back":         reportURL(month, employee),
	})
}

// Export appends the month's salary report or a day's prices to Google Sheets.
func (h *PageHandler) Export(c *gin.Context) {
	ws := h.workspace(c)
	ctx := c.Request.Context()
	month := h.monthParam(ws, "report", c.PostForm("month"))

	var (
		rows  int
		err   error
		label string
	)
	switch kind := c.PostForm("kind"); kind {
	case "rates":
		date := h.dateParam(ws, "report", c.PostForm("date"))
		label = bangla.Digits(date) + " এর দাম"
		rows, err = h.reports.ExportRates(ctx, date)
	default:
		label = bangla.Digits(month) + " এর বেতন"
		rows, err = h.reports.ExportMonthlyReport(ctx, month)
	}

	level, title := viewstate.LevelSuccess, "শিটে পাঠানো হয়েছে"
	message := fmt.Sprintf("%s: %s সারি", label, bangla.Digits(strconv.Itoa(rows)))
	if err != nil {
		level, title, message = viewstate.LevelError, "শিটে পাঠানো যায়নি", err.Error()
		if errors.Is(err, reporting.ErrExportDisabled) {
			title = "শিট সংযোগ নেই"
		}
		h.logger.Warn("report export failed", zap.String("month", month), zap.Error(err))
	}
	h.notify(ws, "report", level, title, message)
	if n, ok := ws.Sink.Peek(); ok {
		h.activity.Record(ctx, n)
	}

	h.seeOther(c, reportURL(month, c.PostForm("employee")))
}
