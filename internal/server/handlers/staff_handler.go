package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/boilerdesk/internal/domain/models"
	"github.com/mamadbah2/boilerdesk/internal/service/attendance"
	"github.com/mamadbah2/boilerdesk/internal/service/staff"
	"github.com/mamadbah2/boilerdesk/internal/viewstate"
)

func (h *PageHandler) renderEmployees(c *gin.Context, ws *Workspace, status int) {
	view := ws.Employees.View()
	data := gin.H{
		"Title":   "কর্মচারী",
		"View":    view,
		"New":     draftValues(view.Draft, ""),
		"Editing": "",
		"Form":    map[string]string(nil),
		"Back":    "/employees",
	}
	if view.Draft != nil && view.Draft.Key != "" {
		data["Editing"] = view.Draft.Key
		data["Form"] = view.Draft.Values
	}
	h.render(c, ws, status, "employees", data)
}

// Employees lists employees; edit opens one for editing.
func (h *PageHandler) Employees(c *gin.Context) {
	ws := h.workspace(c)
	err := ws.Employees.Load(c.Request.Context(), viewstate.NoFilter{})
	if id := c.Query("edit"); err == nil && id != "" {
		if _, err = ws.Employees.Open(id, staff.GroupProfile); err != nil {
			h.surface(ws, "employees", err)
		}
	}
	h.renderEmployees(c, ws, statusFor(err))
}

// CreateEmployee adds an employee.
func (h *PageHandler) CreateEmployee(c *gin.Context) {
	h.saveEmployee(c, "")
}

// UpdateEmployee edits the employee in the path.
func (h *PageHandler) UpdateEmployee(c *gin.Context) {
	h.saveEmployee(c, c.Param("id"))
}

func (h *PageHandler) saveEmployee(c *gin.Context, id string) {
	ws := h.workspace(c)
	ctx := c.Request.Context()

	err := openDraft(ctx, ws.Employees, viewstate.NoFilter{}, id, staff.GroupProfile)
	if err == nil {
		err = ws.Employees.Submit(ctx, formValues(c, staff.FieldName, staff.FieldDailySalary))
	}
	if err != nil {
		h.surface(ws, "employees", err)
		h.renderEmployees(c, ws, statusFor(err))
		return
	}
	h.seeOther(c, "/employees")
}

// CancelEmployee discards the open employee draft.
func (h *PageHandler) CancelEmployee(c *gin.Context) {
	ws := h.workspace(c)
	_ = ws.Employees.Cancel()
	h.seeOther(c, "/employees")
}

// ConfirmDeleteEmployee asks before an employee is removed.
func (h *PageHandler) ConfirmDeleteEmployee(c *gin.Context) {
	ws := h.workspace(c)
	id := c.Param("id")

	name := id
	if err := ensureLoaded(c.Request.Context(), ws.Employees, viewstate.NoFilter{}); err == nil {
		for _, e := range ws.Employees.View().Rows {
			if e.ID == id {
				name = e.Name
			}
		}
	}

	h.render(c, ws, http.StatusOK, "confirm", gin.H{
		"Title":   "নিশ্চিত করুন",
		"Message": fmt.Sprintf("%s কে মুছে ফেলবেন?", name),
		"Action":  "/employees/" + id + "/delete",
		"Fields":  map[string]string{},
		"Back":    "/employees",
	})
}

// DeleteEmployee removes the employee once confirmed.
func (h *PageHandler) DeleteEmployee(c *gin.Context) {
	ws := h.workspace(c)
	ctx := c.Request.Context()

	err := ensureLoaded(ctx, ws.Employees, viewstate.NoFilter{})
	if err == nil {
		err = ws.Employees.Delete(ctx, c.Param("id"), c.PostForm("confirm") == "yes")
	}

	switch {
	case err == nil, errors.Is(err, viewstate.ErrNotConfirmed):
		h.seeOther(c, "/employees")
	default:
		h.surface(ws, "employees", err)
		h.renderEmployees(c, ws, statusFor(err))
	}
}

func attendanceURL(date string) string {
	return withQuery("/attendance", "date", date)
}

func (h *PageHandler) renderAttendance(c *gin.Context, ws *Workspace, status int, date string) {
	view := ws.Attendance.View()
	data := gin.H{
		"Title":    "হাজিরা",
		"Date":     date,
		"View":     view,
		"Back":     attendanceURL(date),
		"Statuses": []models.AttendanceStatus{models.StatusPresent, models.StatusAbsent},
		"Editing":  "",
		"Form":     map[string]string(nil),
	}
	if view.Draft != nil {
		data["Editing"] = view.Draft.Key
		data["Form"] = view.Draft.Values
	}
	h.render(c, ws, status, "attendance", data)
}

// Attendance lists the day's attendance and advances; advance opens one row's
// advance for editing.
func (h *PageHandler) Attendance(c *gin.Context) {
	ws := h.workspace(c)
	ctx := c.Request.Context()
	date := h.dateParam(ws, "attendance", c.Query("date"))

	err := ws.Attendance.Load(ctx, date)
	if id := c.Query("advance"); err == nil && id != "" {
		if _, err = ws.Attendance.Open(id, attendance.GroupAdvance); err != nil {
			h.surface(ws, "attendance", err)
		}
	}
	h.renderAttendance(c, ws, statusFor(err), date)
}

// MarkAttendance records present or absent for one employee.
func (h *PageHandler) MarkAttendance(c *gin.Context) {
	ws := h.workspace(c)
	ctx := c.Request.Context()
	date := h.dateParam(ws, "attendance", c.PostForm("date"))

	action, err := h.bindings.Attendance.Mark(c.PostForm("employee"), models.AttendanceStatus(c.PostForm("status")))
	if err == nil {
		if err = ensureLoaded(ctx, ws.Attendance, date); err == nil {
			err = ws.Attendance.Act(ctx, action)
		}
	}
	if err != nil {
		h.surface(ws, "attendance", err)
		h.renderAttendance(c, ws, statusFor(err), date)
		return
	}
	h.seeOther(c, attendanceURL(date))
}

// SaveAdvance records or corrects one employee's advance for the day.
func (h *PageHandler) SaveAdvance(c *gin.Context) {
	ws := h.workspace(c)
	ctx := c.Request.Context()
	date := h.dateParam(ws, "attendance", c.PostForm("date"))
	id := c.PostForm("employee")

	var err error
	if id == "" {
		err = fmt.Errorf("employee: %w", viewstate.ErrRowNotFound)
	} else if err = openDraft(ctx, ws.Attendance, date, id, attendance.GroupAdvance); err == nil {
		err = ws.Attendance.Submit(ctx, formValues(c, attendance.FieldAmount))
	}
	if err != nil {
		h.surface(ws, "attendance", err)
		h.renderAttendance(c, ws, statusFor(err), date)
		return
	}
	h.seeOther(c, attendanceURL(date))
}

// CancelAdvance discards the open advance draft.
func (h *PageHandler) CancelAdvance(c *gin.Context) {
	ws := h.workspace(c)
	_ = ws.Attendance.Cancel()
	h.seeOther(c, attendanceURL(c.PostForm("date")))
}
