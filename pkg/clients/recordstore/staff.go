package recordstore

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/mamadbah2/boilerdesk/internal/domain/models"
)

// CustomerDTO is the wire form of a customer.
type CustomerDTO struct {
	ID   string `json:"_id,omitempty"`
	Name string `json:"name"`
}

// EmployeeDTO is the wire form of an employee.
type EmployeeDTO struct {
	ID          string  `json:"_id,omitempty"`
	Name        string  `json:"name"`
	DailySalary float64 `json:"dailySalary"`
}

// AttendanceDTO is the wire form of an attendance mark.
type AttendanceDTO struct {
	EmployeeID string `json:"employeeId"`
	Date       string `json:"date"`
	Status     string `json:"status"`
}

// AdvanceDTO is the wire form of an advance entry.
type AdvanceDTO struct {
	EmployeeID string  `json:"employeeId,omitempty"`
	Date       string  `json:"date"`
	Amount     float64 `json:"amount"`
}

// SalaryReportDTO is the body of GET /salary/:employee/:month.
type SalaryReportDTO struct {
	PresentDays  int     `json:"presentDays"`
	DailySalary  float64 `json:"dailySalary"`
	TotalSalary  float64 `json:"totalSalary"`
	TotalAdvance float64 `json:"totalAdvance"`
	Payable      float64 `json:"payable"`
}

// Customers reads every customer.
func (c *Client) Customers(ctx context.Context) ([]models.Customer, error) {
	var result []CustomerDTO
	if err := c.do(ctx, http.MethodGet, "/customers", nil, &result); err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}

	customers := make([]models.Customer, 0, len(result))
	for _, dto := range result {
		customers = append(customers, models.Customer{ID: dto.ID, Name: dto.Name})
	}
	return customers, nil
}

// CreateCustomer adds a customer by name.
func (c *Client) CreateCustomer(ctx context.Context, name string) error {
	if err := c.do(ctx, http.MethodPost, "/customers", CustomerDTO{Name: name}, nil); err != nil {
		return fmt.Errorf("create customer %s: %w", name, err)
	}
	return nil
}

// Employees reads every employee.
func (c *Client) Employees(ctx context.Context) ([]models.Employee, error) {
	var result []EmployeeDTO
	if err := c.do(ctx, http.MethodGet, "/employees", nil, &result); err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}

	employees := make([]models.Employee, 0, len(result))
	for _, dto := range result {
		employees = append(employees, models.Employee{ID: dto.ID, Name: dto.Name, DailySalary: dto.DailySalary})
	}
	return employees, nil
}

// CreateEmployee adds an employee.
func (c *Client) CreateEmployee(ctx context.Context, name string, dailySalary float64) error {
	body := EmployeeDTO{Name: name, DailySalary: dailySalary}
	if err := c.do(ctx, http.MethodPost, "/employees", body, nil); err != nil {
		return fmt.Errorf("create employee %s: %w", name, err)
	}
	return nil
}

// PatchEmployee updates an employee's name and daily salary.
func (c *Client) PatchEmployee(ctx context.Context, id, name string, dailySalary float64) error {
	body := EmployeeDTO{Name: name, DailySalary: dailySalary}
	if err := c.do(ctx, http.MethodPatch, "/employees/"+url.PathEscape(id), body, nil); err != nil {
		return fmt.Errorf("update employee %s: %w", id, err)
	}
	return nil
}

// DeleteEmployee removes an employee.
func (c *Client) DeleteEmployee(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/employees/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("delete employee %s: %w", id, err)
	}
	return nil
}

// AttendanceByDate reads every attendance mark of one day.
func (c *Client) AttendanceByDate(ctx context.Context, date string) ([]models.AttendanceMark, error) {
	var result []AttendanceDTO
	if err := c.do(ctx, http.MethodGet, "/attendance/date/"+url.PathEscape(date), nil, &result); err != nil {
		return nil, fmt.Errorf("list attendance for %s: %w", date, err)
	}

	marks := make([]models.AttendanceMark, 0, len(result))
	for _, dto := range result {
		marks = append(marks, models.AttendanceMark{
			EmployeeID: dto.EmployeeID,
			Date:       models.NormalizeDate(dto.Date),
			Status:     models.AttendanceStatus(dto.Status),
		})
	}
	return marks, nil
}

// MarkAttendance records a mark. The record service keeps only the latest mark
// per employee and day.
func (c *Client) MarkAttendance(ctx context.Context, mark models.AttendanceMark) error {
	body := AttendanceDTO{EmployeeID: mark.EmployeeID, Date: mark.Date, Status: string(mark.Status)}
	if err := c.do(ctx, http.MethodPost, "/attendance", body, nil); err != nil {
		return fmt.Errorf("mark %s %s on %s: %w", mark.EmployeeID, mark.Status, mark.Date, err)
	}
	return nil
}

// AdvancesByDate reads every employee's advance for one day.
func (c *Client) AdvancesByDate(ctx context.Context, date string) ([]models.AdvanceEntry, error) {
	var result []AdvanceDTO
	if err := c.do(ctx, http.MethodGet, "/advance/date/"+url.PathEscape(date), nil, &result); err != nil {
		return nil, fmt.Errorf("list advances for %s: %w", date, err)
	}
	return advancesFromDTO(result, ""), nil
}

// AdvancesByMonth reads one employee's date-wise advances for a month.
func (c *Client) AdvancesByMonth(ctx context.Context, employeeID, month string) ([]models.AdvanceEntry, error) {
	var result []AdvanceDTO
	path := fmt.Sprintf("/advance/%s/%s", url.PathEscape(employeeID), url.PathEscape(month))
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, fmt.Errorf("list advances of %s for %s: %w", employeeID, month, err)
	}
	return advancesFromDTO(result, employeeID), nil
}

// CreateAdvance records a new advance for an employee and day.
func (c *Client) CreateAdvance(ctx context.Context, entry models.AdvanceEntry) error {
	if err := c.do(ctx, http.MethodPost, "/advance", advanceToDTO(entry), nil); err != nil {
		return fmt.Errorf("create advance of %s on %s: %w", entry.EmployeeID, entry.Date, err)
	}
	return nil
}

// PatchAdvance replaces the amount of an existing advance.
func (c *Client) PatchAdvance(ctx context.Context, entry models.AdvanceEntry) error {
	if err := c.do(ctx, http.MethodPatch, "/advance", advanceToDTO(entry), nil); err != nil {
		return fmt.Errorf("update advance of %s on %s: %w", entry.EmployeeID, entry.Date, err)
	}
	return nil
}

// SalaryReport reads the externally computed salary report of an employee.
func (c *Client) SalaryReport(ctx context.Context, employeeID, month string) (models.MonthlySalaryReport, error) {
	result := new(SalaryReportDTO)
	path := fmt.Sprintf("/salary/%s/%s", url.PathEscape(employeeID), url.PathEscape(month))
	if err := c.do(ctx, http.MethodGet, path, nil, result); err != nil {
		return models.MonthlySalaryReport{}, fmt.Errorf("salary report of %s for %s: %w", employeeID, month, err)
	}

	return models.MonthlySalaryReport{
		EmployeeID:   employeeID,
		Month:        month,
		PresentDays:  result.PresentDays,
		DailySalary:  result.DailySalary,
		TotalSalary:  result.TotalSalary,
		TotalAdvance: result.TotalAdvance,
		Payable:      result.Payable,
	}, nil
}

func advanceToDTO(entry models.AdvanceEntry) AdvanceDTO {
	return AdvanceDTO{EmployeeID: entry.EmployeeID, Date: entry.Date, Amount: entry.Amount}
}

func advancesFromDTO(items []AdvanceDTO, employeeID string) []models.AdvanceEntry {
	entries := make([]models.AdvanceEntry, 0, len(items))
	for _, dto := range items {
		id := dto.EmployeeID
		if id == "" {
			id = employeeID
		}
		entries = append(entries, models.AdvanceEntry{
			EmployeeID: id,
			Date:       models.NormalizeDate(dto.Date),
			Amount:     dto.Amount,
		})
	}
	return entries
}
