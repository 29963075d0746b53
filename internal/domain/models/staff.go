package models

// Customer is a buyer the daily price sheet is kept for.
type Customer struct {
	ID   string
	Name string
}

// Employee is a daily-wage worker.
type Employee struct {
	ID          string
	Name        string
	DailySalary float64
}

// AttendanceStatus is the outcome of a daily attendance mark.
type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "present"
	StatusAbsent  AttendanceStatus = "absent"
)

// Valid reports whether the status is one the record service accepts.
func (s AttendanceStatus) Valid() bool {
	return s == StatusPresent || s == StatusAbsent
}

// AttendanceMark is the attendance of one employee on one day. The record service
// keeps at most one mark per (employee, date); the last write wins.
type AttendanceMark struct {
	EmployeeID string
	Date       string
	Status     AttendanceStatus
}

// AdvanceEntry is a cash advance paid on one day. The record service keeps at
// most one entry per (employee, date).
type AdvanceEntry struct {
	EmployeeID string
	Date       string
	Amount     float64
}

// AdvanceFilter selects one employee's advances for a month.
type AdvanceFilter struct {
	EmployeeID string
	Month      string
}

// DailyRow joins an employee with their attendance and advance for one day.
type DailyRow struct {
	EmployeeID  string
	Name        string
	DailySalary float64
	Status      AttendanceStatus
	Advance     float64
	HasAdvance  bool
}

// MonthlySalaryReport is computed by the record service and only displayed here.
type MonthlySalaryReport struct {
	EmployeeID   string
	Month        string
	PresentDays  int
	DailySalary  float64
	TotalSalary  float64
	TotalAdvance float64
	Payable      float64
}

// SalaryRow pairs an employee with their monthly report.
type SalaryRow struct {
	Employee Employee
	Report   MonthlySalaryReport
}
