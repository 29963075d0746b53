// Package fakestore is an in-memory stand-in for the external record service,
// served with gin so tests can run the real resty client against it.
package fakestore

import (
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/boilerdesk/internal/domain/models"
	"github.com/mamadbah2/boilerdesk/pkg/clients/recordstore"
)

// Call is one request received by the fake.
type Call struct {
	Method string
	Path   string
}

// Store holds the fake's state.
type Store struct {
	mu         sync.Mutex
	rates      map[string][]recordstore.RateDTO
	customers  []recordstore.CustomerDTO
	employees  []recordstore.EmployeeDTO
	attendance map[string]map[string]string  // date -> employee -> status
	advances   map[string]map[string]float64 // date -> employee -> amount
	failures   map[string]int                // "METHOD /route" -> status
	calls      []Call
	nextID     int
	server     *httptest.Server
}

// New starts a fake record service. Close it with t.Cleanup(store.Close).
func New() *Store {
	gin.SetMode(gin.TestMode)

	s := &Store{
		rates:      make(map[string][]recordstore.RateDTO),
		attendance: make(map[string]map[string]string),
		advances:   make(map[string]map[string]float64),
		failures:   make(map[string]int),
	}

	r := gin.New()
	r.Use(s.track)

	r.GET("/sellingRate", s.getRates)
	r.POST("/sellingRate", s.createRates)
	r.PATCH("/sellingRate", s.patchRate)
	r.DELETE("/sellingRate/customer", s.deleteRate)

	r.GET("/customers", s.listCustomers)
	r.POST("/customers", s.createCustomer)

	r.GET("/employees", s.listEmployees)
	r.POST("/employees", s.createEmployee)
	r.PATCH("/employees/:id", s.patchEmployee)
	r.DELETE("/employees/:id", s.deleteEmployee)

	r.GET("/attendance/date/:date", s.attendanceByDate)
	r.POST("/attendance", s.markAttendance)

	r.GET("/advance/date/:date", s.advancesByDate)
	r.GET("/advance/:id/:month", s.advancesByMonth)
	r.POST("/advance", s.createAdvance)
	r.PATCH("/advance", s.patchAdvance)

	r.GET("/salary/:id/:month", s.salary)

	s.server = httptest.NewServer(r)
	return s
}

// URL is the base URL of the fake.
func (s *Store) URL() string { return s.server.URL }

// Close stops the server.
func (s *Store) Close() { s.server.Close() }

// Fail makes every request to route ("PATCH /sellingRate") answer with status
// until Recover is called.
func (s *Store) Fail(route string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = status
}

// Recover clears every injected failure.
func (s *Store) Recover() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = make(map[string]int)
}

// Calls returns a copy of the request log.
func (s *Store) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// CountCalls counts requests matching method and route template.
func (s *Store) CountCalls(method, route string) int {
	n := 0
	for _, c := range s.Calls() {
		if c.Method == method && c.Path == route {
			n++
		}
	}
	return n
}

// ResetCalls clears the request log.
func (s *Store) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

// SeedCustomers adds customers directly.
func (s *Store) SeedCustomers(names ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range names {
		s.customers = append(s.customers, recordstore.CustomerDTO{ID: s.newID(), Name: n})
	}
}

// SeedEmployee adds an employee directly and returns its id.
func (s *Store) SeedEmployee(name string, dailySalary float64) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.newID()
	s.employees = append(s.employees, recordstore.EmployeeDTO{ID: id, Name: name, DailySalary: dailySalary})
	return id
}

// SeedRates stores a day's price record directly.
func (s *Store) SeedRates(date string, entries ...models.RateEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		s.rates[date] = append(s.rates[date], recordstore.RateFromModel(e))
	}
}

// SeedAdvance stores an advance directly.
func (s *Store) SeedAdvance(employeeID, date string, amount float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.advances[date] == nil {
		s.advances[date] = make(map[string]float64)
	}
	s.advances[date][employeeID] = amount
}

func (s *Store) newID() string {
	s.nextID++
	return "E" + strconv.Itoa(s.nextID)
}

func (s *Store) track(c *gin.Context) {
	route := c.FullPath()
	s.mu.Lock()
	s.calls = append(s.calls, Call{Method: c.Request.Method, Path: route})
	status, failing := s.failures[c.Request.Method+" "+route]
	s.mu.Unlock()

	if failing {
		c.AbortWithStatusJSON(status, gin.H{"message": "injected failure"})
		return
	}
	c.Next()
}

func (s *Store) getRates(c *gin.Context) {
	date := c.Query("date")
	s.mu.Lock()
	defer s.mu.Unlock()

	rates, ok := s.rates[date]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "no record for date"})
		return
	}
	out := make([]recordstore.RateDTO, len(rates))
	copy(out, rates)
	c.JSON(http.StatusOK, recordstore.PriceRecordDTO{Date: date, Rates: out})
}

func (s *Store) createRates(c *gin.Context) {
	var req struct {
		Date  string                `json:"date"`
		Rates []recordstore.RateDTO `json:"rates"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid payload"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	existing := s.rates[req.Date]
	for _, r := range req.Rates {
		if indexOfRate(existing, r.CustomerName) >= 0 {
			continue
		}
		existing = append(existing, r)
	}
	s.rates[req.Date] = existing
	c.JSON(http.StatusCreated, gin.H{"message": "created"})
}

func (s *Store) patchRate(c *gin.Context) {
	var req struct {
		Date               string                          `json:"date"`
		CustomerName       string                          `json:"customerName"`
		ProposalPrice      *recordstore.ProposalPrice      `json:"proposalPrice"`
		ActualSellingPrice *recordstore.ActualSellingPrice `json:"actualSellingPrice"`
		Piece              *recordstore.PricePair          `json:"piece"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid payload"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rates := s.rates[req.Date]
	i := indexOfRate(rates, req.CustomerName)
	if i < 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "customer not found"})
		return
	}
	if req.ProposalPrice != nil {
		rates[i].ProposalPrice = *req.ProposalPrice
	}
	if req.ActualSellingPrice != nil {
		rates[i].ActualSellingPrice = *req.ActualSellingPrice
	}
	if req.Piece != nil {
		rates[i].Piece = *req.Piece
	}
	c.JSON(http.StatusOK, gin.H{"message": "updated"})
}

func (s *Store) deleteRate(c *gin.Context) {
	var req struct {
		Date         string `json:"date"`
		CustomerName string `json:"customerName"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid payload"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rates := s.rates[req.Date]
	i := indexOfRate(rates, req.CustomerName)
	if i < 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "customer not found"})
		return
	}
	s.rates[req.Date] = append(rates[:i:i], rates[i+1:]...)
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func (s *Store) listCustomers(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]recordstore.CustomerDTO, len(s.customers))
	copy(out, s.customers)
	c.JSON(http.StatusOK, out)
}

func (s *Store) createCustomer(c *gin.Context) {
	var req recordstore.CustomerDTO
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "name is required"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	req.ID = s.newID()
	s.customers = append(s.customers, req)
	c.JSON(http.StatusCreated, req)
}

func (s *Store) listEmployees(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]recordstore.EmployeeDTO, len(s.employees))
	copy(out, s.employees)
	c.JSON(http.StatusOK, out)
}

func (s *Store) createEmployee(c *gin.Context) {
	var req recordstore.EmployeeDTO
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "name is required"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	req.ID = s.newID()
	s.employees = append(s.employees, req)
	c.JSON(http.StatusCreated, req)
}

func (s *Store) patchEmployee(c *gin.Context) {
	var req recordstore.EmployeeDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid payload"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.employees {
		if s.employees[i].ID == c.Param("id") {
			s.employees[i].Name = req.Name
			s.employees[i].DailySalary = req.DailySalary
			c.JSON(http.StatusOK, s.employees[i])
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "employee not found"})
}

func (s *Store) deleteEmployee(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.employees {
		if s.employees[i].ID == c.Param("id") {
			s.employees = append(s.employees[:i:i], s.employees[i+1:]...)
			c.JSON(http.StatusOK, gin.H{"message": "deleted"})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "employee not found"})
}

func (s *Store) attendanceByDate(c *gin.Context) {
	date := c.Param("date")
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]recordstore.AttendanceDTO, 0)
	for id, status := range s.attendance[date] {
		out = append(out, recordstore.AttendanceDTO{EmployeeID: id, Date: date + "T00:00:00.000Z", Status: status})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	c.JSON(http.StatusOK, out)
}

func (s *Store) markAttendance(c *gin.Context) {
	var req recordstore.AttendanceDTO
	if err := c.ShouldBindJSON(&req); err != nil || req.EmployeeID == "" || req.Date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid payload"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.attendance[req.Date] == nil {
		s.attendance[req.Date] = make(map[string]string)
	}
	s.attendance[req.Date][req.EmployeeID] = req.Status
	c.JSON(http.StatusCreated, req)
}

func (s *Store) advancesByDate(c *gin.Context) {
	date := c.Param("date")
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]recordstore.AdvanceDTO, 0)
	for id, amount := range s.advances[date] {
		out = append(out, recordstore.AdvanceDTO{EmployeeID: id, Date: date, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	c.JSON(http.StatusOK, out)
}

func (s *Store) advancesByMonth(c *gin.Context) {
	id, month := c.Param("id"), c.Param("month")
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]recordstore.AdvanceDTO, 0)
	for date, byEmployee := range s.advances {
		if !strings.HasPrefix(date, month+"-") {
			continue
		}
		if amount, ok := byEmployee[id]; ok {
			out = append(out, recordstore.AdvanceDTO{Date: date, Amount: amount})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	c.JSON(http.StatusOK, out)
}

func (s *Store) createAdvance(c *gin.Context) {
	var req recordstore.AdvanceDTO
	if err := c.ShouldBindJSON(&req); err != nil || req.EmployeeID == "" || req.Date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid payload"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.advances[req.Date][req.EmployeeID]; exists {
		c.JSON(http.StatusConflict, gin.H{"message": "advance already exists"})
		return
	}
	if s.advances[req.Date] == nil {
		s.advances[req.Date] = make(map[string]float64)
	}
	s.advances[req.Date][req.EmployeeID] = req.Amount
	c.JSON(http.StatusCreated, req)
}

func (s *Store) patchAdvance(c *gin.Context) {
	var req recordstore.AdvanceDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid payload"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.advances[req.Date][req.EmployeeID]; !exists {
		c.JSON(http.StatusNotFound, gin.H{"message": "advance not found"})
		return
	}
	s.advances[req.Date][req.EmployeeID] = req.Amount
	c.JSON(http.StatusOK, req)
}

// salary mimics the external formula: present days x daily salary - advances.
func (s *Store) salary(c *gin.Context) {
	id, month := c.Param("id"), c.Param("month")
	s.mu.Lock()
	defer s.mu.Unlock()

	var daily float64
	found := false
	for _, e := range s.employees {
		if e.ID == id {
			daily, found = e.DailySalary, true
		}
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"message": "employee not found"})
		return
	}

	present := 0
	for date, byEmployee := range s.attendance {
		if strings.HasPrefix(date, month+"-") && byEmployee[id] == string(models.StatusPresent) {
			present++
		}
	}
	var advance float64
	for date, byEmployee := range s.advances {
		if strings.HasPrefix(date, month+"-") {
			advance += byEmployee[id]
		}
	}

	total := float64(present) * daily
	c.JSON(http.StatusOK, recordstore.SalaryReportDTO{
		PresentDays:  present,
		DailySalary:  daily,
		TotalSalary:  total,
		TotalAdvance: advance,
		Payable:      total - advance,
	})
}

func indexOfRate(rates []recordstore.RateDTO, customer string) int {
	for i, r := range rates {
		if r.CustomerName == customer {
			return i
		}
	}
	return -1
}
