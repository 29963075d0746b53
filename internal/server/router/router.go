package router

import (
	"html/template"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/boilerdesk/internal/server/handlers"
)

// New wires the Gin engine with the back-office pages and middlewares.
func New(handler *handlers.PageHandler, tmpl *template.Template, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))
	r.SetHTMLTemplate(tmpl)

	r.GET("/", handler.Home)
	r.GET("/home", handler.Home)

	r.GET("/updateSellingRate", handler.Prices)
	r.POST("/updateSellingRate", handler.SavePrice)
	r.POST("/updateSellingRate/cancel", handler.CancelPrice)
	r.GET("/updateSellingRate/delete", handler.ConfirmDeletePrice)
	r.POST("/updateSellingRate/delete", handler.DeletePrice)

	r.GET("/addPrice", handler.AddPrice)
	r.POST("/addPrice", handler.CreatePrices)

	r.GET("/addCustomer", handler.Customers)
	r.POST("/addCustomer", handler.CreateCustomer)

	employees := r.Group("/employees")
	employees.GET("", handler.Employees)
	employees.POST("", handler.CreateEmployee)
	employees.POST("/:id", handler.UpdateEmployee)
	employees.POST("/:id/cancel", handler.CancelEmployee)
	employees.GET("/:id/delete", handler.ConfirmDeleteEmployee)
	employees.POST("/:id/delete", handler.DeleteEmployee)

	attendance := r.Group("/attendance")
	attendance.GET("", handler.Attendance)
	attendance.POST("/mark", handler.MarkAttendance)
	attendance.POST("/advance", handler.SaveAdvance)
	attendance.POST("/cancel", handler.CancelAdvance)

	r.GET("/report", handler.Report)
	r.POST("/report/export", handler.Export)

	r.POST("/notice/dismiss", handler.DismissNotice)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
