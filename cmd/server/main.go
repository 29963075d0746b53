package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/boilerdesk/internal/config"
	"github.com/mamadbah2/boilerdesk/internal/repository/mongodb"
	"github.com/mamadbah2/boilerdesk/internal/repository/sheets"
	"github.com/mamadbah2/boilerdesk/internal/scheduler"
	"github.com/mamadbah2/boilerdesk/internal/server/handlers"
	"github.com/mamadbah2/boilerdesk/internal/server/router"
	"github.com/mamadbah2/boilerdesk/internal/server/session"
	"github.com/mamadbah2/boilerdesk/internal/server/views"
	activitysvc "github.com/mamadbah2/boilerdesk/internal/service/activity"
	"github.com/mamadbah2/boilerdesk/internal/service/attendance"
	"github.com/mamadbah2/boilerdesk/internal/service/rates"
	reportingsvc "github.com/mamadbah2/boilerdesk/internal/service/reporting"
	"github.com/mamadbah2/boilerdesk/internal/service/staff"
	whatsappsvc "github.com/mamadbah2/boilerdesk/internal/service/whatsapp"
	"github.com/mamadbah2/boilerdesk/internal/viewstate"
	"github.com/mamadbah2/boilerdesk/pkg/clients/recordstore"
	whatsappclient "github.com/mamadbah2/boilerdesk/pkg/clients/whatsapp"
	"github.com/mamadbah2/boilerdesk/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Server.Environment))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	store := recordstore.NewClient(cfg.RecordStore, baseLogger.Named("client.recordstore"))

	var sheetsRepo sheets.Repository
	if cfg.SheetsEnabled() {
		sheetsRepo, err = sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
	} else {
		baseLogger.Warn("google sheets not configured, report export disabled")
	}

	var activityRepo mongodb.Repository
	if cfg.MongoDB.URI != "" {
		mongoRepo, err := mongodb.NewMongoDBRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		activityRepo = mongoRepo
	} else {
		baseLogger.Warn("mongodb uri missing, activity log disabled")
	}

	activity := activitysvc.NewService(activityRepo, baseLogger.Named("svc.activity"))
	reportingSvc := reportingsvc.NewService(store, sheetsRepo, baseLogger.Named("svc.reporting"))

	bindings := handlers.Bindings{
		Sheet:      rates.NewSheet(store, baseLogger.Named("svc.rates")),
		Prices:     rates.NewPrices(store, baseLogger.Named("svc.rates")),
		Proposals:  rates.NewProposals(store, baseLogger.Named("svc.rates")),
		Customers:  staff.NewCustomers(store),
		Employees:  staff.NewEmployees(store, baseLogger.Named("svc.staff")),
		Attendance: attendance.NewDaily(store, baseLogger.Named("svc.attendance")),
		Monthly:    reportingsvc.NewMonthly(store, baseLogger.Named("svc.reporting")),
		Advances:   reportingsvc.NewAdvances(store),
	}

	sessions := session.NewManager(handlers.NewWorkspaceFactory(bindings,
		viewstate.WithLogger(baseLogger.Named("viewstate")),
		viewstate.WithAutoDismiss(cfg.Session.NoticeAutoDismiss),
		viewstate.WithRecorder(activity),
	))

	pageHandler := handlers.NewPageHandler(sessions, bindings, reportingSvc, activity, handlers.Options{
		Location:    cfg.Location(),
		AutoDismiss: cfg.Session.NoticeAutoDismiss,
	}, baseLogger.Named("handlers.pages"))

	tmpl, err := views.Parse()
	if err != nil {
		baseLogger.Fatal("failed to parse templates", zap.Error(err))
	}
	engine := router.New(pageHandler, tmpl, baseLogger.Named("router"))

	jobs := scheduler.Jobs{Sweeper: sessions}
	if reportingSvc.ExportEnabled() {
		jobs.Exporter = reportingSvc
	}
	if cfg.BroadcastEnabled() {
		whatsClient := whatsappclient.NewClient(cfg.WhatsApp, baseLogger.Named("client.whatsapp"))
		jobs.Broadcaster = whatsappsvc.NewBroadcastService(cfg.WhatsApp.GroupID, whatsClient, reportingSvc, baseLogger.Named("svc.whatsapp"))
	} else {
		baseLogger.Warn("whatsapp token missing, daily rate broadcast disabled")
	}

	sched := scheduler.NewScheduler(*cfg, jobs, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RecordStore.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
