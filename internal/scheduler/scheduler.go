package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/boilerdesk/internal/config"
	"github.com/mamadbah2/boilerdesk/internal/domain/models"
	"github.com/mamadbah2/boilerdesk/internal/service/reporting"
)

const jobTimeout = 2 * time.Minute

// Exporter writes reports to the spreadsheet.
type Exporter interface {
	ExportMonthlyReport(ctx context.Context, month string) (int, error)
	ExportRates(ctx context.Context, date string) (int, error)
}

// Broadcaster sends the day's rates.
type Broadcaster interface {
	SendDailyRates(ctx context.Context, date string) (string, error)
}

// Sweeper evicts idle page state.
type Sweeper interface {
	Sweep(ttl time.Duration) int
}

// Jobs are the optional collaborators; nil entries are not scheduled.
type Jobs struct {
	Exporter    Exporter
	Broadcaster Broadcaster
	Sweeper     Sweeper
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron   *cron.Cron
	jobs   Jobs
	cfg    config.Config
	loc    *time.Location
	now    func() time.Time
	logger *zap.Logger
}

// NewScheduler creates a new scheduler instance. Schedules are standard
// five-field cron expressions read in the configured timezone.
func NewScheduler(cfg config.Config, jobs Jobs, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	loc := cfg.Location()

	return &Scheduler{
		cron:   cron.New(cron.WithLocation(loc)),
		jobs:   jobs,
		cfg:    cfg,
		loc:    loc,
		now:    time.Now,
		logger: logger,
	}
}

// Start registers the enabled jobs and starts the scheduler. It returns the
// number of registered jobs.
func (s *Scheduler) Start() int {
	s.logger.Info("starting scheduler", zap.String("timezone", s.loc.String()))

	if s.jobs.Exporter != nil {
		s.add("monthly export", s.cfg.Reporting.ExportSchedule, s.exportPreviousMonth)
	}
	if s.jobs.Broadcaster != nil {
		s.add("daily broadcast", s.cfg.Reporting.BroadcastSchedule, s.broadcastToday)
	}
	if s.jobs.Sweeper != nil {
		s.add("session sweep", s.cfg.Session.SweepSchedule, s.sweepSessions)
	}

	s.cron.Start()
	return len(s.cron.Entries())
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) add(name, spec string, job func()) {
	if _, err := s.cron.AddFunc(spec, job); err != nil {
		s.logger.Error("failed to schedule job", zap.String("job", name), zap.String("schedule", spec), zap.Error(err))
		return
	}
	s.logger.Info("job scheduled", zap.String("job", name), zap.String("schedule", spec))
}

func (s *Scheduler) today() time.Time {
	return s.now().In(s.loc)
}

// exportPreviousMonth runs on the first of the month, so it exports the month
// that just closed plus yesterday's rates.
func (s *Scheduler) exportPreviousMonth() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	now := s.today()
	month := reporting.PreviousMonth(now)
	rows, err := s.jobs.Exporter.ExportMonthlyReport(ctx, month)
	if err != nil {
		s.logger.Error("failed to export monthly report", zap.String("month", month), zap.Error(err))
	} else {
		s.logger.Info("monthly report exported", zap.String("month", month), zap.Int("rows", rows))
	}

	yesterday := now.AddDate(0, 0, -1).Format(models.DateLayout)
	if _, err := s.jobs.Exporter.ExportRates(ctx, yesterday); err != nil {
		s.logger.Error("failed to export rates", zap.String("date", yesterday), zap.Error(err))
	}
}

func (s *Scheduler) broadcastToday() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	date := s.today().Format(models.DateLayout)
	if _, err := s.jobs.Broadcaster.SendDailyRates(ctx, date); err != nil {
		s.logger.Error("failed to broadcast daily rates", zap.String("date", date), zap.Error(err))
	}
}

func (s *Scheduler) sweepSessions() {
	if removed := s.jobs.Sweeper.Sweep(s.cfg.Session.TTL); removed > 0 {
		s.logger.Info("idle sessions evicted", zap.Int("count", removed))
	}
}
