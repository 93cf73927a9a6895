package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/pkg/errors"

	"github.com/example/wordmemo/internal/logger"
)

// Default notification window, both hours inclusive
const (
	DefaultNotificationStartHour = 8
	DefaultNotificationEndHour   = 22
)

// checkTimeout bounds one word list re-check
const checkTimeout = time.Minute

// Notifier tells the owner about due cards and word list updates
type Notifier interface {
	SendReminder(due int) error
	SendDeckUpdated() error
}

// Checker re-checks the word list source for changes
type Checker interface {
	Check(ctx context.Context) (bool, error)
}

// DueCounter reports how many cards are due
type DueCounter interface {
	DueCount() int
}

// Options configures the jobs. A zero interval disables its job.
type Options struct {
	CheckInterval    time.Duration
	ReminderInterval time.Duration
	StartHour        int
	EndHour          int
}

// Scheduler manages the periodic jobs of the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	checker   Checker
	due       DueCounter
	notifier  Notifier
	opts      Options
	now       func() time.Time
	log       *logger.Logger
	ctx       context.Context
}

// New creates a new scheduler instance
func New(checker Checker, due DueCounter, notifier Notifier, opts Options, log *logger.Logger) *Scheduler {
	if log == nil {
		log = logger.Nop()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.Local),
		checker:   checker,
		due:       due,
		notifier:  notifier,
		opts:      opts,
		now:       time.Now,
		log:       log,
		ctx:       context.Background(),
	}
}

// Start schedules the jobs and runs them in the background until Stop or ctx ends.
// The first re-check runs right away, the first reminder after one interval.
func (s *Scheduler) Start(ctx context.Context) error {
	s.ctx = ctx

	if s.opts.CheckInterval > 0 && s.checker != nil {
		if _, err := s.scheduler.Every(s.opts.CheckInterval).SingletonMode().Do(s.RunCheck); err != nil {
			return errors.Wrap(err, "failed to schedule word list check")
		}
	}
	if s.opts.ReminderInterval > 0 && s.notifier != nil && s.due != nil {
		if _, err := s.scheduler.Every(s.opts.ReminderInterval).WaitForSchedule().Do(s.RunReminder); err != nil {
			return errors.Wrap(err, "failed to schedule reminders")
		}
	}

	// Start the scheduler in a non-blocking manner
	s.scheduler.StartAsync()
	s.log.Info("Scheduler started", "jobs", len(s.scheduler.Jobs()),
		"check_interval", s.opts.CheckInterval.String(), "reminder_interval", s.opts.ReminderInterval.String())

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	if s.scheduler.IsRunning() {
		s.scheduler.Stop()
	}
}

// RunCheck re-checks the word list once. Failures are logged, the next run tries again.
func (s *Scheduler) RunCheck() {
	ctx, cancel := context.WithTimeout(s.ctx, checkTimeout)
	defer cancel()

	changed, err := s.checker.Check(ctx)
	if err != nil {
		s.log.Warn("Word list check failed", "error", err)
		return
	}
	if !changed {
		return
	}
	s.log.Info("Word list updated from source")
	if s.notifier == nil {
		return
	}
	if err := s.notifier.SendDeckUpdated(); err != nil {
		s.log.Error("Error announcing word list update", "error", err)
	}
}

// RunReminder notifies the owner about due cards inside the notification window
func (s *Scheduler) RunReminder() {
	hour := s.now().Hour()
	if !InNotificationHours(hour, s.opts.StartHour, s.opts.EndHour) {
		s.log.Debug("Outside notification hours, skipping reminder",
			"hour", hour, "start", s.opts.StartHour, "end", s.opts.EndHour)
		return
	}

	due := s.due.DueCount()
	if due == 0 {
		return
	}
	if err := s.notifier.SendReminder(due); err != nil {
		s.log.Error("Error sending reminder", "error", err)
	}
}

// InNotificationHours reports whether hour lies in the inclusive window start..end.
// A window with start after end wraps past midnight.
func InNotificationHours(hour, start, end int) bool {
	if start <= end {
		return hour >= start && hour <= end
	}
	return hour >= start || hour <= end
}
