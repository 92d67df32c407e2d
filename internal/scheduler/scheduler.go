package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/KotFed0t/tinkoff_report_bot/utils"
	"github.com/go-co-op/gocron/v2"
)

type taskFn func(ctx context.Context) error

type Scheduler struct {
	scheduler gocron.Scheduler
}

func New() *Scheduler {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		panic(err.Error())
	}
	return &Scheduler{scheduler: scheduler}
}

func (s *Scheduler) Start() {
	s.scheduler.Start()
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	if err := s.scheduler.Shutdown(); err != nil {
		slog.Error("Scheduler shutdown error", slog.String("err", err.Error()))
	}
}

// createJob runs jobs in singleton mode: a run that is due while the previous one
// is still going is skipped.
func (s *Scheduler) createJob(jobDefinition gocron.JobDefinition, name string, fn taskFn, startImmediately bool) {
	opts := []gocron.JobOption{
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	}

	if startImmediately {
		opts = append(opts, gocron.WithStartAt(gocron.WithStartImmediately()))
	}

	_, err := s.scheduler.NewJob(
		jobDefinition,
		gocron.NewTask(taskWithRecover(fn, name)),
		opts...,
	)

	if err != nil {
		slog.Error("Scheduler creating job error", slog.String("jobName", name), slog.String("err", err.Error()))
		panic(err.Error())
	}
}

func (s *Scheduler) NewIntervalJob(name string, fn taskFn, interval time.Duration, startImmediately bool) {
	s.createJob(gocron.DurationJob(interval), name, fn, startImmediately)
}

// NewCrontabJob expects a crontab with seconds, e.g. "0 0 10 * * *".
func (s *Scheduler) NewCrontabJob(name string, fn taskFn, crontab string, startImmediately bool) {
	s.createJob(gocron.CronJob(crontab, true), name, fn, startImmediately)
}

func taskWithRecover(fn taskFn, jobName string) func(ctx context.Context) {
	return func(ctx context.Context) {
		ctx = utils.WithNewRqID(ctx)
		rqID := utils.GetRequestIDFromCtx(ctx)
		start := time.Now()

		defer func() {
			if r := recover(); r != nil {
				slog.Error(
					"Panic recovered in scheduler job",
					slog.String("rqID", rqID),
					slog.String("jobName", jobName),
					slog.Any("panic", r),
					slog.String("stacktrace", string(debug.Stack())),
				)
			}
		}()

		slog.Info("job start", slog.String("rqID", rqID), slog.String("jobName", jobName))

		err := fn(ctx)
		duration := fmt.Sprintf("%.2fs", time.Since(start).Seconds())
		if err != nil {
			slog.Error("job failed", slog.String("rqID", rqID), slog.String("jobName", jobName), slog.String("duration", duration), slog.String("err", err.Error()))
		} else {
			slog.Info("job completed", slog.String("rqID", rqID), slog.String("jobName", jobName), slog.String("duration", duration))
		}
	}
}
