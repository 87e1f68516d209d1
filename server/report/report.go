// Package report publishes a periodic enrollment summary of the registry.
//
// On each tick of its cron schedule the Reporter records every activity's
// participant count and capacity as metrics and logs a one-line roster
// summary. It only reads the registry.
//
// Example usage:
//
//	r, err := report.New("0 7 * * 1-5", reg, svcMetrics, logger)
//	if err != nil {
//	    return err
//	}
//	r.Start(ctx) // returns immediately, runs until ctx is cancelled
package report

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nomis52/signupd/registry"
	"github.com/robfig/cron/v3"
)

// ErrInvalidSchedule is returned when the cron specification cannot be parsed.
var ErrInvalidSchedule = errors.New("invalid report schedule")

// Source provides the activities to report on.
type Source interface {
	List() map[string]registry.Activity
}

// Sink receives the enrollment figures.
type Sink interface {
	SetEnrollment(activity string, participants, maxParticipants int)
	SetReportTime(unixSeconds int64)
}

// Summary is the outcome of a single report.
type Summary struct {
	Activities   int
	Participants int
	// Oversubscribed names activities with more participants than their advertised capacity.
	Oversubscribed []string
}

// Reporter runs enrollment reports on a cron schedule.
type Reporter struct {
	spec     string
	schedule cron.Schedule
	source   Source
	sink     Sink
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a Reporter for the given 5 field cron spec
// (minute, hour, day of month, month, day of week).
func New(spec string, source Source, sink Sink, logger *slog.Logger) (*Reporter, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(spec)
	if err != nil {
		return nil, errors.Join(ErrInvalidSchedule, err)
	}

	return &Reporter{
		spec:     spec,
		schedule: schedule,
		source:   source,
		sink:     sink,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Start launches a goroutine that reports on schedule until ctx is cancelled.
func (r *Reporter) Start(ctx context.Context) {
	go r.loop(ctx)
}

// NextRun returns the next scheduled report time from now.
func (r *Reporter) NextRun() time.Time {
	return r.schedule.Next(r.now())
}

// Report records the current enrollment once.
func (r *Reporter) Report() Summary {
	activities := r.source.List()

	summary := Summary{Activities: len(activities)}
	for _, name := range registry.Sorted(activities) {
		a := activities[name]
		summary.Participants += len(a.Participants)
		if len(a.Participants) > a.MaxParticipants {
			summary.Oversubscribed = append(summary.Oversubscribed, name)
		}
		r.sink.SetEnrollment(name, len(a.Participants), a.MaxParticipants)
	}
	r.sink.SetReportTime(r.now().Unix())

	r.logger.Info("enrollment report",
		"activities", summary.Activities,
		"participants", summary.Participants,
		"oversubscribed", summary.Oversubscribed,
	)
	return summary
}

func (r *Reporter) loop(ctx context.Context) {
	for {
		next := r.schedule.Next(r.now())
		wait := time.Until(next)

		r.logger.Debug("waiting for next enrollment report", "next_run", next, "wait_duration", wait)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			r.logger.Info("enrollment reporter shutting down")
			return
		case <-timer.C:
			r.Report()
		}
	}
}
