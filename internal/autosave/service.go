// Package autosave writes the working document back to disk on a cron
// schedule and once more at shutdown.
package autosave

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	robfigcron "github.com/robfig/cron/v3"
)

// Saver is the document surface autosave needs.
type Saver interface {
	Dirty() bool
	Save() error
}

// Stats reports what the service has done so far.
type Stats struct {
	Saves     int
	LastSave  time.Time
	LastError string
}

// Service saves a Saver whenever its schedule fires and the Saver is dirty.
type Service struct {
	saver    Saver
	spec     string
	schedule robfigcron.Schedule
	robfig   *robfigcron.Cron

	mu    sync.Mutex
	stats Stats
}

// NewService parses spec, a standard five-field cron expression or a
// descriptor such as "@every 30s".
func NewService(saver Saver, spec string) (*Service, error) {
	sched, err := robfigcron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("autosave schedule %q: %w", spec, err)
	}
	return &Service{
		saver:    saver,
		spec:     spec,
		schedule: sched,
		robfig:   robfigcron.New(),
	}, nil
}

// Spec returns the schedule the service was built with.
func (s *Service) Spec() string { return s.spec }

// Start arms the schedule and blocks until ctx is cancelled. A final save
// runs after the scheduler has stopped.
func (s *Service) Start(ctx context.Context) error {
	s.robfig.Schedule(s.schedule, robfigcron.FuncJob(func() { s.SaveNow() }))
	s.robfig.Start()
	slog.Info("autosave: started", "schedule", s.spec)

	<-ctx.Done()

	<-s.robfig.Stop().Done()
	if err := s.SaveNow(); err != nil {
		slog.Error("autosave: final save failed", "err", err)
	}
	slog.Info("autosave: stopped")
	return ctx.Err()
}

// SaveNow saves the document if it has unsaved changes.
func (s *Service) SaveNow() error {
	if !s.saver.Dirty() {
		return nil
	}
	err := s.saver.Save()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.stats.LastError = err.Error()
		slog.Warn("autosave: save failed", "err", err)
		return err
	}
	s.stats.Saves++
	s.stats.LastSave = time.Now()
	s.stats.LastError = ""
	slog.Debug("autosave: saved", "count", s.stats.Saves)
	return nil
}

// Stats returns a snapshot of the service's counters.
func (s *Service) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}
