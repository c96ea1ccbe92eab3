// Package scheduler runs calendar-based scans on top of the scanner's
// interval loop. Cron expressions let operators align scans with market
// opens instead of a fixed tick.
package scheduler

import (
	"fmt"

	"github.com/robfig/cron/v3"

	"pattern-scanner/internal/logging"
	"pattern-scanner/internal/scanner"
)

// Scheduler manages cron-triggered scan tasks.
type Scheduler struct {
	cron    *cron.Cron
	scanner *scanner.Scanner
	logger  *logging.Logger
}

// New creates a scheduler around an existing scanner.
func New(sc *scanner.Scanner) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		scanner: sc,
		logger:  logging.WithComponent("scheduler"),
	}
}

// RegisterScan registers a scan at the given cron schedule. The expression
// uses six fields (with seconds), e.g. "0 30 9 * * 1-5" for weekday opens.
func (s *Scheduler) RegisterScan(schedule string) error {
	if _, err := s.cron.AddFunc(schedule, s.runScan); err != nil {
		return fmt.Errorf("register scan schedule %q: %w", schedule, err)
	}
	s.logger.Info("Registered scan schedule", "schedule", schedule)
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Scheduler started")
}

// Stop stops the cron scheduler. Running jobs finish; no new ones fire.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Info("Scheduler stopped")
}

func (s *Scheduler) runScan() {
	s.logger.Info("Cron scan triggered")
	result := s.scanner.Scan()
	s.logger.Info("Cron scan finished",
		"scan_id", result.ScanID,
		"detections", len(result.Detections),
		"duration", result.Duration.String())
}
