package scheduler

import (
	"testing"

	"github.com/rs/zerolog"

	"pattern-scanner/internal/datasource"
	"pattern-scanner/internal/market"
	"pattern-scanner/internal/patterns"
	"pattern-scanner/internal/risk"
	"pattern-scanner/internal/scanner"
)

func testScheduler() *Scheduler {
	pcfg := patterns.DefaultConfig()
	sc := scanner.NewScanner(
		datasource.NewSynthetic(1),
		patterns.NewEngine(pcfg),
		risk.NewCalculator(risk.DefaultConfig(), pcfg),
		nil,
		nil,
		scanner.Config{Symbols: []string{"BTCUSDT"}, Timeframes: []market.Timeframe{market.Daily}},
		zerolog.Nop(),
	)
	return New(sc)
}

// TestRegisterScan tests cron expression validation.
func TestRegisterScan(t *testing.T) {
	s := testScheduler()

	if err := s.RegisterScan("0 30 9 * * 1-5"); err != nil {
		t.Errorf("a valid six-field expression should register, got %v", err)
	}
	if err := s.RegisterScan("not a schedule"); err == nil {
		t.Error("an invalid expression should be rejected")
	}

	s.Start()
	s.Stop()
}
