// Command scan runs a single detection pass over one or more symbols and
// prints the results. Useful for spot checks without the full service.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"pattern-scanner/config"
	"pattern-scanner/internal/datasource"
	"pattern-scanner/internal/market"
	"pattern-scanner/internal/patterns"
	"pattern-scanner/internal/risk"
	"pattern-scanner/internal/timing"
)

func main() {
	var (
		symbolsFlag = flag.String("symbols", "", "Comma-separated symbols (default: full source universe)")
		tfFlag      = flag.String("timeframe", "1d", "Timeframe: 1d, 1w or 4h")
		limitFlag   = flag.Int("limit", 200, "Bars to fetch per symbol")
		mockFlag    = flag.Bool("mock", false, "Use deterministic synthetic data")
		aggressive  = flag.Bool("aggressive", false, "Use the lower detection threshold")
		showTiming  = flag.Bool("timing", true, "Apply market timing adjustments")
		allFlag     = flag.Bool("all", false, "Print undetected patterns too")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	var source datasource.Source
	if *mockFlag || cfg.DataSourceConfig.MockMode {
		source = datasource.NewSynthetic(cfg.DataSourceConfig.MockSeed)
	} else {
		source = datasource.NewClient(cfg.DataSourceConfig.BaseURL)
	}

	patternCfg := patterns.DefaultConfig()
	if *aggressive {
		patternCfg = patterns.AggressiveConfig()
	}
	engine := patterns.NewEngine(patternCfg)
	calculator := risk.NewCalculator(risk.DefaultConfig(), patternCfg)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var symbols []string
	if *symbolsFlag != "" {
		symbols = strings.Split(*symbolsFlag, ",")
	} else {
		symbols, err = source.GetAllSymbols(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "list symbols: %v\n", err)
			os.Exit(1)
		}
	}

	tf := market.ParseTimeframe(*tfFlag)
	marketCtx := timing.NewMarketContext(time.Now())

	fmt.Printf("Scanning %d symbols (%s)\n", len(symbols), tf)
	if marketCtx.Warning != "" {
		fmt.Printf("Timing: %s\n", marketCtx.Warning)
	}
	fmt.Println()

	found := 0
	for _, symbol := range symbols {
		symbol = strings.TrimSpace(symbol)
		series, err := source.GetSeries(ctx, symbol, tf, *limitFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", symbol, err)
			continue
		}

		for _, res := range engine.DetectAll(series) {
			if !res.Detected && !*allFlag {
				continue
			}
			if *showTiming {
				timing.AdjustConfidence(&res, marketCtx)
			}
			found++
			printResult(symbol, res, calculator.Calculate(series, res))
		}
	}

	fmt.Printf("\n%d patterns found\n", found)
}

func printResult(symbol string, res patterns.Result, lv *patterns.Levels) {
	status := "DETECTED"
	if !res.Detected {
		status = "below threshold"
	}
	fmt.Printf("%-12s %-28s %5.1f%%  (%s)\n", symbol, res.Pattern, res.Confidence, status)

	if lv == nil {
		return
	}
	summary := risk.Summarize(lv)
	fmt.Printf("    entry %s  stop %s (%s risk)  t1 %s (%s)  t2 %s (%s)\n",
		summary.EntryPrice, summary.StopLoss, summary.RiskPercentage,
		summary.Target1.Price, summary.Target1.RRRatio,
		summary.Target2.Price, summary.Target2.RRRatio)

	validation := risk.ValidateLevels(lv)
	if !validation.Valid {
		fmt.Printf("    levels invalid: %s\n", strings.Join(validation.Issues, "; "))
	}
}
