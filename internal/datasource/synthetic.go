package datasource

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"pattern-scanner/internal/market"
)

// Synthetic generates deterministic OHLCV series without touching the
// network. The same symbol, timeframe, and limit always produce the same
// bars, which makes scanner runs reproducible in development and tests.
type Synthetic struct {
	mu      sync.RWMutex
	seed    int64
	symbols map[string]float64 // symbol -> base price
}

// NewSynthetic creates a generator over a default symbol universe.
func NewSynthetic(seed int64) *Synthetic {
	return &Synthetic{
		seed: seed,
		symbols: map[string]float64{
			"BTCUSDT":  65000,
			"ETHUSDT":  3200,
			"SOLUSDT":  145,
			"BNBUSDT":  580,
			"ADAUSDT":  0.45,
			"XRPUSDT":  0.52,
			"DOGEUSDT": 0.12,
			"LINKUSDT": 14.5,
		},
	}
}

// AddSymbol registers a symbol with its base price.
func (s *Synthetic) AddSymbol(symbol string, basePrice float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.symbols[symbol] = basePrice
}

// GetSeries generates a random-walk series seeded by symbol and timeframe.
func (s *Synthetic) GetSeries(_ context.Context, symbol string, tf market.Timeframe, limit int) (*market.Series, error) {
	s.mu.RLock()
	base, ok := s.symbols[symbol]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown symbol %s", symbol)
	}
	if limit <= 0 {
		limit = 100
	}

	rng := rand.New(rand.NewSource(s.seed ^ int64(hashString(symbol+string(tf)))))

	step := 24 * time.Hour
	switch tf {
	case market.Weekly:
		step = 7 * 24 * time.Hour
	case market.FourHour:
		step = 4 * time.Hour
	}
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	bars := make([]market.Bar, 0, limit)
	price := base
	baseVolume := 1_000_000 / math.Max(base, 0.01)
	for i := 0; i < limit; i++ {
		drift := rng.NormFloat64() * 0.018
		open := price
		close := open * (1 + drift)
		spread := math.Abs(rng.NormFloat64()) * 0.012
		high := math.Max(open, close) * (1 + spread)
		low := math.Min(open, close) * (1 - spread)
		volume := baseVolume * (0.6 + rng.Float64())

		bars = append(bars, market.Bar{
			Time:   start.Add(time.Duration(i) * step),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  close,
			Volume: volume,
		})
		price = close
	}

	return &market.Series{Symbol: symbol, Timeframe: tf, Bars: bars}, nil
}

// GetCurrentPrice returns the last close of a default-length series.
func (s *Synthetic) GetCurrentPrice(ctx context.Context, symbol string) (float64, error) {
	series, err := s.GetSeries(ctx, symbol, market.Daily, 100)
	if err != nil {
		return 0, err
	}
	return series.Last().Close, nil
}

// GetAllSymbols lists the registered symbols in stable order.
func (s *Synthetic) GetAllSymbols(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	symbols := make([]string, 0, len(s.symbols))
	for sym := range s.symbols {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)
	return symbols, nil
}

func hashString(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}
