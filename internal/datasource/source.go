// Package datasource supplies OHLCV series to the scanner, either from a
// live exchange REST API or a deterministic synthetic generator.
package datasource

import (
	"context"

	"pattern-scanner/internal/market"
)

// Source is where the scanner gets its price series. Implementations must
// be safe for concurrent use.
type Source interface {
	// GetSeries returns up to limit bars for the symbol, oldest first.
	GetSeries(ctx context.Context, symbol string, tf market.Timeframe, limit int) (*market.Series, error)

	// GetCurrentPrice returns the latest trade price for the symbol.
	GetCurrentPrice(ctx context.Context, symbol string) (float64, error)

	// GetAllSymbols lists the symbols the source can serve.
	GetAllSymbols(ctx context.Context) ([]string, error)
}

// Compile-time interface checks.
var (
	_ Source = (*Client)(nil)
	_ Source = (*Synthetic)(nil)
)
