package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pattern-scanner/internal/scanner"
)

// Repository stores scan results and serves detection history.
type Repository struct {
	db *DB
}

// NewRepository creates a repository over the connection pool.
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// DetectionRecord is a persisted detection row.
type DetectionRecord struct {
	ID         int64           `json:"id"`
	ScanID     string          `json:"scan_id"`
	Symbol     string          `json:"symbol"`
	Timeframe  string          `json:"timeframe"`
	Pattern    string          `json:"pattern"`
	Confidence float64         `json:"confidence"`
	Entry      float64         `json:"entry"`
	StopLoss   float64         `json:"stop_loss"`
	Target1    float64         `json:"target1"`
	Target2    float64         `json:"target2"`
	Target3    float64         `json:"target3,omitempty"`
	Valid      bool            `json:"levels_valid"`
	Info       json.RawMessage `json:"info,omitempty"`
	DetectedAt time.Time       `json:"detected_at"`
}

// SaveScan persists a scan and its detections in one transaction.
func (r *Repository) SaveScan(ctx context.Context, result *scanner.ScanResult) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO scans (id, started_at, finished_at, duration_ms, symbols_scanned, errors, gap_risk)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		result.ScanID, result.StartTime, result.EndTime, result.Duration.Milliseconds(),
		result.SymbolsScanned, result.Errors, result.Context.GapRisk,
	)
	if err != nil {
		return fmt.Errorf("insert scan: %w", err)
	}

	for _, det := range result.Detections {
		info, err := json.Marshal(det.Result.Info)
		if err != nil {
			info = nil
		}
		var entry, stop, t1, t2, t3 float64
		if det.Levels != nil {
			entry, stop = det.Levels.Entry, det.Levels.Stop
			t1, t2, t3 = det.Levels.Target1, det.Levels.Target2, det.Levels.Target3
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO detections
			 (scan_id, symbol, timeframe, pattern, confidence, entry, stop_loss,
			  target1, target2, target3, levels_valid, info, detected_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			result.ScanID, det.Result.Symbol, string(det.Result.Timeframe),
			string(det.Result.Pattern), det.Result.Confidence,
			entry, stop, t1, t2, t3, det.Validation.Valid, info, det.Result.ScannedAt,
		)
		if err != nil {
			return fmt.Errorf("insert detection: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// GetRecentDetections returns the latest detections, newest first.
func (r *Repository) GetRecentDetections(ctx context.Context, limit int) ([]DetectionRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, scan_id, symbol, timeframe, pattern, confidence,
		        entry, stop_loss, target1, target2, target3, levels_valid, info, detected_at
		 FROM detections ORDER BY detected_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query detections: %w", err)
	}
	defer rows.Close()

	return scanDetectionRows(rows)
}

// GetDetectionsBySymbol returns a symbol's detection history.
func (r *Repository) GetDetectionsBySymbol(ctx context.Context, symbol string, limit int) ([]DetectionRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, scan_id, symbol, timeframe, pattern, confidence,
		        entry, stop_loss, target1, target2, target3, levels_valid, info, detected_at
		 FROM detections WHERE symbol = $1 ORDER BY detected_at DESC LIMIT $2`, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("query detections for %s: %w", symbol, err)
	}
	defer rows.Close()

	return scanDetectionRows(rows)
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanDetectionRows(rows rowScanner) ([]DetectionRecord, error) {
	var records []DetectionRecord
	for rows.Next() {
		var rec DetectionRecord
		if err := rows.Scan(
			&rec.ID, &rec.ScanID, &rec.Symbol, &rec.Timeframe, &rec.Pattern,
			&rec.Confidence, &rec.Entry, &rec.StopLoss, &rec.Target1,
			&rec.Target2, &rec.Target3, &rec.Valid, &rec.Info, &rec.DetectedAt,
		); err != nil {
			return nil, fmt.Errorf("scan detection row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Interface check against the scanner's persistence seam.
var _ scanner.DetectionStore = (*Repository)(nil)
