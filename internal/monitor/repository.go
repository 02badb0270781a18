package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vantage-labs/vantage/internal/contracts"
)

// PositionRepository stores open positions in PostgreSQL
type PositionRepository struct {
	pool *pgxpool.Pool
}

func NewPositionRepository(pool *pgxpool.Pool) *PositionRepository {
	return &PositionRepository{pool: pool}
}

const positionColumns = `
	id, symbol, strategy, entry_date, expiration,
	short_strike, long_strike, credit_received, contracts,
	ips_score, status,
	current_price, spread_price, pl_dollar, pl_percent, last_checked_at
`

// GetActive returns all positions with active status
func (r *PositionRepository) GetActive(ctx context.Context) ([]contracts.ActivePosition, error) {
	query := `
		SELECT ` + positionColumns + `
		FROM monitor.positions
		WHERE status = 'active'
		ORDER BY expiration ASC, symbol ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query active positions: %w", err)
	}
	defer rows.Close()

	positions := make([]contracts.ActivePosition, 0)
	for rows.Next() {
		pos, err := scanPosition(rows)
		if err != nil {
			return nil, err
		}
		positions = append(positions, *pos)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("position rows error: %w", err)
	}

	return positions, nil
}

// GetByID loads one position
func (r *PositionRepository) GetByID(ctx context.Context, id string) (*contracts.ActivePosition, error) {
	query := `
		SELECT ` + positionColumns + `
		FROM monitor.positions
		WHERE id = $1
	`

	row := r.pool.QueryRow(ctx, query, id)
	pos, err := scanPosition(row)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("position not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return pos, nil
}

// UpdateLive writes the monitor-owned live fields. Entry terms are immutable
// and never touched here.
func (r *PositionRepository) UpdateLive(ctx context.Context, pos *contracts.ActivePosition) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE monitor.positions SET
			current_price = $2,
			spread_price = $3,
			pl_dollar = $4,
			pl_percent = $5,
			last_checked_at = $6
		WHERE id = $1
	`, pos.ID, pos.CurrentPrice, pos.SpreadPrice, pos.PLDollar, pos.PLPercent, pos.LastCheckedAt)
	if err != nil {
		return fmt.Errorf("failed to update position %s: %w", pos.ID, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPosition(row rowScanner) (*contracts.ActivePosition, error) {
	var pos contracts.ActivePosition
	err := row.Scan(
		&pos.ID, &pos.Symbol, &pos.Strategy, &pos.EntryDate, &pos.Expiration,
		&pos.ShortStrike, &pos.LongStrike, &pos.CreditReceived, &pos.Contracts,
		&pos.IPSScore, &pos.Status,
		&pos.CurrentPrice, &pos.SpreadPrice, &pos.PLDollar, &pos.PLPercent, &pos.LastCheckedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan position: %w", err)
	}
	return &pos, nil
}

// ResultRepository persists monitoring snapshots. Rows are append-only;
// history queries read them back in insertion order.
type ResultRepository struct {
	pool *pgxpool.Pool
}

func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// Append inserts one immutable snapshot. Alerts and recommendations are
// stored as JSONB so the persisted ordering survives round trips.
func (r *ResultRepository) Append(ctx context.Context, result *contracts.MonitorResult) error {
	alertsJSON, err := json.Marshal(result.Alerts)
	if err != nil {
		return fmt.Errorf("failed to marshal alerts: %w", err)
	}
	recsJSON, err := json.Marshal(result.Recommendations)
	if err != nil {
		return fmt.Errorf("failed to marshal recommendations: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO monitor.results (
			id, position_id, symbol, created_at,
			days_held, dte,
			spread_mid, pl_dollar, pl_percent,
			should_exit, exit_type, exit_reason, warning,
			alerts, risk_level, recommendations,
			paid_calls, degraded
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9,
			$10, $11, $12, $13, $14, $15, $16, $17, $18
		)
	`,
		result.ID, result.PositionID, result.Symbol, result.CreatedAt,
		result.DaysHeld, result.DTE,
		result.PL.SpreadMid, result.PL.PLDollar, result.PL.PLPercent,
		result.PL.ShouldExit, string(result.PL.ExitType), result.PL.ExitReason, result.PL.Warning,
		alertsJSON, string(result.RiskLevel), recsJSON,
		result.PaidCalls, result.Degraded,
	)
	if err != nil {
		return fmt.Errorf("failed to append monitor result: %w", err)
	}
	return nil
}

const resultColumns = `
	id, position_id, symbol, created_at,
	days_held, dte,
	spread_mid, pl_dollar, pl_percent,
	should_exit, exit_type, exit_reason, warning,
	alerts, risk_level, recommendations,
	paid_calls, degraded
`

// GetLatest returns the most recent snapshot for a position, or nil when
// the position has never been monitored
func (r *ResultRepository) GetLatest(ctx context.Context, positionID string) (*contracts.MonitorResult, error) {
	query := `
		SELECT ` + resultColumns + `
		FROM monitor.results
		WHERE position_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	result, err := scanResult(r.pool.QueryRow(ctx, query, positionID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetHistory returns snapshots since the given time, oldest first
func (r *ResultRepository) GetHistory(ctx context.Context, positionID string, since time.Time) ([]contracts.MonitorResult, error) {
	query := `
		SELECT ` + resultColumns + `
		FROM monitor.results
		WHERE position_id = $1 AND created_at >= $2
		ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, positionID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query result history: %w", err)
	}
	defer rows.Close()

	results := make([]contracts.MonitorResult, 0)
	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("result rows error: %w", err)
	}

	return results, nil
}

func scanResult(row rowScanner) (*contracts.MonitorResult, error) {
	var (
		result     contracts.MonitorResult
		exitType   string
		riskLevel  string
		alertsJSON []byte
		recsJSON   []byte
	)
	err := row.Scan(
		&result.ID, &result.PositionID, &result.Symbol, &result.CreatedAt,
		&result.DaysHeld, &result.DTE,
		&result.PL.SpreadMid, &result.PL.PLDollar, &result.PL.PLPercent,
		&result.PL.ShouldExit, &exitType, &result.PL.ExitReason, &result.PL.Warning,
		&alertsJSON, &riskLevel, &recsJSON,
		&result.PaidCalls, &result.Degraded,
	)
	if err == pgx.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan monitor result: %w", err)
	}

	result.PL.ExitType = contracts.ExitType(exitType)
	result.RiskLevel = contracts.RiskLevel(riskLevel)
	if err := json.Unmarshal(alertsJSON, &result.Alerts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal alerts: %w", err)
	}
	if err := json.Unmarshal(recsJSON, &result.Recommendations); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recommendations: %w", err)
	}

	return &result, nil
}
