package ips

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vantage-labs/vantage/internal/contracts"
)

// Repository loads IPS factor sets from PostgreSQL
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new IPS repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetIPS loads one factor set with its factors in display order
func (r *Repository) GetIPS(ctx context.Context, ipsID string) (*contracts.IPSConfig, error) {
	query := `
		SELECT ips_id, name, min_dte, max_dte
		FROM ips.configs
		WHERE ips_id = $1
	`

	var cfg contracts.IPSConfig
	err := r.pool.QueryRow(ctx, query, ipsID).Scan(
		&cfg.ID, &cfg.Name, &cfg.MinDTE, &cfg.MaxDTE,
	)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("ips not found: %s", ipsID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ips: %w", err)
	}

	factors, err := r.getFactors(ctx, ipsID)
	if err != nil {
		return nil, err
	}
	cfg.Factors = factors

	return &cfg, nil
}

// SaveIPS upserts a factor set and replaces its factors
func (r *Repository) SaveIPS(ctx context.Context, cfg *contracts.IPSConfig) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO ips.configs (ips_id, name, min_dte, max_dte)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (ips_id) DO UPDATE SET
			name = EXCLUDED.name,
			min_dte = EXCLUDED.min_dte,
			max_dte = EXCLUDED.max_dte
	`, cfg.ID, cfg.Name, cfg.MinDTE, cfg.MaxDTE)
	if err != nil {
		return fmt.Errorf("failed to save ips config: %w", err)
	}

	_, err = tx.Exec(ctx, `DELETE FROM ips.factors WHERE ips_id = $1`, cfg.ID)
	if err != nil {
		return fmt.Errorf("failed to clear factors: %w", err)
	}

	for i, f := range cfg.Factors {
		_, err = tx.Exec(ctx, `
			INSERT INTO ips.factors (
				ips_id, position, factor_key, display_name, weight,
				direction, threshold, threshold_max, enabled
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, cfg.ID, i, f.Key, f.DisplayName, f.Weight,
			f.Direction, f.Threshold, f.ThresholdMax, f.Enabled)
		if err != nil {
			return fmt.Errorf("failed to save factor %s: %w", f.Key, err)
		}
	}

	return tx.Commit(ctx)
}

// getFactors loads the ordered factor definitions for a set
func (r *Repository) getFactors(ctx context.Context, ipsID string) ([]contracts.FactorDefinition, error) {
	query := `
		SELECT factor_key, display_name, weight, direction, threshold, threshold_max, enabled
		FROM ips.factors
		WHERE ips_id = $1
		ORDER BY position ASC
	`

	rows, err := r.pool.Query(ctx, query, ipsID)
	if err != nil {
		return nil, fmt.Errorf("failed to query factors: %w", err)
	}
	defer rows.Close()

	factors := make([]contracts.FactorDefinition, 0)

	for rows.Next() {
		var f contracts.FactorDefinition
		err := rows.Scan(
			&f.Key, &f.DisplayName, &f.Weight, &f.Direction,
			&f.Threshold, &f.ThresholdMax, &f.Enabled,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan factor: %w", err)
		}
		factors = append(factors, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("factor rows error: %w", err)
	}

	return factors, nil
}
