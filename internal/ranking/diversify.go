package ranking

import (
	"github.com/vantage-labs/vantage/internal/contracts"
	"github.com/vantage-labs/vantage/pkg/logger"
)

// DiversifyConfig caps concentration in the diversified short-list
type DiversifyConfig struct {
	MaxPerSector   int `json:"max_per_sector"`
	MaxPerSymbol   int `json:"max_per_symbol"`
	MaxPerStrategy int `json:"max_per_strategy"`
}

// DefaultDiversifyConfig returns the default concentration caps
func DefaultDiversifyConfig() DiversifyConfig {
	return DiversifyConfig{
		MaxPerSector:   5,
		MaxPerSymbol:   3,
		MaxPerStrategy: 50,
	}
}

// Diversifier applies portfolio concentration caps to a sorted candidate walk
type Diversifier struct {
	config DiversifyConfig
	logger *logger.Logger
}

// NewDiversifier creates a new diversifier
func NewDiversifier(config DiversifyConfig, log *logger.Logger) *Diversifier {
	return &Diversifier{
		config: config,
		logger: log,
	}
}

// Apply walks candidates in the given order and accepts one only while its
// sector, symbol, and strategy counts are all below the caps. Rejected
// candidates are dropped, not deferred.
func (d *Diversifier) Apply(candidates []contracts.ScoredCandidate) []contracts.ScoredCandidate {
	sectorCount := make(map[string]int)
	symbolCount := make(map[string]int)
	strategyCount := make(map[string]int)

	accepted := make([]contracts.ScoredCandidate, 0, len(candidates))
	dropped := 0

	for _, c := range candidates {
		if sectorCount[c.Sector] >= d.config.MaxPerSector {
			dropped++
			continue
		}
		if symbolCount[c.Symbol] >= d.config.MaxPerSymbol {
			dropped++
			continue
		}
		if strategyCount[c.Strategy] >= d.config.MaxPerStrategy {
			dropped++
			continue
		}

		sectorCount[c.Sector]++
		symbolCount[c.Symbol]++
		strategyCount[c.Strategy]++
		accepted = append(accepted, c)
	}

	d.logger.WithFields(map[string]interface{}{
		"input":    len(candidates),
		"accepted": len(accepted),
		"dropped":  dropped,
	}).Debug("Diversification filter applied")

	return accepted
}
