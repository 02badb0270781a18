package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vantage-labs/vantage/internal/contracts"
)

func watchPosition(ipsScore, currentPrice float64, dte int, now time.Time) *contracts.ActivePosition {
	return &contracts.ActivePosition{
		ID:           "pos-1",
		Symbol:       "AAPL",
		ShortStrike:  100,
		LongStrike:   95,
		IPSScore:     ipsScore,
		CurrentPrice: currentPrice,
		Expiration:   now.AddDate(0, 0, dte),
	}
}

func TestInWatchSet(t *testing.T) {
	cfg := contracts.DefaultMonitorConfig()
	now := time.Now().UTC()

	tests := []struct {
		name string
		pos  *contracts.ActivePosition
		last *contracts.MonitorResult
		want bool
	}{
		{
			// Strong score, far from the strike, plenty of time
			name: "healthy position excluded",
			pos:  watchPosition(80, 110, 20, now),
			want: false,
		},
		{
			name: "low ips score included",
			pos:  watchPosition(70, 110, 20, now),
			want: true,
		},
		{
			name: "near short strike included",
			pos:  watchPosition(80, 103, 20, now),
			want: true,
		},
		{
			name: "short dte included",
			pos:  watchPosition(80, 110, 10, now),
			want: true,
		},
		{
			name: "last result high risk included",
			pos:  watchPosition(80, 110, 20, now),
			last: &contracts.MonitorResult{RiskLevel: contracts.RiskHigh},
			want: true,
		},
		{
			name: "last result critical included",
			pos:  watchPosition(80, 110, 20, now),
			last: &contracts.MonitorResult{RiskLevel: contracts.RiskCritical},
			want: true,
		},
		{
			name: "last result medium not enough",
			pos:  watchPosition(80, 110, 20, now),
			last: &contracts.MonitorResult{RiskLevel: contracts.RiskMedium},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InWatchSet(tt.pos, tt.last, now, cfg))
		})
	}
}

func TestFilterWatchSet_PreservesOrder(t *testing.T) {
	cfg := contracts.DefaultMonitorConfig()
	now := time.Now().UTC()

	a := watchPosition(70, 110, 20, now)
	a.ID = "a"
	b := watchPosition(80, 110, 20, now) // healthy, excluded
	b.ID = "b"
	c := watchPosition(80, 110, 10, now)
	c.ID = "c"

	watched := FilterWatchSet([]*contracts.ActivePosition{a, b, c}, nil, now, cfg)

	assert.Len(t, watched, 2)
	assert.Equal(t, "a", watched[0].ID)
	assert.Equal(t, "c", watched[1].ID)
}
