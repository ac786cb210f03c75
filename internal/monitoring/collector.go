// Package monitoring summarizes recorded discovery queries.
package monitoring

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leads-cli/internal/model"
)

// scanLimit bounds how many recent queries one snapshot inspects.
const scanLimit = 10000

// MetricsSnapshot holds a point-in-time view of discovery activity.
type MetricsSnapshot struct {
	QueriesTotal    int     `json:"queries_total" yaml:"queries_total"`
	QueriesComplete int     `json:"queries_complete" yaml:"queries_complete"`
	QueriesFailed   int     `json:"queries_failed" yaml:"queries_failed"`
	QueriesRunning  int     `json:"queries_running" yaml:"queries_running"`
	FailRate        float64 `json:"fail_rate" yaml:"fail_rate"`

	Leads          int     `json:"leads" yaml:"leads"`
	LeadsPerQuery  float64 `json:"leads_per_query" yaml:"leads_per_query"`
	AvgDurationSec float64 `json:"avg_duration_sec" yaml:"avg_duration_sec"`

	LookbackHours int       `json:"lookback_hours" yaml:"lookback_hours"`
	CollectedAt   time.Time `json:"collected_at" yaml:"collected_at"`
}

// QuerySource is the subset of store.Store the collector reads.
type QuerySource interface {
	ListQueries(ctx context.Context, limit int) ([]model.Query, error)
	ListLeads(ctx context.Context, queryID string) ([]model.Lead, error)
}

// Collector gathers metrics from the store.
type Collector struct {
	source QuerySource
	now    func() time.Time
}

// NewCollector creates a new metrics collector.
func NewCollector(source QuerySource) *Collector {
	return &Collector{source: source, now: time.Now}
}

// Collect gathers a snapshot over the given lookback window. A window of zero
// or less covers every recorded query.
func (c *Collector) Collect(ctx context.Context, lookbackHours int) (*MetricsSnapshot, error) {
	now := c.now().UTC()
	snap := &MetricsSnapshot{
		LookbackHours: lookbackHours,
		CollectedAt:   now,
	}

	queries, err := c.source.ListQueries(ctx, scanLimit)
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: list queries")
	}

	var cutoff time.Time
	if lookbackHours > 0 {
		cutoff = now.Add(-time.Duration(lookbackHours) * time.Hour)
	}

	var totalDur time.Duration
	var timed int
	for _, q := range queries {
		if q.CreatedAt.Before(cutoff) {
			continue
		}
		snap.QueriesTotal++

		switch q.Status {
		case model.QueryStatusComplete:
			snap.QueriesComplete++
		case model.QueryStatusFailed:
			snap.QueriesFailed++
		case model.QueryStatusRunning:
			snap.QueriesRunning++
		}
		if q.FinishedAt != nil {
			totalDur += q.FinishedAt.Sub(q.CreatedAt)
			timed++
		}

		found, err := c.source.ListLeads(ctx, q.ID)
		if err != nil {
			return nil, eris.Wrapf(err, "monitoring: list leads for %s", q.ID)
		}
		snap.Leads += len(found)
	}

	if finished := snap.QueriesComplete + snap.QueriesFailed; finished > 0 {
		snap.FailRate = float64(snap.QueriesFailed) / float64(finished)
	}
	if snap.QueriesTotal > 0 {
		snap.LeadsPerQuery = float64(snap.Leads) / float64(snap.QueriesTotal)
	}
	if timed > 0 {
		snap.AvgDurationSec = totalDur.Seconds() / float64(timed)
	}

	return snap, nil
}
