// Package monitoring tracks entities across analyses: it snapshots
// each risk report, detects changes between consecutive snapshots, and
// raises severity-ranked alerts for score jumps and new anomalies.
package monitoring

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Adahandles/ledgertrace/internal/entity"
)

// Alert severities, lowest to highest.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Snapshot captures one analysis result for change tracking.
type Snapshot struct {
	EntityName string   `json:"entity_name"`
	Timestamp  string   `json:"timestamp"`
	RiskScore  int      `json:"risk_score"`
	Tier       string   `json:"tier"`
	Anomalies  []string `json:"anomalies"`
	Checksum   string   `json:"checksum"`
}

// Alert describes one detected change between snapshots.
type Alert struct {
	EntityName            string `json:"entity_name"`
	AlertType             string `json:"alert_type"`
	Severity              string `json:"severity"`
	Description           string `json:"description"`
	OldValue              string `json:"old_value"`
	NewValue              string `json:"new_value"`
	Timestamp             string `json:"timestamp"`
	RequiresInvestigation bool   `json:"requires_investigation"`
}

// Report summarizes the tracked history for one entity.
type Report struct {
	EntityName    string     `json:"entity_name"`
	SnapshotCount int        `json:"snapshot_count"`
	LatestScore   int        `json:"latest_score"`
	LatestTier    string     `json:"latest_tier"`
	Alerts        []Alert    `json:"alerts"`
	History       []Snapshot `json:"history"`
}

// Store persists snapshot history per entity, newest first.
type Store interface {
	Append(ctx context.Context, snap Snapshot) error
	History(ctx context.Context, entityName string, limit int) ([]Snapshot, error)
}

// historyLimit bounds the per-entity history returned in reports.
const historyLimit = 20

// Monitor records snapshots and derives change alerts.
type Monitor struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

// New creates a Monitor over the given store.
func New(store Store, logger *zap.Logger) *Monitor {
	return &Monitor{store: store, logger: logger, now: time.Now}
}

// Record snapshots a report and returns alerts for changes since the
// previous snapshot. Store failures are logged; analysis must not fail
// because monitoring is unavailable.
func (m *Monitor) Record(ctx context.Context, rep *entity.Report) []Alert {
	if m == nil || m.store == nil || rep == nil {
		return nil
	}

	prev, err := m.store.History(ctx, rep.Name, 1)
	if err != nil {
		if m.logger != nil {
			m.logger.Warn("monitoring history read failed", zap.String("entity", rep.Name), zap.Error(err))
		}
		prev = nil
	}

	snap := m.snapshot(rep)
	var alerts []Alert
	if len(prev) > 0 && prev[0].Checksum != snap.Checksum {
		alerts = m.diff(prev[0], snap)
	}

	if err := m.store.Append(ctx, snap); err != nil && m.logger != nil {
		m.logger.Warn("monitoring snapshot write failed", zap.String("entity", rep.Name), zap.Error(err))
	}
	for _, a := range alerts {
		if m.logger != nil {
			m.logger.Info("entity change detected",
				zap.String("entity", a.EntityName),
				zap.String("alert_type", a.AlertType),
				zap.String("severity", a.Severity),
			)
		}
	}
	return alerts
}

// Report returns the tracked history and current alerts for an entity.
func (m *Monitor) Report(ctx context.Context, entityName string) (*Report, error) {
	history, err := m.store.History(ctx, entityName, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("monitoring history: %w", err)
	}

	rep := &Report{
		EntityName: entityName,
		History:    history,
		Alerts:     []Alert{},
	}
	rep.SnapshotCount = len(history)
	if len(history) > 0 {
		rep.LatestScore = history[0].RiskScore
		rep.LatestTier = history[0].Tier
	}
	if len(history) > 1 {
		rep.Alerts = m.diff(history[1], history[0])
	}
	return rep, nil
}

func (m *Monitor) snapshot(rep *entity.Report) Snapshot {
	snap := Snapshot{
		EntityName: rep.Name,
		Timestamp:  m.now().UTC().Format(time.RFC3339),
		RiskScore:  rep.RiskScore,
		Tier:       rep.Tier,
		Anomalies:  rep.Anomalies,
	}
	h := sha256.New()
	fmt.Fprintf(h, "%d|%s|%s", snap.RiskScore, snap.Tier, strings.Join(snap.Anomalies, "|"))
	snap.Checksum = hex.EncodeToString(h.Sum(nil)[:8])
	return snap
}

// diff compares two snapshots of the same entity, oldest first.
func (m *Monitor) diff(old, new Snapshot) []Alert {
	var alerts []Alert
	ts := m.now().UTC().Format(time.RFC3339)

	if delta := new.RiskScore - old.RiskScore; delta != 0 {
		severity := SeverityLow
		switch {
		case delta >= 30:
			severity = SeverityCritical
		case delta >= 15:
			severity = SeverityHigh
		case delta > 0:
			severity = SeverityMedium
		}
		alerts = append(alerts, Alert{
			EntityName:            new.EntityName,
			AlertType:             "risk_score_change",
			Severity:              severity,
			Description:           fmt.Sprintf("Risk score changed from %d to %d", old.RiskScore, new.RiskScore),
			OldValue:              fmt.Sprintf("%d", old.RiskScore),
			NewValue:              fmt.Sprintf("%d", new.RiskScore),
			Timestamp:             ts,
			RequiresInvestigation: severity == SeverityHigh || severity == SeverityCritical,
		})
	}

	if old.Tier != new.Tier {
		alerts = append(alerts, Alert{
			EntityName:  new.EntityName,
			AlertType:   "tier_change",
			Severity:    SeverityMedium,
			Description: fmt.Sprintf("Risk tier changed from %s to %s", old.Tier, new.Tier),
			OldValue:    old.Tier,
			NewValue:    new.Tier,
			Timestamp:   ts,
		})
	}

	known := map[string]bool{}
	for _, a := range old.Anomalies {
		known[a] = true
	}
	for _, a := range new.Anomalies {
		if !known[a] {
			alerts = append(alerts, Alert{
				EntityName:            new.EntityName,
				AlertType:             "new_anomaly",
				Severity:              SeverityHigh,
				Description:           "New anomaly detected: " + a,
				NewValue:              a,
				Timestamp:             ts,
				RequiresInvestigation: true,
			})
		}
	}

	return alerts
}
