// Package store provides SQLite persistence for analysis snapshots, so that
// repeated runs against the same target can be compared.
package store

import "time"

// Direction labels for MetricDelta.
const (
	DirectionImproved  = "improved"
	DirectionRegressed = "regressed"
	DirectionUnchanged = "unchanged"
	DirectionChanged   = "changed"
)

// Snapshot is one recorded analysis run.
type Snapshot struct {
	ID      int64     `json:"id" yaml:"id"`
	TakenAt time.Time `json:"taken_at" yaml:"taken_at"`
	Target  string    `json:"target" yaml:"target"`
	Command string    `json:"command" yaml:"command"`
	Version string    `json:"version" yaml:"version"`
}

// AggregateMetric is a named metric value within a snapshot.
type AggregateMetric struct {
	ID          int64   `json:"id" yaml:"id"`
	SnapshotID  int64   `json:"snapshot_id" yaml:"snapshot_id"`
	MetricName  string  `json:"metric_name" yaml:"metric_name"`
	MetricValue float64 `json:"metric_value" yaml:"metric_value"`
	Detail      string  `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Suggestion is a recommendation recorded with a snapshot.
type Suggestion struct {
	ID          int64  `json:"id" yaml:"id"`
	SnapshotID  int64  `json:"snapshot_id" yaml:"snapshot_id"`
	Category    string `json:"category" yaml:"category"`
	Priority    int    `json:"priority" yaml:"priority"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
}

// MetricRow is a metric name-value pair extracted from a report.
type MetricRow struct {
	Name   string  `json:"name" yaml:"name"`
	Value  float64 `json:"value" yaml:"value"`
	Detail string  `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// SnapshotDiff represents the comparison between two snapshots.
type SnapshotDiff struct {
	Previous *Snapshot     `json:"previous" yaml:"previous"`
	Current  *Snapshot     `json:"current" yaml:"current"`
	Deltas   []MetricDelta `json:"deltas" yaml:"deltas"`
}

// MetricDelta represents the change in a single metric between snapshots.
type MetricDelta struct {
	Name      string  `json:"name" yaml:"name"`
	Previous  float64 `json:"previous" yaml:"previous"`
	Current   float64 `json:"current" yaml:"current"`
	Delta     float64 `json:"delta" yaml:"delta"`
	Direction string  `json:"direction" yaml:"direction"`
}
