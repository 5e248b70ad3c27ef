package store

import (
	"database/sql"
	"errors"
	"time"
)

const snapshotColumns = "id, taken_at, target, command, version"

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// CreateSnapshot inserts a new snapshot for target and returns its ID.
func (db *DB) CreateSnapshot(target, command, version string) (int64, error) {
	return createSnapshot(db.conn, target, command, version, time.Now())
}

func createSnapshot(ex execer, target, command, version string, takenAt time.Time) (int64, error) {
	result, err := ex.Exec(
		"INSERT INTO snapshots (taken_at, target, command, version) VALUES (?, ?, ?, ?)",
		takenAt.UTC().Format(time.RFC3339), target, command, version,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetLatestSnapshot returns the most recent snapshot of target, or nil if
// none exist.
func (db *DB) GetLatestSnapshot(target string) (*Snapshot, error) {
	return db.GetSnapshotN(target, 1)
}

// GetSnapshot returns a snapshot by ID, or nil if it does not exist.
func (db *DB) GetSnapshot(id int64) (*Snapshot, error) {
	row := db.conn.QueryRow("SELECT "+snapshotColumns+" FROM snapshots WHERE id = ?", id)
	return scanSnapshot(row)
}

// GetSnapshotN returns the Nth most recent snapshot of target (1 = latest,
// 2 = previous, etc.).
func (db *DB) GetSnapshotN(target string, n int) (*Snapshot, error) {
	if n < 1 {
		return nil, nil
	}
	row := db.conn.QueryRow(
		"SELECT "+snapshotColumns+" FROM snapshots WHERE target = ? ORDER BY id DESC LIMIT 1 OFFSET ?",
		target, n-1,
	)
	return scanSnapshot(row)
}

// ListSnapshots returns up to limit snapshots of target, newest first. A
// non-positive limit returns all of them.
func (db *DB) ListSnapshots(target string, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.conn.Query(
		"SELECT "+snapshotColumns+" FROM snapshots WHERE target = ? ORDER BY id DESC LIMIT ?",
		target, limit,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var snapshots []Snapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, *s)
	}
	return snapshots, rows.Err()
}

// ListTargets returns every target with at least one snapshot, sorted.
func (db *DB) ListTargets() ([]string, error) {
	rows, err := db.conn.Query("SELECT DISTINCT target FROM snapshots ORDER BY target")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var targets []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}
	return targets, rows.Err()
}

func scanSnapshot(row rowScanner) (*Snapshot, error) {
	var s Snapshot
	var takenAt string
	err := row.Scan(&s.ID, &takenAt, &s.Target, &s.Command, &s.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.TakenAt, _ = time.Parse(time.RFC3339, takenAt)
	return &s, nil
}

func insertAggregateMetric(ex execer, snapshotID int64, name string, value float64, detail string) error {
	_, err := ex.Exec(
		"INSERT INTO aggregate_metrics (snapshot_id, metric_name, metric_value, detail) VALUES (?, ?, ?, ?)",
		snapshotID, name, value, detail,
	)
	return err
}

func insertSuggestion(ex execer, s *Suggestion, position int) error {
	_, err := ex.Exec(
		`INSERT INTO suggestions
		(snapshot_id, position, category, priority, title, description)
		VALUES (?, ?, ?, ?, ?, ?)`,
		s.SnapshotID, position, s.Category, s.Priority, s.Title, s.Description,
	)
	return err
}

// GetAggregateMetrics returns all aggregate metrics for a snapshot in
// insertion order.
func (db *DB) GetAggregateMetrics(snapshotID int64) ([]AggregateMetric, error) {
	rows, err := db.conn.Query(
		"SELECT id, snapshot_id, metric_name, metric_value, detail FROM aggregate_metrics WHERE snapshot_id = ? ORDER BY id",
		snapshotID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var metrics []AggregateMetric
	for rows.Next() {
		var m AggregateMetric
		var detail sql.NullString
		if err := rows.Scan(&m.ID, &m.SnapshotID, &m.MetricName, &m.MetricValue, &detail); err != nil {
			return nil, err
		}
		m.Detail = detail.String
		metrics = append(metrics, m)
	}
	return metrics, rows.Err()
}

// GetSuggestions returns the suggestions of a snapshot in recorded order.
func (db *DB) GetSuggestions(snapshotID int64) ([]Suggestion, error) {
	rows, err := db.conn.Query(
		`SELECT id, snapshot_id, category, priority, title, description
		 FROM suggestions WHERE snapshot_id = ? ORDER BY position`,
		snapshotID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var suggestions []Suggestion
	for rows.Next() {
		var s Suggestion
		if err := rows.Scan(&s.ID, &s.SnapshotID, &s.Category, &s.Priority, &s.Title, &s.Description); err != nil {
			return nil, err
		}
		suggestions = append(suggestions, s)
	}
	return suggestions, rows.Err()
}
