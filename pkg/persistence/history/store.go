// Package history keeps core fault records across scans in SQLite.
//
// Boot offsets shift on every reboot and old boots rotate out of the
// journal, so rows are keyed by the journal boot ID instead.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/yairfalse/corestab/pkg/journald"
	"github.com/yairfalse/corestab/pkg/stability"
	"go.uber.org/zap"
)

const schema = `
CREATE TABLE IF NOT EXISTS scans (
	scan_id    TEXT PRIMARY KEY,
	started_at DATETIME NOT NULL,
	boots      INTEGER NOT NULL,
	records    INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS faults (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	boot_id    TEXT NOT NULL,
	boot_index INTEGER NOT NULL,
	timestamp  TEXT NOT NULL,
	source     TEXT NOT NULL,
	message    TEXT NOT NULL,
	core       INTEGER NOT NULL,
	socket     INTEGER NOT NULL,
	occurrence INTEGER NOT NULL,
	scan_id    TEXT NOT NULL,
	UNIQUE (boot_id, timestamp, source, core, socket, message, occurrence)
);

CREATE INDEX IF NOT EXISTS idx_faults_core ON faults (socket, core);
`

// Store is a SQLite-backed fault history
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// CoreCount is the stored total for one core
type CoreCount struct {
	Socket int `json:"socket" yaml:"socket"`
	Core   int `json:"core" yaml:"core"`
	Events int `json:"events" yaml:"events"`
	Boots  int `json:"boots" yaml:"boots"`
}

// Open opens or creates the database at path
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	// a single connection keeps ":memory:" databases shared across queries
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Save appends the records of a scan and returns how many were new
func (s *Store) Save(ctx context.Context, report *stability.Report) (int, error) {
	bootIDs := bootIDsByIndex(report.Boots)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	startedAt := report.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now()
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO scans (scan_id, started_at, boots, records) VALUES (?, ?, ?, ?)`,
		report.ScanID, startedAt.UTC(), report.Stats.BootsScanned, len(report.Records)); err != nil {
		return 0, fmt.Errorf("failed to record scan: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO faults (boot_id, boot_index, timestamp, source, message, core, socket, occurrence, scan_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	// Identical lines logged within the same second are distinct faults. The
	// occurrence number tells them apart and is the same on every rescan of
	// the boot, so a rescan still inserts nothing new.
	seen := make(map[stability.Record]int, len(report.Records))

	inserted := 0
	for _, r := range report.Records {
		seen[r]++
		res, err := stmt.ExecContext(ctx, bootIDs[r.Boot], r.Boot, r.Timestamp, r.Source, r.Message, r.Core, r.Socket, seen[r], report.ScanID)
		if err != nil {
			return 0, fmt.Errorf("failed to store record: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit history: %w", err)
	}

	s.logger.Info("Saved scan to history",
		zap.String("scan_id", report.ScanID),
		zap.Int("records", len(report.Records)),
		zap.Int("new", inserted))

	return inserted, nil
}

// CountByCore returns stored totals ordered by socket and core
func (s *Store) CountByCore(ctx context.Context) ([]CoreCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT socket, core, COUNT(*), COUNT(DISTINCT boot_id)
		FROM faults
		GROUP BY socket, core
		ORDER BY socket, core`)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	counts := []CoreCount{}
	for rows.Next() {
		var c CoreCount
		if err := rows.Scan(&c.Socket, &c.Core, &c.Events, &c.Boots); err != nil {
			return nil, fmt.Errorf("failed to read history row: %w", err)
		}
		counts = append(counts, c)
	}

	return counts, rows.Err()
}

// bootIDsByIndex maps boot offsets to journal boot IDs. Boots listed without
// an ID fall back to their offset, which only dedups within a single boot.
func bootIDsByIndex(boots []journald.Boot) map[int]string {
	ids := make(map[int]string, len(boots))
	for _, b := range boots {
		if b.ID != "" {
			ids[b.Index] = b.ID
		} else {
			ids[b.Index] = "index:" + strconv.Itoa(b.Index)
		}
	}
	return ids
}
