// internal/monitor/archive.go
package monitor

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

const createFramesSQL = `
CREATE TABLE IF NOT EXISTS frames (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    session TEXT NOT NULL,
    timestamp TEXT NOT NULL,
    channel INTEGER NOT NULL,
    direction TEXT NOT NULL,
    slave INTEGER NOT NULL,
    function TEXT NOT NULL,
    address TEXT,
    count TEXT,
    expected_crc INTEGER NOT NULL,
    actual_crc INTEGER NOT NULL
);`

// Archive appends frame rows to a SQLite database file.
type Archive struct {
	db *sql.DB
}

func OpenArchive(path string) (*Archive, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "monitor: open archive")
	}
	if _, err := db.Exec(createFramesSQL); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "monitor: create frames table")
	}
	return &Archive{db: db}, nil
}

// Save writes entries in one transaction, tagged with session.
func (a *Archive) Save(ctx context.Context, session string, entries []Entry) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "monitor: begin")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO frames(session, timestamp, channel, direction, slave, function, address, count, expected_crc, actual_crc) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return errors.Wrap(err, "monitor: prepare insert")
	}
	defer stmt.Close()

	for _, e := range entries {
		_, err := stmt.ExecContext(ctx,
			session,
			e.At.Format("2006-01-02 15:04:05.000"),
			e.Channel,
			e.Direction.String(),
			int(e.Slave),
			e.FunctionText(),
			e.AddressText(),
			e.CountText(),
			int(e.ExpectedCRC),
			int(e.ActualCRC),
		)
		if err != nil {
			return errors.Wrap(err, "monitor: insert frame")
		}
	}
	return errors.Wrap(tx.Commit(), "monitor: commit")
}

// Count returns the number of archived frames for session.
func (a *Archive) Count(ctx context.Context, session string) (int, error) {
	var n int
	err := a.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM frames WHERE session = ?", session).Scan(&n)
	return n, errors.Wrap(err, "monitor: count frames")
}

func (a *Archive) Close() error {
	return a.db.Close()
}
