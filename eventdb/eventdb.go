// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package eventdb indexes sealed engine events in sqlite.
package eventdb

import (
	"context"
	"database/sql"
	"strings"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

type EventDB struct {
	path          string
	db            *sql.DB
	stmtCache     *stmtCache
	driverVersion string
}

// New create or open event db at given path.
func New(path string) (eventDB *EventDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if eventDB == nil {
			db.Close()
		}
	}()
	// a memory database lives as long as its single connection
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(eventTableSchema); err != nil {
		return nil, errors.Wrap(err, "failed to create event table")
	}

	driverVer, _, _ := sqlite3.Version()
	return &EventDB{
		path:          path,
		db:            db,
		stmtCache:     newStmtCache(db),
		driverVersion: driverVer,
	}, nil
}

// NewMem create an event db in ram.
func NewMem() (*EventDB, error) {
	return New(":memory:")
}

// Close close the event db.
func (db *EventDB) Close() error {
	db.stmtCache.Clear()
	return db.db.Close()
}

func (db *EventDB) Path() string {
	return db.path
}

// DriverVersion returns the version of the sqlite library.
func (db *EventDB) DriverVersion() string {
	return db.driverVersion
}

// Insert writes the events of sealed blocks in one transaction.
func (db *EventDB) Insert(ctx context.Context, events []*Event) error {
	if len(events) == 0 {
		return nil
	}
	// prepared before the transaction takes the connection
	stmt, err := db.stmtCache.Prepare("INSERT OR REPLACE INTO event(blockNumber, eventIndex, blockTime, poolID, name, data) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	txStmt := tx.StmtContext(ctx, stmt)
	for _, ev := range events {
		if _, err := txStmt.ExecContext(ctx,
			ev.BlockNumber,
			ev.Index,
			ev.BlockTime,
			ev.PoolID,
			ev.Name,
			[]byte(ev.Data),
		); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "failed to insert event %d of block %d", ev.Index, ev.BlockNumber)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	metricInsertedEvents().Add(int64(len(events)))
	return nil
}

// LastBlock returns the highest block number holding an event.
func (db *EventDB) LastBlock(ctx context.Context) (uint64, bool, error) {
	var last sql.NullInt64
	if err := db.db.QueryRowContext(ctx, "SELECT MAX(blockNumber) FROM event").Scan(&last); err != nil {
		return 0, false, err
	}
	if !last.Valid {
		return 0, false, nil
	}
	return uint64(last.Int64), true, nil
}

// Filter returns the events matching filter. A nil filter returns every event.
func (db *EventDB) Filter(ctx context.Context, filter *Filter) ([]*Event, error) {
	const query = "SELECT blockNumber, eventIndex, blockTime, poolID, name, data FROM event"
	if filter == nil {
		return db.query(ctx, query+" ORDER BY blockNumber ASC, eventIndex ASC")
	}
	metricsHandleFilter(filter)

	var args []any
	stmt := query + " WHERE 1"
	if filter.Range != nil {
		condition := "blockNumber"
		if filter.Range.Unit == Time {
			condition = "blockTime"
		}
		args = append(args, filter.Range.From)
		stmt += " AND " + condition + " >= ?"
		if filter.Range.To >= filter.Range.From {
			args = append(args, filter.Range.To)
			stmt += " AND " + condition + " <= ?"
		}
	}
	if len(filter.PoolIDs) > 0 {
		stmt += " AND poolID IN (" + placeholders(len(filter.PoolIDs)) + ")"
		for _, id := range filter.PoolIDs {
			args = append(args, id)
		}
	}
	if len(filter.Names) > 0 {
		stmt += " AND name IN (" + placeholders(len(filter.Names)) + ")"
		for _, name := range filter.Names {
			args = append(args, name)
		}
	}

	if filter.Order == DESC {
		stmt += " ORDER BY blockNumber DESC, eventIndex DESC"
	} else {
		stmt += " ORDER BY blockNumber ASC, eventIndex ASC"
	}

	if filter.Options != nil {
		stmt += " LIMIT ?, ?"
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}
	return db.query(ctx, stmt, args...)
}

func (db *EventDB) query(ctx context.Context, query string, args ...any) ([]*Event, error) {
	stmt, err := db.stmtCache.Prepare(query)
	if err != nil {
		return nil, err
	}
	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		var (
			ev   Event
			data []byte
		)
		if err := rows.Scan(
			&ev.BlockNumber,
			&ev.Index,
			&ev.BlockTime,
			&ev.PoolID,
			&ev.Name,
			&data,
		); err != nil {
			return nil, err
		}
		ev.Data = data
		events = append(events, &ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
