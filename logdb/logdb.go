// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/govstake/govstake/block"
	"github.com/govstake/govstake/log"
	"github.com/govstake/govstake/thor"
	"github.com/govstake/govstake/tx"
)

var logger = log.WithContext("pkg", "logdb")

// LogDB indexes the events emitted by packed calls.
type LogDB struct {
	path          string
	db            *sql.DB
	driverVersion string
}

// New create or open log db at given path.
func New(path string) (logDB *LogDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if logDB == nil {
			db.Close()
		}
	}()
	// a single connection keeps in-memory databases shared and serializes writes
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(eventTableSchema + configTableSchema); err != nil {
		return nil, errors.Wrap(err, "create tables")
	}

	driverVer, _, _ := sqlite3.Version()
	logger.Debug("log db opened", "path", path, "sqlite", driverVer)
	return &LogDB{
		path,
		db,
		driverVer,
	}, nil
}

// NewMem create a log db in ram.
func NewMem() (*LogDB, error) {
	return New(":memory:")
}

// Close close the log db.
func (db *LogDB) Close() error {
	return db.db.Close()
}

// Path returns the database path.
func (db *LogDB) Path() string {
	return db.path
}

// DriverVersion returns the sqlite library version.
func (db *LogDB) DriverVersion() string {
	return db.driverVersion
}

// NewestBlockID returns the id of the latest written block, zero if nothing written.
func (db *LogDB) NewestBlockID() (thor.Bytes32, error) {
	var data []byte
	err := db.db.QueryRow("SELECT value FROM config WHERE key = ?", newestBlockIDKey).Scan(&data)
	if err != nil {
		if err == sql.ErrNoRows {
			return thor.Bytes32{}, nil
		}
		return thor.Bytes32{}, err
	}
	return thor.BytesToBytes32(data), nil
}

// Write writes events of all succeeded calls of the given block.
func (db *LogDB) Write(b *block.Block, receipts tx.Receipts) error {
	header := b.Header()
	events := BlockEvents(b, receipts)

	return db.execInTx(func(tx *sql.Tx) error {
		for _, ev := range events {
			if _, err := tx.Exec("INSERT OR REPLACE INTO event(blockID, eventIndex, blockNumber, blockTime, callID, callOrigin, address, topic0, topic1, topic2, topic3, topic4, data) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);",
				ev.BlockID.Bytes(),
				ev.Index,
				ev.BlockNumber,
				ev.BlockTime,
				ev.CallID.Bytes(),
				ev.CallOrigin.Bytes(),
				ev.Address.Bytes(),
				topicValue(ev.Topics[0]),
				topicValue(ev.Topics[1]),
				topicValue(ev.Topics[2]),
				topicValue(ev.Topics[3]),
				topicValue(ev.Topics[4]),
				ev.Data,
			); err != nil {
				return err
			}
		}
		if _, err := tx.Exec("INSERT OR REPLACE INTO config(key, value) VALUES (?, ?);", newestBlockIDKey, header.ID().Bytes()); err != nil {
			return err
		}
		metricEventsWritten().Add(int64(len(events)))
		return nil
	})
}

// Truncate deletes events of blocks after blockNum (included).
func (db *LogDB) Truncate(blockNum uint32) error {
	return db.execInTx(func(tx *sql.Tx) error {
		_, err := tx.Exec("DELETE FROM event WHERE blockNumber >= ?;", blockNum)
		return err
	})
}

func (db *LogDB) execInTx(proc func(*sql.Tx) error) error {
	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	if err := proc(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// FilterEvents returns events matching the filter, a nil filter matches all.
func (db *LogDB) FilterEvents(ctx context.Context, filter *EventFilter) ([]*Event, error) {
	const query = "SELECT blockID, eventIndex, blockNumber, blockTime, callID, callOrigin, address, topic0, topic1, topic2, topic3, topic4, data FROM event"
	if filter == nil {
		return db.queryEvents(ctx, query+" ORDER BY blockNumber ASC, eventIndex ASC")
	}
	metricsHandleEventsFilter(filter)

	var (
		args  []any
		conds []string
	)
	if filter.Range != nil {
		args = append(args, filter.Range.From)
		conds = append(conds, "blockNumber >= ?")
		if filter.Range.To >= filter.Range.From {
			args = append(args, filter.Range.To)
			conds = append(conds, "blockNumber <= ?")
		}
	}

	var ors []string
	for _, criteria := range filter.CriteriaSet {
		ands := []string{"1"}
		if criteria.Address != nil {
			args = append(args, criteria.Address.Bytes())
			ands = append(ands, "address = ?")
		}
		for j, topic := range criteria.Topics {
			if topic != nil {
				args = append(args, topic.Bytes())
				ands = append(ands, fmt.Sprintf("topic%v = ?", j))
			}
		}
		ors = append(ors, "("+strings.Join(ands, " AND ")+")")
	}
	if len(ors) > 0 {
		conds = append(conds, "("+strings.Join(ors, " OR ")+")")
	}

	stmt := query
	if len(conds) > 0 {
		stmt += " WHERE " + strings.Join(conds, " AND ")
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
	return db.queryEvents(ctx, stmt, args...)
}

func (db *LogDB) queryEvents(ctx context.Context, stmt string, args ...any) ([]*Event, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			blockID     []byte
			index       uint32
			blockNumber uint32
			blockTime   uint64
			callID      []byte
			callOrigin  []byte
			address     []byte
			topics      [5][]byte
			data        []byte
		)
		if err := rows.Scan(
			&blockID,
			&index,
			&blockNumber,
			&blockTime,
			&callID,
			&callOrigin,
			&address,
			&topics[0],
			&topics[1],
			&topics[2],
			&topics[3],
			&topics[4],
			&data,
		); err != nil {
			return nil, err
		}
		event := &Event{
			BlockID:     thor.BytesToBytes32(blockID),
			Index:       index,
			BlockNumber: blockNumber,
			BlockTime:   blockTime,
			CallID:      thor.BytesToBytes32(callID),
			CallOrigin:  thor.BytesToAddress(callOrigin),
			Address:     thor.BytesToAddress(address),
			Data:        data,
		}
		for i, topic := range topics {
			if len(topic) > 0 {
				h := thor.BytesToBytes32(topic)
				event.Topics[i] = &h
			}
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func topicValue(topic *thor.Bytes32) []byte {
	if topic == nil {
		return nil
	}
	return topic.Bytes()
}
