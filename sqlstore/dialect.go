// Copyright 2015-2016 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// serializationFailure is the SQLSTATE of a transaction that lost a
// race under REPEATABLE READ and must be retried.
const serializationFailure = "40001"

// dialect holds what differs between the supported databases.
type dialect struct {
	// name is the database/sql driver name.
	name string

	// migrate is the sql-migrate dialect name.
	migrate string

	// blobType is the column type for binary data.
	blobType string

	// numbered is set if placeholders are $1, $2, ... rather
	// than ?.
	numbered bool

	// isolation is the level every transaction runs at.
	isolation sql.IsolationLevel

	// readOnly is set if read-only transactions are supported.
	readOnly bool

	// retryable reports whether err means the transaction should
	// be run again.
	retryable func(err error) bool
}

var dialects = map[string]*dialect{
	"postgres": {
		name:      "postgres",
		migrate:   "postgres",
		blobType:  "BYTEA",
		numbered:  true,
		isolation: sql.LevelRepeatableRead,
		readOnly:  true,
		retryable: func(err error) bool {
			var pqerr *pq.Error
			return errors.As(err, &pqerr) && pqerr.Code == serializationFailure
		},
	},
	"pgx": {
		name:      "pgx",
		migrate:   "postgres",
		blobType:  "BYTEA",
		numbered:  true,
		isolation: sql.LevelRepeatableRead,
		readOnly:  true,
		retryable: func(err error) bool {
			var pgerr *pgconn.PgError
			return errors.As(err, &pgerr) && pgerr.Code == serializationFailure
		},
	},
	"sqlite": {
		name:     "sqlite",
		migrate:  "sqlite3",
		blobType: "BLOB",
		retryable: func(err error) bool {
			var sqerr *sqlite.Error
			return errors.As(err, &sqerr) && sqerr.Code() == sqlite3.SQLITE_BUSY
		},
	},
}

func (d *dialect) txOptions(readOnly bool) *sql.TxOptions {
	return &sql.TxOptions{
		Isolation: d.isolation,
		ReadOnly:  readOnly && d.readOnly,
	}
}

// queryParams wraps a list of query parameters for one dialect.
type queryParams struct {
	d    *dialect
	args []interface{}
}

// Param adds a parameter to the query parameter list, returning its
// placeholder.
func (qp *queryParams) Param(param interface{}) string {
	qp.args = append(qp.args, param)
	if qp.d.numbered {
		return fmt.Sprintf("$%v", len(qp.args))
	}
	return "?"
}
