// Copyright 2015-2016 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sirupsen/logrus"
)

// maxRetries bounds how often withTx reruns a transaction that lost a
// serialization race.
const maxRetries = 10

// withTx calls some function with a database/sql transaction object.
// If f panics or returns a non-nil error, rolls the transaction back;
// otherwise commits it before returning.  Returns the error value from
// f, or some other error related to transaction management.
func (s *Store) withTx(ctx context.Context, readOnly bool, f func(*sql.Tx) error) (err error) {
	var (
		tx   *sql.Tx
		done bool
	)

	// If we have a failure, roll back; and if that rollback fails
	// and we don't yet have an error, set the error.
	defer func() {
		if tx != nil && !done {
			err2 := tx.Rollback()
			if err == nil {
				err = err2
			}
		}
	}()

	// Run in a loop, repeating the work on serialization errors
	for attempt := 1; ; attempt++ {
		tx, err = s.db.BeginTx(ctx, s.dialect.txOptions(readOnly))
		if err != nil {
			return
		}

		err = f(tx)
		if err == nil {
			err = tx.Commit()
			done = true
		}

		if err == nil || !s.dialect.retryable(err) || attempt >= maxRetries {
			break
		}
		s.log.WithFields(logrus.Fields{
			"attempt": attempt,
			"err":     err,
		}).Debug("retrying database transaction")
		if !done {
			err = tx.Rollback()
			if errors.Is(err, sql.ErrTxDone) {
				// Already rolled back; not an error.
				err = nil
			} else if err != nil {
				return
			}
		}
		tx, done = nil, false
	}
	return
}

// scanRows runs an SQL query and calls a function for each row in the
// result.  The callback function should only call the Scan() method on
// the provided Rows object; this function will take care of advancing
// through the list of rows and closing the iterator as required.
func scanRows(rows *sql.Rows, f func() error) (err error) {
	var done bool
	defer func() {
		if !done {
			err2 := rows.Close()
			if err == nil {
				err = err2
			}
		}
	}()

	for rows.Next() {
		err = f()
		if err != nil {
			return
		}
	}
	done = true
	err = rows.Err()
	return
}
