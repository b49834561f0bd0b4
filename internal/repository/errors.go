// Package repository contains the MySQL data access layer.  Handlers see
// the sentinel errors below instead of driver errors so they can map each
// failure to an HTTP status.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrForbidden is returned when the caller attempts an operation on a
// record owned by someone else.  Handlers translate it into 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a write would break a uniqueness or
// foreign key constraint.  Handlers translate it into 409.
var ErrConflict = errors.New("conflict")

// MySQL server error numbers mapped to sentinels.
const (
	errDupEntry        = 1062
	errRowIsReferenced = 1451
)

func mysqlCode(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}

// isDuplicate reports a unique key violation.
func isDuplicate(err error) bool { return mysqlCode(err) == errDupEntry }

// isReferenced reports a delete blocked by a foreign key.
func isReferenced(err error) bool { return mysqlCode(err) == errRowIsReferenced }
