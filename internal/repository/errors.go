// Sentinel errors shared across the repositories. They let services
// and handlers distinguish failure scenarios without inspecting driver
// errors: ErrConflict signals that an atomic write lost a race against
// a concurrent request (duplicate open order, double finalize), while
// ErrNotFound covers any referenced table, order or line that no
// longer exists.

package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a referenced table, order, line or menu
// record does not exist. Handlers should translate this into an HTTP
// 404 response.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when an atomic conditional write detects a
// concurrent writer, e.g. two requests inserting the open order for
// the same table. Idempotent callers resolve it by re-reading; handlers
// that do surface it should translate it into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrAlreadyPaid is returned when finalize runs against an order whose
// Open -> Paid transition was already performed. The second submit of a
// double checkout sees this instead of recording a second payment.
var ErrAlreadyPaid = errors.New("order already paid")

// ErrEmptyOrder is returned when finalize runs against an open order
// with no lines; an order without items cannot be checked out.
var ErrEmptyOrder = errors.New("order has no items")

// ErrEmailExists is returned when registering a staff account with an
// email that is already taken.
var ErrEmailExists = errors.New("email already exists")

// isDuplicateKey reports whether err is the MySQL duplicate-key error
// (1062). Unique keys are how this schema detects lost races, so the
// repositories translate 1062 into the domain sentinels above.
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
