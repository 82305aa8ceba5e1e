// Package service implements the order/table lifecycle: table
// occupancy, the single-open-order guarantee, line merging and the
// checkout transaction. Services contain the retry and validation
// logic; the atomic writes themselves live behind the store interfaces
// so the database's unique keys pick the winner of every race.
package service

import "errors"

// ErrRetryExhausted is returned when repeated write conflicts prevent
// an idempotent operation from converging within its retry budget.
// In practice this needs a pathological interleaving; one conflict is
// normally resolved by the very next re-read.
var ErrRetryExhausted = errors.New("conflict retries exhausted")

// ErrValidation flags caller mistakes (non-positive price, empty item
// name, unknown payment method). Wrap it with context via fmt.Errorf
// and %w so handlers can match with errors.Is.
var ErrValidation = errors.New("validation failed")
