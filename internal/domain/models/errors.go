package models

import "errors"

// Shared failure classes. Services wrap these with fmt.Errorf("%w: ...") so the
// HTTP layer can classify with errors.Is without leaking internals.
var (
	// ErrNotFound indicates the requested record does not exist for this tenant.
	ErrNotFound = errors.New("record not found")

	// ErrNoData indicates an aggregation matched no records; ratios over an
	// empty set are reported explicitly instead of silently computing zeros.
	ErrNoData = errors.New("no data for requested scope")

	// ErrValidation indicates a malformed or incomplete request payload.
	ErrValidation = errors.New("validation failed")

	// ErrInsufficientStock indicates a stock deduction would drive a material
	// below zero.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrDuplicateSubmission indicates an idempotency key was already consumed.
	ErrDuplicateSubmission = errors.New("duplicate submission")
)
