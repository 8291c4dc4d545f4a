package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing required field, malformed date).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrStorage is returned when a write fails on a storage constraint —
// a duplicate association, a reference to a missing row, or an engine
// error mid-write. The enclosing transaction is rolled back in full.
// Handlers should map this to HTTP 409 Conflict.
var ErrStorage = errors.New("storage error")
