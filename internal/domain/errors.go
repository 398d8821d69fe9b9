package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails a business rule
// (unknown document mode, unknown table name, malformed flag value).
var ErrValidation = errors.New("validation error")

// ErrInsufficientData is returned by the document composer when the inputs
// required by the requested mode were not supplied. It is never returned for
// empty tables, only for tables that were not loaded at all.
var ErrInsufficientData = errors.New("insufficient data for document")
