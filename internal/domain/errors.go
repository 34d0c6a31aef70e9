// Package domain provides shared domain-level sentinel errors.
package domain

import "errors"

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict indicates a write conflict, e.g. a duplicate section key
// within the same (agency, landlord, agreement type) scope.
var ErrConflict = errors.New("conflict: resource already exists or was modified")

// ErrValidation indicates the request failed domain validation.
var ErrValidation = errors.New("validation failed")
