// Package repository provides Postgres-backed persistence for the catalog
// entities. Sentinel errors let services distinguish failure modes without
// inspecting driver errors; absent rows surface as pgx.ErrNoRows.
package repository

import "errors"

// ErrDuplicateReview is returned when a review already exists for the
// (user, product) pair, whether or not that review is still active. Both the
// pre-insert guard and the storage-level unique index report it.
var ErrDuplicateReview = errors.New("duplicate review for user and product")

// ErrDuplicateEmail is returned when an insert trips the unique constraint on
// users.email, e.g. two registrations racing past the pre-insert lookup.
var ErrDuplicateEmail = errors.New("duplicate email")
