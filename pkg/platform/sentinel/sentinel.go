package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and infrastructure layers
// return these (optionally wrapped) so services can translate them into domain
// errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity does not exist in store
// - ErrConflict: an entity with conflicting identity already exists
// - ErrExpired: record lifetime has passed
// - ErrInconsistent: storage returned more rows than a uniqueness contract allows
// - ErrUnavailable: service or resource temporarily unavailable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrExpired      = errors.New("expired")
	ErrInconsistent = errors.New("database inconsistency")
	ErrUnavailable  = errors.New("unavailable")
)
