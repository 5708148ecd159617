package services

import "errors"

// Sentinel errors returned by the domain repository. Handlers map these to
// HTTP statuses; batch adds report per-item reasons instead of failing whole.
var (
	ErrNotFound          = errors.New("domain not found")
	ErrConflict          = errors.New("domain already exists")
	ErrMissingExpiration = errors.New("subdomain requires an expiration date")
	ErrInvalidDomain     = errors.New("invalid domain name")
)

// Failure reasons used in batch add responses.
const (
	ReasonDuplicate         = "duplicate"
	ReasonMissingExpiration = "missing-expiration"
	ReasonInvalidDomain     = "invalid-domain"
)
