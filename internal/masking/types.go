// Package masking redacts personal data and secrets before they are written
// to diagnostic logs. Every function in this package is pure and total: it
// never fails, never panics and keeps no state, so it is safe to call from
// any goroutine.
package masking

// Rule is a one-way transform from a raw value to its display-safe form.
type Rule func(value string) string

// Category identifies a kind of sensitive value. The set is closed; each
// category is bound to exactly one rule in the catalog.
type Category int

const (
	CategoryNationalID Category = iota
	CategoryStreetAddress
	CategoryCity
	CategoryPostalCode
	CategoryEmail
	CategoryPhone
	CategoryFullName
	CategorySecret
	CategoryPassword

	numCategories
)

const (
	maskRune    = '*'
	literalMask = "***"

	emailDelimiter     = "@"
	emailVisiblePrefix = 2
	phoneVisibleSuffix = 4
	secretVisibleEdge  = 4
	passwordMaxMask    = 10
)
