package repository

import (
	"errors"
	"strings"

	"github.com/lib/pq"
)

const uniqueViolation = "23505"

// UniqueViolationColumn returns the offending column ("email" or "phone") when
// err is a PostgreSQL unique-constraint violation on one of those columns, or
// an empty string otherwise. Services translate this into field-specific
// validation messages.
func UniqueViolationColumn(err error) string {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return ""
	}
	switch {
	case strings.Contains(pqErr.Constraint, "email"):
		return "email"
	case strings.Contains(pqErr.Constraint, "phone"):
		return "phone"
	}
	return ""
}
