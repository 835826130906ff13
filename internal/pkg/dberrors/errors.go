package dberrors

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.mongodb.org/mongo-driver/mongo"
)

const uniqueViolation = "23505"

// IsUniqueViolation reports a PostgreSQL unique_violation, optionally for one constraint
func IsUniqueViolation(err error, constraintName ...string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return false
	}
	if len(constraintName) == 0 {
		return true
	}
	for _, name := range constraintName {
		if pgErr.ConstraintName == name {
			return true
		}
	}
	return false
}

// IsNoRows reports an empty single-row result from either store
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || errors.Is(err, mongo.ErrNoDocuments)
}
